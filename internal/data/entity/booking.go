package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

var bookingStatuses = []BookingStatus{BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled}

// Blocks reports whether a booking in this status holds its dates.
func (s BookingStatus) Blocks() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// BlockingStatuses lists every status for which Blocks is true.
func BlockingStatuses() []BookingStatus {
	var out []BookingStatus
	for _, s := range bookingStatuses {
		if s.Blocks() {
			out = append(out, s)
		}
	}
	return out
}

type PaymentStatus string

const (
	PaymentStatusNone    PaymentStatus = "none"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type Guest struct {
	Name        string `db:"guest_name"`
	Email       string `db:"guest_email"`
	Phone       string `db:"guest_phone"`
	Country     string `db:"guest_country"`
	Nationality string `db:"guest_nationality"`
}

// Stay dates are UTC midnights; CheckOut is exclusive.
type Stay struct {
	CheckIn  time.Time `db:"check_in"`
	CheckOut time.Time `db:"check_out"`
	Guests   int       `db:"guests"`
	Nights   int       `db:"nights"`
}

type Preferences struct {
	UnitType string `db:"unit_type"`
	ViewType string `db:"view_type"`
	Notes    string `db:"notes"`
}

type Pricing struct {
	Subtotal    float64 `db:"subtotal"`
	CleaningFee float64 `db:"cleaning_fee"`
	Tax         float64 `db:"tax"`
	Total       float64 `db:"total"`
}

// PaymentReference is filled in by the payment collaborator, never by booking creation.
type PaymentReference struct {
	PaymentID   *string `db:"payment_id"`
	CheckoutURL *string `db:"checkout_url"`
}

type BookingRequest struct {
	Base
	BookingID     string           `db:"booking_id"`
	HouseID       uuid.UUID        `db:"house_id"`
	PackageID     uuid.UUID        `db:"package_id"`
	Guest         Guest            `db:"-"`
	Stay          Stay             `db:"-"`
	Preferences   Preferences      `db:"-"`
	Pricing       Pricing          `db:"-"`
	Status        BookingStatus    `db:"status"`
	PaymentStatus PaymentStatus    `db:"payment_status"`
	Payment       PaymentReference `db:"-"`
}
