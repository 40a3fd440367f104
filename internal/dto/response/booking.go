package response

import (
	"time"

	"vacation-rental/internal/data/entity"
	"vacation-rental/pkg/utils"
)

type AvailabilityResponse struct {
	Available bool    `json:"available"`
	Reason    *string `json:"reason"`
	Nights    int     `json:"nights"`
}

type BookingPackage struct {
	ID            string             `json:"id"`
	Name          entity.PackageName `json:"name"`
	Code          string             `json:"code"`
	PricePerNight float64            `json:"pricePerNight"`
}

type GuestResponse struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Country     string `json:"country"`
	Nationality string `json:"nationality"`
}

type StayResponse struct {
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
	Guests   int    `json:"guests"`
	Nights   int    `json:"nights"`
}

type PreferencesResponse struct {
	UnitType string `json:"unitType"`
	ViewType string `json:"viewType"`
	Notes    string `json:"notes"`
}

type PricingResponse struct {
	Subtotal    float64 `json:"subtotal"`
	CleaningFee float64 `json:"cleaningFee"`
	Tax         float64 `json:"tax"`
	Total       float64 `json:"total"`
}

type PaymentResponse struct {
	PaymentID   *string `json:"paymentId"`
	CheckoutURL *string `json:"checkoutUrl"`
}

// BookingSummary is a booking joined with the house and package it refers to.
type BookingSummary struct {
	BookingID     string               `json:"bookingId"`
	Status        entity.BookingStatus `json:"status"`
	PaymentStatus entity.PaymentStatus `json:"paymentStatus"`
	House         HouseSummary         `json:"house"`
	Package       BookingPackage       `json:"package"`
	Guest         GuestResponse        `json:"guest"`
	Stay          StayResponse         `json:"stay"`
	Preferences   PreferencesResponse  `json:"preferences"`
	Pricing       PricingResponse      `json:"pricing"`
	Payment       PaymentResponse      `json:"payment"`
	CreatedAt     time.Time            `json:"createdAt"`
}

type BookingResponse struct {
	Booking BookingSummary `json:"booking"`
}

// BookingToSummary builds the display form. house and pkg may be nil when
// the referenced rows are gone; the matching sections are then left empty.
func BookingToSummary(b *entity.BookingRequest, house *entity.House, pkg *entity.Package) BookingSummary {
	summary := BookingSummary{
		BookingID:     b.BookingID,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		Guest: GuestResponse{
			Name:        b.Guest.Name,
			Email:       b.Guest.Email,
			Phone:       b.Guest.Phone,
			Country:     b.Guest.Country,
			Nationality: b.Guest.Nationality,
		},
		Stay: StayResponse{
			CheckIn:  utils.FormatDateStamp(b.Stay.CheckIn),
			CheckOut: utils.FormatDateStamp(b.Stay.CheckOut),
			Guests:   b.Stay.Guests,
			Nights:   b.Stay.Nights,
		},
		Preferences: PreferencesResponse{
			UnitType: b.Preferences.UnitType,
			ViewType: b.Preferences.ViewType,
			Notes:    b.Preferences.Notes,
		},
		Pricing: PricingResponse{
			Subtotal:    b.Pricing.Subtotal,
			CleaningFee: b.Pricing.CleaningFee,
			Tax:         b.Pricing.Tax,
			Total:       b.Pricing.Total,
		},
		Payment: PaymentResponse{
			PaymentID:   b.Payment.PaymentID,
			CheckoutURL: b.Payment.CheckoutURL,
		},
		CreatedAt: b.CreatedAt,
	}

	if house != nil {
		summary.House = HouseToSummary(house)
	} else {
		summary.House.ID = b.HouseID.String()
	}

	if pkg != nil {
		summary.Package = BookingPackage{
			ID:            pkg.ID.String(),
			Name:          pkg.Name,
			Code:          pkg.Code,
			PricePerNight: pkg.PricePerNight,
		}
	} else {
		summary.Package.ID = b.PackageID.String()
	}

	return summary
}

func BookingToDateRange(b *entity.BookingRequest) DateRange {
	return DateRange{
		From: utils.FormatDateStamp(b.Stay.CheckIn),
		To:   utils.FormatDateStamp(b.Stay.CheckOut),
	}
}
