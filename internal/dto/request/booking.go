package request

import "strings"

type CheckAvailabilityRequest struct {
	HouseID     string `json:"houseId" validate:"required_without=HouseSlug,omitempty,uuid"`
	HouseSlug   string `json:"houseSlug" validate:"required_without=HouseID,omitempty,max=120"`
	CheckIn     string `json:"checkIn" validate:"required,date"`
	CheckOut    string `json:"checkOut" validate:"required,date"`
	PackageCode string `json:"packageCode" validate:"omitempty,oneof=standard signature extended"`
}

// Normalize trims selectors and lower-cases codes and slugs before validation.
func (r *CheckAvailabilityRequest) Normalize() {
	r.HouseID = strings.TrimSpace(r.HouseID)
	r.HouseSlug = strings.ToLower(strings.TrimSpace(r.HouseSlug))
	r.PackageCode = strings.ToLower(strings.TrimSpace(r.PackageCode))
}

type GuestRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=120"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Phone       string `json:"phone" validate:"required,min=5,max=40"`
	Country     string `json:"country" validate:"required,min=2,max=80"`
	Nationality string `json:"nationality" validate:"required,min=2,max=80"`
}

type StayRequest struct {
	CheckIn  string `json:"checkIn" validate:"required,date"`
	CheckOut string `json:"checkOut" validate:"required,date"`
	Guests   int    `json:"guests" validate:"required,gte=1,lte=50"`
}

type PreferencesRequest struct {
	UnitType string `json:"unitType" validate:"max=80"`
	ViewType string `json:"viewType" validate:"max=80"`
	Notes    string `json:"notes" validate:"max=1000"`
}

type PricingRequest struct {
	Subtotal    float64 `json:"subtotal" validate:"gte=0,money"`
	CleaningFee float64 `json:"cleaningFee" validate:"gte=0,money"`
	Tax         float64 `json:"tax" validate:"gte=0,money"`
	Total       float64 `json:"total" validate:"gte=0,money"`
}

type CreateBookingRequest struct {
	HouseID     string              `json:"houseId" validate:"required_without=HouseSlug,omitempty,uuid"`
	HouseSlug   string              `json:"houseSlug" validate:"required_without=HouseID,omitempty,max=120"`
	PackageID   string              `json:"packageId" validate:"required_without=PackageCode,omitempty,uuid"`
	PackageCode string              `json:"packageCode" validate:"required_without=PackageID,omitempty,oneof=standard signature extended"`
	Guest       *GuestRequest       `json:"guest" validate:"required"`
	Stay        *StayRequest        `json:"stay" validate:"required"`
	Preferences *PreferencesRequest `json:"preferences,omitempty" validate:"omitempty"`
	Pricing     *PricingRequest     `json:"pricing" validate:"required"`
}

func (r *CreateBookingRequest) Normalize() {
	r.HouseID = strings.TrimSpace(r.HouseID)
	r.HouseSlug = strings.ToLower(strings.TrimSpace(r.HouseSlug))
	r.PackageID = strings.TrimSpace(r.PackageID)
	r.PackageCode = strings.ToLower(strings.TrimSpace(r.PackageCode))
	if r.Guest != nil {
		r.Guest.Name = strings.TrimSpace(r.Guest.Name)
		r.Guest.Email = strings.TrimSpace(r.Guest.Email)
		r.Guest.Phone = strings.TrimSpace(r.Guest.Phone)
		r.Guest.Country = strings.TrimSpace(r.Guest.Country)
		r.Guest.Nationality = strings.TrimSpace(r.Guest.Nationality)
	}
}
