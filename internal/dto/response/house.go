package response

import (
	"time"

	"vacation-rental/internal/data/entity"
)

type HouseResponse struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	HeroImage   string    `json:"heroImage"`
	Gallery     []string  `json:"gallery"`
	Capacity    int       `json:"capacity"`
	Bedrooms    int       `json:"bedrooms"`
	Bathrooms   float64   `json:"bathrooms"`
	Amenities   []string  `json:"amenities"`
	Location    string    `json:"location"`
	SortOrder   int       `json:"sortOrder"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HouseSummary is the short form embedded next to packages and bookings.
type HouseSummary struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type PackageResponse struct {
	ID            string             `json:"id"`
	HouseID       string             `json:"houseId"`
	Name          entity.PackageName `json:"name"`
	Code          string             `json:"code"`
	PricePerNight float64            `json:"pricePerNight"`
	MinNights     int                `json:"minNights"`
	Perks         []string           `json:"perks"`
	IsPopular     bool               `json:"isPopular"`
}

type HouseListResponse struct {
	Houses []HouseResponse `json:"houses"`
}

type HouseDetailResponse struct {
	House HouseResponse `json:"house"`
}

type HousePackagesResponse struct {
	House    HouseSummary      `json:"house"`
	Packages []PackageResponse `json:"packages"`
}

type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type UnavailableDatesResponse struct {
	House            HouseSummary `json:"house"`
	UnavailableDates []DateRange  `json:"unavailableDates"`
}

// Helper converters
func HouseToResponse(house *entity.House) HouseResponse {
	return HouseResponse{
		ID:          house.ID.String(),
		Slug:        house.Slug,
		Name:        house.Name,
		Description: house.Description,
		HeroImage:   house.HeroImage,
		Gallery:     nonNil(house.Gallery),
		Capacity:    house.Capacity,
		Bedrooms:    house.Bedrooms,
		Bathrooms:   house.Bathrooms,
		Amenities:   nonNil(house.Amenities),
		Location:    house.Location,
		SortOrder:   house.SortOrder,
		CreatedAt:   house.CreatedAt,
	}
}

func HouseToSummary(house *entity.House) HouseSummary {
	return HouseSummary{
		ID:   house.ID.String(),
		Slug: house.Slug,
		Name: house.Name,
	}
}

func PackageToResponse(pkg *entity.Package) PackageResponse {
	return PackageResponse{
		ID:            pkg.ID.String(),
		HouseID:       pkg.HouseID.String(),
		Name:          pkg.Name,
		Code:          pkg.Code,
		PricePerNight: pkg.PricePerNight,
		MinNights:     pkg.MinNights,
		Perks:         nonNil(pkg.Perks),
		IsPopular:     pkg.IsPopular,
	}
}

// arrays stay arrays in JSON even when the column was NULL
func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
