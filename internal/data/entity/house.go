package entity

type House struct {
	Base
	Slug        string   `db:"slug"`
	Name        string   `db:"name"`
	Description string   `db:"description"`
	HeroImage   string   `db:"hero_image"`
	Gallery     []string `db:"gallery"`
	Capacity    int      `db:"capacity"`
	Bedrooms    int      `db:"bedrooms"`
	Bathrooms   float64  `db:"bathrooms"`
	Amenities   []string `db:"amenities"`
	Location    string   `db:"location"`
	IsActive    bool     `db:"is_active"`
	SortOrder   int      `db:"sort_order"`
}
