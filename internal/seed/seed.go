package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vacation-rental/internal/data/entity"
	"vacation-rental/internal/data/repository"
	"vacation-rental/pkg/utils"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type File struct {
	Houses []House `mapstructure:"houses" validate:"required,min=1,dive"`
}

type House struct {
	Name        string    `mapstructure:"name" validate:"required,max=120"`
	Slug        string    `mapstructure:"slug" validate:"omitempty,max=120"`
	Description string    `mapstructure:"description"`
	HeroImage   string    `mapstructure:"hero_image"`
	Gallery     []string  `mapstructure:"gallery"`
	Capacity    int       `mapstructure:"capacity" validate:"gte=1"`
	Bedrooms    int       `mapstructure:"bedrooms" validate:"gte=0"`
	Bathrooms   float64   `mapstructure:"bathrooms" validate:"gte=0"`
	Amenities   []string  `mapstructure:"amenities"`
	Location    string    `mapstructure:"location"`
	Active      *bool     `mapstructure:"active"`
	SortOrder   int       `mapstructure:"sort_order"`
	Packages    []Package `mapstructure:"packages" validate:"dive"`
}

type Package struct {
	Name          string   `mapstructure:"name" validate:"required"`
	PricePerNight float64  `mapstructure:"price_per_night" validate:"gte=0,money"`
	MinNights     int      `mapstructure:"min_nights" validate:"gte=1"`
	Perks         []string `mapstructure:"perks"`
	Popular       bool     `mapstructure:"popular"`
}

type Result struct {
	Houses   int
	Packages int
}

// Load reads a seed file in any format viper understands (yaml, json, toml).
func Load(path string) (*File, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}

	var file File
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}

	if errs := utils.ValidateStruct(file); len(errs) > 0 {
		return nil, fmt.Errorf("invalid seed file %s: %s", path, utils.FormatValidationErrors(errs))
	}

	for _, h := range file.Houses {
		for _, p := range h.Packages {
			if !entity.PackageName(p.Name).Valid() {
				return nil, fmt.Errorf("invalid seed file %s: house %q: unknown package name %q", path, h.Name, p.Name)
			}
		}
	}

	return &file, nil
}

// Run upserts every house and its packages. Re-running with the same file is a no-op
// apart from updated_at.
func Run(ctx context.Context, repo *repository.Repository, file *File, log *zap.Logger) (Result, error) {
	log = log.With(zap.String("component", "seed"))

	var result Result
	for i, h := range file.Houses {
		now := time.Now().UTC()

		house := &entity.House{
			Base:        entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
			Slug:        houseSlug(h),
			Name:        strings.TrimSpace(h.Name),
			Description: h.Description,
			HeroImage:   h.HeroImage,
			Gallery:     orEmpty(h.Gallery),
			Capacity:    h.Capacity,
			Bedrooms:    h.Bedrooms,
			Bathrooms:   h.Bathrooms,
			Amenities:   orEmpty(h.Amenities),
			Location:    h.Location,
			IsActive:    h.Active == nil || *h.Active,
			SortOrder:   h.SortOrder,
		}
		if house.SortOrder == 0 {
			house.SortOrder = i + 1
		}

		if err := repo.House.Upsert(ctx, house); err != nil {
			return result, fmt.Errorf("seed house %s: %w", house.Slug, err)
		}
		result.Houses++

		for _, p := range h.Packages {
			name := entity.PackageName(p.Name)
			pkg := &entity.Package{
				Base:          entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
				HouseID:       house.ID,
				Name:          name,
				Code:          name.Code(),
				PricePerNight: p.PricePerNight,
				MinNights:     p.MinNights,
				Perks:         orEmpty(p.Perks),
				IsPopular:     p.Popular,
			}

			if err := repo.Package.Upsert(ctx, pkg); err != nil {
				return result, fmt.Errorf("seed package %s for %s: %w", pkg.Code, house.Slug, err)
			}
			result.Packages++
		}

		log.Info("House seeded",
			zap.String("slug", house.Slug),
			zap.String("house_id", house.ID.String()),
			zap.Int("packages", len(h.Packages)),
		)
	}

	return result, nil
}

func houseSlug(h House) string {
	if h.Slug != "" {
		return slug.Make(h.Slug)
	}
	return slug.Make(h.Name)
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
