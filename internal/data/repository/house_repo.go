package repository

import (
	"context"
	"errors"
	"fmt"

	"vacation-rental/internal/data/entity"
	"vacation-rental/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type HouseRepository interface {
	FindActive(ctx context.Context) ([]*entity.House, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.House, error)
	FindBySlug(ctx context.Context, slug string) (*entity.House, error)

	// Upsert inserts or updates by slug and writes the stored ID back into house.
	Upsert(ctx context.Context, house *entity.House) error
}

type houseRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewHouseRepository(db database.PgxIface, log *zap.Logger) HouseRepository {
	return &houseRepository{
		db:  db,
		log: log.With(zap.String("repository", "house")),
	}
}

const houseColumns = `id, slug, name, description, hero_image, gallery, capacity, bedrooms, bathrooms,
		amenities, location, is_active, sort_order, created_at, updated_at`

func scanHouse(row pgx.Row) (*entity.House, error) {
	var house entity.House
	err := row.Scan(
		&house.ID,
		&house.Slug,
		&house.Name,
		&house.Description,
		&house.HeroImage,
		&house.Gallery,
		&house.Capacity,
		&house.Bedrooms,
		&house.Bathrooms,
		&house.Amenities,
		&house.Location,
		&house.IsActive,
		&house.SortOrder,
		&house.CreatedAt,
		&house.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &house, nil
}

func (r *houseRepository) FindActive(ctx context.Context) ([]*entity.House, error) {
	query := `
		SELECT ` + houseColumns + `
		FROM houses
		WHERE is_active = TRUE
		ORDER BY sort_order, created_at
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find active houses", zap.Error(err))
		return nil, fmt.Errorf("find active houses: %w", err)
	}
	defer rows.Close()

	houses := make([]*entity.House, 0)
	for rows.Next() {
		house, err := scanHouse(rows)
		if err != nil {
			r.log.Error("Failed to scan house row", zap.Error(err))
			return nil, fmt.Errorf("scan house row: %w", err)
		}
		houses = append(houses, house)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate houses: %w", err)
	}

	return houses, nil
}

func (r *houseRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.House, error) {
	query := `SELECT ` + houseColumns + ` FROM houses WHERE id = $1`

	house, err := scanHouse(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find house by ID",
			zap.Error(err),
			zap.String("house_id", id.String()),
		)
		return nil, fmt.Errorf("find house by ID %s: %w", id.String(), err)
	}

	return house, nil
}

func (r *houseRepository) FindBySlug(ctx context.Context, slug string) (*entity.House, error) {
	query := `SELECT ` + houseColumns + ` FROM houses WHERE slug = $1`

	house, err := scanHouse(r.db.QueryRow(ctx, query, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find house by slug",
			zap.Error(err),
			zap.String("slug", slug),
		)
		return nil, fmt.Errorf("find house by slug %s: %w", slug, err)
	}

	return house, nil
}

func (r *houseRepository) Upsert(ctx context.Context, house *entity.House) error {
	query := `
		INSERT INTO houses (id, slug, name, description, hero_image, gallery, capacity, bedrooms, bathrooms,
			amenities, location, is_active, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			hero_image = EXCLUDED.hero_image,
			gallery = EXCLUDED.gallery,
			capacity = EXCLUDED.capacity,
			bedrooms = EXCLUDED.bedrooms,
			bathrooms = EXCLUDED.bathrooms,
			amenities = EXCLUDED.amenities,
			location = EXCLUDED.location,
			is_active = EXCLUDED.is_active,
			sort_order = EXCLUDED.sort_order,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		house.ID,
		house.Slug,
		house.Name,
		house.Description,
		house.HeroImage,
		house.Gallery,
		house.Capacity,
		house.Bedrooms,
		house.Bathrooms,
		house.Amenities,
		house.Location,
		house.IsActive,
		house.SortOrder,
		house.CreatedAt,
		house.UpdatedAt,
	).Scan(&house.ID)

	if err != nil {
		r.log.Error("Failed to upsert house",
			zap.Error(err),
			zap.String("slug", house.Slug),
		)
		return fmt.Errorf("upsert house %s: %w", house.Slug, err)
	}

	return nil
}
