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

type PackageRepository interface {
	FindByHouseID(ctx context.Context, houseID uuid.UUID) ([]*entity.Package, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Package, error)
	FindByHouseAndCode(ctx context.Context, houseID uuid.UUID, code string) (*entity.Package, error)
	Upsert(ctx context.Context, pkg *entity.Package) error
}

type packageRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPackageRepository(db database.PgxIface, log *zap.Logger) PackageRepository {
	return &packageRepository{
		db:  db,
		log: log.With(zap.String("repository", "package")),
	}
}

const packageColumns = `id, house_id, name, code, price_per_night, min_nights, perks, is_popular, created_at, updated_at`

func scanPackage(row pgx.Row) (*entity.Package, error) {
	var pkg entity.Package
	err := row.Scan(
		&pkg.ID,
		&pkg.HouseID,
		&pkg.Name,
		&pkg.Code,
		&pkg.PricePerNight,
		&pkg.MinNights,
		&pkg.Perks,
		&pkg.IsPopular,
		&pkg.CreatedAt,
		&pkg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *packageRepository) FindByHouseID(ctx context.Context, houseID uuid.UUID) ([]*entity.Package, error) {
	query := `
		SELECT ` + packageColumns + `
		FROM packages
		WHERE house_id = $1
		ORDER BY price_per_night, created_at
	`

	rows, err := r.db.Query(ctx, query, houseID)
	if err != nil {
		r.log.Error("Failed to find packages by house ID",
			zap.Error(err),
			zap.String("house_id", houseID.String()),
		)
		return nil, fmt.Errorf("find packages by house ID %s: %w", houseID.String(), err)
	}
	defer rows.Close()

	packages := make([]*entity.Package, 0)
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			r.log.Error("Failed to scan package row", zap.Error(err))
			return nil, fmt.Errorf("scan package row: %w", err)
		}
		packages = append(packages, pkg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate packages: %w", err)
	}

	return packages, nil
}

func (r *packageRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE id = $1`

	pkg, err := scanPackage(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find package by ID",
			zap.Error(err),
			zap.String("package_id", id.String()),
		)
		return nil, fmt.Errorf("find package by ID %s: %w", id.String(), err)
	}

	return pkg, nil
}

func (r *packageRepository) FindByHouseAndCode(ctx context.Context, houseID uuid.UUID, code string) (*entity.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE house_id = $1 AND code = $2`

	pkg, err := scanPackage(r.db.QueryRow(ctx, query, houseID, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find package by code",
			zap.Error(err),
			zap.String("house_id", houseID.String()),
			zap.String("code", code),
		)
		return nil, fmt.Errorf("find package %s for house %s: %w", code, houseID.String(), err)
	}

	return pkg, nil
}

func (r *packageRepository) Upsert(ctx context.Context, pkg *entity.Package) error {
	query := `
		INSERT INTO packages (id, house_id, name, code, price_per_night, min_nights, perks, is_popular,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (house_id, code) DO UPDATE SET
			name = EXCLUDED.name,
			price_per_night = EXCLUDED.price_per_night,
			min_nights = EXCLUDED.min_nights,
			perks = EXCLUDED.perks,
			is_popular = EXCLUDED.is_popular,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		pkg.ID,
		pkg.HouseID,
		pkg.Name,
		pkg.Code,
		pkg.PricePerNight,
		pkg.MinNights,
		pkg.Perks,
		pkg.IsPopular,
		pkg.CreatedAt,
		pkg.UpdatedAt,
	).Scan(&pkg.ID)

	if err != nil {
		r.log.Error("Failed to upsert package",
			zap.Error(err),
			zap.String("house_id", pkg.HouseID.String()),
			zap.String("code", pkg.Code),
		)
		return fmt.Errorf("upsert package %s: %w", pkg.Code, err)
	}

	return nil
}
