package repository

import (
	"errors"

	"vacation-rental/pkg/database"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

var (
	// ErrOverlap means the storage layer refused a booking whose dates collide with another.
	ErrOverlap = errors.New("booking dates overlap an existing booking")
	// ErrDuplicateBookingID means the generated booking identifier is already taken.
	ErrDuplicateBookingID = errors.New("booking identifier already exists")
)

const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

type Repository struct {
	House   HouseRepository
	Package PackageRepository
	Booking BookingRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		House:   NewHouseRepository(db, log),
		Package: NewPackageRepository(db, log),
		Booking: NewBookingRepository(db, log),
	}
}

func pgErrorCode(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}
