package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vacation-rental/internal/data/entity"
	"vacation-rental/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	FindByBookingID(ctx context.Context, bookingID string) (*entity.BookingRequest, error)
	ExistsByBookingID(ctx context.Context, bookingID string) (bool, error)
	FindBlockingByHouse(ctx context.Context, houseID uuid.UUID) ([]*entity.BookingRequest, error)

	// FindOverlapping returns one pending or confirmed booking of the house that shares a night
	// with [checkIn, checkOut), or nil. excludeBookingID, when set, is ignored in the search.
	FindOverlapping(ctx context.Context, houseID uuid.UUID, checkIn, checkOut time.Time, excludeBookingID *string) (*entity.BookingRequest, error)

	// CreateIfAvailable runs the overlap check and the insert in one transaction holding a
	// per-house advisory lock. A non-nil conflict means nothing was written.
	CreateIfAvailable(ctx context.Context, booking *entity.BookingRequest) (conflict *entity.BookingRequest, err error)

	// CancelStalePending cancels unpaid pending bookings created before cutoff.
	CancelStalePending(ctx context.Context, cutoff time.Time) ([]string, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, booking_id, house_id, package_id,
		guest_name, guest_email, guest_phone, guest_country, guest_nationality,
		check_in, check_out, guests, nights,
		unit_type, view_type, notes,
		subtotal, cleaning_fee, tax, total,
		status, payment_status, payment_id, checkout_url,
		created_at, updated_at`

const overlapQuery = `
		SELECT ` + bookingColumns + `
		FROM booking_requests
		WHERE house_id = $1
		  AND status = ANY($2)
		  AND check_in < $4
		  AND check_out > $3
		  AND ($5::text IS NULL OR booking_id <> $5)
		ORDER BY check_in
		LIMIT 1
	`

const advisoryLockQuery = `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`

var blockingStatuses = func() []string {
	statuses := entity.BlockingStatuses()
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}()

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanBooking(row pgx.Row) (*entity.BookingRequest, error) {
	var b entity.BookingRequest
	err := row.Scan(
		&b.ID,
		&b.BookingID,
		&b.HouseID,
		&b.PackageID,
		&b.Guest.Name,
		&b.Guest.Email,
		&b.Guest.Phone,
		&b.Guest.Country,
		&b.Guest.Nationality,
		&b.Stay.CheckIn,
		&b.Stay.CheckOut,
		&b.Stay.Guests,
		&b.Stay.Nights,
		&b.Preferences.UnitType,
		&b.Preferences.ViewType,
		&b.Preferences.Notes,
		&b.Pricing.Subtotal,
		&b.Pricing.CleaningFee,
		&b.Pricing.Tax,
		&b.Pricing.Total,
		&b.Status,
		&b.PaymentStatus,
		&b.Payment.PaymentID,
		&b.Payment.CheckoutURL,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) FindByBookingID(ctx context.Context, bookingID string) (*entity.BookingRequest, error) {
	query := `SELECT ` + bookingColumns + ` FROM booking_requests WHERE booking_id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, bookingID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by booking ID",
			zap.Error(err),
			zap.String("booking_id", bookingID),
		)
		return nil, fmt.Errorf("find booking %s: %w", bookingID, err)
	}

	return booking, nil
}

func (r *bookingRepository) ExistsByBookingID(ctx context.Context, bookingID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM booking_requests WHERE booking_id = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, bookingID).Scan(&exists); err != nil {
		r.log.Error("Failed to check booking ID",
			zap.Error(err),
			zap.String("booking_id", bookingID),
		)
		return false, fmt.Errorf("check booking ID %s: %w", bookingID, err)
	}

	return exists, nil
}

func (r *bookingRepository) FindBlockingByHouse(ctx context.Context, houseID uuid.UUID) ([]*entity.BookingRequest, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM booking_requests
		WHERE house_id = $1 AND status = ANY($2)
		ORDER BY check_in
	`

	rows, err := r.db.Query(ctx, query, houseID, blockingStatuses)
	if err != nil {
		r.log.Error("Failed to find blocking bookings",
			zap.Error(err),
			zap.String("house_id", houseID.String()),
		)
		return nil, fmt.Errorf("find blocking bookings for house %s: %w", houseID.String(), err)
	}
	defer rows.Close()

	bookings := make([]*entity.BookingRequest, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}

	return bookings, nil
}

func (r *bookingRepository) FindOverlapping(ctx context.Context, houseID uuid.UUID, checkIn, checkOut time.Time, excludeBookingID *string) (*entity.BookingRequest, error) {
	return r.findOverlapping(ctx, r.db, houseID, checkIn, checkOut, excludeBookingID)
}

func (r *bookingRepository) findOverlapping(ctx context.Context, q rowQuerier, houseID uuid.UUID, checkIn, checkOut time.Time, excludeBookingID *string) (*entity.BookingRequest, error) {
	booking, err := scanBooking(q.QueryRow(ctx, overlapQuery, houseID, blockingStatuses, checkIn, checkOut, excludeBookingID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to check booking overlap",
			zap.Error(err),
			zap.String("house_id", houseID.String()),
			zap.Time("check_in", checkIn),
			zap.Time("check_out", checkOut),
		)
		return nil, fmt.Errorf("check overlap for house %s: %w", houseID.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) CreateIfAvailable(ctx context.Context, b *entity.BookingRequest) (*entity.BookingRequest, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin booking tx: %w", err)
	}
	// no-op after Commit
	defer tx.Rollback(ctx)

	// concurrent creators for the same house queue here until commit or rollback
	if _, err := tx.Exec(ctx, advisoryLockQuery, b.HouseID.String()); err != nil {
		return nil, fmt.Errorf("lock house %s: %w", b.HouseID.String(), err)
	}

	conflict, err := r.findOverlapping(ctx, tx, b.HouseID, b.Stay.CheckIn, b.Stay.CheckOut, nil)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return conflict, nil
	}

	if err := r.insert(ctx, tx, b); err != nil {
		switch code, constraint := pgErrorCode(err); {
		case code == pgExclusionViolation:
			return nil, ErrOverlap
		case code == pgUniqueViolation && constraint == "booking_requests_booking_id_key":
			return nil, ErrDuplicateBookingID
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		if code, _ := pgErrorCode(err); code == pgExclusionViolation {
			return nil, ErrOverlap
		}
		return nil, fmt.Errorf("commit booking %s: %w", b.BookingID, err)
	}

	return nil, nil
}

func (r *bookingRepository) insert(ctx context.Context, tx pgx.Tx, b *entity.BookingRequest) error {
	query := `
		INSERT INTO booking_requests (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
	`

	_, err := tx.Exec(ctx, query,
		b.ID,
		b.BookingID,
		b.HouseID,
		b.PackageID,
		b.Guest.Name,
		b.Guest.Email,
		b.Guest.Phone,
		b.Guest.Country,
		b.Guest.Nationality,
		b.Stay.CheckIn,
		b.Stay.CheckOut,
		b.Stay.Guests,
		b.Stay.Nights,
		b.Preferences.UnitType,
		b.Preferences.ViewType,
		b.Preferences.Notes,
		b.Pricing.Subtotal,
		b.Pricing.CleaningFee,
		b.Pricing.Tax,
		b.Pricing.Total,
		b.Status,
		b.PaymentStatus,
		b.Payment.PaymentID,
		b.Payment.CheckoutURL,
		b.CreatedAt,
		b.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_id", b.BookingID),
			zap.String("house_id", b.HouseID.String()),
		)
		return fmt.Errorf("create booking %s: %w", b.BookingID, err)
	}

	return nil
}

func (r *bookingRepository) CancelStalePending(ctx context.Context, cutoff time.Time) ([]string, error) {
	query := `
		UPDATE booking_requests
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND payment_status = $3 AND created_at < $4
		RETURNING booking_id
	`

	rows, err := r.db.Query(ctx, query,
		entity.BookingStatusCancelled,
		entity.BookingStatusPending,
		entity.PaymentStatusNone,
		cutoff,
	)
	if err != nil {
		r.log.Error("Failed to cancel stale bookings", zap.Error(err), zap.Time("cutoff", cutoff))
		return nil, fmt.Errorf("cancel stale bookings: %w", err)
	}
	defer rows.Close()

	var cancelled []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan cancelled booking: %w", err)
		}
		cancelled = append(cancelled, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cancelled bookings: %w", err)
	}

	return cancelled, nil
}
