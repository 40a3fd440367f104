package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"vacation-rental/internal/data/entity"
	"vacation-rental/internal/data/repository"
	"vacation-rental/internal/dto/request"
	"vacation-rental/internal/dto/response"
	"vacation-rental/pkg/lock"
	"vacation-rental/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	reasonCheckOutBeforeCheckIn = "checkOut must be after checkIn"
	reasonDatesBooked           = "Selected dates are already booked"

	pricingTolerance = 0.01
)

type BookingService interface {
	CheckAvailability(ctx context.Context, req *request.CheckAvailabilityRequest) (*response.AvailabilityResponse, error)
	CreateBookingRequest(ctx context.Context, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetBookingByBookingID(ctx context.Context, bookingID string) (*response.BookingResponse, error)

	// CancelStalePending releases the dates held by unpaid pending bookings
	// older than the configured TTL and returns how many were cancelled.
	CancelStalePending(ctx context.Context) (int, error)
}

// BookingNotifier is told about every booking request that was stored.
type BookingNotifier interface {
	BookingReceived(ctx context.Context, booking response.BookingSummary) error
}

type bookingService struct {
	repo       *repository.Repository
	locker     lock.Locker
	notifier   BookingNotifier
	config     utils.BookingConfig
	generateID func(now time.Time) (string, error)
	now        func() time.Time
	log        *zap.Logger
}

func NewBookingService(
	repo *repository.Repository,
	locker lock.Locker,
	notifier BookingNotifier,
	config utils.BookingConfig,
	log *zap.Logger,
) BookingService {
	if locker == nil {
		locker = lock.NewKeyedMutex()
	}
	if config.IDAttempts <= 0 {
		config.IDAttempts = 5
	}

	return &bookingService{
		repo:       repo,
		locker:     locker,
		notifier:   notifier,
		config:     config,
		generateID: utils.GenerateBookingID,
		now:        time.Now,
		log:        log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CheckAvailability(ctx context.Context, req *request.CheckAvailabilityRequest) (*response.AvailabilityResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Debug("Check availability validation failed", zap.Any("errors", errs))
		return nil, validationFailed(errs)
	}

	house, err := findActiveHouse(ctx, s.repo, req.HouseID, req.HouseSlug)
	if err != nil {
		return nil, err
	}

	checkIn, checkOut, err := parseStay(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	nights := utils.NightsBetween(checkIn, checkOut)
	if nights <= 0 {
		return unavailable(reasonCheckOutBeforeCheckIn, nights), nil
	}

	if req.PackageCode != "" {
		pkg, err := findPackage(ctx, s.repo, house, "", req.PackageCode)
		if err != nil {
			return nil, err
		}
		if nights < pkg.MinNights {
			return unavailable(minimumStayMessage(pkg), nights), nil
		}
	}

	conflict, err := s.repo.Booking.FindOverlapping(ctx, house.ID, checkIn, checkOut, nil)
	if err != nil {
		return nil, storeError(err, "check availability")
	}
	if conflict != nil {
		s.log.Debug("Dates unavailable",
			zap.String("house", house.Slug),
			zap.String("check_in", utils.FormatDateStamp(checkIn)),
			zap.String("check_out", utils.FormatDateStamp(checkOut)),
			zap.String("conflict", conflict.BookingID),
		)
		return unavailable(reasonDatesBooked, nights), nil
	}

	return &response.AvailabilityResponse{Available: true, Nights: nights}, nil
}

func (s *bookingService) CreateBookingRequest(ctx context.Context, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Debug("Create booking validation failed", zap.Any("errors", errs))
		return nil, validationFailed(errs)
	}

	house, err := findActiveHouse(ctx, s.repo, req.HouseID, req.HouseSlug)
	if err != nil {
		return nil, err
	}

	pkg, err := findPackage(ctx, s.repo, house, req.PackageID, req.PackageCode)
	if err != nil {
		return nil, err
	}

	checkIn, checkOut, err := parseStay(req.Stay.CheckIn, req.Stay.CheckOut)
	if err != nil {
		return nil, err
	}

	nights := utils.NightsBetween(checkIn, checkOut)
	if nights <= 0 {
		return nil, validationFailed(map[string]string{"stay.checkOut": reasonCheckOutBeforeCheckIn})
	}
	if nights < pkg.MinNights {
		return nil, &Error{Kind: ErrMinimumStay, Message: minimumStayMessage(pkg)}
	}

	if s.config.StrictPricing {
		if errs := checkPricing(req.Pricing, pkg, nights); len(errs) > 0 {
			s.log.Warn("Submitted pricing does not match package rate",
				zap.String("house", house.Slug),
				zap.String("package", pkg.Code),
				zap.Any("errors", errs),
			)
			return nil, validationFailed(errs)
		}
	}

	now := s.now().UTC()
	booking := &entity.BookingRequest{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		HouseID:   house.ID,
		PackageID: pkg.ID,
		Guest: entity.Guest{
			Name:        req.Guest.Name,
			Email:       req.Guest.Email,
			Phone:       req.Guest.Phone,
			Country:     req.Guest.Country,
			Nationality: req.Guest.Nationality,
		},
		Stay: entity.Stay{
			CheckIn:  checkIn,
			CheckOut: checkOut,
			Guests:   req.Stay.Guests,
			Nights:   nights,
		},
		Pricing: entity.Pricing{
			Subtotal:    req.Pricing.Subtotal,
			CleaningFee: req.Pricing.CleaningFee,
			Tax:         req.Pricing.Tax,
			Total:       req.Pricing.Total,
		},
		Status:        entity.BookingStatusPending,
		PaymentStatus: entity.PaymentStatusNone,
	}
	if req.Preferences != nil {
		booking.Preferences = entity.Preferences{
			UnitType: req.Preferences.UnitType,
			ViewType: req.Preferences.ViewType,
			Notes:    req.Preferences.Notes,
		}
	}

	release, err := s.locker.Acquire(ctx, house.ID.String())
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, &Error{Kind: ErrTimeout, Message: "Timed out waiting for the house calendar", Err: err}
		}
		return nil, &Error{Kind: ErrStoreUnavailable, Message: "Booking lock unavailable", Err: err}
	}
	defer release()

	if err := s.insert(ctx, booking, house); err != nil {
		return nil, err
	}

	summary := response.BookingToSummary(booking, house, pkg)

	s.log.Info("Booking request created",
		zap.String("booking_id", booking.BookingID),
		zap.String("house", house.Slug),
		zap.String("package", pkg.Code),
		zap.String("check_in", summary.Stay.CheckIn),
		zap.String("check_out", summary.Stay.CheckOut),
		zap.Int("nights", nights),
		zap.Float64("total", booking.Pricing.Total),
	)

	if s.notifier != nil {
		if err := s.notifier.BookingReceived(ctx, summary); err != nil {
			s.log.Warn("Failed to queue booking notification",
				zap.String("booking_id", booking.BookingID),
				zap.Error(err),
			)
		}
	}

	return &response.BookingResponse{Booking: summary}, nil
}

// insert stamps a fresh booking ID on b and stores it if the dates are still free.
// IDAttempts bounds the draws in total: an ID found in use, or taken between the
// existence check and the insert, each cost one attempt.
func (s *bookingService) insert(ctx context.Context, b *entity.BookingRequest, house *entity.House) error {
	for attempt := 1; attempt <= s.config.IDAttempts; attempt++ {
		bookingID, free, err := s.drawBookingID(ctx, b.CreatedAt)
		if err != nil {
			return err
		}
		if !free {
			s.log.Debug("Booking ID collision",
				zap.String("booking_id", bookingID),
				zap.Int("attempt", attempt),
			)
			continue
		}
		b.BookingID = bookingID

		conflict, err := s.repo.Booking.CreateIfAvailable(ctx, b)
		switch {
		case errors.Is(err, repository.ErrDuplicateBookingID):
			s.log.Warn("Booking ID taken at insert, retrying",
				zap.String("booking_id", bookingID),
				zap.Int("attempt", attempt),
			)
			continue
		case errors.Is(err, repository.ErrOverlap):
			return s.dateConflict(house, b, nil)
		case err != nil:
			return storeError(err, "create booking")
		case conflict != nil:
			return s.dateConflict(house, b, conflict)
		}

		return nil
	}

	return s.idExhausted()
}

// drawBookingID generates one candidate ID and reports whether it is unused.
func (s *bookingService) drawBookingID(ctx context.Context, now time.Time) (string, bool, error) {
	bookingID, err := s.generateID(now)
	if err != nil {
		return "", false, fmt.Errorf("generate booking ID: %w", err)
	}

	exists, err := s.repo.Booking.ExistsByBookingID(ctx, bookingID)
	if err != nil {
		return "", false, storeError(err, "check booking ID")
	}

	return bookingID, !exists, nil
}

func (s *bookingService) idExhausted() error {
	s.log.Error("Booking ID generation exhausted", zap.Int("attempts", s.config.IDAttempts))
	return &Error{
		Kind:    ErrIDGenerationExhausted,
		Message: fmt.Sprintf("Could not generate a unique booking ID after %d attempts", s.config.IDAttempts),
	}
}

func (s *bookingService) dateConflict(house *entity.House, b *entity.BookingRequest, conflict *entity.BookingRequest) error {
	fields := []zap.Field{
		zap.String("house", house.Slug),
		zap.String("check_in", utils.FormatDateStamp(b.Stay.CheckIn)),
		zap.String("check_out", utils.FormatDateStamp(b.Stay.CheckOut)),
	}
	if conflict != nil {
		fields = append(fields, zap.String("conflict", conflict.BookingID))
	}
	s.log.Info("Booking rejected, dates not available", fields...)

	return &Error{Kind: ErrDateRangeConflict, Message: "Selected dates are not available"}
}

func (s *bookingService) GetBookingByBookingID(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	bookingID = strings.ToUpper(strings.TrimSpace(bookingID))
	if bookingID == "" {
		return nil, validationFailed(map[string]string{"bookingId": "This field is required"})
	}

	booking, err := s.repo.Booking.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, storeError(err, "find booking")
	}
	if booking == nil {
		return nil, notFound("Booking %s not found", bookingID)
	}

	house, err := s.repo.House.FindByID(ctx, booking.HouseID)
	if err != nil {
		return nil, storeError(err, "find booking house")
	}

	pkg, err := s.repo.Package.FindByID(ctx, booking.PackageID)
	if err != nil {
		return nil, storeError(err, "find booking package")
	}

	return &response.BookingResponse{Booking: response.BookingToSummary(booking, house, pkg)}, nil
}

func (s *bookingService) CancelStalePending(ctx context.Context) (int, error) {
	if s.config.PendingTTL <= 0 {
		return 0, nil
	}

	cutoff := s.now().UTC().Add(-s.config.PendingTTL)
	cancelled, err := s.repo.Booking.CancelStalePending(ctx, cutoff)
	if err != nil {
		return 0, storeError(err, "cancel stale bookings")
	}

	if len(cancelled) > 0 {
		s.log.Info("Stale pending bookings cancelled",
			zap.Int("count", len(cancelled)),
			zap.Strings("booking_ids", cancelled),
			zap.Time("cutoff", cutoff),
		)
	}

	return len(cancelled), nil
}

func parseStay(checkInRaw, checkOutRaw string) (time.Time, time.Time, error) {
	checkIn, err := utils.ParseDate(checkInRaw)
	if err != nil {
		return time.Time{}, time.Time{}, validationFailed(map[string]string{"checkIn": err.Error()})
	}
	checkOut, err := utils.ParseDate(checkOutRaw)
	if err != nil {
		return time.Time{}, time.Time{}, validationFailed(map[string]string{"checkOut": err.Error()})
	}
	return checkIn, checkOut, nil
}

func unavailable(reason string, nights int) *response.AvailabilityResponse {
	return &response.AvailabilityResponse{Available: false, Reason: &reason, Nights: nights}
}

func minimumStayMessage(pkg *entity.Package) string {
	return fmt.Sprintf("Minimum %d nights required for %s package", pkg.MinNights, pkg.Name)
}

// checkPricing compares submitted figures with the package rate.
func checkPricing(p *request.PricingRequest, pkg *entity.Package, nights int) map[string]string {
	errs := make(map[string]string)

	expectedSubtotal := pkg.PricePerNight * float64(nights)
	if math.Abs(p.Subtotal-expectedSubtotal) > pricingTolerance {
		errs["pricing.subtotal"] = fmt.Sprintf("Must equal %.2f (%d nights at %.2f)", expectedSubtotal, nights, pkg.PricePerNight)
	}

	expectedTotal := p.Subtotal + p.CleaningFee + p.Tax
	if math.Abs(p.Total-expectedTotal) > pricingTolerance {
		errs["pricing.total"] = fmt.Sprintf("Must equal subtotal + cleaningFee + tax (%.2f)", expectedTotal)
	}

	return errs
}
