package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"vacation-rental/internal/data/entity"
	"vacation-rental/internal/data/repository"
	"vacation-rental/internal/dto/request"
	"vacation-rental/internal/dto/response"
	"vacation-rental/pkg/lock"
	"vacation-rental/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var bookingIDPattern = regexp.MustCompile(`^BK-\d{8}-\d{6}$`)

type fixture struct {
	house     *entity.House
	inactive  *entity.House
	standard  *entity.Package
	extended  *entity.Package
	houses    *memHouseRepo
	packages  *memPackageRepo
	bookings  *memBookingRepo
	repo      *repository.Repository
	notifier  *mockNotifier
	fixedTime time.Time
}

func newFixture() *fixture {
	f := &fixture{fixedTime: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)}

	f.house = &entity.House{Base: entity.Base{ID: uuid.New()}, Slug: "casa-azul", Name: "Casa Azul", IsActive: true, SortOrder: 1}
	f.inactive = &entity.House{Base: entity.Base{ID: uuid.New()}, Slug: "casa-velha", Name: "Casa Velha", IsActive: false}

	f.standard = &entity.Package{
		Base: entity.Base{ID: uuid.New()}, HouseID: f.house.ID,
		Name: entity.PackageStandard, Code: "standard", PricePerNight: 200, MinNights: 1,
	}
	f.extended = &entity.Package{
		Base: entity.Base{ID: uuid.New()}, HouseID: f.house.ID,
		Name: entity.PackageExtended, Code: "extended", PricePerNight: 180, MinNights: 3,
	}

	f.houses = &memHouseRepo{houses: []*entity.House{f.house, f.inactive}}
	f.packages = &memPackageRepo{packages: []*entity.Package{f.standard, f.extended}}
	f.bookings = newMemBookingRepo()
	f.repo = &repository.Repository{House: f.houses, Package: f.packages, Booking: f.bookings}
	f.notifier = &mockNotifier{}

	return f
}

func (f *fixture) service(config utils.BookingConfig, locker lock.Locker) *bookingService {
	if config.IDAttempts == 0 {
		config.IDAttempts = 5
	}
	svc := NewBookingService(f.repo, locker, f.notifier, config, zap.NewNop()).(*bookingService)
	svc.now = func() time.Time { return f.fixedTime }
	return svc
}

func (f *fixture) existing(bookingID string, in, out string, status entity.BookingStatus) {
	checkIn, _ := utils.ParseDate(in)
	checkOut, _ := utils.ParseDate(out)
	f.bookings.add(&entity.BookingRequest{
		Base:      entity.Base{ID: uuid.New(), CreatedAt: f.fixedTime},
		BookingID: bookingID,
		HouseID:   f.house.ID,
		PackageID: f.standard.ID,
		Stay:      entity.Stay{CheckIn: checkIn, CheckOut: checkOut, Guests: 2, Nights: utils.NightsBetween(checkIn, checkOut)},
		Status:    status,
	})
}

func createRequest(code, checkIn, checkOut string) *request.CreateBookingRequest {
	return &request.CreateBookingRequest{
		HouseSlug:   "casa-azul",
		PackageCode: code,
		Guest: &request.GuestRequest{
			Name:        "Ana Souza",
			Email:       "ana@example.com",
			Phone:       "+55 11 99999-0000",
			Country:     "Brazil",
			Nationality: "Brazilian",
		},
		Stay:    &request.StayRequest{CheckIn: checkIn, CheckOut: checkOut, Guests: 2},
		Pricing: &request.PricingRequest{Subtotal: 800, CleaningFee: 60, Tax: 86, Total: 946},
	}
}

func TestCheckAvailability_Available(t *testing.T) {
	f := newFixture()
	svc := f.service(utils.BookingConfig{}, nil)
	f.existing("BK-20260301-100001", "2026-04-10", "2026-04-15", entity.BookingStatusConfirmed)

	// touching the existing checkout is not an overlap
	res, err := svc.CheckAvailability(context.Background(), &request.CheckAvailabilityRequest{
		HouseSlug: "casa-azul",
		CheckIn:   "2026-04-15",
		CheckOut:  "2026-04-18",
	})

	require.NoError(t, err)
	assert.True(t, res.Available)
	assert.Nil(t, res.Reason)
	assert.Equal(t, 3, res.Nights)
}

func TestCheckAvailability_Overlap(t *testing.T) {
	f := newFixture()
	svc := f.service(utils.BookingConfig{}, nil)
	f.existing("BK-20260301-100001", "2026-04-10", "2026-04-15", entity.BookingStatusPending)

	res, err := svc.CheckAvailability(context.Background(), &request.CheckAvailabilityRequest{
		HouseID:  f.house.ID.String(),
		CheckIn:  "2026-04-14",
		CheckOut: "2026-04-16",
	})

	require.NoError(t, err)
	assert.False(t, res.Available)
	require.NotNil(t, res.Reason)
	assert.Equal(t, "Selected dates are already booked", *res.Reason)
	assert.Equal(t, 2, res.Nights)
}

func TestCheckAvailability_HalfOpenRanges(t *testing.T) {
	tests := []struct {
		name      string
		in, out   string
		available bool
	}{
		{"touching checkout", "2026-04-15", "2026-04-18", true},
		{"touching checkin", "2026-04-07", "2026-04-10", true},
		{"straddles checkout", "2026-04-14", "2026-04-16", false},
		{"straddles checkin", "2026-04-08", "2026-04-11", false},
		{"inside", "2026-04-11", "2026-04-12", false},
		{"covers", "2026-04-01", "2026-04-30", false},
		{"identical", "2026-04-10", "2026-04-15", false},
		{"before", "2026-04-01", "2026-04-05", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			svc := f.service(utils.BookingConfig{}, nil)
			f.existing("BK-20260301-100001", "2026-04-10", "2026-04-15", entity.BookingStatusConfirmed)

			res, err := svc.CheckAvailability(context.Background(), &request.CheckAvailabilityRequest{
				HouseSlug: "casa-azul",
				CheckIn:   tt.in,
				CheckOut:  tt.out,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.available, res.Available)
		})
	}
}

func TestCheckAvailability_CancelledDoesNotBlock(t *testing.T) {
	f := newFixture()
	svc := f.service(utils.BookingConfig{}, nil)
	f.existing("BK-20260301-100001", "2026-04-10", "2026-04-15", entity.BookingStatusCancelled)

	res, err := svc.CheckAvailability(context.Background(), &request.CheckAvailabilityRequest{
		HouseSlug: "casa-azul",
		CheckIn:   "2026-04-10",
		CheckOut:  "2026-04-15",
	})

	require.NoError(t, err)
	assert.True(t, res.Available)
}

func TestCheckAvailability_CheckOutNotAfterCheckIn(t *testing.T) {
	f := newFixture()
	svc := f.service(utils.BookingConfig{}, nil)

	res, err := svc.CheckAvailability(context.Background(), &request.CheckAvailabilityRequest{
		HouseSlug: "casa-azul",
		CheckIn:   "2026-04-15",
		CheckOut:  "2026-04-15",
	})

	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, "checkOut must be after checkIn", *res.Reason)
	assert.Equal(t, 0, res.Nights)
}

func TestCheckAvailability_MinimumStay(t *testing.T) {
	f := newFixture()
	svc := f.service(utils.BookingConfig{}, nil)

	res, err := svc.CheckAvailability(context.Background(), &request.CheckAvailabilityRequest{
		HouseSlug:   "casa-azul",
		CheckIn:     "2026-04-10",
		CheckOut:    "2026-04-12",
		PackageCode: "extended",
	})

	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Contains(t, *res.Reason, "Minimum 3 night")
	assert.Equal(t, 2, res.Nights)
	assert.Equal(t, 0, f.bookings.count())
}

func TestCheckAvailability_NotFound(t *testing.T) {
	f := newFixture()
	svc := f.service(utils.BookingConfig{}, nil)

	tests := []struct {
		name string
		req  *request.CheckAvailabilityRequest
	}{
		{"unknown slug", &request.CheckAvailabilityRequest{HouseSlug: "nowhere", CheckIn: "2026-04-10", CheckOut: "2026-04-12"}},
		{"inactive house", &request.CheckAvailabilityRequest{HouseSlug: "casa-velha", CheckIn: "2026-04-10", CheckOut: "2026-04-12"}},
		{"package missing for house", &request.CheckAvailabilityRequest{HouseSlug: "casa-azul", CheckIn: "2026-04-10", CheckOut: "2026-04-12", PackageCode: "signature"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CheckAvailability(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestCheckAvailability_Validation(t *testing.T) {
	f := newFixture()
	svc := f.service(utils.BookingConfig{}, nil)

	_, err := svc.CheckAvailability(context.Background(), &request.CheckAvailabilityRequest{
		CheckIn:     "tomorrow",
		CheckOut:    "2026-04-12",
		PackageCode: "deluxe",
	})

	require.ErrorIs(t, err, ErrValidation)
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Fields, "houseId")
	assert.Contains(t, vErr.Fields, "checkIn")
	assert.Contains(t, vErr.Fields, "packageCode")
}

func TestCreateBookingRequest_RoundTrip(t *testing.T) {
	f := newFixture()
	svc := f.service(utils.BookingConfig{}, nil)
	f.notifier.On("BookingReceived", mock.Anything, mock.AnythingOfType("response.BookingSummary")).Return(nil).Once()

	req := createRequest("standard", "2026-04-10T15:00:00-03:00", "2026-04-14")
	req.Preferences = &request.PreferencesRequest{ViewType: "ocean", Notes: "Late arrival"}

	created, err := svc.CreateBookingRequest(context.Background(), req)
	require.NoError(t, err)

	b := created.Booking
	assert.Regexp(t, bookingIDPattern, b.BookingID)
	assert.Contains(t, b.BookingID, "BK-20260301-")
	assert.Equal(t, entity.BookingStatusPending, b.Status)
	assert.Equal(t, entity.PaymentStatusNone, b.PaymentStatus)
	assert.Nil(t, b.Payment.PaymentID)
	assert.Nil(t, b.Payment.CheckoutURL)
	assert.Equal(t, "casa-azul", b.House.Slug)
	assert.Equal(t, "Casa Azul", b.House.Name)
	assert.Equal(t, "standard", b.Package.Code)
	assert.Equal(t, 200.0, b.Package.PricePerNight)
	assert.Equal(t, "2026-04-10", b.Stay.CheckIn)
	assert.Equal(t, "2026-04-14", b.Stay.CheckOut)
	assert.Equal(t, 4, b.Stay.Nights)
	assert.Equal(t, "ocean", b.Preferences.ViewType)
	assert.Equal(t, "", b.Preferences.UnitType)

	fetched, err := svc.GetBookingByBookingID(context.Background(), " "+strings.ToLower(b.BookingID)+" ")
	require.NoError(t, err)
	assert.Equal(t, b.Guest, fetched.Booking.Guest)
	assert.Equal(t, b.Stay, fetched.Booking.Stay)
	assert.Equal(t, b.Pricing, fetched.Booking.Pricing)
	assert.Equal(t, response.PricingResponse{Subtotal: 800, CleaningFee: 60, Tax: 86, Total: 946}, fetched.Booking.Pricing)

	f.notifier.AssertExpectations(t)
}

func TestCreateBookingRequest_MinimumStay(t *testing.T) {
	f := newFixture()
	svc := f.service(utils.BookingConfig{}, nil)

	_, err := svc.CreateBookingRequest(context.Background(), createRequest("extended", "2026-04-10", "2026-04-12"))

	require.ErrorIs(t, err, ErrMinimumStay)
	assert.Equal(t, "Minimum 3 nights required for Extended package", err.Error())
	assert.Equal(t, 0, f.bookings.count())
}

func TestCreateBookingRequest_CheckOutBeforeCheckIn(t *testing.T) {
	f := newFixture()
	svc := f.service(utils.BookingConfig{}, nil)

	_, err := svc.CreateBookingRequest(context.Background(), createRequest("standard", "2026-04-12", "2026-04-10"))

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "checkOut must be after checkIn", vErr.Fields["stay.checkOut"])
}

func TestCreateBookingRequest_Conflict(t *testing.T) {
	f := newFixture()
	svc := f.service(utils.BookingConfig{}, nil)
	f.existing("BK-20260301-100001", "2026-04-10", "2026-04-15", entity.BookingStatusConfirmed)

	_, err := svc.CreateBookingRequest(context.Background(), createRequest("standard", "2026-04-14", "2026-04-16"))

	assert.ErrorIs(t, err, ErrDateRangeConflict)
	assert.Equal(t, 1, f.bookings.count())
}

func TestCreateBookingRequest_StorageOverlapIsConflict(t *testing.T) {
	f := newFixture()
	f.bookings.createErrs = []error{repository.ErrOverlap}
	svc := f.service(utils.BookingConfig{}, nopLocker{})

	_, err := svc.CreateBookingRequest(context.Background(), createRequest("standard", "2026-04-10", "2026-04-12"))

	assert.ErrorIs(t, err, ErrDateRangeConflict)
}

func TestCreateBookingRequest_PackageNotFound(t *testing.T) {
	f := newFixture()
	svc := f.service(utils.BookingConfig{}, nil)

	req := createRequest("", "2026-04-10", "2026-04-12")
	req.PackageID = uuid.NewString()

	_, err := svc.CreateBookingRequest(context.Background(), req)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateBookingRequest_NotifierFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture()
	svc := f.service(utils.BookingConfig{}, nil)
	f.notifier.On("BookingReceived", mock.Anything, mock.Anything).Return(errors.New("queue full"))

	res, err := svc.CreateBookingRequest(context.Background(), createRequest("standard", "2026-04-10", "2026-04-12"))

	require.NoError(t, err)
	assert.NotEmpty(t, res.Booking.BookingID)
	assert.Equal(t, 1, f.bookings.count())
}

func TestCreateBookingRequest_ConcurrentOverlappingRequests(t *testing.T) {
	f := newFixture()
	f.bookings.checkDelay = 5 * time.Millisecond
	f.notifier.On("BookingReceived", mock.Anything, mock.Anything).Return(nil)
	svc := f.service(utils.BookingConfig{}, lock.NewKeyedMutex())

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
		others    []error
	)

	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start

			// every request shares at least the night of 2026-04-12
			checkIn := time.Date(2026, 4, 10+i%3, 0, 0, 0, 0, time.UTC).Format(utils.DateLayout)
			_, err := svc.CreateBookingRequest(context.Background(), createRequest("standard", checkIn, "2026-04-13"))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrDateRangeConflict):
				conflicts++
			default:
				others = append(others, err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Empty(t, others)
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicts)
	assert.Equal(t, 1, f.bookings.count())
}

func TestCreateBookingRequest_PricingMustFitStorage(t *testing.T) {
	tests := []struct {
		name    string
		pricing *request.PricingRequest
		field   string
	}{
		{"sub-cent subtotal", &request.PricingRequest{Subtotal: 123.456, CleaningFee: 60, Tax: 10, Total: 193.46}, "pricing.subtotal"},
		{"total beyond column", &request.PricingRequest{Subtotal: 400, CleaningFee: 60, Tax: 46, Total: 1e10}, "pricing.total"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			svc := f.service(utils.BookingConfig{}, nil)

			req := createRequest("standard", "2026-04-10", "2026-04-12")
			req.Pricing = tt.pricing

			_, err := svc.CreateBookingRequest(context.Background(), req)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Fields, tt.field)
			assert.Equal(t, 0, f.bookings.count())
		})
	}
}

func TestCreateBookingRequest_PricingRoundTrip(t *testing.T) {
	f := newFixture()
	f.notifier.On("BookingReceived", mock.Anything, mock.Anything).Return(nil)
	svc := f.service(utils.BookingConfig{}, nil)

	req := createRequest("standard", "2026-04-10", "2026-04-12")
	req.Pricing = &request.PricingRequest{Subtotal: 123.45, CleaningFee: 0.1, Tax: 9.99, Total: 133.54}

	created, err := svc.CreateBookingRequest(context.Background(), req)
	require.NoError(t, err)

	got, err := svc.GetBookingByBookingID(context.Background(), created.Booking.BookingID)
	require.NoError(t, err)

	assert.Equal(t, created.Booking.Pricing, got.Booking.Pricing)
	assert.Equal(t, 123.45, got.Booking.Pricing.Subtotal)
	assert.Equal(t, 133.54, got.Booking.Pricing.Total)
}

func TestCreateBookingRequest_StrictPricing(t *testing.T) {
	f := newFixture()
	svc := f.service(utils.BookingConfig{StrictPricing: true}, nil)
	f.notifier.On("BookingReceived", mock.Anything, mock.Anything).Return(nil)

	// 2 nights at 200
	bad := createRequest("standard", "2026-04-10", "2026-04-12")
	bad.Pricing = &request.PricingRequest{Subtotal: 100, CleaningFee: 60, Tax: 10, Total: 999}

	_, err := svc.CreateBookingRequest(context.Background(), bad)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Fields, "pricing.subtotal")
	assert.Contains(t, vErr.Fields, "pricing.total")

	good := createRequest("standard", "2026-04-10", "2026-04-12")
	good.Pricing = &request.PricingRequest{Subtotal: 400, CleaningFee: 60, Tax: 46, Total: 506}

	_, err = svc.CreateBookingRequest(context.Background(), good)
	assert.NoError(t, err)
}

func TestCreateBookingRequest_RetriesDuplicateIDAtInsert(t *testing.T) {
	f := newFixture()
	f.bookings.createErrs = []error{repository.ErrDuplicateBookingID}
	f.notifier.On("BookingReceived", mock.Anything, mock.Anything).Return(nil)
	svc := f.service(utils.BookingConfig{}, nil)

	ids := []string{"BK-20260301-111111", "BK-20260301-222222"}
	calls := 0
	svc.generateID = func(time.Time) (string, error) {
		id := ids[calls%len(ids)]
		calls++
		return id, nil
	}

	res, err := svc.CreateBookingRequest(context.Background(), createRequest("standard", "2026-04-10", "2026-04-12"))

	require.NoError(t, err)
	assert.Equal(t, "BK-20260301-222222", res.Booking.BookingID)
	assert.Equal(t, 2, calls)
}

func TestCreateBookingRequest_IDExhausted(t *testing.T) {
	f := newFixture()
	svc := f.service(utils.BookingConfig{IDAttempts: 5}, nil)
	f.bookings.takenIDs["BK-20260301-111111"] = true

	calls := 0
	svc.generateID = func(time.Time) (string, error) {
		calls++
		return "BK-20260301-111111", nil
	}

	_, err := svc.CreateBookingRequest(context.Background(), createRequest("standard", "2026-04-10", "2026-04-12"))

	assert.ErrorIs(t, err, ErrIDGenerationExhausted)
	assert.Equal(t, 5, calls)
	assert.Equal(t, 0, f.bookings.count())
}

func TestCreateBookingRequest_IDAttemptsShareOneBudget(t *testing.T) {
	f := newFixture()
	svc := f.service(utils.BookingConfig{IDAttempts: 5}, nil)

	// first draw is already in use, the next four lose the race at insert
	f.bookings.takenIDs["BK-20260301-100000"] = true
	f.bookings.createErrs = []error{
		repository.ErrDuplicateBookingID,
		repository.ErrDuplicateBookingID,
		repository.ErrDuplicateBookingID,
		repository.ErrDuplicateBookingID,
	}

	calls := 0
	svc.generateID = func(time.Time) (string, error) {
		id := fmt.Sprintf("BK-20260301-%06d", 100000+calls)
		calls++
		return id, nil
	}

	_, err := svc.CreateBookingRequest(context.Background(), createRequest("standard", "2026-04-10", "2026-04-12"))

	assert.ErrorIs(t, err, ErrIDGenerationExhausted)
	assert.Equal(t, 5, calls)
}

func TestDrawBookingID_UniqueAcrossTenThousand(t *testing.T) {
	f := newFixture()
	svc := f.service(utils.BookingConfig{}, nil)

	seen := make(map[string]bool, 10000)
	for len(seen) < 10000 {
		var (
			id   string
			free bool
			err  error
		)
		for attempt := 0; attempt < 5 && !free; attempt++ {
			id, free, err = svc.drawBookingID(context.Background(), f.fixedTime)
			require.NoError(t, err)
		}
		require.True(t, free, "no free ID within 5 draws")
		require.Regexp(t, bookingIDPattern, id)
		require.False(t, seen[id], "duplicate %s", id)

		seen[id] = true
		f.bookings.takenIDs[id] = true
	}
}

func TestGetBookingByBookingID_NotFound(t *testing.T) {
	f := newFixture()
	svc := f.service(utils.BookingConfig{}, nil)

	_, err := svc.GetBookingByBookingID(context.Background(), "BK-20260301-999999")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Booking BK-20260301-999999 not found", err.Error())
}

func TestCancelStalePending(t *testing.T) {
	f := newFixture()
	svc := f.service(utils.BookingConfig{PendingTTL: time.Hour}, nil)

	f.existing("BK-20260301-100001", "2026-04-10", "2026-04-15", entity.BookingStatusPending)
	f.bookings.bookings["BK-20260301-100001"].CreatedAt = f.fixedTime.Add(-2 * time.Hour)
	f.bookings.bookings["BK-20260301-100001"].PaymentStatus = entity.PaymentStatusNone

	f.existing("BK-20260301-100002", "2026-05-10", "2026-05-15", entity.BookingStatusPending)
	f.bookings.bookings["BK-20260301-100002"].PaymentStatus = entity.PaymentStatusNone

	n, err := svc.CancelStalePending(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, entity.BookingStatusCancelled, f.bookings.bookings["BK-20260301-100001"].Status)
	assert.Equal(t, entity.BookingStatusPending, f.bookings.bookings["BK-20260301-100002"].Status)
}

func TestCancelStalePending_Disabled(t *testing.T) {
	f := newFixture()
	svc := f.service(utils.BookingConfig{}, nil)

	n, err := svc.CancelStalePending(context.Background())

	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStoreError_Classification(t *testing.T) {
	assert.ErrorIs(t, storeError(context.DeadlineExceeded, "find house"), ErrTimeout)

	plain := storeError(errors.New("syntax error"), "find house")
	assert.NotErrorIs(t, plain, ErrStoreUnavailable)
	assert.NotErrorIs(t, plain, ErrTimeout)
}
