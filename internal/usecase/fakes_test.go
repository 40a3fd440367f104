package usecase

import (
	"context"
	"sync"
	"time"

	"vacation-rental/internal/data/entity"
	"vacation-rental/internal/data/repository"
	"vacation-rental/internal/dto/response"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type memHouseRepo struct {
	houses []*entity.House
}

func (m *memHouseRepo) FindActive(ctx context.Context) ([]*entity.House, error) {
	var out []*entity.House
	for _, h := range m.houses {
		if h.IsActive {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *memHouseRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.House, error) {
	for _, h := range m.houses {
		if h.ID == id {
			return h, nil
		}
	}
	return nil, nil
}

func (m *memHouseRepo) FindBySlug(ctx context.Context, slug string) (*entity.House, error) {
	for _, h := range m.houses {
		if h.Slug == slug {
			return h, nil
		}
	}
	return nil, nil
}

func (m *memHouseRepo) Upsert(ctx context.Context, house *entity.House) error {
	m.houses = append(m.houses, house)
	return nil
}

type memPackageRepo struct {
	packages []*entity.Package
}

func (m *memPackageRepo) FindByHouseID(ctx context.Context, houseID uuid.UUID) ([]*entity.Package, error) {
	var out []*entity.Package
	for _, p := range m.packages {
		if p.HouseID == houseID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPackageRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Package, error) {
	for _, p := range m.packages {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memPackageRepo) FindByHouseAndCode(ctx context.Context, houseID uuid.UUID, code string) (*entity.Package, error) {
	for _, p := range m.packages {
		if p.HouseID == houseID && p.Code == code {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memPackageRepo) Upsert(ctx context.Context, pkg *entity.Package) error {
	m.packages = append(m.packages, pkg)
	return nil
}

// memBookingRepo checks and inserts in two separate critical sections, so
// concurrent callers can interleave unless something above serializes them.
type memBookingRepo struct {
	mu         sync.Mutex
	bookings   map[string]*entity.BookingRequest
	takenIDs   map[string]bool
	createErrs []error
	checkDelay time.Duration
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{
		bookings: make(map[string]*entity.BookingRequest),
		takenIDs: make(map[string]bool),
	}
}

func (m *memBookingRepo) add(b *entity.BookingRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.BookingID] = b
}

func (m *memBookingRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

func (m *memBookingRepo) FindByBookingID(ctx context.Context, bookingID string) (*entity.BookingRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (m *memBookingRepo) ExistsByBookingID(ctx context.Context, bookingID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.bookings[bookingID]
	return ok || m.takenIDs[bookingID], nil
}

func (m *memBookingRepo) FindBlockingByHouse(ctx context.Context, houseID uuid.UUID) ([]*entity.BookingRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.BookingRequest
	for _, b := range m.bookings {
		if b.HouseID == houseID && b.Status.Blocks() {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBookingRepo) FindOverlapping(ctx context.Context, houseID uuid.UUID, checkIn, checkOut time.Time, exclude *string) (*entity.BookingRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overlapLocked(houseID, checkIn, checkOut, exclude), nil
}

func (m *memBookingRepo) overlapLocked(houseID uuid.UUID, checkIn, checkOut time.Time, exclude *string) *entity.BookingRequest {
	for _, b := range m.bookings {
		if b.HouseID != houseID || !b.Status.Blocks() {
			continue
		}
		if exclude != nil && b.BookingID == *exclude {
			continue
		}
		if overlaps(b.Stay.CheckIn, b.Stay.CheckOut, checkIn, checkOut) {
			return b
		}
	}
	return nil
}

// overlaps mirrors the SQL predicate: [aStart, aEnd) and [bStart, bEnd) share a night.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

func (m *memBookingRepo) CreateIfAvailable(ctx context.Context, b *entity.BookingRequest) (*entity.BookingRequest, error) {
	m.mu.Lock()
	if len(m.createErrs) > 0 {
		err := m.createErrs[0]
		m.createErrs = m.createErrs[1:]
		m.mu.Unlock()
		return nil, err
	}
	conflict := m.overlapLocked(b.HouseID, b.Stay.CheckIn, b.Stay.CheckOut, nil)
	m.mu.Unlock()

	if conflict != nil {
		return conflict, nil
	}

	time.Sleep(m.checkDelay)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[b.BookingID]; ok {
		return nil, repository.ErrDuplicateBookingID
	}
	copied := *b
	m.bookings[b.BookingID] = &copied
	return nil, nil
}

func (m *memBookingRepo) CancelStalePending(ctx context.Context, cutoff time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, b := range m.bookings {
		if b.Status == entity.BookingStatusPending && b.PaymentStatus == entity.PaymentStatusNone && b.CreatedAt.Before(cutoff) {
			b.Status = entity.BookingStatusCancelled
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) BookingReceived(ctx context.Context, booking response.BookingSummary) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

// nopLocker lets every caller through at once.
type nopLocker struct{}

func (nopLocker) Acquire(ctx context.Context, key string) (func(), error) {
	return func() {}, nil
}
