package adaptor

import (
	"context"

	"vacation-rental/internal/dto/request"
	"vacation-rental/internal/dto/response"

	"github.com/stretchr/testify/mock"
)

type mockHouseService struct {
	mock.Mock
}

func (m *mockHouseService) ListHouses(ctx context.Context) (*response.HouseListResponse, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).(*response.HouseListResponse)
	return res, args.Error(1)
}

func (m *mockHouseService) GetHouseBySlug(ctx context.Context, slug string) (*response.HouseDetailResponse, error) {
	args := m.Called(ctx, slug)
	res, _ := args.Get(0).(*response.HouseDetailResponse)
	return res, args.Error(1)
}

func (m *mockHouseService) GetHousePackages(ctx context.Context, slug string) (*response.HousePackagesResponse, error) {
	args := m.Called(ctx, slug)
	res, _ := args.Get(0).(*response.HousePackagesResponse)
	return res, args.Error(1)
}

func (m *mockHouseService) GetUnavailableDates(ctx context.Context, slug string) (*response.UnavailableDatesResponse, error) {
	args := m.Called(ctx, slug)
	res, _ := args.Get(0).(*response.UnavailableDatesResponse)
	return res, args.Error(1)
}

type mockBookingService struct {
	mock.Mock
}

func (m *mockBookingService) CheckAvailability(ctx context.Context, req *request.CheckAvailabilityRequest) (*response.AvailabilityResponse, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*response.AvailabilityResponse)
	return res, args.Error(1)
}

func (m *mockBookingService) CreateBookingRequest(ctx context.Context, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*response.BookingResponse)
	return res, args.Error(1)
}

func (m *mockBookingService) GetBookingByBookingID(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	args := m.Called(ctx, bookingID)
	res, _ := args.Get(0).(*response.BookingResponse)
	return res, args.Error(1)
}

func (m *mockBookingService) CancelStalePending(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}
