package usecase

import (
	"context"
	"strings"

	"vacation-rental/internal/data/entity"
	"vacation-rental/internal/data/repository"
	"vacation-rental/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type HouseService interface {
	ListHouses(ctx context.Context) (*response.HouseListResponse, error)
	GetHouseBySlug(ctx context.Context, slug string) (*response.HouseDetailResponse, error)
	GetHousePackages(ctx context.Context, slug string) (*response.HousePackagesResponse, error)
	GetUnavailableDates(ctx context.Context, slug string) (*response.UnavailableDatesResponse, error)
}

type houseService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewHouseService(repo *repository.Repository, log *zap.Logger) HouseService {
	return &houseService{
		repo: repo,
		log:  log.With(zap.String("service", "house")),
	}
}

func (s *houseService) ListHouses(ctx context.Context) (*response.HouseListResponse, error) {
	houses, err := s.repo.House.FindActive(ctx)
	if err != nil {
		return nil, storeError(err, "list houses")
	}

	result := make([]response.HouseResponse, len(houses))
	for i, house := range houses {
		result[i] = response.HouseToResponse(house)
	}

	s.log.Debug("Houses listed", zap.Int("count", len(houses)))

	return &response.HouseListResponse{Houses: result}, nil
}

func (s *houseService) GetHouseBySlug(ctx context.Context, slug string) (*response.HouseDetailResponse, error) {
	house, err := findActiveHouse(ctx, s.repo, "", slug)
	if err != nil {
		return nil, err
	}

	return &response.HouseDetailResponse{House: response.HouseToResponse(house)}, nil
}

func (s *houseService) GetHousePackages(ctx context.Context, slug string) (*response.HousePackagesResponse, error) {
	house, err := findActiveHouse(ctx, s.repo, "", slug)
	if err != nil {
		return nil, err
	}

	packages, err := s.repo.Package.FindByHouseID(ctx, house.ID)
	if err != nil {
		return nil, storeError(err, "list packages")
	}

	result := make([]response.PackageResponse, len(packages))
	for i, pkg := range packages {
		result[i] = response.PackageToResponse(pkg)
	}

	return &response.HousePackagesResponse{
		House:    response.HouseToSummary(house),
		Packages: result,
	}, nil
}

func (s *houseService) GetUnavailableDates(ctx context.Context, slug string) (*response.UnavailableDatesResponse, error) {
	house, err := findActiveHouse(ctx, s.repo, "", slug)
	if err != nil {
		return nil, err
	}

	bookings, err := s.repo.Booking.FindBlockingByHouse(ctx, house.ID)
	if err != nil {
		return nil, storeError(err, "list unavailable dates")
	}

	ranges := make([]response.DateRange, len(bookings))
	for i, b := range bookings {
		ranges[i] = response.BookingToDateRange(b)
	}

	s.log.Debug("Unavailable dates retrieved",
		zap.String("house", house.Slug),
		zap.Int("ranges", len(ranges)),
	)

	return &response.UnavailableDatesResponse{
		House:            response.HouseToSummary(house),
		UnavailableDates: ranges,
	}, nil
}

// findActiveHouse resolves a house by ID when given, by slug otherwise.
// Inactive houses are reported as not found.
func findActiveHouse(ctx context.Context, repo *repository.Repository, houseID, slug string) (*entity.House, error) {
	var (
		house *entity.House
		err   error
		label string
	)

	if houseID != "" {
		label = houseID
		id, parseErr := uuid.Parse(houseID)
		if parseErr != nil {
			return nil, notFound("House %s not found", houseID)
		}
		house, err = repo.House.FindByID(ctx, id)
	} else {
		label = strings.ToLower(strings.TrimSpace(slug))
		house, err = repo.House.FindBySlug(ctx, label)
	}

	if err != nil {
		return nil, storeError(err, "find house")
	}
	if house == nil || !house.IsActive {
		return nil, notFound("House %s not found", label)
	}

	return house, nil
}

// findPackage resolves a package of the house by ID when given, by code otherwise.
func findPackage(ctx context.Context, repo *repository.Repository, house *entity.House, packageID, code string) (*entity.Package, error) {
	var (
		pkg   *entity.Package
		err   error
		label string
	)

	if packageID != "" {
		label = packageID
		id, parseErr := uuid.Parse(packageID)
		if parseErr != nil {
			return nil, notFound("Package %s not found for house %s", packageID, house.Slug)
		}
		pkg, err = repo.Package.FindByID(ctx, id)
	} else {
		label = strings.ToLower(strings.TrimSpace(code))
		pkg, err = repo.Package.FindByHouseAndCode(ctx, house.ID, label)
	}

	if err != nil {
		return nil, storeError(err, "find package")
	}
	if pkg == nil || pkg.HouseID != house.ID {
		return nil, notFound("Package %s not found for house %s", label, house.Slug)
	}

	return pkg, nil
}
