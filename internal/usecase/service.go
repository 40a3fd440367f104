package usecase

import (
	"vacation-rental/internal/data/repository"
	"vacation-rental/pkg/lock"
	"vacation-rental/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	House   HouseService
	Booking BookingService
}

func NewService(
	repo *repository.Repository,
	locker lock.Locker,
	notifier BookingNotifier,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	return &Service{
		House:   NewHouseService(repo, log),
		Booking: NewBookingService(repo, locker, notifier, config.Booking, log),
	}
}
