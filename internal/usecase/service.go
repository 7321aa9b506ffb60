package usecase

import (
	"room-booking/internal/data/repository"
	"room-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Reservation  ReservationService
	Availability AvailabilityService
}

// NewService assembles the booking core. locks is owned by the caller so tests
// and alternative backends can inspect or replace it.
func NewService(repo *repository.Repository, locks KeyLocker, publisher EventPublisher, config *utils.Config, log *zap.Logger) *Service {
	rooms := NewRoomSet(config.Booking.Rooms)
	engine := NewAvailabilityEngine(repo.Reservation, log)
	coordinator := NewBookingCoordinator(engine, repo.Reservation, locks, rooms, config.Booking.Location, log)
	slots := NewSlotGenerator(engine, rooms, config.Booking, log)

	return &Service{
		Reservation:  NewReservationService(coordinator, repo.Reservation, publisher, config.Booking.Location, log),
		Availability: NewAvailabilityService(engine, slots, rooms, config.Booking, log),
	}
}
