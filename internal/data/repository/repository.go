package repository

import (
	"room-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Reservation ReservationRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Reservation: NewReservationRepository(db, log),
	}
}

// NewMemoryRepository backs every repository with process memory. Used when DB_DRIVER=memory.
func NewMemoryRepository(log *zap.Logger) *Repository {
	return &Repository{
		Reservation: NewMemoryReservationRepository(log),
	}
}
