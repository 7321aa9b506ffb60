package usecase

import (
	"context"

	"room-booking/internal/data/entity"
)

// ReservationStore is the slice of persistence the booking core depends on.
// repository.ReservationRepository satisfies it.
//
// FindByWindow returns every reservation whose interval intersects window, in
// any order. No atomicity is assumed between FindByWindow and Create.
type ReservationStore interface {
	Create(ctx context.Context, draft *entity.ReservationDraft) (*entity.Reservation, error)
	FindByWindow(ctx context.Context, window entity.Interval) ([]*entity.Reservation, error)
}
