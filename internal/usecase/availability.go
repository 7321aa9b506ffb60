package usecase

import (
	"context"

	"room-booking/internal/data/entity"
	"room-booking/pkg/metrics"

	"go.uber.org/zap"
)

type AvailabilityEngine interface {
	// ComputeAvailability reports every room in rooms against window using a
	// single store fetch. Rooms without conflicts get an empty, non-nil list.
	ComputeAvailability(ctx context.Context, rooms []int, window entity.Interval) (map[int]*entity.AvailableRoom, error)
}

type availabilityEngine struct {
	store ReservationStore
	log   *zap.Logger
}

func NewAvailabilityEngine(store ReservationStore, log *zap.Logger) AvailabilityEngine {
	return &availabilityEngine{
		store: store,
		log:   log.With(zap.String("service", "availability_engine")),
	}
}

func (e *availabilityEngine) ComputeAvailability(ctx context.Context, rooms []int, window entity.Interval) (map[int]*entity.AvailableRoom, error) {
	if !window.Valid() {
		return nil, invalidInput("window %s must start before it ends", window)
	}
	if len(rooms) == 0 {
		return nil, invalidInput("at least one room is required")
	}

	reservations, err := e.store.FindByWindow(ctx, window)
	if err != nil {
		metrics.RecordAvailabilityCheck("failed")
		e.log.Error("Failed to fetch reservations for window",
			zap.Error(err),
			zap.Stringer("window", window),
		)
		return nil, persistence(err, "fetch reservations in %s", window)
	}

	result := make(map[int]*entity.AvailableRoom, len(rooms))
	for _, id := range rooms {
		result[id] = &entity.AvailableRoom{
			RoomID:                  id,
			IsAvailable:             true,
			ConflictingReservations: []*entity.Reservation{},
		}
	}

	for _, r := range reservations {
		if !r.Status.Occupies() {
			continue
		}
		room, ok := result[r.RoomID]
		if !ok {
			continue
		}
		// Stores may over-fetch; only true intersections count.
		if !r.Window().Overlaps(window) {
			continue
		}
		room.IsAvailable = false
		room.ConflictingReservations = append(room.ConflictingReservations, r)
	}

	metrics.RecordAvailabilityCheck("ok")
	return result, nil
}
