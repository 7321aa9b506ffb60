package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"room-booking/internal/data/entity"
	"room-booking/internal/data/repository"
	"room-booking/pkg/metrics"

	"go.uber.org/zap"
)

// BookingRequest is a validated booking attempt. Window is already resolved to absolute times.
type BookingRequest struct {
	UserID   string
	RoomID   int
	Window   entity.Interval
	Metadata map[string]string
}

type BookingCoordinator interface {
	// Book creates a reservation unless the slot is in flight or taken.
	// Errors are always *BookingError.
	Book(ctx context.Context, req BookingRequest) (*entity.Reservation, error)
}

type bookingCoordinator struct {
	engine AvailabilityEngine
	store  ReservationStore
	locks  KeyLocker
	rooms  RoomSet
	loc    *time.Location
	log    *zap.Logger
}

func NewBookingCoordinator(engine AvailabilityEngine, store ReservationStore, locks KeyLocker, rooms RoomSet, loc *time.Location, log *zap.Logger) BookingCoordinator {
	if loc == nil {
		loc = time.UTC
	}
	return &bookingCoordinator{
		engine: engine,
		store:  store,
		locks:  locks,
		rooms:  rooms,
		loc:    loc,
		log:    log.With(zap.String("service", "booking_coordinator")),
	}
}

func (c *bookingCoordinator) validate(req BookingRequest) error {
	if strings.TrimSpace(req.UserID) == "" {
		return invalidInput("user id is required")
	}
	if !c.rooms.Contains(req.RoomID) {
		return invalidInput("room %d is not bookable", req.RoomID)
	}
	if !req.Window.Valid() {
		return invalidInput("start time %s must be before end time %s",
			req.Window.Start.Format(time.RFC3339), req.Window.End.Format(time.RFC3339))
	}
	return nil
}

func (c *bookingCoordinator) Book(ctx context.Context, req BookingRequest) (res *entity.Reservation, err error) {
	// Unknown rooms share one label so clients cannot mint new series.
	room := "invalid"
	if c.rooms.Contains(req.RoomID) {
		room = strconv.Itoa(req.RoomID)
	}
	defer func() {
		metrics.RecordBookingAttempt(outcome(err), room)
	}()

	if err := c.validate(req); err != nil {
		c.log.Warn("Booking rejected", zap.Error(err))
		return nil, err
	}

	key := NewBookingKey(req.Window.Start, req.RoomID, c.loc)
	log := c.log.With(zap.Stringer("key", key), zap.String("user_id", req.UserID))

	acquired, err := c.locks.TryLock(ctx, key.String())
	if err != nil {
		log.Error("Failed to acquire booking lock", zap.Error(err))
		return nil, persistence(err, "acquire booking lock %s", key)
	}
	if !acquired {
		log.Info("Booking already in flight")
		return nil, inFlight(key)
	}
	metrics.LockAcquired()

	defer func() {
		// The caller's cancellation must not leave the key locked.
		if uerr := c.locks.Unlock(context.WithoutCancel(ctx), key.String()); uerr != nil {
			log.Error("Failed to release booking lock", zap.Error(uerr))
		}
		metrics.LockReleased()
	}()

	availability, err := c.engine.ComputeAvailability(ctx, []int{req.RoomID}, req.Window)
	if err != nil {
		log.Error("Availability check failed", zap.Error(err))
		return nil, err
	}

	if room := availability[req.RoomID]; room != nil && !room.IsAvailable {
		log.Info("Booking overlaps existing reservations",
			zap.Int("conflicts", len(room.ConflictingReservations)),
		)
		return nil, overlap(req.RoomID, req.Window, room.ConflictingReservations)
	}

	created, err := c.store.Create(ctx, &entity.ReservationDraft{
		UserID:   req.UserID,
		RoomID:   req.RoomID,
		Window:   req.Window,
		Metadata: req.Metadata,
	})
	if err != nil {
		if errors.Is(err, repository.ErrReservationOverlap) {
			log.Warn("Store refused overlapping reservation", zap.Error(err))
			return nil, persistence(err, "store rejected reservation for room %d", req.RoomID)
		}
		log.Error("Failed to persist reservation", zap.Error(err))
		return nil, persistence(err, "create reservation for room %d", req.RoomID)
	}

	log.Info("Reservation committed", zap.String("reservation_id", created.ID.String()))
	return created, nil
}

func outcome(err error) string {
	if err == nil {
		return "committed"
	}
	be, ok := AsBookingError(err)
	if !ok {
		return string(KindPersistence)
	}
	if be.Reason != "" {
		return string(be.Reason)
	}
	return string(be.Kind)
}
