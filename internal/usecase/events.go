package usecase

import (
	"context"
	"time"

	"room-booking/internal/data/entity"
	"room-booking/pkg/metrics"

	"go.uber.org/zap"
)

const (
	EventReservationCreated   = "reservation.created"
	EventReservationCancelled = "reservation.cancelled"
)

// EventPublisher is satisfied by mq.Publisher and mq.NopPublisher.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type ReservationEvent struct {
	Type          string                   `json:"type"`
	ReservationID string                   `json:"reservation_id"`
	UserID        string                   `json:"user_id"`
	RoomID        int                      `json:"room_id"`
	StartTime     time.Time                `json:"start_time"`
	EndTime       time.Time                `json:"end_time"`
	Status        entity.ReservationStatus `json:"status"`
	OccurredAt    time.Time                `json:"occurred_at"`
}

func newReservationEvent(eventType string, r *entity.Reservation) ReservationEvent {
	return ReservationEvent{
		Type:          eventType,
		ReservationID: r.ID.String(),
		UserID:        r.UserID,
		RoomID:        r.RoomID,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		Status:        r.Status,
		OccurredAt:    time.Now().UTC(),
	}
}

// publish is fire-and-report: a failed notification never fails the request.
func publish(ctx context.Context, publisher EventPublisher, log *zap.Logger, eventType string, r *entity.Reservation) {
	if err := publisher.PublishJSON(ctx, eventType, newReservationEvent(eventType, r)); err != nil {
		metrics.RecordEvent(eventType, "failed")
		log.Warn("Failed to publish reservation event",
			zap.Error(err),
			zap.String("event", eventType),
			zap.String("reservation_id", r.ID.String()),
		)
		return
	}
	metrics.RecordEvent(eventType, "success")
}
