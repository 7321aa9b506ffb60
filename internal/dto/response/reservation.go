package response

import (
	"time"

	"room-booking/internal/data/entity"
)

type ReservationResponse struct {
	ID        string                   `json:"id"`
	UserID    string                   `json:"user_id"`
	RoomID    int                      `json:"room_id"`
	StartTime time.Time                `json:"start_time"`
	EndTime   time.Time                `json:"end_time"`
	Status    entity.ReservationStatus `json:"status"`
	Metadata  map[string]string        `json:"metadata,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}

func ReservationToResponse(r *entity.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:        r.ID.String(),
		UserID:    r.UserID,
		RoomID:    r.RoomID,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Status:    r.Status,
		Metadata:  r.Metadata,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func ReservationsToResponse(rs []*entity.Reservation) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, ReservationToResponse(r))
	}
	return out
}
