package response

import (
	"sort"
	"time"

	"room-booking/internal/data/entity"
)

type AvailableRoomResponse struct {
	RoomID                  int                   `json:"room_id"`
	IsAvailable             bool                  `json:"is_available"`
	ConflictingReservations []ReservationResponse `json:"conflicting_reservations"`
}

type AvailabilityResponse struct {
	StartTime time.Time               `json:"start_time"`
	EndTime   time.Time               `json:"end_time"`
	Rooms     []AvailableRoomResponse `json:"rooms"`
}

// AvailabilityToResponse flattens the per-room map, ordered by room.
func AvailabilityToResponse(window entity.Interval, rooms map[int]*entity.AvailableRoom) AvailabilityResponse {
	ids := make([]int, 0, len(rooms))
	for id := range rooms {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := AvailabilityResponse{
		StartTime: window.Start,
		EndTime:   window.End,
		Rooms:     make([]AvailableRoomResponse, 0, len(ids)),
	}
	for _, id := range ids {
		room := rooms[id]
		out.Rooms = append(out.Rooms, AvailableRoomResponse{
			RoomID:                  room.RoomID,
			IsAvailable:             room.IsAvailable,
			ConflictingReservations: ReservationsToResponse(room.ConflictingReservations),
		})
	}
	return out
}

type SlotResponse struct {
	RoomID    int       `json:"room_id"`
	Date      string    `json:"date"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type SlotSearchResponse struct {
	TimeRange string         `json:"time_range"`
	Total     int            `json:"total"`
	Slots     []SlotResponse `json:"slots"`
}

func SlotsToResponse(timeRange string, slots []entity.TimeSlot) SlotSearchResponse {
	out := SlotSearchResponse{
		TimeRange: timeRange,
		Total:     len(slots),
		Slots:     make([]SlotResponse, 0, len(slots)),
	}
	for _, s := range slots {
		out.Slots = append(out.Slots, SlotResponse{
			RoomID:    s.RoomID,
			Date:      s.Date.Format("2006-01-02"),
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
		})
	}
	return out
}

type RoomsResponse struct {
	Rooms       []int             `json:"rooms"`
	SlotMinutes int               `json:"slot_minutes"`
	Timezone    string            `json:"timezone"`
	Ranges      map[string]string `json:"ranges"`
}
