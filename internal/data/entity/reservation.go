package entity

import (
	"time"
)

type ReservationStatus string

const (
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// Occupies reports whether a reservation in this status blocks its room.
func (s ReservationStatus) Occupies() bool {
	return s != ReservationStatusCancelled
}

type Reservation struct {
	Base
	UserID    string            `db:"user_id"`
	RoomID    int               `db:"room_id"`
	StartTime time.Time         `db:"start_time"`
	EndTime   time.Time         `db:"end_time"`
	Status    ReservationStatus `db:"status"`
	Metadata  map[string]string `db:"metadata"`
}

func (r *Reservation) Window() Interval {
	return Interval{Start: r.StartTime, End: r.EndTime}
}

// ReservationDraft is what the core hands to the store; the store assigns ID and timestamps.
type ReservationDraft struct {
	UserID   string
	RoomID   int
	Window   Interval
	Metadata map[string]string
}

// TimeSlot is a fixed-width candidate window for one room. Never persisted.
type TimeSlot struct {
	RoomID    int
	Date      time.Time
	StartTime time.Time
	EndTime   time.Time
}

func (s TimeSlot) Window() Interval {
	return Interval{Start: s.StartTime, End: s.EndTime}
}

// AvailableRoom is the result of checking one room against a window.
type AvailableRoom struct {
	RoomID                  int
	IsAvailable             bool
	ConflictingReservations []*Reservation
}
