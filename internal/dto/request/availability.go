package request

import (
	"fmt"
	"strings"
	"time"

	"room-booking/internal/data/entity"
	"room-booking/pkg/utils"
)

// AvailabilityRequest is built from query parameters. Without start_time the
// whole booking day is checked; without room_id every room is.
type AvailabilityRequest struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"omitempty,excluded_without=StartTime"`
	RoomID    *int   `json:"room_id" validate:"omitempty,gt=0"`
}

// Window resolves the request against the booking day. A start without an end
// covers one slot of slotWidth.
func (r *AvailabilityRequest) Window(loc *time.Location, dayRange utils.ClockRange, slotWidth time.Duration) (entity.Interval, error) {
	day, err := time.ParseInLocation(DateLayout, r.Date, loc)
	if err != nil {
		return entity.Interval{}, fmt.Errorf("invalid date %q", r.Date)
	}

	if r.StartTime == "" {
		return entity.NewInterval(utils.AtClock(day, dayRange.Start), utils.AtClock(day, dayRange.End)), nil
	}

	startClock, err := utils.ParseClock(r.StartTime)
	if err != nil {
		return entity.Interval{}, fmt.Errorf("invalid start_time %q", r.StartTime)
	}
	start := utils.AtClock(day, startClock)

	if r.EndTime == "" {
		return entity.NewInterval(start, start.Add(slotWidth)), nil
	}

	endClock, err := utils.ParseClock(r.EndTime)
	if err != nil {
		return entity.Interval{}, fmt.Errorf("invalid end_time %q", r.EndTime)
	}
	return entity.NewInterval(start, utils.AtClock(day, endClock)), nil
}

// SlotSearchRequest asks for free slots on the day of start_from.
type SlotSearchRequest struct {
	TimeRange     string `json:"time_range" validate:"max=32"`
	PreferredRoom *int   `json:"preferred_room" validate:"omitempty,gt=0"`
	StartFrom     string `json:"start_from" validate:"required"`
}

var startFromLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	DateLayout,
}

// StartFromTime accepts RFC3339, a local "2006-01-02T15:04" or a bare date.
func (r *SlotSearchRequest) StartFromTime(loc *time.Location) (time.Time, error) {
	value := strings.TrimSpace(r.StartFrom)
	for _, layout := range startFromLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid start_from %q", r.StartFrom)
}
