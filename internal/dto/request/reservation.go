package request

import (
	"fmt"
	"time"

	"room-booking/internal/data/entity"
	"room-booking/pkg/utils"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// CreateReservationRequest carries either end_time or duration_minutes, never both.
type CreateReservationRequest struct {
	UserID          string            `json:"user_id" validate:"required,max=64"`
	RoomID          int               `json:"room_id" validate:"required,gt=0"`
	Date            string            `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime       string            `json:"start_time" validate:"required,datetime=15:04"`
	EndTime         string            `json:"end_time" validate:"required_without=DurationMinutes,excluded_with=DurationMinutes"`
	DurationMinutes int               `json:"duration_minutes" validate:"omitempty,min=1,max=1440"`
	Metadata        map[string]string `json:"metadata" validate:"omitempty,max=20"`
}

// Window resolves date, start and end (or duration) into absolute times in loc.
func (r *CreateReservationRequest) Window(loc *time.Location) (entity.Interval, error) {
	day, err := time.ParseInLocation(DateLayout, r.Date, loc)
	if err != nil {
		return entity.Interval{}, fmt.Errorf("invalid date %q", r.Date)
	}

	startClock, err := utils.ParseClock(r.StartTime)
	if err != nil {
		return entity.Interval{}, fmt.Errorf("invalid start_time %q", r.StartTime)
	}
	start := utils.AtClock(day, startClock)

	if r.DurationMinutes > 0 {
		return entity.NewInterval(start, start.Add(time.Duration(r.DurationMinutes)*time.Minute)), nil
	}

	endClock, err := utils.ParseClock(r.EndTime)
	if err != nil {
		return entity.Interval{}, fmt.Errorf("invalid end_time %q", r.EndTime)
	}
	return entity.NewInterval(start, utils.AtClock(day, endClock)), nil
}
