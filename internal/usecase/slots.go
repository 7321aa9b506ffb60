package usecase

import (
	"context"
	"strings"
	"time"

	"room-booking/internal/data/entity"
	"room-booking/pkg/utils"

	"go.uber.org/zap"
)

// SlotQuery asks for the free slots of one day.
type SlotQuery struct {
	// TimeRange is a configured range name: morning, afternoon or all.
	TimeRange string
	// PreferredRoom restricts the result to one room when set.
	PreferredRoom *int
	// StartFrom picks the day (in the booking location). Slots starting before it are dropped.
	StartFrom time.Time
}

type SlotGenerator interface {
	GenerateSlots(ctx context.Context, query SlotQuery) ([]entity.TimeSlot, error)
}

type slotGenerator struct {
	engine AvailabilityEngine
	rooms  RoomSet
	config utils.BookingConfig
	log    *zap.Logger
}

func NewSlotGenerator(engine AvailabilityEngine, rooms RoomSet, config utils.BookingConfig, log *zap.Logger) SlotGenerator {
	return &slotGenerator{
		engine: engine,
		rooms:  rooms,
		config: config,
		log:    log.With(zap.String("service", "slot_generator")),
	}
}

// resolveRange maps a range name to its clock window, applying the unknown-name policy.
func (g *slotGenerator) resolveRange(name string) (utils.ClockRange, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = utils.RangeAll
	}
	if cr, ok := g.config.Ranges[key]; ok {
		return cr, nil
	}
	if g.config.UnknownRange == utils.UnknownRangeReject {
		return utils.ClockRange{}, invalidInput("unknown time range %q", name)
	}
	g.log.Debug("Unknown time range, using full day", zap.String("time_range", name))
	return g.config.Day, nil
}

// DayStart returns local midnight of t's calendar day in loc.
func DayStart(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// candidateSlots lays a fixed grid over window for every room. Partial trailing slots are not emitted.
func candidateSlots(rooms []int, day time.Time, window entity.Interval, width time.Duration) []entity.TimeSlot {
	var slots []entity.TimeSlot
	for _, room := range rooms {
		for start := window.Start; !start.Add(width).After(window.End); start = start.Add(width) {
			slots = append(slots, entity.TimeSlot{
				RoomID:    room,
				Date:      day,
				StartTime: start,
				EndTime:   start.Add(width),
			})
		}
	}
	return slots
}

func (g *slotGenerator) GenerateSlots(ctx context.Context, query SlotQuery) ([]entity.TimeSlot, error) {
	if query.StartFrom.IsZero() {
		return nil, invalidInput("start_from is required")
	}

	rooms := g.rooms.IDs()
	if query.PreferredRoom != nil {
		if !g.rooms.Contains(*query.PreferredRoom) {
			return nil, invalidInput("room %d is not bookable", *query.PreferredRoom)
		}
		rooms = []int{*query.PreferredRoom}
	}

	cr, err := g.resolveRange(query.TimeRange)
	if err != nil {
		return nil, err
	}

	day := DayStart(query.StartFrom, g.config.Location)
	window := entity.NewInterval(utils.AtClock(day, cr.Start), utils.AtClock(day, cr.End))

	var candidates []entity.TimeSlot
	for _, s := range candidateSlots(rooms, day, window, g.config.SlotWidth) {
		if s.StartTime.Before(query.StartFrom) {
			continue
		}
		candidates = append(candidates, s)
	}
	if len(candidates) == 0 {
		return []entity.TimeSlot{}, nil
	}

	availability, err := g.engine.ComputeAvailability(ctx, rooms, window)
	if err != nil {
		return nil, err
	}

	free := make([]entity.TimeSlot, 0, len(candidates))
	for _, s := range candidates {
		room := availability[s.RoomID]
		if room == nil || room.IsAvailable {
			free = append(free, s)
			continue
		}
		if !blocked(s, room.ConflictingReservations) {
			free = append(free, s)
		}
	}

	g.log.Debug("Generated slots",
		zap.String("time_range", query.TimeRange),
		zap.Time("day", day),
		zap.Int("candidates", len(candidates)),
		zap.Int("free", len(free)),
	)

	return free, nil
}

// blocked reports whether any reservation intersects the slot. This covers
// reservations aligned to the grid as well as ones that straddle slots.
func blocked(slot entity.TimeSlot, reservations []*entity.Reservation) bool {
	for _, r := range reservations {
		if r.Window().Overlaps(slot.Window()) {
			return true
		}
	}
	return false
}
