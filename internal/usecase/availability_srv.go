package usecase

import (
	"context"
	"fmt"
	"time"

	"room-booking/internal/dto/request"
	"room-booking/internal/dto/response"
	"room-booking/pkg/utils"

	"go.uber.org/zap"
)

type AvailabilityService interface {
	CheckAvailability(ctx context.Context, req *request.AvailabilityRequest) (*response.AvailabilityResponse, error)
	SearchSlots(ctx context.Context, req *request.SlotSearchRequest) (*response.SlotSearchResponse, error)
	ListRooms(ctx context.Context) *response.RoomsResponse
}

type availabilityService struct {
	engine AvailabilityEngine
	slots  SlotGenerator
	rooms  RoomSet
	config utils.BookingConfig
	log    *zap.Logger
}

func NewAvailabilityService(engine AvailabilityEngine, slots SlotGenerator, rooms RoomSet, config utils.BookingConfig, log *zap.Logger) AvailabilityService {
	return &availabilityService{
		engine: engine,
		slots:  slots,
		rooms:  rooms,
		config: config,
		log:    log.With(zap.String("service", "availability")),
	}
}

func (s *availabilityService) CheckAvailability(ctx context.Context, req *request.AvailabilityRequest) (*response.AvailabilityResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, invalidFields(errs)
	}

	rooms := s.rooms.IDs()
	if req.RoomID != nil {
		if !s.rooms.Contains(*req.RoomID) {
			return nil, invalidInput("room %d is not bookable", *req.RoomID)
		}
		rooms = []int{*req.RoomID}
	}

	window, err := req.Window(s.config.Location, s.config.Day, s.config.SlotWidth)
	if err != nil {
		return nil, invalidInput("%s", err.Error())
	}
	if !window.Valid() {
		return nil, invalidInput("start time must be before end time")
	}

	availability, err := s.engine.ComputeAvailability(ctx, rooms, window)
	if err != nil {
		return nil, err
	}

	res := response.AvailabilityToResponse(window, availability)
	return &res, nil
}

func (s *availabilityService) SearchSlots(ctx context.Context, req *request.SlotSearchRequest) (*response.SlotSearchResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, invalidFields(errs)
	}

	startFrom, err := req.StartFromTime(s.config.Location)
	if err != nil {
		return nil, invalidInput("%s", err.Error())
	}

	slots, err := s.slots.GenerateSlots(ctx, SlotQuery{
		TimeRange:     req.TimeRange,
		PreferredRoom: req.PreferredRoom,
		StartFrom:     startFrom,
	})
	if err != nil {
		return nil, err
	}

	timeRange := req.TimeRange
	if timeRange == "" {
		timeRange = utils.RangeAll
	}
	res := response.SlotsToResponse(timeRange, slots)
	return &res, nil
}

func (s *availabilityService) ListRooms(_ context.Context) *response.RoomsResponse {
	ranges := make(map[string]string, len(s.config.Ranges))
	for name, cr := range s.config.Ranges {
		ranges[name] = formatClock(cr.Start) + "-" + formatClock(cr.End)
	}

	return &response.RoomsResponse{
		Rooms:       s.rooms.IDs(),
		SlotMinutes: int(s.config.SlotWidth / time.Minute),
		Timezone:    s.config.Location.String(),
		Ranges:      ranges,
	}
}

func formatClock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int((d%time.Hour)/time.Minute))
}
