package adaptor

import (
	"net/http"

	"room-booking/internal/dto/request"
	"room-booking/internal/usecase"
	"room-booking/pkg/utils"

	"go.uber.org/zap"
)

type AvailabilityHandler struct {
	service usecase.AvailabilityService
	log     *zap.Logger
}

func NewAvailabilityHandler(service usecase.AvailabilityService, log *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log.With(zap.String("handler", "availability")),
	}
}

// CheckAvailability handles GET /api/availability?date=&start_time=&end_time=&room_id=
func (h *AvailabilityHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	roomID, err := utils.ParseOptionalInt(query.Get("room_id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Validation failed", map[string]string{"room_id": "Must be an integer"})
		return
	}

	req := &request.AvailabilityRequest{
		Date:      query.Get("date"),
		StartTime: query.Get("start_time"),
		EndTime:   query.Get("end_time"),
		RoomID:    roomID,
	}

	availability, err := h.service.CheckAvailability(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "check availability")
		return
	}

	utils.ResponseSuccess(w, "success", availability)
}

// SearchSlots handles GET /api/slots?time_range=&preferred_room=&start_from=
func (h *AvailabilityHandler) SearchSlots(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	preferred, err := utils.ParseOptionalInt(query.Get("preferred_room"))
	if err != nil {
		utils.ResponseBadRequest(w, "Validation failed", map[string]string{"preferred_room": "Must be an integer"})
		return
	}

	req := &request.SlotSearchRequest{
		TimeRange:     query.Get("time_range"),
		PreferredRoom: preferred,
		StartFrom:     query.Get("start_from"),
	}

	slots, err := h.service.SearchSlots(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "search slots")
		return
	}

	utils.ResponseSuccess(w, "success", slots)
}

// ListRooms handles GET /api/rooms
func (h *AvailabilityHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	utils.ResponseSuccess(w, "success", h.service.ListRooms(r.Context()))
}
