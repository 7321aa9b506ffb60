package wire

import (
	"room-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAvailability(r chi.Router, availabilityHandler *adaptor.AvailabilityHandler) {
	// GET /api/availability - Per-room availability for a window
	r.Get("/api/availability", availabilityHandler.CheckAvailability)

	// GET /api/slots - Free fixed-width slots for a named range
	r.Get("/api/slots", availabilityHandler.SearchSlots)

	// GET /api/rooms - Configured rooms, slot width and ranges
	r.Get("/api/rooms", availabilityHandler.ListRooms)
}
