package wire

import (
	"room-booking/internal/adaptor"
	"room-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

func wireReservation(r chi.Router, reservationHandler *adaptor.ReservationHandler, limiter *middleware.RateLimiter) {
	r.Route("/api/reservations", func(r chi.Router) {
		// POST /api/reservations - Create a reservation (rate limited per client)
		r.With(limiter.Handler).Post("/", reservationHandler.CreateReservation)

		// GET /api/reservations/{id} - Reservation details
		r.Get("/{id}", reservationHandler.GetReservation)

		// PUT /api/reservations/{id}/cancel - Cancel a reservation, freeing its room
		r.Put("/{id}/cancel", reservationHandler.CancelReservation)
	})

	// GET /api/users/{userID}/reservations - Paginated reservation history
	r.Get("/api/users/{userID}/reservations", reservationHandler.GetUserReservations)
}
