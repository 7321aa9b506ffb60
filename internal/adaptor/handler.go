package adaptor

import (
	"context"
	"net/http"

	"room-booking/internal/dto/response"
	"room-booking/internal/usecase"
	"room-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Reservation  *ReservationHandler
	Availability *AvailabilityHandler
	Health       *HealthHandler
}

func NewHandler(service *usecase.Service, ping func(ctx context.Context) error, log *zap.Logger) *Handler {
	return &Handler{
		Reservation:  NewReservationHandler(service.Reservation, log),
		Availability: NewAvailabilityHandler(service.Availability, log),
		Health:       NewHealthHandler(ping, log),
	}
}

// handleServiceError maps the core's error kinds onto the response envelope.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	be, ok := usecase.AsBookingError(err)
	if !ok {
		log.Error(operation+" failed", zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, utils.KindInternal, "Internal server error")
		return
	}

	switch be.Kind {
	case usecase.KindInvalidInput:
		log.Warn("Invalid input for "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		var fields any
		if len(be.Fields) > 0 {
			fields = be.Fields
		}
		utils.ResponseBadRequest(w, be.Message, fields)

	case usecase.KindNotFound:
		log.Warn(operation+" failed - not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, be.Message)

	case usecase.KindConflict:
		log.Info(operation+" rejected - conflict",
			zap.String("reason", string(be.Reason)),
			zap.String("operation", operation))
		var conflicts any
		if len(be.Conflicts) > 0 {
			conflicts = response.ReservationsToResponse(be.Conflicts)
		}
		utils.ResponseConflict(w, string(be.Reason), be.Message, conflicts)

	default:
		log.Error(operation+" failed",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, string(be.Kind), be.Message)
	}
}
