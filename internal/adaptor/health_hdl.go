package adaptor

import (
	"context"
	"net/http"
	"time"

	"room-booking/pkg/utils"

	"go.uber.org/zap"
)

type HealthHandler struct {
	ping func(ctx context.Context) error
	log  *zap.Logger
}

// NewHealthHandler takes the storage ping; nil means there is nothing to check.
func NewHealthHandler(ping func(ctx context.Context) error, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		ping: ping,
		log:  log.With(zap.String("handler", "health")),
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.ping(ctx); err != nil {
			h.log.Error("Health check failed", zap.Error(err))
			utils.ResponseJSON(w, http.StatusServiceUnavailable, utils.Response{Message: "database unreachable", Kind: "persistence"})
			return
		}
	}

	utils.ResponseSuccess(w, "ok", map[string]string{"status": "up"})
}
