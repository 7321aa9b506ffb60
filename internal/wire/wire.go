package wire

import (
	"context"
	"time"

	"room-booking/internal/adaptor"
	"room-booking/internal/data/repository"
	"room-booking/internal/usecase"
	"room-booking/pkg/middleware"
	"room-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Dependencies are the infrastructure pieces main builds from config.
type Dependencies struct {
	Repo      *repository.Repository
	Locks     usecase.KeyLocker
	Publisher usecase.EventPublisher
	// Ping checks storage health; nil for the memory driver.
	Ping func(ctx context.Context) error
}

// App menyimpan semua dependencies
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
	limiter *middleware.RateLimiter
}

// Close stops background work started by Wiring.
func (a *App) Close() {
	a.limiter.Stop()
}

// Wiring menginisialisasi semua dependencies
func Wiring(deps Dependencies, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(deps.Repo, deps.Locks, deps.Publisher, config, logger)
	handler := adaptor.NewHandler(service, deps.Ping, logger)
	limiter := middleware.NewRateLimiter(config.RateLimit.RPS, config.RateLimit.Burst, 3*time.Minute)

	return &App{
		Router:  setupRouter(handler, limiter, config.App, logger),
		Service: service,
		limiter: limiter,
	}
}

// setupRouter konfigurasi Chi router
func setupRouter(handler *adaptor.Handler, limiter *middleware.RateLimiter, app utils.AppConfig, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	if app.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(app.CORSOrigins))
	r.Use(middleware.Metrics())

	// Apply routes
	wireReservation(r, handler.Reservation, limiter)
	wireAvailability(r, handler.Availability)

	r.Get("/health", handler.Health.Health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
