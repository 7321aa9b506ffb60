package main

import (
	"context"
	"log"

	"room-booking/cmd"
	"room-booking/internal/data/repository"
	"room-booking/internal/usecase"
	"room-booking/internal/wire"
	"room-booking/pkg/database"
	"room-booking/pkg/mq"
	"room-booking/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
		zap.Ints("rooms", config.Booking.Rooms),
		zap.Duration("slot_width", config.Booking.SlotWidth),
	)

	deps := wire.Dependencies{}

	// Storage
	switch config.Database.Driver {
	case "memory":
		logger.Warn("Using in-memory reservation store; data is lost on restart")
		deps.Repo = repository.NewMemoryRepository(logger)
	default:
		if err := database.Migrate(config.Database); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}

		db, err := database.InitDB(config.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		logger.Info("Database connected successfully")
		deps.Repo = repository.NewRepository(db, logger)
		deps.Ping = db.Ping
	}

	// Booking locks
	switch config.Booking.LockBackend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		logger.Info("Using redis booking locks", zap.String("addr", config.Redis.Addr))
		deps.Locks = usecase.NewRedisLocker(rdb, config.Booking.LockTTL)
	default:
		deps.Locks = usecase.NewLockTable()
	}

	// Events
	if config.RabbitMQ.URL != "" {
		publisher, err := mq.NewPublisher(config.RabbitMQ.URL, config.RabbitMQ.Exchange, logger)
		if err != nil {
			logger.Fatal("Failed to connect to rabbitmq", zap.Error(err))
		}
		defer publisher.Close()
		deps.Publisher = publisher
	} else {
		logger.Info("RABBITMQ_URL not set; reservation events are dropped")
		deps.Publisher = mq.NopPublisher{}
	}

	// Wire all dependencies
	app := wire.Wiring(deps, config, logger)
	defer app.Close()

	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}
}
