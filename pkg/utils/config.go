package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Booking   BookingConfig
	Redis     RedisConfig
	RabbitMQ  RabbitMQConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name     string
	Port     string
	Debug    bool
	LogPath  string
	Timezone string
	// CORSOrigins lists allowed browser origins; "*" allows any.
	CORSOrigins []string
	// TrustProxy honours X-Forwarded-For / X-Real-IP. Enable only behind a reverse proxy.
	TrustProxy bool
}

type DatabaseConfig struct {
	Driver     string // postgres | memory
	Host       string
	Port       string
	Name       string
	User       string
	Password   string
	MaxConns   int32
	Migrations string
}

// ClockRange is a [Start, End) window expressed as offsets from midnight.
type ClockRange struct {
	Start time.Duration
	End   time.Duration
}

type BookingConfig struct {
	Rooms        []int
	SlotWidth    time.Duration
	Location     *time.Location
	Day          ClockRange
	Ranges       map[string]ClockRange
	UnknownRange string // all | reject
	LockBackend  string // memory | redis
	LockTTL      time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

const (
	RangeMorning   = "morning"
	RangeAfternoon = "afternoon"
	RangeAll       = "all"

	UnknownRangeAll    = "all"
	UnknownRangeReject = "reject"
)

// LoadConfig reads path (an optional .env file) and the process environment.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")

	// Set defaults
	v.SetDefault("APP_NAME", "room-booking")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("APP_TIMEZONE", "UTC")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("TRUST_PROXY", false)
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIGRATIONS", "file://migrations")
	v.SetDefault("BOOKING_ROOMS", "1,4,5,6")
	v.SetDefault("BOOKING_SLOT_MINUTES", 60)
	v.SetDefault("BOOKING_DAY_START", "08:00")
	v.SetDefault("BOOKING_DAY_END", "18:00")
	v.SetDefault("BOOKING_MORNING", "08:00-12:00")
	v.SetDefault("BOOKING_AFTERNOON", "13:00-18:00")
	v.SetDefault("BOOKING_UNKNOWN_RANGE", UnknownRangeAll)
	v.SetDefault("LOCK_BACKEND", "memory")
	v.SetDefault("LOCK_TTL_SECONDS", 30)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RABBITMQ_EXCHANGE", "reservation.exchange")
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	v.AutomaticEnv()

	booking, err := loadBookingConfig(v)
	if err != nil {
		return nil, err
	}

	config := &Config{
		App: AppConfig{
			Name:     v.GetString("APP_NAME"),
			Port:     v.GetString("PORT"),
			Debug:    v.GetBool("DEBUG"),
			LogPath:  v.GetString("LOG_PATH"),
			Timezone: v.GetString("APP_TIMEZONE"),

			CORSOrigins: ParseList(v.GetString("CORS_ALLOWED_ORIGINS")),
			TrustProxy:  v.GetBool("TRUST_PROXY"),
		},
		Database: DatabaseConfig{
			Driver:     v.GetString("DB_DRIVER"),
			Host:       v.GetString("DB_HOST"),
			Port:       v.GetString("DB_PORT"),
			Name:       v.GetString("DB_NAME"),
			User:       v.GetString("DB_USER"),
			Password:   v.GetString("DB_PASS"),
			MaxConns:   v.GetInt32("DB_MAX_CONNS"),
			Migrations: v.GetString("DB_MIGRATIONS"),
		},
		Booking: *booking,
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("RABBITMQ_URL"),
			Exchange: v.GetString("RABBITMQ_EXCHANGE"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			Burst: v.GetInt("RATE_LIMIT_BURST"),
		},
	}

	return config, nil
}

func loadBookingConfig(v *viper.Viper) (*BookingConfig, error) {
	rooms, err := ParseRooms(v.GetString("BOOKING_ROOMS"))
	if err != nil {
		return nil, fmt.Errorf("BOOKING_ROOMS: %w", err)
	}

	slotMinutes := v.GetInt("BOOKING_SLOT_MINUTES")
	if slotMinutes <= 0 {
		return nil, fmt.Errorf("BOOKING_SLOT_MINUTES must be positive, got %d", slotMinutes)
	}

	loc, err := time.LoadLocation(v.GetString("APP_TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE: %w", err)
	}

	dayStart, err := ParseClock(v.GetString("BOOKING_DAY_START"))
	if err != nil {
		return nil, fmt.Errorf("BOOKING_DAY_START: %w", err)
	}
	dayEnd, err := ParseClock(v.GetString("BOOKING_DAY_END"))
	if err != nil {
		return nil, fmt.Errorf("BOOKING_DAY_END: %w", err)
	}
	if dayEnd <= dayStart {
		return nil, fmt.Errorf("booking day end %s must be after start %s",
			v.GetString("BOOKING_DAY_END"), v.GetString("BOOKING_DAY_START"))
	}

	morning, err := ParseClockRange(v.GetString("BOOKING_MORNING"))
	if err != nil {
		return nil, fmt.Errorf("BOOKING_MORNING: %w", err)
	}
	afternoon, err := ParseClockRange(v.GetString("BOOKING_AFTERNOON"))
	if err != nil {
		return nil, fmt.Errorf("BOOKING_AFTERNOON: %w", err)
	}

	policy := strings.ToLower(v.GetString("BOOKING_UNKNOWN_RANGE"))
	if policy != UnknownRangeAll && policy != UnknownRangeReject {
		return nil, fmt.Errorf("BOOKING_UNKNOWN_RANGE must be %q or %q, got %q", UnknownRangeAll, UnknownRangeReject, policy)
	}

	day := ClockRange{Start: dayStart, End: dayEnd}

	return &BookingConfig{
		Rooms:     rooms,
		SlotWidth: time.Duration(slotMinutes) * time.Minute,
		Location:  loc,
		Day:       day,
		Ranges: map[string]ClockRange{
			RangeMorning:   morning,
			RangeAfternoon: afternoon,
			RangeAll:       day,
		},
		UnknownRange: policy,
		LockBackend:  strings.ToLower(v.GetString("LOCK_BACKEND")),
		LockTTL:      time.Duration(v.GetInt("LOCK_TTL_SECONDS")) * time.Second,
	}, nil
}

// ParseList splits a comma separated value, dropping blanks.
func ParseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseRooms parses "1,4,5,6" into a sorted, de-duplicated room set.
func ParseRooms(s string) ([]int, error) {
	seen := make(map[int]bool)
	var rooms []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid room id %q: %w", part, err)
		}
		if id <= 0 {
			return nil, fmt.Errorf("room id must be positive, got %d", id)
		}
		if !seen[id] {
			seen[id] = true
			rooms = append(rooms, id)
		}
	}
	if len(rooms) == 0 {
		return nil, errors.New("at least one room is required")
	}
	sort.Ints(rooms)
	return rooms, nil
}

// ParseClock parses "HH:MM" into an offset from midnight. "24:00" is allowed.
func ParseClock(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "24:00" {
		return 24 * time.Hour, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// ParseClockRange parses "HH:MM-HH:MM".
func ParseClockRange(s string) (ClockRange, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return ClockRange{}, fmt.Errorf("invalid range %q, use HH:MM-HH:MM", s)
	}
	start, err := ParseClock(parts[0])
	if err != nil {
		return ClockRange{}, err
	}
	end, err := ParseClock(parts[1])
	if err != nil {
		return ClockRange{}, err
	}
	if end <= start {
		return ClockRange{}, fmt.Errorf("range %q ends before it starts", s)
	}
	return ClockRange{Start: start, End: end}, nil
}
