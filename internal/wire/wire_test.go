package wire

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"room-booking/internal/data/repository"
	"room-booking/internal/usecase"
	"room-booking/pkg/mq"
	"room-booking/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *utils.Config {
	day := utils.ClockRange{Start: 8 * time.Hour, End: 18 * time.Hour}
	return &utils.Config{
		App: utils.AppConfig{Name: "room-booking", Port: "0"},
		Booking: utils.BookingConfig{
			Rooms:     []int{1, 4, 5, 6},
			SlotWidth: time.Hour,
			Location:  time.UTC,
			Day:       day,
			Ranges: map[string]utils.ClockRange{
				utils.RangeMorning:   {Start: 8 * time.Hour, End: 12 * time.Hour},
				utils.RangeAfternoon: {Start: 13 * time.Hour, End: 18 * time.Hour},
				utils.RangeAll:       day,
			},
			UnknownRange: utils.UnknownRangeAll,
		},
		RateLimit: utils.RateLimitConfig{RPS: 100, Burst: 100},
	}
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	app := Wiring(Dependencies{
		Repo:      repository.NewMemoryRepository(zap.NewNop()),
		Locks:     usecase.NewLockTable(),
		Publisher: mq.NopPublisher{},
	}, testConfig(), zap.NewNop())
	t.Cleanup(app.Close)
	return app
}

func do(t *testing.T, app *App, method, path, body string) (int, envelope) {
	t.Helper()
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(method, path, reader))

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func TestReservationFlow(t *testing.T) {
	app := newTestApp(t)

	code, env := do(t, app, http.MethodPost, "/api/reservations",
		`{"user_id":"user-1","room_id":4,"date":"2024-06-01","start_time":"09:00","end_time":"10:00"}`)
	require.Equal(t, http.StatusCreated, code, env.Message)

	var created struct {
		ID     string `json:"id"`
		RoomID int    `json:"room_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, 4, created.RoomID)

	code, env = do(t, app, http.MethodPost, "/api/reservations",
		`{"user_id":"user-2","room_id":4,"date":"2024-06-01","start_time":"09:30","duration_minutes":60}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "overlap", env.Kind)

	code, env = do(t, app, http.MethodPost, "/api/reservations",
		`{"user_id":"user-2","room_id":2,"date":"2024-06-01","start_time":"09:00","end_time":"10:00"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_input", env.Kind)

	code, env = do(t, app, http.MethodGet, "/api/availability?date=2024-06-01&start_time=09:00", "")
	require.Equal(t, http.StatusOK, code)
	var availability struct {
		Rooms []struct {
			RoomID      int  `json:"room_id"`
			IsAvailable bool `json:"is_available"`
		} `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &availability))
	require.Len(t, availability.Rooms, 4)
	for _, room := range availability.Rooms {
		assert.Equal(t, room.RoomID != 4, room.IsAvailable, "room %d", room.RoomID)
	}

	code, env = do(t, app, http.MethodGet, "/api/slots?time_range=morning&start_from=2024-06-01", "")
	require.Equal(t, http.StatusOK, code)
	var slots struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &slots))
	assert.Equal(t, 15, slots.Total)

	code, _ = do(t, app, http.MethodPut, "/api/reservations/"+created.ID+"/cancel", "")
	assert.Equal(t, http.StatusOK, code)

	code, env = do(t, app, http.MethodPut, "/api/reservations/"+created.ID+"/cancel", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = do(t, app, http.MethodGet, "/api/users/user-1/reservations?page=1&per_page=10", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), created.ID)
}

func TestOperationalEndpoints(t *testing.T) {
	app := newTestApp(t)

	code, env := do(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Status)

	code, _ = do(t, app, http.MethodGet, "/api/rooms", "")
	assert.Equal(t, http.StatusOK, code)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "room_booking_http_requests_total")
}

func TestRateLimit_ForwardedForOnlyBehindTrustedProxy(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		want       []int
	}{
		{"direct clients", false, []int{http.StatusBadRequest, http.StatusTooManyRequests}},
		{"trusted proxy", true, []int{http.StatusBadRequest, http.StatusBadRequest}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := testConfig()
			config.App.TrustProxy = tt.trustProxy
			config.RateLimit = utils.RateLimitConfig{RPS: 0.001, Burst: 1}
			app := Wiring(Dependencies{
				Repo:      repository.NewMemoryRepository(zap.NewNop()),
				Locks:     usecase.NewLockTable(),
				Publisher: mq.NopPublisher{},
			}, config, zap.NewNop())
			defer app.Close()

			codes := make([]int, 0, 2)
			for _, fwd := range []string{"203.0.113.1", "203.0.113.2"} {
				req := httptest.NewRequest(http.MethodPost, "/api/reservations", bytes.NewBufferString("{}"))
				req.RemoteAddr = "10.0.0.1:4000"
				req.Header.Set("X-Forwarded-For", fwd)
				rec := httptest.NewRecorder()
				app.Router.ServeHTTP(rec, req)
				codes = append(codes, rec.Code)
			}
			assert.Equal(t, tt.want, codes)
		})
	}
}
