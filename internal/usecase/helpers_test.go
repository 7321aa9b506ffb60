package usecase

import (
	"context"
	"time"

	"room-booking/internal/data/entity"
	"room-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

var referenceRooms = []int{1, 4, 5, 6}

func testBookingConfig() utils.BookingConfig {
	day := utils.ClockRange{Start: 8 * time.Hour, End: 18 * time.Hour}
	return utils.BookingConfig{
		Rooms:     referenceRooms,
		SlotWidth: time.Hour,
		Location:  time.UTC,
		Day:       day,
		Ranges: map[string]utils.ClockRange{
			utils.RangeMorning:   {Start: 8 * time.Hour, End: 12 * time.Hour},
			utils.RangeAfternoon: {Start: 13 * time.Hour, End: 18 * time.Hour},
			utils.RangeAll:       day,
		},
		UnknownRange: utils.UnknownRangeAll,
		LockBackend:  "memory",
		LockTTL:      30 * time.Second,
	}
}

// on returns 2024-06-01 at hh:mm UTC.
func on(hour, minute int) time.Time {
	return time.Date(2024, 6, 1, hour, minute, 0, 0, time.UTC)
}

func span(startHour, startMin, endHour, endMin int) entity.Interval {
	return entity.NewInterval(on(startHour, startMin), on(endHour, endMin))
}

func reservationAt(roomID int, window entity.Interval, status entity.ReservationStatus) *entity.Reservation {
	return &entity.Reservation{
		Base:      entity.Base{ID: uuid.New(), CreatedAt: time.Now()},
		UserID:    "user-x",
		RoomID:    roomID,
		StartTime: window.Start,
		EndTime:   window.End,
		Status:    status,
	}
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Create(ctx context.Context, draft *entity.ReservationDraft) (*entity.Reservation, error) {
	args := m.Called(ctx, draft)
	r, _ := args.Get(0).(*entity.Reservation)
	return r, args.Error(1)
}

func (m *mockStore) FindByWindow(ctx context.Context, window entity.Interval) ([]*entity.Reservation, error) {
	args := m.Called(ctx, window)
	rs, _ := args.Get(0).([]*entity.Reservation)
	return rs, args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(ctx context.Context, key string, v any) error {
	args := m.Called(ctx, key, v)
	return args.Error(0)
}

// gatedStore blocks FindByWindow until release is closed, so a test can hold
// a booking in flight deterministically.
type gatedStore struct {
	ReservationStore
	entered chan struct{}
	release chan struct{}
}

func newGatedStore(inner ReservationStore) *gatedStore {
	return &gatedStore{
		ReservationStore: inner,
		entered:          make(chan struct{}, 1),
		release:          make(chan struct{}),
	}
}

func (g *gatedStore) FindByWindow(ctx context.Context, window entity.Interval) ([]*entity.Reservation, error) {
	select {
	case g.entered <- struct{}{}:
	default:
	}
	<-g.release
	return g.ReservationStore.FindByWindow(ctx, window)
}

type failingLocker struct {
	err error
}

func (f failingLocker) TryLock(context.Context, string) (bool, error) { return false, f.err }

func (f failingLocker) Unlock(context.Context, string) error { return nil }
