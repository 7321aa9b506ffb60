package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"room-booking/internal/data/entity"
	"room-booking/internal/data/repository"
	"room-booking/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCoordinator(store ReservationStore, locks KeyLocker) BookingCoordinator {
	engine := NewAvailabilityEngine(store, zap.NewNop())
	return NewBookingCoordinator(engine, store, locks, NewRoomSet(referenceRooms), time.UTC, zap.NewNop())
}

func newMemoryStore() repository.ReservationRepository {
	return repository.NewMemoryReservationRepository(zap.NewNop())
}

func TestBook_RoundTrip(t *testing.T) {
	store := newMemoryStore()
	coordinator := newTestCoordinator(store, NewLockTable())

	created, err := coordinator.Book(context.Background(), BookingRequest{
		UserID:   "user-1",
		RoomID:   4,
		Window:   span(9, 0, 10, 0),
		Metadata: map[string]string{"title": "planning"},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusConfirmed, created.Status)
	assert.Equal(t, "planning", created.Metadata["title"])

	engine := NewAvailabilityEngine(store, zap.NewNop())

	overlapping := []entity.Interval{
		span(9, 0, 10, 0),
		span(8, 30, 9, 30),
		span(9, 59, 11, 0),
		span(8, 0, 18, 0),
		span(9, 15, 9, 45),
	}
	for _, w := range overlapping {
		got, err := engine.ComputeAvailability(context.Background(), referenceRooms, w)
		require.NoError(t, err)
		assert.False(t, got[4].IsAvailable, "window %s", w)
		require.Len(t, got[4].ConflictingReservations, 1)
		assert.Equal(t, created.ID, got[4].ConflictingReservations[0].ID)
		assert.True(t, got[1].IsAvailable)
	}

	for _, w := range []entity.Interval{span(10, 0, 11, 0), span(8, 0, 9, 0)} {
		got, err := engine.ComputeAvailability(context.Background(), referenceRooms, w)
		require.NoError(t, err)
		assert.True(t, got[4].IsAvailable, "window %s", w)
	}
}

func TestBook_RoomOutsideSetMakesNoStoreCalls(t *testing.T) {
	for _, room := range []int{0, 2, 3, 7, -1} {
		store := new(mockStore)
		locks := NewLockTable()
		coordinator := newTestCoordinator(store, locks)

		_, err := coordinator.Book(context.Background(), BookingRequest{UserID: "user-1", RoomID: room, Window: span(10, 0, 11, 0)})

		assert.True(t, IsKind(err, KindInvalidInput), "room %d", room)
		assert.Empty(t, store.Calls, "room %d reached the store", room)
		assert.Zero(t, locks.Len())
	}
}

func TestBook_UnknownRoomsShareOneMetricSeries(t *testing.T) {
	coordinator := newTestCoordinator(new(mockStore), NewLockTable())
	invalid := metrics.BookingAttemptsTotal.WithLabelValues(string(KindInvalidInput), "invalid")
	before := testutil.ToFloat64(invalid)
	seriesBefore := testutil.CollectAndCount(metrics.BookingAttemptsTotal)

	for room := 1000; room < 1050; room++ {
		_, err := coordinator.Book(context.Background(), BookingRequest{UserID: "user-1", RoomID: room, Window: span(10, 0, 11, 0)})
		require.True(t, IsKind(err, KindInvalidInput))
	}

	assert.Equal(t, seriesBefore, testutil.CollectAndCount(metrics.BookingAttemptsTotal))
	assert.Equal(t, before+50, testutil.ToFloat64(invalid))
}

func TestBook_InvalidWindowAndUser(t *testing.T) {
	store := new(mockStore)
	coordinator := newTestCoordinator(store, NewLockTable())

	_, err := coordinator.Book(context.Background(), BookingRequest{UserID: "user-1", RoomID: 1, Window: span(11, 0, 10, 0)})
	assert.True(t, IsKind(err, KindInvalidInput))

	_, err = coordinator.Book(context.Background(), BookingRequest{UserID: "user-1", RoomID: 1, Window: span(10, 0, 10, 0)})
	assert.True(t, IsKind(err, KindInvalidInput))

	_, err = coordinator.Book(context.Background(), BookingRequest{UserID: " ", RoomID: 1, Window: span(10, 0, 11, 0)})
	assert.True(t, IsKind(err, KindInvalidInput))

	assert.Empty(t, store.Calls)
}

func TestBook_ConcurrentIdenticalKeyOneWinsOtherInFlight(t *testing.T) {
	gate := newGatedStore(newMemoryStore())
	locks := NewLockTable()
	coordinator := newTestCoordinator(gate, locks)
	req := BookingRequest{UserID: "user-1", RoomID: 1, Window: span(10, 0, 11, 0)}

	type result struct {
		res *entity.Reservation
		err error
	}
	first := make(chan result, 1)
	go func() {
		res, err := coordinator.Book(context.Background(), req)
		first <- result{res, err}
	}()

	<-gate.entered
	assert.True(t, locks.Held(NewBookingKey(on(10, 0), 1, time.UTC).String()))

	req.UserID = "user-2"
	res, err := coordinator.Book(context.Background(), req)
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, IsConflict(err, ReasonInFlight))

	close(gate.release)
	got := <-first
	require.NoError(t, got.err)
	assert.Equal(t, "user-1", got.res.UserID)
	assert.Zero(t, locks.Len())
}

func TestBook_ConcurrentIdenticalKeyExactlyOneCommits(t *testing.T) {
	store := newMemoryStore()
	coordinator := newTestCoordinator(store, NewLockTable())

	const attempts = 32
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = coordinator.Book(context.Background(), BookingRequest{
				UserID: fmt.Sprintf("user-%d", i),
				RoomID: 1,
				Window: span(10, 0, 11, 0),
			})
		}(i)
	}
	close(start)
	wg.Wait()

	committed := 0
	for _, err := range errs {
		if err == nil {
			committed++
			continue
		}
		be, ok := AsBookingError(err)
		require.True(t, ok)
		assert.Equal(t, KindConflict, be.Kind, "losers see in_flight or overlap: %v", err)
	}
	assert.Equal(t, 1, committed)
}

func TestBook_NoDoubleBookingAfterConcurrentOverlappingAttempts(t *testing.T) {
	store := newMemoryStore()
	coordinator := newTestCoordinator(store, NewLockTable())

	var wg sync.WaitGroup
	start := make(chan struct{})
	for _, room := range referenceRooms {
		for minute := 0; minute < 180; minute += 15 {
			wg.Add(1)
			go func(room, minute int) {
				defer wg.Done()
				<-start
				begin := on(9, 0).Add(time.Duration(minute) * time.Minute)
				_, _ = coordinator.Book(context.Background(), BookingRequest{
					UserID: "user",
					RoomID: room,
					Window: entity.NewInterval(begin, begin.Add(time.Hour)),
				})
			}(room, minute)
		}
	}
	close(start)
	wg.Wait()

	all, err := store.FindByWindow(context.Background(), span(0, 0, 23, 59))
	require.NoError(t, err)
	require.NotEmpty(t, all)

	for i, a := range all {
		for _, b := range all[i+1:] {
			if a.RoomID != b.RoomID || !a.Status.Occupies() || !b.Status.Occupies() {
				continue
			}
			assert.False(t, a.Window().Overlaps(b.Window()), "room %d: %s overlaps %s", a.RoomID, a.Window(), b.Window())
		}
	}
}

func TestBook_OverlapReturnsConflicts(t *testing.T) {
	store := newMemoryStore()
	coordinator := newTestCoordinator(store, NewLockTable())

	existing, err := coordinator.Book(context.Background(), BookingRequest{UserID: "user-1", RoomID: 5, Window: span(9, 0, 11, 0)})
	require.NoError(t, err)

	_, err = coordinator.Book(context.Background(), BookingRequest{UserID: "user-2", RoomID: 5, Window: span(10, 0, 12, 0)})
	require.Error(t, err)
	assert.True(t, IsConflict(err, ReasonOverlap))

	be, _ := AsBookingError(err)
	require.Len(t, be.Conflicts, 1)
	assert.Equal(t, existing.ID, be.Conflicts[0].ID)

	_, err = coordinator.Book(context.Background(), BookingRequest{UserID: "user-2", RoomID: 5, Window: span(11, 0, 12, 0)})
	assert.NoError(t, err, "back-to-back reservations are allowed")
}

func TestBook_LockReleasedAfterStoreFailure(t *testing.T) {
	dbErr := errors.New("disk full")
	store := new(mockStore)
	store.On("FindByWindow", mock.Anything, mock.Anything).Return([]*entity.Reservation(nil), nil)
	store.On("Create", mock.Anything, mock.Anything).Return(nil, dbErr).Once()

	locks := NewLockTable()
	coordinator := newTestCoordinator(store, locks)
	req := BookingRequest{UserID: "user-1", RoomID: 1, Window: span(10, 0, 11, 0)}
	key := NewBookingKey(req.Window.Start, req.RoomID, time.UTC).String()

	_, err := coordinator.Book(context.Background(), req)
	assert.True(t, IsKind(err, KindPersistence))
	assert.ErrorIs(t, err, dbErr)
	assert.False(t, locks.Held(key))

	created := reservationAt(1, req.Window, entity.ReservationStatusConfirmed)
	store.On("Create", mock.Anything, mock.Anything).Return(created, nil).Once()

	res, err := coordinator.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, created.ID, res.ID)
	assert.False(t, locks.Held(key))
}

func TestBook_LockReleasedWhenCallerCancels(t *testing.T) {
	locks := NewLockTable()
	coordinator := newTestCoordinator(newMemoryStore(), locks)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := coordinator.Book(ctx, BookingRequest{UserID: "user-1", RoomID: 6, Window: span(14, 0, 15, 0)})
	assert.True(t, IsKind(err, KindPersistence))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, locks.Len())
}

func TestBook_StoreLevelOverlapIsPersistence(t *testing.T) {
	store := new(mockStore)
	store.On("FindByWindow", mock.Anything, mock.Anything).Return([]*entity.Reservation(nil), nil)
	store.On("Create", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("create reservation: %w", repository.ErrReservationOverlap))

	locks := NewLockTable()
	_, err := newTestCoordinator(store, locks).Book(context.Background(), BookingRequest{UserID: "u", RoomID: 4, Window: span(9, 0, 10, 0)})

	assert.True(t, IsKind(err, KindPersistence))
	assert.ErrorIs(t, err, repository.ErrReservationOverlap)
	assert.Zero(t, locks.Len())
}

func TestBook_LockBackendFailure(t *testing.T) {
	store := new(mockStore)
	lockErr := errors.New("redis unavailable")

	_, err := newTestCoordinator(store, failingLocker{err: lockErr}).
		Book(context.Background(), BookingRequest{UserID: "u", RoomID: 4, Window: span(9, 0, 10, 0)})

	assert.True(t, IsKind(err, KindPersistence))
	assert.ErrorIs(t, err, lockErr)
	assert.Empty(t, store.Calls)
}

func TestBook_DraftCarriesRequest(t *testing.T) {
	store := new(mockStore)
	store.On("FindByWindow", mock.Anything, span(13, 0, 14, 0)).Return([]*entity.Reservation(nil), nil)
	store.On("Create", mock.Anything, mock.MatchedBy(func(d *entity.ReservationDraft) bool {
		return d.UserID == "user-9" && d.RoomID == 6 && d.Window == span(13, 0, 14, 0) && d.Metadata["k"] == "v"
	})).Return(reservationAt(6, span(13, 0, 14, 0), entity.ReservationStatusConfirmed), nil)

	_, err := newTestCoordinator(store, NewLockTable()).Book(context.Background(), BookingRequest{
		UserID: "user-9", RoomID: 6, Window: span(13, 0, 14, 0), Metadata: map[string]string{"k": "v"},
	})
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestNewBookingKey(t *testing.T) {
	key := NewBookingKey(time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC), 1, time.FixedZone("WIB", 7*60*60))
	assert.Equal(t, "2024-06-01|10:00|1", key.String())
}

func TestBookingError_Messages(t *testing.T) {
	err := inFlight(BookingKey{Date: "2024-06-01", Start: "10:00", RoomID: 1})
	assert.Contains(t, err.Error(), "conflict(in_flight)")

	wrapped := persistence(errors.New("boom"), "create reservation")
	assert.Equal(t, "persistence: create reservation: boom", wrapped.Error())
	assert.False(t, IsKind(errors.New("plain"), KindPersistence))
}
