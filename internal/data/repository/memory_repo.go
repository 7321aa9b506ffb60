package repository

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"room-booking/internal/data/entity"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// memoryReservationRepository keeps reservations in process memory.
// It refuses overlapping occupying reservations the same way the
// reservations_no_overlap constraint does in Postgres.
type memoryReservationRepository struct {
	mu           sync.RWMutex
	reservations map[uuid.UUID]*entity.Reservation
	now          func() time.Time
	log          *zap.Logger
}

func NewMemoryReservationRepository(log *zap.Logger) ReservationRepository {
	return newMemoryReservationRepository(log, time.Now)
}

func newMemoryReservationRepository(log *zap.Logger, now func() time.Time) *memoryReservationRepository {
	return &memoryReservationRepository{
		reservations: make(map[uuid.UUID]*entity.Reservation),
		now:          now,
		log:          log.With(zap.String("repository", "reservation_memory")),
	}
}

func cloneReservation(r *entity.Reservation) *entity.Reservation {
	c := *r
	c.Metadata = maps.Clone(r.Metadata)
	return &c
}

// overlapping must be called with mu held.
func (m *memoryReservationRepository) overlapping(roomID int, window entity.Interval, skip uuid.UUID) *entity.Reservation {
	for _, r := range m.reservations {
		if r.ID == skip || r.RoomID != roomID || !r.Status.Occupies() {
			continue
		}
		if r.Window().Overlaps(window) {
			return r
		}
	}
	return nil
}

func (m *memoryReservationRepository) Create(ctx context.Context, draft *entity.ReservationDraft) (*entity.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("create reservation room %d: %w", draft.RoomID, err)
	}
	if !draft.Window.Valid() {
		return nil, fmt.Errorf("create reservation room %d: invalid window %s", draft.RoomID, draft.Window)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing := m.overlapping(draft.RoomID, draft.Window, uuid.Nil); existing != nil {
		m.log.Warn("Reservation rejected by overlap check",
			zap.Int("room_id", draft.RoomID),
			zap.Stringer("window", draft.Window),
			zap.String("existing_id", existing.ID.String()),
		)
		return nil, fmt.Errorf("create reservation room %d %s: %w", draft.RoomID, draft.Window, ErrReservationOverlap)
	}

	metadata := maps.Clone(draft.Metadata)
	if metadata == nil {
		metadata = map[string]string{}
	}

	now := m.now()
	res := &entity.Reservation{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:    draft.UserID,
		RoomID:    draft.RoomID,
		StartTime: draft.Window.Start,
		EndTime:   draft.Window.End,
		Status:    entity.ReservationStatusConfirmed,
		Metadata:  metadata,
	}
	m.reservations[res.ID] = res

	return cloneReservation(res), nil
}

func (m *memoryReservationRepository) FindByWindow(ctx context.Context, window entity.Interval) ([]*entity.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("find reservations in %s: %w", window, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*entity.Reservation
	for _, r := range m.reservations {
		if r.Window().Overlaps(window) {
			out = append(out, cloneReservation(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoomID != out[j].RoomID {
			return out[i].RoomID < out[j].RoomID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})

	return out, nil
}

func (m *memoryReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("find reservation by ID %s: %w", id.String(), err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reservations[id]
	if !ok {
		return nil, nil
	}
	return cloneReservation(r), nil
}

func (m *memoryReservationRepository) userReservations(userID string) []*entity.Reservation {
	var out []*entity.Reservation
	for _, r := range m.reservations {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out
}

func (m *memoryReservationRepository) FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("find reservations by user ID %s: %w", userID, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.userReservations(userID)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}

	out := make([]*entity.Reservation, 0, end-offset)
	for _, r := range all[offset:end] {
		out = append(out, cloneReservation(r))
	}
	return out, nil
}

func (m *memoryReservationRepository) CountByUserID(ctx context.Context, userID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("count reservations by user ID %s: %w", userID, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, r := range m.reservations {
		if r.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *memoryReservationRepository) Cancel(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("cancel reservation %s: %w", id.String(), err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reservations[id]
	if !ok {
		return nil, fmt.Errorf("cancel reservation %s: %w", id.String(), ErrReservationNotFound)
	}
	if r.Status != entity.ReservationStatusConfirmed {
		return nil, fmt.Errorf("cancel reservation %s: %w", id.String(), ErrReservationNotConfirmed)
	}

	r.Status = entity.ReservationStatusCancelled
	r.UpdatedAt = m.now()
	return cloneReservation(r), nil
}
