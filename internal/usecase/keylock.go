package usecase

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// BookingKey identifies one (date, start time, room) slot for serialization.
type BookingKey struct {
	Date   string // 2006-01-02
	Start  string // 15:04
	RoomID int
}

// NewBookingKey derives the key from the requested start, read in loc.
func NewBookingKey(start time.Time, roomID int, loc *time.Location) BookingKey {
	local := start.In(loc)
	return BookingKey{
		Date:   local.Format("2006-01-02"),
		Start:  local.Format("15:04"),
		RoomID: roomID,
	}
}

func (k BookingKey) String() string {
	return k.Date + "|" + k.Start + "|" + strconv.Itoa(k.RoomID)
}

// KeyLocker is a non-blocking test-and-set lock keyed by string.
type KeyLocker interface {
	// TryLock returns false, without waiting, when key is already held.
	TryLock(ctx context.Context, key string) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// LockTable is the in-process KeyLocker. Entries live only while a booking is in flight.
type LockTable struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLockTable() *LockTable {
	return &LockTable{held: make(map[string]struct{})}
}

func (t *LockTable) TryLock(_ context.Context, key string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, busy := t.held[key]; busy {
		return false, nil
	}
	t.held[key] = struct{}{}
	return true, nil
}

func (t *LockTable) Unlock(_ context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.held, key)
	return nil
}

func (t *LockTable) Held(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.held[key]
	return ok
}

func (t *LockTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.held)
}

// Deletes the key only if it still carries our token.
const redisUnlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisLocker shares booking locks between processes. Keys expire after ttl
// so a crashed holder cannot block a slot forever.
type RedisLocker struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
	token  func() string

	mu     sync.Mutex
	tokens map[string]string
}

func NewRedisLocker(client redis.Cmdable, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		prefix: "booking:lock:",
		token:  func() string { return uuid.NewString() },
		tokens: make(map[string]string),
	}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string) (bool, error) {
	token := l.token()

	ok, err := l.client.SetNX(ctx, l.prefix+key, token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}

	l.mu.Lock()
	l.tokens[key] = token
	l.mu.Unlock()
	return true, nil
}

func (l *RedisLocker) Unlock(ctx context.Context, key string) error {
	l.mu.Lock()
	token, ok := l.tokens[key]
	delete(l.tokens, key)
	l.mu.Unlock()

	if !ok {
		return fmt.Errorf("release lock %s: not held by this process", key)
	}

	if err := l.client.Eval(ctx, redisUnlockScript, []string{l.prefix + key}, token).Err(); err != nil {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	return nil
}
