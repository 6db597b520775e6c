package booking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Guard serializes mutations of one booking. Acquire fails with
// ErrMutationInProgress while another mutation of the same booking runs.
type Guard interface {
	Acquire(ctx context.Context, bookingID string) (release func(), err error)
}

// NewGuard returns a Redis-backed guard when a client is available and an
// in-process guard otherwise.
func NewGuard(client *redis.Client, ttl time.Duration) Guard {
	if client == nil {
		return NewMemoryGuard()
	}
	return NewRedisGuard(client, ttl)
}

// MemoryGuard holds locks in process memory. Single-instance only.
type MemoryGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{held: make(map[string]struct{})}
}

func (g *MemoryGuard) Acquire(_ context.Context, bookingID string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.held[bookingID]; busy {
		return nil, ErrMutationInProgress
	}
	g.held[bookingID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, bookingID)
			g.mu.Unlock()
		})
	}, nil
}

// releaseScript deletes the lock only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard shares locks across API instances. The TTL bounds how long a
// crashed instance can block a booking.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisGuard{client: client, ttl: ttl}
}

func lockKey(bookingID string) string {
	return "booking:mutation:" + bookingID
}

func (g *RedisGuard) Acquire(ctx context.Context, bookingID string) (func(), error) {
	key := lockKey(bookingID)
	token := uuid.NewString()

	ok, err := g.client.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		// Redis being down must not block the back office; the backend
		// still rejects conflicting transitions.
		log.Warn().Err(err).Str("booking_id", bookingID).Msg("Mutation lock unavailable, proceeding without lock")
		return func() {}, nil
	}
	if !ok {
		return nil, ErrMutationInProgress
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, g.client, []string{key}, token).Err(); err != nil {
				log.Warn().Err(err).Str("booking_id", bookingID).Msg("Failed to release mutation lock")
			}
		})
	}, nil
}
