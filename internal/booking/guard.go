package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard serializes submissions for one page session across API replicas.
// Acquire returns ErrDuplicateSubmission while another holder has the key.
type Guard interface {
	Acquire(ctx context.Context, key string) error
	Release(ctx context.Context, key string)
}

// DefaultGuardTTL bounds how long a crashed holder can block a key.
const DefaultGuardTTL = 30 * time.Second

// MemoryGuard is a process-local Guard.
type MemoryGuard struct {
	mu   sync.Mutex
	held map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	if ttl <= 0 {
		ttl = DefaultGuardTTL
	}
	return &MemoryGuard{held: make(map[string]time.Time), ttl: ttl, now: time.Now}
}

func (g *MemoryGuard) Acquire(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if expires, ok := g.held[key]; ok && now.Before(expires) {
		return ErrDuplicateSubmission
	}
	g.held[key] = now.Add(g.ttl)
	return nil
}

func (g *MemoryGuard) Release(_ context.Context, key string) {
	g.mu.Lock()
	delete(g.held, key)
	g.mu.Unlock()
}

// RedisGuard holds keys with SET NX and a TTL so replicas share one view.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	if client == nil {
		panic("booking: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultGuardTTL
	}
	return &RedisGuard{client: client, ttl: ttl, prefix: "medibook:booking:inflight:"}
}

func (g *RedisGuard) Acquire(ctx context.Context, key string) error {
	ok, err := g.client.SetNX(ctx, g.prefix+key, "1", g.ttl).Result()
	if err != nil {
		return fmt.Errorf("booking: acquire submit guard: %w", err)
	}
	if !ok {
		return ErrDuplicateSubmission
	}
	return nil
}

func (g *RedisGuard) Release(ctx context.Context, key string) {
	_ = g.client.Del(context.WithoutCancel(ctx), g.prefix+key).Err()
}

var (
	_ Guard = (*MemoryGuard)(nil)
	_ Guard = (*RedisGuard)(nil)
)
