package identity

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker records a per-account revocation cutoff: ID tokens issued before
// the cutoff are rejected. Entries only need to live as long as the longest
// token TTL, so implementations may expire them.
type Revoker interface {
	Revoke(uid string, since time.Time, ttl time.Duration) error
	RevokedSince(uid string) (time.Time, bool, error)
}

// MemoryRevoker keeps cutoffs in-process (tests and single instance only).
type MemoryRevoker struct {
	mu      sync.Mutex
	cutoffs map[string]time.Time
}

// NewMemoryRevoker builds an in-memory revoker.
func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{cutoffs: make(map[string]time.Time)}
}

// Revoke records the cutoff for an account.
func (r *MemoryRevoker) Revoke(uid string, since time.Time, _ time.Duration) error {
	r.mu.Lock()
	r.cutoffs[uid] = since.UTC()
	r.mu.Unlock()
	return nil
}

// RevokedSince returns the recorded cutoff, if any.
func (r *MemoryRevoker) RevokedSince(uid string) (time.Time, bool, error) {
	r.mu.Lock()
	cutoff, ok := r.cutoffs[uid]
	r.mu.Unlock()
	return cutoff, ok, nil
}

// RedisRevoker stores cutoffs in Redis with TTL.
type RedisRevoker struct {
	client *redis.Client
}

// NewRedisRevoker builds a Redis-backed revoker.
func NewRedisRevoker(addr, password string) *RedisRevoker {
	return &RedisRevoker{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

// Revoke records the cutoff until the longest outstanding token has expired.
func (r *RedisRevoker) Revoke(uid string, since time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Hour
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	value := strconv.FormatInt(since.UTC().Unix(), 10)
	return r.client.Set(ctx, revocationKey(uid), value, ttl).Err()
}

// RevokedSince returns the recorded cutoff, if any.
func (r *RedisRevoker) RevokedSince(uid string) (time.Time, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	raw, err := r.client.Get(ctx, revocationKey(uid)).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, nil
	}
	return time.Unix(secs, 0).UTC(), true, nil
}

func revocationKey(uid string) string {
	return "bluecollar:identity:revoked:" + uid
}
