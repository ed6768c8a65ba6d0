// internal/session/redis.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces session keys.
const DefaultRedisPrefix = "sint:session:"

// RedisStore keeps sessions in Redis as JSON documents, so several worker
// processes can share them. A non-zero TTL expires idle sessions.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore wraps client. An empty prefix selects DefaultRedisPrefix.
func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// DialRedis connects to addr and checks the connection.
func DialRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("session: ping redis %s: %w", addr, err)
	}
	return client, nil
}

func (r *RedisStore) key(id string) string { return r.prefix + id }

// Get loads the entry stored under id.
func (r *RedisStore) Get(ctx context.Context, id string) (*Entry, error) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, err
	}
	b, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: redis get %s: %w", id, err)
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("session: decode %s: %w", id, err)
	}
	return &e, nil
}

// Put stores e under id, replacing any previous entry and resetting its TTL.
func (r *RedisStore) Put(ctx context.Context, id string, e *Entry) error {
	id, err := normalizeID(id)
	if err != nil {
		return err
	}
	if e.UpdatedAt.IsZero() {
		c := *e
		c.UpdatedAt = time.Now().UTC()
		e = &c
	}
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("session: encode %s: %w", id, err)
	}
	if err := r.client.Set(ctx, r.key(id), b, r.ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set %s: %w", id, err)
	}
	return nil
}

// Delete removes id.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	id, err := normalizeID(id)
	if err != nil {
		return err
	}
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("session: redis del %s: %w", id, err)
	}
	return nil
}
