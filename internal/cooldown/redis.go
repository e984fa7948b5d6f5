package cooldown

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares deadlines between instances. Each key carries a TTL
// equal to the window, so expiry clears it.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore builds a RedisStore using keys "<prefix><deviceID>".
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "cooldown:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Reserve implements Store using SET NX PX.
func (s *RedisStore) Reserve(ctx context.Context, deviceID string, now, until time.Time) (time.Time, bool, error) {
	key := s.prefix + deviceID
	ttl := until.Sub(now)
	if ttl < time.Millisecond {
		ttl = time.Millisecond
	}

	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, key, until.UnixMilli(), ttl).Result()
		if err != nil {
			return time.Time{}, false, err
		}
		if ok {
			return until, true, nil
		}

		existing, found, err := s.Deadline(ctx, deviceID)
		if err != nil {
			return time.Time{}, false, err
		}
		if !found {
			// expired between SETNX and GET
			continue
		}
		if now.Before(existing) {
			return existing, false, nil
		}
		// Stored deadline is already past by our clock.
		if err := s.client.Set(ctx, key, until.UnixMilli(), ttl).Err(); err != nil {
			return time.Time{}, false, err
		}
		return until, true, nil
	}
	return time.Time{}, false, errors.New("cooldown: could not reserve " + deviceID)
}

// Deadline implements Store.
func (s *RedisStore) Deadline(ctx context.Context, deviceID string) (time.Time, bool, error) {
	ms, err := s.client.Get(ctx, s.prefix+deviceID).Int64()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return time.UnixMilli(ms).UTC(), true, nil
}

// Clear implements Store.
func (s *RedisStore) Clear(ctx context.Context, deviceID string) error {
	return s.client.Del(ctx, s.prefix+deviceID).Err()
}
