package feed

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/leozinbrozgg/freefirelikes2025/internal/domain"
)

// DefaultChannel is the Redis channel entries are fanned out on.
const DefaultChannel = "likes:history"

// Resubscribe backoff bounds used by Serve when none are given.
const (
	DefaultMinBackoff = 500 * time.Millisecond
	DefaultMaxBackoff = 30 * time.Second
)

var errSubscriptionClosed = errors.New("feed bridge: subscription closed")

// RedisBridge fans entries out through Redis pub/sub so viewers connected
// to any instance see writes made by every instance.
type RedisBridge struct {
	client  *redis.Client
	channel string
	hub     *Hub
	log     zerolog.Logger

	subscribed atomic.Bool
}

// NewRedisBridge builds a bridge delivering into hub.
func NewRedisBridge(client *redis.Client, channel string, hub *Hub, log zerolog.Logger) *RedisBridge {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBridge{client: client, channel: channel, hub: hub, log: log}
}

// Publish sends entry to every instance. This instance receives it back
// through its own subscription; while that subscription is down, or if
// Redis rejects the message, the entry goes straight to the local hub.
func (b *RedisBridge) Publish(ctx context.Context, entry domain.HistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		_ = b.hub.Publish(ctx, entry)
		return err
	}
	if !b.subscribed.Load() {
		_ = b.hub.Publish(ctx, entry)
	}
	return nil
}

// Subscribed reports whether Run currently holds a live subscription.
func (b *RedisBridge) Subscribed() bool { return b.subscribed.Load() }

// Serve keeps the bridge subscribed until ctx is done, restarting Run with
// exponential backoff between minWait and maxWait after each failure.
func (b *RedisBridge) Serve(ctx context.Context, minWait, maxWait time.Duration) {
	if minWait <= 0 {
		minWait = DefaultMinBackoff
	}
	if maxWait < minWait {
		maxWait = max(DefaultMaxBackoff, minWait)
	}
	wait := minWait
	for {
		started := time.Now()
		err := b.Run(ctx)
		if ctx.Err() != nil {
			return
		}
		// A subscription that stayed up longer than the cap starts over.
		if time.Since(started) > maxWait {
			wait = minWait
		}
		b.log.Warn().Err(err).Dur("retry_in", wait).Msg("feed bridge down; publishing locally until resubscribed")

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
		wait = min(wait*2, maxWait)
	}
}

// Run subscribes to the channel and feeds the local hub until ctx is done or
// the subscription fails.
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	b.subscribed.Store(true)
	defer b.subscribed.Store(false)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return errSubscriptionClosed
			}
			var e domain.HistoryEntry
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				b.log.Warn().Err(err).Msg("feed bridge: bad payload")
				continue
			}
			_ = b.hub.Publish(ctx, e)
		}
	}
}
