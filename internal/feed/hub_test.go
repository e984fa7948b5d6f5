package feed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leozinbrozgg/freefirelikes2025/internal/domain"
)

func entry(i int, outcome domain.Outcome, sent int64) domain.HistoryEntry {
	return domain.HistoryEntry{
		ID:              fmt.Sprintf("e%d", i),
		PlayerID:        "123456789",
		Outcome:         outcome,
		LikesSentActual: sent,
		CreatedAt:       time.Unix(int64(i), 0).UTC(),
	}
}

func recv(t *testing.T, s *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-s.Events():
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestHub_SubscribeGetsSnapshotThenUpdates(t *testing.T) {
	h := NewHub(10, 3, zerolog.Nop())
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		require.NoError(t, h.Publish(ctx, entry(i, domain.OutcomeSuccess, 10)))
	}

	s := h.Subscribe()
	defer s.Close()
	assert.Equal(t, 1, h.Subscribers())

	first := recv(t, s)
	require.Equal(t, EventInitialHistory, first.Event)
	snap := first.Data.(InitialHistory)
	require.Len(t, snap.History, 3)
	assert.Equal(t, "e5", snap.History[0].ID, "newest first")
	assert.Equal(t, "e3", snap.History[2].ID)
	assert.Equal(t, Stats{Total: 5, Successful: 5, TotalLikes: 50}, snap.Stats)

	require.NoError(t, h.Publish(ctx, entry(6, domain.OutcomeLimitReached, 0)))
	upd := recv(t, s)
	require.Equal(t, EventHistoryUpdate, upd.Event)
	hu := upd.Data.(HistoryUpdate)
	assert.Equal(t, "e6", hu.NewEntry.ID)
	assert.Equal(t, 6, hu.TotalEntries)
}

func TestHub_CapacityDropsOldest(t *testing.T) {
	h := NewHub(3, 50, zerolog.Nop())
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		_ = h.Publish(ctx, entry(i, domain.OutcomeSuccess, 1))
	}
	assert.Equal(t, 3, h.Len())
	snap := h.Snapshot()
	require.Len(t, snap.History, 3)
	assert.Equal(t, []string{"e5", "e4", "e3"}, []string{snap.History[0].ID, snap.History[1].ID, snap.History[2].ID})
	assert.Equal(t, int64(3), snap.Stats.Total)
}

func TestHub_SeedKeepsOrder(t *testing.T) {
	h := NewHub(0, 0, zerolog.Nop())
	h.Seed([]domain.HistoryEntry{
		entry(3, domain.OutcomeSuccess, 7),
		entry(2, domain.OutcomeFailure, 0),
		entry(1, domain.OutcomeSuccess, 5),
	})
	snap := h.Snapshot()
	require.Len(t, snap.History, 3)
	assert.Equal(t, "e3", snap.History[0].ID)
	assert.Equal(t, Stats{Total: 3, Successful: 2, Failed: 1, TotalLikes: 12}, snap.Stats)
}

func TestHub_SlowViewerDoesNotBlock(t *testing.T) {
	h := NewHub(DefaultCapacity, 1, zerolog.Nop())
	s := h.Subscribe()
	defer s.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			_ = h.Publish(context.Background(), entry(i, domain.OutcomeSuccess, 1))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow viewer")
	}
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	h := NewHub(5, 5, zerolog.Nop())
	s := h.Subscribe()
	s.Close()
	s.Close()
	assert.Equal(t, 0, h.Subscribers())
	require.NoError(t, h.Publish(context.Background(), entry(1, domain.OutcomeSuccess, 1)))
}
