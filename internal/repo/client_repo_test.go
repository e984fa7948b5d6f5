package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leozinbrozgg/freefirelikes2025/internal/domain"
)

func clientTables() []any {
	return []any{&domain.Client{}, &domain.ClientPlayerTotal{}, &domain.HistoryEntry{}}
}

func TestFindOrCreateClient_Idempotent(t *testing.T) {
	db := newTestDB(t, clientTables()...)
	ctx := context.Background()

	a, err := FindOrCreateClient(ctx, db, "Loja Azul")
	if err != nil {
		t.Fatalf("first FindOrCreateClient: %v", err)
	}
	b, err := FindOrCreateClient(ctx, db, "Loja Azul")
	if err != nil || b.ID != a.ID {
		t.Fatalf("second FindOrCreateClient = (%+v, %v); want id %s", b, err, a.ID)
	}
	if _, err := CreateClient(ctx, db, "Loja Azul", "", ""); err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if n, _ := CountClients(ctx, db); n != 1 {
		t.Fatalf("CountClients = %d; want 1", n)
	}
}

func TestApplyClientLikes_AccumulatesAndCountsDistinctPlayers(t *testing.T) {
	db := newTestDB(t, clientTables()...)
	ctx := context.Background()
	c, err := CreateClient(ctx, db, "c1", "", "")
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	deltas := []ClientDelta{
		{ClientID: c.ID, PlayerID: "111111111", Nickname: "A", Region: "BR", Likes: 100, At: t0},
		{ClientID: c.ID, PlayerID: "111111111", Nickname: "A2", Region: "BR", Likes: 50, At: t0.Add(time.Minute)},
		{ClientID: c.ID, PlayerID: "222222222", Nickname: "B", Region: "US", Likes: 10, At: t0.Add(2 * time.Minute)},
	}
	for i, d := range deltas {
		if err := ApplyClientLikes(ctx, db, d); err != nil {
			t.Fatalf("ApplyClientLikes[%d]: %v", i, err)
		}
	}

	got, err := GetClient(ctx, db, c.ID)
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if got.TotalLikesSent != 160 || got.UniquePlayersCount != 2 {
		t.Fatalf("aggregates = (%d, %d); want (160, 2)", got.TotalLikesSent, got.UniquePlayersCount)
	}
	if got.LastActivityAt == nil || !got.LastActivityAt.Equal(t0.Add(2*time.Minute)) {
		t.Fatalf("LastActivityAt = %v", got.LastActivityAt)
	}

	recent, err := RecentClientPlayers(ctx, db, c.ID, 10)
	if err != nil || len(recent) != 2 {
		t.Fatalf("RecentClientPlayers = (%+v, %v)", recent, err)
	}
	if recent[0].PlayerID != "222222222" || recent[1].TotalSent != 150 || recent[1].PlayerNickname != "A2" {
		t.Fatalf("unexpected recent players: %+v", recent)
	}
}

func TestApplyClientLikes_UnknownClient(t *testing.T) {
	db := newTestDB(t, clientTables()...)
	err := ApplyClientLikes(context.Background(), db, ClientDelta{ClientID: "nope", PlayerID: "1", Likes: 1, At: time.Now().UTC()})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var n int64
	db.Model(&domain.ClientPlayerTotal{}).Count(&n)
	if n != 0 {
		t.Fatalf("transaction should have rolled back, found %d player rows", n)
	}
}

func TestApplyClientLikesSequential_HealsDrift(t *testing.T) {
	db := newTestDB(t, clientTables()...)
	ctx := context.Background()
	c, _ := CreateClient(ctx, db, "c2", "", "")
	t0 := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)

	// Simulate drift: a stale distinct count.
	db.Model(&domain.Client{}).Where("id = ?", c.ID).Update("unique_players_count", 7)

	if err := ApplyClientLikesSequential(ctx, db, ClientDelta{ClientID: c.ID, PlayerID: "111111111", Nickname: "A", Region: "BR", Likes: 30, At: t0}); err != nil {
		t.Fatalf("sequential #1: %v", err)
	}
	if err := ApplyClientLikesSequential(ctx, db, ClientDelta{ClientID: c.ID, PlayerID: "111111111", Nickname: "A", Region: "BR", Likes: 20, At: t0.Add(time.Second)}); err != nil {
		t.Fatalf("sequential #2: %v", err)
	}

	got, _ := GetClient(ctx, db, c.ID)
	if got.TotalLikesSent != 50 || got.UniquePlayersCount != 1 {
		t.Fatalf("aggregates = (%d, %d); want (50, 1)", got.TotalLikesSent, got.UniquePlayersCount)
	}
}

func TestScanClientAggregate_MatchesHistory(t *testing.T) {
	db := newTestDB(t, clientTables()...)
	ctx := context.Background()
	cid := "client-1"
	other := "client-2"
	t0 := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)

	for _, e := range []*domain.HistoryEntry{
		mkEntry("111111111", domain.OutcomeSuccess, 100, t0, &cid),
		mkEntry("111111111", domain.OutcomeSuccess, 25, t0.Add(time.Minute), &cid),
		mkEntry("222222222", domain.OutcomeLimitReached, 0, t0.Add(2*time.Minute), &cid),
		mkEntry("333333333", domain.OutcomeSuccess, 5, t0.Add(3*time.Minute), &other),
	} {
		if err := CreateHistoryEntry(ctx, db, e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	agg, err := ScanClientAggregate(ctx, db, cid)
	if err != nil {
		t.Fatalf("ScanClientAggregate: %v", err)
	}
	if agg.TotalLikesSent != 125 || agg.UniquePlayersCount != 1 {
		t.Fatalf("aggregate = %+v; want total=125 players=1", agg)
	}
	if agg.LastActivityAt == nil || !agg.LastActivityAt.Equal(t0.Add(time.Minute)) {
		t.Fatalf("LastActivityAt = %v; want %v", agg.LastActivityAt, t0.Add(time.Minute))
	}

	none, err := ScanClientAggregate(ctx, db, "nobody")
	if err != nil || none.TotalLikesSent != 0 || none.LastActivityAt != nil {
		t.Fatalf("empty aggregate = (%+v, %v)", none, err)
	}
}
