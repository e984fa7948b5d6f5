package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/leozinbrozgg/freefirelikes2025/internal/domain"
)

func mkEntry(player string, outcome domain.Outcome, sent int64, at time.Time, clientID *string) *domain.HistoryEntry {
	return &domain.HistoryEntry{
		ID:                uuid.NewString(),
		AttemptID:         uuid.NewString(),
		PlayerID:          player,
		PlayerNickname:    "Nick" + player,
		PlayerRegion:      "BR",
		QuantityRequested: 100,
		LikesBefore:       500,
		LikesAfter:        500 + sent,
		LikesSentActual:   sent,
		Outcome:           outcome,
		ClientID:          clientID,
		CreatedAt:         at,
	}
}

func TestCreateHistoryEntry_DuplicateAttempt(t *testing.T) {
	db := newTestDB(t, &domain.HistoryEntry{})
	ctx := context.Background()
	now := time.Now().UTC()

	e := mkEntry("123456789", domain.OutcomeSuccess, 100, now, nil)
	if err := CreateHistoryEntry(ctx, db, e); err != nil {
		t.Fatalf("CreateHistoryEntry: %v", err)
	}

	dup := mkEntry("123456789", domain.OutcomeSuccess, 100, now, nil)
	dup.AttemptID = e.AttemptID
	if err := CreateHistoryEntry(ctx, db, dup); err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	got, err := GetHistoryEntryByAttempt(ctx, db, e.AttemptID)
	if err != nil || got.ID != e.ID {
		t.Fatalf("GetHistoryEntryByAttempt = (%+v, %v)", got, err)
	}
	if _, err := GetHistoryEntry(ctx, db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListHistoryPage_NewestFirst(t *testing.T) {
	db := newTestDB(t, &domain.HistoryEntry{})
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if err := CreateHistoryEntry(ctx, db, mkEntry("123456789", domain.OutcomeSuccess, int64(i+1), base.Add(time.Duration(i)*time.Second), nil)); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	n, err := CountHistory(ctx, db)
	if err != nil || n != 5 {
		t.Fatalf("CountHistory = (%d, %v); want 5", n, err)
	}

	page, err := ListHistoryPage(ctx, db, 1, 2)
	if err != nil {
		t.Fatalf("ListHistoryPage: %v", err)
	}
	if len(page) != 2 || page[0].LikesSentActual != 4 || page[1].LikesSentActual != 3 {
		t.Fatalf("unexpected page: %+v", page)
	}

	all, err := ListHistoryPage(ctx, db, -3, 10)
	if err != nil || len(all) != 5 || !all[0].CreatedAt.After(all[4].CreatedAt) {
		t.Fatalf("unexpected full page (len=%d, err=%v)", len(all), err)
	}
}

func TestListPlayerHistory_AndStats(t *testing.T) {
	db := newTestDB(t, &domain.HistoryEntry{})
	ctx := context.Background()
	now := time.Now().UTC()

	seed := []*domain.HistoryEntry{
		mkEntry("111111111", domain.OutcomeSuccess, 100, now, nil),
		mkEntry("111111111", domain.OutcomeLimitReached, 0, now.Add(time.Second), nil),
		mkEntry("111111111", domain.OutcomePartialSuccess, 40, now.Add(2*time.Second), nil),
		mkEntry("222222222", domain.OutcomeFailure, 0, now.Add(3*time.Second), nil),
	}
	for _, e := range seed {
		if err := CreateHistoryEntry(ctx, db, e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	hist, err := ListPlayerHistory(ctx, db, "111111111", 10)
	if err != nil || len(hist) != 3 || hist[0].Outcome != domain.OutcomePartialSuccess {
		t.Fatalf("ListPlayerHistory = (%+v, %v)", hist, err)
	}

	g, err := GlobalHistoryStats(ctx, db)
	if err != nil {
		t.Fatalf("GlobalHistoryStats: %v", err)
	}
	want := HistoryStats{Total: 4, Successful: 2, Failed: 2, TotalLikes: 140}
	if g != want {
		t.Fatalf("GlobalHistoryStats = %+v; want %+v", g, want)
	}

	p, err := PlayerHistoryStats(ctx, db, "222222222")
	if err != nil || p != (HistoryStats{Total: 1, Failed: 1}) {
		t.Fatalf("PlayerHistoryStats = (%+v, %v)", p, err)
	}

	empty, err := PlayerHistoryStats(ctx, db, "999999999")
	if err != nil || empty != (HistoryStats{}) {
		t.Fatalf("empty stats = (%+v, %v)", empty, err)
	}
}
