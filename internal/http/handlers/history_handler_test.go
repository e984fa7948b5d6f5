package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/leozinbrozgg/freefirelikes2025/internal/domain"
	"github.com/leozinbrozgg/freefirelikes2025/internal/repo"
	"github.com/leozinbrozgg/freefirelikes2025/internal/services"
)

type stubHistory struct {
	gotOffset, gotLimit int
	gotPlayer           string
	page                *services.HistoryPage
	stats               repo.HistoryStats
	err                 error
}

func (s *stubHistory) Page(_ context.Context, offset, limit int) (*services.HistoryPage, error) {
	s.gotOffset, s.gotLimit = offset, limit
	if s.err != nil {
		return nil, s.err
	}
	p := *s.page
	p.Offset, p.Limit = offset, limit
	return &p, nil
}

func (s *stubHistory) Stats(context.Context) (repo.HistoryStats, error) { return s.stats, s.err }

func (s *stubHistory) PlayerHistory(_ context.Context, playerID string, limit int) ([]domain.HistoryEntry, repo.HistoryStats, error) {
	s.gotPlayer, s.gotLimit = playerID, limit
	if playerID == "abc" {
		return nil, repo.HistoryStats{}, &services.ValidationError{Field: "playerId", Reason: "must contain only digits"}
	}
	return nil, s.stats, s.err
}

func historyRouter(s *stubHistory) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := New(Deps{History: s})
	r.GET("/global-history", h.GlobalHistory)
	r.GET("/global-stats", h.GlobalStats)
	r.GET("/players/:id/history", h.PlayerHistory)
	return r
}

func get(r http.Handler, target string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestGlobalHistory_PaginationAndETag(t *testing.T) {
	stats := repo.HistoryStats{Total: 3, Successful: 2, Failed: 1, TotalLikes: 200}
	s := &stubHistory{page: &services.HistoryPage{
		Entries: []domain.HistoryEntry{{ID: "e3"}, {ID: "e2"}},
		Stats:   stats,
		Total:   3,
	}}
	r := historyRouter(s)

	w := get(r, "/global-history?limit=2&offset=0", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body GlobalHistoryResponse
	decode(t, w, &body)
	if len(body.History) != 2 || body.Stats != stats {
		t.Fatalf("unexpected body: %+v", body)
	}
	want := Pagination{Total: 3, Limit: 2, Offset: 0, HasMore: true}
	if body.Pagination != want {
		t.Fatalf("pagination=%+v want %+v", body.Pagination, want)
	}

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag")
	}
	w = get(r, "/global-history?limit=2&offset=0", map[string]string{"If-None-Match": etag})
	if w.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", w.Code)
	}
}

func TestGlobalHistory_ClampsParams(t *testing.T) {
	s := &stubHistory{page: &services.HistoryPage{Entries: []domain.HistoryEntry{}}}
	r := historyRouter(s)

	get(r, "/global-history?limit=9999&offset=-5", nil)
	if s.gotLimit != services.MaxHistoryLimit || s.gotOffset != 0 {
		t.Fatalf("limit=%d offset=%d", s.gotLimit, s.gotOffset)
	}
	get(r, "/global-history?limit=x", nil)
	if s.gotLimit != services.DefaultHistoryLimit {
		t.Fatalf("default limit=%d", s.gotLimit)
	}

	w := get(r, "/global-history", nil)
	var body map[string]any
	decode(t, w, &body)
	if h, ok := body["history"].([]any); !ok || len(h) != 0 {
		t.Fatalf("empty history must serialize as []: %v", body["history"])
	}
}

func TestGlobalHistory_And_Stats_Errors(t *testing.T) {
	s := &stubHistory{err: errors.New("db down")}
	r := historyRouter(s)

	if w := get(r, "/global-history", nil); w.Code != http.StatusInternalServerError {
		t.Fatalf("history status=%d", w.Code)
	}
	if w := get(r, "/global-stats", nil); w.Code != http.StatusInternalServerError {
		t.Fatalf("stats status=%d", w.Code)
	}
}

func TestGlobalStats(t *testing.T) {
	s := &stubHistory{stats: repo.HistoryStats{Total: 5, Successful: 4, Failed: 1, TotalLikes: 400}}
	w := get(historyRouter(s), "/global-stats", nil)
	var body repo.HistoryStats
	decode(t, w, &body)
	if w.Code != http.StatusOK || body != s.stats {
		t.Fatalf("status=%d body=%+v", w.Code, body)
	}
}

func TestPlayerHistory(t *testing.T) {
	s := &stubHistory{stats: repo.HistoryStats{Total: 1, Successful: 1, TotalLikes: 100}}
	r := historyRouter(s)

	w := get(r, "/players/123456789/history?limit=5", nil)
	if w.Code != http.StatusOK || s.gotPlayer != "123456789" || s.gotLimit != 5 {
		t.Fatalf("status=%d player=%q limit=%d", w.Code, s.gotPlayer, s.gotLimit)
	}
	var body map[string]any
	decode(t, w, &body)
	if h, ok := body["history"].([]any); !ok || len(h) != 0 {
		t.Fatalf("history must be []: %v", body["history"])
	}

	if w := get(r, "/players/abc/history", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid id status=%d", w.Code)
	}

	s.err = errors.New("db down")
	if w := get(r, "/players/123456789/history", nil); w.Code != http.StatusInternalServerError {
		t.Fatalf("error status=%d", w.Code)
	}
}
