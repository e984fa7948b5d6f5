// Package feed broadcasts newly recorded history entries to live viewers.
// A Hub keeps the most recent entries in memory so a new viewer receives a
// snapshot first and then every update, in order.
package feed

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/leozinbrozgg/freefirelikes2025/internal/domain"
)

// Event names sent to viewers.
const (
	EventInitialHistory = "initialHistory"
	EventHistoryUpdate  = "historyUpdate"
)

const (
	DefaultCapacity = 1000
	DefaultReplay   = 50

	subscriberBuffer = 64
)

var (
	subscribersGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "feed_subscribers",
		Help: "Live feed viewers currently connected.",
	})
	droppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_dropped_events_total",
		Help: "Feed events dropped because a viewer was too slow.",
	})
)

func init() {
	prometheus.MustRegister(subscribersGauge, droppedTotal)
}

// Event is the envelope written to viewers.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Stats summarizes the entries held in memory.
type Stats struct {
	Total      int64 `json:"total"`
	Successful int64 `json:"successful"`
	Failed     int64 `json:"failed"`
	TotalLikes int64 `json:"totalLikes"`
}

// InitialHistory is the payload of EventInitialHistory.
type InitialHistory struct {
	History []domain.HistoryEntry `json:"history"`
	Stats   Stats                 `json:"stats"`
}

// HistoryUpdate is the payload of EventHistoryUpdate.
type HistoryUpdate struct {
	NewEntry     domain.HistoryEntry `json:"newEntry"`
	TotalEntries int                 `json:"totalEntries"`
}

// Hub holds the bounded in-memory history and the set of viewers.
type Hub struct {
	mu     sync.Mutex
	buf    []domain.HistoryEntry // ring, oldest overwritten first
	next   int
	n      int
	replay int
	subs   map[*Subscription]struct{}
	log    zerolog.Logger
}

// NewHub builds a Hub keeping capacity entries and replaying the newest
// replay entries to each new viewer.
func NewHub(capacity, replay int, log zerolog.Logger) *Hub {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if replay <= 0 {
		replay = DefaultReplay
	}
	if replay > capacity {
		replay = capacity
	}
	return &Hub{
		buf:    make([]domain.HistoryEntry, capacity),
		replay: replay,
		subs:   make(map[*Subscription]struct{}),
		log:    log,
	}
}

// Seed loads entries (newest first) into the buffer, typically from durable
// storage at startup.
func (h *Hub) Seed(entries []domain.HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(entries) - 1; i >= 0; i-- {
		h.push(entries[i])
	}
}

// Publish stores entry and sends it to every viewer. A viewer whose buffer
// is full misses the update.
func (h *Hub) Publish(_ context.Context, entry domain.HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.push(entry)
	ev := Event{Event: EventHistoryUpdate, Data: HistoryUpdate{NewEntry: entry, TotalEntries: h.n}}
	for s := range h.subs {
		select {
		case s.ch <- ev:
		default:
			droppedTotal.Inc()
			h.log.Debug().Str("entry_id", entry.ID).Msg("feed viewer too slow; update dropped")
		}
	}
	return nil
}

// Subscribe registers a viewer. The first event on the subscription is
// always the initial snapshot.
func (h *Hub) Subscribe() *Subscription {
	s := &Subscription{ch: make(chan Event, subscriberBuffer), hub: h}
	h.mu.Lock()
	s.ch <- Event{Event: EventInitialHistory, Data: h.snapshotLocked()}
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	subscribersGauge.Inc()
	return s
}

// Snapshot returns the newest entries and stats over the whole buffer.
func (h *Hub) Snapshot() InitialHistory {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked()
}

// Len returns the number of buffered entries.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.n
}

// Subscribers returns the number of connected viewers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) push(e domain.HistoryEntry) {
	h.buf[h.next] = e
	h.next = (h.next + 1) % len(h.buf)
	if h.n < len(h.buf) {
		h.n++
	}
}

// newest returns up to k entries, newest first.
func (h *Hub) newest(k int) []domain.HistoryEntry {
	if k > h.n {
		k = h.n
	}
	out := make([]domain.HistoryEntry, k)
	size := len(h.buf)
	for i := 0; i < k; i++ {
		out[i] = h.buf[(h.next-1-i+size)%size]
	}
	return out
}

func (h *Hub) snapshotLocked() InitialHistory {
	var st Stats
	// Order does not matter for stats; the first n slots are always filled.
	for _, e := range h.buf[:h.n] {
		st.Total++
		if e.Outcome.Succeeded() {
			st.Successful++
			st.TotalLikes += e.LikesSentActual
		} else {
			st.Failed++
		}
	}
	return InitialHistory{History: h.newest(h.replay), Stats: st}
}

// Subscription is one viewer's event stream.
type Subscription struct {
	ch   chan Event
	hub  *Hub
	once sync.Once
}

// Events returns the viewer's channel; it is closed by Close.
func (s *Subscription) Events() <-chan Event { return s.ch }

// Close unregisters the viewer. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		close(s.ch)
		s.hub.mu.Unlock()
		subscribersGauge.Dec()
	})
}
