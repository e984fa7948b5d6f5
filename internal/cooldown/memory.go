package cooldown

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps deadlines in process memory.
type MemoryStore struct {
	mu        sync.Mutex
	deadlines map[string]time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{deadlines: make(map[string]time.Time)}
}

// Reserve implements Store.
func (s *MemoryStore) Reserve(_ context.Context, deviceID string, now, until time.Time) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.deadlines[deviceID]; ok && now.Before(d) {
		return d, false, nil
	}
	s.deadlines[deviceID] = until
	return until, true, nil
}

// Deadline implements Store.
func (s *MemoryStore) Deadline(_ context.Context, deviceID string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deadlines[deviceID]
	return d, ok, nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(_ context.Context, deviceID string) error {
	s.mu.Lock()
	delete(s.deadlines, deviceID)
	s.mu.Unlock()
	return nil
}

// Sweep drops every deadline that has passed at now and returns how many
// were removed.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, d := range s.deadlines {
		if !now.Before(d) {
			delete(s.deadlines, id)
			n++
		}
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration, now func() time.Time) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep(now())
		}
	}
}
