// Package cooldown implements the per-device admission gate that spaces
// out like requests. A device is admitted at most once per window; an
// admission arms the gate before any upstream work starts, so a failed
// request still consumes the window.
package cooldown

import (
	"context"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/leozinbrozgg/freefirelikes2025/internal/clock"
)

// DefaultWindow is the cooldown applied when none is configured.
const DefaultWindow = 30 * time.Second

var rejections = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "likes_cooldown_rejections_total",
	Help: "Like requests rejected because the device was cooling down.",
})

func init() {
	prometheus.MustRegister(rejections)
}

// Store persists one cooldown deadline per device.
type Store interface {
	// Reserve stores until for deviceID unless an unexpired deadline
	// (relative to now) exists. It returns the deadline in force and
	// whether this call set it.
	Reserve(ctx context.Context, deviceID string, now, until time.Time) (deadline time.Time, reserved bool, err error)
	// Deadline returns the stored deadline, if any.
	Deadline(ctx context.Context, deviceID string) (time.Time, bool, error)
	// Clear removes the stored deadline.
	Clear(ctx context.Context, deviceID string) error
}

// Decision is the result of TryAdmit.
type Decision struct {
	Admitted bool
	// Remaining is the whole seconds left, rounded up; zero when admitted.
	Remaining int
	EndsAt    time.Time
}

// Gate admits or rejects requests per device.
type Gate struct {
	store  Store
	window time.Duration
	clock  clock.Clock
	log    zerolog.Logger
}

// NewGate builds a Gate. A non-positive window falls back to DefaultWindow.
func NewGate(store Store, window time.Duration, clk clock.Clock, log zerolog.Logger) *Gate {
	if window <= 0 {
		window = DefaultWindow
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Gate{store: store, window: window, clock: clk, log: log}
}

// Window returns the configured cooldown length.
func (g *Gate) Window() time.Duration { return g.window }

// TryAdmit admits deviceID and arms its cooldown, or reports how long it
// must still wait. Store failures admit the request; the gate is advisory.
func (g *Gate) TryAdmit(ctx context.Context, deviceID string) Decision {
	deviceID = normalizeDevice(deviceID)
	now := g.clock.Now()
	until := now.Add(g.window)

	deadline, reserved, err := g.store.Reserve(ctx, deviceID, now, until)
	if err != nil {
		g.log.Warn().Err(err).Str("device_id", deviceID).Msg("cooldown store unavailable; admitting")
		return Decision{Admitted: true, EndsAt: until}
	}
	if reserved {
		return Decision{Admitted: true, EndsAt: deadline}
	}
	rejections.Inc()
	return Decision{Remaining: ceilSeconds(deadline.Sub(now)), EndsAt: deadline}
}

// Remaining reports the whole seconds left on deviceID's cooldown without
// arming it. Expired deadlines are cleared.
func (g *Gate) Remaining(ctx context.Context, deviceID string) (int, error) {
	deviceID = normalizeDevice(deviceID)
	deadline, ok, err := g.store.Deadline(ctx, deviceID)
	if err != nil || !ok {
		return 0, err
	}
	now := g.clock.Now()
	if !now.Before(deadline) {
		return 0, g.store.Clear(ctx, deviceID)
	}
	return ceilSeconds(deadline.Sub(now)), nil
}

// Reset clears deviceID's cooldown.
func (g *Gate) Reset(ctx context.Context, deviceID string) error {
	return g.store.Clear(ctx, normalizeDevice(deviceID))
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}

func normalizeDevice(id string) string {
	if id == "" {
		return "anonymous"
	}
	return id
}
