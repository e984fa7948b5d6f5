// Package reconcile decides what a like request actually achieved by
// comparing the provider's before and after counters. The provider's own
// "sent" figure and the requested quantity are ignored.
package reconcile

import (
	"fmt"

	"github.com/leozinbrozgg/freefirelikes2025/internal/domain"
	"github.com/leozinbrozgg/freefirelikes2025/internal/upstream"
)

// Classification is the outcome derived from a provider response.
type Classification struct {
	Outcome         domain.Outcome
	LikesSentActual int64
	Delta           int64
	// Anomaly describes a response that cannot be trusted; empty otherwise.
	Anomaly string
}

// Classify maps a provider response to an outcome using only
// LikesAfter - LikesBefore. Any non-positive delta is LimitReached with zero
// likes sent; a negative one additionally carries an Anomaly.
func Classify(resp upstream.ProviderResponse) Classification {
	delta := resp.LikesAfter - resp.LikesBefore
	if delta > 0 {
		return Classification{Outcome: domain.OutcomeSuccess, LikesSentActual: delta, Delta: delta}
	}
	c := Classification{Outcome: domain.OutcomeLimitReached, Delta: delta}
	if delta < 0 {
		c.Anomaly = fmt.Sprintf("likes counter decreased from %d to %d", resp.LikesBefore, resp.LikesAfter)
	}
	return c
}

// Shortfall reports whether fewer likes than requested were granted. It only
// drives messaging; the outcome stays Success.
func (c Classification) Shortfall(requested int) bool {
	return c.LikesSentActual > 0 && c.LikesSentActual < int64(requested)
}
