package reconcile

import (
	"testing"

	"github.com/leozinbrozgg/freefirelikes2025/internal/domain"
	"github.com/leozinbrozgg/freefirelikes2025/internal/upstream"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name        string
		resp        upstream.ProviderResponse
		wantOutcome domain.Outcome
		wantSent    int64
		wantAnomaly bool
	}{
		{"granted", upstream.ProviderResponse{LikesBefore: 500, LikesAfter: 600, LikesReported: 100}, domain.OutcomeSuccess, 100, false},
		{"reported figure ignored", upstream.ProviderResponse{LikesBefore: 500, LikesAfter: 600, LikesReported: 0}, domain.OutcomeSuccess, 100, false},
		{"limit reached", upstream.ProviderResponse{LikesBefore: 600, LikesAfter: 600, LikesReported: 100}, domain.OutcomeLimitReached, 0, false},
		{"zero zero", upstream.ProviderResponse{}, domain.OutcomeLimitReached, 0, false},
		{"decrease", upstream.ProviderResponse{LikesBefore: 600, LikesAfter: 590}, domain.OutcomeLimitReached, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.resp)
			if got.Outcome != tc.wantOutcome {
				t.Fatalf("Outcome = %q; want %q", got.Outcome, tc.wantOutcome)
			}
			if got.LikesSentActual != tc.wantSent {
				t.Fatalf("LikesSentActual = %d; want %d", got.LikesSentActual, tc.wantSent)
			}
			if (got.Anomaly != "") != tc.wantAnomaly {
				t.Fatalf("Anomaly = %q; want present=%v", got.Anomaly, tc.wantAnomaly)
			}
			if got.LikesSentActual < 0 {
				t.Fatalf("LikesSentActual must never be negative")
			}
		})
	}
}

func TestClassify_NeverUsesRequestedOrReported(t *testing.T) {
	// Requested 100 but only 40 landed.
	c := Classify(upstream.ProviderResponse{LikesBefore: 10, LikesAfter: 50, LikesReported: 100})
	if c.Outcome != domain.OutcomeSuccess || c.LikesSentActual != 40 {
		t.Fatalf("got %+v; want success with 40", c)
	}
	if !c.Shortfall(100) {
		t.Fatalf("expected shortfall for 40/100")
	}
	if c.Shortfall(40) {
		t.Fatalf("no shortfall when request fully granted")
	}
	if Classify(upstream.ProviderResponse{LikesBefore: 5, LikesAfter: 5}).Shortfall(100) {
		t.Fatalf("limit reached is not a shortfall")
	}
}

func TestClassify_IsPure(t *testing.T) {
	resp := upstream.ProviderResponse{LikesBefore: 100, LikesAfter: 137, LikesReported: 999}
	a, b := Classify(resp), Classify(resp)
	if a != b {
		t.Fatalf("Classify not deterministic: %+v vs %+v", a, b)
	}
}
