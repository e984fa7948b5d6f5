package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RouteTemplateAndUnmatchedLabels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.GET("/api/players/:id/history", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"playerId": c.Param("id")})
	})
	r.GET("/api/cooldown", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	const tmpl = "/api/players/:id/history"
	baseTmpl := testutil.ToFloat64(httpReqs.WithLabelValues("GET", tmpl, "200"))
	baseMiss := testutil.ToFloat64(httpReqs.WithLabelValues("GET", UnmatchedRoute, "404"))
	baseCooldown := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/api/cooldown", "204"))
	// Reading the three label sets above creates their series.
	baseSeries := testutil.CollectAndCount(httpReqs)

	for _, p := range []string{
		"/api/players/111/history",
		"/api/players/222/history",
		"/api/players/333/history",
		"/wp-login.php",
		"/api/players/111/history/extra",
		"/.env",
		"/api/cooldown",
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
	}

	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", tmpl, "200")); got != baseTmpl+3 {
		t.Fatalf("template counter = %v; want %v", got, baseTmpl+3)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", UnmatchedRoute, "404")); got != baseMiss+3 {
		t.Fatalf("unmatched counter = %v; want %v", got, baseMiss+3)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/api/cooldown", "204")); got != baseCooldown+1 {
		t.Fatalf("cooldown counter = %v; want %v", got, baseCooldown+1)
	}
	// Seven distinct URLs, no new series beyond the three label sets read above.
	if got := testutil.CollectAndCount(httpReqs); got != baseSeries {
		t.Fatalf("series = %d; want %d", got, baseSeries)
	}
	if inFlight := testutil.ToFloat64(httpInflight); inFlight != 0 {
		t.Fatalf("httpInflight = %v; want 0", inFlight)
	}
}

func TestMetrics_StreamRouteSkipsLatency(t *testing.T) {
	gin.SetMode(gin.TestMode)
	const stream = "/ws/test-feed"

	entered := make(chan struct{})
	release := make(chan struct{})
	r := gin.New()
	r.Use(Metrics(stream))
	r.GET(stream, func(c *gin.Context) {
		close(entered)
		<-release
		c.Status(http.StatusOK)
	})

	baseLat := testutil.CollectAndCount(httpLat)
	baseCount := testutil.ToFloat64(httpReqs.WithLabelValues("GET", stream, "200"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, stream, nil))
	}()

	<-entered
	if open := testutil.ToFloat64(httpStreams.WithLabelValues(stream)); open != 1 {
		t.Fatalf("streams open = %v; want 1", open)
	}
	if inFlight := testutil.ToFloat64(httpInflight); inFlight != 0 {
		t.Fatalf("stream counted as in-flight request: %v", inFlight)
	}
	close(release)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream handler did not return")
	}

	if open := testutil.ToFloat64(httpStreams.WithLabelValues(stream)); open != 0 {
		t.Fatalf("streams open after close = %v; want 0", open)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", stream, "200")); got != baseCount+1 {
		t.Fatalf("stream counter = %v; want %v", got, baseCount+1)
	}
	if got := testutil.CollectAndCount(httpLat); got != baseLat {
		t.Fatalf("latency series = %d; want %d", got, baseLat)
	}
}
