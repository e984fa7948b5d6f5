package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/leozinbrozgg/freefirelikes2025/internal/upstream"
)

type stubForwarder struct {
	ep     upstream.Endpoint
	params url.Values
	res    *upstream.Forwarded
	err    error
	calls  int
}

func (s *stubForwarder) Forward(_ context.Context, ep upstream.Endpoint, params url.Values) (*upstream.Forwarded, error) {
	s.calls++
	s.ep, s.params = ep, params
	return s.res, s.err
}

func relayRouter(f *stubForwarder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		Fail(c, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed")
	})
	h := New(Deps{Relay: f})
	r.POST("/send-likes", h.SendLikesRelay)
	r.GET("/player", h.PlayerRelay)
	return r
}

func TestSendLikesRelay_ForwardsRawBody(t *testing.T) {
	f := &stubForwarder{res: &upstream.Forwarded{Status: 200, Body: []byte(`{"LikesGivenByAPI":100,"PlayerNickname":"Ninja"}`)}}
	r := relayRouter(f)

	for _, body := range []string{`{"uid":"123456789","quantity":100}`, `{"uid":123456789,"quantity":"100"}`} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/send-likes", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("%s: status=%d", body, w.Code)
		}
		if w.Body.String() != `{"LikesGivenByAPI":100,"PlayerNickname":"Ninja"}` {
			t.Fatalf("body not passed through: %s", w.Body.String())
		}
		if f.ep != upstream.EndpointLikes || f.params.Get("uid") != "123456789" || f.params.Get("quantity") != "100" {
			t.Fatalf("unexpected forward: ep=%v params=%v", f.ep, f.params)
		}
	}
}

func TestSendLikesRelay_Errors(t *testing.T) {
	cases := []struct {
		name   string
		method string
		body   string
		fwd    *stubForwarder
		status int
	}{
		{"wrong method", http.MethodGet, "", &stubForwarder{}, http.StatusMethodNotAllowed},
		{"missing quantity", http.MethodPost, `{"uid":"123"}`, &stubForwarder{}, http.StatusBadRequest},
		{"zero quantity", http.MethodPost, `{"uid":"123","quantity":0}`, &stubForwarder{}, http.StatusBadRequest},
		{"not configured", http.MethodPost, `{"uid":"123","quantity":1}`, &stubForwarder{err: upstream.ErrNotConfigured}, http.StatusInternalServerError},
		{"unreachable", http.MethodPost, `{"uid":"123","quantity":1}`, &stubForwarder{err: errors.New("dial tcp: refused")}, http.StatusInternalServerError},
		{"upstream 403 mirrored", http.MethodPost, `{"uid":"123","quantity":1}`, &stubForwarder{res: &upstream.Forwarded{Status: 403, Body: []byte("denied")}}, http.StatusForbidden},
		{"non-json 200", http.MethodPost, `{"uid":"123","quantity":1}`, &stubForwarder{res: &upstream.Forwarded{Status: 200, Body: []byte("<html>")}}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := relayRouter(tc.fwd)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tc.method, "/send-likes", bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)
			if w.Code != tc.status {
				t.Fatalf("status=%d want %d body=%s", w.Code, tc.status, w.Body.String())
			}
			if bytes.Contains(w.Body.Bytes(), []byte("refused")) {
				t.Fatalf("transport error leaked: %s", w.Body.String())
			}
		})
	}
}

func TestPlayerRelay(t *testing.T) {
	f := &stubForwarder{res: &upstream.Forwarded{Status: 200, Body: []byte(`{"PlayerNickname":"Ninja"}`)}}
	r := relayRouter(f)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/player", nil))
	if w.Code != http.StatusBadRequest || f.calls != 0 {
		t.Fatalf("missing uid: status=%d calls=%d", w.Code, f.calls)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/player?uid=123456789", nil))
	if w.Code != http.StatusOK || f.ep != upstream.EndpointPlayer || f.params.Get("uid") != "123456789" {
		t.Fatalf("status=%d ep=%v params=%v", w.Code, f.ep, f.params)
	}
}
