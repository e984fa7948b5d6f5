package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func envelopeRouter(logs *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	logger := zerolog.New(logs)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-9")
		c.Set("logger", &logger)
		c.Next()
	})
	r.GET("/persist", func(c *gin.Context) {
		fail(c, http.StatusInternalServerError, ErrCodePersistence, "could not record the request")
	})
	r.GET("/cooldown", func(c *gin.Context) {
		Fail(c, http.StatusTooManyRequests, ErrCodeCooldown, "wait before sending again")
	})
	r.POST("/codes", func(c *gin.Context) {
		ok(c, http.StatusCreated, gin.H{"code": "AB1234"})
	})
	r.DELETE("/codes/:id", func(c *gin.Context) { noContent(c) })
	return r
}

func TestFail_ServerErrorIsLogged(t *testing.T) {
	var logs bytes.Buffer
	w := get(envelopeRouter(&logs), "/persist", nil)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	var er ErrorResponse
	decode(t, w, &er)
	if er.RequestID != "rid-9" || er.Code != ErrCodePersistence {
		t.Fatalf("unexpected body: %+v", er)
	}
	if !strings.Contains(logs.String(), `"level":"error"`) || !strings.Contains(logs.String(), ErrCodePersistence) {
		t.Fatalf("expected error log, got: %s", logs.String())
	}
}

func TestFail_ClientErrorIsNotLogged(t *testing.T) {
	var logs bytes.Buffer
	w := get(envelopeRouter(&logs), "/cooldown", nil)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d", w.Code)
	}
	var er ErrorResponse
	decode(t, w, &er)
	if er.Code != ErrCodeCooldown || er.Message == "" {
		t.Fatalf("unexpected body: %+v", er)
	}
	if logs.Len() != 0 {
		t.Fatalf("4xx must not log: %s", logs.String())
	}
}

func TestSuccessHelpers(t *testing.T) {
	var logs bytes.Buffer
	r := envelopeRouter(&logs)

	w := send(r, http.MethodPost, "/codes", "")
	var body map[string]string
	decode(t, w, &body)
	if w.Code != http.StatusCreated || body["code"] != "AB1234" {
		t.Fatalf("status=%d body=%v", w.Code, body)
	}

	w = send(r, http.MethodDelete, "/codes/x", "")
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("status=%d len=%d", w.Code, w.Body.Len())
	}
}
