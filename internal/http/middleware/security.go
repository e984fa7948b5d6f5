package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const defaultHSTSMaxAge = 180 * 24 * time.Hour

// SecurityOptions configures SecurityHeaders.
//
// PrivatePrefixes lists route prefixes whose responses carry per-caller data
// (send results, access-code sessions, admin views). Those responses get
// Cache-Control: no-store so shared caches and browsers never retain them.
// NoStore applies the same headers to every response.
type SecurityOptions struct {
	EnableHSTS      bool          // only for HTTPS end-to-end deployments
	HSTSMaxAge      time.Duration // defaults to 180 days
	NoStore         bool
	PrivatePrefixes []string
	EnablePolicy    bool // Permissions-Policy and X-Permitted-Cross-Domain-Policies
}

// PrivateRoutes returns the API prefixes whose responses must not be cached
// when the API group is mounted under base.
func PrivateRoutes(base string) []string {
	base = strings.TrimRight(base, "/")
	return []string{
		base + "/likes",
		base + "/send-likes",
		base + "/access/",
		base + "/admin/",
	}
}

// SecurityHeaders adds baseline hardening headers to every response and
// no-store cache headers to private routes. HSTS is only sent on HTTPS
// requests, including those terminated by a proxy that sets
// X-Forwarded-Proto.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := opt.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = defaultHSTSMaxAge
	}
	hsts := "max-age=" + strconv.Itoa(int(maxAge.Seconds())) + "; includeSubDomains; preload"
	prefixes := append([]string(nil), opt.PrivatePrefixes...)

	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}

		if opt.NoStore || isPrivate(c.Request.URL.Path, prefixes) {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}

		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}

		// Browser clients read the request id to quote it in support tickets.
		if h.Get(requestIDHeader) != "" {
			const expose = "Access-Control-Expose-Headers"
			switch cur := h.Get(expose); {
			case cur == "":
				h.Set(expose, requestIDHeader)
			case !strings.Contains(cur, requestIDHeader):
				h.Set(expose, cur+", "+requestIDHeader)
			}
		}

		c.Next()
	}
}

// isPrivate reports whether path equals or sits under one of prefixes. A
// prefix ending in "/" also matches the bare segment ("/api/admin").
func isPrivate(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
		if strings.HasSuffix(p, "/") && path == strings.TrimSuffix(p, "/") {
			return true
		}
	}
	return false
}

func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
