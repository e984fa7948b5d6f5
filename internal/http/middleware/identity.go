// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the caller identities the like API works with: the
// device (cooldown key) and, when an access code was accepted, the client.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Identity headers and context keys.
const (
	HeaderDeviceID   = "X-Device-ID"
	HeaderAccessCode = "X-Access-Code"
	HeaderAPIKey     = "X-API-Key"

	ctxKeyClientID = "clientID"
	ctxKeyAdmin    = "admin"

	maxDeviceIDLen = 128
)

// DeviceID returns the caller's device identifier: the X-Device-ID header
// when present, otherwise the client IP prefixed with "ip:".
func DeviceID(c *gin.Context) string {
	if c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader(HeaderDeviceID)); h != "" {
			if len(h) > maxDeviceIDLen {
				h = h[:maxDeviceIDLen]
			}
			return h
		}
	}
	return "ip:" + c.ClientIP()
}

// ClientID returns the client bound to the request by AccessCode, or "".
func ClientID(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyClientID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
