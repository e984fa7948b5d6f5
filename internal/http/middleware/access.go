// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the credential checks of the like API:
//   - AccessCode: validates the X-Access-Code header and binds the client.
//   - RequireClient: insists a client was bound.
//   - AdminAuth: requires a valid admin bearer token.
//   - APIKey: optional shared-key check for the relay endpoints.
//
// Failures are answered with the same compact JSON envelope the rest of the
// API uses ({request_id, code, message}).
package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/leozinbrozgg/freefirelikes2025/internal/auth"
	"github.com/leozinbrozgg/freefirelikes2025/internal/domain"
	"github.com/leozinbrozgg/freefirelikes2025/internal/services"
)

// AccessAuthorizer validates an access code for a caller address.
type AccessAuthorizer interface {
	Authorize(ctx context.Context, code, ip string) (*domain.AccessCode, error)
}

// TokenValidator validates admin bearer tokens.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// AccessCode validates X-Access-Code and stores the owning client id in the
// context (read it with ClientID). When required is false a request without
// a code proceeds anonymously; a code that is present is always validated.
func AccessCode(authz AccessAuthorizer, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := strings.TrimSpace(c.GetHeader(HeaderAccessCode))
		if code == "" && !required {
			c.Next()
			return
		}

		ac, err := authz.Authorize(c.Request.Context(), code, c.ClientIP())
		if err != nil {
			status, errCode, msg := accessFailure(err)
			if status >= http.StatusInternalServerError {
				LoggerFrom(c).Error().Err(err).Msg("access code lookup failed")
			}
			abortJSON(c, status, errCode, msg)
			return
		}
		c.Set(ctxKeyClientID, ac.ClientID)
		c.Next()
	}
}

func accessFailure(err error) (int, string, string) {
	switch {
	case errors.Is(err, services.ErrCodeRequired):
		return http.StatusUnauthorized, "access_code_required", "access code required"
	case errors.Is(err, services.ErrCodeNotFound):
		return http.StatusUnauthorized, "invalid_access_code", "invalid access code"
	case errors.Is(err, services.ErrCodeExpired):
		return http.StatusForbidden, "access_code_expired", "access code expired"
	case errors.Is(err, services.ErrIPNotAllowed):
		return http.StatusForbidden, "ip_not_allowed", "access code not valid from this address"
	default:
		return http.StatusInternalServerError, "internal_error", "could not verify access code"
	}
}

// RequireClient rejects requests on which AccessCode bound no client. Mount
// it after AccessCode when a route needs a code even though the group
// accepts anonymous callers.
func RequireClient() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ClientID(c) == "" {
			status, code, msg := accessFailure(services.ErrCodeRequired)
			abortJSON(c, status, code, msg)
			return
		}
		c.Next()
	}
}

// AdminAuth requires "Authorization: Bearer <token>" accepted by v.
func AdminAuth(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(h, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "admin token required")
			return
		}
		claims, err := v.Validate(strings.TrimSpace(token))
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "invalid admin token")
			return
		}
		c.Set(ctxKeyAdmin, claims.Subject)
		c.Next()
	}
}

// APIKey requires X-API-Key to match one of keys. An empty key list accepts
// every request.
func APIKey(keys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(keys) == 0 {
			c.Next()
			return
		}
		got := c.GetHeader(HeaderAPIKey)
		for _, k := range keys {
			if subtle.ConstantTimeCompare([]byte(got), []byte(k)) == 1 {
				c.Next()
				return
			}
		}
		abortJSON(c, http.StatusUnauthorized, "unauthorized", "invalid API key")
	}
}

func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       code,
		"message":    msg,
	})
}
