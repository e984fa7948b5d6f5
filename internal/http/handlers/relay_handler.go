// Relay HTTP handlers.
//
// These endpoints let browsers reach the provider without seeing its secret
// key:
//   - POST /send-likes   ({uid, quantity} → provider likes endpoint)
//   - GET  /player       (?uid= → provider player-info endpoint)
//
// Relays are stateless: no cooldown, no history. A 2xx upstream body is
// returned verbatim; a non-2xx status is mirrored with a short error.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/leozinbrozgg/freefirelikes2025/internal/http/middleware"
	"github.com/leozinbrozgg/freefirelikes2025/internal/upstream"
)

// RelayLikesRequest is the relay payload. Both fields accept a JSON number
// or a numeric string.
type RelayLikesRequest struct {
	UID      json.Number `json:"uid" swaggertype:"string" example:"123456789"`
	Quantity json.Number `json:"quantity" swaggertype:"integer" example:"100"`
}

// RelayError is the body of relay failures.
type RelayError struct {
	Error string `json:"error" example:"uid and quantity are required"`
}

// SendLikesRelay godoc
// @ID          sendLikesRelay
// @Summary     Relay a like request to the provider
// @Description Forwards {uid, quantity} to the provider with the server-held key and returns the provider's JSON unchanged.
// @Tags        Relay
// @Accept      json
// @Produce     json
//
// @Param       X-API-Key  header  string  false "Relay key (when relay keys are configured)"
// @Param       body       body    handlers.RelayLikesRequest  true  "Relay payload"
//
// @Success     200  {object}  object               "Provider response"
// @Failure     400  {object}  handlers.RelayError  "Missing fields"
// @Failure     401  {object}  handlers.ErrorResponse "Bad relay key"
// @Failure     405  {object}  handlers.ErrorResponse "Method not allowed"
// @Failure     500  {object}  handlers.RelayError  "Not configured or provider unreachable"
// @Router      /send-likes [post]
func (h *Handlers) SendLikesRelay(c *gin.Context) {
	var req RelayLikesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, RelayError{Error: "uid and quantity are required"})
		return
	}
	uid, qty := strings.TrimSpace(req.UID.String()), strings.TrimSpace(req.Quantity.String())
	if uid == "" || qty == "" || qty == "0" {
		c.AbortWithStatusJSON(http.StatusBadRequest, RelayError{Error: "uid and quantity are required"})
		return
	}

	h.forward(c, upstream.EndpointLikes, url.Values{"uid": {uid}, "quantity": {qty}})
}

// PlayerRelay godoc
// @ID          playerRelay
// @Summary     Relay a player-info lookup
// @Description Forwards ?uid= to the provider's player endpoint and returns its JSON unchanged.
// @Tags        Relay
// @Produce     json
//
// @Param       X-API-Key  header  string  false "Relay key (when relay keys are configured)"
// @Param       uid        query   string  true  "Player id"  example(123456789)
//
// @Success     200  {object}  object               "Provider response"
// @Failure     400  {object}  handlers.RelayError  "Missing uid"
// @Failure     500  {object}  handlers.RelayError  "Not configured or provider unreachable"
// @Router      /player [get]
func (h *Handlers) PlayerRelay(c *gin.Context) {
	uid := strings.TrimSpace(c.Query("uid"))
	if uid == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, RelayError{Error: "uid is required"})
		return
	}
	h.forward(c, upstream.EndpointPlayer, url.Values{"uid": {uid}})
}

func (h *Handlers) forward(c *gin.Context, ep upstream.Endpoint, params url.Values) {
	lg := middleware.LoggerFrom(c)

	res, err := h.relay.Forward(c.Request.Context(), ep, params)
	if err != nil {
		if errors.Is(err, upstream.ErrNotConfigured) {
			lg.Error().Msg("relay called without provider url or key")
			c.AbortWithStatusJSON(http.StatusInternalServerError, RelayError{Error: "Server not configured"})
			return
		}
		lg.Error().Err(err).Msg("relay upstream unreachable")
		c.AbortWithStatusJSON(http.StatusInternalServerError, RelayError{Error: "Internal error"})
		return
	}

	if res.Status < 200 || res.Status > 299 {
		lg.Warn().Int("upstream_status", res.Status).Msg("relay upstream error")
		c.AbortWithStatusJSON(res.Status, RelayError{Error: fmt.Sprintf("Upstream error %d", res.Status)})
		return
	}
	if !json.Valid(res.Body) {
		lg.Error().Msg("relay upstream returned non-JSON body")
		c.AbortWithStatusJSON(http.StatusInternalServerError, RelayError{Error: "Internal error"})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", res.Body)
}
