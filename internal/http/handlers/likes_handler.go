// Like HTTP handlers.
//
// This file exposes the orchestrated like endpoint and the caller's cooldown:
//   - POST /likes      (validate, gate, call the provider, record, notify)
//   - GET  /cooldown   (seconds left before the device may send again)
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// result exists for (device, key), the handler returns the recorded history
// entry and sets `Idempotency-Replayed: true` without calling the provider.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/leozinbrozgg/freefirelikes2025/internal/http/middleware"
	"github.com/leozinbrozgg/freefirelikes2025/internal/services"
)

//
// DTOs
//

// SendLikesRequest is the JSON payload for a like request.
type SendLikesRequest struct {
	// PlayerID is the numeric Free Fire account id.
	PlayerID string `json:"playerId" example:"123456789"`
	// Quantity is the number of likes asked for.
	Quantity int `json:"quantity" example:"100"`
}

// CooldownErrorResponse is returned with 429 while the device cools down.
type CooldownErrorResponse struct {
	ErrorResponse
	RemainingSeconds int `json:"remainingSeconds" example:"17"`
}

// CooldownResponse reports the caller's cooldown state.
type CooldownResponse struct {
	Active           bool `json:"active"`
	RemainingSeconds int  `json:"remainingSeconds"`
}

//
// Handlers
//

// SendLikes godoc
// @ID          sendLikes
// @Summary     Send likes to a player
// @Description Runs one like request: validation, per-device cooldown, provider call with fallbacks,
// @Description reconciliation of the before/after counters, durable history and live notification.
// @Description Supports idempotency via the Idempotency-Key header (same device + key → same entry).
// @Tags        Likes
// @Accept      json
// @Produce     json
//
// @Param       X-Device-ID      header  string  false "Stable device id; the caller IP is used when absent"  example(3f7c2a9e-device)
// @Param       X-Access-Code    header  string  false "Access code (required unless anonymous use is enabled)"  example(AB1234)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.SendLikesRequest  true  "Like request"
//
// @Success     200  {object}  services.LikeResult
// @Header      200  {string}  Idempotency-Replayed  "true when the stored result was replayed"
// @Failure     400  {object}  handlers.ErrorResponse          "Invalid player id or quantity"
// @Failure     401  {object}  handlers.ErrorResponse          "Access code missing or unknown"
// @Failure     403  {object}  handlers.ErrorResponse          "Access code expired or IP not allowed"
// @Failure     422  {object}  handlers.ErrorResponse          "Player nickname could not be resolved"
// @Failure     429  {object}  handlers.CooldownErrorResponse  "Cooldown active"
// @Failure     502  {object}  handlers.ErrorResponse          "Provider unavailable"
// @Failure     500  {object}  handlers.ErrorResponse          "Internal error"
// @Router      /likes [post]
func (h *Handlers) SendLikes(c *gin.Context) {
	ctx := c.Request.Context()

	var req SendLikesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	device := middleware.DeviceID(c)

	// Idempotency (replay path).
	idemKey, _ := middleware.GetIdempotencyKey(c)
	if idemKey != "" && h.replays != nil {
		if prev, err := h.replays.Lookup(ctx, device, idemKey); err == nil && prev != nil {
			c.Header("Idempotency-Replayed", "true")
			ok(c, http.StatusOK, services.ResultFromEntry(prev))
			return
		}
	}

	res, err := h.likes.Send(ctx, services.SendInput{
		PlayerID: req.PlayerID,
		Quantity: req.Quantity,
		DeviceID: device,
		ClientID: middleware.ClientID(c),
		OriginIP: c.ClientIP(),
	})
	if err != nil {
		h.likeFailure(c, err)
		return
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" && h.replays != nil && res.Entry != nil {
		if err := h.replays.Save(ctx, device, idemKey, res.Entry.ID, http.StatusOK); err != nil {
			lg := middleware.LoggerFrom(c)
			lg.Warn().Err(err).Msg("idempotency record not stored")
		}
	}

	ok(c, http.StatusOK, res)
}

func (h *Handlers) likeFailure(c *gin.Context, err error) {
	var (
		verr *services.ValidationError
		cerr *services.CooldownError
	)
	switch {
	case errors.As(err, &verr):
		fail(c, http.StatusBadRequest, ErrCodeValidation, verr.Error())
	case errors.As(err, &cerr):
		c.Header("Retry-After", strconv.Itoa(cerr.Remaining))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, CooldownErrorResponse{
			ErrorResponse: ErrorResponse{
				RequestID: c.Writer.Header().Get("X-Request-ID"),
				Code:      ErrCodeCooldown,
				Message:   "wait " + strconv.Itoa(cerr.Remaining) + "s before sending again",
			},
			RemainingSeconds: cerr.Remaining,
		})
	case errors.Is(err, services.ErrPlayerUnresolved):
		fail(c, http.StatusUnprocessableEntity, ErrCodePlayerUnresolved, "player not found, check the id")
	case errors.Is(err, services.ErrUpstreamUnavailable):
		fail(c, http.StatusBadGateway, ErrCodeUpstreamUnavailable, "likes provider unavailable, try again later")
	case errors.Is(err, services.ErrPersistence):
		fail(c, http.StatusInternalServerError, ErrCodePersistence, "likes were sent but could not be recorded")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}

// GetCooldown godoc
// @ID          getCooldown
// @Summary     Caller's cooldown
// @Description Reports whether the device is cooling down and how many whole seconds remain.
// @Tags        Likes
// @Produce     json
//
// @Param       X-Device-ID  header  string  false "Stable device id; the caller IP is used when absent"
//
// @Success     200  {object}  handlers.CooldownResponse
// @Router      /cooldown [get]
func (h *Handlers) GetCooldown(c *gin.Context) {
	secs, err := h.cooldown.Remaining(c.Request.Context(), middleware.DeviceID(c))
	if err != nil {
		lg := middleware.LoggerFrom(c)
		lg.Warn().Err(err).Msg("cooldown lookup failed")
		secs = 0
	}
	ok(c, http.StatusOK, CooldownResponse{Active: secs > 0, RemainingSeconds: secs})
}
