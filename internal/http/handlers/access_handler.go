// Access HTTP handlers.
//
// Code holders:
//   - POST /access/redeem   (check a code, mark it used, bind the IP when enforced)
//   - GET  /access/me       (the holder's client counters and recent players)
//
// Admins (bearer token from POST /admin/login):
//   - POST   /admin/codes               (generate)
//   - GET    /admin/codes               (list, paginated)
//   - DELETE /admin/codes/{id}          (delete)
//   - GET    /admin/clients             (list, paginated)
//   - GET    /admin/clients/{id}/stats  (dashboard, ?verify=true replays history)
//   - GET    /admin/stats               (client and code counts)
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leozinbrozgg/freefirelikes2025/internal/auth"
	"github.com/leozinbrozgg/freefirelikes2025/internal/domain"
	"github.com/leozinbrozgg/freefirelikes2025/internal/http/middleware"
	"github.com/leozinbrozgg/freefirelikes2025/internal/services"
	"github.com/leozinbrozgg/freefirelikes2025/internal/utils"
)

//
// DTOs
//

// CodeRequest carries an access or admin code.
type CodeRequest struct {
	Code string `json:"code" binding:"required" example:"AB1234"`
}

// LoginResponse is a signed admin token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// GenerateCodeRequest is the payload for a new access code.
type GenerateCodeRequest struct {
	ClientName string `json:"clientName" binding:"required" example:"João Silva"`
	Days       int    `json:"days" binding:"required" example:"30"`
	AllowedIP  string `json:"allowedIp" example:"203.0.113.7"`
	EnforceIP  bool   `json:"enforceIp"`
}

// ListCodesResponse wraps a page of access codes.
type ListCodesResponse struct {
	Codes      []domain.AccessCode `json:"codes"`
	Pagination Pagination          `json:"pagination"`
}

// ListClientsResponse wraps a page of clients.
type ListClientsResponse struct {
	Clients    []domain.Client `json:"clients"`
	Pagination Pagination      `json:"pagination"`
}

//
// Holder endpoints
//

// RedeemCode godoc
// @ID          redeemCode
// @Summary     Redeem an access code
// @Description Validates the code for the caller's IP, marks it used on first use and binds the IP when the code enforces it.
// @Tags        Access
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CodeRequest  true  "Access code"
//
// @Success     200  {object} services.Redemption
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unknown code"
// @Failure     403  {object} handlers.ErrorResponse "Expired or IP not allowed"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /access/redeem [post]
func (h *Handlers) RedeemCode(c *gin.Context) {
	var req CodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "code required")
		return
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if !services.ValidCode(code) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "code must be two letters followed by four digits")
		return
	}

	r, err := h.access.Redeem(c.Request.Context(), code, c.ClientIP())
	if err != nil {
		accessFail(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}

// AccessMe godoc
// @ID          accessMe
// @Summary     The caller's client dashboard
// @Description Returns the client's cached counters and the ten most recent players it sent likes to.
// @Tags        Access
// @Produce     json
//
// @Param       X-Access-Code  header  string  true  "Access code"  example(AB1234)
//
// @Success     200  {object} services.ClientStats
// @Failure     401  {object} handlers.ErrorResponse "Missing or unknown code"
// @Failure     403  {object} handlers.ErrorResponse "Expired or IP not allowed"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /access/me [get]
func (h *Handlers) AccessMe(c *gin.Context) {
	clientID := middleware.ClientID(c)
	if clientID == "" {
		fail(c, http.StatusUnauthorized, ErrCodeAccessRequired, "access code required")
		return
	}
	st, err := h.access.ClientStats(c.Request.Context(), clientID, false)
	if err != nil {
		accessFail(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}

//
// Admin endpoints
//

// AdminLogin godoc
// @ID          adminLogin
// @Summary     Admin login
// @Description Exchanges the admin code for a short-lived bearer token.
// @Tags        Admin
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CodeRequest  true  "Admin code"
//
// @Success     200  {object} handlers.LoginResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Wrong code"
// @Failure     503  {object} handlers.ErrorResponse "Admin login disabled"
// @Router      /admin/login [post]
func (h *Handlers) AdminLogin(c *gin.Context) {
	var req CodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "code required")
		return
	}
	token, exp, err := h.admin.Login(strings.TrimSpace(req.Code))
	switch {
	case errors.Is(err, auth.ErrDisabled):
		fail(c, http.StatusServiceUnavailable, ErrCodeAdminDisabled, "admin login is not configured")
	case errors.Is(err, auth.ErrBadCredentials):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid admin code")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not sign token")
	default:
		ok(c, http.StatusOK, LoginResponse{Token: token, ExpiresAt: exp})
	}
}

// CreateCode godoc
// @ID          createCode
// @Summary     Generate an access code
// @Description Creates a code valid for the given number of days; the client is created on first use of its name.
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.GenerateCodeRequest  true  "Code settings"
//
// @Success     201  {object} domain.AccessCode
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/codes [post]
func (h *Handlers) CreateCode(c *gin.Context) {
	var req GenerateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "clientName and days are required")
		return
	}
	ac, err := h.access.GenerateCode(c.Request.Context(), services.GenerateInput{
		ClientName: req.ClientName,
		Days:       req.Days,
		AllowedIP:  req.AllowedIP,
		EnforceIP:  req.EnforceIP,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "clientName required and days must be between 1 and 365")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, "could not create code")
		return
	}
	ok(c, http.StatusCreated, ac)
}

// ListCodes godoc
// @ID          listCodes
// @Summary     List access codes (paginated)
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
//
// @Param       limit   query  int  false "Items per page"  minimum(1) maximum(200) default(50)
// @Param       offset  query  int  false "Items to skip"   minimum(0) default(0)
//
// @Success     200  {object} handlers.ListCodesResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/codes [get]
func (h *Handlers) ListCodes(c *gin.Context) {
	offset, limit := pageParams(c)
	items, total, err := h.access.ListCodes(c.Request.Context(), offset, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list codes")
		return
	}
	ok(c, http.StatusOK, ListCodesResponse{Codes: items, Pagination: pagination(total, offset, limit, len(items))})
}

// DeleteCode godoc
// @ID          deleteCode
// @Summary     Delete an access code
// @Tags        Admin
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Code id (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/codes/{id} [delete]
func (h *Handlers) DeleteCode(c *gin.Context) {
	if err := h.access.DeleteCode(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, services.ErrCodeNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "code not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not delete code")
		return
	}
	noContent(c)
}

// ListClients godoc
// @ID          listClients
// @Summary     List clients (paginated)
// @Description Clients ordered by likes sent.
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
//
// @Param       limit   query  int  false "Items per page"  minimum(1) maximum(200) default(50)
// @Param       offset  query  int  false "Items to skip"   minimum(0) default(0)
//
// @Success     200  {object} handlers.ListClientsResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/clients [get]
func (h *Handlers) ListClients(c *gin.Context) {
	offset, limit := pageParams(c)
	items, total, err := h.access.ListClients(c.Request.Context(), offset, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list clients")
		return
	}
	ok(c, http.StatusOK, ListClientsResponse{Clients: items, Pagination: pagination(total, offset, limit, len(items))})
}

// ClientStats godoc
// @ID          clientStats
// @Summary     A client's dashboard
// @Description Cached counters and recent players. With verify=true the counters are also replayed from history and drift is reported.
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
//
// @Param       id      path   string  true  "Client id (UUID)"  format(uuid)
// @Param       verify  query  bool    false "Replay counters from history"
//
// @Success     200  {object} services.ClientStats
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/clients/{id}/stats [get]
func (h *Handlers) ClientStats(c *gin.Context) {
	verify := utils.BoolDefault(c.Query("verify"), false)
	st, err := h.access.ClientStats(c.Request.Context(), c.Param("id"), verify)
	if err != nil {
		accessFail(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}

// AdminStats godoc
// @ID          adminStats
// @Summary     Client and code counts
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object} repo.AccessStats
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/stats [get]
func (h *Handlers) AdminStats(c *gin.Context) {
	st, err := h.access.AdminStats(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load stats")
		return
	}
	ok(c, http.StatusOK, st)
}

// accessFail maps access service errors to responses.
func accessFail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCodeNotFound):
		fail(c, http.StatusUnauthorized, ErrCodeInvalidAccessCode, "invalid access code")
	case errors.Is(err, services.ErrCodeExpired):
		fail(c, http.StatusForbidden, ErrCodeCodeExpired, "access code expired")
	case errors.Is(err, services.ErrIPNotAllowed):
		fail(c, http.StatusForbidden, ErrCodeIPNotAllowed, "access code not valid from this address")
	case errors.Is(err, services.ErrClientNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "client not found")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}
