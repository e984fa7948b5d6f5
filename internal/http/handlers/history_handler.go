// History HTTP handlers.
//
// This file exposes the durable like history:
//   - GET /global-history          (paginated, newest first, with global stats, ETag support)
//   - GET /global-stats            (global stats only)
//   - GET /players/{id}/history    (recent entries and stats for one player)
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/leozinbrozgg/freefirelikes2025/internal/domain"
	"github.com/leozinbrozgg/freefirelikes2025/internal/http/middleware"
	"github.com/leozinbrozgg/freefirelikes2025/internal/repo"
	"github.com/leozinbrozgg/freefirelikes2025/internal/services"
	"github.com/leozinbrozgg/freefirelikes2025/internal/utils"
)

//
// DTOs
//

// GlobalHistoryResponse wraps a page of history entries.
type GlobalHistoryResponse struct {
	History    []domain.HistoryEntry `json:"history"`
	Stats      repo.HistoryStats     `json:"stats"`
	Pagination Pagination            `json:"pagination"`
}

// PlayerHistoryResponse is one player's recent history.
type PlayerHistoryResponse struct {
	PlayerID string                `json:"playerId"`
	History  []domain.HistoryEntry `json:"history"`
	Stats    repo.HistoryStats     `json:"stats"`
}

//
// Handlers
//

// GlobalHistory godoc
// @ID          globalHistory
// @Summary     List the global like history (paginated)
// @Description Returns recorded like attempts newest first with aggregate stats. Supports weak ETag via If-None-Match and may return 304.
// @Tags        History
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       limit          query   int     false "Items per page"  minimum(1) maximum(200) default(50)
// @Param       offset         query   int     false "Items to skip"   minimum(0) default(0)
//
// @Success     200  {object} handlers.GlobalHistoryResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /global-history [get]
func (h *Handlers) GlobalHistory(c *gin.Context) {
	offset, limit := pageParams(c)

	page, err := h.history.Page(c.Request.Context(), offset, limit)
	if err != nil {
		lg := middleware.LoggerFrom(c)
		lg.Error().Err(err).Msg("history page failed")
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not load history")
		return
	}

	newest := ""
	if len(page.Entries) > 0 {
		newest = page.Entries[0].ID
	}
	etag := fmt.Sprintf(`W/"history:%d:%d:%d:%s"`, page.Total, page.Offset, page.Limit, newest)
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return
	}

	ok(c, http.StatusOK, GlobalHistoryResponse{
		History:    page.Entries,
		Stats:      page.Stats,
		Pagination: pagination(page.Total, page.Offset, page.Limit, len(page.Entries)),
	})
}

// GlobalStats godoc
// @ID          globalStats
// @Summary     Global like stats
// @Description Returns counts of recorded, successful and limited attempts and the total likes delivered.
// @Tags        History
// @Produce     json
//
// @Success     200  {object} repo.HistoryStats
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /global-stats [get]
func (h *Handlers) GlobalStats(c *gin.Context) {
	stats, err := h.history.Stats(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load stats")
		return
	}
	ok(c, http.StatusOK, stats)
}

// PlayerHistory godoc
// @ID          playerHistory
// @Summary     One player's like history
// @Description Returns the most recent attempts for a player with that player's stats.
// @Tags        History
// @Produce     json
//
// @Param       id     path   string  true  "Player id"       example(123456789)
// @Param       limit  query  int     false "Items to return" minimum(1) maximum(200) default(50)
//
// @Success     200  {object} handlers.PlayerHistoryResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid player id"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /players/{id}/history [get]
func (h *Handlers) PlayerHistory(c *gin.Context) {
	playerID := strings.TrimSpace(c.Param("id"))
	limit := utils.AtoiDefault(c.Query("limit"), services.DefaultHistoryLimit)

	items, stats, err := h.history.PlayerHistory(c.Request.Context(), playerID, limit)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			fail(c, http.StatusBadRequest, ErrCodeValidation, verr.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not load player history")
		return
	}
	if items == nil {
		items = []domain.HistoryEntry{}
	}
	ok(c, http.StatusOK, PlayerHistoryResponse{PlayerID: playerID, History: items, Stats: stats})
}
