// Package handlers implements the Gin endpoints of the likes API.
//
// Handlers are transport-thin: they bind and normalize input, call the
// application services through the interfaces below, and translate results
// and sentinel errors into the standard response envelope.
package handlers

import (
	"context"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leozinbrozgg/freefirelikes2025/internal/domain"
	"github.com/leozinbrozgg/freefirelikes2025/internal/repo"
	"github.com/leozinbrozgg/freefirelikes2025/internal/services"
	"github.com/leozinbrozgg/freefirelikes2025/internal/upstream"
	"github.com/leozinbrozgg/freefirelikes2025/internal/utils"
)

//
// Service contracts (context-aware)
//

// LikeSender runs a like request end to end.
type LikeSender interface {
	Send(ctx context.Context, in services.SendInput) (*services.LikeResult, error)
}

// CooldownReader reports a device's remaining cooldown in whole seconds.
type CooldownReader interface {
	Remaining(ctx context.Context, deviceID string) (int, error)
}

// ReplayStore stores and replays idempotent like results.
type ReplayStore interface {
	Lookup(ctx context.Context, deviceID, key string) (*domain.HistoryEntry, error)
	Save(ctx context.Context, deviceID, key, entryID string, status int) error
}

// Forwarder relays raw calls to the provider.
type Forwarder interface {
	Forward(ctx context.Context, ep upstream.Endpoint, params url.Values) (*upstream.Forwarded, error)
}

// HistoryReader serves the durable history.
type HistoryReader interface {
	Page(ctx context.Context, offset, limit int) (*services.HistoryPage, error)
	Stats(ctx context.Context) (repo.HistoryStats, error)
	PlayerHistory(ctx context.Context, playerID string, limit int) ([]domain.HistoryEntry, repo.HistoryStats, error)
}

// AccessManager covers access codes and client dashboards.
type AccessManager interface {
	Redeem(ctx context.Context, code, ip string) (*services.Redemption, error)
	GenerateCode(ctx context.Context, in services.GenerateInput) (*domain.AccessCode, error)
	ListCodes(ctx context.Context, offset, limit int) ([]domain.AccessCode, int64, error)
	DeleteCode(ctx context.Context, id string) error
	ListClients(ctx context.Context, offset, limit int) ([]domain.Client, int64, error)
	ClientStats(ctx context.Context, clientID string, verify bool) (*services.ClientStats, error)
	AdminStats(ctx context.Context) (repo.AccessStats, error)
}

// AdminLogin exchanges the admin code for a bearer token.
type AdminLogin interface {
	Login(code string) (token string, expiresAt time.Time, err error)
}

//
// Handler wiring
//

// Deps are the services the handlers call. Nil members disable the routes
// that need them.
type Deps struct {
	Likes    LikeSender
	Cooldown CooldownReader
	Replays  ReplayStore
	Relay    Forwarder
	History  HistoryReader
	Access   AccessManager
	Admin    AdminLogin
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	likes    LikeSender
	cooldown CooldownReader
	replays  ReplayStore
	relay    Forwarder
	history  HistoryReader
	access   AccessManager
	admin    AdminLogin
}

// New constructs Handlers bound to the given services.
func New(d Deps) *Handlers {
	return &Handlers{
		likes:    d.Likes,
		cooldown: d.Cooldown,
		replays:  d.Replays,
		relay:    d.Relay,
		history:  d.History,
		access:   d.Access,
		admin:    d.Admin,
	}
}

//
// Shared DTOs
//

// Pagination carries offset pagination metadata for list responses.
type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

// pageParams parses limit and offset, clamping the limit to the history
// bounds and negative offsets to zero.
func pageParams(c *gin.Context) (offset, limit int) {
	limit = services.ClampLimit(utils.AtoiDefault(c.Query("limit"), services.DefaultHistoryLimit))
	offset = utils.AtoiDefault(c.Query("offset"), 0)
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

func pagination(total int64, offset, limit, n int) Pagination {
	return Pagination{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+n) < total,
	}
}
