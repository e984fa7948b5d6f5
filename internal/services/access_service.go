// Package services – AccessService
//
// AccessService manages the access codes that tie like requests to a
// client: code generation and deletion for admins, redemption and per-request
// authorization for holders, and the client dashboards built on the cached
// aggregates.
package services

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leozinbrozgg/freefirelikes2025/internal/clock"
	"github.com/leozinbrozgg/freefirelikes2025/internal/domain"
	"github.com/leozinbrozgg/freefirelikes2025/internal/repo"
)

// Access code rules.
const (
	ExpiryGrace        = 5 * time.Minute
	MaxCodeDays        = 365
	RecentPlayersLimit = 10

	codeLetters  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeDigits   = "0123456789"
	codeAttempts = 5
)

// GenerateInput describes a new access code.
type GenerateInput struct {
	ClientName string
	Days       int
	AllowedIP  string
	EnforceIP  bool
}

// Redemption is returned to a holder after a successful redeem.
type Redemption struct {
	ClientID   string    `json:"clientId"`
	ClientName string    `json:"clientName"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// ClientStats is a client's dashboard.
type ClientStats struct {
	Client        *domain.Client             `json:"client"`
	RecentPlayers []domain.ClientPlayerTotal `json:"recentPlayers"`
	// Verified is the aggregate replayed from history; set on request.
	Verified *repo.ClientAggregate `json:"verified,omitempty"`
	// Drift is true when the cached counters disagree with Verified.
	Drift bool `json:"drift"`
}

// AccessService provides access code and client operations.
type AccessService struct {
	DB    *gorm.DB
	Clock clock.Clock
}

// Authorize validates code for a request from ip. The first use marks the
// code used and, when the code enforces it, binds ip.
func (s *AccessService) Authorize(ctx context.Context, code, ip string) (*domain.AccessCode, error) {
	tr := otel.Tracer("services/AccessService")
	ctx, span := tr.Start(ctx, "Authorize")
	defer span.End()

	code = normalizeCode(code)
	if code == "" {
		return nil, ErrCodeRequired
	}
	ac, err := repo.GetAccessCodeByCode(ctx, s.DB, code)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	span.SetAttributes(attribute.String("client.id", ac.ClientID))

	now := s.now()
	if now.After(ac.ExpiresAt.Add(ExpiryGrace)) {
		return nil, ErrCodeExpired
	}
	if ac.AllowedIP != nil && *ac.AllowedIP != "" && *ac.AllowedIP != ip {
		return nil, ErrIPNotAllowed
	}
	if ac.BoundIP != nil && *ac.BoundIP != "" && *ac.BoundIP != ip {
		return nil, ErrIPNotAllowed
	}

	bind := ac.EnforceIP && ac.BoundIP == nil && ip != ""
	if !ac.Used || bind {
		var bound *string
		if bind {
			bound = &ip
		}
		won, err := repo.MarkAccessCodeUsed(ctx, s.DB, ac.ID, now, bound)
		if err != nil {
			return nil, err
		}
		if bind && !won {
			// Another address bound the code between our read and write.
			cur, err := repo.GetAccessCodeByCode(ctx, s.DB, code)
			if err != nil {
				return nil, err
			}
			if cur.BoundIP == nil || *cur.BoundIP != ip {
				return nil, ErrIPNotAllowed
			}
			bound = cur.BoundIP
		}
		ac.Used = true
		if ac.UsedAt == nil {
			ac.UsedAt = &now
		}
		if bind {
			ac.BoundIP = bound
		}
	}
	return ac, nil
}

// Redeem authorizes code and returns the holder's client summary.
func (s *AccessService) Redeem(ctx context.Context, code, ip string) (*Redemption, error) {
	ac, err := s.Authorize(ctx, code, ip)
	if err != nil {
		return nil, err
	}
	r := &Redemption{ClientID: ac.ClientID, ExpiresAt: ac.ExpiresAt}
	if ac.Client != nil {
		r.ClientName = ac.Client.Name
	}
	return r, nil
}

// GenerateCode creates a code for the named client, creating the client on
// first use.
func (s *AccessService) GenerateCode(ctx context.Context, in GenerateInput) (*domain.AccessCode, error) {
	tr := otel.Tracer("services/AccessService")
	ctx, span := tr.Start(ctx, "GenerateCode",
		trace.WithAttributes(attribute.Int("code.days", in.Days)),
	)
	defer span.End()

	name := normalizeClientName(in.ClientName)
	if name == "" || in.Days < 1 || in.Days > MaxCodeDays {
		return nil, ErrInvalidInput
	}
	client, err := repo.FindOrCreateClient(ctx, s.DB, name)
	if err != nil {
		return nil, err
	}

	now := s.now()
	hours := in.Days * 24
	ac := &domain.AccessCode{
		ClientID:  client.ID,
		Hours:     hours,
		ExpiresAt: now.Add(time.Duration(hours) * time.Hour),
		EnforceIP: in.EnforceIP,
		CreatedAt: now,
	}
	if ip := strings.TrimSpace(in.AllowedIP); ip != "" {
		ac.AllowedIP = &ip
	}

	for i := 0; i < codeAttempts; i++ {
		ac.ID = uuid.NewString()
		ac.Code, err = newCode()
		if err != nil {
			return nil, err
		}
		err = repo.CreateAccessCode(ctx, s.DB, ac)
		if !errors.Is(err, repo.ErrDuplicate) {
			break
		}
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	ac.Client = client
	return ac, nil
}

// ListCodes returns a page of codes newest-first and the total count.
func (s *AccessService) ListCodes(ctx context.Context, offset, limit int) ([]domain.AccessCode, int64, error) {
	limit = ClampLimit(limit)
	total, err := repo.CountAccessCodes(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.AccessCode{}, 0, nil
	}
	items, err := repo.ListAccessCodesPage(ctx, s.DB, offset, limit)
	return items, total, err
}

// DeleteCode removes a code by id.
func (s *AccessService) DeleteCode(ctx context.Context, id string) error {
	if err := repo.DeleteAccessCode(ctx, s.DB, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrCodeNotFound
		}
		return err
	}
	return nil
}

// ListClients returns a page of clients by likes sent and the total count.
func (s *AccessService) ListClients(ctx context.Context, offset, limit int) ([]domain.Client, int64, error) {
	limit = ClampLimit(limit)
	total, err := repo.CountClients(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Client{}, 0, nil
	}
	items, err := repo.ListClientsPage(ctx, s.DB, offset, limit)
	return items, total, err
}

// ClientStats returns the client's cached counters and recent players.
// With verify set, the counters are also replayed from history.
func (s *AccessService) ClientStats(ctx context.Context, clientID string, verify bool) (*ClientStats, error) {
	tr := otel.Tracer("services/AccessService")
	ctx, span := tr.Start(ctx, "ClientStats",
		trace.WithAttributes(
			attribute.String("client.id", clientID),
			attribute.Bool("verify", verify),
		),
	)
	defer span.End()

	c, err := repo.GetClient(ctx, s.DB, clientID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	recent, err := repo.RecentClientPlayers(ctx, s.DB, clientID, RecentPlayersLimit)
	if err != nil {
		return nil, err
	}
	out := &ClientStats{Client: c, RecentPlayers: recent}
	if !verify {
		return out, nil
	}

	agg, err := repo.ScanClientAggregate(ctx, s.DB, clientID)
	if err != nil {
		return nil, err
	}
	out.Verified = &agg
	out.Drift = agg.TotalLikesSent != c.TotalLikesSent || agg.UniquePlayersCount != c.UniquePlayersCount
	return out, nil
}

// AdminStats counts clients and codes.
func (s *AccessService) AdminStats(ctx context.Context) (repo.AccessStats, error) {
	return repo.CountAccess(ctx, s.DB, s.now())
}

func (s *AccessService) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

// newCode returns two random letters followed by four random digits.
func newCode() (string, error) {
	var b strings.Builder
	for i := 0; i < 6; i++ {
		set := codeDigits
		if i < 2 {
			set = codeLetters
		}
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
		if err != nil {
			return "", err
		}
		b.WriteByte(set[n.Int64()])
	}
	return b.String(), nil
}

// ValidCode reports whether s has the two-letters-four-digits shape.
func ValidCode(s string) bool {
	if len(s) != 6 {
		return false
	}
	for i := 0; i < 6; i++ {
		c := s[i]
		if i < 2 && (c < 'A' || c > 'Z') {
			return false
		}
		if i >= 2 && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

func normalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// normalizeClientName collapses whitespace and title-cases the name so
// "joão  silva" and "João Silva" map to the same client.
func normalizeClientName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	return cases.Title(language.Und).String(strings.ToLower(s))
}
