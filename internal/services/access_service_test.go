package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/leozinbrozgg/freefirelikes2025/internal/clock"
)

func newAccess(t *testing.T) (*AccessService, *clock.Mock) {
	t.Helper()
	clk := clock.NewMock(t0)
	return &AccessService{DB: newTestDB(t), Clock: clk}, clk
}

func TestNewCode_Shape(t *testing.T) {
	for i := 0; i < 200; i++ {
		c, err := newCode()
		if err != nil {
			t.Fatalf("newCode: %v", err)
		}
		if !ValidCode(c) {
			t.Fatalf("bad code %q", c)
		}
	}
	for _, bad := range []string{"", "A12345", "ABC123", "ab1234", "AB12345", "AB12C4"} {
		if ValidCode(bad) {
			t.Fatalf("ValidCode(%q) = true", bad)
		}
	}
}

func TestNormalizeClientName(t *testing.T) {
	if got := normalizeClientName("  joão   SILVA "); got != "João Silva" {
		t.Fatalf("got %q", got)
	}
	if got := normalizeClientName("   "); got != "" {
		t.Fatalf("blank should stay blank, got %q", got)
	}
}

func TestGenerateCode(t *testing.T) {
	s, _ := newAccess(t)
	ctx := context.Background()

	ac, err := s.GenerateCode(ctx, GenerateInput{ClientName: "acme store", Days: 2, AllowedIP: " 1.2.3.4 "})
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	if !ValidCode(ac.Code) || ac.Hours != 48 || !ac.ExpiresAt.Equal(t0.Add(48*time.Hour)) {
		t.Fatalf("unexpected code: %+v", ac)
	}
	if ac.AllowedIP == nil || *ac.AllowedIP != "1.2.3.4" {
		t.Fatalf("allowed ip: %v", ac.AllowedIP)
	}
	if ac.Client == nil || ac.Client.Name != "Acme Store" {
		t.Fatalf("client: %+v", ac.Client)
	}

	// same client reused
	ac2, err := s.GenerateCode(ctx, GenerateInput{ClientName: "ACME  store", Days: 1})
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	if ac2.ClientID != ac.ClientID {
		t.Fatalf("expected the same client")
	}

	for _, in := range []GenerateInput{{ClientName: "", Days: 1}, {ClientName: "x", Days: 0}, {ClientName: "x", Days: MaxCodeDays + 1}} {
		if _, err := s.GenerateCode(ctx, in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("GenerateCode(%+v) err = %v", in, err)
		}
	}
}

func TestAuthorize_Expiry(t *testing.T) {
	s, clk := newAccess(t)
	ctx := context.Background()
	ac, _ := s.GenerateCode(ctx, GenerateInput{ClientName: "Acme", Days: 1})

	if _, err := s.Authorize(ctx, "", "1.1.1.1"); !errors.Is(err, ErrCodeRequired) {
		t.Fatalf("empty code: %v", err)
	}
	if _, err := s.Authorize(ctx, "ZZ0000", "1.1.1.1"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("unknown code: %v", err)
	}

	// lower-case input is accepted
	got, err := s.Authorize(ctx, " "+strings.ToLower(ac.Code)+" ", "1.1.1.1")
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if !got.Used || got.UsedAt == nil || !got.UsedAt.Equal(t0) {
		t.Fatalf("first use not recorded: %+v", got)
	}

	clk.Set(ac.ExpiresAt.Add(4 * time.Minute)) // within grace
	if _, err := s.Authorize(ctx, ac.Code, "1.1.1.1"); err != nil {
		t.Fatalf("within grace: %v", err)
	}
	clk.Set(ac.ExpiresAt.Add(ExpiryGrace + time.Second))
	if _, err := s.Authorize(ctx, ac.Code, "1.1.1.1"); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("after grace: %v", err)
	}
}

func TestAuthorize_IPRules(t *testing.T) {
	s, _ := newAccess(t)
	ctx := context.Background()

	allowed, _ := s.GenerateCode(ctx, GenerateInput{ClientName: "Acme", Days: 1, AllowedIP: "1.1.1.1"})
	if _, err := s.Authorize(ctx, allowed.Code, "2.2.2.2"); !errors.Is(err, ErrIPNotAllowed) {
		t.Fatalf("allowed ip mismatch: %v", err)
	}
	if _, err := s.Authorize(ctx, allowed.Code, "1.1.1.1"); err != nil {
		t.Fatalf("allowed ip: %v", err)
	}

	enforced, _ := s.GenerateCode(ctx, GenerateInput{ClientName: "Acme", Days: 1, EnforceIP: true})
	r, err := s.Redeem(ctx, enforced.Code, "3.3.3.3")
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if r.ClientName != "Acme" || r.ClientID != enforced.ClientID {
		t.Fatalf("redemption: %+v", r)
	}
	if _, err := s.Authorize(ctx, enforced.Code, "4.4.4.4"); !errors.Is(err, ErrIPNotAllowed) {
		t.Fatalf("bound ip mismatch: %v", err)
	}
	got, err := s.Authorize(ctx, enforced.Code, "3.3.3.3")
	if err != nil {
		t.Fatalf("bound ip: %v", err)
	}
	if got.BoundIP == nil || *got.BoundIP != "3.3.3.3" {
		t.Fatalf("bound ip not stored: %v", got.BoundIP)
	}

	// without enforcement nothing is bound
	open, _ := s.GenerateCode(ctx, GenerateInput{ClientName: "Acme", Days: 1})
	_, _ = s.Authorize(ctx, open.Code, "5.5.5.5")
	if _, err := s.Authorize(ctx, open.Code, "6.6.6.6"); err != nil {
		t.Fatalf("unbound code from new ip: %v", err)
	}
}

// bindAfterFirstRead makes a rival request bind code to rivalIP right after
// Authorize has read the code unbound, reproducing two first uses racing.
func bindAfterFirstRead(t *testing.T, db *gorm.DB, codeID, rivalIP string) {
	t.Helper()
	var once sync.Once
	err := db.Callback().Query().After("gorm:query").Register("test:rival_bind", func(tx *gorm.DB) {
		if tx.Statement.Table != "access_codes" {
			return
		}
		once.Do(func() {
			if err := db.Exec("UPDATE access_codes SET used = ?, bound_ip = ? WHERE id = ?", true, rivalIP, codeID).Error; err != nil {
				t.Errorf("rival bind: %v", err)
			}
		})
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
}

func TestAuthorize_RacingFirstUseFromAnotherIPIsRejected(t *testing.T) {
	s, _ := newAccess(t)
	ctx := context.Background()
	ac, err := s.GenerateCode(ctx, GenerateInput{ClientName: "Acme", Days: 1, EnforceIP: true})
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	bindAfterFirstRead(t, s.DB, ac.ID, "7.7.7.7")

	if _, err := s.Authorize(ctx, ac.Code, "8.8.8.8"); !errors.Is(err, ErrIPNotAllowed) {
		t.Fatalf("losing first use = %v; want ErrIPNotAllowed", err)
	}
	if _, err := s.Authorize(ctx, ac.Code, "7.7.7.7"); err != nil {
		t.Fatalf("winner ip: %v", err)
	}
}

func TestAuthorize_RacingFirstUseFromSameIPIsAdmitted(t *testing.T) {
	s, _ := newAccess(t)
	ctx := context.Background()
	ac, err := s.GenerateCode(ctx, GenerateInput{ClientName: "Acme", Days: 1, EnforceIP: true})
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	bindAfterFirstRead(t, s.DB, ac.ID, "7.7.7.7")

	got, err := s.Authorize(ctx, ac.Code, "7.7.7.7")
	if err != nil {
		t.Fatalf("same ip: %v", err)
	}
	if got.BoundIP == nil || *got.BoundIP != "7.7.7.7" {
		t.Fatalf("bound ip = %v", got.BoundIP)
	}
}

func TestCodesAndClientsListing(t *testing.T) {
	s, _ := newAccess(t)
	ctx := context.Background()

	items, total, err := s.ListCodes(ctx, 0, 10)
	if err != nil || total != 0 || len(items) != 0 {
		t.Fatalf("empty ListCodes: %v %d %d", err, total, len(items))
	}

	a, _ := s.GenerateCode(ctx, GenerateInput{ClientName: "Acme", Days: 1})
	_, _ = s.GenerateCode(ctx, GenerateInput{ClientName: "Beta", Days: 1})

	items, total, err = s.ListCodes(ctx, 0, 10)
	if err != nil || total != 2 || len(items) != 2 {
		t.Fatalf("ListCodes: %v %d %d", err, total, len(items))
	}
	clients, total, err := s.ListClients(ctx, 0, 0)
	if err != nil || total != 2 || len(clients) != 2 {
		t.Fatalf("ListClients: %v %d %d", err, total, len(clients))
	}

	if err := s.DeleteCode(ctx, a.ID); err != nil {
		t.Fatalf("DeleteCode: %v", err)
	}
	if err := s.DeleteCode(ctx, a.ID); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("second delete: %v", err)
	}

	st, err := s.AdminStats(ctx)
	if err != nil {
		t.Fatalf("AdminStats: %v", err)
	}
	if st.Clients != 2 || st.Codes != 1 || st.ActiveCodes != 1 || st.UsedCodes != 0 {
		t.Fatalf("stats: %+v", st)
	}
}

func TestClientStats(t *testing.T) {
	s, clk := newAccess(t)
	ctx := context.Background()
	ac, _ := s.GenerateCode(ctx, GenerateInput{ClientName: "Acme", Days: 1})

	r := newRecorder(s.DB, clk)
	if _, _, err := r.Record(ctx, recordInput("a1", ac.ClientID, 0, 30)); err != nil {
		t.Fatalf("Record: %v", err)
	}

	st, err := s.ClientStats(ctx, ac.ClientID, true)
	if err != nil {
		t.Fatalf("ClientStats: %v", err)
	}
	if st.Client.TotalLikesSent != 30 || len(st.RecentPlayers) != 1 || st.Verified == nil || st.Drift {
		t.Fatalf("stats: %+v", st)
	}

	// introduce drift in the cache
	if err := s.DB.Exec("UPDATE clients SET total_likes_sent = 999 WHERE id = ?", ac.ClientID).Error; err != nil {
		t.Fatalf("update: %v", err)
	}
	st, _ = s.ClientStats(ctx, ac.ClientID, true)
	if !st.Drift || st.Verified.TotalLikesSent != 30 {
		t.Fatalf("drift not detected: %+v", st)
	}

	st, _ = s.ClientStats(ctx, ac.ClientID, false)
	if st.Verified != nil {
		t.Fatalf("verify=false should not replay")
	}

	if _, err := s.ClientStats(ctx, "missing", false); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("missing client: %v", err)
	}
}
