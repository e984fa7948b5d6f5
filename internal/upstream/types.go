package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultRegion is used when the provider omits the player's region.
const DefaultRegion = "BR"

// LikeRequest is one request to send likes to a player.
type LikeRequest struct {
	PlayerID string
	Quantity int
}

// ProviderResponse is a structurally valid reply from the likes provider.
type ProviderResponse struct {
	LikesBefore    int64
	LikesAfter     int64
	LikesReported  int64
	PlayerNickname string
	PlayerRegion   string
	PlayerLevel    int64
	PlayerExp      int64
}

// PlayerInfo is the authoritative nickname and region of a player.
type PlayerInfo struct {
	Nickname string
	Region   string
}

// wireResponse mirrors the provider's JSON. The like counters must be JSON
// numbers; the remaining numeric fields are read leniently.
type wireResponse struct {
	LikesBefore    *float64 `json:"Likes_Antes"`
	LikesAfter     *float64 `json:"Likes_Depois"`
	LikesReported  flexInt  `json:"Likes_Enviados"`
	PlayerNickname string   `json:"PlayerNickname"`
	PlayerRegion   string   `json:"PlayerRegion"`
	PlayerLevel    flexInt  `json:"PlayerLevel"`
	PlayerExp      flexInt  `json:"PlayerEXP"`
}

// DecodeProviderResponse parses body and checks that both like counters
// are present and numeric.
func DecodeProviderResponse(body []byte) (*ProviderResponse, error) {
	var w wireResponse
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if w.LikesBefore == nil || w.LikesAfter == nil {
		return nil, fmt.Errorf("%w: missing like counters", ErrInvalidResponse)
	}
	if !finite(*w.LikesBefore) || !finite(*w.LikesAfter) {
		return nil, fmt.Errorf("%w: non-finite like counters", ErrInvalidResponse)
	}
	return &ProviderResponse{
		LikesBefore:    int64(*w.LikesBefore),
		LikesAfter:     int64(*w.LikesAfter),
		LikesReported:  int64(w.LikesReported),
		PlayerNickname: strings.TrimSpace(w.PlayerNickname),
		PlayerRegion:   strings.TrimSpace(w.PlayerRegion),
		PlayerLevel:    int64(w.PlayerLevel),
		PlayerExp:      int64(w.PlayerExp),
	}, nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// flexInt accepts a JSON number or numeric string; anything else reads as 0.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if v, err := strconv.ParseFloat(string(b), 64); err == nil && finite(v) {
		*f = flexInt(v)
		return nil
	}
	*f = 0
	return nil
}

var placeholderRE = regexp.MustCompile(`(?i)^player_\d+$`)

// IsPlaceholderNickname reports whether name is empty or a generated
// stand-in rather than a real nickname.
func IsPlaceholderNickname(name string) bool {
	n := strings.TrimSpace(name)
	if n == "" || placeholderRE.MatchString(n) {
		return true
	}
	switch strings.ToLower(n) {
	case "desconhecido", "unknown", "null", "undefined":
		return true
	}
	return false
}

// NormalizeRegion upper-cases a region code, defaulting to DefaultRegion.
func NormalizeRegion(r string) string {
	r = strings.TrimSpace(r)
	if r == "" {
		return DefaultRegion
	}
	// Casers are stateful, so one is built per call.
	return cases.Upper(language.Und).String(r)
}
