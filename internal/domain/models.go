// Package domain defines the persistence models for like requests, clients
// and access codes. These types are mapped with GORM and shared across the
// repository, service and HTTP layers.
package domain

import "time"

// HistoryEntry is the durable record of one completed like request.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - AttemptID: id of the orchestration run that produced the entry; unique,
//     so a run can never be recorded twice.
//   - LikesSentActual: likes actually granted (after - before), never negative.
//   - ClientID: owning client when the request was made with an access code.
//   - OriginIP: caller address; kept for auditing and never serialized.
//   - CreatedAt: assigned by the recorder, monotonic within a process.
type HistoryEntry struct {
	ID                string    `json:"id"                gorm:"type:char(36);primaryKey"`
	AttemptID         string    `json:"-"                 gorm:"type:char(36);not null;uniqueIndex:ux_history_attempt"`
	PlayerID          string    `json:"playerId"          gorm:"type:varchar(16);not null;index:idx_history_player"`
	PlayerNickname    string    `json:"playerNickname"    gorm:"type:varchar(64);not null"`
	PlayerRegion      string    `json:"playerRegion"      gorm:"type:varchar(8);not null;default:'BR'"`
	QuantityRequested int       `json:"quantityRequested" gorm:"not null"`
	LikesBefore       int64     `json:"likesBefore"       gorm:"not null"`
	LikesAfter        int64     `json:"likesAfter"        gorm:"not null"`
	LikesReported     int64     `json:"likesReported"     gorm:"not null;default:0"`
	LikesSentActual   int64     `json:"likesSentActual"   gorm:"not null;default:0;check:likes_sent_actual >= 0"`
	PlayerLevel       int64     `json:"playerLevel"       gorm:"not null;default:0"`
	PlayerExp         int64     `json:"playerExp"         gorm:"not null;default:0"`
	Outcome           Outcome   `json:"outcome"           gorm:"type:varchar(16);not null;index"`
	ClientID          *string   `json:"clientId,omitempty" gorm:"type:char(36);index"`
	OriginIP          string    `json:"-"                 gorm:"type:varchar(64)"`
	CreatedAt         time.Time `json:"createdAt"         gorm:"not null;index:idx_history_created"`
}

// TableName returns the database table name for HistoryEntry.
func (HistoryEntry) TableName() string { return "history_entries" }

// Client is a customer identified by an access code. Its counters are a
// cache over history_entries and client_player_totals.
type Client struct {
	ID                 string     `json:"id"                 gorm:"type:char(36);primaryKey"`
	Name               string     `json:"name"               gorm:"type:varchar(100);not null;uniqueIndex:ux_client_name"`
	Email              string     `json:"email,omitempty"    gorm:"type:varchar(255)"`
	Phone              string     `json:"phone,omitempty"    gorm:"type:varchar(32)"`
	TotalLikesSent     int64      `json:"totalLikesSent"     gorm:"not null;default:0"`
	UniquePlayersCount int64      `json:"uniquePlayersCount" gorm:"not null;default:0"`
	LastActivityAt     *time.Time `json:"lastActivityAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// TableName returns the database table name for Client.
func (Client) TableName() string { return "clients" }

// ClientPlayerTotal accumulates likes a client sent to one player.
// (client_id, player_id) is unique.
type ClientPlayerTotal struct {
	ID             string    `json:"id"             gorm:"type:char(36);primaryKey"`
	ClientID       string    `json:"clientId"       gorm:"type:char(36);not null;uniqueIndex:ux_client_player,priority:1"`
	PlayerID       string    `json:"playerId"       gorm:"type:varchar(16);not null;uniqueIndex:ux_client_player,priority:2"`
	PlayerNickname string    `json:"playerNickname" gorm:"type:varchar(64);not null"`
	PlayerRegion   string    `json:"playerRegion"   gorm:"type:varchar(8);not null;default:'BR'"`
	TotalSent      int64     `json:"totalSent"      gorm:"not null;default:0"`
	LastSentAt     time.Time `json:"lastSentAt"     gorm:"not null;index"`
	CreatedAt      time.Time `json:"createdAt"`

	// Client is the owner. Totals are cascade-deleted with it.
	Client *Client `json:"-" gorm:"foreignKey:ClientID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ClientPlayerTotal.
func (ClientPlayerTotal) TableName() string { return "client_player_totals" }

// AccessCode grants a client time-limited use of the like endpoint.
//
// Fields:
//   - Code: two letters followed by four digits, unique.
//   - AllowedIP: when set, only this address may use the code.
//   - BoundIP: address bound on first redemption when EnforceIP is set.
type AccessCode struct {
	ID        string     `json:"id"                  gorm:"type:char(36);primaryKey"`
	Code      string     `json:"code"                gorm:"type:varchar(16);not null;uniqueIndex:ux_access_code"`
	ClientID  string     `json:"clientId"            gorm:"type:char(36);not null;index"`
	Hours     int        `json:"hours"               gorm:"not null;default:24"`
	Used      bool       `json:"used"                gorm:"not null;default:false"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	ExpiresAt time.Time  `json:"expiresAt"           gorm:"not null;index"`
	AllowedIP *string    `json:"allowedIp,omitempty" gorm:"type:varchar(64)"`
	BoundIP   *string    `json:"boundIp,omitempty"   gorm:"type:varchar(64)"`
	EnforceIP bool       `json:"enforceIp"           gorm:"not null;default:false"`
	CreatedAt time.Time  `json:"createdAt"`

	Client *Client `json:"client,omitempty" gorm:"foreignKey:ClientID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for AccessCode.
func (AccessCode) TableName() string { return "access_codes" }
