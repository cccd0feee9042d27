package availability

import (
	"time"

	"psicanalise/internal/provider"
)

// Rule is one weekly recurring availability window. Rules are replaced
// wholesale on save; there is no per-rule edit.
type Rule struct {
	ID          int                  `db:"id" json:"id"`
	ProviderID  int                  `db:"provider_id" json:"provider_id"`
	Weekday     int                  `db:"weekday" json:"weekday"`
	StartTime   string               `db:"start_time" json:"start_time"`
	EndTime     string               `db:"end_time" json:"end_time"`
	SessionType provider.SessionType `db:"session_type" json:"session_type"`
	Active      bool                 `db:"active" json:"active"`
}

// Block is a one-off unavailability window with absolute bounds. Blocks can
// span day boundaries, so they are always queried by range overlap.
type Block struct {
	ID         int       `db:"id" json:"id"`
	ProviderID int       `db:"provider_id" json:"provider_id"`
	StartAt    time.Time `db:"start_at" json:"start_at"`
	EndAt      time.Time `db:"end_at" json:"end_at"`
	Reason     string    `db:"reason" json:"reason,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Slot is a bookable candidate. Slots are computed on demand, never stored.
type Slot struct {
	Start       time.Time            `json:"start"`
	End         time.Time            `json:"end"`
	SessionType provider.SessionType `json:"session_type"`
}

type RuleInput struct {
	Weekday     int                  `json:"weekday" binding:"min=0,max=6"`
	StartTime   string               `json:"start_time" binding:"required"`
	EndTime     string               `json:"end_time" binding:"required"`
	SessionType provider.SessionType `json:"session_type" binding:"required"`
	Active      bool                 `json:"active"`
}

type ReplaceRulesRequest struct {
	Rules []RuleInput `json:"rules" binding:"dive"`
}

type CreateBlockRequest struct {
	StartAt time.Time `json:"start_at" binding:"required"`
	EndAt   time.Time `json:"end_at" binding:"required"`
	Reason  string    `json:"reason" binding:"max=255"`
}
