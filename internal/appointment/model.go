package appointment

import (
	"errors"
	"time"

	"psicanalise/internal/provider"
)

const (
	StatusScheduled   = "scheduled"
	StatusCompleted   = "completed"
	StatusCancelled   = "cancelled"
	StatusRescheduled = "rescheduled"
)

// Blocking reports whether an appointment in this status still occupies its
// time range. Cancelled and completed appointments free the slot.
func Blocking(status string) bool {
	return status == StatusScheduled || status == StatusRescheduled
}

var (
	ErrSlotTaken       = errors.New("slot already taken")
	ErrNoCredits       = errors.New("no session credits available")
	ErrLeadTime        = errors.New("start violates minimum scheduling lead time")
	ErrTxTimeout       = errors.New("booking transaction timed out, outcome unknown")
	ErrNotFound        = errors.New("appointment not found")
	ErrForbidden       = errors.New("appointment belongs to another user")
	ErrNotBlocking     = errors.New("appointment is not active")
	ErrTooLateToCancel = errors.New("too late to cancel")
	ErrInvalidWindow   = errors.New("invalid appointment window")
)

type Appointment struct {
	ID          int                  `db:"id" json:"id"`
	ClientID    int                  `db:"client_id" json:"client_id"`
	ProviderID  int                  `db:"provider_id" json:"provider_id"`
	SessionType provider.SessionType `db:"session_type" json:"session_type"`
	Status      string               `db:"status" json:"status"`
	StartAt     time.Time            `db:"start_at" json:"start_at"`
	EndAt       time.Time            `db:"end_at" json:"end_at"`
	CreatedAt   time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time            `db:"updated_at" json:"updated_at"`
}

type BookRequest struct {
	ProviderID  int                  `json:"provider_id" binding:"required"`
	SessionType provider.SessionType `json:"session_type" binding:"required"`
	StartAt     time.Time            `json:"start_at" binding:"required"`
	EndAt       time.Time            `json:"end_at" binding:"required"`
}

type RescheduleRequest struct {
	StartAt time.Time `json:"start_at" binding:"required"`
	EndAt   time.Time `json:"end_at" binding:"required"`
}
