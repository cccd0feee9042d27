package credits

import (
	"time"

	"psicanalise/internal/provider"
)

// Credit is one (client, provider, session type) balance. total only grows
// via AddCredits; used only grows via the booking transaction.
type Credit struct {
	ClientID    int                  `db:"client_id" json:"client_id"`
	ProviderID  int                  `db:"provider_id" json:"provider_id"`
	SessionType provider.SessionType `db:"session_type" json:"session_type"`
	Total       int                  `db:"total" json:"total"`
	Used        int                  `db:"used" json:"used"`
	UpdatedAt   time.Time            `db:"updated_at" json:"updated_at"`
}

// Available clamps at zero. used can never legally exceed total, but a
// corrupted row must not surface a negative balance.
func (c Credit) Available() int {
	if c.Used >= c.Total {
		return 0
	}
	return c.Total - c.Used
}

// AddCreditsRequest is the payment-completion webhook payload. OrderID is the
// idempotency key: replays of the same order grant nothing.
type AddCreditsRequest struct {
	OrderID     string               `json:"order_id" binding:"required,max=64"`
	ClientID    int                  `json:"client_id" binding:"required"`
	ProviderID  int                  `json:"provider_id" binding:"required"`
	SessionType provider.SessionType `json:"session_type" binding:"required"`
	Quantity    int                  `json:"quantity" binding:"required,min=1,max=100"`
}

type BalanceResponse struct {
	ProviderID  int                  `json:"provider_id"`
	SessionType provider.SessionType `json:"session_type"`
	Available   int                  `json:"available"`
}
