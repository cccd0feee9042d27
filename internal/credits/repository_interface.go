package credits

import (
	"context"

	"psicanalise/internal/provider"
)

type Repository interface {
	// AddCredits grants quantity credits unless orderID was already applied.
	// Returns the resulting balance and whether this call actually granted
	// anything (false on an idempotent replay).
	AddCredits(ctx context.Context, orderID string, clientID, providerID int, sessionType provider.SessionType, quantity int) (*Credit, bool, error)

	GetBalance(ctx context.Context, clientID, providerID int, sessionType provider.SessionType) (*Credit, error)
	ListBalances(ctx context.Context, clientID int) ([]Credit, error)
}
