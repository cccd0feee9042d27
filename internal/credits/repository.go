package credits

import (
	"context"
	"database/sql"
	"errors"

	"psicanalise/internal/provider"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// AddCredits is idempotent on orderID. The credit_orders insert with ON
// CONFLICT DO NOTHING decides in one statement whether this order was seen
// before; only a fresh order touches the balance. Both statements share the
// transaction, so a crash between them cannot grant twice or lose a grant.
func (r *repository) AddCredits(ctx context.Context, orderID string, clientID, providerID int, sessionType provider.SessionType, quantity int) (*Credit, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO credit_orders (order_id, client_id, provider_id, session_type, quantity)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (order_id) DO NOTHING
	`, orderID, clientID, providerID, sessionType, quantity)
	if err != nil {
		return nil, false, err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	if inserted == 0 {
		// replay: report the current balance, grant nothing
		if err := tx.Commit(); err != nil {
			return nil, false, err
		}
		balance, err := r.GetBalance(ctx, clientID, providerID, sessionType)
		if err != nil {
			return nil, false, err
		}
		return balance, false, nil
	}

	var credit Credit
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO session_credits (client_id, provider_id, session_type, total, used)
		VALUES ($1, $2, $3, $4, 0)
		ON CONFLICT (client_id, provider_id, session_type) DO UPDATE
		SET total = session_credits.total + EXCLUDED.total,
		    updated_at = NOW()
		RETURNING client_id, provider_id, session_type, total, used, updated_at
	`, clientID, providerID, sessionType, quantity).StructScan(&credit)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}

	return &credit, true, nil
}

// GetBalance returns a zero-valued Credit when the client has never bought
// this session type; a missing row just means zero available.
func (r *repository) GetBalance(ctx context.Context, clientID, providerID int, sessionType provider.SessionType) (*Credit, error) {
	var credit Credit
	err := r.db.GetContext(ctx, &credit, `
		SELECT client_id, provider_id, session_type, total, used, updated_at
		FROM session_credits
		WHERE client_id = $1 AND provider_id = $2 AND session_type = $3
	`, clientID, providerID, sessionType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &Credit{ClientID: clientID, ProviderID: providerID, SessionType: sessionType}, nil
		}
		return nil, err
	}
	return &credit, nil
}

func (r *repository) ListBalances(ctx context.Context, clientID int) ([]Credit, error) {
	balances := []Credit{}
	err := r.db.SelectContext(ctx, &balances, `
		SELECT client_id, provider_id, session_type, total, used, updated_at
		FROM session_credits
		WHERE client_id = $1
		ORDER BY provider_id, session_type
	`, clientID)
	if err != nil {
		return nil, err
	}
	return balances, nil
}
