package availability

import (
	"context"
	"errors"
	"time"

	"psicanalise/internal/provider"

	"github.com/jmoiron/sqlx"
)

var ErrBlockNotFound = errors.New("availability block not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// ReplaceRules swaps the provider's whole rule set in one transaction:
// delete everything, insert the new set. No diffing.
func (r *repository) ReplaceRules(ctx context.Context, providerID int, rules []Rule) ([]Rule, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM availability_rules WHERE provider_id = $1`, providerID); err != nil {
		return nil, err
	}

	insertQuery := `
		INSERT INTO availability_rules (provider_id, weekday, start_time, end_time, session_type, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, provider_id, weekday, start_time, end_time, session_type, active
	`

	out := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		var saved Rule
		err := tx.QueryRowxContext(ctx, insertQuery,
			providerID, rule.Weekday, rule.StartTime, rule.EndTime, rule.SessionType, rule.Active,
		).StructScan(&saved)
		if err != nil {
			return nil, err
		}
		out = append(out, saved)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *repository) ListRules(ctx context.Context, providerID int) ([]Rule, error) {
	query := `
		SELECT id, provider_id, weekday, start_time, end_time, session_type, active
		FROM availability_rules
		WHERE provider_id = $1
		ORDER BY weekday, start_time
	`

	rules := []Rule{}
	if err := r.db.SelectContext(ctx, &rules, query, providerID); err != nil {
		return nil, err
	}

	return rules, nil
}

func (r *repository) ListActiveRules(ctx context.Context, providerID, weekday int, sessionType provider.SessionType) ([]Rule, error) {
	query := `
		SELECT id, provider_id, weekday, start_time, end_time, session_type, active
		FROM availability_rules
		WHERE provider_id = $1 AND weekday = $2 AND session_type = $3 AND active = true
		ORDER BY start_time
	`

	rules := []Rule{}
	if err := r.db.SelectContext(ctx, &rules, query, providerID, weekday, sessionType); err != nil {
		return nil, err
	}

	return rules, nil
}

func (r *repository) CreateBlock(ctx context.Context, b *Block) (*Block, error) {
	query := `
		INSERT INTO availability_blocks (provider_id, start_at, end_at, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING id, provider_id, start_at, end_at, reason, created_at
	`

	var saved Block
	err := r.db.QueryRowxContext(ctx, query, b.ProviderID, b.StartAt, b.EndAt, b.Reason).StructScan(&saved)
	if err != nil {
		return nil, err
	}

	return &saved, nil
}

func (r *repository) DeleteBlock(ctx context.Context, providerID, blockID int) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM availability_blocks WHERE id = $1 AND provider_id = $2`,
		blockID, providerID,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrBlockNotFound
	}

	return nil
}

func (r *repository) ListBlocks(ctx context.Context, providerID int) ([]Block, error) {
	query := `
		SELECT id, provider_id, start_at, end_at, reason, created_at
		FROM availability_blocks
		WHERE provider_id = $1
		ORDER BY start_at
	`

	blocks := []Block{}
	if err := r.db.SelectContext(ctx, &blocks, query, providerID); err != nil {
		return nil, err
	}

	return blocks, nil
}

// ListBlocksInRange matches by interval overlap, not containment, so a block
// spanning midnight still shadows both days it touches.
func (r *repository) ListBlocksInRange(ctx context.Context, providerID int, from, to time.Time) ([]Block, error) {
	query := `
		SELECT id, provider_id, start_at, end_at, reason, created_at
		FROM availability_blocks
		WHERE provider_id = $1 AND start_at < $3 AND end_at > $2
		ORDER BY start_at
	`

	blocks := []Block{}
	if err := r.db.SelectContext(ctx, &blocks, query, providerID, from, to); err != nil {
		return nil, err
	}

	return blocks, nil
}
