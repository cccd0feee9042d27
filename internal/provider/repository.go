package provider

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrSettingsNotFound = errors.New("provider settings not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetSettings(ctx context.Context, providerID int) (*Settings, error) {
	query := `
		SELECT provider_id, timezone, video_duration_min, chat_duration_min, min_cancel_hours, updated_at
		FROM provider_settings
		WHERE provider_id = $1
	`

	var s Settings
	err := r.db.GetContext(ctx, &s, query, providerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, err
	}

	return &s, nil
}

func (r *repository) UpsertSettings(ctx context.Context, s *Settings) (*Settings, error) {
	query := `
		INSERT INTO provider_settings (provider_id, timezone, video_duration_min, chat_duration_min, min_cancel_hours)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (provider_id) DO UPDATE
		SET timezone = EXCLUDED.timezone,
		    video_duration_min = EXCLUDED.video_duration_min,
		    chat_duration_min = EXCLUDED.chat_duration_min,
		    min_cancel_hours = EXCLUDED.min_cancel_hours,
		    updated_at = NOW()
		RETURNING provider_id, timezone, video_duration_min, chat_duration_min, min_cancel_hours, updated_at
	`

	var out Settings
	err := r.db.QueryRowxContext(ctx, query,
		s.ProviderID, s.Timezone, s.VideoDurationMin, s.ChatDurationMin, s.MinCancelHours,
	).StructScan(&out)
	if err != nil {
		return nil, err
	}

	return &out, nil
}
