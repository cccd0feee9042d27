package appointment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"psicanalise/internal/provider"
	"psicanalise/internal/timeutil"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// exclusion_violation: the gist EXCLUDE constraint on appointments fired.
const pqExclusionViolation = "23P01"

const appointmentColumns = "id, client_id, provider_id, session_type, status, start_at, end_at, created_at, updated_at"

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// BookWithCredit is the whole booking in one transaction. Ordering matters:
//
//  1. pg_advisory_xact_lock serializes all bookings for one provider, so the
//     overlap check and the insert cannot interleave with a rival booking.
//  2. The credit decrement's "used < total" guard makes it fail cleanly when
//     the client has nothing left.
//  3. The EXCLUDE constraint on appointments backs the advisory lock: even a
//     path that skips the lock cannot persist an overlap.
//
// Rollback undoes the appointment and the credit together, so a client is
// never charged for a booking that did not happen.
func (r *repository) BookWithCredit(ctx context.Context, clientID, providerID int, sessionType provider.SessionType, start, end time.Time) (*Appointment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtext('appointments'), $1)`, providerID); err != nil {
		return nil, err
	}

	var taken bool
	err = tx.GetContext(ctx, &taken, `
		SELECT EXISTS(
			SELECT 1 FROM appointments
			WHERE provider_id = $1
			  AND status IN ('scheduled', 'rescheduled')
			  AND start_at < $3 AND end_at > $2
		)
	`, providerID, start, end)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlotTaken
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE session_credits
		SET used = used + 1, updated_at = NOW()
		WHERE client_id = $1 AND provider_id = $2 AND session_type = $3 AND used < total
	`, clientID, providerID, sessionType)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNoCredits
	}

	var appt Appointment
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO appointments (client_id, provider_id, session_type, status, start_at, end_at)
		VALUES ($1, $2, $3, 'scheduled', $4, $5)
		RETURNING `+appointmentColumns+`
	`, clientID, providerID, sessionType, start, end).StructScan(&appt)
	if err != nil {
		if isExclusionViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &appt, nil
}

func (r *repository) Reschedule(ctx context.Context, appointmentID int, start, end time.Time) (*Appointment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var current Appointment
	err = tx.GetContext(ctx, &current,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, appointmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !Blocking(current.Status) {
		return nil, ErrNotBlocking
	}

	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtext('appointments'), $1)`, current.ProviderID); err != nil {
		return nil, err
	}

	var taken bool
	err = tx.GetContext(ctx, &taken, `
		SELECT EXISTS(
			SELECT 1 FROM appointments
			WHERE provider_id = $1
			  AND id <> $2
			  AND status IN ('scheduled', 'rescheduled')
			  AND start_at < $4 AND end_at > $3
		)
	`, current.ProviderID, appointmentID, start, end)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlotTaken
	}

	var moved Appointment
	err = tx.QueryRowxContext(ctx, `
		UPDATE appointments
		SET start_at = $2, end_at = $3, status = 'rescheduled', updated_at = NOW()
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, appointmentID, start, end).StructScan(&moved)
	if err != nil {
		if isExclusionViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &moved, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Appointment, error) {
	var appt Appointment
	err := r.db.GetContext(ctx, &appt,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &appt, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int, status string) (*Appointment, error) {
	var appt Appointment
	err := r.db.QueryRowxContext(ctx, `
		UPDATE appointments
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, id, status).StructScan(&appt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &appt, nil
}

func (r *repository) ListByClient(ctx context.Context, clientID int) ([]Appointment, error) {
	appts := []Appointment{}
	err := r.db.SelectContext(ctx, &appts, `
		SELECT `+appointmentColumns+` FROM appointments
		WHERE client_id = $1
		ORDER BY start_at DESC
	`, clientID)
	if err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *repository) ListByProviderInRange(ctx context.Context, providerID int, from, to time.Time) ([]Appointment, error) {
	appts := []Appointment{}
	err := r.db.SelectContext(ctx, &appts, `
		SELECT `+appointmentColumns+` FROM appointments
		WHERE provider_id = $1 AND start_at < $3 AND end_at > $2
		ORDER BY start_at
	`, providerID, from, to)
	if err != nil {
		return nil, err
	}
	return appts, nil
}

// BlockingRanges returns only the windows of appointments that still occupy
// their slot, matched by range overlap.
func (r *repository) BlockingRanges(ctx context.Context, providerID int, from, to time.Time) ([]timeutil.Range, error) {
	rows := []struct {
		StartAt time.Time `db:"start_at"`
		EndAt   time.Time `db:"end_at"`
	}{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT start_at, end_at FROM appointments
		WHERE provider_id = $1
		  AND status IN ('scheduled', 'rescheduled')
		  AND start_at < $3 AND end_at > $2
		ORDER BY start_at
	`, providerID, from, to)
	if err != nil {
		return nil, err
	}

	ranges := make([]timeutil.Range, 0, len(rows))
	for _, row := range rows {
		ranges = append(ranges, timeutil.Range{Start: row.StartAt, End: row.EndAt})
	}
	return ranges, nil
}

func isExclusionViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqExclusionViolation
}
