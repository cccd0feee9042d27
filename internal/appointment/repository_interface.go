package appointment

import (
	"context"
	"time"

	"psicanalise/internal/provider"
	"psicanalise/internal/timeutil"
)

type Repository interface {
	// BookWithCredit inserts a scheduled appointment and consumes one session
	// credit in a single transaction serialized per provider.
	BookWithCredit(ctx context.Context, clientID, providerID int, sessionType provider.SessionType, start, end time.Time) (*Appointment, error)

	// Reschedule moves an active appointment to a new window under the same
	// per-provider lock, excluding the appointment itself from the overlap
	// check. No credit is consumed or refunded.
	Reschedule(ctx context.Context, appointmentID int, start, end time.Time) (*Appointment, error)

	GetByID(ctx context.Context, id int) (*Appointment, error)
	UpdateStatus(ctx context.Context, id int, status string) (*Appointment, error)
	ListByClient(ctx context.Context, clientID int) ([]Appointment, error)
	ListByProviderInRange(ctx context.Context, providerID int, from, to time.Time) ([]Appointment, error)

	// BlockingRanges satisfies availability.BookingLedger.
	BlockingRanges(ctx context.Context, providerID int, from, to time.Time) ([]timeutil.Range, error)
}
