package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"psicanalise/internal/auth"
	"psicanalise/internal/logger"
	"psicanalise/internal/metrics"
	"psicanalise/internal/provider"
	"psicanalise/internal/user"
)

// Mailer sends transactional mail. Best effort only: a mail failure never
// fails the booking.
type Mailer interface {
	SendBookingConfirmation(ctx context.Context, email, name, sessionType string, when time.Time) error
	SendCancellation(ctx context.Context, email, name, sessionType string, when time.Time) error
}

type Service interface {
	Book(ctx context.Context, clientID int, req BookRequest) (*Appointment, error)
	Cancel(ctx context.Context, userID int, role string, appointmentID int) (*Appointment, error)
	Complete(ctx context.Context, providerID, appointmentID int) (*Appointment, error)
	Reschedule(ctx context.Context, userID int, role string, appointmentID int, req RescheduleRequest) (*Appointment, error)
	ListMine(ctx context.Context, clientID int) ([]Appointment, error)
	ListCalendar(ctx context.Context, providerID int, from, to time.Time) ([]Appointment, error)
}

type service struct {
	repo     Repository
	settings provider.Repository
	users    user.Repository
	mailer   Mailer

	leadTime time.Duration
	timeout  time.Duration

	nowFn func() time.Time
}

func NewService(repo Repository, settings provider.Repository, users user.Repository, mailer Mailer, minLeadHours int, bookingTimeout time.Duration) Service {
	return &service{
		repo:     repo,
		settings: settings,
		users:    users,
		mailer:   mailer,
		leadTime: time.Duration(minLeadHours) * time.Hour,
		timeout:  bookingTimeout,
		nowFn:    time.Now,
	}
}

// Book validates the requested window, then hands the hot part to the
// repository's single transaction. The lead-time check here is a cheap
// pre-filter; the transaction is what actually decides the race.
func (s *service) Book(ctx context.Context, clientID int, req BookRequest) (*Appointment, error) {
	settings, err := s.settings.GetSettings(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}

	duration, ok := settings.SessionDuration(req.SessionType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown session type %q", ErrInvalidWindow, req.SessionType)
	}
	if !req.EndAt.Equal(req.StartAt.Add(duration)) {
		return nil, fmt.Errorf("%w: %s sessions last %d minutes", ErrInvalidWindow, req.SessionType, int(duration.Minutes()))
	}

	if req.StartAt.Before(s.nowFn().Add(s.leadTime)) {
		metrics.RecordBooking("lead_time")
		return nil, ErrLeadTime
	}

	txCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	appt, err := s.repo.BookWithCredit(txCtx, clientID, req.ProviderID, req.SessionType, req.StartAt, req.EndAt)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			// outcome unknown: the commit may or may not have landed. The
			// caller must re-query before retrying; we never retry here.
			metrics.RecordBooking("timeout")
			return nil, ErrTxTimeout
		case errors.Is(err, ErrSlotTaken):
			metrics.RecordBooking("slot_taken")
			return nil, err
		case errors.Is(err, ErrNoCredits):
			metrics.RecordBooking("no_credits")
			return nil, err
		default:
			metrics.RecordBooking("error")
			return nil, err
		}
	}

	metrics.RecordBooking("booked")
	metrics.CreditsConsumedTotal.WithLabelValues(string(req.SessionType)).Inc()

	s.notifyConfirmation(appt)

	return appt, nil
}

func (s *service) notifyConfirmation(appt *Appointment) {
	if s.mailer == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := s.users.FindByID(ctx, appt.ClientID)
		if err != nil {
			logger.Warn("Confirmation email skipped, client lookup failed", "appointment_id", appt.ID, "error", err)
			return
		}

		if err := s.mailer.SendBookingConfirmation(ctx, client.Email, client.Name, string(appt.SessionType), appt.StartAt); err != nil {
			logger.Warn("Confirmation email failed", "appointment_id", appt.ID, "error", err)
		}
	}()
}

// Cancel frees the slot. Clients are held to the provider's minimum cancel
// notice; the provider can cancel any time.
func (s *service) Cancel(ctx context.Context, userID int, role string, appointmentID int) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	isProvider := role == auth.RoleProvider && appt.ProviderID == userID
	isOwner := appt.ClientID == userID
	if !isProvider && !isOwner {
		return nil, ErrForbidden
	}

	if !Blocking(appt.Status) {
		return nil, ErrNotBlocking
	}

	if !isProvider {
		settings, err := s.settings.GetSettings(ctx, appt.ProviderID)
		if err != nil {
			return nil, err
		}
		notice := time.Duration(settings.MinCancelHours) * time.Hour
		if s.nowFn().Add(notice).After(appt.StartAt) {
			return nil, fmt.Errorf("%w: needs %d hours notice", ErrTooLateToCancel, settings.MinCancelHours)
		}
	}

	cancelled, err := s.repo.UpdateStatus(ctx, appointmentID, StatusCancelled)
	if err != nil {
		return nil, err
	}

	metrics.AppointmentCancellationsTotal.Inc()

	s.notifyCancellation(cancelled)

	return cancelled, nil
}

func (s *service) notifyCancellation(appt *Appointment) {
	if s.mailer == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := s.users.FindByID(ctx, appt.ClientID)
		if err != nil {
			logger.Warn("Cancellation email skipped, client lookup failed", "appointment_id", appt.ID, "error", err)
			return
		}

		if err := s.mailer.SendCancellation(ctx, client.Email, client.Name, string(appt.SessionType), appt.StartAt); err != nil {
			logger.Warn("Cancellation email failed", "appointment_id", appt.ID, "error", err)
		}
	}()
}

func (s *service) Complete(ctx context.Context, providerID, appointmentID int) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.ProviderID != providerID {
		return nil, ErrForbidden
	}
	if !Blocking(appt.Status) {
		return nil, ErrNotBlocking
	}

	return s.repo.UpdateStatus(ctx, appointmentID, StatusCompleted)
}

// Reschedule moves an appointment without touching credits.
func (s *service) Reschedule(ctx context.Context, userID int, role string, appointmentID int, req RescheduleRequest) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	isProvider := role == auth.RoleProvider && appt.ProviderID == userID
	isOwner := appt.ClientID == userID
	if !isProvider && !isOwner {
		return nil, ErrForbidden
	}
	if !Blocking(appt.Status) {
		return nil, ErrNotBlocking
	}

	settings, err := s.settings.GetSettings(ctx, appt.ProviderID)
	if err != nil {
		return nil, err
	}
	duration, ok := settings.SessionDuration(appt.SessionType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown session type %q", ErrInvalidWindow, appt.SessionType)
	}
	if !req.EndAt.Equal(req.StartAt.Add(duration)) {
		return nil, fmt.Errorf("%w: %s sessions last %d minutes", ErrInvalidWindow, appt.SessionType, int(duration.Minutes()))
	}

	if req.StartAt.Before(s.nowFn().Add(s.leadTime)) {
		return nil, ErrLeadTime
	}

	txCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	moved, err := s.repo.Reschedule(txCtx, appointmentID, req.StartAt, req.EndAt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTxTimeout
		}
		return nil, err
	}

	return moved, nil
}

func (s *service) ListMine(ctx context.Context, clientID int) ([]Appointment, error) {
	return s.repo.ListByClient(ctx, clientID)
}

func (s *service) ListCalendar(ctx context.Context, providerID int, from, to time.Time) ([]Appointment, error) {
	return s.repo.ListByProviderInRange(ctx, providerID, from, to)
}
