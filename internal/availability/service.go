package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"psicanalise/internal/metrics"
	"psicanalise/internal/provider"
	"psicanalise/internal/timeutil"
)

var (
	ErrInvalidSessionType = errors.New("invalid session type")
	ErrInvalidRule        = errors.New("invalid availability rule")
	ErrInvalidBlock       = errors.New("invalid availability block")
)

// BookingLedger reports the provider's blocking appointment windows inside a
// range. Satisfied by the appointment repository; declared here to keep the
// packages decoupled.
type BookingLedger interface {
	BlockingRanges(ctx context.Context, providerID int, from, to time.Time) ([]timeutil.Range, error)
}

type Service interface {
	GetSlots(ctx context.Context, providerID int, day string, sessionType provider.SessionType) ([]Slot, error)
	ReplaceRules(ctx context.Context, providerID int, inputs []RuleInput) ([]Rule, error)
	ListRules(ctx context.Context, providerID int) ([]Rule, error)
	CreateBlock(ctx context.Context, providerID int, req CreateBlockRequest) (*Block, error)
	DeleteBlock(ctx context.Context, providerID, blockID int) error
	ListBlocks(ctx context.Context, providerID int) ([]Block, error)
}

type service struct {
	repo     Repository
	settings provider.Repository
	ledger   BookingLedger

	step     time.Duration
	leadTime time.Duration

	// nowFn is re-evaluated on every GetSlots call so the lead-time horizon
	// never goes stale. Overridden in tests.
	nowFn func() time.Time
}

func NewService(repo Repository, settings provider.Repository, ledger BookingLedger, stepMinutes, minLeadHours int) Service {
	return &service{
		repo:     repo,
		settings: settings,
		ledger:   ledger,
		step:     time.Duration(stepMinutes) * time.Minute,
		leadTime: time.Duration(minLeadHours) * time.Hour,
		nowFn:    time.Now,
	}
}

// GetSlots computes the bookable slots for one provider, one calendar day and
// one session type. No rules for that day is an empty result, not an error.
func (s *service) GetSlots(ctx context.Context, providerID int, day string, sessionType provider.SessionType) ([]Slot, error) {
	if !provider.ValidSessionType(sessionType) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSessionType, sessionType)
	}

	d, err := timeutil.ParseDay(day)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.GetSettings(ctx, providerID)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		return nil, fmt.Errorf("provider %d has invalid timezone %q: %w", providerID, settings.Timezone, err)
	}

	duration, ok := settings.SessionDuration(sessionType)
	if !ok || duration <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSessionType, sessionType)
	}

	dayStart, dayEnd := timeutil.DayBounds(d, loc)
	weekday := int(dayStart.Weekday())

	rules, err := s.repo.ListActiveRules(ctx, providerID, weekday, sessionType)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return []Slot{}, nil
	}

	blocks, err := s.repo.ListBlocksInRange(ctx, providerID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	booked, err := s.ledger.BlockingRanges(ctx, providerID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	earliest := s.nowFn().Add(s.leadTime)
	slots := generateSlots(rules, d, loc, duration, sessionType, blocks, booked, earliest, s.step)

	metrics.SlotGenerationDuration.Observe(time.Since(started).Seconds())
	metrics.SlotsGenerated.Observe(float64(len(slots)))

	return slots, nil
}

// generateSlots walks each rule window with a fixed candidate step. A
// candidate survives only if it fits entirely inside its own window, starts at
// or after the lead-time horizon and touches no block or booked range.
// Windows are never merged: adjacent rules do not combine into a longer one.
func generateSlots(rules []Rule, day time.Time, loc *time.Location, duration time.Duration, sessionType provider.SessionType, blocks []Block, booked []timeutil.Range, earliest time.Time, step time.Duration) []Slot {
	seen := make(map[int64]struct{})
	slots := []Slot{}

	for _, rule := range rules {
		startTod, err := timeutil.ParseTimeOfDay(rule.StartTime)
		if err != nil {
			continue
		}
		endTod, err := timeutil.ParseTimeOfDay(rule.EndTime)
		if err != nil {
			continue
		}

		windowStart := timeutil.At(day, startTod, loc)
		windowEnd := timeutil.At(day, endTod, loc)

		for start := windowStart; ; start = start.Add(step) {
			end := start.Add(duration)
			if end.After(windowEnd) {
				break
			}
			if start.Before(earliest) {
				continue
			}
			if collides(start, end, blocks, booked) {
				continue
			}
			if _, dup := seen[start.Unix()]; dup {
				continue
			}
			seen[start.Unix()] = struct{}{}
			slots = append(slots, Slot{Start: start, End: end, SessionType: sessionType})
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
	return slots
}

func collides(start, end time.Time, blocks []Block, booked []timeutil.Range) bool {
	for _, b := range blocks {
		if timeutil.Overlaps(start, end, b.StartAt, b.EndAt) {
			return true
		}
	}
	for _, r := range booked {
		if r.Overlaps(start, end) {
			return true
		}
	}
	return false
}

func (s *service) ReplaceRules(ctx context.Context, providerID int, inputs []RuleInput) ([]Rule, error) {
	rules := make([]Rule, 0, len(inputs))
	for i, in := range inputs {
		if !provider.ValidSessionType(in.SessionType) {
			return nil, fmt.Errorf("%w: rule %d: unknown session type %q", ErrInvalidRule, i, in.SessionType)
		}

		startTod, err := timeutil.ParseTimeOfDay(in.StartTime)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %d: %v", ErrInvalidRule, i, err)
		}
		endTod, err := timeutil.ParseTimeOfDay(in.EndTime)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %d: %v", ErrInvalidRule, i, err)
		}
		if endTod.Minutes() < startTod.Minutes() {
			return nil, fmt.Errorf("%w: rule %d: end before start", ErrInvalidRule, i)
		}

		rules = append(rules, Rule{
			ProviderID:  providerID,
			Weekday:     in.Weekday,
			StartTime:   startTod.String(),
			EndTime:     endTod.String(),
			SessionType: in.SessionType,
			Active:      in.Active,
		})
	}

	return s.repo.ReplaceRules(ctx, providerID, rules)
}

func (s *service) ListRules(ctx context.Context, providerID int) ([]Rule, error) {
	return s.repo.ListRules(ctx, providerID)
}

func (s *service) CreateBlock(ctx context.Context, providerID int, req CreateBlockRequest) (*Block, error) {
	if !req.EndAt.After(req.StartAt) {
		return nil, fmt.Errorf("%w: end must be after start", ErrInvalidBlock)
	}

	return s.repo.CreateBlock(ctx, &Block{
		ProviderID: providerID,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		Reason:     req.Reason,
	})
}

func (s *service) DeleteBlock(ctx context.Context, providerID, blockID int) error {
	return s.repo.DeleteBlock(ctx, providerID, blockID)
}

func (s *service) ListBlocks(ctx context.Context, providerID int) ([]Block, error) {
	return s.repo.ListBlocks(ctx, providerID)
}
