package availability

import (
	"context"
	"time"

	"chatbook/models"

	"go.uber.org/zap"
)

// BusyFetcher reports occupied ranges of a tenant's calendar.
type BusyFetcher interface {
	FetchBusyIntervals(ctx context.Context, tenant *models.Tenant, start, end time.Time) ([]models.BusyInterval, error)
}

// HoldLister lists pending bookings, which hold their slot until decided.
type HoldLister interface {
	List(ctx context.Context) ([]models.PendingBooking, error)
}

// Options narrows a single availability search.
type Options struct {
	// From moves the window start later than now+grace. Zero means now.
	From  time.Time
	Limit int
	// ExcludeCustomer ignores that customer's own hold, which a new selection replaces.
	ExcludeCustomer string
}

// AvailabilityService finds open slots for a tenant.
type AvailabilityService interface {
	FindSlots(ctx context.Context, tenant *models.Tenant, opts Options) ([]models.AvailableSlot, error)
}

// DefaultAvailabilityService combines calendar busy intervals and local holds with
// the slot engine.
type DefaultAvailabilityService struct {
	Busy       BusyFetcher
	Holds      HoldLister
	Logger     *zap.Logger
	Now        func() time.Time
	// Grace is how far after now the search starts. Zero means none; negative
	// selects DefaultGrace.
	Grace      time.Duration
	WindowDays int
	Limit      int
}

// FindSlots computes the next open slots. A failing busy-interval fetch is treated
// as "no known conflicts" so customers still get offers while the calendar is down.
func (s *DefaultAvailabilityService) FindSlots(ctx context.Context, tenant *models.Tenant, opts Options) ([]models.AvailableSlot, error) {
	loc, err := LoadLocation(tenant.Calendar.Timezone)
	if err != nil {
		return nil, err
	}

	window := NewSearchWindow(s.now(), loc, s.grace(), s.WindowDays)
	if opts.From.After(window.Start) {
		days := s.WindowDays
		if days <= 0 {
			days = DefaultWindowDays
		}
		from := opts.From.In(loc)
		window = SearchWindow{Start: from, End: from.AddDate(0, 0, days)}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = s.Limit
	}

	busy := s.busyIntervals(ctx, tenant, window)
	busy = append(busy, s.holds(ctx, tenant, opts.ExcludeCustomer)...)

	return ComputeSlots(tenant.Calendar, busy, window, limit)
}

func (s *DefaultAvailabilityService) busyIntervals(ctx context.Context, tenant *models.Tenant, window SearchWindow) []models.BusyInterval {
	if !tenant.Calendar.Enabled || s.Busy == nil {
		return nil
	}
	busy, err := s.Busy.FetchBusyIntervals(ctx, tenant, window.Start, window.End)
	if err != nil {
		s.logger().Warn("busy interval fetch failed; offering working hours only",
			zap.String("tenant", tenant.Key), zap.Error(err))
		return nil
	}
	return busy
}

func (s *DefaultAvailabilityService) holds(ctx context.Context, tenant *models.Tenant, exclude string) []models.BusyInterval {
	if s.Holds == nil {
		return nil
	}
	pending, err := s.Holds.List(ctx)
	if err != nil {
		s.logger().Warn("pending holds unavailable", zap.String("tenant", tenant.Key), zap.Error(err))
		return nil
	}
	var out []models.BusyInterval
	for _, p := range pending {
		if p.TenantKey != tenant.Key || p.CustomerID == exclude {
			continue
		}
		out = append(out, models.BusyInterval{Start: p.Start, End: p.End})
	}
	return out
}

func (s *DefaultAvailabilityService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultAvailabilityService) grace() time.Duration {
	if s.Grace < 0 {
		return DefaultGrace
	}
	return s.Grace
}

func (s *DefaultAvailabilityService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}
