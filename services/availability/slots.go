package availability

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"chatbook/models"
)

const (
	DefaultGrace      = 5 * time.Minute
	DefaultWindowDays = 3
	DefaultLimit      = 3

	displayLayout = "Mon Jan 2 · 15:04"
	buttonLayout  = "Mon 15:04"
)

// ErrInvalidCalendar is returned when a calendar config reaching the engine is
// malformed. Tenant loading validates configs, so this indicates a defect upstream.
var ErrInvalidCalendar = errors.New("invalid calendar config")

// SearchWindow is the [Start, End) range slots are searched in, expressed in the
// tenant's location.
type SearchWindow struct {
	Start time.Time
	End   time.Time
}

// NewSearchWindow starts the window grace after now and extends it by days calendar
// days in loc.
func NewSearchWindow(now time.Time, loc *time.Location, grace time.Duration, days int) SearchWindow {
	if grace < 0 {
		grace = 0
	}
	if days <= 0 {
		days = DefaultWindowDays
	}
	start := now.In(loc).Add(grace)
	return SearchWindow{Start: start, End: start.AddDate(0, 0, days)}
}

// LoadLocation resolves the tenant timezone, defaulting to UTC.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidCalendar, name, err)
	}
	return loc, nil
}

// ComputeSlots returns up to limit free slots of cfg.SlotDurationMinutes inside the
// working hours of cfg that fall in window and overlap none of busy. Slots are
// chronological and never overlap one another.
func ComputeSlots(cfg models.CalendarConfig, busy []models.BusyInterval, window SearchWindow, limit int) ([]models.AvailableSlot, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if cfg.SlotDurationMinutes < 5 || cfg.SlotDurationMinutes > 480 {
		return nil, fmt.Errorf("%w: slot duration %d", ErrInvalidCalendar, cfg.SlotDurationMinutes)
	}
	loc, err := LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	ranges, err := parseWorkingHours(cfg.WorkingHours)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(cfg.SlotDurationMinutes) * time.Minute
	windowStart := window.Start.In(loc)
	windowEnd := window.End.In(loc)

	var slots []models.AvailableSlot
	var lastEnd time.Time

	for day := startOfDay(windowStart); day.Before(windowEnd); day = startOfDay(day.AddDate(0, 0, 1)) {
		// time.Weekday uses Sunday = 0, the same numbering as WorkingHours.Day.
		for _, r := range ranges[int(day.Weekday())] {
			rangeStart := atClock(day, r.start)
			rangeEnd := atClock(day, r.end)
			if !rangeEnd.After(windowStart) {
				continue
			}

			candidate := rangeStart
			if windowStart.After(candidate) {
				candidate = windowStart
			}
			candidate = alignUp(candidate, rangeStart, duration)

			for candidate.Before(rangeEnd) && candidate.Before(windowEnd) {
				end := candidate.Add(duration)
				if end.After(rangeEnd) || end.After(windowEnd) {
					break
				}
				if !candidate.Before(lastEnd) && !overlapsAny(busy, candidate, end) {
					slots = append(slots, newSlot(candidate, end, loc))
					lastEnd = end
					if len(slots) >= limit {
						return slots, nil
					}
				}
				candidate = end
			}
		}
	}
	return slots, nil
}

func newSlot(start, end time.Time, loc *time.Location) models.AvailableSlot {
	return models.AvailableSlot{
		Start:        start.UTC(),
		End:          end.UTC(),
		Timezone:     loc.String(),
		DisplayLabel: DisplayLabel(start, loc),
		ButtonLabel:  start.In(loc).Format(buttonLayout),
	}
}

// DisplayLabel renders start in loc as "Mon Oct 12 · 10:30".
func DisplayLabel(start time.Time, loc *time.Location) string {
	return start.In(loc).Format(displayLayout)
}

// alignUp rounds candidate up to anchor + k*step. Candidates at or before the
// anchor snap to the anchor.
func alignUp(candidate, anchor time.Time, step time.Duration) time.Time {
	if !candidate.After(anchor) {
		return anchor
	}
	diff := candidate.Sub(anchor)
	steps := (diff + step - 1) / step
	return anchor.Add(steps * step)
}

func overlapsAny(busy []models.BusyInterval, start, end time.Time) bool {
	for _, b := range busy {
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

type clock struct{ hour, minute int }

func atClock(day time.Time, c clock) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.hour, c.minute, 0, 0, day.Location())
}

type dayRange struct{ start, end clock }

// parseWorkingHours groups ranges by weekday, each group ordered by start time.
func parseWorkingHours(hours []models.WorkingHours) (map[int][]dayRange, error) {
	byDay := make(map[int][]dayRange, 7)
	for i, wh := range hours {
		if wh.Day < 0 || wh.Day > 6 {
			return nil, fmt.Errorf("%w: workingHours[%d].day %d", ErrInvalidCalendar, i, wh.Day)
		}
		start, err := parseClock(wh.Start)
		if err != nil {
			return nil, fmt.Errorf("workingHours[%d].start: %w", i, err)
		}
		end, err := parseClock(wh.End)
		if err != nil {
			return nil, fmt.Errorf("workingHours[%d].end: %w", i, err)
		}
		if end.hour*60+end.minute <= start.hour*60+start.minute {
			return nil, fmt.Errorf("%w: workingHours[%d] ends at or before its start", ErrInvalidCalendar, i)
		}
		byDay[wh.Day] = append(byDay[wh.Day], dayRange{start: start, end: end})
	}
	for day := range byDay {
		ranges := byDay[day]
		sort.Slice(ranges, func(i, j int) bool {
			return ranges[i].start.hour*60+ranges[i].start.minute < ranges[j].start.hour*60+ranges[j].start.minute
		})
	}
	return byDay, nil
}

// ValidClock reports whether value is a 24h "HH:MM" wall-clock time.
func ValidClock(value string) bool {
	_, err := parseClock(value)
	return err == nil
}

func parseClock(value string) (clock, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return clock{}, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidCalendar, value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return clock{}, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidCalendar, value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return clock{}, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidCalendar, value)
	}
	return clock{hour: hour, minute: minute}, nil
}
