package booking

import (
	"strings"
	"time"

	"chatbook/models"
)

// resolveService picks the service for this turn: an explicit hint (by ID, then by
// name or keyword), the customer's own words, the service of the pending booking,
// and finally the tenant default.
func (t *turn) resolveService(hint string) *models.Service {
	if hint = strings.TrimSpace(hint); hint != "" {
		if svc := t.tenant.ServiceByID(hint); svc != nil {
			return svc
		}
		if svc := t.tenant.ServiceByText(hint); svc != nil {
			return svc
		}
	}
	if svc := t.tenant.ServiceByText(t.text); svc != nil {
		return svc
	}
	if p := t.conv.Pending; p != nil {
		if svc := t.tenant.ServiceByID(p.ServiceID); svc != nil {
			return svc
		}
	}
	return t.tenant.DefaultService()
}

var localTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// parsePreferredTime reads the classifier's time hint. Zone-less values are local
// to loc; a bare "15:04" means the next occurrence of that clock time after now.
func parsePreferredTime(hint string, loc *time.Location, now time.Time) (time.Time, bool) {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return time.Time{}, false
	}
	if at, err := time.Parse(time.RFC3339, hint); err == nil {
		return at.UTC(), true
	}
	for _, layout := range localTimeLayouts {
		if at, err := time.ParseInLocation(layout, hint, loc); err == nil {
			return at.UTC(), true
		}
	}
	if clock, err := time.ParseInLocation("15:04", hint, loc); err == nil {
		local := now.In(loc)
		at := time.Date(local.Year(), local.Month(), local.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
		if !at.After(now) {
			at = at.AddDate(0, 0, 1)
		}
		return at.UTC(), true
	}
	return time.Time{}, false
}
