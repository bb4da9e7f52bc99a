package tenantRepo

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"chatbook/models"
	"chatbook/services/availability"

	"github.com/go-playground/validator/v10"
)

const (
	defaultTimezone     = "UTC"
	defaultSlotMinutes  = 45
	defaultCalendarID   = "primary"
	defaultGraphVersion = "v20.0"
	defaultCurrency     = "USD"
	defaultMinMinutes   = 30

	// reservedServiceID stands for "no service" in slot tokens.
	reservedServiceID = "default"
)

var ErrInvalidTenant = errors.New("invalid tenant")

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
	nonWord     = regexp.MustCompile(`[^a-z0-9]+`)
	validate    = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return availability.ValidClock(fl.Field().String())
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		return slugPattern.MatchString(v) && v != reservedServiceID
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		wh := sl.Current().Interface().(models.WorkingHours)
		// Equal-width HH:MM strings order the same as the times they denote.
		if availability.ValidClock(wh.Start) && availability.ValidClock(wh.End) && wh.End <= wh.Start {
			sl.ReportError(wh.End, "End", "end", "gtstart", wh.Start)
		}
	}, models.WorkingHours{})
	return v
}

// Normalize fills the defaults a tenant document may omit.
func Normalize(t *models.Tenant) {
	t.Key = strings.TrimSpace(t.Key)
	t.DisplayName = strings.TrimSpace(t.DisplayName)
	t.PhoneNumberID = strings.TrimSpace(t.PhoneNumberID)
	if t.Key == "" {
		t.Key = slugify(t.DisplayName)
	}
	if t.GraphVersion == "" {
		t.GraphVersion = defaultGraphVersion
	}

	cal := &t.Calendar
	cal.Timezone = strings.TrimSpace(cal.Timezone)
	if cal.Timezone == "" {
		cal.Timezone = defaultTimezone
	}
	if cal.SlotDurationMinutes == 0 {
		cal.SlotDurationMinutes = defaultSlotMinutes
	}
	if cal.CalendarID == "" {
		cal.CalendarID = defaultCalendarID
	}
	for i := range cal.WorkingHours {
		cal.WorkingHours[i].Start = strings.TrimSpace(cal.WorkingHours[i].Start)
		cal.WorkingHours[i].End = strings.TrimSpace(cal.WorkingHours[i].End)
	}

	for i := range t.Services {
		svc := &t.Services[i]
		svc.Name = strings.TrimSpace(svc.Name)
		svc.ID = strings.TrimSpace(svc.ID)
		if svc.ID == "" {
			svc.ID = slugify(svc.Name)
			if svc.ID == reservedServiceID {
				svc.ID += "-service"
			}
		}
		if svc.Currency == "" {
			svc.Currency = defaultCurrency
		}
		if svc.MinMinutes == 0 {
			svc.MinMinutes = defaultMinMinutes
		}
		if svc.MaxMinutes < svc.MinMinutes {
			svc.MaxMinutes = svc.MinMinutes
		}
		keywords := svc.Keywords[:0]
		for _, kw := range svc.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		svc.Keywords = keywords
	}
}

// Validate checks one tenant's structure.
func Validate(t *models.Tenant) error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidTenant, t.Key, describe(err))
	}
	seen := make(map[string]bool, len(t.Services))
	for _, svc := range t.Services {
		if seen[svc.ID] {
			return fmt.Errorf("%w %q: duplicate service id %q", ErrInvalidTenant, t.Key, svc.ID)
		}
		seen[svc.ID] = true
	}
	return nil
}

// ValidateAll normalizes and validates tenants and checks that keys and routing keys
// are unique across them.
func ValidateAll(tenants []models.Tenant) error {
	keys := make(map[string]bool, len(tenants))
	routes := make(map[string]string, len(tenants))
	for i := range tenants {
		t := &tenants[i]
		Normalize(t)
		if err := Validate(t); err != nil {
			return err
		}
		if keys[t.Key] {
			return fmt.Errorf("%w: duplicate tenant key %q", ErrInvalidTenant, t.Key)
		}
		keys[t.Key] = true
		if other, ok := routes[t.PhoneNumberID]; ok {
			return fmt.Errorf("%w: phoneNumberId %q used by %q and %q", ErrInvalidTenant, t.PhoneNumberID, other, t.Key)
		}
		routes[t.PhoneNumberID] = t.Key
	}
	return nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

func slugify(name string) string {
	return strings.Trim(nonWord.ReplaceAllString(strings.ToLower(name), "-"), "-")
}
