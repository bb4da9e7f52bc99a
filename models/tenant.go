package models

import (
	"strings"
)

// WorkingHours is one opening window on a weekday (0 = Sunday ... 6 = Saturday).
// Start and End are local wall-clock times in "HH:MM" (24h).
type WorkingHours struct {
	Day   int    `json:"day" bson:"day" mapstructure:"day" validate:"min=0,max=6"`
	Start string `json:"start" bson:"start" mapstructure:"start" validate:"required,hhmm"`
	End   string `json:"end" bson:"end" mapstructure:"end" validate:"required,hhmm"`
}

// CalendarConfig describes how a tenant's availability is computed.
type CalendarConfig struct {
	Enabled             bool           `json:"enabled" bson:"enabled" mapstructure:"enabled"`
	Timezone            string         `json:"timezone" bson:"timezone" mapstructure:"timezone" validate:"required,timezone"`
	CalendarID          string         `json:"calendarId" bson:"calendarId" mapstructure:"calendarId"`
	SlotDurationMinutes int            `json:"slotDurationMinutes" bson:"slotDurationMinutes" mapstructure:"slotDurationMinutes" validate:"min=5,max=480"`
	WorkingHours        []WorkingHours `json:"workingHours" bson:"workingHours" mapstructure:"workingHours" validate:"dive"`

	// Google OAuth material, used only when Enabled.
	OAuthClientFile string `json:"oauthClient,omitempty" bson:"oauthClient,omitempty" mapstructure:"oauthClient"`
	TokenFile       string `json:"tokenFile,omitempty" bson:"tokenFile,omitempty" mapstructure:"tokenFile"`
}

// Service is a bookable item in a tenant's catalog.
type Service struct {
	ID          string   `json:"id" bson:"id" mapstructure:"id" validate:"required,slug"`
	Name        string   `json:"name" bson:"name" mapstructure:"name" validate:"required"`
	MinMinutes  int      `json:"minMinutes" bson:"minMinutes" mapstructure:"minMinutes" validate:"gt=0"`
	MaxMinutes  int      `json:"maxMinutes" bson:"maxMinutes" mapstructure:"maxMinutes" validate:"gtefield=MinMinutes"`
	Price       float64  `json:"price" bson:"price" mapstructure:"price" validate:"gte=0"`
	Currency    string   `json:"currency" bson:"currency" mapstructure:"currency"`
	Description string   `json:"description" bson:"description" mapstructure:"description"`
	Keywords    []string `json:"keywords" bson:"keywords" mapstructure:"keywords"`
}

// Tenant is a business account reachable through one WhatsApp phone number.
type Tenant struct {
	Key           string         `json:"key" bson:"key" mapstructure:"key" validate:"required"`
	DisplayName   string         `json:"displayName" bson:"displayName" mapstructure:"displayName" validate:"required"`
	PhoneNumberID string         `json:"phoneNumberId" bson:"phoneNumberId" mapstructure:"phoneNumberId" validate:"required"`
	WABAToken     string         `json:"-" bson:"wabaToken" mapstructure:"wabaToken"`
	GraphVersion  string         `json:"graphVersion" bson:"graphVersion" mapstructure:"graphVersion"`
	OwnerEmail    string         `json:"ownerEmail,omitempty" bson:"ownerEmail,omitempty" mapstructure:"ownerEmail" validate:"omitempty,email"`
	Services      []Service      `json:"services" bson:"services" mapstructure:"services" validate:"required,min=1,dive"`
	Calendar      CalendarConfig `json:"calendar" bson:"calendar" mapstructure:"calendar"`
}

// ServiceByID returns the service with the given ID, or nil.
func (t *Tenant) ServiceByID(id string) *Service {
	if t == nil || id == "" {
		return nil
	}
	for i := range t.Services {
		if t.Services[i].ID == id {
			return &t.Services[i]
		}
	}
	return nil
}

// ServiceByText returns the first service whose ID, name or one of its keywords
// appears in text (case-insensitive substring match), or nil.
func (t *Tenant) ServiceByText(text string) *Service {
	if t == nil || strings.TrimSpace(text) == "" {
		return nil
	}
	lower := strings.ToLower(text)
	for i := range t.Services {
		svc := &t.Services[i]
		if svc.ID != "" && strings.Contains(lower, strings.ToLower(svc.ID)) {
			return svc
		}
		if svc.Name != "" && strings.Contains(lower, strings.ToLower(svc.Name)) {
			return svc
		}
		for _, kw := range svc.Keywords {
			if kw != "" && strings.Contains(lower, kw) {
				return svc
			}
		}
	}
	return nil
}

// DefaultService is the first entry of the catalog.
func (t *Tenant) DefaultService() *Service {
	if t == nil || len(t.Services) == 0 {
		return nil
	}
	return &t.Services[0]
}
