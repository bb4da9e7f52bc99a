package models

import "time"

// BusyInterval is a half-open [Start, End) range the calendar reports as occupied.
type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether the two half-open intervals intersect.
func (b BusyInterval) Overlaps(start, end time.Time) bool {
	return b.Start.Before(end) && start.Before(b.End)
}

// AvailableSlot is a candidate appointment window. It is computed on demand and
// never persisted.
type AvailableSlot struct {
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Timezone       string    `json:"timezone"`
	DisplayLabel   string    `json:"displayLabel"`
	ButtonLabel    string    `json:"buttonLabel"`
	SelectionToken string    `json:"selectionToken,omitempty"`
}

// PendingBooking is a tentative appointment waiting for the owner's decision.
// The service fields are a snapshot taken when the slot was selected.
type PendingBooking struct {
	CustomerID      string    `json:"customerId" bson:"_id"`
	TenantKey       string    `json:"tenantKey" bson:"tenantKey"`
	RemoteEventID   string    `json:"remoteEventId" bson:"remoteEventId"`
	Start           time.Time `json:"start" bson:"start"`
	End             time.Time `json:"end" bson:"end"`
	ServiceID       string    `json:"serviceId" bson:"serviceId"`
	ServiceName     string    `json:"serviceName" bson:"serviceName"`
	Price           float64   `json:"price" bson:"price"`
	Currency        string    `json:"currency" bson:"currency"`
	DurationMinutes int       `json:"durationMinutes" bson:"durationMinutes"`
	Timezone        string    `json:"timezone" bson:"timezone"`
	DisplayLabel    string    `json:"displayLabel" bson:"displayLabel"`
	Language        string    `json:"language,omitempty" bson:"language,omitempty"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Option is one selectable choice sent to the customer (reply button or list row).
type Option struct {
	Token string `json:"token"`
	Label string `json:"label"`
}
