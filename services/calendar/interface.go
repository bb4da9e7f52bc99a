package calendar

import (
	"context"
	"errors"
	"time"

	"chatbook/models"
)

// ErrNotConfigured is returned when an enabled tenant has no usable credentials.
var ErrNotConfigured = errors.New("calendar credentials not configured")

// Calendar manages tentative appointments in a tenant's calendar. Every method is a
// no-op for tenants whose calendar is disabled: CreateTentativeEvent then returns an
// empty event ID and a nil error.
type Calendar interface {
	CreateTentativeEvent(ctx context.Context, tenant *models.Tenant, summary string, start, end time.Time, notes string, attendees []string) (string, error)
	ConfirmEvent(ctx context.Context, tenant *models.Tenant, eventID string) error
	CancelEvent(ctx context.Context, tenant *models.Tenant, eventID string) error
	FetchBusyIntervals(ctx context.Context, tenant *models.Tenant, start, end time.Time) ([]models.BusyInterval, error)
}
