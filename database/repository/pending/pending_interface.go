package pendingRepo

import (
	"context"

	"chatbook/models"
)

// Store maps a customer ID to at most one pending booking.
type Store interface {
	// Get returns nil, nil when the customer has nothing pending.
	Get(ctx context.Context, customerID string) (*models.PendingBooking, error)
	// Put overwrites any existing entry and stamps UpdatedAt.
	Put(ctx context.Context, customerID string, booking *models.PendingBooking) error
	// Delete is a no-op when nothing is stored.
	Delete(ctx context.Context, customerID string) error
	// List returns every pending booking, oldest update first.
	List(ctx context.Context) ([]models.PendingBooking, error)
}
