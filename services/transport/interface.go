package transport

import (
	"context"

	"chatbook/models"
)

// Transport delivers outbound messages to a customer on behalf of a tenant.
type Transport interface {
	SendText(ctx context.Context, tenantKey, customerID, body string) error
	SendOptions(ctx context.Context, tenantKey, customerID, prompt string, options []models.Option) error
}
