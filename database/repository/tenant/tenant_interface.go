package tenantRepo

import (
	"context"
	"errors"

	"chatbook/models"
)

// DefaultTenantKey names the tenant that answers for unknown routing keys.
const DefaultTenantKey = "default"

var ErrTenantNotFound = errors.New("tenant not found")

// Directory resolves tenants. Every tenant it returns has passed Validate.
type Directory interface {
	// ByRoutingKey looks a tenant up by WhatsApp phone_number_id, falling back to the
	// default tenant when no tenant owns the number.
	ByRoutingKey(ctx context.Context, routingKey string) (*models.Tenant, error)
	ByKey(ctx context.Context, key string) (*models.Tenant, error)
	All(ctx context.Context) ([]models.Tenant, error)
}
