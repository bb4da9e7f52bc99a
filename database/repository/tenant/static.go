package tenantRepo

import (
	"context"
	"fmt"

	"chatbook/models"

	"github.com/spf13/viper"
)

// StaticDirectory serves a fixed, validated set of tenants from memory.
type StaticDirectory struct {
	tenants   []models.Tenant
	byKey     map[string]int
	byRouting map[string]int
}

func NewStaticDirectory(tenants []models.Tenant) (*StaticDirectory, error) {
	if err := ValidateAll(tenants); err != nil {
		return nil, err
	}
	d := &StaticDirectory{
		tenants:   tenants,
		byKey:     make(map[string]int, len(tenants)),
		byRouting: make(map[string]int, len(tenants)),
	}
	for i, t := range tenants {
		d.byKey[t.Key] = i
		d.byRouting[t.PhoneNumberID] = i
	}
	return d, nil
}

// LoadFileDirectory reads a YAML or JSON file holding a top-level "tenants" list.
func LoadFileDirectory(path string) (*StaticDirectory, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read tenants file %s: %w", path, err)
	}
	var tenants []models.Tenant
	if err := v.UnmarshalKey("tenants", &tenants); err != nil {
		return nil, fmt.Errorf("failed to decode tenants file %s: %w", path, err)
	}
	if len(tenants) == 0 {
		return nil, fmt.Errorf("%w: %s defines no tenants", ErrInvalidTenant, path)
	}
	return NewStaticDirectory(tenants)
}

func (d *StaticDirectory) ByRoutingKey(_ context.Context, routingKey string) (*models.Tenant, error) {
	if i, ok := d.byRouting[routingKey]; ok {
		return d.copyAt(i), nil
	}
	if i, ok := d.byKey[DefaultTenantKey]; ok {
		return d.copyAt(i), nil
	}
	return nil, fmt.Errorf("%w: routing key %q", ErrTenantNotFound, routingKey)
}

func (d *StaticDirectory) ByKey(_ context.Context, key string) (*models.Tenant, error) {
	if i, ok := d.byKey[key]; ok {
		return d.copyAt(i), nil
	}
	return nil, fmt.Errorf("%w: key %q", ErrTenantNotFound, key)
}

func (d *StaticDirectory) All(_ context.Context) ([]models.Tenant, error) {
	out := make([]models.Tenant, len(d.tenants))
	copy(out, d.tenants)
	return out, nil
}

// copyAt hands out a copy so callers cannot mutate the directory. The slices inside
// are shared and must be treated as read-only.
func (d *StaticDirectory) copyAt(i int) *models.Tenant {
	t := d.tenants[i]
	return &t
}
