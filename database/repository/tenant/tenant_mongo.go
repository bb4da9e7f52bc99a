package tenantRepo

import (
	"context"
	"errors"
	"fmt"

	"chatbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "tenants"

// MongoDirectory reads tenants from the tenants collection. Documents are normalized
// and validated on every read, so a malformed document is rejected here.
type MongoDirectory struct {
	coll *mongo.Collection
}

func NewMongoDirectory(coll *mongo.Collection) *MongoDirectory {
	return &MongoDirectory{coll: coll}
}

func (d *MongoDirectory) EnsureIndexes(ctx context.Context) error {
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "key", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "phoneNumberId", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := d.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create tenant indexes: %w", err)
	}
	return nil
}

func (d *MongoDirectory) ByRoutingKey(ctx context.Context, routingKey string) (*models.Tenant, error) {
	t, err := d.findOne(ctx, bson.M{"phoneNumberId": routingKey})
	if errors.Is(err, ErrTenantNotFound) {
		return d.findOne(ctx, bson.M{"key": DefaultTenantKey})
	}
	return t, err
}

func (d *MongoDirectory) ByKey(ctx context.Context, key string) (*models.Tenant, error) {
	return d.findOne(ctx, bson.M{"key": key})
}

func (d *MongoDirectory) All(ctx context.Context) ([]models.Tenant, error) {
	cursor, err := d.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "key", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tenants: %w", err)
	}
	defer cursor.Close(ctx)

	var tenants []models.Tenant
	if err := cursor.All(ctx, &tenants); err != nil {
		return nil, fmt.Errorf("failed to decode tenants: %w", err)
	}
	if err := ValidateAll(tenants); err != nil {
		return nil, err
	}
	return tenants, nil
}

func (d *MongoDirectory) findOne(ctx context.Context, filter bson.M) (*models.Tenant, error) {
	var t models.Tenant
	err := d.coll.FindOne(ctx, filter).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %v", ErrTenantNotFound, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tenant: %w", err)
	}
	Normalize(&t)
	if err := Validate(&t); err != nil {
		return nil, err
	}
	return &t, nil
}
