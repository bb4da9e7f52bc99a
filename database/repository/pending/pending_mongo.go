package pendingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chatbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "pending_bookings"

// MongoStore keeps one document per customer, with the customer ID as _id.
type MongoStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll, now: time.Now}
}

// EnsureIndexes creates indexes for the admin listing and tenant-local hold lookups.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tenantKey", Value: 1}, {Key: "start", Value: 1}}},
		{Keys: bson.D{{Key: "updatedAt", Value: 1}}},
	}
	if _, err := s.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create pending booking indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, customerID string) (*models.PendingBooking, error) {
	var b models.PendingBooking
	err := s.coll.FindOne(ctx, bson.M{"_id": customerID}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending booking for %s: %w", customerID, err)
	}
	return &b, nil
}

func (s *MongoStore) Put(ctx context.Context, customerID string, booking *models.PendingBooking) error {
	booking.CustomerID = customerID
	booking.UpdatedAt = s.now().UTC()
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": customerID}, booking, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save pending booking for %s: %w", customerID, err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, customerID string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": customerID}); err != nil {
		return fmt.Errorf("failed to delete pending booking for %s: %w", customerID, err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]models.PendingBooking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve pending bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.PendingBooking
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode pending bookings: %w", err)
	}
	return out, nil
}
