package activityRepo

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

const CollectionName = "admin_activity"

// MongoRecorder appends events to a capped collection holding at most MaxEvents
// documents.
type MongoRecorder struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoRecorder(coll *mongo.Collection) *MongoRecorder {
	return &MongoRecorder{coll: coll, now: time.Now}
}

// EnsureCapped creates the capped collection. An existing collection is left as is.
func (r *MongoRecorder) EnsureCapped(ctx context.Context) error {
	opts := options.CreateCollection().SetCapped(true).SetSizeInBytes(1 << 20).SetMaxDocuments(MaxEvents)
	err := r.coll.Database().CreateCollection(ctx, r.coll.Name(), opts)
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Name == "NamespaceExists" {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create activity collection: %w", err)
	}
	return nil
}

func (r *MongoRecorder) Record(ctx context.Context, event models.ActivityEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = r.now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to record activity %s: %w", event.Type, err)
	}
	return nil
}

func (r *MongoRecorder) Recent(ctx context.Context, limit int) ([]models.ActivityEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(clampLimit(limit)))
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve activity: %w", err)
	}
	defer cursor.Close(ctx)

	var events []models.ActivityEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode activity: %w", err)
	}
	return events, nil
}
