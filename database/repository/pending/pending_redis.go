package pendingRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"chatbook/models"

	"github.com/go-redis/redis/v8"
)

const pendingKeyPrefix = "pending:booking:"

// RedisStore persists each pending booking as JSON under pending:booking:<customerID>.
// Keys carry no TTL; a booking waits until the owner decides.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func (s *RedisStore) Get(ctx context.Context, customerID string) (*models.PendingBooking, error) {
	data, err := s.client.Get(ctx, pendingKeyPrefix+customerID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pending booking for %s: %w", customerID, err)
	}
	var b models.PendingBooking
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to decode pending booking for %s: %w", customerID, err)
	}
	return &b, nil
}

func (s *RedisStore) Put(ctx context.Context, customerID string, booking *models.PendingBooking) error {
	booking.CustomerID = customerID
	booking.UpdatedAt = s.now().UTC()
	data, err := json.Marshal(booking)
	if err != nil {
		return fmt.Errorf("failed to encode pending booking: %w", err)
	}
	if err := s.client.Set(ctx, pendingKeyPrefix+customerID, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save pending booking for %s: %w", customerID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, customerID string) error {
	if err := s.client.Del(ctx, pendingKeyPrefix+customerID).Err(); err != nil {
		return fmt.Errorf("failed to delete pending booking for %s: %w", customerID, err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]models.PendingBooking, error) {
	var out []models.PendingBooking
	iter := s.client.Scan(ctx, 0, pendingKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		customerID := strings.TrimPrefix(iter.Val(), pendingKeyPrefix)
		b, err := s.Get(ctx, customerID)
		if err != nil {
			return nil, err
		}
		// Deleted between SCAN and GET.
		if b == nil {
			continue
		}
		out = append(out, *b)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan pending bookings: %w", err)
	}
	sortByUpdate(out)
	return out, nil
}
