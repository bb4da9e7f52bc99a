// File: services/intelligence/contextStore.go
package ai

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const aiContextPrefix = "ai:lang:"

// RedisContextStore keeps the customer's language under ai:lang:<customerID>.
type RedisContextStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisContextStore(client *redis.Client, ttl time.Duration) *RedisContextStore {
	return &RedisContextStore{client: client, ttl: ttl}
}

// Language returns "" when nothing is remembered for customerID.
func (s *RedisContextStore) Language(ctx context.Context, customerID string) (string, error) {
	lang, err := s.client.Get(ctx, aiContextPrefix+customerID).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return lang, nil
}

func (s *RedisContextStore) SetLanguage(ctx context.Context, customerID, language string) error {
	return s.client.Set(ctx, aiContextPrefix+customerID, language, s.ttl).Err()
}

// MemoryContextStore is the in-process ContextStore used when Redis is not configured.
type MemoryContextStore struct {
	mu    sync.RWMutex
	langs map[string]string
}

func NewMemoryContextStore() *MemoryContextStore {
	return &MemoryContextStore{langs: make(map[string]string)}
}

func (s *MemoryContextStore) Language(_ context.Context, customerID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.langs[customerID], nil
}

func (s *MemoryContextStore) SetLanguage(_ context.Context, customerID, language string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.langs[customerID] = language
	return nil
}
