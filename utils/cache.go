// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"chatbook/config"

	"github.com/go-redis/redis/v8"
)

var (
	// PendingCacheClient holds pending bookings, customer locks and remembered languages.
	PendingCacheClient *redis.Client
	// QueueClient is the DB the inbound asynq queue lives in.
	QueueClient *redis.Client
)

func newRedisClient(db int, purpose string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", purpose, err)
	}
	return client
}

// InitPendingCache initializes the Redis client for conversation state.
func InitPendingCache() {
	PendingCacheClient = newRedisClient(config.AppConfig.RedisPendingDB, "Pending")
}

// GetPendingCacheClient returns the Redis client for conversation state.
func GetPendingCacheClient() *redis.Client {
	if PendingCacheClient == nil {
		InitPendingCache()
	}
	return PendingCacheClient
}

// InitQueueCache initializes the Redis client for the inbound queue DB.
func InitQueueCache() {
	QueueClient = newRedisClient(config.AppConfig.RedisQueueDB, "Queue")
}

// GetQueueClient returns the Redis client for the inbound queue DB.
func GetQueueClient() *redis.Client {
	if QueueClient == nil {
		InitQueueCache()
	}
	return QueueClient
}

// OpenRedisClients lists the clients that have been initialized, for health checks.
func OpenRedisClients() []*redis.Client {
	var clients []*redis.Client
	for _, c := range []*redis.Client{PendingCacheClient, QueueClient} {
		if c != nil {
			clients = append(clients, c)
		}
	}
	return clients
}
