// File: utils/cache.go
package utils

import (
	"context"
	"time"

	"aira/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

var (
	// SessionClient stores dialogue session snapshots.
	SessionClient *redis.Client
	// LockClient holds the per-date booking locks.
	LockClient *redis.Client
)

func connectRedis(db int, purpose string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		GetLogger().Fatal("failed to connect to redis", zap.String("purpose", purpose), zap.Int("db", db), zap.Error(err))
	}
	return client
}

// InitCache connects the session and lock clients.
func InitCache() {
	SessionClient = connectRedis(config.AppConfig.RedisSessionDB, "sessions")
	LockClient = connectRedis(config.AppConfig.RedisLockDB, "booking locks")
}

// GetSessionClient returns the session snapshot client.
func GetSessionClient() *redis.Client {
	if SessionClient == nil {
		SessionClient = connectRedis(config.AppConfig.RedisSessionDB, "sessions")
	}
	return SessionClient
}

// GetLockClient returns the booking lock client.
func GetLockClient() *redis.Client {
	if LockClient == nil {
		LockClient = connectRedis(config.AppConfig.RedisLockDB, "booking locks")
	}
	return LockClient
}

// CloseCache closes every connected client.
func CloseCache() {
	for _, c := range []*redis.Client{SessionClient, LockClient} {
		if c != nil {
			_ = c.Close()
		}
	}
}
