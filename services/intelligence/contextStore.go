// File: services/intelligence/contextStore.go
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aira/models"

	"github.com/go-redis/redis/v8"
)

const sessionSnapshotPrefix = "session:snap:"

// ErrNoSnapshot is returned when a session has no stored snapshot.
var ErrNoSnapshot = errors.New("session snapshot not found")

// RedisSnapshotStore keeps live dialogue sessions in Redis so they survive
// eviction and restarts.
type RedisSnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSnapshotStore(client *redis.Client, ttl time.Duration) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client, ttl: ttl}
}

func (s *RedisSnapshotStore) Get(ctx context.Context, sessionID string) (*models.SessionSnapshot, error) {
	data, err := s.client.Get(ctx, sessionSnapshotPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session snapshot: %w", err)
	}
	var snap models.SessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode session snapshot: %w", err)
	}
	return &snap, nil
}

func (s *RedisSnapshotStore) Save(ctx context.Context, snap *models.SessionSnapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionSnapshotPrefix+snap.SessionID, b, s.ttl).Err()
}

func (s *RedisSnapshotStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionSnapshotPrefix+sessionID).Err()
}
