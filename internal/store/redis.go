package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pyittinehtaung/pth-client/internal/model/chat"
)

const redisSnapshotKey = "pth:client-state"

// RedisStore keeps the snapshot in a single redis key. Useful when the same
// client state should survive across machines; keys never expire.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a redis-backed snapshot store around an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Load implements Adapter. A missing key is not an error.
func (s *RedisStore) Load(ctx context.Context) (*chat.Snapshot, error) {
	val, err := s.client.Get(ctx, redisSnapshotKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot key: %w", err)
	}

	var snap chat.Snapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot key: %w", err)
	}
	return &snap, nil
}

// Save implements Adapter.
func (s *RedisStore) Save(ctx context.Context, snap *chat.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisSnapshotKey, raw, 0).Err()
}

// Close implements Adapter.
func (s *RedisStore) Close() error { return s.client.Close() }
