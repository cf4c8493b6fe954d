// internal/infrastructure/storage/redis.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agri-oasis/storefront/internal/domain/session"
)

// Redis stores slots as plain string keys with a sliding TTL
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a redis backend. A zero ttl keeps keys forever.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Name() string { return "redis" }

// ForClient returns the slots of clientID
func (r *Redis) ForClient(clientID string) (session.Slots, error) {
	if err := checkClientID(clientID); err != nil {
		return nil, err
	}
	return &redisSlots{backend: r, clientID: clientID}, nil
}

type redisSlots struct {
	backend  *Redis
	clientID string
}

func (s *redisSlots) Get(ctx context.Context, key string) (string, bool, error) {
	k := slotKey(s.clientID, key)
	val, err := s.backend.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	if s.backend.ttl > 0 {
		// Best effort: a failed refresh only shortens the session.
		_ = s.backend.client.Expire(ctx, k, s.backend.ttl).Err()
	}
	return val, true, nil
}

// Refresh resets the TTL of keys. Expire reports false for a missing key.
func (s *redisSlots) Refresh(ctx context.Context, keys ...string) (bool, error) {
	full := s.fullKeys(keys)
	if s.backend.ttl <= 0 {
		n, err := s.backend.client.Exists(ctx, full...).Result()
		if err != nil {
			return false, fmt.Errorf("failed to refresh slots: %w", err)
		}
		return n == int64(len(full)), nil
	}

	cmds := make([]*redis.BoolCmd, 0, len(full))
	_, err := s.backend.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range full {
			cmds = append(cmds, pipe.Expire(ctx, k, s.backend.ttl))
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to refresh slots: %w", err)
	}
	for _, cmd := range cmds {
		if !cmd.Val() {
			return false, nil
		}
	}
	return true, nil
}

func (s *redisSlots) fullKeys(keys []string) []string {
	full := make([]string, 0, len(keys))
	for _, key := range keys {
		full = append(full, slotKey(s.clientID, key))
	}
	return full
}

func (s *redisSlots) Set(ctx context.Context, key, value string) error {
	if err := s.backend.client.Set(ctx, slotKey(s.clientID, key), value, s.backend.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	return nil
}

func (s *redisSlots) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.backend.client.Del(ctx, s.fullKeys(keys)...).Err(); err != nil {
		return fmt.Errorf("failed to remove slots: %w", err)
	}
	return nil
}
