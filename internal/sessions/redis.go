package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coursepath/backend/internal/player"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "learn:session:"

// RedisStore keeps sessions in Redis as JSON with a TTL.
// Replace is a WATCH/MULTI compare-and-swap on the stored version.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedisStore wraps a connected client
func NewRedisStore(rdb redis.UniversalClient) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: defaultKeyPrefix}
}

// Connect creates a client for addr and checks it answers
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

// Get returns the session stored under id
func (s *RedisStore) Get(ctx context.Context, id string) (player.State, error) {
	return s.get(ctx, s.rdb, id)
}

func (s *RedisStore) get(ctx context.Context, c redis.Cmdable, id string) (player.State, error) {
	data, err := c.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return player.State{}, ErrNotFound
	}
	if err != nil {
		return player.State{}, fmt.Errorf("failed to get session: %w", err)
	}

	var state player.State
	if err := json.Unmarshal(data, &state); err != nil {
		return player.State{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return state, nil
}

// Create stores a new session
func (s *RedisStore) Create(ctx context.Context, id string, state player.State, ttl time.Duration) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	ok, err := s.rdb.SetNX(ctx, s.key(id), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	if !ok {
		return ErrExists
	}
	return nil
}

// Replace stores state if the stored session still has expectedVersion and
// extends its lifetime
func (s *RedisStore) Replace(ctx context.Context, id string, expectedVersion int64, state player.State, ttl time.Duration) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	key := s.key(id)
	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := s.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if current.Version != expectedVersion {
			return ErrConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, ttl)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return ErrConflict
	case errors.Is(err, ErrConflict), errors.Is(err, ErrNotFound):
		return err
	default:
		return fmt.Errorf("failed to replace session: %w", err)
	}
}

// Delete removes a session
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
