package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/task-service/internal/domain"
)

const defaultActiveTokenPrefix = "task-service:active-token:"

// RedisActiveTokenStore keeps the allow-list of issued session tokens in
// Redis. Keys carry no TTL; an entry disappears only on Remove.
type RedisActiveTokenStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisActiveTokenStore constructs the store. An empty prefix selects the default.
func NewRedisActiveTokenStore(client redis.Cmdable, prefix string) *RedisActiveTokenStore {
	if prefix == "" {
		prefix = defaultActiveTokenPrefix
	}
	return &RedisActiveTokenStore{client: client, prefix: prefix}
}

// key addresses a token by its SHA-256 digest so raw tokens never appear in Redis.
func (s *RedisActiveTokenStore) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return s.prefix + hex.EncodeToString(sum[:])
}

// Add records token as active, overwriting any previous entry.
func (s *RedisActiveTokenStore) Add(ctx context.Context, token string) error {
	return s.client.Set(ctx, s.key(token), time.Now().UTC().Format(time.RFC3339Nano), 0).Err()
}

// Exists reports whether token is on the allow-list.
func (s *RedisActiveTokenStore) Exists(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Find returns the stored record, or pgx.ErrNoRows when token is not active,
// matching the Postgres store.
func (s *RedisActiveTokenStore) Find(ctx context.Context, token string) (*domain.ActiveToken, error) {
	val, err := s.client.Get(ctx, s.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, pgx.ErrNoRows
		}
		return nil, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return nil, fmt.Errorf("parse active token timestamp: %w", err)
	}
	return &domain.ActiveToken{Token: token, CreatedAt: createdAt}, nil
}

// Remove deletes token and reports whether it was present.
func (s *RedisActiveTokenStore) Remove(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Del(ctx, s.key(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
