package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const consumeRefreshScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

var consumeRefreshLua = redis.NewScript(consumeRefreshScript)

// RedisRefreshTokenStorage stores one key per user: <prefix><userId> -> tokenId.
type RedisRefreshTokenStorage struct {
	client    redis.UniversalClient
	prefix    string
	ttl       time.Duration
	opTimeout time.Duration
}

func NewRedisRefreshTokenStorage(client redis.UniversalClient, prefix string, ttl, opTimeout time.Duration) *RedisRefreshTokenStorage {
	if opTimeout <= 0 {
		opTimeout = 2 * time.Second
	}
	return &RedisRefreshTokenStorage{
		client:    client,
		prefix:    prefix,
		ttl:       ttl,
		opTimeout: opTimeout,
	}
}

func (s *RedisRefreshTokenStorage) key(userID string) string {
	return s.prefix + userID
}

func (s *RedisRefreshTokenStorage) Insert(ctx context.Context, userID, tokenID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key(userID), tokenID, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store refresh token id: %w", err)
	}
	return nil
}

func (s *RedisRefreshTokenStorage) Validate(ctx context.Context, userID, tokenID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	stored, err := s.client.Get(ctx, s.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read refresh token id: %w", err)
	}
	return stored == tokenID, nil
}

func (s *RedisRefreshTokenStorage) Invalidate(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete refresh token id: %w", err)
	}
	return nil
}

func (s *RedisRefreshTokenStorage) Consume(ctx context.Context, userID, tokenID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	deleted, err := consumeRefreshLua.Run(ctx, s.client, []string{s.key(userID)}, tokenID).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to consume refresh token id: %w", err)
	}
	return deleted == 1, nil
}
