package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const authSessionPrefix = "authsess:"

// RedisSessionStore keeps live auth sessions in Redis so logout can revoke a
// token before its signature expires.
type RedisSessionStore struct {
	redis *redis.Client
}

func NewRedisSessionStore(redisClient *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{redis: redisClient}
}

func (s *RedisSessionStore) Save(ctx context.Context, jti string, userID uuid.UUID, ttl time.Duration) error {
	return s.redis.Set(ctx, authSessionPrefix+jti, userID.String(), ttl).Err()
}

func (s *RedisSessionStore) Lookup(ctx context.Context, jti string) (uuid.UUID, error) {
	val, err := s.redis.Get(ctx, authSessionPrefix+jti).Result()
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(val)
}

func (s *RedisSessionStore) Revoke(ctx context.Context, jti string) error {
	return s.redis.Del(ctx, authSessionPrefix+jti).Err()
}
