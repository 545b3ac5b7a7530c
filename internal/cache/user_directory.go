package cache

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/repository"
)

const usernameKeyPrefix = "username:"

// UserDirectory resolves a user id to a display name. The second return
// value reports whether the user exists.
type UserDirectory interface {
	Username(ctx context.Context, userID string) (string, bool, error)
}

// RedisUserDirectory caches username lookups in Redis in front of the user
// repository. Usernames are effectively immutable here, so a short TTL is
// only insurance for manual data fixes.
type RedisUserDirectory struct {
	users  repository.UserRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisUserDirectory constructs the directory.
func NewRedisUserDirectory(users repository.UserRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisUserDirectory {
	return &RedisUserDirectory{users: users, client: client, ttl: ttl, logger: logger}
}

// Username resolves a user's display name, consulting the cache first.
func (d *RedisUserDirectory) Username(ctx context.Context, userID string) (string, bool, error) {
	key := usernameKeyPrefix + userID

	if d.client != nil {
		cached, err := d.client.Get(ctx, key).Result()
		switch {
		case err == nil:
			return cached, true, nil
		case !errors.Is(err, redis.Nil):
			d.logger.Warn("username cache read failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	user, err := d.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}

	if d.client != nil {
		if err := d.client.Set(ctx, key, user.Username, d.ttl).Err(); err != nil {
			d.logger.Warn("username cache write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return user.Username, true, nil
}
