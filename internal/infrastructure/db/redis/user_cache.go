package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sirpyerre/transactions-api/internal/core/domain"
	"github.com/sirpyerre/transactions-api/internal/core/ports"
)

const defaultUserTTL = 10 * time.Minute

// UserCache stores user profiles (never password hashes) in Redis.
// Key format: user:<id>
type UserCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ ports.UserCache = (*UserCache)(nil)

// NewUserCache wraps client. A non-positive ttl falls back to defaultUserTTL.
func NewUserCache(client redis.Cmdable, ttl time.Duration) *UserCache {
	if ttl <= 0 {
		ttl = defaultUserTTL
	}
	return &UserCache{client: client, ttl: ttl}
}

type cachedUser struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Get returns (nil, nil) on a cache miss.
func (c *UserCache) Get(ctx context.Context, id int64) (*domain.User, error) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("user cache get: %w", err)
	}

	var cu cachedUser
	if err := json.Unmarshal(raw, &cu); err != nil {
		return nil, fmt.Errorf("user cache decode: %w", err)
	}
	return &domain.User{ID: cu.ID, Email: cu.Email, Role: cu.Role, CreatedAt: cu.CreatedAt}, nil
}

func (c *UserCache) Set(ctx context.Context, u *domain.User) error {
	raw, err := json.Marshal(cachedUser{ID: u.ID, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt})
	if err != nil {
		return fmt.Errorf("user cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(u.ID), raw, c.ttl).Err()
}

func (c *UserCache) key(id int64) string {
	return fmt.Sprintf("user:%d", id)
}
