package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xeppelin/user-service/internal/domain"
)

const (
	idKeyPrefix    = "user:id:"
	emailKeyPrefix = "user:email:"
	phoneKeyPrefix = "user:phone:"
)

// UserCache stores user aggregates in Redis keyed by id, email and phone
// number. All operations are best-effort: cache failures degrade to misses
// and never surface to callers.
type UserCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewUserCache builds a cache with the given entry TTL.
func NewUserCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *UserCache {
	return &UserCache{client: client, ttl: ttl, logger: logger}
}

// GetByID returns the cached user for the id, if present.
func (c *UserCache) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, bool) {
	return c.get(ctx, idKeyPrefix+id.String())
}

// GetByEmail returns the cached user for the email, if present.
func (c *UserCache) GetByEmail(ctx context.Context, email string) (*domain.User, bool) {
	return c.get(ctx, emailKeyPrefix+email)
}

// GetByPhoneNumber returns the cached user for the phone number, if present.
func (c *UserCache) GetByPhoneNumber(ctx context.Context, phoneNumber string) (*domain.User, bool) {
	return c.get(ctx, phoneKeyPrefix+phoneNumber)
}

// Put stores the user under all of its lookup keys.
func (c *UserCache) Put(ctx context.Context, user domain.User) {
	if c == nil || c.client == nil {
		return
	}
	payload, err := json.Marshal(user)
	if err != nil {
		c.logger.Debug("cache marshal failed", zap.Error(err))
		return
	}
	for _, key := range cacheKeys(user) {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Debug("cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// Evict removes the user from all of its lookup keys.
func (c *UserCache) Evict(ctx context.Context, user domain.User) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, cacheKeys(user)...).Err(); err != nil {
		c.logger.Debug("cache evict failed", zap.Error(err))
	}
}

// EvictByID removes only the id key. Used when the full aggregate is not
// known at eviction time.
func (c *UserCache) EvictByID(ctx context.Context, id uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, idKeyPrefix+id.String()).Err(); err != nil {
		c.logger.Debug("cache evict failed", zap.String("id", id.String()), zap.Error(err))
	}
}

func (c *UserCache) get(ctx context.Context, key string) (*domain.User, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var user domain.User
	if err := json.Unmarshal(payload, &user); err != nil {
		c.logger.Debug("cache unmarshal failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &user, true
}

func cacheKeys(user domain.User) []string {
	keys := []string{
		idKeyPrefix + user.ID.String(),
		emailKeyPrefix + user.Email,
	}
	if user.Address != nil && user.Address.PhoneNumber != "" {
		keys = append(keys, phoneKeyPrefix+user.Address.PhoneNumber)
	}
	return keys
}
