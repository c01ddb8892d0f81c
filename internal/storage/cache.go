package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"payout-sync/internal/models"
	"payout-sync/internal/redis"
)

const (
	keyPayouts          = "cache:payouts"
	keyPayoutsUpdatedAt = "cache:payouts:updated_at"
	keyProfile          = "cache:profile"
	keyProfileUpdatedAt = "cache:profile:updated_at"
)

// Cache is the local store for the last known payout list and account
// profile. Two independent slots, each with an epoch-millis stamp of
// its last successful refresh. Saves overwrite wholesale; reads of a
// missing or corrupt slot come back empty, never as an error: a bad
// cache degrades to "no data", it does not break the caller.
type Cache struct {
	log *slog.Logger
	rdb *redis.Client
}

func NewCache(log *slog.Logger, rdb *redis.Client) *Cache {
	return &Cache{log: log, rdb: rdb}
}

func (c *Cache) SavePayouts(ctx context.Context, payouts []models.Payout) error {
	data, err := json.Marshal(payouts)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, keyPayouts, data, 0); err != nil {
		return err
	}
	return c.stamp(ctx, keyPayoutsUpdatedAt)
}

// LoadPayouts returns the cached list and its stamp. nil, nil when the
// slot is empty or unreadable.
func (c *Cache) LoadPayouts(ctx context.Context) ([]models.Payout, *time.Time) {
	raw, err := c.rdb.Get(ctx, keyPayouts)
	if err != nil || raw == "" {
		return nil, nil
	}
	var payouts []models.Payout
	if err := json.Unmarshal([]byte(raw), &payouts); err != nil {
		c.log.Warn("payout_cache_corrupt", "error", err)
		return nil, nil
	}
	if len(payouts) == 0 {
		return nil, nil
	}
	return payouts, c.readStamp(ctx, keyPayoutsUpdatedAt)
}

func (c *Cache) ClearPayouts(ctx context.Context) error {
	return c.rdb.Del(ctx, keyPayouts, keyPayoutsUpdatedAt)
}

func (c *Cache) SaveProfile(ctx context.Context, user models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, keyProfile, data, 0); err != nil {
		return err
	}
	return c.stamp(ctx, keyProfileUpdatedAt)
}

// LoadProfile returns the cached profile and its stamp, or nil, nil.
func (c *Cache) LoadProfile(ctx context.Context) (*models.User, *time.Time) {
	raw, err := c.rdb.Get(ctx, keyProfile)
	if err != nil || raw == "" {
		return nil, nil
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		c.log.Warn("profile_cache_corrupt", "error", err)
		return nil, nil
	}
	return &user, c.readStamp(ctx, keyProfileUpdatedAt)
}

func (c *Cache) ClearProfile(ctx context.Context) error {
	return c.rdb.Del(ctx, keyProfile, keyProfileUpdatedAt)
}

func (c *Cache) stamp(ctx context.Context, key string) error {
	millis := time.Now().UnixMilli()
	return c.rdb.Set(ctx, key, strconv.FormatInt(millis, 10), 0)
}

func (c *Cache) readStamp(ctx context.Context, key string) *time.Time {
	raw, err := c.rdb.Get(ctx, key)
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("cache_stamp_read_failed", "key", key, "error", err)
		}
		return nil
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	t := time.UnixMilli(millis).UTC()
	return &t
}
