package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gymboard/booking-service/config"
	"github.com/gymboard/booking-service/internal/model"
	cb "github.com/gymboard/booking-service/pkg/circuit_breaker"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Circuit breaker settings for the redis round trips. An unreachable
// redis must not add a dial timeout to every slot-status read.
const (
	cbRecordLength     = 20
	cbTimeout          = 5 * time.Second
	cbPercentile       = 0.5
	cbRecoveryRequests = 5
)

// Cache is a read-through cache for slot-status lookups. Entries are
// advisory only: the authoritative capacity check at reservation time
// never consults it. A nil *Cache disables caching entirely.
type Cache struct {
	rdb     *redis.Client
	ttl     time.Duration
	breaker cb.CircuitBreaker
	log     *zap.Logger
}

func New(cfg config.Redis, log *zap.Logger) *Cache {
	if !cfg.Enabled {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Cache{
		rdb:     rdb,
		ttl:     cfg.TTL,
		breaker: cb.New(cbRecordLength, cbTimeout, cbPercentile, cbRecoveryRequests),
		log:     log.Named("cache"),
	}
}

func slotKey(sectionID string, date model.Date, bt model.BookingType) string {
	return fmt.Sprintf("slots:%s:%s:%s", sectionID, date, bt)
}

func (c *Cache) GetSlotStatus(ctx context.Context, sectionID string, date model.Date, bt model.BookingType) (model.SlotStatus, bool) {
	if c == nil {
		return model.SlotStatus{}, false
	}
	var status model.SlotStatus
	found := false
	err := c.breaker.Call(func() error {
		raw, err := c.rdb.Get(ctx, slotKey(sectionID, date, bt)).Bytes()
		if err == redis.Nil {
			return nil // miss, not a redis failure
		}
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &status); err == nil {
			found = true
		}
		return nil
	})
	if err != nil {
		return model.SlotStatus{}, false
	}
	return status, found
}

func (c *Cache) SetSlotStatus(ctx context.Context, sectionID string, date model.Date, bt model.BookingType, status model.SlotStatus) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(status)
	if err != nil {
		return
	}
	err = c.breaker.Call(func() error {
		return c.rdb.Set(ctx, slotKey(sectionID, date, bt), raw, c.ttl).Err()
	})
	if err != nil {
		c.log.Warn("cache set", zap.Error(err))
	}
}

// InvalidateSection drops every cached slot status for the section.
func (c *Cache) InvalidateSection(ctx context.Context, sectionID string) {
	if c == nil {
		return
	}
	err := c.breaker.Call(func() error {
		iter := c.rdb.Scan(ctx, 0, fmt.Sprintf("slots:%s:*", sectionID), 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return err
		}
		if len(keys) == 0 {
			return nil
		}
		return c.rdb.Del(ctx, keys...).Err()
	})
	if err != nil {
		c.log.Warn("cache invalidate", zap.Error(err))
	}
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
