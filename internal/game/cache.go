package game

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Catalog is a read-through cache in front of the game repository. A nil
// Redis client degrades to direct database reads, so the platform keeps
// serving bets when Redis is down.
type Catalog struct {
	repo Repository
	rdb  *redis.Client
	ttl  time.Duration
}

func NewCatalog(repo Repository, rdb *redis.Client, ttl time.Duration) *Catalog {
	return &Catalog{repo: repo, rdb: rdb, ttl: ttl}
}

func cacheKey(id uint64) string {
	return fmt.Sprintf("game:%d", id)
}

func (c *Catalog) GetGame(ctx context.Context, id uint64) (*Game, error) {
	if c.rdb == nil {
		return c.repo.GetByID(ctx, id)
	}

	key := cacheKey(id)
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var g Game
		if err := json.Unmarshal(data, &g); err == nil {
			return &g, nil
		}
		// fall through on a corrupt cache entry
	} else if err != redis.Nil {
		logrus.WithError(err).WithField("game_id", id).Warn("game cache read failed")
	}

	g, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(g); err == nil {
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			logrus.WithError(err).WithField("game_id", id).Warn("game cache write failed")
		}
	}
	return g, nil
}

// Invalidate drops a cached game, called after catalog mutations.
func (c *Catalog) Invalidate(ctx context.Context, id uint64) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, cacheKey(id)).Err(); err != nil {
		logrus.WithError(err).WithField("game_id", id).Warn("game cache invalidation failed")
	}
}
