package cache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/pmurley/afl-trade-bot/internal/models"
)

const (
	poolKey      = "pool"
	poolStatsKey = "pool_stats"
)

// Cache holds the candidate player pool between refreshes
type Cache struct {
	cache    *gocache.Cache
	mu       sync.RWMutex
	duration time.Duration
	loadedAt time.Time
}

func New(duration time.Duration) *Cache {
	return &Cache{
		cache:    gocache.New(duration, duration*2),
		duration: duration,
	}
}

// SetPool stores a copy of the pool and resets its derived stats
func (c *Cache) SetPool(players []models.Player) {
	pool := make([]models.Player, len(players))
	copy(pool, players)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Set(poolKey, pool, c.duration)
	c.cache.Delete(poolStatsKey)
	c.loadedAt = time.Now()
}

// GetPool returns the cached pool. Callers must not mutate the result.
func (c *Cache) GetPool() (models.PlayerList, bool) {
	if players, found := c.cache.Get(poolKey); found {
		return models.PlayerList(players.([]models.Player)), true
	}
	return nil, false
}

// PoolStats memoises Stats for the current pool. The lock keeps a
// concurrent SetPool from having its stats overwritten by the old pool's.
func (c *Cache) PoolStats() (models.Stats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, found := c.cache.Get(poolStatsKey); found {
		return s.(models.Stats), true
	}
	pool, ok := c.GetPool()
	if !ok {
		return models.Stats{}, false
	}
	s := pool.Stats()
	c.cache.Set(poolStatsKey, s, c.duration)
	return s, true
}

// LoadedAt is when the current pool was stored; zero before the first load.
func (c *Cache) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}
