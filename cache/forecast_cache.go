package cache

import (
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"weather-forecast/models"
)

// DefaultFreshness is how long a fetched forecast list is served without refetching
const DefaultFreshness = 10 * time.Minute

// ForecastCache holds the latest forecast list per location identifier
type ForecastCache struct {
	entries        map[string]forecastCacheEntry
	mutex          sync.RWMutex
	freshness      time.Duration
	cacheHitCount  int
	cacheMissCount int
}

// forecastCacheEntry is replaced wholesale on refresh and never mutated
type forecastCacheEntry struct {
	Forecasts []models.Forecast
	FetchedAt time.Time
}

// NewForecastCache creates an empty cache. A non-positive freshness selects DefaultFreshness.
func NewForecastCache(freshness time.Duration) *ForecastCache {
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	return &ForecastCache{
		entries:   make(map[string]forecastCacheEntry),
		freshness: freshness,
	}
}

// Freshness returns the window during which an entry is served
func (c *ForecastCache) Freshness() time.Duration {
	return c.freshness
}

// Lookup returns the forecasts stored for key if they were fetched less than the
// freshness window before now
func (c *ForecastCache) Lookup(key string, now time.Time) ([]models.Forecast, bool) {
	c.mutex.RLock()
	entry, found := c.entries[key]
	c.mutex.RUnlock()

	age := now.Sub(entry.FetchedAt)
	if found && age < c.freshness {
		c.mutex.Lock()
		c.cacheHitCount++
		c.mutex.Unlock()

		log.Debug().
			Str("location", key).
			Dur("age", age.Round(time.Second)).
			Msg("forecast cache hit")

		return slices.Clone(entry.Forecasts), true
	}

	c.mutex.Lock()
	c.cacheMissCount++
	c.mutex.Unlock()

	log.Debug().
		Str("location", key).
		Bool("stale", found).
		Msg("forecast cache miss")

	return nil, false
}

// Store replaces any entry for key with forecasts fetched at now
func (c *ForecastCache) Store(key string, now time.Time, forecasts []models.Forecast) {
	c.mutex.Lock()
	c.entries[key] = forecastCacheEntry{
		Forecasts: slices.Clone(forecasts),
		FetchedAt: now,
	}
	c.mutex.Unlock()
}

// Len returns the number of locations with an entry, fresh or stale
func (c *ForecastCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}

// CacheStats returns statistics about cache hits and misses
func (c *ForecastCache) CacheStats() (hits, misses int) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.cacheHitCount, c.cacheMissCount
}
