package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/ride-weather-dashboard/internal/weather"
)

var (
	// ErrNotFound is returned when no fresh forecast is cached under a key.
	ErrNotFound = errors.New("no cached forecast for key")
)

type entry struct {
	forecast weather.HourlyForecast
	storedAt time.Time
}

// ForecastCache is a concurrency-safe in-memory cache of provider responses.
type ForecastCache struct {
	mu sync.RWMutex

	data map[string]entry

	// retention configuration
	ttl        time.Duration // entries older than this are treated as missing
	maxEntries int           // oldest entries are evicted beyond this count

	now func() time.Time
}

// NewForecastCache creates a new ForecastCache.
// If ttl or maxEntries is <= 0, that limit is not enforced.
func NewForecastCache(ttl time.Duration, maxEntries int) *ForecastCache {
	return &ForecastCache{
		data:       make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the forecast stored under key if it has not expired.
func (c *ForecastCache) Get(key string) (weather.HourlyForecast, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.data[key]
	if !ok || c.expired(e) {
		return weather.HourlyForecast{}, ErrNotFound
	}
	return e.forecast, nil
}

// Set stores forecast under key and enforces the entry limit.
func (c *ForecastCache) Set(key string, forecast weather.HourlyForecast) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = entry{forecast: forecast, storedAt: c.now()}

	if c.maxEntries > 0 && len(c.data) > c.maxEntries {
		c.evictOldestLocked(len(c.data) - c.maxEntries)
	}
}

// Purge drops expired entries and returns how many were removed.
func (c *ForecastCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.data {
		if c.expired(e) {
			delete(c.data, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries currently held, expired or not.
func (c *ForecastCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

func (c *ForecastCache) expired(e entry) bool {
	return c.ttl > 0 && c.now().Sub(e.storedAt) >= c.ttl
}

func (c *ForecastCache) evictOldestLocked(n int) {
	for ; n > 0; n-- {
		var (
			oldestKey string
			oldestAt  time.Time
			found     bool
		)
		for key, e := range c.data {
			if !found || e.storedAt.Before(oldestAt) {
				oldestKey, oldestAt, found = key, e.storedAt, true
			}
		}
		if !found {
			return
		}
		delete(c.data, oldestKey)
	}
}
