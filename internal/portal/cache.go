package portal

import (
	"strings"
	"sync"
)

const (
	keyDoctors  = "doctors"
	keyBookings = "bookings"
)

func doctorBookingsKey(doctorID string) string {
	return keyBookings + ":" + doctorID
}

// QueryCache holds the last committed result per key. Every fetch takes a
// generation with Begin and may only Commit while that generation is still
// the latest for its key, so a response that was overtaken is dropped.
type QueryCache struct {
	mu          sync.Mutex
	values      map[string]any
	generations map[string]uint64
}

func NewQueryCache() *QueryCache {
	return &QueryCache{
		values:      make(map[string]any),
		generations: make(map[string]uint64),
	}
}

func (c *QueryCache) Begin(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[key]++
	return c.generations[key]
}

// Commit stores value under key and reports whether gen was still current.
func (c *QueryCache) Commit(key string, gen uint64, value any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[key] != gen {
		return false
	}
	c.values[key] = value
	return true
}

func (c *QueryCache) Current(key string, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[key] == gen
}

func (c *QueryCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

// Invalidate drops every entry whose key equals prefix or starts with
// prefix followed by ":". In-flight fetches for those keys are superseded.
func (c *QueryCache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.values {
		if key == prefix || strings.HasPrefix(key, prefix+":") {
			delete(c.values, key)
		}
	}
	for key := range c.generations {
		if key == prefix || strings.HasPrefix(key, prefix+":") {
			c.generations[key]++
		}
	}
}
