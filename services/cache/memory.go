package cachesvc

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
)

type memEntry struct {
	val       []byte
	expiresAt time.Time // zero: never
}

// MemoryCache is a process-local core.Cache, used when redis is not configured.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memEntry
	now     func() time.Time
}

var _ core.Cache = (*MemoryCache)(nil)

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memEntry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		_ = c.Delete(context.Background(), key)
		return false, nil
	}
	if err := json.Unmarshal(entry.val, dest); err != nil {
		return false, errors.Wrap(err, "decoding "+key)
	}
	return true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, val interface{}, ttl time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return errors.Wrap(err, "encoding "+key)
	}
	entry := memEntry{val: data}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return nil
}

// New returns a redis cache when an address is configured, a MemoryCache otherwise.
func New(conf core.RedisConfig) core.Cache {
	if conf.Address == "" {
		return NewMemoryCache()
	}
	return NewRedisCache(conf)
}
