package cache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble/v2"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/singleflight"
)

// headerSize is the stored-at timestamp prefix of every value.
const headerSize = 8

// Cache is a persistent key/value cache of API responses, backed by pebble.
type Cache struct {
	db    *pebble.DB
	group singleflight.Group
	now   func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
	stores atomic.Int64
	bytes  atomic.Int64
}

// New opens (or creates) the cache stored in dir.
func New(dir string) (*Cache, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache at %s: %w", dir, err)
	}
	return &Cache{db: db, now: time.Now}, nil
}

// Get returns the value stored under key if it is younger than ttl. Otherwise it calls
// fetch, stores the result and returns it. Concurrent calls for the same key share one
// fetch. A ttl <= 0 disables reads but still stores the fetched value.
func (c *Cache) Get(key string, ttl time.Duration, fetch func() ([]byte, error)) ([]byte, error) {
	if ttl > 0 {
		value, ok, err := c.lookup(key, ttl)
		if err != nil {
			return nil, err
		}
		if ok {
			c.hits.Add(1)
			return value, nil
		}
	}
	c.misses.Add(1)

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		value, err := fetch()
		if err != nil {
			return nil, err
		}
		if err := c.store(key, value); err != nil {
			return nil, err
		}
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Invalidate removes key from the cache.
func (c *Cache) Invalidate(key string) error {
	if err := c.db.Delete([]byte(key), pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// GetMetrics returns a human readable summary of cache activity.
func (c *Cache) GetMetrics() string {
	return fmt.Sprintf("  hits: %s\n  misses: %s\n  stored: %s (%s)",
		humanize.Comma(c.hits.Load()),
		humanize.Comma(c.misses.Load()),
		humanize.Comma(c.stores.Load()),
		humanize.Bytes(uint64(c.bytes.Load())))
}

func (c *Cache) lookup(key string, ttl time.Duration) ([]byte, bool, error) {
	raw, closer, err := c.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	defer closer.Close()

	if len(raw) < headerSize {
		return nil, false, nil
	}
	storedAt := time.Unix(0, int64(binary.BigEndian.Uint64(raw[:headerSize])))
	if c.now().Sub(storedAt) >= ttl {
		return nil, false, nil
	}

	// raw is only valid until closer is closed
	value := make([]byte, len(raw)-headerSize)
	copy(value, raw[headerSize:])
	return value, true, nil
}

func (c *Cache) store(key string, value []byte) error {
	buf := make([]byte, headerSize+len(value))
	binary.BigEndian.PutUint64(buf[:headerSize], uint64(c.now().UnixNano()))
	copy(buf[headerSize:], value)

	if err := c.db.Set([]byte(key), buf, pebble.Sync); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	c.stores.Add(1)
	c.bytes.Add(int64(len(value)))
	return nil
}
