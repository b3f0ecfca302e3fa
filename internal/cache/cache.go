// Package cache is a small TTL key/value cache on top of Badger.
// Last.fm responses are stored here so repeated enrichment runs stay offline.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Cache wraps a Badger database holding JSON values with expiry.
type Cache struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens (or creates) the cache at path. An empty path keeps the cache in memory.
func Open(path string, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache: %w", err)
	}

	logger.Info("cache opened", "path", path, "in_memory", path == "")
	return &Cache{db: db, logger: logger}, nil
}

// Close flushes and closes the cache.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Ping reports whether the cache can still serve reads.
func (c *Cache) Ping() error {
	if c.db.IsClosed() {
		return errors.New("cache is closed")
	}
	return c.db.View(func(*badger.Txn) error { return nil })
}

// GetJSON decodes the value at key into dest.
// It returns false without error when the key is missing or expired.
func (c *Cache) GetJSON(key string, dest any) (bool, error) {
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v at key. A ttl of zero or less never expires.
func (c *Cache) SetJSON(key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	entry := badger.NewEntry([]byte(key), data)
	if ttl > 0 {
		entry = entry.WithTTL(ttl)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(entry)
	})
}

// Delete removes key. Missing keys are not an error.
func (c *Cache) Delete(key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// DeletePrefix drops every key starting with prefix and returns how many went.
func (c *Cache) DeletePrefix(prefix string) (int, error) {
	var keys [][]byte
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan cache prefix %s: %w", prefix, err)
	}

	wb := c.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return 0, fmt.Errorf("delete cache key: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flush cache deletes: %w", err)
	}

	if len(keys) > 0 {
		c.logger.Debug("cache entries dropped", "prefix", prefix, "count", len(keys))
	}
	return len(keys), nil
}

// Key joins parts into a cache key. Parts are lowercased and trimmed.
func Key(parts ...string) string {
	clean := make([]string, len(parts))
	for i, p := range parts {
		clean[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(clean, ":")
}
