package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"time"

	"faqgen/internal/kv"
	"faqgen/internal/models"

	"go.uber.org/zap"
)

const keyPrefix = "faq-cache-"

// entry is the stored representation of one cached generation result.
type entry struct {
	Data      []models.GeneratedFAQ `json:"data"`
	CreatedAt time.Time             `json:"created_at"`
}

// Stats summarizes the cache contents.
type Stats struct {
	Entries   int
	TotalSize int64
	Oldest    time.Time
	Newest    time.Time
}

// Key derives the deterministic cache key for a (sourceText, questions) pair.
// The key is order-sensitive in questions, since prompts are order-sensitive.
func Key(sourceText string, questions []string) string {
	return keyPrefix + hash36(sourceText) + "-" + hash36(strings.Join(questions, "|||"))
}

// hash36 is a 32-bit FNV-1a digest rendered in base36 for compact keys.
func hash36(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return strconv.FormatUint(uint64(h.Sum32()), 36)
}

// AnswerCache stores generated answers keyed by their input, with a fresh TTL
// for reads and a longer GC TTL for garbage collection. Writes that hit the
// store quota trigger one GC pass and one retry; a write that still fails is
// dropped, since the cache is an optimization, not a system of record.
type AnswerCache struct {
	store    kv.Store
	freshTTL time.Duration
	gcTTL    time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func New(store kv.Store, freshTTL, gcTTL time.Duration, logger *zap.Logger) *AnswerCache {
	return &AnswerCache{
		store:    store,
		freshTTL: freshTTL,
		gcTTL:    gcTTL,
		now:      time.Now,
		logger:   logger,
	}
}

// Get returns the cached answers for key, or (nil, false) on a miss. Entries
// past the fresh TTL and entries that fail to decode are removed on read.
func (c *AnswerCache) Get(key string) ([]models.GeneratedFAQ, bool) {
	raw, ok, err := c.store.Get(key)
	if err != nil {
		c.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		c.logger.Debug("Cache miss", zap.String("key", key))
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		c.logger.Warn("Removing corrupt cache entry", zap.String("key", key), zap.Error(err))
		if rmErr := c.store.Remove(key); rmErr != nil {
			c.logger.Warn("Failed to remove corrupt cache entry", zap.String("key", key), zap.Error(rmErr))
		}
		return nil, false
	}

	age := c.now().Sub(e.CreatedAt)
	if age > c.freshTTL {
		c.logger.Info("Cache entry expired",
			zap.String("key", key),
			zap.Duration("age", age),
		)
		if err := c.store.Remove(key); err != nil {
			c.logger.Warn("Failed to remove expired cache entry", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	c.logger.Info("Cache hit",
		zap.String("key", key),
		zap.Duration("age", age),
		zap.Int("answers", len(e.Data)),
	)
	return e.Data, true
}

// Put stores answers under key. On quota exhaustion it runs one GC pass and
// retries once; a persistent failure is logged and swallowed.
func (c *AnswerCache) Put(key string, answers []models.GeneratedFAQ) {
	raw, err := json.Marshal(entry{Data: answers, CreatedAt: c.now()})
	if err != nil {
		c.logger.Warn("Failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}

	err = c.store.Set(key, raw)
	if errors.Is(err, kv.ErrCapacityExceeded) {
		c.logger.Info("Cache quota exceeded, collecting stale entries", zap.String("key", key))
		if _, gcErr := c.GC(); gcErr != nil {
			c.logger.Warn("Cache GC failed", zap.Error(gcErr))
		}
		err = c.store.Set(key, raw)
	}
	if err != nil {
		c.logger.Warn("Failed to cache answers", zap.String("key", key), zap.Error(err))
		return
	}

	c.logger.Info("Cached answers",
		zap.String("key", key),
		zap.Int("answers", len(answers)),
		zap.Int("bytes", len(raw)),
	)
}

// GC removes entries older than the GC TTL and corrupt entries. It returns
// the number of entries removed.
func (c *AnswerCache) GC() (int, error) {
	keys, err := c.store.Keys()
	if err != nil {
		return 0, fmt.Errorf("failed to list cache keys: %w", err)
	}

	now := c.now()
	removed := 0
	for _, key := range keys {
		if !strings.HasPrefix(key, keyPrefix) {
			continue
		}

		raw, ok, err := c.store.Get(key)
		if err != nil || !ok {
			continue
		}

		var e entry
		stale := json.Unmarshal(raw, &e) != nil || now.Sub(e.CreatedAt) > c.gcTTL
		if !stale {
			continue
		}
		if err := c.store.Remove(key); err != nil {
			c.logger.Warn("Failed to remove stale cache entry", zap.String("key", key), zap.Error(err))
			continue
		}
		removed++
	}

	if removed > 0 {
		c.logger.Info("Cache GC complete", zap.Int("removed", removed))
	}
	return removed, nil
}

// Clear removes every cache entry regardless of age.
func (c *AnswerCache) Clear() (int, error) {
	keys, err := c.store.Keys()
	if err != nil {
		return 0, fmt.Errorf("failed to list cache keys: %w", err)
	}

	removed := 0
	for _, key := range keys {
		if !strings.HasPrefix(key, keyPrefix) {
			continue
		}
		if err := c.store.Remove(key); err != nil {
			c.logger.Warn("Failed to remove cache entry", zap.String("key", key), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}

// CollectStats walks the cache and reports entry count, total size, and the
// creation-time range.
func (c *AnswerCache) CollectStats() (Stats, error) {
	keys, err := c.store.Keys()
	if err != nil {
		return Stats{}, fmt.Errorf("failed to list cache keys: %w", err)
	}

	var stats Stats
	for _, key := range keys {
		if !strings.HasPrefix(key, keyPrefix) {
			continue
		}

		raw, ok, err := c.store.Get(key)
		if err != nil || !ok {
			continue
		}

		var e entry
		if json.Unmarshal(raw, &e) != nil {
			continue
		}

		stats.Entries++
		stats.TotalSize += int64(len(raw))
		if stats.Oldest.IsZero() || e.CreatedAt.Before(stats.Oldest) {
			stats.Oldest = e.CreatedAt
		}
		if e.CreatedAt.After(stats.Newest) {
			stats.Newest = e.CreatedAt
		}
	}
	return stats, nil
}
