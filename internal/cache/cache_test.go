package cache

import (
	"strings"
	"testing"
	"time"

	"faqgen/internal/kv"
	"faqgen/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCache(t *testing.T, maxBytes int64) *AnswerCache {
	t.Helper()
	return New(kv.NewMemoryStore(maxBytes), 24*time.Hour, 7*24*time.Hour, zap.NewNop())
}

func TestKeyDeterministic(t *testing.T) {
	questions := []string{"Как оплатить?", "Как отменить?"}

	first := Key("source text", questions)
	second := Key("source text", questions)

	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "faq-cache-"))
}

func TestKeySensitivity(t *testing.T) {
	questions := []string{"a?", "b?"}

	base := Key("text", questions)

	assert.NotEqual(t, base, Key("other text", questions))
	assert.NotEqual(t, base, Key("text", []string{"b?", "a?"}))
	assert.NotEqual(t, base, Key("text", []string{"a?"}))
}

func TestPutGetRoundTrip(t *testing.T) {
	c := newCache(t, 0)
	answers := []models.GeneratedFAQ{
		{Question: "Как оплатить?", Answer: "Через раздел «Платежи»."},
		{Question: "Как отменить?", Answer: "Обратитесь в поддержку."},
	}
	key := Key("source", []string{"Как оплатить?", "Как отменить?"})

	c.Put(key, answers)

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, answers, got)
}

func TestGetMiss(t *testing.T) {
	c := newCache(t, 0)

	_, ok := c.Get(Key("never stored", nil))
	assert.False(t, ok)
}

func TestGetExpiredEntryRemoved(t *testing.T) {
	store := kv.NewMemoryStore(0)
	c := New(store, 24*time.Hour, 7*24*time.Hour, zap.NewNop())

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	key := Key("src", []string{"q?"})
	c.Put(key, []models.GeneratedFAQ{{Question: "q?", Answer: "a"}})

	// just inside the fresh window
	c.now = func() time.Time { return base.Add(24*time.Hour - time.Second) }
	_, ok := c.Get(key)
	assert.True(t, ok)

	// just past the fresh window
	c.now = func() time.Time { return base.Add(24*time.Hour + time.Second) }
	_, ok = c.Get(key)
	assert.False(t, ok)

	// the expired entry was removed, not just skipped
	_, present, err := store.Get(key)
	require.NoError(t, err)
	assert.False(t, present)
}

func TestGetRemovesCorruptEntry(t *testing.T) {
	store := kv.NewMemoryStore(0)
	c := New(store, 24*time.Hour, 7*24*time.Hour, zap.NewNop())

	key := Key("src", []string{"q?"})
	require.NoError(t, store.Set(key, []byte("{not json")))

	_, ok := c.Get(key)
	assert.False(t, ok)

	_, present, err := store.Get(key)
	require.NoError(t, err)
	assert.False(t, present)
}

func TestPutQuotaTriggersGCAndRetry(t *testing.T) {
	store := kv.NewMemoryStore(300)
	c := New(store, 24*time.Hour, 7*24*time.Hour, zap.NewNop())

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base.Add(-8 * 24 * time.Hour) }

	staleKey := Key("old source", []string{"old?"})
	c.Put(staleKey, []models.GeneratedFAQ{{Question: "old?", Answer: strings.Repeat("x", 150)}})

	c.now = func() time.Time { return base }
	freshKey := Key("new source", []string{"new?"})
	c.Put(freshKey, []models.GeneratedFAQ{{Question: "new?", Answer: strings.Repeat("y", 150)}})

	_, ok := c.Get(freshKey)
	assert.True(t, ok, "write should succeed after GC frees the stale entry")

	_, present, err := store.Get(staleKey)
	require.NoError(t, err)
	assert.False(t, present)
}

func TestPutQuotaDropsSilentlyWhenGCCannotHelp(t *testing.T) {
	store := kv.NewMemoryStore(50)
	c := New(store, 24*time.Hour, 7*24*time.Hour, zap.NewNop())

	key := Key("src", []string{"q?"})
	c.Put(key, []models.GeneratedFAQ{{Question: "q?", Answer: strings.Repeat("x", 500)}})

	_, ok := c.Get(key)
	assert.False(t, ok)
}

func TestGCRemovesOnlyStaleEntries(t *testing.T) {
	store := kv.NewMemoryStore(0)
	c := New(store, 24*time.Hour, 7*24*time.Hour, zap.NewNop())

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	c.now = func() time.Time { return base.Add(-8 * 24 * time.Hour) }
	staleKey := Key("stale", []string{"q?"})
	c.Put(staleKey, []models.GeneratedFAQ{{Question: "q?", Answer: "a"}})

	c.now = func() time.Time { return base.Add(-2 * 24 * time.Hour) }
	agedKey := Key("aged but within gc ttl", []string{"q?"})
	c.Put(agedKey, []models.GeneratedFAQ{{Question: "q?", Answer: "a"}})

	c.now = func() time.Time { return base }
	removed, err := c.GC()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, present, err := store.Get(agedKey)
	require.NoError(t, err)
	assert.True(t, present)
}

func TestClear(t *testing.T) {
	c := newCache(t, 0)

	c.Put(Key("a", nil), []models.GeneratedFAQ{{Question: "a?", Answer: "1"}})
	c.Put(Key("b", nil), []models.GeneratedFAQ{{Question: "b?", Answer: "2"}})

	removed, err := c.Clear()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	stats, err := c.CollectStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Entries)
}

func TestCollectStats(t *testing.T) {
	store := kv.NewMemoryStore(0)
	c := New(store, 24*time.Hour, 7*24*time.Hour, zap.NewNop())

	early := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(48 * time.Hour)

	c.now = func() time.Time { return early }
	c.Put(Key("first", nil), []models.GeneratedFAQ{{Question: "1?", Answer: "a"}})

	c.now = func() time.Time { return late }
	c.Put(Key("second", nil), []models.GeneratedFAQ{{Question: "2?", Answer: "b"}})

	stats, err := c.CollectStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries)
	assert.Greater(t, stats.TotalSize, int64(0))
	assert.True(t, stats.Oldest.Equal(early))
	assert.True(t, stats.Newest.Equal(late))
}
