package server

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func doc(body string) Document {
	return Document{ContentType: "text/plain", Body: []byte(body)}
}

func TestDocumentCache_GetPut(t *testing.T) {
	cache := NewDocumentCache(10, time.Hour)

	_, ok := cache.Get("page")
	assert.False(t, ok)

	cache.Put("page", doc("<html>"))
	got, ok := cache.Get("page")
	assert.True(t, ok)
	assert.Equal(t, "<html>", string(got.Body))
	assert.Equal(t, "text/plain", got.ContentType)

	_, ok = cache.Get("svg")
	assert.False(t, ok)
}

func TestDocumentCache_TTLExpiration(t *testing.T) {
	cache := NewDocumentCache(10, 50*time.Millisecond)

	cache.Put("svg", doc("<svg>"))
	_, ok := cache.Get("svg")
	assert.True(t, ok)

	time.Sleep(60 * time.Millisecond)
	_, ok = cache.Get("svg")
	assert.False(t, ok)

	cache.mu.RLock()
	_, exists := cache.entries["svg"]
	cache.mu.RUnlock()
	assert.False(t, exists)
}

func TestDocumentCache_NoTTL(t *testing.T) {
	cache := NewDocumentCache(10, 0)
	cache.Put("svg", doc("<svg>"))
	time.Sleep(5 * time.Millisecond)
	_, ok := cache.Get("svg")
	assert.True(t, ok)
}

func TestDocumentCache_LRUEviction(t *testing.T) {
	cache := NewDocumentCache(3, time.Hour)

	cache.Put("a", doc("1"))
	cache.Put("b", doc("2"))
	cache.Put("c", doc("3"))
	cache.Get("a")

	// "b" is now the oldest.
	cache.Put("d", doc("4"))

	_, ok := cache.Get("b")
	assert.False(t, ok)
	for _, key := range []string{"a", "c", "d"} {
		_, ok := cache.Get(key)
		assert.True(t, ok, key)
	}
}

func TestDocumentCache_UpdateInPlace(t *testing.T) {
	cache := NewDocumentCache(2, time.Hour)
	cache.Put("a", doc("1"))
	cache.Put("a", doc("2"))

	got, _ := cache.Get("a")
	assert.Equal(t, "2", string(got.Body))
	assert.Equal(t, 1, cache.Stats().Entries)
}

func TestDocumentCache_Invalidate(t *testing.T) {
	cache := NewDocumentCache(10, time.Hour)
	cache.Put("a", doc("1"))
	cache.Put("b", doc("2"))

	cache.Invalidate()
	assert.Equal(t, 0, cache.Stats().Entries)
	_, ok := cache.Get("a")
	assert.False(t, ok)
}

func TestDocumentCache_Stats(t *testing.T) {
	cache := NewDocumentCache(5, time.Hour)
	cache.Put("a", doc("1"))
	cache.Get("a")
	cache.Get("a")
	cache.Get("missing")

	stats := cache.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, 5, stats.MaxEntries)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 2.0/3.0, stats.HitRate, 1e-9)
}

func TestDocumentCache_ZeroCapacity(t *testing.T) {
	cache := NewDocumentCache(0, time.Hour)
	cache.Put("a", doc("1"))
	cache.Put("b", doc("2"))
	assert.Equal(t, 1, cache.Stats().Entries)
}

func TestDocumentCache_ConcurrentAccess(t *testing.T) {
	cache := NewDocumentCache(50, time.Hour)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := range 100 {
				key := strconv.Itoa((n + j) % 80)
				cache.Put(key, doc(key))
				cache.Get(key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, cache.Stats().Entries, 50)
}
