package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Yiling-J/theine-go"
	"github.com/rs/zerolog"
)

// NewTheineCache creates a theine backed cache. The name identifies the cache
// in logs.
func NewTheineCache[K KeyString, V any](name string, config *Config) (Cache[K, V], error) {
	built, err := theine.NewBuilder[K, V](config.MaxEntries).Build()
	if err != nil {
		return nil, err
	}

	tc := &theineCache[K, V]{
		name:       name,
		cache:      built,
		defaultTTL: config.DefaultTTL,
		maxEntries: config.MaxEntries,
		metrics:    theineMetrics[K, V]{cache: built},
	}
	return tc, nil
}

type theineCache[K KeyString, V any] struct {
	name       string
	cache      *theine.Cache[K, V]
	defaultTTL time.Duration
	maxEntries int64
	closed     sync.Once
	metrics    theineMetrics[K, V]
}

func (tc *theineCache[K, V]) Get(key K) (V, bool) {
	return tc.cache.Get(key)
}

func (tc *theineCache[K, V]) Set(key K, value V) bool {
	tc.metrics.entriesAdded.Add(1)
	if tc.defaultTTL <= 0 {
		return tc.cache.Set(key, value, 1)
	}
	return tc.cache.SetWithTTL(key, value, 1, tc.defaultTTL)
}

func (tc *theineCache[K, V]) Close() {
	tc.closed.Do(tc.cache.Close)
}

func (tc *theineCache[K, V]) GetMetrics() Metrics { return &tc.metrics }

func (tc *theineCache[K, V]) MarshalZerologObject(e *zerolog.Event) {
	e.Bool("theine", true).
		Str("name", tc.name).
		Int("entries", tc.cache.Len()).
		Int64("maxEntries", tc.maxEntries).
		Dur("defaultTTL", tc.defaultTTL)
}

type theineMetrics[K KeyString, V any] struct {
	entriesAdded atomic.Uint64
	cache        *theine.Cache[K, V]
}

func (tm *theineMetrics[K, V]) EntriesAdded() uint64 { return tm.entriesAdded.Load() }
func (tm *theineMetrics[K, V]) Hits() uint64         { return tm.cache.Stats().Hits() }
func (tm *theineMetrics[K, V]) Misses() uint64       { return tm.cache.Stats().Misses() }
