// Package cache defines small in-process caches with time-bounded entries,
// such as the schema-name-by-context cache.
package cache

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

// KeyString is an interface for keys that can be converted to strings.
type KeyString interface {
	comparable
	KeyString() string
}

// ContextKey keys entries by context id.
type ContextKey int

func (ck ContextKey) KeyString() string {
	return strconv.Itoa(int(ck))
}

// Config for caching.
type Config struct {
	// MaxEntries is the number of entries the cache holds before evicting.
	MaxEntries int64

	// DefaultTTL configures a default deadline on the lifetime of any keys set
	// to the cache. Zero or less keeps entries until they are evicted.
	DefaultTTL time.Duration
}

func (c *Config) MarshalZerologObject(e *zerolog.Event) {
	e.
		Str("maxEntries", humanize.Comma(c.MaxEntries)).
		Dur("defaultTTL", c.DefaultTTL)
}

// Cache defines an interface for a generic cache.
type Cache[K KeyString, V any] interface {
	// Get returns the value for the given key in the cache, if it exists and
	// has not expired.
	Get(key K) (V, bool)

	// Set sets a value for the key in the cache.
	Set(key K, entry V) bool

	// Close closes the cache's background workers (if any).
	Close()

	// GetMetrics returns the metrics block for the cache.
	GetMetrics() Metrics

	zerolog.LogObjectMarshaler
}

// Metrics defines metrics exported by the cache.
type Metrics interface {
	// Hits is the number of cache hits.
	Hits() uint64

	// Misses is the number of cache misses.
	Misses() uint64

	// EntriesAdded returns the number of entries set.
	EntriesAdded() uint64
}

// NoopCache returns a cache that does nothing.
func NoopCache[K KeyString, V any]() Cache[K, V] { return &noopCache[K, V]{} }

type noopCache[K KeyString, V any] struct{}

var _ Cache[ContextKey, any] = (*noopCache[ContextKey, any])(nil)

func (no *noopCache[K, V]) Get(_ K) (V, bool)   { return *new(V), false }
func (no *noopCache[K, V]) Set(_ K, _ V) bool   { return false }
func (no *noopCache[K, V]) Close()              {}
func (no *noopCache[K, V]) GetMetrics() Metrics { return &noopMetrics{} }
func (no *noopCache[K, V]) MarshalZerologObject(e *zerolog.Event) {
	e.Bool("enabled", false)
}

type noopMetrics struct{}

var _ Metrics = (*noopMetrics)(nil)

func (no *noopMetrics) Hits() uint64         { return 0 }
func (no *noopMetrics) Misses() uint64       { return 0 }
func (no *noopMetrics) EntriesAdded() uint64 { return 0 }
