package cache

// NewStandardCache creates a new cache with the given configuration. A
// non-positive MaxEntries disables caching.
func NewStandardCache[K KeyString, V any](name string, config *Config) (Cache[K, V], error) {
	if config.MaxEntries <= 0 {
		return NoopCache[K, V](), nil
	}
	return NewTheineCache[K, V](name, config)
}
