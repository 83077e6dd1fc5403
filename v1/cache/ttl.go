package cache

// NewTTL returns an unbounded cache whose entries are only removed
// explicitly or once their deadline passes. Reads never mutate the store and
// share the read lock. WithCapacity has no effect.
func NewTTL[T any](opts ...Option) (*LocalCache[T], error) {
	cfg := newConfig(opts)
	return newLocalCache[T](newMapStore[T](), false, cfg)
}
