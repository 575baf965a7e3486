package cache

// Memoized wraps a pure single-argument function with an LRU cache (spec
// §4.I "Memoise(fn): wraps a pure function with an LRU; exposes cache and
// clear").
type Memoized[K comparable, V any] struct {
	fn    func(K) V
	Cache *LRU[K, V]
}

// Memoize builds a memoized wrapper around fn, caching up to maxEntries
// distinct inputs with no TTL (a pure function's output never goes stale).
func Memoize[K comparable, V any](fn func(K) V, maxEntries int) *Memoized[K, V] {
	return &Memoized[K, V]{fn: fn, Cache: New[K, V](&Config{MaxEntries: maxEntries})}
}

// Call returns fn(key), computing and caching it on a miss.
func (m *Memoized[K, V]) Call(key K) V {
	if v, ok := m.Cache.Get(key); ok {
		return v
	}
	v := m.fn(key)
	m.Cache.Set(key, v)
	return v
}

// Clear empties the memoization cache.
func (m *Memoized[K, V]) Clear() {
	m.Cache.Clear()
}
