// Package watchindex holds the bidirectional relation between cache keys
// and the watch keys whose release events must invalidate them.
package watchindex

import "sync"

// Index is a concurrent many-to-many relation between watch keys and cache
// keys. Both projections (forward: watch key -> cache keys, reverse: cache
// key -> watch keys) are guarded by a single mutex so a reader never
// observes one projection mutated without the other.
type Index struct {
	mu      sync.RWMutex
	forward map[string]map[string]struct{}
	reverse map[string]map[string]struct{}
}

// New returns an empty Index.
func New() *Index {
	return &Index{
		forward: make(map[string]map[string]struct{}),
		reverse: make(map[string]map[string]struct{}),
	}
}

// Register atomically adds (w, cacheKey) to forward and (cacheKey, w) to
// reverse for every w in watchKeys. An empty watchKeys is a no-op.
func (idx *Index) Register(cacheKey string, watchKeys map[string]struct{}) {
	if len(watchKeys) == 0 {
		return
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()

	rev, ok := idx.reverse[cacheKey]
	if !ok {
		rev = make(map[string]struct{}, len(watchKeys))
		idx.reverse[cacheKey] = rev
	}
	for w := range watchKeys {
		rev[w] = struct{}{}

		fwd, ok := idx.forward[w]
		if !ok {
			fwd = make(map[string]struct{})
			idx.forward[w] = fwd
		}
		fwd[cacheKey] = struct{}{}
	}
}

// LookupCacheKeys returns an immutable snapshot of forward[watchKey]. Safe
// to iterate while concurrent mutators run.
func (idx *Index) LookupCacheKeys(watchKey string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	fwd := idx.forward[watchKey]
	snapshot := make([]string, 0, len(fwd))
	for k := range fwd {
		snapshot = append(snapshot, k)
	}
	return snapshot
}

// RemoveCacheKey removes, for every w in reverse[cacheKey], the edge (w,
// cacheKey) from forward, then drops cacheKey from reverse. It is the
// eviction callback's job to call this so the index never retains a
// dangling edge to a dead cache entry. Calling it for an unknown cacheKey
// is a harmless no-op.
func (idx *Index) RemoveCacheKey(cacheKey string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	rev, ok := idx.reverse[cacheKey]
	if !ok {
		return
	}
	for w := range rev {
		fwd := idx.forward[w]
		delete(fwd, cacheKey)
		if len(fwd) == 0 {
			delete(idx.forward, w)
		}
	}
	delete(idx.reverse, cacheKey)
}

// WatchKeyCount reports the number of distinct watch keys currently
// tracked, for diagnostics and tests.
func (idx *Index) WatchKeyCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.forward)
}

// CacheKeyCount reports the number of distinct cache keys currently
// tracked, for diagnostics and tests.
func (idx *Index) CacheKeyCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.reverse)
}
