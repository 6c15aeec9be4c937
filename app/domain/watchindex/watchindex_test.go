package watchindex

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func setOf(ws ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(ws))
	for _, w := range ws {
		s[w] = struct{}{}
	}
	return s
}

func TestRegisterThenLookup(t *testing.T) {
	t.Parallel()

	idx := New()
	idx.Register("k1", setOf("w1", "w2"))

	require.ElementsMatch(t, []string{"k1"}, idx.LookupCacheKeys("w1"))
	require.ElementsMatch(t, []string{"k1"}, idx.LookupCacheKeys("w2"))
	require.Empty(t, idx.LookupCacheKeys("w3"))
}

func TestRegisterManyToMany(t *testing.T) {
	t.Parallel()

	idx := New()
	idx.Register("k1", setOf("w1"))
	idx.Register("k2", setOf("w1"))

	require.ElementsMatch(t, []string{"k1", "k2"}, idx.LookupCacheKeys("w1"))
}

func TestRemoveCacheKeyDropsForwardEdges(t *testing.T) {
	t.Parallel()

	idx := New()
	idx.Register("k1", setOf("w1", "w2"))
	idx.Register("k2", setOf("w1"))

	idx.RemoveCacheKey("k1")

	require.ElementsMatch(t, []string{"k2"}, idx.LookupCacheKeys("w1"))
	require.Empty(t, idx.LookupCacheKeys("w2"))
	require.Equal(t, 1, idx.CacheKeyCount())
}

func TestRemoveCacheKeyUnknownIsNoop(t *testing.T) {
	t.Parallel()

	idx := New()
	require.NotPanics(t, func() { idx.RemoveCacheKey("missing") })
}

// TestIndexConsistency checks the K ∈ forward[W] ⇔ W ∈ reverse[K] invariant
// after a random-ish interleaving of registrations and removals.
func TestIndexConsistency(t *testing.T) {
	t.Parallel()

	idx := New()
	idx.Register("k1", setOf("w1", "w2", "w3"))
	idx.Register("k2", setOf("w2", "w3"))
	idx.Register("k3", setOf("w3"))

	idx.RemoveCacheKey("k1")

	for _, w := range []string{"w1", "w2", "w3"} {
		keys := idx.LookupCacheKeys(w)
		for _, k := range keys {
			require.NotEqual(t, "k1", k)
		}
	}
	require.Empty(t, idx.LookupCacheKeys("w1"))
	require.ElementsMatch(t, []string{"k2"}, idx.LookupCacheKeys("w2"))
	require.ElementsMatch(t, []string{"k2", "k3"}, idx.LookupCacheKeys("w3"))
}

func TestConcurrentRegisterAndRemove(t *testing.T) {
	t.Parallel()

	idx := New()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := "k"
			idx.Register(key, setOf("w1", "w2"))
			idx.LookupCacheKeys("w1")
			idx.RemoveCacheKey(key)
		}(i)
	}
	wg.Wait()
}
