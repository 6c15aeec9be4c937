package invalidator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/relaycfg/configserver/app/domain/watchindex"
	"github.com/relaycfg/configserver/app/infrastructure/localcache"
)

type fakeBus struct {
	topic   string
	handler MessageHandler
}

func (b *fakeBus) Subscribe(_ context.Context, topic string, handler MessageHandler) error {
	b.topic = topic
	b.handler = handler
	return nil
}

func setOf(ws ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(ws))
	for _, w := range ws {
		s[w] = struct{}{}
	}
	return s
}

func TestInvalidationEvictsAffectedCacheKeys(t *testing.T) {
	t.Parallel()

	idx := watchindex.New()
	cache := localcache.New(1024, time.Hour)
	cache.SetEvictionCallback(func(key string, _ localcache.EvictionReason) { idx.RemoveCacheKey(key) })

	cache.Put("k1", "v1")
	idx.Register("k1", setOf("w1", "w2"))
	cache.Put("k2", "v2")
	idx.Register("k2", setOf("w3"))

	inv := New(idx, cache, "release-topic")
	bus := &fakeBus{}
	require.NoError(t, inv.Start(context.Background(), bus))
	require.Equal(t, "release-topic", bus.topic)

	bus.handler("w1", "release-topic")

	_, ok := cache.GetIfPresent("k1")
	require.False(t, ok)
	_, ok = cache.GetIfPresent("k2")
	require.True(t, ok)
	require.Empty(t, idx.LookupCacheKeys("w1"))
	require.Empty(t, idx.LookupCacheKeys("w2"))
}

func TestInvalidationIgnoresWrongChannel(t *testing.T) {
	t.Parallel()

	idx := watchindex.New()
	cache := localcache.New(1024, time.Hour)
	cache.SetEvictionCallback(func(key string, _ localcache.EvictionReason) { idx.RemoveCacheKey(key) })
	cache.Put("k1", "v1")
	idx.Register("k1", setOf("w1"))

	inv := New(idx, cache, "release-topic")
	inv.handleMessage("w1", "some-other-topic")

	_, ok := cache.GetIfPresent("k1")
	require.True(t, ok)
}

func TestInvalidationIgnoresEmptyContent(t *testing.T) {
	t.Parallel()

	idx := watchindex.New()
	cache := localcache.New(1024, time.Hour)
	inv := New(idx, cache, "release-topic")
	require.NotPanics(t, func() { inv.handleMessage("", "release-topic") })
}

func TestInvalidationNoAffectedKeysIsNoop(t *testing.T) {
	t.Parallel()

	idx := watchindex.New()
	cache := localcache.New(1024, time.Hour)
	inv := New(idx, cache, "release-topic")
	require.NotPanics(t, func() { inv.handleMessage("unknown-watch-key", "release-topic") })
}
