// Package invalidator implements the Invalidator (C6): it subscribes to
// the release-change topic and, for each delivered message, evicts every
// cache entry the Watch Index has on file for that watch key.
package invalidator

import (
	"context"

	"github.com/relaycfg/configserver/app/infrastructure/localcache"
	"github.com/relaycfg/configserver/app/utils/logger"
)

// MessageHandler is invoked once per delivered message, with the message
// body and the channel it arrived on.
type MessageHandler func(content, channel string)

// MessageBus is the release-change transport C6 consumes. Delivery is
// assumed at-least-once; duplicate or reordered messages are tolerated
// since invalidation is idempotent.
type MessageBus interface {
	Subscribe(ctx context.Context, topic string, handler MessageHandler) error
}

// CacheInvalidator is the subset of the Cache Engine (C4) the Invalidator
// needs: explicit, synchronous invalidation by key.
type CacheInvalidator interface {
	Invalidate(key string)
}

// WatchKeyLookup is the subset of the Watch Index (C3) the Invalidator
// needs: the forward projection from watch key to affected cache keys.
type WatchKeyLookup interface {
	LookupCacheKeys(watchKey string) []string
}

// Invalidator wires a MessageBus subscription to watch-key-driven cache
// eviction. The eviction callback bound to the cache engine at
// construction time is responsible for removing the Watch Index's reverse
// edges once evicted; the Invalidator itself never touches the reverse
// projection.
type Invalidator struct {
	watchIndex   WatchKeyLookup
	cache        CacheInvalidator
	releaseTopic string
}

func New(watchIndex WatchKeyLookup, cache CacheInvalidator, releaseTopic string) *Invalidator {
	return &Invalidator{watchIndex: watchIndex, cache: cache, releaseTopic: releaseTopic}
}

// Start subscribes to the release topic on bus. It returns once the
// subscription is established; message handling continues on whatever
// goroutine(s) bus dispatches deliveries on.
func (inv *Invalidator) Start(ctx context.Context, bus MessageBus) error {
	return bus.Subscribe(ctx, inv.releaseTopic, inv.handleMessage)
}

func (inv *Invalidator) handleMessage(content, channel string) {
	if channel != inv.releaseTopic || content == "" {
		return
	}

	affected := inv.watchIndex.LookupCacheKeys(content)
	if len(affected) == 0 {
		return
	}

	logger.GetLogger().WithField("watch_key", content).Debugf("invalidator: evicting %d cache keys", len(affected))
	for _, cacheKey := range affected {
		inv.cache.Invalidate(cacheKey)
	}
}

var _ CacheInvalidator = (*localcache.Cache)(nil)
