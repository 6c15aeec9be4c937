// Package namespaceindex implements the Namespace Index (C8): a per-appId
// canonical namespace spelling lookup, loaded from the Release Store on
// miss and refreshed on a fixed schedule so a namespace renamed or added
// upstream becomes visible without restarting the process.
package namespaceindex

import (
	"context"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/mileusna/crontab"

	"github.com/relaycfg/configserver/app/domain/release"
	"github.com/relaycfg/configserver/app/utils/logger"
)

// NamespaceLister is the Release Store read side this index polls.
type NamespaceLister interface {
	ListNamespaces(ctx context.Context, appID string) ([]*release.Namespace, error)
	ListAppIDs(ctx context.Context) ([]string, error)
}

type canonicalMap map[string]string

// Index implements release.NamespaceIndex (and, through it, the
// configfile.NamespaceLookup interface C2 normalizes namespaces against).
type Index struct {
	store NamespaceLister
	cache *ttlcache.Cache[string, canonicalMap]
	ttl   time.Duration
}

// New constructs an Index backed by store, with entries refreshed at most
// every ttl on access, plus an active refresh loop started by StartRefresh.
func New(store NamespaceLister, ttl time.Duration) *Index {
	return &Index{
		store: store,
		cache: ttlcache.New(ttlcache.WithTTL[string, canonicalMap](ttl)),
		ttl:   ttl,
	}
}

// CanonicalName implements release.NamespaceIndex. name is expected to
// already have any ".properties" suffix stripped by the caller.
func (idx *Index) CanonicalName(ctx context.Context, appID, name string) (string, bool) {
	item := idx.cache.Get(appID, ttlcache.WithLoader(idx.loader(ctx)))
	if item == nil {
		return "", false
	}
	canonical, ok := item.Value()[strings.ToLower(name)]
	return canonical, ok
}

func (idx *Index) loader(ctx context.Context) ttlcache.LoaderFunc[string, canonicalMap] {
	return func(cache *ttlcache.Cache[string, canonicalMap], appID string) *ttlcache.Item[string, canonicalMap] {
		namespaces, err := idx.store.ListNamespaces(ctx, appID)
		if err != nil {
			logger.GetLogger().WithField("app_id", appID).Warnf("namespace index: failed to refresh: %v", err)
			return cache.Set(appID, canonicalMap{}, ttlcache.DefaultTTL)
		}
		m := make(canonicalMap, len(namespaces))
		for _, ns := range namespaces {
			m[strings.ToLower(ns.Name)] = ns.CanonicalName
		}
		return cache.Set(appID, m, ttlcache.DefaultTTL)
	}
}

// StartRefresh registers a crontab job that evicts every cached entry on
// schedule, so the next CanonicalName call for each appId reloads from the
// Release Store instead of serving a stale spelling for up to ttl longer
// than necessary.
func (idx *Index) StartRefresh(ctx context.Context, ctab *crontab.Crontab, schedule string) error {
	return ctab.AddJob(schedule, func() {
		appIDs, err := idx.store.ListAppIDs(ctx)
		if err != nil {
			logger.GetLogger().Warnf("namespace index: refresh failed to list app ids: %v", err)
			return
		}
		for _, appID := range appIDs {
			idx.cache.Delete(appID)
		}
	})
}
