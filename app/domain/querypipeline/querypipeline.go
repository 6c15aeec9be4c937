// Package querypipeline implements the Query Pipeline (C5): the
// request-handling state machine that combines the gray-release check,
// cache lookup, resolver call, anti-pollution double-check, insertion and
// watch registration into one coherent operation.
package querypipeline

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/relaycfg/configserver/app/domain/configfile"
	"github.com/relaycfg/configserver/app/domain/release"
	"github.com/relaycfg/configserver/app/domain/watchindex"
	"github.com/relaycfg/configserver/app/infrastructure/lock"
	"github.com/relaycfg/configserver/app/infrastructure/localcache"
	"github.com/relaycfg/configserver/app/utils/logger"
)

// ErrNotFound is returned when the resolver has no release for the
// requested tuple, on any cluster in its fallback chain.
var ErrNotFound = errors.New("configfile: not found")

// Request is the normalized input to one pipeline run. ClientIP is
// expected to already be filled from the HTTP peer address if the caller
// didn't supply one explicitly.
type Request struct {
	Format      configfile.OutputFormat
	AppID       string
	Cluster     string
	Namespace   string
	DataCenter  string
	ClientIP    string
	ClientLabel string
}

// Result carries a rendered payload and the content type it should be
// served with.
type Result struct {
	Payload     string
	ContentType string
}

// Pipeline wires together the collaborators C5 needs: the namespace
// lookup and watch-key deriver (C2), the Cache Engine (C4) and Watch Index
// (C3), and the externally-owned resolver and gray-rule predicate.
type Pipeline struct {
	resolver         release.ConfigResolver
	grayRules        release.GrayReleaseRulesHolder
	namespaceLookup  configfile.NamespaceLookup
	watchKeysDeriver configfile.WatchKeysDeriver
	cache            *localcache.Cache
	watchIndex       *watchindex.Index
	locker           *lock.Locker

	resolveGroup singleflight.Group
}

func New(
	resolver release.ConfigResolver,
	grayRules release.GrayReleaseRulesHolder,
	namespaceLookup configfile.NamespaceLookup,
	watchKeysDeriver configfile.WatchKeysDeriver,
	cache *localcache.Cache,
	watchIndex *watchindex.Index,
	locker *lock.Locker,
) *Pipeline {
	return &Pipeline{
		resolver:         resolver,
		grayRules:        grayRules,
		namespaceLookup:  namespaceLookup,
		watchKeysDeriver: watchKeysDeriver,
		cache:            cache,
		watchIndex:       watchIndex,
		locker:           locker,
	}
}

// Query runs one request through the full state machine described above.
func (p *Pipeline) Query(ctx context.Context, req Request) (*Result, error) {
	namespace := configfile.NormalizeNamespace(ctx, p.namespaceLookup, req.AppID, req.Namespace)
	cacheKey := configfile.BuildCacheKey(req.Format, req.AppID, req.Cluster, namespace, req.DataCenter)
	contentType := contentTypeFor(req.Format, namespace)

	// GrayCheck-1: a client with a standing override never gets (or
	// pollutes) the shared cache.
	if p.grayRules.HasGrayReleaseRule(ctx, req.AppID, req.ClientIP, req.ClientLabel, namespace) {
		payload, err := p.resolveAndRender(ctx, req.Format, req.AppID, req.Cluster, namespace, req.DataCenter)
		if err != nil {
			return nil, err
		}
		return &Result{Payload: payload, ContentType: contentType}, nil
	}

	if payload, ok := p.cache.GetIfPresent(cacheKey); ok {
		return &Result{Payload: payload, ContentType: contentType}, nil
	}

	payload, err := p.resolveAndRender(ctx, req.Format, req.AppID, req.Cluster, namespace, req.DataCenter)
	if err != nil {
		return nil, err
	}

	// The gray-check/put sequence below is not a transaction: a rule that
	// becomes visible after GrayCheck-2 and before the Put is not seen, and
	// the payload is cached anyway. The per-key lock only serializes
	// pipeline runs for this cache key; the gray-rule refresh never takes
	// it, so it does not close that window. A later release message
	// invalidates any payload cached this way, per the design notes'
	// accepted trade-off.
	var releaseLock func()
	if p.locker != nil {
		m, lockErr := p.locker.Acquire(ctx, cacheKey)
		if lockErr != nil {
			logger.GetLogger().WithField("cache_key", cacheKey).Warnf("query pipeline: lock unavailable, proceeding best-effort: %v", lockErr)
		} else {
			releaseLock = func() { m.Release(ctx) }
		}
	}
	if releaseLock != nil {
		defer releaseLock()
	}

	// GrayCheck-2: anti-pollution double-check.
	if p.grayRules.HasGrayReleaseRule(ctx, req.AppID, req.ClientIP, req.ClientLabel, namespace) {
		return &Result{Payload: payload, ContentType: contentType}, nil
	}

	p.cache.Put(cacheKey, payload)
	watchKeys := p.watchKeysDeriver.AssembleAllWatchKeys(req.AppID, req.Cluster, namespace, req.DataCenter)
	p.watchIndex.Register(cacheKey, watchKeys)

	return &Result{Payload: payload, ContentType: contentType}, nil
}

// resolveAndRender calls the resolver and renders its result, deduplicating
// concurrent identical misses through singleflight. Concurrent callers
// with different gray-release status still each run their own GrayCheck-2
// afterward; only the resolver call and rendering are shared.
func (p *Pipeline) resolveAndRender(ctx context.Context, format configfile.OutputFormat, appID, cluster, namespace, dataCenter string) (string, error) {
	sfKey := fmt.Sprintf("%s+%s+%s+%s+%s", format, appID, cluster, namespace, dataCenter)

	v, err, _ := p.resolveGroup.Do(sfKey, func() (any, error) {
		rel, err := p.resolver.QueryConfig(ctx, appID, cluster, namespace, dataCenter)
		if err != nil {
			if errors.Is(err, release.ErrReleaseNotFound) {
				return "", ErrNotFound
			}
			return "", err
		}
		return renderRelease(format, namespace, rel)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func renderRelease(format configfile.OutputFormat, namespace string, rel *release.Release) (string, error) {
	switch format {
	case configfile.OutputJSON:
		payload, err := configfile.RenderJSON(rel.Configurations)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return payload, nil
	case configfile.OutputRaw:
		payload, err := configfile.RenderRaw(namespace, rel.Configurations)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return payload, nil
	default:
		payload, err := configfile.RenderProperties(rel.Configurations)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return payload, nil
	}
}

func contentTypeFor(format configfile.OutputFormat, namespace string) string {
	switch format {
	case configfile.OutputJSON:
		return "application/json;charset=UTF-8"
	case configfile.OutputRaw:
		return configfile.ContentTypeForRaw(namespace)
	default:
		return "text/plain;charset=UTF-8"
	}
}
