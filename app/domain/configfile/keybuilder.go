package configfile

import (
	"context"
	"strings"
)

// cacheKeySeparator joins the parts of a cache key and, doubled as the
// cluster/namespace separator, the parts of a watch key. A single fixed
// byte that never appears in an appId, cluster or namespace keeps both
// keys trivially reversible by callers that only need to log them.
const cacheKeySeparator = "+"

const propertiesSuffix = ".properties"

// NamespaceLookup resolves the canonical spelling of a namespace for a
// given application, backing the case-folding half of NormalizeNamespace.
// A nil NamespaceLookup (or a miss) leaves the input namespace untouched.
type NamespaceLookup interface {
	CanonicalName(ctx context.Context, appID, name string) (string, bool)
}

// NormalizeNamespace strips a trailing ".properties" suffix (case-sensitive,
// exact match only) and then asks lookup for the canonical spelling known
// for appID, falling back to the stripped input when lookup is nil or has
// no answer.
func NormalizeNamespace(ctx context.Context, lookup NamespaceLookup, appID, rawNamespace string) string {
	stripped := strings.TrimSuffix(rawNamespace, propertiesSuffix)
	if lookup == nil {
		return stripped
	}
	if canonical, ok := lookup.CanonicalName(ctx, appID, stripped); ok {
		return canonical
	}
	return stripped
}

// BuildCacheKey deterministically composes the cache key for a rendered
// payload. The dataCenter segment is omitted entirely when blank so two
// requests that only differ by an empty dataCenter collide on one key.
func BuildCacheKey(format OutputFormat, appID, cluster, namespace, dataCenter string) string {
	parts := []string{string(format), appID, cluster, namespace}
	if strings.TrimSpace(dataCenter) != "" {
		parts = append(parts, dataCenter)
	}
	return strings.Join(parts, cacheKeySeparator)
}

// defaultClusterName is the fallback cluster whose releases also affect
// namespaces requested against any other cluster that doesn't have its own
// override — the same cluster-inheritance rule a real release pipeline uses.
const defaultClusterName = "default"

// WatchKeysDeriver enumerates the release watch keys whose change must
// invalidate any cache entry built from the given resolution tuple.
type WatchKeysDeriver interface {
	AssembleAllWatchKeys(appID, cluster, namespace, dataCenter string) map[string]struct{}
}

// DefaultWatchKeysDeriver implements WatchKeysDeriver using the same
// separator as the cache key and the standard cluster-inheritance rule:
// a release on the requested cluster invalidates the request, and so does a
// release on the default cluster if the request targeted a different one
// (since an un-overridden namespace falls back to the default cluster's
// release).
type DefaultWatchKeysDeriver struct{}

func (DefaultWatchKeysDeriver) AssembleAllWatchKeys(appID, cluster, namespace, dataCenter string) map[string]struct{} {
	keys := map[string]struct{}{}
	addWatchKey(keys, appID, cluster, namespace)
	if cluster != defaultClusterName {
		addWatchKey(keys, appID, defaultClusterName, namespace)
	}
	if strings.TrimSpace(dataCenter) != "" {
		addWatchKey(keys, appID, cluster+dataCenterSuffixSeparator+dataCenter, namespace)
	}
	return keys
}

const dataCenterSuffixSeparator = "_"

func addWatchKey(keys map[string]struct{}, appID, cluster, namespace string) {
	keys[strings.Join([]string{appID, cluster, namespace}, cacheKeySeparator)] = struct{}{}
}
