// Package release holds the entities a config resolver assembles a payload
// from, and the collaborator interfaces the query pipeline consumes them
// through. None of this is part of the core cache — it exists so the core's
// external collaborators (spec.md's "resolver", "gray-release rule index")
// have a real implementation to call in this repository.
package release

import "context"

// Namespace is a configuration unit belonging to an application, identified
// by its canonical (case-normalized) name.
type Namespace struct {
	AppID         string
	Name          string
	CanonicalName string
}

// Release is the committed configuration content for one namespace on one
// cluster, optionally scoped to a data center.
type Release struct {
	AppID          string
	ClusterName    string
	DataCenter     string
	NamespaceName  string
	ReleaseKey     string
	Configurations map[string]string
}

// GrayReleaseRule is a per-client override directing a specific client IP
// or label to a personalized, non-shared release of a namespace.
type GrayReleaseRule struct {
	AppID         string
	NamespaceName string
	ClientIP      string
	ClientLabel   string
}

// Matches reports whether this rule applies to the given client.
func (r GrayReleaseRule) Matches(clientIP, clientLabel string) bool {
	if r.ClientIP != "" && r.ClientIP == clientIP {
		return true
	}
	if r.ClientLabel != "" && clientLabel != "" && r.ClientLabel == clientLabel {
		return true
	}
	return false
}

// ErrReleaseNotFound is returned by a ConfigResolver when no release exists
// for the requested tuple, on any cluster in the fallback chain.
var ErrReleaseNotFound = releaseNotFoundError{}

type releaseNotFoundError struct{}

func (releaseNotFoundError) Error() string { return "release not found" }

// ConfigResolver produces the effective configuration for a request tuple,
// consulting the default-cluster fallback when the requested cluster has no
// release of its own. Returning (nil, nil) is never valid; absence is
// signaled by returning ErrReleaseNotFound.
type ConfigResolver interface {
	QueryConfig(ctx context.Context, appID, cluster, namespace, dataCenter string) (*Release, error)
}

// GrayReleaseRulesHolder answers whether a client has a personalized
// override for a namespace.
type GrayReleaseRulesHolder interface {
	HasGrayReleaseRule(ctx context.Context, appID, clientIP, clientLabel, namespace string) bool
}

// NamespaceIndex answers the canonical spelling of a namespace known for an
// application; it backs configfile.NamespaceLookup.
type NamespaceIndex interface {
	CanonicalName(ctx context.Context, appID, name string) (string, bool)
}
