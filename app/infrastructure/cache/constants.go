package cache

const (
	CacheVersion = "v1"

	// NamespaceIndexKeyPattern names an application's canonical namespace
	// map in the mirror. No package reads or writes this key: the Namespace
	// Index (C8) loads from the Release Store only.
	NamespaceIndexKeyPattern = CacheVersion + ":namespaceindex:%s"

	// GrayRuleSnapshotKeyPattern names an application's gray-release rule
	// snapshot in the mirror, written by C9's Refresh and read first by its
	// HasGrayReleaseRule.
	GrayRuleSnapshotKeyPattern = CacheVersion + ":grayrules:%s"
)
