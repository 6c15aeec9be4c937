package configfile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildCacheKeyDeterministic(t *testing.T) {
	t.Parallel()

	k1 := BuildCacheKey(OutputProperties, "app1", "default", "ns1", "")
	k2 := BuildCacheKey(OutputProperties, "app1", "default", "ns1", "")
	require.Equal(t, k1, k2)
	require.Equal(t, "properties+app1+default+ns1", k1)
}

func TestBuildCacheKeyOmitsEmptyDataCenter(t *testing.T) {
	t.Parallel()

	require.Equal(t, "properties+app1+default+ns1", BuildCacheKey(OutputProperties, "app1", "default", "ns1", ""))
	require.Equal(t, "properties+app1+default+ns1+dc1", BuildCacheKey(OutputProperties, "app1", "default", "ns1", "dc1"))
}

type stubLookup struct {
	canonical map[string]string
}

func (s stubLookup) CanonicalName(_ context.Context, _, name string) (string, bool) {
	canon, ok := s.canonical[name]
	return canon, ok
}

func TestNormalizeNamespaceStripsPropertiesSuffix(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	require.Equal(t,
		NormalizeNamespace(ctx, nil, "app1", "X"),
		NormalizeNamespace(ctx, nil, "app1", "X.properties"),
	)
}

func TestNormalizeNamespaceCaseFoldsAgainstLookup(t *testing.T) {
	t.Parallel()

	lookup := stubLookup{canonical: map[string]string{"fx.apollo": "FX.apollo"}}
	got := NormalizeNamespace(context.Background(), lookup, "app1", "fx.apollo")
	require.Equal(t, "FX.apollo", got)
}

func TestNormalizeNamespaceFallsBackOnMiss(t *testing.T) {
	t.Parallel()

	lookup := stubLookup{canonical: map[string]string{}}
	got := NormalizeNamespace(context.Background(), lookup, "app1", "unknown.ns")
	require.Equal(t, "unknown.ns", got)
}

func TestAssembleAllWatchKeysIncludesDefaultClusterFallback(t *testing.T) {
	t.Parallel()

	deriver := DefaultWatchKeysDeriver{}
	keys := deriver.AssembleAllWatchKeys("app1", "custom", "ns1", "")
	require.Contains(t, keys, "app1+custom+ns1")
	require.Contains(t, keys, "app1+default+ns1")
	require.Len(t, keys, 2)
}

func TestAssembleAllWatchKeysDefaultClusterNoDuplicate(t *testing.T) {
	t.Parallel()

	deriver := DefaultWatchKeysDeriver{}
	keys := deriver.AssembleAllWatchKeys("app1", "default", "ns1", "")
	require.Len(t, keys, 1)
	require.Contains(t, keys, "app1+default+ns1")
}

func TestAssembleAllWatchKeysIncludesDataCenterVariant(t *testing.T) {
	t.Parallel()

	deriver := DefaultWatchKeysDeriver{}
	keys := deriver.AssembleAllWatchKeys("app1", "default", "ns1", "dc1")
	require.Contains(t, keys, "app1+default+ns1")
	require.Contains(t, keys, "app1+default_dc1+ns1")
}
