package querypipeline

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/relaycfg/configserver/app/domain/configfile"
	"github.com/relaycfg/configserver/app/domain/release"
	"github.com/relaycfg/configserver/app/domain/watchindex"
	"github.com/relaycfg/configserver/app/infrastructure/localcache"
)

type stubResolver struct {
	calls         int32
	configuration map[string]string
	notFound      bool
}

func (s *stubResolver) QueryConfig(_ context.Context, _, _, _, _ string) (*release.Release, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.notFound {
		return nil, release.ErrReleaseNotFound
	}
	return &release.Release{Configurations: s.configuration}, nil
}

type stubGrayRules struct {
	grayIP string
}

func (s *stubGrayRules) HasGrayReleaseRule(_ context.Context, _, clientIP, _, _ string) bool {
	return s.grayIP != "" && s.grayIP == clientIP
}

func newTestPipeline(resolver *stubResolver, gray *stubGrayRules) *Pipeline {
	cache := localcache.New(50*1024*1024, 30*time.Minute)
	idx := watchindex.New()
	cache.SetEvictionCallback(func(key string, _ localcache.EvictionReason) { idx.RemoveCacheKey(key) })
	return New(resolver, gray, nil, configfile.DefaultWatchKeysDeriver{}, cache, idx, nil)
}

func TestCacheMissThenHit(t *testing.T) {
	t.Parallel()

	resolver := &stubResolver{configuration: map[string]string{"k": "v"}}
	gray := &stubGrayRules{}
	p := newTestPipeline(resolver, gray)

	req := Request{Format: configfile.OutputProperties, AppID: "app1", Cluster: "default", Namespace: "ns1"}

	result, err := p.Query(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "k=v\n", result.Payload)
	require.Equal(t, "text/plain;charset=UTF-8", result.ContentType)
	require.EqualValues(t, 1, resolver.calls)

	result2, err := p.Query(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "k=v\n", result2.Payload)
	require.EqualValues(t, 1, resolver.calls, "second request must not re-invoke the resolver")
}

func TestNotFoundWhenResolverHasNoRelease(t *testing.T) {
	t.Parallel()

	resolver := &stubResolver{notFound: true}
	gray := &stubGrayRules{}
	p := newTestPipeline(resolver, gray)

	_, err := p.Query(context.Background(), Request{Format: configfile.OutputProperties, AppID: "app1", Cluster: "default", Namespace: "ns1"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGrayReleaseBypassNeverCaches(t *testing.T) {
	t.Parallel()

	resolver := &stubResolver{configuration: map[string]string{"k": "v"}}
	gray := &stubGrayRules{grayIP: "1.2.3.4"}
	p := newTestPipeline(resolver, gray)

	req := Request{Format: configfile.OutputProperties, AppID: "app1", Cluster: "default", Namespace: "ns1", ClientIP: "1.2.3.4"}

	_, err := p.Query(context.Background(), req)
	require.NoError(t, err)
	_, err = p.Query(context.Background(), req)
	require.NoError(t, err)

	require.EqualValues(t, 2, resolver.calls, "a gray-release client must re-invoke the resolver every time")
	require.Equal(t, 0, p.cache.Len())
}

func TestJSONRendering(t *testing.T) {
	t.Parallel()

	resolver := &stubResolver{configuration: map[string]string{"a": "1", "b": "2"}}
	gray := &stubGrayRules{}
	p := newTestPipeline(resolver, gray)

	result, err := p.Query(context.Background(), Request{Format: configfile.OutputJSON, AppID: "app1", Cluster: "default", Namespace: "ns1"})
	require.NoError(t, err)
	require.JSONEq(t, `{"a":"1","b":"2"}`, result.Payload)
	require.Equal(t, "application/json;charset=UTF-8", result.ContentType)
}

func TestRawYAMLRendering(t *testing.T) {
	t.Parallel()

	resolver := &stubResolver{configuration: map[string]string{"content": "foo: bar\n"}}
	gray := &stubGrayRules{}
	p := newTestPipeline(resolver, gray)

	result, err := p.Query(context.Background(), Request{Format: configfile.OutputRaw, AppID: "app1", Cluster: "default", Namespace: "ns1.yaml"})
	require.NoError(t, err)
	require.Equal(t, "foo: bar\n", result.Payload)
	require.Equal(t, "application/yaml;charset=UTF-8", result.ContentType)
}

func TestInvalidationOnReleaseTriggersResolverOnNextRequest(t *testing.T) {
	t.Parallel()

	resolver := &stubResolver{configuration: map[string]string{"k": "v"}}
	gray := &stubGrayRules{}
	p := newTestPipeline(resolver, gray)

	req := Request{Format: configfile.OutputProperties, AppID: "app1", Cluster: "default", Namespace: "ns1"}
	_, err := p.Query(context.Background(), req)
	require.NoError(t, err)
	require.EqualValues(t, 1, resolver.calls)

	watchKeys := configfile.DefaultWatchKeysDeriver{}.AssembleAllWatchKeys("app1", "default", "ns1", "")
	var anyWatchKey string
	for w := range watchKeys {
		anyWatchKey = w
		break
	}
	affected := p.watchIndex.LookupCacheKeys(anyWatchKey)
	require.NotEmpty(t, affected)
	for _, k := range affected {
		p.cache.Invalidate(k)
	}

	_, err = p.Query(context.Background(), req)
	require.NoError(t, err)
	require.EqualValues(t, 2, resolver.calls, "invalidated entry must cause a re-resolve")
}
