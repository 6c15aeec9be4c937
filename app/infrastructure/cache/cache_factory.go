package cache

import (
	"strings"

	"github.com/relaycfg/configserver/config/environment_variables"
)

// NewCacheService creates the distributed mirror cache service named by
// CACHE_TYPE. "noop" keeps a single-instance deployment fully functional
// off local refresh alone, at the cost of up to one refresh interval of
// cross-instance staleness after a gray-release rule changes.
func NewCacheService() CacheService {
	cacheType := strings.ToLower(environment_variables.EnvironmentVariables.CACHE_TYPE)

	switch cacheType {
	case "redis":
		return NewRedisCacheService()
	default:
		return &NoOpCacheService{}
	}
}
