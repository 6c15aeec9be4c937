//go:build !wireinject

// Hand-maintained counterpart of wire.go's provider set (see
// CreateApplication below); not produced by running wire.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//+build !wireinject

package main

import (
	"context"
	"time"

	"github.com/mileusna/crontab"

	"github.com/relaycfg/configserver/app/domain/configfile"
	"github.com/relaycfg/configserver/app/domain/grayrelease"
	"github.com/relaycfg/configserver/app/domain/invalidator"
	"github.com/relaycfg/configserver/app/domain/namespaceindex"
	"github.com/relaycfg/configserver/app/domain/querypipeline"
	"github.com/relaycfg/configserver/app/domain/watchindex"
	"github.com/relaycfg/configserver/app/infrastructure/cache"
	"github.com/relaycfg/configserver/app/infrastructure/database"
	"github.com/relaycfg/configserver/app/infrastructure/database/releaserepo"
	"github.com/relaycfg/configserver/app/infrastructure/lock"
	"github.com/relaycfg/configserver/app/infrastructure/localcache"
	"github.com/relaycfg/configserver/app/infrastructure/releasebus"
	"github.com/relaycfg/configserver/app/interfaces/http"
	"github.com/relaycfg/configserver/app/interfaces/http/routes/admin"
	"github.com/relaycfg/configserver/app/interfaces/http/routes/configfiles"
	"github.com/relaycfg/configserver/config/environment_variables"
)

// CreateApplication wires every collaborator into a runnable Application.
// It's the hand-maintained equivalent of what `wire` would generate from
// wire.go's provider set; this repo doesn't invoke code generation as part
// of its build.
func CreateApplication() (*Application, error) {
	env := &environment_variables.EnvironmentVariables
	bootCtx := context.Background()

	db, err := database.NewDB()
	if err != nil {
		return nil, err
	}

	mirror := cache.NewCacheService()
	redisClient := cache.NewRedisClient()

	store := releaserepo.NewGormRepository(db)
	bus := releasebus.New(redisClient)
	locker := lock.New(redisClient, env.GRAY_RELEASE_LOCK_TTL)

	watchIndex := watchindex.New()
	localCache := localcache.New(env.MAX_CACHE_WEIGHT_BYTES, time.Duration(env.WRITE_TTL_MINUTES)*time.Minute)
	localCache.SetEvictionCallback(func(key string, _ localcache.EvictionReason) {
		watchIndex.RemoveCacheKey(key)
	})

	ctab := crontab.New()

	namespaceIndex := namespaceindex.New(store, env.NAMESPACE_INDEX_TTL)
	if err := namespaceIndex.StartRefresh(bootCtx, ctab, env.NAMESPACE_REFRESH_CRON); err != nil {
		return nil, err
	}

	grayRules := grayrelease.New(store, mirror, env.GRAY_RULE_MIRROR_TTL)
	if err := grayRules.StartRefresh(bootCtx, ctab, env.GRAY_RULE_REFRESH_CRON); err != nil {
		return nil, err
	}

	watchKeysDeriver := configfile.DefaultWatchKeysDeriver{}

	pipeline := querypipeline.New(store, grayRules, namespaceIndex, watchKeysDeriver, localCache, watchIndex, locker)
	inv := invalidator.New(watchIndex, localCache, env.RELEASE_TOPIC_NAME)

	configFileRoute := configfiles.NewRoute(pipeline)
	adminRoute := admin.NewRoute(store, bus, watchKeysDeriver, env.RELEASE_TOPIC_NAME)

	httpServer := http.NewHttpServer(configFileRoute, adminRoute, mirror, store)

	return &Application{
		HttpServer:   httpServer,
		Invalidator:  inv,
		Bus:          bus,
		Mirror:       mirror,
		ReleaseTopic: env.RELEASE_TOPIC_NAME,
	}, nil
}
