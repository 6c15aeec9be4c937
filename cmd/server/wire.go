//go:build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/mileusna/crontab"

	"github.com/relaycfg/configserver/app/domain/grayrelease"
	"github.com/relaycfg/configserver/app/domain/invalidator"
	"github.com/relaycfg/configserver/app/domain/namespaceindex"
	"github.com/relaycfg/configserver/app/domain/querypipeline"
	"github.com/relaycfg/configserver/app/domain/release"
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
)

// CreateApplication is regenerated by `wire` whenever a provider changes;
// wire_gen.go is checked in and hand-maintained alongside it since this
// repo doesn't run code generation as part of its build.
func CreateApplication() (*Application, error) {
	wire.Build(
		database.NewDB,
		cache.NewCacheService,
		cache.NewRedisClient,
		releasebus.New,
		releaserepo.NewGormRepository,
		wire.Bind(new(release.ConfigResolver), new(*releaserepo.GormRepository)),
		wire.Bind(new(namespaceindex.NamespaceLister), new(*releaserepo.GormRepository)),
		wire.Bind(new(grayrelease.RuleLister), new(*releaserepo.GormRepository)),
		wire.Bind(new(http.HealthChecker), new(*releaserepo.GormRepository)),
		wire.Bind(new(http.HealthChecker), new(cache.CacheService)),
		watchindex.New,
		lock.New,
		localcache.New,
		crontab.New,
		namespaceindex.New,
		grayrelease.New,
		querypipeline.New,
		invalidator.New,
		configfiles.NewRoute,
		admin.NewRoute,
		http.NewHttpServer,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil
}
