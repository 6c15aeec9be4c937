package http

import (
	"context"
	"fmt"
	"net/http"

	godeltaprofpprof "github.com/grafana/pyroscope-go/godeltaprof/http/pprof"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/relaycfg/configserver/app/interfaces/http/middleware"
	"github.com/relaycfg/configserver/app/interfaces/http/routes/admin"
	"github.com/relaycfg/configserver/app/interfaces/http/routes/configfiles"
	"github.com/relaycfg/configserver/app/utils/logger"
	"github.com/relaycfg/configserver/config/environment_variables"
	_ "github.com/relaycfg/configserver/docs"
)

// HealthChecker is the subset of a collaborator's lifecycle the
// /health-check route needs: a way to confirm it's actually reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HttpServer assembles every registered route group onto one gin engine.
type HttpServer struct {
	engine          *gin.Engine
	srv             *http.Server
	configFileRoute *configfiles.Route
	adminRoute      *admin.Route
}

func NewHttpServer(configFileRoute *configfiles.Route, adminRoute *admin.Route, cacheHealth HealthChecker, storeHealth HealthChecker) *HttpServer {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.LoggerMiddleware(logger.GetLogger()))
	engine.Use(middleware.CORS())

	server := &HttpServer{
		engine:          engine,
		configFileRoute: configFileRoute,
		adminRoute:      adminRoute,
	}

	engine.GET("/health-check", func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := storeHealth.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "component": "store", "error": err.Error()})
			return
		}
		if err := cacheHealth.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "component": "cache", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if environment_variables.EnvironmentVariables.ENABLE_PROFILING {
		registerDeltaProfiles(engine)
	}

	configFileRoute.RegisterRouter(engine.Group("/"))
	adminRoute.RegisterRouter(engine.Group("/"))

	return server
}

// registerDeltaProfiles exposes godeltaprof's delta heap/mutex/block
// profiles under /debug/pprof/delta_*, useful for
// diagnosing the weight+TTL cache's allocation behavior under load without
// the overhead net/http/pprof's cumulative heap profile carries.
func registerDeltaProfiles(engine *gin.Engine) {
	debug := engine.Group("/debug/pprof")
	debug.GET("/delta_heap", gin.WrapF(godeltaprofpprof.Heap))
	debug.GET("/delta_mutex", gin.WrapF(godeltaprofpprof.Mutex))
	debug.GET("/delta_block", gin.WrapF(godeltaprofpprof.Block))
}

// Run blocks serving HTTP until Shutdown is called (or the listener fails).
func (httpServer *HttpServer) Run() error {
	port := environment_variables.EnvironmentVariables.HTTP_PORT
	httpServer.srv = &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: httpServer.engine,
	}
	if err := httpServer.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the listener started by Run, letting in-flight
// requests finish within ctx's deadline.
func (httpServer *HttpServer) Shutdown(ctx context.Context) error {
	if httpServer.srv == nil {
		return nil
	}
	return httpServer.srv.Shutdown(ctx)
}
