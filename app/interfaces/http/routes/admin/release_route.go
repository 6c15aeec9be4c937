// Package admin exposes the release-publish route that gives the Release
// Bus (C10) and Invalidator (C6) something real to exercise outside of
// tests: writing a release to the Release Store and announcing it on the
// release topic, the way an actual release pipeline would.
package admin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/relaycfg/configserver/app/domain/configfile"
	domainrelease "github.com/relaycfg/configserver/app/domain/release"
	"github.com/relaycfg/configserver/app/interfaces/http/responses"
	"github.com/relaycfg/configserver/app/utils/logger"
)

// ReleaseWriter is the Release Store write side this route needs.
type ReleaseWriter interface {
	Upsert(ctx context.Context, release *domainrelease.Release) error
}

// Publisher announces a release's watch keys on the release topic.
type Publisher interface {
	Publish(ctx context.Context, topic, content string) error
}

// Route registers the administrative release-publish endpoint.
type Route struct {
	store            ReleaseWriter
	publisher        Publisher
	watchKeysDeriver configfile.WatchKeysDeriver
	releaseTopic     string
}

func NewRoute(store ReleaseWriter, publisher Publisher, watchKeysDeriver configfile.WatchKeysDeriver, releaseTopic string) *Route {
	return &Route{store: store, publisher: publisher, watchKeysDeriver: watchKeysDeriver, releaseTopic: releaseTopic}
}

func (route *Route) RegisterRouter(router gin.IRouter) {
	router.POST("/admin/releases/publish", route.Publish)
}

// PublishRequest is the body of an admin release publish.
type PublishRequest struct {
	AppID          string            `json:"appId" binding:"required"`
	ClusterName    string            `json:"clusterName" binding:"required"`
	DataCenter     string            `json:"dataCenter"`
	NamespaceName  string            `json:"namespaceName" binding:"required"`
	ReleaseKey     string            `json:"releaseKey" binding:"required"`
	Configurations map[string]string `json:"configurations" binding:"required"`
}

// PublishResponse reports the watch keys that were announced.
type PublishResponse struct {
	WatchKeys []string `json:"watchKeys"`
}

// Publish
// @Summary Publish a release
// @Description Writes a release to the release store and announces its watch keys on the release bus, so live caches holding stale entries are invalidated.
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body PublishRequest true "Release to publish"
// @Success 200 {object} PublishResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /admin/releases/publish [post]
func (route *Route) Publish(c *gin.Context) {
	var req PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, responses.ErrorResponse{
			Code:  "f51a931f-4c6e-4b3e-9f9f-8f9c3d8f6b0a",
			Error: "invalid release payload",
		})
		return
	}

	rel := &domainrelease.Release{
		AppID:          req.AppID,
		ClusterName:    req.ClusterName,
		DataCenter:     req.DataCenter,
		NamespaceName:  req.NamespaceName,
		ReleaseKey:     req.ReleaseKey,
		Configurations: req.Configurations,
	}

	ctx := c.Request.Context()
	if err := route.store.Upsert(ctx, rel); err != nil {
		logger.GetLogger().Errorf("admin: failed to write release: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, responses.ErrorResponse{
			Code:  "30a8b5c3-6b13-4a5d-9f5e-0d6bf8b2a6d1",
			Error: "failed to write release",
		})
		return
	}

	watchKeys := route.watchKeysDeriver.AssembleAllWatchKeys(req.AppID, req.ClusterName, req.NamespaceName, req.DataCenter)
	announced := make([]string, 0, len(watchKeys))
	for watchKey := range watchKeys {
		if err := route.publisher.Publish(ctx, route.releaseTopic, watchKey); err != nil {
			logger.GetLogger().Warnf("admin: failed to announce watch key %q: %v", watchKey, err)
			continue
		}
		announced = append(announced, watchKey)
	}

	c.JSON(http.StatusOK, PublishResponse{WatchKeys: announced})
}
