// Package configfiles exposes the three GET routes the query pipeline
// (C5) is reachable through.
package configfiles

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/relaycfg/configserver/app/domain/configfile"
	"github.com/relaycfg/configserver/app/domain/querypipeline"
	"github.com/relaycfg/configserver/app/interfaces/http/responses"
	"github.com/relaycfg/configserver/app/utils/logger"
	"github.com/relaycfg/configserver/app/utils/webutils"
)

// Route registers the properties/json/raw config-file endpoints.
type Route struct {
	pipeline *querypipeline.Pipeline
}

func NewRoute(pipeline *querypipeline.Pipeline) *Route {
	return &Route{pipeline: pipeline}
}

func (route *Route) RegisterRouter(router gin.IRouter) {
	router.GET("/configfiles/:appId/:clusterName/:namespace", route.GetProperties)
	router.GET("/configfiles/json/:appId/:clusterName/:namespace", route.GetJSON)
	router.GET("/configfiles/raw/:appId/:clusterName/:namespace", route.GetRaw)
}

// GetProperties
// @Summary Get a config file rendered as Java properties
// @Tags ConfigFiles
// @Param appId path string true "Application ID"
// @Param clusterName path string true "Cluster name"
// @Param namespace path string true "Namespace name"
// @Param dataCenter query string false "Data center"
// @Param ip query string false "Client IP, for gray-release matching"
// @Param label query string false "Client label, for gray-release matching"
// @Success 200 {string} string "Rendered properties body"
// @Failure 404 {string} string "No configuration found (empty body)"
// @Router /configfiles/{appId}/{clusterName}/{namespace} [get]
func (route *Route) GetProperties(c *gin.Context) {
	route.handle(c, configfile.OutputProperties)
}

// GetJSON
// @Summary Get a config file rendered as JSON
// @Tags ConfigFiles
// @Param appId path string true "Application ID"
// @Param clusterName path string true "Cluster name"
// @Param namespace path string true "Namespace name"
// @Param dataCenter query string false "Data center"
// @Param ip query string false "Client IP, for gray-release matching"
// @Param label query string false "Client label, for gray-release matching"
// @Success 200 {object} map[string]string
// @Failure 404 {string} string "No configuration found (empty body)"
// @Router /configfiles/json/{appId}/{clusterName}/{namespace} [get]
func (route *Route) GetJSON(c *gin.Context) {
	route.handle(c, configfile.OutputJSON)
}

// GetRaw
// @Summary Get a config file in its native storage format
// @Tags ConfigFiles
// @Param appId path string true "Application ID"
// @Param clusterName path string true "Cluster name"
// @Param namespace path string true "Namespace name"
// @Param dataCenter query string false "Data center"
// @Param ip query string false "Client IP, for gray-release matching"
// @Param label query string false "Client label, for gray-release matching"
// @Success 200 {string} string "Native-format document body"
// @Failure 404 {string} string "No configuration found (empty body)"
// @Router /configfiles/raw/{appId}/{clusterName}/{namespace} [get]
func (route *Route) GetRaw(c *gin.Context) {
	route.handle(c, configfile.OutputRaw)
}

func (route *Route) handle(c *gin.Context, format configfile.OutputFormat) {
	ctx := c.Request.Context()

	clientIP := c.Query("ip")
	if clientIP == "" {
		clientIP = webutils.TryToGetClientIp(c.Request)
	}

	req := querypipeline.Request{
		Format:      format,
		AppID:       c.Param("appId"),
		Cluster:     c.Param("clusterName"),
		Namespace:   c.Param("namespace"),
		DataCenter:  c.Query("dataCenter"),
		ClientIP:    clientIP,
		ClientLabel: c.Query("label"),
	}

	result, err := route.pipeline.Query(ctx, req)
	if err != nil {
		if errors.Is(err, querypipeline.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		logger.GetLogger().
			WithField("app_id", req.AppID).
			WithField("namespace", req.Namespace).
			Errorf("configfiles: resolver error: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, responses.ErrorResponse{
			Code:  "a4f2e6f1-9a3a-4a7e-9cf0-6e3f8ab0c1de",
			Error: "failed to resolve config file",
		})
		return
	}

	c.Data(http.StatusOK, result.ContentType, []byte(result.Payload))
}
