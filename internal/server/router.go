package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"github.com/ablay/godrain/internal/config"
	"github.com/ablay/godrain/internal/drain"
	"github.com/ablay/godrain/internal/logger"
	"github.com/ablay/godrain/internal/metrics"
)

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config       config.Config
	Logger       *zap.Logger
	ObjectStore  *minio.Client
	DrainService *drain.Service
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware())
	router.Use(logger.RequestLogger(deps.Logger))

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "nothing to see here, move along")
	})

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	if deps.DrainService != nil {
		drain.RegisterRoutes(&router.RouterGroup, deps.DrainService, deps.Logger)
	}

	return router
}
