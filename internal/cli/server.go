package cli

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	activityRouter "github.com/festy23/github_reporting/internal/activity/router"
	"github.com/festy23/github_reporting/internal/collector"
	collectorRouter "github.com/festy23/github_reporting/internal/collector/router"
	"github.com/festy23/github_reporting/internal/config"
	"github.com/festy23/github_reporting/internal/health"
	"github.com/festy23/github_reporting/internal/middleware"
	reportRouter "github.com/festy23/github_reporting/internal/report/router"
)

// APIPrefix is the route group of every reporting endpoint.
const APIPrefix = "/reporting"

// NewRouter builds the HTTP engine with every route registered.
func NewRouter(cfg config.Config, db *gorm.DB, c *collector.Collector, logger *zap.SugaredLogger) *gin.Engine {
	gin.SetMode(cfg.GinMode)

	r := gin.New()
	r.Use(
		middleware.Recovery(logger),
		middleware.Logger(logger, "/health", APIPrefix+"/issues/status", APIPrefix+"/prs/status"),
	)

	health.RegisterRoutes(r, db, logger)

	group := r.Group(APIPrefix)
	collectorRouter.RegisterRoutes(group, c, logger)
	activityRouter.RegisterRoutes(group, db, c, logger)
	reportRouter.RegisterRoutes(group, db, cfg.Report, c, logger)

	return r
}
