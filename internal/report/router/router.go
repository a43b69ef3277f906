// Package router provides report routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	activityRepository "github.com/festy23/github_reporting/internal/activity/repository"
	activityService "github.com/festy23/github_reporting/internal/activity/service"
	"github.com/festy23/github_reporting/internal/config"
	"github.com/festy23/github_reporting/internal/report/handler"
	"github.com/festy23/github_reporting/internal/report/service"
	"github.com/festy23/github_reporting/internal/response"
)

// RegisterRoutes registers the report routes under group.
func RegisterRoutes(
	group *gin.RouterGroup,
	db *gorm.DB,
	cfg config.ReportConfig,
	windows response.WindowSource,
	logger *zap.SugaredLogger,
) {
	issues := activityService.New(activityRepository.NewIssues(db, logger), logger)
	pullRequests := activityService.New(activityRepository.NewPullRequests(db, logger), logger)
	h := handler.New(service.New(issues, pullRequests, cfg, logger), windows, logger)

	group.GET("/report/weekly", h.WeeklyReport)
	group.GET("/summary/pr", h.PullRequestSummary)
}
