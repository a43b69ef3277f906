// Package router provides collector routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/github_reporting/internal/collector/handler"
)

// RegisterRoutes registers the collector routes under group.
func RegisterRoutes(group *gin.RouterGroup, c handler.Collector, logger *zap.SugaredLogger) {
	h := handler.New(c, logger)

	group.GET("/issues/status", h.IssueStatusStream)
	group.GET("/prs/status", h.PullRequestStatusStream)
	group.GET("/enable", h.Enable)
	group.GET("/disable", h.Disable)
	group.GET("/status", h.Status)
	group.GET("/status/:kind", h.KindStatus)
	group.GET("/collect/issues", h.CollectIssues)
	group.GET("/collect/pull-requests", h.CollectPullRequests)
	group.GET("/orgs", h.Organizations)
	group.GET("/users", h.Users)
	group.GET("/repositories", h.Repositories)
	group.GET("/repositories/:user", h.UserRepositories)
	group.GET("/start-time", h.StartTime)
	group.GET("/end-time", h.EndTime)
}
