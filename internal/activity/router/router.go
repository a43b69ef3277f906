// Package router provides data query routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/github_reporting/internal/activity/handler"
	"github.com/festy23/github_reporting/internal/activity/repository"
	"github.com/festy23/github_reporting/internal/activity/service"
	"github.com/festy23/github_reporting/internal/response"
)

// RegisterRoutes registers the data query routes under group.
func RegisterRoutes(
	group *gin.RouterGroup,
	db *gorm.DB,
	windows response.WindowSource,
	logger *zap.SugaredLogger,
) {
	issues := service.New(repository.NewIssues(db, logger), logger)
	pullRequests := service.New(repository.NewPullRequests(db, logger), logger)
	h := handler.New(issues, pullRequests, windows, logger)

	group.GET("/data/pr", h.PullRequestData)
	group.GET("/data/issues", h.IssueData)
	group.GET("/pr/repo/:user/:repo/user/:creator", h.UserPullRequests)
	group.GET("/issues/repo/:user/:repo/user/:assignee", h.UserIssues)
}
