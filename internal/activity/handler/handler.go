// Package handler provides HTTP handlers for issue and pull request queries.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/github_reporting/internal/activity/model"
	"github.com/festy23/github_reporting/internal/activity/service"
	"github.com/festy23/github_reporting/internal/response"
)

// Handler handles HTTP requests for data endpoints.
type Handler struct {
	issues       service.Service[model.Issue]
	pullRequests service.Service[model.PullRequest]
	windows      response.WindowSource
	logger       *zap.SugaredLogger
}

// New creates a new data handler instance.
func New(
	issues service.Service[model.Issue],
	pullRequests service.Service[model.PullRequest],
	windows response.WindowSource,
	logger *zap.SugaredLogger,
) *Handler {
	return &Handler{
		issues:       issues,
		pullRequests: pullRequests,
		windows:      windows,
		logger:       logger,
	}
}

// PullRequestData handles GET /reporting/data/pr?startTime&endTime&repository.
func (h *Handler) PullRequestData(c *gin.Context) {
	window, repos, ok := h.windowRequest(c, model.KindPullRequests)
	if !ok {
		return
	}

	prs, err := h.pullRequests.Active(c.Request.Context(), repos, window)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, model.DataResponse[model.PullRequest]{Data: prs})
}

// IssueData handles GET /reporting/data/issues?startTime&endTime&repository.
func (h *Handler) IssueData(c *gin.Context) {
	window, repos, ok := h.windowRequest(c, model.KindIssues)
	if !ok {
		return
	}

	issues, err := h.issues.Active(c.Request.Context(), repos, window)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, model.DataResponse[model.Issue]{Data: issues})
}

// UserPullRequests handles GET /reporting/pr/repo/:user/:repo/user/:creator.
// The repository is creator's fork of user/repo; both are searched.
func (h *Handler) UserPullRequests(c *gin.Context) {
	query, ok := h.userQuery(c, "creator", model.KindPullRequests)
	if !ok {
		return
	}

	prs, err := h.pullRequests.ByUser(c.Request.Context(), query)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, prs)
}

// UserIssues handles GET /reporting/issues/repo/:user/:repo/user/:assignee.
func (h *Handler) UserIssues(c *gin.Context) {
	query, ok := h.userQuery(c, "assignee", model.KindIssues)
	if !ok {
		return
	}

	issues, err := h.issues.ByUser(c.Request.Context(), query)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, issues)
}

func (h *Handler) windowRequest(c *gin.Context, kind model.Kind) (model.Window, []string, bool) {
	window, ok := response.QueryWindow(c, h.windows, kind, h.logger)
	if !ok {
		return model.Window{}, nil, false
	}

	var repos []string
	if name := c.Query("repository"); name != "" {
		repo, err := model.ParseRepository(name)
		if err != nil {
			response.FromError(c, h.logger, err)
			return model.Window{}, nil, false
		}
		repos = []string{repo.FullName()}
	}
	return window, repos, true
}

func (h *Handler) userQuery(c *gin.Context, userParam string, kind model.Kind) (model.UserQuery, bool) {
	window, ok := response.QueryWindow(c, h.windows, kind, h.logger)
	if !ok {
		return model.UserQuery{}, false
	}

	role, err := model.ParseRole(c.Query("role"))
	if err != nil {
		response.FromError(c, h.logger, err)
		return model.UserQuery{}, false
	}

	username := c.Param(userParam)
	return model.UserQuery{
		Username:   username,
		Repository: model.FromFork(username, c.Param("user"), c.Param("repo")),
		Role:       role,
		Window:     window,
	}, true
}
