// Package handler provides HTTP handlers for the weekly report and summaries.
package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	activity "github.com/festy23/github_reporting/internal/activity/model"
	reportModel "github.com/festy23/github_reporting/internal/report/model"
	"github.com/festy23/github_reporting/internal/report/service"
	"github.com/festy23/github_reporting/internal/response"
)

// Handler handles HTTP requests for report endpoints.
type Handler struct {
	service service.Service
	windows response.WindowSource
	logger  *zap.SugaredLogger
}

// New creates a new report handler instance.
func New(service service.Service, windows response.WindowSource, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		service: service,
		windows: windows,
		logger:  logger,
	}
}

// WeeklyReport handles GET /reporting/report/weekly?startTime&endTime&users&format.
// The markdown body is returned unless format=json.
func (h *Handler) WeeklyReport(c *gin.Context) {
	window, ok := response.QueryWindow(c, h.windows, activity.KindIssues, h.logger)
	if !ok {
		return
	}

	req := reportModel.Request{Window: window}
	for _, user := range strings.Split(c.Query("users"), ",") {
		if user = strings.TrimSpace(user); user != "" {
			req.Users = append(req.Users, user)
		}
	}

	report, err := h.service.WeeklyReport(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, report)
		return
	}
	c.String(http.StatusOK, report.Markdown)
}

// PullRequestSummary handles GET /reporting/summary/pr?startTime&endTime.
func (h *Handler) PullRequestSummary(c *gin.Context) {
	window, ok := response.QueryWindow(c, h.windows, activity.KindPullRequests, h.logger)
	if !ok {
		return
	}

	summary, err := h.service.PullRequestSummary(c.Request.Context(), window)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
