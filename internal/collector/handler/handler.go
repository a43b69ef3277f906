// Package handler provides HTTP handlers for collection control, lookups and status streams.
package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/github_reporting/internal/activity/model"
	"github.com/festy23/github_reporting/internal/collector"
	"github.com/festy23/github_reporting/internal/response"
)

// CodeCollectionFailed reports a failed synchronous collection pass.
const CodeCollectionFailed = "COLLECTION_FAILED"

// Collector defines the collection operations exposed over HTTP.
type Collector interface {
	Enable() bool
	Disable() bool
	Enabled() bool
	Status(kind model.Kind) (collector.Status, error)
	Subscribe(kind model.Kind) (<-chan collector.Status, func(), error)
	CollectIssues(ctx context.Context) error
	CollectPullRequests(ctx context.Context) error
	Organizations() []string
	Users() []string
	Repositories(ctx context.Context) (map[string][]model.Repository, error)
	RepositoriesOf(ctx context.Context, owner string) ([]model.Repository, error)
	StartTime(ctx context.Context, kind model.Kind) (time.Time, error)
	EndTime(kind model.Kind) time.Time
}

// Handler handles HTTP requests for collector endpoints.
type Handler struct {
	collector Collector
	logger    *zap.SugaredLogger
}

// New creates a new collector handler instance.
func New(c Collector, logger *zap.SugaredLogger) *Handler {
	return &Handler{collector: c, logger: logger}
}

// IssueStatusStream handles GET /reporting/issues/status as server-sent events.
func (h *Handler) IssueStatusStream(c *gin.Context) {
	h.stream(c, model.KindIssues)
}

// PullRequestStatusStream handles GET /reporting/prs/status as server-sent events.
func (h *Handler) PullRequestStatusStream(c *gin.Context) {
	h.stream(c, model.KindPullRequests)
}

func (h *Handler) stream(c *gin.Context, kind model.Kind) {
	updates, cancel, err := h.collector.Subscribe(kind)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	defer cancel()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case status, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("status", status)
			return true
		}
	})
}

// Enable handles GET /reporting/enable.
func (h *Handler) Enable(c *gin.Context) {
	c.JSON(http.StatusOK, h.collector.Enable())
}

// Disable handles GET /reporting/disable.
func (h *Handler) Disable(c *gin.Context) {
	c.JSON(http.StatusOK, h.collector.Disable())
}

// Status handles GET /reporting/status.
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.collector.Enabled())
}

// KindStatus handles GET /reporting/status/:kind with the full status snapshot.
func (h *Handler) KindStatus(c *gin.Context) {
	status, err := h.collector.Status(model.Kind(c.Param("kind")))
	if err != nil {
		if errors.Is(err, collector.ErrUnknownKind) {
			response.NotFound(c, err.Error())
			return
		}
		response.FromError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// CollectIssues handles GET /reporting/collect/issues and waits for the pass.
func (h *Handler) CollectIssues(c *gin.Context) {
	h.collect(c, model.KindIssues, h.collector.CollectIssues)
}

// CollectPullRequests handles GET /reporting/collect/pull-requests and waits for the pass.
func (h *Handler) CollectPullRequests(c *gin.Context) {
	h.collect(c, model.KindPullRequests, h.collector.CollectPullRequests)
}

func (h *Handler) collect(c *gin.Context, kind model.Kind, run func(context.Context) error) {
	if err := run(c.Request.Context()); err != nil {
		if errors.Is(err, collector.ErrNoScopes) {
			response.Error(c, response.CodeInvalidRequest, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Warnw("Collection pass failed", "kind", kind, "error", err)
		response.Error(c, CodeCollectionFailed, err.Error(), http.StatusBadGateway)
		return
	}

	status, err := h.collector.Status(kind)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Organizations handles GET /reporting/orgs.
func (h *Handler) Organizations(c *gin.Context) {
	c.JSON(http.StatusOK, h.collector.Organizations())
}

// Users handles GET /reporting/users.
func (h *Handler) Users(c *gin.Context) {
	c.JSON(http.StatusOK, h.collector.Users())
}

// Repositories handles GET /reporting/repositories.
func (h *Handler) Repositories(c *gin.Context) {
	repos, err := h.collector.Repositories(c.Request.Context())
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, repos)
}

// UserRepositories handles GET /reporting/repositories/:user.
func (h *Handler) UserRepositories(c *gin.Context) {
	user := c.Param("user")
	repos, err := h.collector.RepositoriesOf(c.Request.Context(), user)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, map[string][]model.Repository{user: repos})
}

// StartTime handles GET /reporting/start-time as epoch milliseconds.
func (h *Handler) StartTime(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	start, err := h.collector.StartTime(c.Request.Context(), kind)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, start.UnixMilli())
}

// EndTime handles GET /reporting/end-time as epoch milliseconds.
func (h *Handler) EndTime(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.collector.EndTime(kind).UnixMilli())
}

// kind reads the optional kind query parameter; pull requests by default.
func (h *Handler) kind(c *gin.Context) (model.Kind, bool) {
	switch kind := model.Kind(c.DefaultQuery("kind", string(model.KindPullRequests))); kind {
	case model.KindIssues, model.KindPullRequests:
		return kind, true
	default:
		response.Error(c, response.CodeInvalidRequest, "kind must be issues or pull-requests", http.StatusBadRequest)
		return "", false
	}
}
