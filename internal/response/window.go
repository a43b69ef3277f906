package response

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/github_reporting/internal/activity/model"
)

// WindowSource supplies the default query window of an entity kind.
type WindowSource interface {
	DefaultWindow(ctx context.Context, kind model.Kind) (model.Window, error)
}

// QueryWindow reads the startTime and endTime query parameters, falling back
// to the default window of kind. On failure the error response is already
// written and ok is false.
func QueryWindow(
	c *gin.Context,
	windows WindowSource,
	kind model.Kind,
	logger *zap.SugaredLogger,
) (window model.Window, ok bool) {
	fallback, err := windows.DefaultWindow(c.Request.Context(), kind)
	if err != nil {
		FromError(c, logger, err)
		return model.Window{}, false
	}

	window, err = model.ParseWindow(c.Query("startTime"), c.Query("endTime"), fallback)
	if err != nil {
		FromError(c, logger, err)
		return model.Window{}, false
	}
	return window, true
}
