// Package response provides the JSON error envelope shared by all handlers.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/github_reporting/internal/activity/model"
)

// Error codes.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInvalidDate    = "INVALID_DATE"
	CodeNotFound       = "NOT_FOUND"
	CodeInternal       = "INTERNAL_ERROR"
)

// ErrorResponse represents error response structure.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Error sends an error response.
func Error(c *gin.Context, code string, message string, statusCode int) {
	resp := ErrorResponse{}
	resp.Error.Code = code
	resp.Error.Message = message
	c.JSON(statusCode, resp)
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context, message string) {
	Error(c, CodeNotFound, message, http.StatusNotFound)
}

// FromError maps a domain error to a response; unknown errors are logged and reported as 500.
func FromError(c *gin.Context, logger *zap.SugaredLogger, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidDate):
		Error(c, CodeInvalidDate, err.Error(), http.StatusBadRequest)
	case errors.Is(err, model.ErrInvalidRole),
		errors.Is(err, model.ErrInvalidRepository),
		errors.Is(err, model.ErrInvalidEntity):
		Error(c, CodeInvalidRequest, err.Error(), http.StatusBadRequest)
	default:
		logger.Errorw("Request failed",
			"path", c.FullPath(),
			"error", err,
		)
		Error(c, CodeInternal, "internal server error", http.StatusInternalServerError)
	}
}
