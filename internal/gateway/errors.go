package gateway

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v62/github"
)

var (
	// ErrNotFound indicates a repository or owner GitHub does not know or hides from the token.
	ErrNotFound = errors.New("github resource not found")
	// ErrUnauthorized indicates GitHub rejected the configured token.
	ErrUnauthorized = errors.New("github credentials rejected")
)

// classify tags REST errors whose status code will not change on retry.
func classify(err error) error {
	var resp *github.ErrorResponse
	if !errors.As(err, &resp) || resp.Response == nil {
		return err
	}
	switch resp.Response.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	default:
		return err
	}
}
