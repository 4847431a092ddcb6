package trakt

import (
	"errors"
	"fmt"
)

// ErrInvalidToken indicates the provided API token is invalid
var ErrInvalidToken = errors.New("invalid or expired Trakt token")

// ErrRateLimited indicates the API rate limit was exceeded
var ErrRateLimited = errors.New("trakt API rate limit exceeded")

// ErrNotFound indicates the requested resource does not exist
var ErrNotFound = errors.New("trakt resource not found")

// ServerError represents a 5xx error from the Trakt API
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("Trakt server error: HTTP %d", e.StatusCode)
}
