package agentapi

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound matches any *APIError with a 404 status.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTimeRange is returned for a spending range other than 7d, 30d or 90d.
	ErrInvalidTimeRange = errors.New("invalid time range")
)

// APIError is returned when the backend answers with a non-2xx status.
// Detail carries the "detail" field of the error body when there is one.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}
