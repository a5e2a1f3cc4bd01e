package stream

import (
	"errors"
	"fmt"
)

// ErrNoBody is reported when a successful response carries no readable body.
var ErrNoBody = errors.New("response body is empty")

// StatusError is reported when the agent endpoint answers with a non-2xx status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: status %d", e.Code)
}

// AgentError is reported for an error frame inside an otherwise healthy
// stream. Its message is exactly the frame content.
type AgentError struct {
	Message string
}

func (e *AgentError) Error() string {
	return e.Message
}
