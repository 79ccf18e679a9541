package apperrors

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrConfiguration marks fatal pre-run errors (cyclic graph, missing
	// required node config). No RunResult is produced.
	ErrConfiguration = errors.New("configuration error")

	// ErrExecution marks a single node's logic or connector failure.
	// Recorded per node; non-fatal to the run.
	ErrExecution = errors.New("execution error")

	// ErrValidation marks a join plan step with no viable relationship.
	// The plan is excluded; other plans are still returned.
	ErrValidation = errors.New("validation error")

	// ErrCancelled marks a run stopped by the caller. Nodes not yet
	// started are omitted from the result, not marked failed.
	ErrCancelled = errors.New("run cancelled")

	// ErrConnectorNotFound marks a source/sink type with no registered
	// connector.
	ErrConnectorNotFound = errors.New("connector not found")
)

// ConfigurationError wraps ErrConfiguration with graph context.
type ConfigurationError struct {
	Reason string
	NodeID string
}

func (e *ConfigurationError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("configuration error: %s (node %s)", e.Reason, e.NodeID)
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// NewConfigurationError builds a ConfigurationError without node context.
func NewConfigurationError(reason string) *ConfigurationError {
	return &ConfigurationError{Reason: reason}
}

// TimeoutError marks a node that exceeded its deadline. It is an
// ExecutionError subtype: errors.Is(err, ErrExecution) holds.
type TimeoutError struct {
	NodeID   string
	Deadline time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("node %s timed out after %s", e.NodeID, e.Deadline)
}

func (e *TimeoutError) Unwrap() error {
	return ErrExecution
}

// IsTimeout reports whether err is a node timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
