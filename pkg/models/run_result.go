package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fuseline-io/fuseline-engine/pkg/apperrors"
)

// ============================================================================
// Execution Result
// ============================================================================

// ExecutionResult is the tagged per-node outcome of one execution.
// Downstream nodes always receive a (possibly empty) Dataset, never an
// error; the run continues past per-node failures.
type ExecutionResult struct {
	NodeID  string `json:"node_id"`
	Success bool   `json:"success"`

	Data          Dataset  `json:"data"`
	RowsProcessed int      `json:"rows_processed"`
	OutputSchema  []string `json:"output_schema,omitempty"`

	// Diff entries when the node was a diff node.
	Diff []DiffEntry `json:"diff,omitempty"`

	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`

	DurationMs int64 `json:"duration_ms"`
}

// ============================================================================
// Run Result
// ============================================================================

// RunResult is the immutable record of one pipeline execution. A completed
// result is never mutated; a retry creates a new RunResult.
type RunResult struct {
	RunID uuid.UUID `json:"run_id"`

	// Results keyed by node id. Nodes never started (cancellation) are
	// absent, not failed.
	Results map[string]ExecutionResult `json:"results"`

	// Edge metadata observed during the run, keyed by edge key.
	Edges map[string]EdgeState `json:"edges,omitempty"`

	TotalRows      int  `json:"total_rows"`
	CompletedNodes int  `json:"completed_nodes"`
	FailedNodes    int  `json:"failed_nodes"`
	Success        bool `json:"success"`
	Cancelled      bool `json:"cancelled"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// Result returns the execution result for a node, if the node ran.
func (r *RunResult) Result(nodeID string) (ExecutionResult, bool) {
	res, ok := r.Results[nodeID]
	return res, ok
}

// Duration returns the wall-clock duration of the run.
func (r *RunResult) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// Err summarizes the run outcome as an error for callers that match
// with errors.Is: ErrCancelled when the run was cancelled, a wrapped
// ErrExecution when any node failed, nil for a fully successful run.
func (r *RunResult) Err() error {
	switch {
	case r.Cancelled:
		return apperrors.ErrCancelled
	case r.FailedNodes > 0:
		return fmt.Errorf("%w: %d of %d nodes failed",
			apperrors.ErrExecution, r.FailedNodes, r.FailedNodes+r.CompletedNodes)
	default:
		return nil
	}
}
