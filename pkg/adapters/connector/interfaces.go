// Package connector defines the collaborator boundary between the engine
// and concrete data connectors. The engine only needs fetch and write; the
// bytes-level connectors for files, databases, and APIs live outside this
// repository and register themselves against a Registry instance.
package connector

import (
	"context"

	"github.com/fuseline-io/fuseline-engine/pkg/models"
)

// SourceConfig identifies what a connector should fetch.
type SourceConfig struct {
	SourceID string `json:"source_id"`
	// Inline rows for connectors that serve in-process data.
	Rows []map[string]any `json:"rows,omitempty"`
}

// SinkConfig identifies where a connector should write.
type SinkConfig struct {
	SinkID string `json:"sink_id"`
}

// WriteResult reports a completed write.
type WriteResult struct {
	RowsWritten int `json:"rows_written"`
}

// Connector fetches and writes fully materialized datasets. Connector
// errors are wrapped by the engine as node execution failures; they never
// abort a whole run.
type Connector interface {
	// Fetch materializes the dataset identified by the source config.
	Fetch(ctx context.Context, cfg SourceConfig) (models.Dataset, error)

	// Write hands a dataset to the sink and reports the row count written.
	Write(ctx context.Context, cfg SinkConfig, data models.Dataset) (WriteResult, error)
}
