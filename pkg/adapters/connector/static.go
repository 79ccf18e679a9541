package connector

import (
	"context"
	"fmt"
	"sync"

	"github.com/fuseline-io/fuseline-engine/pkg/models"
)

// TypeStatic is the registry key of the built-in static connector.
const TypeStatic = "static"

// Static serves datasets held in memory. Source nodes with inline rows
// resolve through it, and it doubles as a sink that retains what was
// written so callers (and tests) can inspect output.
type Static struct {
	mu       sync.RWMutex
	datasets map[string]models.Dataset
	written  map[string]models.Dataset
}

// NewStatic returns an empty static connector.
func NewStatic() *Static {
	return &Static{
		datasets: make(map[string]models.Dataset),
		written:  make(map[string]models.Dataset),
	}
}

// Add registers a dataset under the given source id.
func (s *Static) Add(sourceID string, data models.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[sourceID] = data
}

// Fetch returns inline rows when present, otherwise the dataset
// registered under cfg.SourceID.
func (s *Static) Fetch(ctx context.Context, cfg SourceConfig) (models.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return models.Dataset{}, err
	}
	if len(cfg.Rows) > 0 {
		return models.DatasetFromRaw(cfg.SourceID, cfg.Rows), nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.datasets[cfg.SourceID]
	if !ok {
		return models.Dataset{}, fmt.Errorf("static connector: no dataset registered for source %q", cfg.SourceID)
	}
	return data.Clone(), nil
}

// Write retains the dataset under cfg.SinkID and reports the row count.
func (s *Static) Write(ctx context.Context, cfg SinkConfig, data models.Dataset) (WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return WriteResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.written[cfg.SinkID] = data.Clone()
	return WriteResult{RowsWritten: data.Len()}, nil
}

// Written returns what was last written to the given sink id.
func (s *Static) Written(sinkID string) (models.Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.written[sinkID]
	return data, ok
}
