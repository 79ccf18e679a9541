package dag

import (
	"context"

	"go.uber.org/zap"

	"github.com/fuseline-io/fuseline-engine/pkg/adapters/connector"
	"github.com/fuseline-io/fuseline-engine/pkg/models"
)

// NodeExecutor defines per-node-type execution behavior. Inputs are the
// concatenation of all predecessor outputs, in edge insertion order; a
// failed predecessor contributes an empty dataset, never an error.
type NodeExecutor interface {
	// Type returns the node type this executor handles.
	Type() models.NodeType

	// Execute runs the node's work over the gathered inputs. A returned
	// error becomes a recorded per-node failure, not a run abort.
	Execute(ctx context.Context, node models.PipelineNode, inputs []models.Dataset) (models.ExecutionResult, error)
}

// ExecutorSet maps node types to their executors.
type ExecutorSet struct {
	executors map[models.NodeType]NodeExecutor
}

// NewExecutorSet builds the standard executor set over a connector
// registry.
func NewExecutorSet(registry *connector.Registry, logger *zap.Logger) *ExecutorSet {
	set := &ExecutorSet{executors: make(map[models.NodeType]NodeExecutor)}
	for _, exec := range []NodeExecutor{
		NewSourceExecutor(registry, logger),
		NewTransformExecutor(logger),
		NewMergeExecutor(logger),
		NewDiffExecutor(logger),
		NewOutputExecutor(registry, logger),
	} {
		set.Register(exec)
	}
	return set
}

// Register adds or replaces the executor for its node type.
func (s *ExecutorSet) Register(exec NodeExecutor) {
	s.executors[exec.Type()] = exec
}

// For returns the executor for a node type.
func (s *ExecutorSet) For(t models.NodeType) (NodeExecutor, bool) {
	exec, ok := s.executors[t]
	return exec, ok
}

// successResult builds a standard success result around an output dataset.
func successResult(nodeID string, data models.Dataset, warnings ...string) models.ExecutionResult {
	return models.ExecutionResult{
		NodeID:        nodeID,
		Success:       true,
		Data:          data,
		RowsProcessed: data.Len(),
		OutputSchema:  data.Columns,
		Warnings:      warnings,
	}
}
