package dag

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fuseline-io/fuseline-engine/pkg/apperrors"
	"github.com/fuseline-io/fuseline-engine/pkg/config"
	"github.com/fuseline-io/fuseline-engine/pkg/models"
)

// Callbacks receive run progress as nodes start, finish, and push data
// across edges. Any callback may be nil.
type Callbacks struct {
	OnNodeStart    func(nodeID string)
	OnNodeComplete func(result models.ExecutionResult)
	OnEdgeUpdate   func(state models.EdgeState)
	OnProgress     func(completed, total int, percent float64, message string)
}

// Coordinator runs a pipeline graph node by node in topological order.
type Coordinator struct {
	executors      *ExecutorSet
	defaultTimeout time.Duration
	logger         *zap.Logger
}

// NewCoordinator creates a Coordinator with the given executor set.
func NewCoordinator(executors *ExecutorSet, cfg config.ExecutorConfig, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		executors:      executors,
		defaultTimeout: time.Duration(cfg.DefaultNodeTimeoutMs) * time.Millisecond,
		logger:         logger.Named("coordinator"),
	}
}

type execOutcome struct {
	result models.ExecutionResult
	err    error
}

// Run validates the graph, orders it, and executes every node. A graph
// that fails validation or contains a cycle returns an error and no run
// result. A node failure does not stop the run: downstream nodes execute
// with empty inputs for the failed predecessor. Status and timing fields
// are written in place on the caller's nodes as each one starts and
// finishes.
//
// Cancelling ctx stops the run between nodes. A node that already
// started runs to completion and its result is recorded.
func (c *Coordinator) Run(ctx context.Context, nodes []models.PipelineNode, edges []models.PipelineEdge, cb Callbacks) (*models.RunResult, error) {
	graph, err := NewGraph(nodes, edges)
	if err != nil {
		return nil, err
	}
	order, err := graph.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	byIndex := make(map[string]int, len(nodes))
	for i := range nodes {
		nodes[i].Status = models.NodeStatusIdle
		byIndex[nodes[i].ID] = i
	}

	run := &models.RunResult{
		RunID:     uuid.New(),
		Results:   make(map[string]models.ExecutionResult, len(order)),
		Edges:     make(map[string]models.EdgeState),
		StartedAt: time.Now(),
	}

	c.logger.Info("starting pipeline run",
		zap.String("run_id", run.RunID.String()),
		zap.Int("nodes", len(order)))

	total := len(order)
	for i, nodeID := range order {
		node, _ := graph.Node(nodeID)
		if ctx.Err() != nil {
			break
		}

		if cb.OnNodeStart != nil {
			cb.OnNodeStart(node.ID)
		}

		idx := byIndex[node.ID]
		startedAt := time.Now()
		nodes[idx].Status = models.NodeStatusRunning
		nodes[idx].StartedAt = &startedAt

		result := c.runNode(ctx, graph, node, run)

		completedAt := time.Now()
		duration := result.DurationMs
		nodes[idx].CompletedAt = &completedAt
		nodes[idx].DurationMs = &duration
		if result.Success {
			nodes[idx].Status = models.NodeStatusSuccess
		} else {
			nodes[idx].Status = models.NodeStatusError
		}

		run.Results[node.ID] = result
		if cb.OnNodeComplete != nil {
			cb.OnNodeComplete(result)
		}

		for _, edge := range graph.OutgoingEdges(node.ID) {
			state := models.EdgeState{
				EdgeID:   edge.Key(),
				RowCount: result.Data.Len(),
				Schema:   result.OutputSchema,
				Active:   result.Success,
			}
			run.Edges[state.EdgeID] = state
			if cb.OnEdgeUpdate != nil {
				cb.OnEdgeUpdate(state)
			}
		}

		if cb.OnProgress != nil {
			cb.OnProgress(i+1, total, float64(i+1)*100/float64(total), fmt.Sprintf("node %s finished", node.ID))
		}
	}
	run.Cancelled = ctx.Err() != nil

	for _, result := range run.Results {
		run.TotalRows += result.RowsProcessed
		if result.Success {
			run.CompletedNodes++
		} else {
			run.FailedNodes++
		}
	}
	run.Success = run.FailedNodes == 0 && !run.Cancelled
	run.CompletedAt = time.Now()

	c.logger.Info("pipeline run finished",
		zap.String("run_id", run.RunID.String()),
		zap.Bool("success", run.Success),
		zap.Bool("cancelled", run.Cancelled),
		zap.Int("completed_nodes", run.CompletedNodes),
		zap.Int("failed_nodes", run.FailedNodes),
		zap.Int("total_rows", run.TotalRows))

	return run, nil
}

// runNode executes a single node under its timeout. The node context is
// detached from the caller's cancellation: a node that already started
// runs to completion, and only the per-node deadline can cut it short.
func (c *Coordinator) runNode(ctx context.Context, graph *Graph, node models.PipelineNode, run *models.RunResult) models.ExecutionResult {
	executor, ok := c.executors.For(node.Type)
	if !ok {
		return failedResult(node.ID, fmt.Errorf("no executor registered for node type %q", node.Type))
	}

	inputs := c.gatherInputs(graph, node, run)

	timeout := c.defaultTimeout
	if node.Config.TimeoutMs > 0 {
		timeout = time.Duration(node.Config.TimeoutMs) * time.Millisecond
	}

	nodeCtx := context.WithoutCancel(ctx)
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		nodeCtx, cancel = context.WithTimeout(nodeCtx, timeout)
	}
	defer cancel()

	started := time.Now()
	done := make(chan execOutcome, 1)
	go func() {
		result, execErr := executor.Execute(nodeCtx, node, inputs)
		done <- execOutcome{result: result, err: execErr}
	}()

	var outcome execOutcome
	select {
	case outcome = <-done:
	case <-nodeCtx.Done():
		timeoutErr := &apperrors.TimeoutError{NodeID: node.ID, Deadline: timeout}
		c.logger.Warn("node timed out",
			zap.String("node_id", node.ID),
			zap.Duration("timeout", timeout))
		result := failedResult(node.ID, timeoutErr)
		result.DurationMs = time.Since(started).Milliseconds()
		return result
	}

	if outcome.err != nil {
		c.logger.Error("node execution failed",
			zap.String("node_id", node.ID),
			zap.String("node_type", string(node.Type)),
			zap.Error(outcome.err))
		result := failedResult(node.ID, outcome.err)
		result.DurationMs = time.Since(started).Milliseconds()
		return result
	}

	outcome.result.DurationMs = time.Since(started).Milliseconds()
	return outcome.result
}

// gatherInputs collects predecessor outputs in edge insertion order. A
// predecessor that failed or never ran contributes an empty dataset.
func (c *Coordinator) gatherInputs(graph *Graph, node models.PipelineNode, run *models.RunResult) []models.Dataset {
	preds := graph.Predecessors(node.ID)
	inputs := make([]models.Dataset, 0, len(preds))
	for _, pred := range preds {
		result, ok := run.Results[pred]
		if !ok || !result.Success {
			inputs = append(inputs, models.Dataset{})
			continue
		}
		inputs = append(inputs, result.Data)
	}
	return inputs
}

// failedResult builds a failure entry for a node that errored.
func failedResult(nodeID string, err error) models.ExecutionResult {
	return models.ExecutionResult{
		NodeID: nodeID,
		Error:  err.Error(),
	}
}
