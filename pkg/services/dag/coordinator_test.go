package dag

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fuseline-io/fuseline-engine/pkg/adapters/connector"
	"github.com/fuseline-io/fuseline-engine/pkg/apperrors"
	"github.com/fuseline-io/fuseline-engine/pkg/config"
	"github.com/fuseline-io/fuseline-engine/pkg/models"
)

func newTestCoordinator() (*Coordinator, *connector.Static) {
	registry := connector.NewRegistry()
	static := connector.NewStatic()
	registry.Register(connector.TypeStatic, static)
	executors := NewExecutorSet(registry, zap.NewNop())
	return NewCoordinator(executors, config.Default().Executor, zap.NewNop()), static
}

func agesPipeline() ([]models.PipelineNode, []models.PipelineEdge) {
	nodes := []models.PipelineNode{
		{
			ID:   "src",
			Type: models.NodeTypeSource,
			Config: models.NodeConfig{
				Rows: []map[string]any{
					{"name": "ada", "age": 30},
					{"name": "alan", "age": 25},
					{"name": "grace", "age": 35},
					{"name": "edsger", "age": 28},
					{"name": "barbara", "age": 32},
				},
			},
		},
		{
			ID:   "filter",
			Type: models.NodeTypeTransform,
			Config: models.NodeConfig{
				Filters: []models.FieldFilter{{Field: "age", Operator: models.OpGreaterThan, Value: "25"}},
			},
		},
		{
			ID:     "sink",
			Type:   models.NodeTypeOutput,
			Config: models.NodeConfig{SinkID: "report"},
		},
	}
	edges := []models.PipelineEdge{
		{SourceNodeID: "src", TargetNodeID: "filter"},
		{SourceNodeID: "filter", TargetNodeID: "sink"},
	}
	return nodes, edges
}

func TestRunThreeNodePipeline(t *testing.T) {
	coord, static := newTestCoordinator()
	nodes, edges := agesPipeline()

	run, err := coord.Run(context.Background(), nodes, edges, Callbacks{})
	require.NoError(t, err)

	assert.True(t, run.Success)
	assert.False(t, run.Cancelled)
	assert.NoError(t, run.Err())
	assert.Equal(t, 3, run.CompletedNodes)
	assert.Zero(t, run.FailedNodes)

	filter, ok := run.Result("filter")
	require.True(t, ok)
	assert.Equal(t, 4, filter.RowsProcessed, "one of five rows fails age > 25")

	written, ok := static.Written("report")
	require.True(t, ok)
	assert.Equal(t, 4, written.Len())
}

func TestRunInvokesCallbacks(t *testing.T) {
	coord, _ := newTestCoordinator()
	nodes, edges := agesPipeline()

	var started, completed, messages []string
	var percents []float64
	edgeStates := make(map[string]models.EdgeState)

	cb := Callbacks{
		OnNodeStart:    func(id string) { started = append(started, id) },
		OnNodeComplete: func(r models.ExecutionResult) { completed = append(completed, r.NodeID) },
		OnEdgeUpdate:   func(s models.EdgeState) { edgeStates[s.EdgeID] = s },
		OnProgress: func(done, total int, pct float64, msg string) {
			percents = append(percents, pct)
			messages = append(messages, msg)
		},
	}

	run, err := coord.Run(context.Background(), nodes, edges, cb)
	require.NoError(t, err)
	require.True(t, run.Success)

	assert.Equal(t, []string{"src", "filter", "sink"}, started)
	assert.Equal(t, started, completed)
	assert.Equal(t, 100.0, percents[len(percents)-1])
	assert.Equal(t, "node sink finished", messages[len(messages)-1])

	state, ok := edgeStates["filter->sink"]
	require.True(t, ok)
	assert.True(t, state.Active)
	assert.Equal(t, 4, state.RowCount)
}

func TestRunCycleReturnsNoResult(t *testing.T) {
	coord, _ := newTestCoordinator()
	nodes := []models.PipelineNode{
		{ID: "a", Type: models.NodeTypeTransform},
		{ID: "b", Type: models.NodeTypeTransform},
	}
	edges := []models.PipelineEdge{
		{SourceNodeID: "a", TargetNodeID: "b"},
		{SourceNodeID: "b", TargetNodeID: "a"},
	}

	run, err := coord.Run(context.Background(), nodes, edges, Callbacks{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	assert.Nil(t, run)
}

func TestRunRecordsNodeFailureAndContinues(t *testing.T) {
	coord, _ := newTestCoordinator()
	nodes := []models.PipelineNode{
		{
			ID:     "bad-src",
			Type:   models.NodeTypeSource,
			Config: models.NodeConfig{SourceID: "missing"},
		},
		{
			ID:   "downstream",
			Type: models.NodeTypeTransform,
		},
	}
	edges := []models.PipelineEdge{{SourceNodeID: "bad-src", TargetNodeID: "downstream"}}

	run, err := coord.Run(context.Background(), nodes, edges, Callbacks{})
	require.NoError(t, err)

	assert.False(t, run.Success)
	assert.Equal(t, 1, run.FailedNodes)
	assert.Equal(t, 1, run.CompletedNodes, "downstream still runs on empty input")

	failed, ok := run.Result("bad-src")
	require.True(t, ok)
	assert.False(t, failed.Success)
	assert.NotEmpty(t, failed.Error)

	downstream, ok := run.Result("downstream")
	require.True(t, ok)
	assert.True(t, downstream.Success)
	assert.Zero(t, downstream.RowsProcessed)

	assert.ErrorIs(t, run.Err(), apperrors.ErrExecution)
	assert.Equal(t, models.NodeStatusError, nodes[0].Status)
	assert.Equal(t, models.NodeStatusSuccess, nodes[1].Status)
}

func TestRunTracksNodeStatuses(t *testing.T) {
	coord, _ := newTestCoordinator()
	nodes, edges := agesPipeline()

	var statusAtStart []models.NodeStatus
	cb := Callbacks{
		OnNodeStart: func(id string) {
			for i := range nodes {
				if nodes[i].ID == id {
					statusAtStart = append(statusAtStart, nodes[i].Status)
				}
			}
		},
	}

	run, err := coord.Run(context.Background(), nodes, edges, cb)
	require.NoError(t, err)
	require.True(t, run.Success)

	assert.Equal(t, []models.NodeStatus{
		models.NodeStatusIdle, models.NodeStatusIdle, models.NodeStatusIdle,
	}, statusAtStart, "each node is idle until its turn")

	for _, node := range nodes {
		assert.Equal(t, models.NodeStatusSuccess, node.Status)
		assert.True(t, node.Status.IsTerminal())
		require.NotNil(t, node.StartedAt)
		require.NotNil(t, node.CompletedAt)
		require.NotNil(t, node.DurationMs)
		assert.False(t, node.CompletedAt.Before(*node.StartedAt))
	}
}

func TestRunCancellationSkipsRemainingNodes(t *testing.T) {
	coord, _ := newTestCoordinator()
	nodes, edges := agesPipeline()

	ctx, cancel := context.WithCancel(context.Background())
	cb := Callbacks{
		OnNodeComplete: func(r models.ExecutionResult) {
			if r.NodeID == "src" {
				cancel()
			}
		},
	}

	run, err := coord.Run(ctx, nodes, edges, cb)
	require.NoError(t, err)

	assert.True(t, run.Cancelled)
	assert.False(t, run.Success, "a cancelled run never reports success")
	assert.Equal(t, 1, run.CompletedNodes)
	assert.Zero(t, run.FailedNodes, "unstarted nodes are not failures")

	_, ok := run.Result("filter")
	assert.False(t, ok, "unstarted nodes are absent from the results")
	_, ok = run.Result("sink")
	assert.False(t, ok)

	assert.ErrorIs(t, run.Err(), apperrors.ErrCancelled)
	assert.Equal(t, models.NodeStatusIdle, nodes[1].Status)
	assert.Equal(t, models.NodeStatusIdle, nodes[2].Status)
}

// gatedExecutor signals when a node starts and holds it until released.
type gatedExecutor struct {
	startedCh chan struct{}
	release   chan struct{}
}

func (e *gatedExecutor) Type() models.NodeType { return models.NodeTypeTransform }

func (e *gatedExecutor) Execute(ctx context.Context, node models.PipelineNode, inputs []models.Dataset) (models.ExecutionResult, error) {
	close(e.startedCh)
	<-e.release
	return models.ExecutionResult{NodeID: node.ID, Success: true, RowsProcessed: 7}, nil
}

func TestRunCancelDuringNodeRecordsItsResult(t *testing.T) {
	registry := connector.NewRegistry()
	registry.Register(connector.TypeStatic, connector.NewStatic())
	executors := NewExecutorSet(registry, zap.NewNop())
	gate := &gatedExecutor{startedCh: make(chan struct{}), release: make(chan struct{})}
	executors.Register(gate)
	coord := NewCoordinator(executors, config.Default().Executor, zap.NewNop())

	nodes := []models.PipelineNode{
		{ID: "slow", Type: models.NodeTypeTransform},
		{ID: "after", Type: models.NodeTypeTransform},
	}
	edges := []models.PipelineEdge{{SourceNodeID: "slow", TargetNodeID: "after"}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type runOutcome struct {
		run *models.RunResult
		err error
	}
	runCh := make(chan runOutcome, 1)
	go func() {
		run, err := coord.Run(ctx, nodes, edges, Callbacks{})
		runCh <- runOutcome{run: run, err: err}
	}()

	<-gate.startedCh
	cancel()
	close(gate.release)

	got := <-runCh
	require.NoError(t, got.err)
	run := got.run

	assert.True(t, run.Cancelled)
	assert.False(t, run.Success)

	slow, ok := run.Result("slow")
	require.True(t, ok, "a node running at cancellation completes and is recorded")
	assert.True(t, slow.Success)
	assert.Equal(t, 7, slow.RowsProcessed)
	assert.Equal(t, 1, run.CompletedNodes)
	assert.Equal(t, 7, run.TotalRows)

	_, ok = run.Result("after")
	assert.False(t, ok, "cancellation stops further nodes from starting")
}

// stallExecutor blocks until its context is done.
type stallExecutor struct{}

func (stallExecutor) Type() models.NodeType { return models.NodeTypeTransform }

func (stallExecutor) Execute(ctx context.Context, node models.PipelineNode, inputs []models.Dataset) (models.ExecutionResult, error) {
	<-ctx.Done()
	return models.ExecutionResult{}, ctx.Err()
}

func TestRunNodeTimeout(t *testing.T) {
	registry := connector.NewRegistry()
	registry.Register(connector.TypeStatic, connector.NewStatic())
	executors := NewExecutorSet(registry, zap.NewNop())
	executors.Register(stallExecutor{})
	coord := NewCoordinator(executors, config.Default().Executor, zap.NewNop())

	nodes := []models.PipelineNode{
		{ID: "slow", Type: models.NodeTypeTransform, Config: models.NodeConfig{TimeoutMs: 20}},
	}

	start := time.Now()
	run, err := coord.Run(context.Background(), nodes, nil, Callbacks{})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)

	assert.False(t, run.Success)
	assert.Equal(t, 1, run.FailedNodes)

	slow, ok := run.Result("slow")
	require.True(t, ok)
	assert.False(t, slow.Success)
	assert.Contains(t, slow.Error, "timed out")
}
