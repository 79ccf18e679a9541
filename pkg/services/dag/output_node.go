package dag

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fuseline-io/fuseline-engine/pkg/adapters/connector"
	"github.com/fuseline-io/fuseline-engine/pkg/models"
)

// OutputExecutor writes the combined predecessor data to a sink through
// a registered connector and passes the data through unchanged.
type OutputExecutor struct {
	registry *connector.Registry
	logger   *zap.Logger
}

// NewOutputExecutor creates a new OutputExecutor.
func NewOutputExecutor(registry *connector.Registry, logger *zap.Logger) *OutputExecutor {
	return &OutputExecutor{registry: registry, logger: logger.Named("output-node")}
}

// Type returns the node type this executor handles.
func (e *OutputExecutor) Type() models.NodeType {
	return models.NodeTypeOutput
}

// Execute writes the inputs to the configured sink.
func (e *OutputExecutor) Execute(ctx context.Context, node models.PipelineNode, inputs []models.Dataset) (models.ExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return models.ExecutionResult{}, err
	}

	sinkType := node.Config.SinkType
	if sinkType == "" {
		sinkType = connector.TypeStatic
	}

	conn, err := e.registry.Get(sinkType)
	if err != nil {
		return models.ExecutionResult{}, err
	}

	data := models.Concat(inputs...)
	res, err := conn.Write(ctx, connector.SinkConfig{SinkID: node.Config.SinkID}, data)
	if err != nil {
		return models.ExecutionResult{}, fmt.Errorf("write sink %q: %w", node.Config.SinkID, err)
	}

	e.logger.Debug("output written",
		zap.String("node_id", node.ID),
		zap.String("sink_type", sinkType),
		zap.String("sink_id", node.Config.SinkID),
		zap.Int("rows_written", res.RowsWritten))

	result := successResult(node.ID, data)
	result.RowsProcessed = res.RowsWritten
	return result, nil
}
