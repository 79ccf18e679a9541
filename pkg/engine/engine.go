// Package engine wires the pipeline coordinator, the relationship
// analysis service, and the connector registry behind one facade.
package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/fuseline-io/fuseline-engine/pkg/adapters/connector"
	"github.com/fuseline-io/fuseline-engine/pkg/config"
	"github.com/fuseline-io/fuseline-engine/pkg/models"
	"github.com/fuseline-io/fuseline-engine/pkg/services"
	"github.com/fuseline-io/fuseline-engine/pkg/services/dag"
)

// Engine is the top-level entry point. Construct one per process with
// NewEngine and share it freely; all methods are safe for concurrent use
// as long as registered connectors are.
type Engine struct {
	cfg         *config.Config
	registry    *connector.Registry
	coordinator *dag.Coordinator
	analysis    services.AnalysisService
	logger      *zap.Logger
}

// Options customize engine construction. Zero values fall back to
// defaults: Default() config, a fresh registry with the static connector
// registered, and a no-op logger.
type Options struct {
	Config   *config.Config
	Registry *connector.Registry
	Logger   *zap.Logger
}

// NewEngine builds an Engine from the given options.
func NewEngine(opts Options) *Engine {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := opts.Registry
	if registry == nil {
		registry = connector.NewRegistry()
		registry.Register(connector.TypeStatic, connector.NewStatic())
	}

	executors := dag.NewExecutorSet(registry, logger)
	return &Engine{
		cfg:         cfg,
		registry:    registry,
		coordinator: dag.NewCoordinator(executors, cfg.Executor, logger),
		analysis:    services.NewAnalysisService(cfg.Analysis, logger),
		logger:      logger.Named("engine"),
	}
}

// Registry exposes the connector registry so callers can register
// additional source and sink connectors.
func (e *Engine) Registry() *connector.Registry {
	return e.registry
}

// RunPipeline executes the given graph and returns the aggregated run
// result. Graph validation failures return an error with no result.
func (e *Engine) RunPipeline(ctx context.Context, nodes []models.PipelineNode, edges []models.PipelineEdge, cb dag.Callbacks) (*models.RunResult, error) {
	return e.coordinator.Run(ctx, nodes, edges, cb)
}

// RunDefinition executes a parsed pipeline definition.
func (e *Engine) RunDefinition(ctx context.Context, p *dag.Pipeline, cb dag.Callbacks) (*models.RunResult, error) {
	return e.coordinator.Run(ctx, p.Nodes, p.Edges, cb)
}

// LoadPipeline reads, parses, and validates a YAML pipeline definition.
func (e *Engine) LoadPipeline(path string) (*dag.Pipeline, error) {
	return dag.LoadPipelineFile(path)
}

// AnalyzeRelationships profiles the datasets, scores relationship
// candidates, and plans joins across them.
func (e *Engine) AnalyzeRelationships(ctx context.Context, datasets []models.Dataset) (*services.AnalysisResult, error) {
	return e.analysis.AnalyzeRelationships(ctx, datasets)
}
