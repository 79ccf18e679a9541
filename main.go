package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fuseline-io/fuseline-engine/pkg/config"
	"github.com/fuseline-io/fuseline-engine/pkg/engine"
	"github.com/fuseline-io/fuseline-engine/pkg/models"
	"github.com/fuseline-io/fuseline-engine/pkg/services/dag"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: %s <pipeline.yaml>", os.Args[0])
	}

	cfg, err := config.Load(os.Getenv("ENGINE_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	eng := engine.NewEngine(engine.Options{Config: cfg, Logger: logger})

	pipeline, err := eng.LoadPipeline(os.Args[1])
	if err != nil {
		logger.Fatal("failed to load pipeline", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("running pipeline",
		zap.String("pipeline", pipeline.Name),
		zap.String("version", Version),
		zap.Int("nodes", len(pipeline.Nodes)))

	run, err := eng.RunDefinition(ctx, pipeline, dag.Callbacks{
		OnNodeComplete: func(r models.ExecutionResult) {
			logger.Info("node finished",
				zap.String("node_id", r.NodeID),
				zap.Bool("success", r.Success),
				zap.Int("rows", r.RowsProcessed))
		},
		OnProgress: func(done, total int, pct float64, msg string) {
			logger.Info("progress",
				zap.Int("done", done),
				zap.Int("total", total),
				zap.Float64("percent", pct),
				zap.String("message", msg))
		},
	})
	if err != nil {
		logger.Fatal("pipeline failed to start", zap.Error(err))
	}

	logger.Info("run complete",
		zap.String("run_id", run.RunID.String()),
		zap.Bool("success", run.Success),
		zap.Bool("cancelled", run.Cancelled),
		zap.Int("completed_nodes", run.CompletedNodes),
		zap.Int("failed_nodes", run.FailedNodes),
		zap.Int("total_rows", run.TotalRows),
		zap.Duration("duration", run.Duration()))

	if runErr := run.Err(); runErr != nil {
		logger.Error("run did not succeed", zap.Error(runErr))
		os.Exit(1)
	}
}
