package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fuseline-io/fuseline-engine/pkg/config"
	"github.com/fuseline-io/fuseline-engine/pkg/models"
)

// AnalysisResult bundles everything one relationship analysis pass
// produces: per-dataset column profiles, scored relationship candidates,
// and a join plan per strategy.
type AnalysisResult struct {
	Relationships []models.RelationshipCandidate `json:"relationships"`
	Profiles      [][]models.ColumnProfile       `json:"profiles"`
	JoinPlans     []models.JoinPlan              `json:"join_plans"`
}

// SuggestedRelationships filters the result to candidates above the
// suggestion threshold.
func (r *AnalysisResult) SuggestedRelationships(threshold float64) []models.RelationshipCandidate {
	out := make([]models.RelationshipCandidate, 0, len(r.Relationships))
	for _, c := range r.Relationships {
		if c.IsSuggested(threshold) {
			out = append(out, c)
		}
	}
	return out
}

// AnalysisService discovers how independently-imported datasets relate so
// they can be joined without hand-written join keys.
type AnalysisService interface {
	// AnalyzeRelationships profiles every dataset, scores cross-dataset
	// column pairs, and builds join plans from the auto-activated
	// candidates.
	AnalyzeRelationships(ctx context.Context, datasets []models.Dataset) (*AnalysisResult, error)
}

type analysisService struct {
	cfg      config.AnalysisConfig
	analyzer *ColumnAnalyzer
	scorer   *RelationshipScorer
	planner  *JoinPlanner
	logger   *zap.Logger
}

// NewAnalysisService creates a new AnalysisService.
func NewAnalysisService(cfg config.AnalysisConfig, logger *zap.Logger) AnalysisService {
	return &analysisService{
		cfg:      cfg,
		analyzer: NewColumnAnalyzer(cfg, logger),
		scorer:   NewRelationshipScorer(cfg, logger),
		planner:  NewJoinPlanner(logger),
		logger:   logger.Named("analysis"),
	}
}

func (s *analysisService) AnalyzeRelationships(ctx context.Context, datasets []models.Dataset) (*AnalysisResult, error) {
	if len(datasets) == 0 {
		return &AnalysisResult{}, nil
	}

	start := time.Now()

	// Datasets without identity get one; candidates and plans reference
	// datasets by id.
	for i := range datasets {
		if datasets[i].ID == "" {
			datasets[i].ID = uuid.NewString()
		}
	}

	// Profile datasets with bounded parallelism. Profiling is a pure
	// read; each goroutine owns one slot of the result slice.
	profiles := make([][]models.ColumnProfile, len(datasets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.ProfileConcurrency)
	for i := range datasets {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			profiles[i] = s.analyzer.ProfileDataset(datasets[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("profile datasets: %w", err)
	}

	candidates := s.scorer.Score(datasets, profiles)

	// Plans only auto-activate high-confidence candidates.
	activated := make([]models.RelationshipCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Confidence > s.cfg.AutoActivateThreshold {
			activated = append(activated, c)
		}
	}

	var plans []models.JoinPlan
	if len(datasets) >= 2 {
		plans = s.planner.PlanAll(datasets, activated)
	}

	s.logger.Info("relationship analysis complete",
		zap.Int("datasets", len(datasets)),
		zap.Int("candidates", len(candidates)),
		zap.Int("activated", len(activated)),
		zap.Int("plans", len(plans)),
		zap.Duration("duration", time.Since(start)))

	return &AnalysisResult{
		Relationships: candidates,
		Profiles:      profiles,
		JoinPlans:     plans,
	}, nil
}
