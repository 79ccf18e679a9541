package services

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/fuseline-io/fuseline-engine/pkg/models"
)

// Performance classification thresholds.
const (
	fastRowLimit          = 10_000
	slowRowLimit          = 100_000
	fastComplexity        = 2.0
	slowComplexity        = 4.0
	manyToManySelectivity = 0.1
)

// JoinPlanner orders N datasets into a sequence of binary join steps under
// a chosen strategy. Plans are pure configuration; an invalid plan is
// returned marked rather than silently joining on nothing.
type JoinPlanner struct {
	logger *zap.Logger
}

// NewJoinPlanner creates a new JoinPlanner.
func NewJoinPlanner(logger *zap.Logger) *JoinPlanner {
	return &JoinPlanner{logger: logger.Named("join-planner")}
}

// PlanAll builds one plan per strategy.
func (p *JoinPlanner) PlanAll(datasets []models.Dataset, candidates []models.RelationshipCandidate) []models.JoinPlan {
	plans := make([]models.JoinPlan, 0, len(models.ValidJoinStrategies))
	for _, strategy := range models.ValidJoinStrategies {
		plans = append(plans, p.Plan(datasets, candidates, strategy))
	}
	return plans
}

// ValidPlans filters plans to those whose every step found a relationship.
func ValidPlans(plans []models.JoinPlan) []models.JoinPlan {
	out := make([]models.JoinPlan, 0, len(plans))
	for _, plan := range plans {
		if plan.IsValid {
			out = append(out, plan)
		}
	}
	return out
}

// RankPlans orders valid plans by estimated rows, then by complexity.
// Estimated row count is the primary ranking key; the complexity metric is
// a heuristic preference, not a correctness requirement.
func RankPlans(plans []models.JoinPlan) []models.JoinPlan {
	ranked := ValidPlans(plans)
	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].EstimatedRows != ranked[b].EstimatedRows {
			return ranked[a].EstimatedRows < ranked[b].EstimatedRows
		}
		return ranked[a].Complexity < ranked[b].Complexity
	})
	return ranked
}

// Plan orders the datasets per the strategy, then greedily connects each
// next dataset to the running accumulator using the highest-confidence
// candidate between any accumulated dataset and the newcomer.
func (p *JoinPlanner) Plan(datasets []models.Dataset, candidates []models.RelationshipCandidate, strategy models.JoinStrategy) models.JoinPlan {
	plan := models.JoinPlan{Strategy: strategy, IsValid: true}
	if len(datasets) < 2 {
		plan.IsValid = false
		plan.ValidationErrors = append(plan.ValidationErrors, "a join plan requires at least two datasets")
		return plan
	}

	ordered := orderDatasets(datasets, candidates, strategy)

	accumulated := map[string]bool{ordered[0].ID: true}
	accRows := ordered[0].Len()

	for i := 1; i < len(ordered); i++ {
		next := ordered[i]
		best := bestCandidate(candidates, accumulated, next.ID)
		if best == nil {
			plan.IsValid = false
			plan.ValidationErrors = append(plan.ValidationErrors,
				fmt.Sprintf("no relationship connects dataset %q (%s) to the accumulated datasets", next.Name, next.ID))
			accumulated[next.ID] = true
			continue
		}

		estimated := estimateRows(accRows, next.Len(), stepCardinality(best, next.ID))
		plan.ExecutionOrder = append(plan.ExecutionOrder, models.JoinStep{
			LeftDatasetID:  ordered[i-1].ID,
			RightDatasetID: next.ID,
			Relationship:   best,
			JoinType:       models.JoinTypeInner,
			EstimatedRows:  estimated,
			Intermediate:   i < len(ordered)-1,
		})

		plan.Complexity += best.Confidence
		accRows = estimated
		accumulated[next.ID] = true
	}

	plan.EstimatedRows = accRows
	plan.Performance = classifyPerformance(plan.EstimatedRows, plan.Complexity)

	p.logger.Debug("built join plan",
		zap.String("strategy", string(strategy)),
		zap.Bool("valid", plan.IsValid),
		zap.Int("steps", len(plan.ExecutionOrder)),
		zap.Int("estimated_rows", plan.EstimatedRows))

	return plan
}

// orderDatasets applies the strategy's dataset ordering: size descending
// for left_heavy, a size plus relationship-count score for balanced, and
// input order otherwise.
func orderDatasets(datasets []models.Dataset, candidates []models.RelationshipCandidate, strategy models.JoinStrategy) []models.Dataset {
	ordered := append([]models.Dataset(nil), datasets...)

	switch strategy {
	case models.StrategyLeftHeavy:
		sort.SliceStable(ordered, func(a, b int) bool {
			return ordered[a].Len() > ordered[b].Len()
		})
	case models.StrategyBalanced:
		relCount := make(map[string]int)
		for _, c := range candidates {
			relCount[c.SourceDatasetID]++
		}
		maxRows := 1
		for _, ds := range ordered {
			if ds.Len() > maxRows {
				maxRows = ds.Len()
			}
		}
		score := func(ds models.Dataset) float64 {
			return 0.6*float64(relCount[ds.ID]) + 0.4*float64(ds.Len())/float64(maxRows)
		}
		sort.SliceStable(ordered, func(a, b int) bool {
			return score(ordered[a]) > score(ordered[b])
		})
	}

	return ordered
}

// bestCandidate returns the highest-confidence candidate connecting any
// accumulated dataset to the next one, in either direction.
func bestCandidate(candidates []models.RelationshipCandidate, accumulated map[string]bool, nextID string) *models.RelationshipCandidate {
	var best *models.RelationshipCandidate
	for i := range candidates {
		c := &candidates[i]
		joinsNext := (accumulated[c.SourceDatasetID] && c.TargetDatasetID == nextID) ||
			(accumulated[c.TargetDatasetID] && c.SourceDatasetID == nextID)
		if !joinsNext {
			continue
		}
		if best == nil || c.Confidence > best.Confidence {
			best = c
		}
	}
	return best
}

// stepCardinality reads the candidate's cardinality from the accumulator
// side, inverting when the candidate points into the accumulator.
func stepCardinality(c *models.RelationshipCandidate, nextID string) models.Cardinality {
	if c.SourceDatasetID == nextID {
		return c.InferredCardinality.Invert()
	}
	return c.InferredCardinality
}

// estimateRows follows the relationship cardinality: 1:1 takes the
// smaller side, 1:N and N:1 the larger side, N:M a damped product.
func estimateRows(left, right int, cardinality models.Cardinality) int {
	switch cardinality {
	case models.CardinalityOneToOne:
		if left < right {
			return left
		}
		return right
	case models.CardinalityManyToMany:
		return int(float64(left) * float64(right) * manyToManySelectivity)
	default:
		if left > right {
			return left
		}
		return right
	}
}

// classifyPerformance buckets a plan by estimated row count and
// complexity.
func classifyPerformance(rows int, complexity float64) models.PerformanceClass {
	switch {
	case rows > slowRowLimit || complexity > slowComplexity:
		return models.PerformanceSlow
	case rows < fastRowLimit && complexity < fastComplexity:
		return models.PerformanceFast
	default:
		return models.PerformanceModerate
	}
}
