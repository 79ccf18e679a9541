package models

// ============================================================================
// Join Types
// ============================================================================

// JoinType selects the row-retention semantics of a binary join.
type JoinType string

const (
	JoinTypeInner JoinType = "inner"
	JoinTypeLeft  JoinType = "left"
	JoinTypeOuter JoinType = "outer"
)

// ValidJoinTypes contains all valid join type values.
var ValidJoinTypes = []JoinType{
	JoinTypeInner,
	JoinTypeLeft,
	JoinTypeOuter,
}

// IsValidJoinType checks if the given join type is valid.
func IsValidJoinType(j JoinType) bool {
	for _, v := range ValidJoinTypes {
		if v == j {
			return true
		}
	}
	return false
}

// ============================================================================
// Join Strategies
// ============================================================================

// JoinStrategy selects how the planner orders datasets before connecting
// them.
type JoinStrategy string

const (
	StrategyLeftHeavy           JoinStrategy = "left_heavy"
	StrategyRelationshipOptimal JoinStrategy = "relationship_optimal"
	StrategyBalanced            JoinStrategy = "balanced"
	StrategyMinimalJoins        JoinStrategy = "minimal_joins"
)

// ValidJoinStrategies contains all valid strategies in planning order.
var ValidJoinStrategies = []JoinStrategy{
	StrategyLeftHeavy,
	StrategyRelationshipOptimal,
	StrategyBalanced,
	StrategyMinimalJoins,
}

// IsValidJoinStrategy checks if the given strategy is valid.
func IsValidJoinStrategy(s JoinStrategy) bool {
	for _, v := range ValidJoinStrategies {
		if v == s {
			return true
		}
	}
	return false
}

// ============================================================================
// Performance Classes
// ============================================================================

// PerformanceClass is a coarse cost classification of a plan.
type PerformanceClass string

const (
	PerformanceFast     PerformanceClass = "fast"
	PerformanceModerate PerformanceClass = "moderate"
	PerformanceSlow     PerformanceClass = "slow"
)

// ============================================================================
// Join Step
// ============================================================================

// JoinStep is one binary join within a plan. The left side of the first
// step is a base dataset; every later step joins against the running
// accumulator.
type JoinStep struct {
	LeftDatasetID  string                 `json:"left_dataset_id"`
	RightDatasetID string                 `json:"right_dataset_id"`
	Relationship   *RelationshipCandidate `json:"relationship,omitempty"`
	JoinType       JoinType               `json:"join_type"`
	EstimatedRows  int                    `json:"estimated_rows"`

	// Intermediate steps feed the next step; the last step is final.
	Intermediate bool `json:"intermediate"`
}

// ============================================================================
// Join Plan
// ============================================================================

// JoinPlan is an ordered sequence of binary joins connecting N datasets
// under one strategy. A plan is pure configuration, safe to reuse across
// concurrent runs.
type JoinPlan struct {
	Strategy       JoinStrategy `json:"strategy"`
	ExecutionOrder []JoinStep   `json:"execution_order"`

	// Complexity is the sum of constituent relationship confidences.
	// Lower reads as simpler but less certain; callers should prefer
	// minimal complexity among valid plans.
	Complexity    float64          `json:"complexity"`
	EstimatedRows int              `json:"estimated_rows"`
	Performance   PerformanceClass `json:"performance"`

	IsValid          bool     `json:"is_valid"`
	ValidationErrors []string `json:"validation_errors,omitempty"`
}

// StepCount returns the number of join steps in the plan.
func (p *JoinPlan) StepCount() int {
	return len(p.ExecutionOrder)
}
