package dag

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fuseline-io/fuseline-engine/pkg/apperrors"
	"github.com/fuseline-io/fuseline-engine/pkg/models"
)

// MergeExecutor joins two or more predecessor datasets with an N-way
// left-fold of binary joins. Joins run on the configured join key, or
// follow a join plan's per-step relationships when one is attached.
type MergeExecutor struct {
	logger *zap.Logger
}

// NewMergeExecutor creates a new MergeExecutor.
func NewMergeExecutor(logger *zap.Logger) *MergeExecutor {
	return &MergeExecutor{logger: logger.Named("merge-node")}
}

// Type returns the node type this executor handles.
func (e *MergeExecutor) Type() models.NodeType {
	return models.NodeTypeMerge
}

// Execute folds the inputs into one joined dataset.
func (e *MergeExecutor) Execute(ctx context.Context, node models.PipelineNode, inputs []models.Dataset) (models.ExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return models.ExecutionResult{}, err
	}
	if len(inputs) < 2 {
		return models.ExecutionResult{}, fmt.Errorf("merge node requires at least 2 inputs, got %d", len(inputs))
	}

	cfg := node.Config
	if cfg.JoinPlan != nil {
		return e.executePlan(node, inputs)
	}

	joinType := cfg.JoinType
	if joinType == "" {
		joinType = models.JoinTypeInner
	}

	acc := inputs[0]
	for i := 1; i < len(inputs); i++ {
		acc = join(acc, inputs[i], cfg.JoinKey, cfg.JoinKey, joinType)
	}

	e.logger.Debug("merge complete",
		zap.String("node_id", node.ID),
		zap.String("join_key", cfg.JoinKey),
		zap.String("join_type", string(joinType)),
		zap.Int("rows_out", acc.Len()))

	return successResult(node.ID, acc), nil
}

// executePlan follows the attached join plan: inputs are matched to plan
// steps by dataset id, and each step joins on its relationship's columns.
func (e *MergeExecutor) executePlan(node models.PipelineNode, inputs []models.Dataset) (models.ExecutionResult, error) {
	plan := node.Config.JoinPlan
	if !plan.IsValid {
		return models.ExecutionResult{}, fmt.Errorf("%w: merge node has an invalid join plan: %v", apperrors.ErrValidation, plan.ValidationErrors)
	}

	byID := make(map[string]models.Dataset, len(inputs))
	for _, ds := range inputs {
		byID[ds.ID] = ds
	}

	if len(plan.ExecutionOrder) == 0 {
		return models.ExecutionResult{}, fmt.Errorf("join plan has no steps")
	}

	first := plan.ExecutionOrder[0]
	acc, ok := byID[first.LeftDatasetID]
	if !ok {
		return models.ExecutionResult{}, fmt.Errorf("join plan references dataset %q not present in inputs", first.LeftDatasetID)
	}

	for _, step := range plan.ExecutionOrder {
		right, ok := byID[step.RightDatasetID]
		if !ok {
			return models.ExecutionResult{}, fmt.Errorf("join plan references dataset %q not present in inputs", step.RightDatasetID)
		}
		rel := step.Relationship
		if rel == nil {
			return models.ExecutionResult{}, fmt.Errorf("join plan step for dataset %q has no relationship", step.RightDatasetID)
		}

		// The relationship may point either way; resolve which column
		// belongs to the accumulator side.
		leftKey, rightKey := rel.SourceColumn, rel.TargetColumn
		if rel.SourceDatasetID == step.RightDatasetID {
			leftKey, rightKey = rel.TargetColumn, rel.SourceColumn
		}

		joinType := step.JoinType
		if joinType == "" {
			joinType = models.JoinTypeInner
		}

		acc = join(acc, right, leftKey, rightKey, joinType)
	}

	e.logger.Debug("plan-driven merge complete",
		zap.String("node_id", node.ID),
		zap.Int("steps", len(plan.ExecutionOrder)),
		zap.Int("rows_out", acc.Len()))

	return successResult(node.ID, acc), nil
}

// join performs one binary join of the accumulator against a right-side
// dataset. The right side is indexed by key, so cost is O(n+m) plus inner
// match multiplicity. Match predicate is value equality on the join keys.
//
//	inner: one row per accumulator/right match pair.
//	left:  exactly one row per accumulator row; multi-matches take the
//	       first right row, unmatched right fields stay absent.
//	outer: left semantics plus right rows whose key never matched.
func join(left, right models.Dataset, leftKey, rightKey string, joinType models.JoinType) models.Dataset {
	index := make(map[string][]int, right.Len())
	for i, rec := range right.Records {
		k := rec.Get(rightKey).Key()
		index[k] = append(index[k], i)
	}

	out := models.Dataset{Columns: mergedColumns(left, right)}
	matchedKeys := make(map[string]bool)

	for _, lrec := range left.Records {
		key := lrec.Get(leftKey)
		var matches []int
		if !key.IsNull() { // null keys never match
			matches = index[key.Key()]
		}

		if len(matches) == 0 {
			if joinType == models.JoinTypeLeft || joinType == models.JoinTypeOuter {
				out.Records = append(out.Records, lrec.Clone())
			}
			continue
		}

		matchedKeys[key.Key()] = true
		if joinType == models.JoinTypeInner {
			for _, ri := range matches {
				out.Records = append(out.Records, mergeRecords(lrec, right.Records[ri]))
			}
			continue
		}
		out.Records = append(out.Records, mergeRecords(lrec, right.Records[matches[0]]))
	}

	if joinType == models.JoinTypeOuter {
		for _, rrec := range right.Records {
			k := rrec.Get(rightKey)
			if k.IsNull() || !matchedKeys[k.Key()] {
				out.Records = append(out.Records, rrec.Clone())
			}
		}
	}

	return out
}

// mergeRecords combines a left and right record into a fresh one. The
// left side wins on column name collisions.
func mergeRecords(left, right models.Record) models.Record {
	out := left.Clone()
	for k, v := range right {
		if _, exists := out[k]; !exists {
			out[k] = v
		}
	}
	return out
}

// mergedColumns unions the two schemas, left columns first.
func mergedColumns(left, right models.Dataset) []string {
	cols := append([]string(nil), left.Columns...)
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		seen[c] = true
	}
	for _, c := range right.Columns {
		if !seen[c] {
			cols = append(cols, c)
		}
	}
	return cols
}
