package dag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/fuseline-io/fuseline-engine/pkg/models"
)

// TransformExecutor applies, in order: field filters, field mappings, and
// a single stable sort. Each stage produces fresh records; upstream
// outputs stay untouched.
type TransformExecutor struct {
	logger *zap.Logger
}

// NewTransformExecutor creates a new TransformExecutor.
func NewTransformExecutor(logger *zap.Logger) *TransformExecutor {
	return &TransformExecutor{logger: logger.Named("transform-node")}
}

// Type returns the node type this executor handles.
func (e *TransformExecutor) Type() models.NodeType {
	return models.NodeTypeTransform
}

// Execute runs the transform stages over the concatenated inputs.
func (e *TransformExecutor) Execute(ctx context.Context, node models.PipelineNode, inputs []models.Dataset) (models.ExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return models.ExecutionResult{}, err
	}

	data := models.Concat(inputs...)
	cfg := node.Config

	var warnings []string

	for _, f := range cfg.Filters {
		if !models.IsValidFilterOperator(f.Operator) {
			return models.ExecutionResult{}, fmt.Errorf("unknown filter operator %q", f.Operator)
		}
		data = applyFilter(data, f)
	}

	if len(cfg.Mappings) > 0 {
		data = applyMappings(data, cfg.Mappings)
	}

	if cfg.Sort != nil {
		if !data.HasColumn(cfg.Sort.Field) {
			warnings = append(warnings, fmt.Sprintf("sort field %q not present in schema", cfg.Sort.Field))
		}
		applySort(data, *cfg.Sort)
	}

	e.logger.Debug("transform complete",
		zap.String("node_id", node.ID),
		zap.Int("rows_out", data.Len()))

	return successResult(node.ID, data, warnings...), nil
}

// applyFilter keeps rows for which the predicate holds.
func applyFilter(data models.Dataset, f models.FieldFilter) models.Dataset {
	kept := make([]models.Record, 0, len(data.Records))
	for _, rec := range data.Records {
		if filterMatches(rec.Get(f.Field), f) {
			kept = append(kept, rec)
		}
	}
	data.Records = kept
	return data
}

func filterMatches(v models.Value, f models.FieldFilter) bool {
	switch f.Operator {
	case models.OpEquals:
		return valueEqualsLiteral(v, f.Value)
	case models.OpNotEquals:
		return !valueEqualsLiteral(v, f.Value)
	case models.OpGreaterThan:
		return compareNumeric(v, f.Value, func(a, b float64) bool { return a > b })
	case models.OpLessThan:
		return compareNumeric(v, f.Value, func(a, b float64) bool { return a < b })
	case models.OpContains:
		return strings.Contains(v.Render(), f.Value)
	default:
		return false
	}
}

// valueEqualsLiteral compares a value against the filter's string literal,
// numerically when both sides read as numbers.
func valueEqualsLiteral(v models.Value, literal string) bool {
	if a, ok := v.AsFloat(); ok {
		if b, ok := models.String(literal).AsFloat(); ok {
			return a == b
		}
	}
	return v.Render() == literal
}

func compareNumeric(v models.Value, literal string, cmp func(a, b float64) bool) bool {
	a, ok := v.AsFloat()
	if !ok {
		return false
	}
	b, ok := models.String(literal).AsFloat()
	if !ok {
		return false
	}
	return cmp(a, b)
}

// applyMappings copies sourceField to targetField on fresh records,
// optionally applying a named scalar transform.
func applyMappings(data models.Dataset, mappings []models.FieldMapping) models.Dataset {
	out := make([]models.Record, len(data.Records))
	for i, rec := range data.Records {
		mapped := rec.Clone()
		for _, m := range mappings {
			mapped[m.TargetField] = applyScalarTransform(rec.Get(m.SourceField), m.Transform)
		}
		out[i] = mapped
	}
	data.Records = out

	for _, m := range mappings {
		if !data.HasColumn(m.TargetField) {
			data.Columns = append(data.Columns, m.TargetField)
		}
	}
	return data
}

func applyScalarTransform(v models.Value, t models.ScalarTransform) models.Value {
	if v.IsNull() {
		return v
	}
	switch t {
	case models.TransformUppercase:
		return models.String(strings.ToUpper(v.Render()))
	case models.TransformLowercase:
		return models.String(strings.ToLower(v.Render()))
	case models.TransformTrim:
		return models.String(strings.TrimSpace(v.Render()))
	case models.TransformRound:
		if f, ok := v.AsFloat(); ok {
			return models.Integer(int64(math.Round(f)))
		}
		return v
	default:
		return v
	}
}

// applySort sorts records in place by one field. The sort is stable so
// ties preserve input order.
func applySort(data models.Dataset, spec models.SortSpec) {
	sort.SliceStable(data.Records, func(a, b int) bool {
		va := data.Records[a].Get(spec.Field)
		vb := data.Records[b].Get(spec.Field)
		if spec.Descending() {
			return vb.Less(va)
		}
		return va.Less(vb)
	})
}
