package services

import (
	"strings"

	"go.uber.org/zap"

	"github.com/fuseline-io/fuseline-engine/pkg/config"
	"github.com/fuseline-io/fuseline-engine/pkg/models"
)

// ColumnAnalyzer derives per-column statistical profiles from a dataset.
// Profiles feed the relationship scorer; one analysis pass scans each
// column exactly once.
type ColumnAnalyzer struct {
	cfg    config.AnalysisConfig
	logger *zap.Logger
}

// NewColumnAnalyzer creates a new ColumnAnalyzer.
func NewColumnAnalyzer(cfg config.AnalysisConfig, logger *zap.Logger) *ColumnAnalyzer {
	return &ColumnAnalyzer{
		cfg:    cfg,
		logger: logger.Named("column-analyzer"),
	}
}

// ProfileDataset computes a ColumnProfile for every schema column of the
// dataset. Columns absent from later records read as null.
func (a *ColumnAnalyzer) ProfileDataset(ds models.Dataset) []models.ColumnProfile {
	profiles := make([]models.ColumnProfile, 0, len(ds.Columns))
	for _, col := range ds.Columns {
		profiles = append(profiles, a.profileColumn(ds, col))
	}

	a.logger.Debug("profiled dataset",
		zap.String("dataset", ds.Name),
		zap.Int("columns", len(profiles)),
		zap.Int("rows", ds.Len()))

	return profiles
}

func (a *ColumnAnalyzer) profileColumn(ds models.Dataset, column string) models.ColumnProfile {
	p := models.ColumnProfile{
		DatasetID:    ds.ID,
		Name:         column,
		InferredType: models.KindUnknown,
		RowCount:     ds.Len(),
	}

	distinct := make(map[string]struct{})
	allNumeric := true
	hasNull := false

	for _, rec := range ds.Records {
		v := rec.Get(column)
		if v.IsNull() {
			hasNull = true
			continue
		}

		p.InferredType = foldKind(p.InferredType, v.Kind)
		if _, ok := v.AsFloat(); !ok {
			allNumeric = false
		}

		key := v.Key()
		if _, seen := distinct[key]; !seen {
			distinct[key] = struct{}{}
			if len(p.SampleValues) < a.cfg.SampleValueLimit {
				p.SampleValues = append(p.SampleValues, v.Render())
			}
		}
	}

	p.Nullable = hasNull
	p.DistinctCount = len(distinct)

	allUnique := p.RowCount > 0 && !hasNull && p.DistinctCount == p.RowCount
	p.IsIDColumn = isIDName(column) && allUnique && allNumeric
	p.IsForeignKey = isFKName(column) && p.RowCount > 0 &&
		p.DistinctRatio() < a.cfg.FKDistinctRatio

	return p
}

// foldKind accumulates the inferred type across a column's values.
// Mixed integer/float folds to float; any other mix degrades to string.
func foldKind(acc, next models.ValueKind) models.ValueKind {
	if acc == models.KindUnknown || acc == next {
		return next
	}
	if acc.IsNumeric() && next.IsNumeric() {
		return models.KindFloat
	}
	return models.KindString
}

// isIDName matches the id naming family: "id" itself or an _id/_key/_uuid
// suffix.
func isIDName(name string) bool {
	lower := strings.ToLower(name)
	return lower == "id" ||
		strings.HasSuffix(lower, "_id") ||
		strings.HasSuffix(lower, "_key") ||
		strings.HasSuffix(lower, "_uuid")
}

// isFKName matches *_id columns that are not the bare primary key name.
func isFKName(name string) bool {
	lower := strings.ToLower(name)
	return lower != "id" && strings.HasSuffix(lower, "_id")
}
