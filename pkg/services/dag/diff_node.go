package dag

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/fuseline-io/fuseline-engine/pkg/models"
)

// DiffExecutor compares exactly two predecessor datasets keyed on the
// configured compare key and reports deleted, added, and modified rows.
type DiffExecutor struct {
	logger *zap.Logger
}

// NewDiffExecutor creates a new DiffExecutor.
func NewDiffExecutor(logger *zap.Logger) *DiffExecutor {
	return &DiffExecutor{logger: logger.Named("diff-node")}
}

// Type returns the node type this executor handles.
func (e *DiffExecutor) Type() models.NodeType {
	return models.NodeTypeDiff
}

// Execute diffs inputs[0] (the baseline) against inputs[1].
func (e *DiffExecutor) Execute(ctx context.Context, node models.PipelineNode, inputs []models.Dataset) (models.ExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return models.ExecutionResult{}, err
	}
	if len(inputs) != 2 {
		return models.ExecutionResult{}, fmt.Errorf("diff node requires exactly 2 inputs, got %d", len(inputs))
	}

	compareKey := node.Config.CompareKey
	if compareKey == "" {
		return models.ExecutionResult{}, fmt.Errorf("diff node %q has no compare key configured", node.ID)
	}

	entries := diffDatasets(inputs[0], inputs[1], compareKey)

	e.logger.Debug("diff complete",
		zap.String("node_id", node.ID),
		zap.String("compare_key", compareKey),
		zap.Int("entries", len(entries)))

	result := successResult(node.ID, diffToDataset(entries))
	result.Diff = entries
	result.RowsProcessed = len(entries)
	if len(entries) == 0 {
		result.Warnings = append(result.Warnings, "no differences found")
	}
	return result, nil
}

// diffDatasets computes the entry list. Deleted entries keep baseline
// order, added entries keep comparison order, and modified entries keep
// baseline order with per-field old/new values.
func diffDatasets(base, next models.Dataset, key string) []models.DiffEntry {
	baseByKey := indexByKey(base, key)
	nextByKey := indexByKey(next, key)

	var entries []models.DiffEntry

	for _, rec := range base.Records {
		k := rec.Get(key).Key()
		nrec, ok := nextByKey[k]
		if !ok {
			entries = append(entries, models.DiffEntry{
				Change: models.ChangeDeleted,
				Key:    rec.Get(key),
				Record: rec.Clone(),
			})
			continue
		}
		changes := fieldChanges(rec, nrec, key)
		if len(changes) > 0 {
			entries = append(entries, models.DiffEntry{
				Change:       models.ChangeModified,
				Key:          rec.Get(key),
				Record:       nrec.Clone(),
				FieldChanges: changes,
			})
		}
	}

	for _, rec := range next.Records {
		if _, ok := baseByKey[rec.Get(key).Key()]; !ok {
			entries = append(entries, models.DiffEntry{
				Change: models.ChangeAdded,
				Key:    rec.Get(key),
				Record: rec.Clone(),
			})
		}
	}

	return entries
}

// indexByKey maps each record's key value to the record. On duplicate
// keys the last record wins.
func indexByKey(ds models.Dataset, key string) map[string]models.Record {
	idx := make(map[string]models.Record, ds.Len())
	for _, rec := range ds.Records {
		idx[rec.Get(key).Key()] = rec
	}
	return idx
}

// fieldChanges compares the union of non-key columns in both records.
func fieldChanges(old, new models.Record, key string) []models.FieldChange {
	fields := make([]string, 0, len(old))
	seen := map[string]bool{key: true}
	for f := range old {
		if !seen[f] {
			fields = append(fields, f)
			seen[f] = true
		}
	}
	for f := range new {
		if !seen[f] {
			fields = append(fields, f)
			seen[f] = true
		}
	}
	sort.Strings(fields)

	var changes []models.FieldChange
	for _, f := range fields {
		ov, nv := old.Get(f), new.Get(f)
		if !ov.Equal(nv) {
			changes = append(changes, models.FieldChange{Field: f, Old: ov, New: nv})
		}
	}
	return changes
}

// diffToDataset renders the entries as a flat dataset for downstream
// nodes: one row per entry with the change type, the key, and a
// comma-joined list of changed fields.
func diffToDataset(entries []models.DiffEntry) models.Dataset {
	out := models.Dataset{Columns: []string{"change_type", "key", "changed_fields"}}
	for _, entry := range entries {
		fields := make([]string, len(entry.FieldChanges))
		for i, fc := range entry.FieldChanges {
			fields[i] = fc.Field
		}
		out.Records = append(out.Records, models.Record{
			"change_type":    models.String(string(entry.Change)),
			"key":            entry.Key,
			"changed_fields": models.String(strings.Join(fields, ",")),
		})
	}
	return out
}
