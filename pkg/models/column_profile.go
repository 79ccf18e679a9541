package models

// ============================================================================
// Column Profile
// ============================================================================

// ColumnProfile is the per-column statistical summary produced by one
// analysis pass over a dataset. Profiles are read-only artifacts; the
// relationship scorer consumes them without touching the source data again.
type ColumnProfile struct {
	DatasetID  string `json:"dataset_id"`
	Name       string `json:"name"`

	InferredType ValueKind `json:"inferred_type"`
	Nullable     bool      `json:"nullable"`

	RowCount      int `json:"row_count"`
	DistinctCount int `json:"distinct_count"`

	// Up to SampleValueLimit distinct sample values, in first-seen order.
	SampleValues []string `json:"sample_values,omitempty"`

	// IsIDColumn: id-pattern name, all values non-null, unique, and
	// numeric/ordinal.
	IsIDColumn bool `json:"is_id_column"`

	// IsForeignKey: *_id name (not literally "id") with distinct ratio
	// below the configured threshold.
	IsForeignKey bool `json:"is_foreign_key"`
}

// DistinctRatio returns distinct_count / row_count, or 0 for an empty column.
func (p *ColumnProfile) DistinctRatio() float64 {
	if p.RowCount == 0 {
		return 0
	}
	return float64(p.DistinctCount) / float64(p.RowCount)
}

// IsUnique returns true when every scanned value was distinct.
func (p *ColumnProfile) IsUnique() bool {
	return p.RowCount > 0 && p.DistinctCount == p.RowCount
}
