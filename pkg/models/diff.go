package models

// ============================================================================
// Diff Change Types
// ============================================================================

// ChangeType tags one entry in a dataset comparison.
type ChangeType string

const (
	ChangeDeleted  ChangeType = "deleted"  // key present only in dataset 1
	ChangeAdded    ChangeType = "added"    // key present only in dataset 2
	ChangeModified ChangeType = "modified" // key in both, >=1 non-key field differs
)

// ValidChangeTypes contains all valid change type values.
var ValidChangeTypes = []ChangeType{
	ChangeDeleted,
	ChangeAdded,
	ChangeModified,
}

// IsValidChangeType checks if the given change type is valid.
func IsValidChangeType(c ChangeType) bool {
	for _, v := range ValidChangeTypes {
		if v == c {
			return true
		}
	}
	return false
}

// ============================================================================
// Diff Entries
// ============================================================================

// FieldChange records a per-field old/new pair within a modified entry.
type FieldChange struct {
	Field string `json:"field"`
	Old   Value  `json:"old"`
	New   Value  `json:"new"`
}

// Invert swaps old and new.
func (c FieldChange) Invert() FieldChange {
	return FieldChange{Field: c.Field, Old: c.New, New: c.Old}
}

// DiffEntry is one difference found when comparing two datasets by key.
type DiffEntry struct {
	Change ChangeType `json:"change"`
	Key    Value      `json:"key"`

	// Record is the full record for added/deleted entries and the
	// second dataset's record for modified entries.
	Record Record `json:"record,omitempty"`

	FieldChanges []FieldChange `json:"field_changes,omitempty"`
}
