package models

// ============================================================================
// Match Types
// ============================================================================

// MatchType categorizes how closely two columns match.
type MatchType string

const (
	MatchTypeExact      MatchType = "exact"
	MatchTypeSimilar    MatchType = "similar"
	MatchTypeCompatible MatchType = "compatible"
)

// ValidMatchTypes contains all valid match type values.
var ValidMatchTypes = []MatchType{
	MatchTypeExact,
	MatchTypeSimilar,
	MatchTypeCompatible,
}

// IsValidMatchType checks if the given match type is valid.
func IsValidMatchType(m MatchType) bool {
	for _, v := range ValidMatchTypes {
		if v == m {
			return true
		}
	}
	return false
}

// ============================================================================
// Cardinality
// ============================================================================

// Cardinality describes the inferred row multiplicity between two columns.
type Cardinality string

const (
	CardinalityOneToOne   Cardinality = "one_to_one"
	CardinalityOneToMany  Cardinality = "one_to_many"
	CardinalityManyToOne  Cardinality = "many_to_one"
	CardinalityManyToMany Cardinality = "many_to_many"
)

// ValidCardinalities contains all valid cardinality values.
var ValidCardinalities = []Cardinality{
	CardinalityOneToOne,
	CardinalityOneToMany,
	CardinalityManyToOne,
	CardinalityManyToMany,
}

// IsValidCardinality checks if the given cardinality is valid.
func IsValidCardinality(c Cardinality) bool {
	for _, v := range ValidCardinalities {
		if v == c {
			return true
		}
	}
	return false
}

// Invert swaps the direction of the cardinality.
func (c Cardinality) Invert() Cardinality {
	switch c {
	case CardinalityOneToMany:
		return CardinalityManyToOne
	case CardinalityManyToOne:
		return CardinalityOneToMany
	default:
		return c
	}
}

// ============================================================================
// Relationship Candidate
// ============================================================================

// RelationshipCandidate is a scored hypothesis that two columns across two
// datasets are joinable. Both directions of a column pair may appear;
// callers select the best candidate per target pair.
type RelationshipCandidate struct {
	SourceDatasetID string `json:"source_dataset_id"`
	TargetDatasetID string `json:"target_dataset_id"`
	SourceColumn    string `json:"source_column"`
	TargetColumn    string `json:"target_column"`

	MatchType  MatchType `json:"match_type"`
	Confidence float64   `json:"confidence"` // 0.0-1.0

	InferredCardinality Cardinality `json:"inferred_cardinality"`
}

// Connects returns true if the candidate joins the two given datasets in
// either direction.
func (c *RelationshipCandidate) Connects(datasetA, datasetB string) bool {
	return (c.SourceDatasetID == datasetA && c.TargetDatasetID == datasetB) ||
		(c.SourceDatasetID == datasetB && c.TargetDatasetID == datasetA)
}

// IsSuggested returns true if the candidate clears the suggestion
// threshold and should surface as an active suggested relationship.
func (c *RelationshipCandidate) IsSuggested(threshold float64) bool {
	return c.Confidence > threshold
}
