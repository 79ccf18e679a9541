package services

import (
	"sort"
	"strings"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/fuseline-io/fuseline-engine/pkg/config"
	"github.com/fuseline-io/fuseline-engine/pkg/models"
)

// Confidence weights. Type compatibility contributes 0.2-0.3, name
// similarity up to 0.4, id/FK bonuses up to 0.5 combined, sample value
// overlap up to 0.1; the sum is clamped to 1.0.
const (
	typeIdenticalWeight  = 0.3
	typeCompatibleWeight = 0.2
	nameWeight           = 0.4
	idFKPairBonus        = 0.3
	idOnlyBonus          = 0.15
	datasetNameBonus     = 0.2
	maxKeyBonus          = 0.5
	overlapWeight        = 0.1
)

// RelationshipScorer compares columns across dataset pairs and emits
// confidence-weighted relationship candidates. Both directions of a
// column pair are emitted; callers select the best per target pair.
type RelationshipScorer struct {
	cfg    config.AnalysisConfig
	logger *zap.Logger
}

// NewRelationshipScorer creates a new RelationshipScorer.
func NewRelationshipScorer(cfg config.AnalysisConfig, logger *zap.Logger) *RelationshipScorer {
	return &RelationshipScorer{
		cfg:    cfg,
		logger: logger.Named("relationship-scorer"),
	}
}

// Score evaluates every column pair of every ordered dataset pair (i<j).
// Candidates below the potential threshold are dropped; the rest are
// returned sorted by descending confidence.
func (s *RelationshipScorer) Score(datasets []models.Dataset, profiles [][]models.ColumnProfile) []models.RelationshipCandidate {
	var candidates []models.RelationshipCandidate

	for i := 0; i < len(datasets); i++ {
		for j := i + 1; j < len(datasets); j++ {
			for ci := range profiles[i] {
				for cj := range profiles[j] {
					pair := s.scorePair(datasets[i], datasets[j], &profiles[i][ci], &profiles[j][cj])
					candidates = append(candidates, pair...)
				}
			}
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Confidence > candidates[b].Confidence
	})

	s.logger.Debug("scored relationship candidates",
		zap.Int("datasets", len(datasets)),
		zap.Int("candidates", len(candidates)))

	return candidates
}

// Suggested filters candidates to those above the suggestion threshold.
func (s *RelationshipScorer) Suggested(candidates []models.RelationshipCandidate) []models.RelationshipCandidate {
	out := make([]models.RelationshipCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.IsSuggested(s.cfg.SuggestThreshold) {
			out = append(out, c)
		}
	}
	return out
}

// scorePair scores one column pair and, when it clears the potential
// threshold, returns the forward and reverse candidates.
func (s *RelationshipScorer) scorePair(dsA, dsB models.Dataset, colA, colB *models.ColumnProfile) []models.RelationshipCandidate {
	typeScore := typeCompatibility(colA.InferredType, colB.InferredType)
	nameSim := nameSimilarity(colA.Name, colB.Name)

	confidence := typeScore + nameSim*nameWeight +
		keyBonus(dsA, dsB, colA, colB) +
		sampleOverlap(colA.SampleValues, colB.SampleValues)*overlapWeight

	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence <= s.cfg.PotentialThreshold {
		return nil
	}

	matchType := models.MatchTypeCompatible
	switch {
	case nameSim == 1.0 && colA.InferredType == colB.InferredType:
		matchType = models.MatchTypeExact
	case nameSim >= 0.7:
		matchType = models.MatchTypeSimilar
	}

	cardinality := inferCardinality(colA, colB)

	forward := models.RelationshipCandidate{
		SourceDatasetID:     dsA.ID,
		TargetDatasetID:     dsB.ID,
		SourceColumn:        colA.Name,
		TargetColumn:        colB.Name,
		MatchType:           matchType,
		Confidence:          confidence,
		InferredCardinality: cardinality,
	}
	reverse := models.RelationshipCandidate{
		SourceDatasetID:     dsB.ID,
		TargetDatasetID:     dsA.ID,
		SourceColumn:        colB.Name,
		TargetColumn:        colA.Name,
		MatchType:           matchType,
		Confidence:          confidence,
		InferredCardinality: cardinality.Invert(),
	}
	return []models.RelationshipCandidate{forward, reverse}
}

// typeCompatibility scores identical inferred types highest and numeric
// siblings with partial credit. Unknown types never match.
func typeCompatibility(a, b models.ValueKind) float64 {
	if a == models.KindUnknown || b == models.KindUnknown {
		return 0
	}
	if a == b {
		return typeIdenticalWeight
	}
	if a.IsNumeric() && b.IsNumeric() {
		return typeCompatibleWeight
	}
	return 0
}

// nameSimilarity: exact match 1.0, substring containment 0.8,
// underscore-insensitive equality 0.7, else the ratio of the shorter to
// the longer name length.
func nameSimilarity(a, b string) float64 {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == lb {
		return 1.0
	}
	if strings.Contains(la, lb) || strings.Contains(lb, la) {
		return 0.8
	}
	if strings.ReplaceAll(la, "_", "") == strings.ReplaceAll(lb, "_", "") {
		return 0.7
	}
	shorter, longer := len(la), len(lb)
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	if longer == 0 {
		return 0
	}
	return float64(shorter) / float64(longer)
}

// keyBonus rewards id/foreign-key pairings, including a foreign key whose
// stem names the other dataset (orders.customer_id against customers).
// The combined bonus is capped.
func keyBonus(dsA, dsB models.Dataset, colA, colB *models.ColumnProfile) float64 {
	bonus := 0.0
	switch {
	case (colA.IsIDColumn && colB.IsForeignKey) || (colB.IsIDColumn && colA.IsForeignKey):
		bonus += idFKPairBonus
	case colA.IsIDColumn || colB.IsIDColumn:
		bonus += idOnlyBonus
	}

	if colA.IsIDColumn && fkStemMatchesDataset(colB.Name, dsA.Name) {
		bonus += datasetNameBonus
	} else if colB.IsIDColumn && fkStemMatchesDataset(colA.Name, dsB.Name) {
		bonus += datasetNameBonus
	}

	if bonus > maxKeyBonus {
		bonus = maxKeyBonus
	}
	return bonus
}

// fkStemMatchesDataset reports whether an *_id column's stem names the
// given dataset, singularized ("customer_id" against "customers").
func fkStemMatchesDataset(column, dataset string) bool {
	lower := strings.ToLower(column)
	if !strings.HasSuffix(lower, "_id") {
		return false
	}
	stem := strings.TrimSuffix(lower, "_id")
	return stem != "" && stem == inflection.Singular(strings.ToLower(dataset))
}

// sampleOverlap returns the fraction of the smaller sample set present in
// the larger one.
func sampleOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	set := make(map[string]struct{}, len(large))
	for _, v := range large {
		set[v] = struct{}{}
	}
	matched := 0
	for _, v := range small {
		if _, ok := set[v]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(small))
}

// inferCardinality derives the row multiplicity from column uniqueness.
func inferCardinality(a, b *models.ColumnProfile) models.Cardinality {
	switch {
	case a.IsUnique() && b.IsUnique():
		return models.CardinalityOneToOne
	case a.IsUnique():
		return models.CardinalityOneToMany
	case b.IsUnique():
		return models.CardinalityManyToOne
	default:
		return models.CardinalityManyToMany
	}
}
