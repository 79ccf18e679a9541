package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fuseline-io/fuseline-engine/pkg/config"
	"github.com/fuseline-io/fuseline-engine/pkg/models"
)

func newTestAnalyzer() *ColumnAnalyzer {
	return NewColumnAnalyzer(config.Default().Analysis, zap.NewNop())
}

func TestProfileDatasetBasics(t *testing.T) {
	ds := models.DatasetFromRaw("users", []map[string]any{
		{"id": 1, "name": "ada", "email": "ada@example.com"},
		{"id": 2, "name": "alan", "email": nil},
		{"id": 3, "name": "ada", "email": "grace@example.com"},
	})
	ds.ID = "ds-users"

	profiles := newTestAnalyzer().ProfileDataset(ds)
	require.Len(t, profiles, 3)

	byName := make(map[string]models.ColumnProfile)
	for _, p := range profiles {
		byName[p.Name] = p
	}

	id := byName["id"]
	assert.Equal(t, "ds-users", id.DatasetID)
	assert.Equal(t, models.KindInteger, id.InferredType)
	assert.Equal(t, 3, id.RowCount)
	assert.Equal(t, 3, id.DistinctCount)
	assert.False(t, id.Nullable)
	assert.True(t, id.IsIDColumn)
	assert.False(t, id.IsForeignKey, `bare "id" is never a foreign key`)

	name := byName["name"]
	assert.Equal(t, models.KindString, name.InferredType)
	assert.Equal(t, 2, name.DistinctCount)
	assert.False(t, name.IsIDColumn)

	email := byName["email"]
	assert.True(t, email.Nullable)
}

func TestProfileForeignKeyDetection(t *testing.T) {
	// Repeated user_id values: 4 rows, 2 distinct, ratio 0.5 < 0.9.
	ds := models.DatasetFromRaw("orders", []map[string]any{
		{"order_id": 1, "user_id": 10},
		{"order_id": 2, "user_id": 10},
		{"order_id": 3, "user_id": 20},
		{"order_id": 4, "user_id": 20},
	})

	profiles := newTestAnalyzer().ProfileDataset(ds)
	byName := make(map[string]models.ColumnProfile)
	for _, p := range profiles {
		byName[p.Name] = p
	}

	assert.True(t, byName["user_id"].IsForeignKey)
	assert.False(t, byName["user_id"].IsIDColumn, "repeated values are not unique ids")
	assert.True(t, byName["order_id"].IsIDColumn)
	assert.False(t, byName["order_id"].IsForeignKey, "all-unique columns are not foreign keys")
}

func TestProfileIDRequiresNumericAndUnique(t *testing.T) {
	ds := models.DatasetFromRaw("t", []map[string]any{
		{"session_id": "abc"},
		{"session_id": "def"},
	})

	profiles := newTestAnalyzer().ProfileDataset(ds)
	require.Len(t, profiles, 1)
	assert.False(t, profiles[0].IsIDColumn, "non-numeric values fail the id heuristic")
}

func TestProfileMixedNumericFoldsToFloat(t *testing.T) {
	ds := models.DatasetFromRaw("t", []map[string]any{
		{"amount": 1},
		{"amount": 2.5},
	})

	profiles := newTestAnalyzer().ProfileDataset(ds)
	require.Len(t, profiles, 1)
	assert.Equal(t, models.KindFloat, profiles[0].InferredType)
}

func TestProfileSampleValuesCapped(t *testing.T) {
	rows := make([]map[string]any, 20)
	for i := range rows {
		rows[i] = map[string]any{"n": i}
	}

	profiles := newTestAnalyzer().ProfileDataset(models.DatasetFromRaw("t", rows))
	require.Len(t, profiles, 1)
	assert.Len(t, profiles[0].SampleValues, config.Default().Analysis.SampleValueLimit)
	assert.Equal(t, 20, profiles[0].DistinctCount)
}

func TestProfileEmptyDataset(t *testing.T) {
	profiles := newTestAnalyzer().ProfileDataset(models.Dataset{Name: "empty"})
	assert.Empty(t, profiles)
}
