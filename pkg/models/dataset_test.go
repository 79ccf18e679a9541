package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatasetInfersSchema(t *testing.T) {
	ds := NewDataset("people", []Record{
		{"name": String("ada"), "age": Integer(36)},
		{"name": String("alan"), "age": Integer(41)},
	})

	assert.Equal(t, []string{"age", "name"}, ds.Columns)
	assert.Equal(t, 2, ds.Len())
	assert.False(t, ds.IsEmpty())
	assert.True(t, ds.HasColumn("age"))
	assert.False(t, ds.HasColumn("email"))
}

func TestDatasetFromRaw(t *testing.T) {
	ds := DatasetFromRaw("orders", []map[string]any{
		{"id": 1, "total": 9.99},
		{"id": 2, "total": 12.0},
	})

	require.Equal(t, 2, ds.Len())
	assert.Equal(t, Integer(1), ds.Records[0].Get("id"))
	assert.Equal(t, Float(9.99), ds.Records[0].Get("total"))
	assert.Equal(t, Integer(12), ds.Records[1].Get("total"), "whole floats collapse to integers")
}

func TestRecordGetMissingColumnIsNull(t *testing.T) {
	rec := Record{"a": Integer(1)}
	assert.Equal(t, Null(), rec.Get("b"))
}

func TestDatasetCloneIsDeep(t *testing.T) {
	ds := NewDataset("d", []Record{{"a": Integer(1)}})
	clone := ds.Clone()
	clone.Records[0]["a"] = Integer(99)

	assert.Equal(t, Integer(1), ds.Records[0].Get("a"))
}

func TestConcatMergesSchemas(t *testing.T) {
	a := NewDatasetWithColumns("a", []string{"x", "y"}, []Record{{"x": Integer(1), "y": Integer(2)}})
	b := NewDatasetWithColumns("b", []string{"y", "z"}, []Record{{"y": Integer(3), "z": Integer(4)}})

	out := Concat(a, b)
	assert.Equal(t, []string{"x", "y", "z"}, out.Columns, "columns keep first-appearance order")
	require.Equal(t, 2, out.Len())
	assert.Equal(t, Null(), out.Records[1].Get("x"), "missing columns read as null")
}
