package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfer(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want Value
	}{
		{"nil", nil, Null()},
		{"string", "hello", String("hello")},
		{"bool", true, Boolean(true)},
		{"int", 42, Integer(42)},
		{"int64", int64(42), Integer(42)},
		{"whole float collapses to integer", float64(7), Integer(7)},
		{"fractional float stays float", 7.5, Float(7.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Infer(tt.raw))
		})
	}
}

func TestValueIsNull(t *testing.T) {
	assert.True(t, Null().IsNull())
	assert.True(t, Value{}.IsNull(), "zero value is null")
	assert.False(t, String("").IsNull(), "empty string is not null")
	assert.False(t, Integer(0).IsNull())
}

func TestValueAsFloat(t *testing.T) {
	f, ok := Integer(3).AsFloat()
	require.True(t, ok)
	assert.Equal(t, 3.0, f)

	f, ok = Float(2.5).AsFloat()
	require.True(t, ok)
	assert.Equal(t, 2.5, f)

	f, ok = String("101").AsFloat()
	require.True(t, ok, "numeric strings read as numbers")
	assert.Equal(t, 101.0, f)

	_, ok = String("abc").AsFloat()
	assert.False(t, ok)

	_, ok = Null().AsFloat()
	assert.False(t, ok)
}

func TestValueEqual(t *testing.T) {
	assert.True(t, Integer(2).Equal(Float(2.0)), "numeric kinds compare numerically")
	assert.True(t, Null().Equal(Value{}))
	assert.False(t, Null().Equal(String("")))
	assert.False(t, String("1").Equal(Integer(1)), "string never equals integer")
	assert.True(t, String("a").Equal(String("a")))
}

func TestValueLess(t *testing.T) {
	assert.True(t, Null().Less(Integer(0)), "nulls sort first")
	assert.False(t, Integer(0).Less(Null()))
	assert.True(t, Integer(1).Less(Float(1.5)))
	assert.True(t, String("a").Less(String("b")))

	early := Date(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	late := Date(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, early.Less(late))
	assert.False(t, late.Less(early))
}

func TestValueKey(t *testing.T) {
	assert.Equal(t, Integer(3).Key(), Float(3.0).Key(), "equal numerics share a key")
	assert.NotEqual(t, String("3").Key(), Integer(3).Key())
	assert.Equal(t, "\x00null", Null().Key())
	assert.NotEqual(t, String("").Key(), Null().Key(), "empty string keys apart from null")
}

func TestValueRender(t *testing.T) {
	assert.Equal(t, "42", Integer(42).Render())
	assert.Equal(t, "2.5", Float(2.5).Render())
	assert.Equal(t, "true", Boolean(true).Render())
	assert.Equal(t, "", Null().Render())
}
