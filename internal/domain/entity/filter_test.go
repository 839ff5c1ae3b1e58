package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Matches(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	doc := Fields{
		"name":           "Class 41",
		"number":         41,
		"isCurrentClass": true,
		"startDate":      start,
	}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"eq bool", Where("isCurrentClass", OpEq, true), true},
		{"eq bool mismatch", Where("isCurrentClass", OpEq, false), false},
		{"int vs float", Where("number", OpEq, 41.0), true},
		{"gt number", Where("number", OpGt, 40), true},
		{"lte number", Where("number", OpLte, 40), false},
		{"string ne", Where("name", OpNe, "Class 40"), true},
		{"time gte", Where("startDate", OpGte, start.Add(-time.Hour)), true},
		{"time lt rfc3339", Where("startDate", OpLt, "2024-04-01T00:00:00Z"), false},
		{"missing field eq", Where("seats", OpEq, 10), false},
		{"missing field ne", Where("seats", OpNe, 10), true},
		{"type mismatch ne", Where("name", OpNe, 3), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(doc))
		})
	}
}

func TestFilter_Validate(t *testing.T) {
	assert.NoError(t, Where("a", OpGte, 1).Validate())
	assert.ErrorIs(t, Where("", OpEq, 1).Validate(), ErrInvalidFilter)
	assert.ErrorIs(t, Where("a", FilterOp("~"), 1).Validate(), ErrInvalidFilter)
}

func TestParseFilterOp(t *testing.T) {
	op, ok := ParseFilterOp("gte")
	assert.True(t, ok)
	assert.Equal(t, OpGte, op)

	op, ok = ParseFilterOp("")
	assert.True(t, ok)
	assert.Equal(t, OpEq, op)

	_, ok = ParseFilterOp("like")
	assert.False(t, ok)
}
