package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError_IsSentinel(t *testing.T) {
	err := fmt.Errorf("lookup: %w", &NotFoundError{Collection: "classes", ID: "x"})
	assert.True(t, errors.Is(err, ErrRecordNotFound))
	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
}

func TestNewStoreError(t *testing.T) {
	assert.Nil(t, NewStoreError("get", "classes", nil))

	nf := &NotFoundError{Collection: "classes", ID: "x"}
	assert.Same(t, nf, NewStoreError("get", "classes", nf))

	err := NewStoreError("insert", "classes", errors.New("connection reset"))
	var se *StoreError
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, "insert", se.Op)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestValidationError_Unwrap(t *testing.T) {
	assert.ErrorIs(t, NewValidationError("name", "required"), ErrInvalidData)
	err := &ValidationError{Field: "id", Reason: "reserved", Err: ErrReservedField}
	assert.ErrorIs(t, err, ErrReservedField)
	assert.True(t, IsValidation(err))
}

func TestFields_Helpers(t *testing.T) {
	f := Fields{"name": "x", "id": "1", "updatedAt": 1}
	assert.Equal(t, []string{"id", "updatedAt"}, f.Reserved())
	assert.Equal(t, []string{"id", "name", "updatedAt"}, f.Keys())

	merged := Fields{"a": 1, "b": 2}.Merge(Fields{"b": 3})
	assert.Equal(t, Fields{"a": 1, "b": 3}, merged)
}
