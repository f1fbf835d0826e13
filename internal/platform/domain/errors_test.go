package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_WrappedClassification(t *testing.T) {
	base := NewConflictError("the selected dates are no longer available").WithCode("dates_unavailable")
	wrapped := fmt.Errorf("create booking: %w", base)

	assert.True(t, IsKind(wrapped, KindConflict))
	assert.True(t, HasCode(wrapped, "dates_unavailable"))
	assert.True(t, errors.Is(wrapped, base))
	assert.False(t, IsKind(errors.New("boom"), KindConflict))
}

func TestNewPaginatedResult(t *testing.T) {
	res := NewPaginatedResult([]int{1, 2}, 41, 1, 20)
	assert.Equal(t, 3, res.TotalPages)

	empty := NewPaginatedResult[int](nil, 0, 1, 20)
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages)
}
