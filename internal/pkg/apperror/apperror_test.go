// internal/pkg/apperror/apperror_test.go
package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Business("Out of stock"))
	assert.Equal(t, KindBusiness, KindOf(wrapped))
	assert.Equal(t, "Out of stock", MessageOf(wrapped))

	foreign := errors.New("connection reset")
	assert.Equal(t, KindInternal, KindOf(foreign))
	assert.Equal(t, "Internal server error", MessageOf(foreign))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("deadlock detected")
	err := Internal("failed to create sale", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to create sale", MessageOf(err))
	assert.Equal(t, "failed to create sale: deadlock detected", err.Error())
}
