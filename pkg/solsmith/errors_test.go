package solsmith

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func TestUnreachableError(t *testing.T) {

	t.Parallel()

	err := NewUnreachableError()
	require.NotEmpty(t, err.Stack)
	assert.True(t, IsInternalError(err))

	var internal InternalError = err
	assert.Contains(t, internal.Error(), "unreachable")
}

func TestIsInternalErrorUnwraps(t *testing.T) {

	t.Parallel()

	wrapped := xerrors.Errorf("visiting: %w", NewInvariantViolationError("bad kind %d", 3))
	assert.True(t, IsInternalError(wrapped))
	assert.Contains(t, wrapped.Error(), "invariant violation: bad kind 3")

	assert.False(t, IsInternalError(fmt.Errorf("plain")))
}
