package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorPreservesTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("loading roster: %w", Clone(ErrNotFound, "teacher not found"))

	got := FromError(wrapped)
	assert.Equal(t, ErrNotFound.Code, got.Code)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, "teacher not found", got.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	cause := errors.New("boom")

	got := FromError(cause)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.ErrorIs(t, got, cause)
	assert.Nil(t, FromError(nil))
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrValidation, "message is required")

	assert.Equal(t, "message is required", clone.Message)
	assert.Equal(t, "validation failed", ErrValidation.Message)
}

func TestIsMatchesByCode(t *testing.T) {
	closed := fmt.Errorf("acquire: %w", Clone(ErrSessionClosed, "department store stopped"))

	assert.ErrorIs(t, closed, ErrSessionClosed)
	assert.NotErrorIs(t, closed, ErrNotFound)
	assert.ErrorIs(t, Wrap(errors.New("dial"), ErrUpstreamUnavailable.Code, http.StatusBadGateway, "school api down"), ErrUpstreamUnavailable)
}
