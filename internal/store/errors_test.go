package store_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/workguide/guide-server/internal/store"
)

func TestError_ErrorWithCause(t *testing.T) {
	cause := errors.New("underlying error")
	err := store.ErrNotFound.WithCause(cause)

	assert.Contains(t, err.Error(), "resource not found")
	assert.Contains(t, err.Error(), "underlying error")
	assert.Equal(t, cause, err.Unwrap())
}

func TestError_HTTPCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, store.ErrGuideNotFound.HTTPCode())
	assert.Equal(t, http.StatusConflict, store.ErrSlugTaken.HTTPCode())
	assert.Equal(t, http.StatusConflict, store.ErrVersionConflict.HTTPCode())
}

func TestError_DerivedMatchesParent(t *testing.T) {
	assert.ErrorIs(t, store.ErrGuideNotFound, store.ErrNotFound)
	assert.ErrorIs(t, store.ErrTagNotFound, store.ErrNotFound)
	assert.ErrorIs(t, store.ErrSlugTaken, store.ErrAlreadyExists)
	assert.ErrorIs(t, store.ErrVersionConflict, store.ErrConflict)

	wrapped := fmt.Errorf("update guide: %w", store.ErrVersionConflict.WithCause(errors.New("txn")))
	assert.ErrorIs(t, wrapped, store.ErrVersionConflict)
	assert.ErrorIs(t, wrapped, store.ErrConflict)
}

func TestError_SiblingsDoNotMatch(t *testing.T) {
	assert.NotErrorIs(t, store.ErrGuideNotFound, store.ErrTagNotFound)
	assert.NotErrorIs(t, store.ErrSlugTaken, store.ErrTagNameTaken)
	assert.NotErrorIs(t, store.ErrNotFound, store.ErrGuideNotFound)
	assert.NotErrorIs(t, store.ErrVersionConflict, store.ErrAlreadyExists)
}
