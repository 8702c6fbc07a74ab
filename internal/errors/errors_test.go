package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := TagInUse(`tag "drilling" is used by 2 guide(s)`)

	assert.True(t, Is(err, ErrTagInUse))
	assert.False(t, Is(err, ErrConflict))

	wrapped := fmt.Errorf("delete tag: %w", err)
	assert.True(t, Is(wrapped, ErrTagInUse))
}

func TestError_WithCause(t *testing.T) {
	cause := New("disk full")
	err := Wrap(cause, CodeInternal, "save guide")

	assert.Equal(t, "save guide: disk full", err.Error())
	assert.True(t, Is(err, cause))
	assert.Equal(t, cause, Unwrap(err))
}

func TestError_WithDetailsKeepsOriginal(t *testing.T) {
	base := Conflictf("slug %q taken", "install-window-handle")
	detailed := base.WithDetails(map[string]string{"slug": "install-window-handle"})

	assert.Nil(t, base.Details)
	assert.NotNil(t, detailed.Details)
	assert.Equal(t, base.Message, detailed.Message)
}

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeConflict, http.StatusConflict},
		{CodeTagInUse, http.StatusConflict},
		{CodeValidation, http.StatusBadRequest},
		{CodeUnresolvedReference, http.StatusUnprocessableEntity},
		{CodeStorageInconsistency, http.StatusInternalServerError},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
			assert.Equal(t, tt.want, (&Error{Code: tt.code}).HTTPStatus())
		})
	}
}
