package api

import (
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/workguide/guide-server/internal/errors"
)

func TestNewAPIError_SchemaDetailsAreAnObject(t *testing.T) {
	err := newAPIError(http.StatusUnprocessableEntity, "validation failed",
		&huma.ErrorDetail{Location: "body.title", Message: "expected string"},
		&huma.ErrorDetail{Location: "body.title", Message: "too short"},
		&huma.ErrorDetail{Location: "query.guide_id", Message: "required"},
		&huma.ErrorDetail{Message: "malformed"},
	)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.GetStatus())
	assert.Equal(t, "VALIDATION", apiErr.Code)
	assert.Equal(t, map[string]string{
		"body.title":     "expected string; too short",
		"query.guide_id": "required",
		"request":        "malformed",
	}, apiErr.Details)
}

func TestNewAPIError_DomainErrorKeepsDetails(t *testing.T) {
	domainErr := domainerrors.TagInUse("tag in use").WithDetails(map[string]any{"guide_count": 2})

	apiErr, ok := newAPIError(http.StatusInternalServerError, "ignored", domainErr).(*APIError)
	require.True(t, ok)
	assert.Equal(t, "TAG_IN_USE", apiErr.Code)
	assert.Equal(t, map[string]any{"guide_count": 2}, apiErr.Details)
}

func TestNewAPIError_NoDetails(t *testing.T) {
	apiErr, ok := newAPIError(http.StatusNotFound, "not found").(*APIError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Nil(t, apiErr.Details)
}
