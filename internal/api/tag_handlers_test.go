package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workguide/guide-server/internal/domain"
)

func TestTagRoutes_UpsertDeduplicates(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.client.Post("/api/v1/tags", map[string]any{"name": "okno", "kind": "product"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	first := decodeData[domain.Tag](t, resp.Body.Bytes())

	resp = ts.client.Post("/api/v1/tags", map[string]any{"name": "  OKNO ", "kind": "product", "color": "#ff0000"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	second := decodeData[domain.Tag](t, resp.Body.Bytes())

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "okno", second.Name)
	assert.Equal(t, "#ff0000", second.Color)

	resp = ts.client.Get("/api/v1/tags")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decodeData[TagListResponse](t, resp.Body.Bytes()).Tags, 1)

	resp = ts.client.Get("/api/v1/tags/" + first.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "okno", decodeData[domain.Tag](t, resp.Body.Bytes()).Name)
}

func TestTagRoutes_InvalidKind(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.client.Post("/api/v1/tags", map[string]any{"name": "okno", "kind": "colour"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION", decodeError(t, resp.Body.Bytes()).Code)
}

func TestTagRoutes_DeleteGuarded(t *testing.T) {
	ts := setupTestServer(t, Options{})
	guideID := ts.createGuide(t, windowHandleBody())

	resp := ts.client.Get("/api/v1/tags")
	tags := decodeData[TagListResponse](t, resp.Body.Bytes()).Tags
	require.Len(t, tags, 3)

	var okno *domain.Tag
	for _, tag := range tags {
		if tag.Name == "okno" {
			okno = tag
		}
	}
	require.NotNil(t, okno)

	resp = ts.client.Delete("/api/v1/tags/" + okno.ID)
	require.Equal(t, http.StatusConflict, resp.Code)
	env := decodeError(t, resp.Body.Bytes())
	assert.Equal(t, "TAG_IN_USE", env.Code)
	assert.EqualValues(t, 1, env.Details["guide_count"])

	require.Equal(t, http.StatusNoContent, ts.client.Delete("/api/v1/guides/"+guideID).Code)

	resp = ts.client.Delete("/api/v1/tags/" + okno.ID)
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.client.Delete("/api/v1/tags/" + okno.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
