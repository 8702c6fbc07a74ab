package api

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workguide/guide-server/internal/domain"
)

func upload(t *testing.T, ts *testServer, guideKey, filename, contentType string, data []byte) domain.Attachment {
	t.Helper()
	args := []any{bytes.NewReader(data)}
	if contentType != "" {
		args = append(args, "Content-Type: "+contentType)
	}
	resp := ts.client.Post("/api/v1/attachments?guide_id="+guideKey+"&filename="+filename, args...)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decodeData[domain.Attachment](t, resp.Body.Bytes())
}

func TestAttachmentRoutes_UploadServeDelete(t *testing.T) {
	ts := setupTestServer(t, Options{})

	data := []byte("torque: 2 Nm\n")
	a := upload(t, ts, "install-window-handle", "notes.txt", "text/plain", data)
	assert.Equal(t, "notes.txt", a.Filename)
	assert.Equal(t, "text/plain", a.ContentType)
	assert.EqualValues(t, len(data), a.Size)
	assert.True(t, strings.HasPrefix(a.URL, "/api/v1/blobs/"), a.URL)

	resp := ts.client.Get(a.URL)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, data, resp.Body.Bytes())
	assert.Equal(t, CacheImmutable, resp.Header().Get("Cache-Control"))

	resp = ts.client.Get("/api/v1/attachments/install-window-handle")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decodeData[AttachmentListResponse](t, resp.Body.Bytes()).Attachments, 1)

	resp = ts.client.Delete("/api/v1/attachments/install-window-handle")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 1, decodeData[AttachmentDeleteResponse](t, resp.Body.Bytes()).Deleted)

	resp = ts.client.Get(a.URL)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.client.Delete("/api/v1/attachments/install-window-handle")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Zero(t, decodeData[AttachmentDeleteResponse](t, resp.Body.Bytes()).Deleted)
}

func TestAttachmentRoutes_DetectsContentType(t *testing.T) {
	ts := setupTestServer(t, Options{})

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	a := upload(t, ts, "guide-1", "photo.bin", "application/octet-stream", png)
	assert.Equal(t, "image/png", a.ContentType)
}

func TestAttachmentRoutes_Rejections(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.client.Post("/api/v1/attachments?guide_id=g&filename=empty.txt", bytes.NewReader(nil), "Content-Type: text/plain")
	assert.Equal(t, "VALIDATION", decodeError(t, resp.Body.Bytes()).Code)

	resp = ts.client.Post("/api/v1/attachments?filename=a.txt", bytes.NewReader([]byte("a")), "Content-Type: text/plain")
	assert.Equal(t, "VALIDATION", decodeError(t, resp.Body.Bytes()).Code)

	resp = ts.client.Get("/api/v1/blobs/not-a-ref")
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body.Bytes()).Code)
}

func TestAttachmentRoutes_GuideDeleteCascades(t *testing.T) {
	ts := setupTestServer(t, Options{})

	// Uploaded before the guide existed, keyed by slug.
	a := upload(t, ts, "install-window-handle", "notes.txt", "text/plain", []byte("x"))
	id := ts.createGuide(t, windowHandleBody())
	b := upload(t, ts, id, "more.txt", "text/plain", []byte("y"))

	require.Equal(t, http.StatusNoContent, ts.client.Delete("/api/v1/guides/"+id).Code)

	assert.Equal(t, http.StatusNotFound, ts.client.Get(a.URL).Code)
	assert.Equal(t, http.StatusNotFound, ts.client.Get(b.URL).Code)

	resp := ts.client.Get("/api/v1/attachments/install-window-handle")
	assert.Empty(t, decodeData[AttachmentListResponse](t, resp.Body.Bytes()).Attachments)
}
