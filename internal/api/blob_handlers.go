package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/workguide/guide-server/internal/blob"
	domainerrors "github.com/workguide/guide-server/internal/errors"
)

// handleGetBlob streams a stored blob. Attachment URLs point here.
func (s *Server) handleGetBlob(w http.ResponseWriter, r *http.Request) {
	if s.blobs == nil {
		writeError(w, http.StatusServiceUnavailable, string(domainerrors.CodeInternal), "blob storage is not available")
		return
	}

	ref := chi.URLParam(r, "ref")
	f, err := s.blobs.Open(ref)
	switch {
	case errors.Is(err, blob.ErrInvalidRef), errors.Is(err, blob.ErrBlobNotFound):
		writeError(w, http.StatusNotFound, string(domainerrors.CodeNotFound), "blob not found")
		return
	case err != nil:
		s.logger.Error("failed to open blob", "blob_ref", ref, "error", err)
		writeError(w, http.StatusInternalServerError, string(domainerrors.CodeInternal), "failed to read blob")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.logger.Error("failed to stat blob", "blob_ref", ref, "error", err)
		writeError(w, http.StatusInternalServerError, string(domainerrors.CodeInternal), "failed to read blob")
		return
	}

	if contentType, err := s.blobs.ContentType(ref); err == nil {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Cache-Control", CacheImmutable)
	w.Header().Set("ETag", `"`+ref+`"`)

	http.ServeContent(w, r, "", info.ModTime(), f)
}
