// Package blob stores attachment file contents on the local filesystem.
// Blobs are addressed by an opaque reference handed out by Put.
package blob

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrBlobNotFound is returned when no blob exists for a reference.
var ErrBlobNotFound = errors.New("blob not found")

// ErrInvalidRef is returned for references Put could not have produced.
var ErrInvalidRef = errors.New("invalid blob reference")

// RoutePrefix is where the API serves blobs; URL builds on it.
const RoutePrefix = "/api/v1/blobs/"

// Storage manages blob files under one directory.
// Thread-safe for concurrent operations.
type Storage struct {
	basePath  string
	publicURL string
	mu        sync.RWMutex // Protects file operations
}

// NewStorage creates the blob directory {basePath}/blobs if needed.
// publicURL is the externally reachable server root used to build retrieval
// URLs; empty yields root-relative URLs.
func NewStorage(basePath, publicURL string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	storagePath := filepath.Join(basePath, "blobs")
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}

	return &Storage{
		basePath:  storagePath,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Put streams r into a new blob and returns its reference and size.
func (s *Storage) Put(r io.Reader) (string, int64, error) {
	ref := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path(ref), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create blob file: %w", err)
	}

	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(s.path(ref))
		return "", 0, fmt.Errorf("failed to write blob: %w", err)
	}

	return ref, size, nil
}

// Open returns a reader for the blob. The caller closes it.
func (s *Storage) Open(ref string) (*os.File, error) {
	if err := validateRef(ref); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.path(ref))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", ref, ErrBlobNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}
	return f, nil
}

// Exists checks if a blob exists.
func (s *Storage) Exists(ref string) bool {
	if validateRef(ref) != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.path(ref))
	return err == nil
}

// Delete removes a blob. A missing blob is reported as ErrBlobNotFound so
// callers can record the inconsistency; they usually carry on regardless.
func (s *Storage) Delete(ref string) error {
	if err := validateRef(ref); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(ref)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", ref, ErrBlobNotFound)
		}
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// ContentType sniffs the stored bytes.
func (s *Storage) ContentType(ref string) (string, error) {
	if err := validateRef(ref); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	mt, err := mimetype.DetectFile(s.path(ref))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", ref, ErrBlobNotFound)
	}
	if err != nil {
		return "", err
	}
	return mt.String(), nil
}

// Hash computes the SHA256 of a blob as hex, for ETags.
func (s *Storage) Hash(ref string) (string, error) {
	f, err := s.Open(ref)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash blob: %w", err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// URL returns the retrieval URL for a blob.
func (s *Storage) URL(ref string) string {
	return s.publicURL + RoutePrefix + ref
}

func (s *Storage) path(ref string) string {
	return filepath.Join(s.basePath, ref)
}

// validateRef accepts only UUIDs, which keeps refs from escaping the directory.
func validateRef(ref string) error {
	if _, err := uuid.Parse(ref); err != nil {
		return fmt.Errorf("%q: %w", ref, ErrInvalidRef)
	}
	return nil
}
