// Package search maintains a full-text index of guides with Bleve.
package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/workguide/guide-server/internal/domain"
)

// GuideIndex wraps a Bleve index of guide documents.
//
// Thread safety: All public methods are safe for concurrent use.
// The mutex protects against index corruption during rebuild operations.
type GuideIndex struct {
	index  bleve.Index
	path   string // empty for in-memory indexes
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage; empty keeps the index in memory
	Logger   *slog.Logger // Logger for operations (uses discard if nil)
}

// mappingVersion is incremented whenever the index mapping changes.
// A mismatch on startup drops the index; the caller reindexes from the store.
const mappingVersion = "1"

// NewGuideIndex creates or opens the guide index.
// It reports whether the index was freshly created and needs a full reindex.
func NewGuideIndex(opts Options) (*GuideIndex, bool, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if opts.DataPath == "" {
		index, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, false, fmt.Errorf("create in-memory index: %w", err)
		}
		return &GuideIndex{index: index, logger: logger}, true, nil
	}

	indexPath := filepath.Join(opts.DataPath, "guides.bleve")
	versionPath := filepath.Join(opts.DataPath, "guides.version")

	var index bleve.Index
	if _, err := os.Stat(indexPath); err == nil {
		version, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil || string(version) != mappingVersion:
			logger.Info("search index mapping changed, rebuilding",
				"old_version", string(version),
				"new_version", mappingVersion,
			)
		default:
			index, err = bleve.Open(indexPath)
			if err != nil {
				logger.Warn("failed to open search index, recreating", "path", indexPath, "error", err)
			}
		}
	}

	if index != nil {
		logger.Info("opened existing search index", "path", indexPath)
		return &GuideIndex{index: index, path: indexPath, logger: logger}, false, nil
	}

	if err := os.RemoveAll(indexPath); err != nil {
		return nil, false, fmt.Errorf("remove old index: %w", err)
	}
	index, err := bleve.New(indexPath, buildIndexMapping())
	if err != nil {
		return nil, false, fmt.Errorf("create index: %w", err)
	}
	if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
		logger.Warn("failed to write search version file", "error", err)
	}
	logger.Info("created new search index", "path", indexPath, "mapping_version", mappingVersion)

	return &GuideIndex{index: index, path: indexPath, logger: logger}, true, nil
}

// Close closes the index and releases resources.
func (s *GuideIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexGuide adds or replaces one guide.
func (s *GuideIndex) IndexGuide(_ context.Context, g *domain.GuideAggregate) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := NewGuideDocument(g)
	return s.index.Index(doc.ID, doc.toMap())
}

// IndexGuides indexes many guides in batches.
func (s *GuideIndex) IndexGuides(ctx context.Context, guides []*domain.GuideAggregate) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	const batchSize = 500

	for start := 0; start < len(guides); start += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+batchSize, len(guides))

		batch := s.index.NewBatch()
		for _, g := range guides[start:end] {
			doc := NewGuideDocument(g)
			if err := batch.Index(doc.ID, doc.toMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// DeleteGuide removes a guide. Removing an unindexed guide is not an error.
func (s *GuideIndex) DeleteGuide(_ context.Context, guideID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(guideID)
}

// DocumentCount returns the number of indexed guides.
func (s *GuideIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops every document and starts from an empty index.
// It blocks all other operations while it runs.
func (s *GuideIndex) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	var (
		index bleve.Index
		err   error
	)
	if s.path == "" {
		index, err = bleve.NewMemOnly(buildIndexMapping())
	} else {
		if err := os.RemoveAll(s.path); err != nil {
			return fmt.Errorf("remove index: %w", err)
		}
		index, err = bleve.New(s.path, buildIndexMapping())
	}
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	s.index = index
	s.logger.Info("rebuilt search index", "path", s.path)
	return nil
}
