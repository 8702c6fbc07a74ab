package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/workguide/guide-server/internal/domain"
	"github.com/workguide/guide-server/internal/search"
)

// SearchService keeps the guide index in step with the store and runs queries.
// It satisfies GuideIndexer so GuideService can refresh it after writes.
type SearchService struct {
	index  *search.GuideIndex
	guides *GuideService
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.GuideIndex, guides *GuideService, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		guides: guides,
		logger: logger,
	}
}

// Search returns guides matching query, best first.
func (s *SearchService) Search(ctx context.Context, query string, limit int) (*search.Result, error) {
	return s.index.Search(ctx, query, limit)
}

// DocumentCount reports how many guides are indexed.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// IndexGuide indexes a single guide.
func (s *SearchService) IndexGuide(ctx context.Context, g *domain.GuideAggregate) error {
	if err := s.index.IndexGuide(ctx, g); err != nil {
		return fmt.Errorf("index guide: %w", err)
	}
	s.logger.Debug("indexed guide", "guide_id", g.ID, "title", g.Title)
	return nil
}

// DeleteGuide removes a guide from the index.
func (s *SearchService) DeleteGuide(ctx context.Context, guideID string) error {
	if err := s.index.DeleteGuide(ctx, guideID); err != nil {
		return fmt.Errorf("delete guide from index: %w", err)
	}
	return nil
}

// Reindex rebuilds the index from every stored guide.
// Guides that fail to assemble are logged and left out.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	start := time.Now()

	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	roots, err := s.guides.List(ctx)
	if err != nil {
		return 0, err
	}

	aggregates := make([]*domain.GuideAggregate, 0, len(roots))
	for _, g := range roots {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		agg, err := s.guides.assemble(ctx, g)
		if err != nil {
			s.logger.Warn("skipping guide during reindex", "guide_id", g.ID, "error", err)
			continue
		}
		aggregates = append(aggregates, agg)
	}

	if err := s.index.IndexGuides(ctx, aggregates); err != nil {
		return 0, fmt.Errorf("index guides: %w", err)
	}

	s.logger.Info("search index rebuilt",
		"guides", len(aggregates),
		"duration", time.Since(start),
	)
	return len(aggregates), nil
}
