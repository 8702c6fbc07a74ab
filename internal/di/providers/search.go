package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/workguide/guide-server/internal/config"
	"github.com/workguide/guide-server/internal/logger"
	"github.com/workguide/guide-server/internal/search"
	"github.com/workguide/guide-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.GuideIndex

	// Fresh is set when the index was created or rebuilt empty on open.
	Fresh bool
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, fresh, err := search.NewGuideIndex(search.Options{
		DataPath: cfg.Storage.SearchPath(),
		Logger:   log.For("search"),
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount, "fresh", fresh)

	return &SearchIndexHandle{GuideIndex: index, Fresh: fresh}, nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	guides := do.MustInvoke[*service.GuideService](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewSearchService(indexHandle.GuideIndex, guides, log.Logger)

	// Wire to guide writes for automatic indexing
	guides.SetIndexer(svc)

	return svc, nil
}

// TriggerSearchReindexIfNeeded rebuilds the index in the background when it
// was just created but guides exist. Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	guides := do.MustInvoke[*service.GuideService](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := searchService.DocumentCount()
	if !indexHandle.Fresh && docCount > 0 {
		return
	}

	ctx := context.Background()
	roots, err := guides.List(ctx)
	if err != nil || len(roots) == 0 {
		return
	}

	log.Info("Search index is empty but guides exist, triggering initial reindex",
		"guide_count", len(roots),
	)

	go func() {
		count, err := searchService.Reindex(context.Background())
		if err != nil {
			log.Error("Initial search reindex failed", "error", err)
			return
		}
		log.Info("Initial search reindex completed", "documents", count)
	}()
}
