package providers

import (
	"context"
	"os"

	"github.com/samber/do/v2"

	"github.com/audiofolio/folio-server/internal/config"
	"github.com/audiofolio/folio-server/internal/logger"
	"github.com/audiofolio/folio-server/internal/search"
	"github.com/audiofolio/folio-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.SearchPath(), 0o755); err != nil {
		return nil, err
	}

	index, err := search.NewIndex(search.Options{
		DataPath: cfg.SearchPath(),
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{Index: index}, nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	metadataService := do.MustInvoke[*service.MetadataService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(storeHandle.Store, indexHandle.Index, metadataService, log.Logger), nil
}

// TriggerSearchReindexIfNeeded rebuilds the index in the background when
// it is empty but the catalog is not. Should be called after all
// services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	searchService := do.MustInvoke[*service.SearchService](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := searchService.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	books, err := storeHandle.ListAudiobooks(ctx, "")
	if err != nil || len(books) == 0 {
		return
	}

	log.Info("Search index is empty but audiobooks exist, triggering initial reindex",
		"audiobook_count", len(books),
	)

	go func() {
		indexed, err := searchService.ReindexAll(context.Background())
		if err != nil {
			log.Error("Initial search reindex failed", "error", err)
			return
		}
		log.Info("Initial search reindex completed", "documents", indexed)
	}()
}
