// Package di provides dependency injection configuration for the Folio server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/audiofolio/folio-server/internal/config"
	"github.com/audiofolio/folio-server/internal/di/providers"
	"github.com/audiofolio/folio-server/internal/logger"
	"github.com/audiofolio/folio-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Scanner layer
	do.Provide(injector, providers.ProvideProbe)
	do.Provide(injector, providers.ProvideDiscoverer)

	// Business services
	do.Provide(injector, providers.ProvideLibraryService)
	do.Provide(injector, providers.ProvideImportService)
	do.Provide(injector, providers.ProvideMetadataService)
	do.Provide(injector, providers.ProvideSearchService)
	do.Provide(injector, providers.ProvideBrowseService)

	// Workers
	do.Provide(injector, providers.ProvideFolderWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once the server is
// listening. This triggers lazy initialization of every provider.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)

	_ = do.MustInvoke[*service.LibraryService](injector)
	_ = do.MustInvoke[*service.ImportService](injector)
	_ = do.MustInvoke[*service.MetadataService](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*service.BrowseService](injector)

	_ = do.MustInvoke[*providers.FolderWatcherHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Rebuild the search index on startup when it is empty but the
	// catalog is not, e.g. after a mapping version bump wiped it.
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
