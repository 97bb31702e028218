package providers

import (
	"github.com/samber/do/v2"

	"github.com/audiofolio/folio-server/internal/logger"
	"github.com/audiofolio/folio-server/internal/scanner"
	"github.com/audiofolio/folio-server/internal/service"
)

// ProvideLibraryService provides the library and scan service.
func ProvideLibraryService(i do.Injector) (*service.LibraryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	discoverer := do.MustInvoke[*scanner.Discoverer](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLibraryService(storeHandle.Store, discoverer, indexHandle.Index, log.Logger), nil
}

// ProvideImportService provides the import pipeline service.
func ProvideImportService(i do.Injector) (*service.ImportService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	probe := do.MustInvoke[*scanner.FileProbe](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewImportService(storeHandle.Store, probe, indexHandle.Index, log.Logger), nil
}

// ProvideMetadataService provides the metadata resolution service.
func ProvideMetadataService(i do.Injector) (*service.MetadataService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMetadataService(storeHandle.Store, indexHandle.Index, log.Logger), nil
}

// ProvideBrowseService provides the filesystem browsing service.
func ProvideBrowseService(i do.Injector) (*service.BrowseService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBrowseService(storeHandle.Store, log.Logger), nil
}
