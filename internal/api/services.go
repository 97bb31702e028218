package api

import (
	"github.com/audiofolio/folio-server/internal/service"
)

// Services groups the business logic services used by the API server.
// This keeps the NewServer parameter list manageable and makes test
// wiring explicit about what each test needs.
type Services struct {
	Library  *service.LibraryService
	Import   *service.ImportService
	Metadata *service.MetadataService
	Search   *service.SearchService
	Browse   *service.BrowseService
}
