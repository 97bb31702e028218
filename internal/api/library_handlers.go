package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/audiofolio/folio-server/internal/domain"
	"github.com/audiofolio/folio-server/internal/validation"
)

// validate is the shared request validator for API inputs.
var validate = validation.New()

func (s *Server) registerLibraryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listLibraries",
		Method:      http.MethodGet,
		Path:        "/api/v1/libraries",
		Summary:     "List libraries",
		Description: "Returns all libraries with their assigned library paths",
		Tags:        []string{"Libraries"},
	}, s.handleListLibraries)

	huma.Register(s.api, huma.Operation{
		OperationID: "createLibrary",
		Method:      http.MethodPost,
		Path:        "/api/v1/libraries",
		Summary:     "Create library",
		Description: "Creates a library, optionally linked to existing library paths",
		Tags:        []string{"Libraries"},
	}, s.handleCreateLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLibrary",
		Method:      http.MethodGet,
		Path:        "/api/v1/libraries/{id}",
		Summary:     "Get library",
		Description: "Returns a library by ID",
		Tags:        []string{"Libraries"},
	}, s.handleGetLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "scanLibrary",
		Method:      http.MethodPost,
		Path:        "/api/v1/libraries/{id}/scan",
		Summary:     "Scan library",
		Description: "Discovers and registers new audiobooks across the library's enabled paths",
		Tags:        []string{"Libraries"},
	}, s.handleScanLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "scanAllLibraries",
		Method:      http.MethodPost,
		Path:        "/api/v1/libraries/scan",
		Summary:     "Scan all libraries",
		Description: "Runs a scan over every library; libraries fail independently",
		Tags:        []string{"Libraries"},
	}, s.handleScanAllLibraries)
}

// === DTOs ===

// LibraryResponse contains library data in API responses.
type LibraryResponse struct {
	ID          string              `json:"id" doc:"Library ID"`
	Name        string              `json:"name" doc:"Library name"`
	Type        string              `json:"type" doc:"Library type: audiobooks or podcasts"`
	Directories []DirectoryResponse `json:"directories" doc:"Library paths assigned to this library"`
	CreatedAt   time.Time           `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time           `json:"updated_at" doc:"Last update time"`
}

// ListLibrariesResponse contains a list of libraries.
type ListLibrariesResponse struct {
	Libraries []LibraryResponse `json:"libraries" doc:"List of libraries"`
}

// ListLibrariesOutput wraps the list libraries response for Huma.
type ListLibrariesOutput struct {
	Body ListLibrariesResponse
}

// CreateLibraryRequest is the request body for creating a library.
type CreateLibraryRequest struct {
	Name         string   `json:"name" validate:"required,min=1,max=100" doc:"Library name"`
	Type         string   `json:"type" validate:"required,oneof=audiobooks podcasts" doc:"Library type"`
	DirectoryIDs []string `json:"directory_ids,omitempty" doc:"Existing library path IDs to assign"`
}

// CreateLibraryInput wraps the create library request for Huma.
type CreateLibraryInput struct {
	Body CreateLibraryRequest
}

// GetLibraryInput contains parameters for getting a library.
type GetLibraryInput struct {
	ID string `path:"id" doc:"Library ID"`
}

// LibraryOutput wraps the library response for Huma.
type LibraryOutput struct {
	Body LibraryResponse
}

// ScanLibraryInput contains parameters for triggering a library scan.
type ScanLibraryInput struct {
	ID string `path:"id" doc:"Library ID"`
}

// ScanResultOutput wraps a scan result for Huma.
type ScanResultOutput struct {
	Body domain.ScanResult
}

// ScanAllResponse contains per-library scan results.
type ScanAllResponse struct {
	Results []domain.ScanResult `json:"results" doc:"Per-library scan results"`
}

// ScanAllOutput wraps the scan-all response for Huma.
type ScanAllOutput struct {
	Body ScanAllResponse
}

func libraryResponse(lib *domain.Library) LibraryResponse {
	resp := LibraryResponse{
		ID:          lib.ID,
		Name:        lib.Name,
		Type:        string(lib.Type),
		Directories: make([]DirectoryResponse, 0, len(lib.Directories)),
		CreatedAt:   lib.CreatedAt,
		UpdatedAt:   lib.UpdatedAt,
	}
	for i := range lib.Directories {
		resp.Directories = append(resp.Directories, directoryResponse(&lib.Directories[i]))
	}
	return resp
}

// === Handlers ===

func (s *Server) handleListLibraries(ctx context.Context, _ *struct{}) (*ListLibrariesOutput, error) {
	libraries, err := s.services.Library.ListLibraries(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]LibraryResponse, len(libraries))
	for i, lib := range libraries {
		resp[i] = libraryResponse(lib)
	}

	return &ListLibrariesOutput{Body: ListLibrariesResponse{Libraries: resp}}, nil
}

func (s *Server) handleCreateLibrary(ctx context.Context, input *CreateLibraryInput) (*LibraryOutput, error) {
	if err := validate.Validate(input.Body); err != nil {
		return nil, err
	}

	lib, err := s.services.Library.CreateLibrary(ctx, input.Body.Name, domain.LibraryType(input.Body.Type), input.Body.DirectoryIDs)
	if err != nil {
		return nil, err
	}

	return &LibraryOutput{Body: libraryResponse(lib)}, nil
}

func (s *Server) handleGetLibrary(ctx context.Context, input *GetLibraryInput) (*LibraryOutput, error) {
	lib, err := s.services.Library.GetLibrary(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &LibraryOutput{Body: libraryResponse(lib)}, nil
}

func (s *Server) handleScanLibrary(ctx context.Context, input *ScanLibraryInput) (*ScanResultOutput, error) {
	if err := s.allowTrigger("scan:" + input.ID); err != nil {
		return nil, err
	}

	result, err := s.services.Library.ScanLibrary(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &ScanResultOutput{Body: *result}, nil
}

func (s *Server) handleScanAllLibraries(ctx context.Context, _ *struct{}) (*ScanAllOutput, error) {
	if err := s.allowTrigger("scan:all"); err != nil {
		return nil, err
	}

	results, err := s.services.Library.ScanAllLibraries(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.ScanResult, len(results))
	for i, result := range results {
		resp[i] = *result
	}

	return &ScanAllOutput{Body: ScanAllResponse{Results: resp}}, nil
}
