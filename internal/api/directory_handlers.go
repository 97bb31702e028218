package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/audiofolio/folio-server/internal/domain"
	"github.com/audiofolio/folio-server/internal/service"
)

func (s *Server) registerDirectoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listDirectories",
		Method:      http.MethodGet,
		Path:        "/api/v1/directories",
		Summary:     "List library paths",
		Description: "Returns all registered library paths",
		Tags:        []string{"Directories"},
	}, s.handleListDirectories)

	huma.Register(s.api, huma.Operation{
		OperationID: "createDirectory",
		Method:      http.MethodPost,
		Path:        "/api/v1/directories",
		Summary:     "Register library path",
		Description: "Registers a filesystem path as a library path, optionally assigned to libraries",
		Tags:        []string{"Directories"},
	}, s.handleCreateDirectory)

	huma.Register(s.api, huma.Operation{
		OperationID: "browseDirectory",
		Method:      http.MethodGet,
		Path:        "/api/v1/directories/{id}/browse",
		Summary:     "Browse library path",
		Description: "Lists the contents of a library path, confined to its root",
		Tags:        []string{"Directories"},
	}, s.handleBrowseDirectory)
}

// === DTOs ===

// DirectoryResponse contains library path data in API responses.
type DirectoryResponse struct {
	ID            string     `json:"id" doc:"Library path ID"`
	Path          string     `json:"path" doc:"Absolute filesystem path"`
	Enabled       bool       `json:"enabled" doc:"Whether this path participates in scans"`
	LastScannedAt *time.Time `json:"last_scanned_at,omitempty" doc:"Time of the last completed scan"`
	CreatedAt     time.Time  `json:"created_at" doc:"Creation time"`
	UpdatedAt     time.Time  `json:"updated_at" doc:"Last update time"`
}

// ListDirectoriesResponse contains a list of library paths.
type ListDirectoriesResponse struct {
	Directories []DirectoryResponse `json:"directories" doc:"List of library paths"`
}

// ListDirectoriesOutput wraps the list directories response for Huma.
type ListDirectoriesOutput struct {
	Body ListDirectoriesResponse
}

// CreateDirectoryRequest is the request body for registering a library path.
type CreateDirectoryRequest struct {
	Path       string   `json:"path" validate:"required" doc:"Absolute filesystem path"`
	Enabled    bool     `json:"enabled" doc:"Whether this path participates in scans"`
	LibraryIDs []string `json:"library_ids,omitempty" doc:"Libraries to assign this path to"`
}

// CreateDirectoryInput wraps the create directory request for Huma.
type CreateDirectoryInput struct {
	Body CreateDirectoryRequest
}

// DirectoryOutput wraps a single library path for Huma.
type DirectoryOutput struct {
	Body DirectoryResponse
}

// BrowseInput contains parameters for browsing within a root.
type BrowseInput struct {
	ID   string `path:"id" doc:"Root ID"`
	Path string `query:"path" doc:"Relative path inside the root, empty for the root itself"`
}

// BrowseOutput wraps a directory listing for Huma.
type BrowseOutput struct {
	Body service.BrowseListing
}

func directoryResponse(dir *domain.Directory) DirectoryResponse {
	return DirectoryResponse{
		ID:            dir.ID,
		Path:          dir.Path,
		Enabled:       dir.Enabled,
		LastScannedAt: dir.LastScannedAt,
		CreatedAt:     dir.CreatedAt,
		UpdatedAt:     dir.UpdatedAt,
	}
}

// === Handlers ===

func (s *Server) handleListDirectories(ctx context.Context, _ *struct{}) (*ListDirectoriesOutput, error) {
	directories, err := s.services.Library.ListDirectories(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]DirectoryResponse, len(directories))
	for i, dir := range directories {
		resp[i] = directoryResponse(dir)
	}

	return &ListDirectoriesOutput{Body: ListDirectoriesResponse{Directories: resp}}, nil
}

func (s *Server) handleCreateDirectory(ctx context.Context, input *CreateDirectoryInput) (*DirectoryOutput, error) {
	if err := validate.Validate(input.Body); err != nil {
		return nil, err
	}

	dir, err := s.services.Library.CreateDirectory(ctx, input.Body.Path, input.Body.Enabled, input.Body.LibraryIDs)
	if err != nil {
		return nil, err
	}

	return &DirectoryOutput{Body: directoryResponse(dir)}, nil
}

func (s *Server) handleBrowseDirectory(ctx context.Context, input *BrowseInput) (*BrowseOutput, error) {
	listing, err := s.services.Browse.BrowseDirectory(ctx, input.ID, input.Path)
	if err != nil {
		return nil, err
	}

	return &BrowseOutput{Body: *listing}, nil
}
