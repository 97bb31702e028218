package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/audiofolio/folio-server/internal/domain"
)

func (s *Server) registerImportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listImportFolders",
		Method:      http.MethodGet,
		Path:        "/api/v1/import/folders",
		Summary:     "List import folders",
		Description: "Returns all registered staging folders",
		Tags:        []string{"Imports"},
	}, s.handleListImportFolders)

	huma.Register(s.api, huma.Operation{
		OperationID: "createImportFolder",
		Method:      http.MethodPost,
		Path:        "/api/v1/import/folders",
		Summary:     "Register import folder",
		Description: "Registers an existing directory as a staging folder",
		Tags:        []string{"Imports"},
	}, s.handleCreateImportFolder)

	huma.Register(s.api, huma.Operation{
		OperationID: "browseImportFolder",
		Method:      http.MethodGet,
		Path:        "/api/v1/import/folders/{id}/browse",
		Summary:     "Browse import folder",
		Description: "Lists staged content, confined to the folder root",
		Tags:        []string{"Imports"},
	}, s.handleBrowseImportFolder)

	huma.Register(s.api, huma.Operation{
		OperationID: "importSelection",
		Method:      http.MethodPost,
		Path:        "/api/v1/import/folders/{id}/import",
		Summary:     "Import staged content",
		Description: "Copies the selected entries into the managed tree and registers them. " +
			"Selections fail independently; the job status reports completed, partial, or failed.",
		Tags: []string{"Imports"},
	}, s.handleImportSelection)

	huma.Register(s.api, huma.Operation{
		OperationID: "getImportSettings",
		Method:      http.MethodGet,
		Path:        "/api/v1/import/settings",
		Summary:     "Get import settings",
		Description: "Returns the destination root and template",
		Tags:        []string{"Imports"},
	}, s.handleGetImportSettings)

	huma.Register(s.api, huma.Operation{
		OperationID: "saveImportSettings",
		Method:      http.MethodPut,
		Path:        "/api/v1/import/settings",
		Summary:     "Save import settings",
		Description: "Replaces the destination root and template",
		Tags:        []string{"Imports"},
	}, s.handleSaveImportSettings)
}

// === DTOs ===

// ImportFolderResponse contains staging folder data in API responses.
type ImportFolderResponse struct {
	ID          string    `json:"id" doc:"Import folder ID"`
	Name        string    `json:"name" doc:"Display name"`
	Path        string    `json:"path" doc:"Absolute filesystem path"`
	Enabled     bool      `json:"enabled" doc:"Whether imports from this folder are allowed"`
	HasNewFiles bool      `json:"has_new_files" doc:"Whether files arrived since the last import"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update time"`
}

// ListImportFoldersResponse contains a list of staging folders.
type ListImportFoldersResponse struct {
	Folders []ImportFolderResponse `json:"folders" doc:"List of import folders"`
}

// ListImportFoldersOutput wraps the list import folders response for Huma.
type ListImportFoldersOutput struct {
	Body ListImportFoldersResponse
}

// CreateImportFolderRequest is the request body for registering a folder.
type CreateImportFolderRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=100" doc:"Display name"`
	Path    string `json:"path" validate:"required" doc:"Absolute filesystem path"`
	Enabled bool   `json:"enabled" doc:"Whether imports from this folder are allowed"`
}

// CreateImportFolderInput wraps the create import folder request for Huma.
type CreateImportFolderInput struct {
	Body CreateImportFolderRequest
}

// ImportFolderOutput wraps a single import folder for Huma.
type ImportFolderOutput struct {
	Body ImportFolderResponse
}

// ImportSelectionRequest names the staged entries to import.
type ImportSelectionRequest struct {
	Selections []string `json:"selections" validate:"required,min=1" doc:"Paths relative to the folder root"`
	Template   string   `json:"template,omitempty" doc:"Destination template override, or 'flat' to keep original names"`
}

// ImportSelectionInput wraps the import selection request for Huma.
type ImportSelectionInput struct {
	ID   string `path:"id" doc:"Import folder ID"`
	Body ImportSelectionRequest
}

// ImportJobOutput wraps an import job result for Huma. Partial failures
// still return 200; the job status field carries the distinction.
type ImportJobOutput struct {
	Body domain.ImportJob
}

// ImportSettingsResponse contains the destination configuration.
type ImportSettingsResponse struct {
	DestinationTemplate string    `json:"destination_template" doc:"Path template, e.g. {author}/{title}"`
	DestinationRoot     string    `json:"destination_root" doc:"Root directory imports land under"`
	UpdatedAt           time.Time `json:"updated_at" doc:"Last update time"`
}

// ImportSettingsOutput wraps import settings for Huma.
type ImportSettingsOutput struct {
	Body ImportSettingsResponse
}

// SaveImportSettingsRequest is the request body for replacing settings.
type SaveImportSettingsRequest struct {
	DestinationTemplate string `json:"destination_template" validate:"required" doc:"Path template, e.g. {author}/{title}"`
	DestinationRoot     string `json:"destination_root" validate:"required" doc:"Root directory imports land under"`
}

// SaveImportSettingsInput wraps the save import settings request for Huma.
type SaveImportSettingsInput struct {
	Body SaveImportSettingsRequest
}

func importFolderResponse(folder *domain.ImportFolder) ImportFolderResponse {
	return ImportFolderResponse{
		ID:          folder.ID,
		Name:        folder.Name,
		Path:        folder.Path,
		Enabled:     folder.Enabled,
		HasNewFiles: folder.HasNewFiles,
		CreatedAt:   folder.CreatedAt,
		UpdatedAt:   folder.UpdatedAt,
	}
}

// === Handlers ===

func (s *Server) handleListImportFolders(ctx context.Context, _ *struct{}) (*ListImportFoldersOutput, error) {
	folders, err := s.services.Import.ListImportFolders(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]ImportFolderResponse, len(folders))
	for i, folder := range folders {
		resp[i] = importFolderResponse(folder)
	}

	return &ListImportFoldersOutput{Body: ListImportFoldersResponse{Folders: resp}}, nil
}

func (s *Server) handleCreateImportFolder(ctx context.Context, input *CreateImportFolderInput) (*ImportFolderOutput, error) {
	if err := validate.Validate(input.Body); err != nil {
		return nil, err
	}

	folder, err := s.services.Import.CreateImportFolder(ctx, input.Body.Name, input.Body.Path, input.Body.Enabled)
	if err != nil {
		return nil, err
	}

	return &ImportFolderOutput{Body: importFolderResponse(folder)}, nil
}

func (s *Server) handleBrowseImportFolder(ctx context.Context, input *BrowseInput) (*BrowseOutput, error) {
	listing, err := s.services.Browse.BrowseImportFolder(ctx, input.ID, input.Path)
	if err != nil {
		return nil, err
	}

	return &BrowseOutput{Body: *listing}, nil
}

func (s *Server) handleImportSelection(ctx context.Context, input *ImportSelectionInput) (*ImportJobOutput, error) {
	if err := validate.Validate(input.Body); err != nil {
		return nil, err
	}
	if err := s.allowTrigger("import:" + input.ID); err != nil {
		return nil, err
	}

	job, err := s.services.Import.ImportSelection(ctx, input.ID, input.Body.Selections, input.Body.Template)
	if err != nil {
		return nil, err
	}

	return &ImportJobOutput{Body: *job}, nil
}

func (s *Server) handleGetImportSettings(ctx context.Context, _ *struct{}) (*ImportSettingsOutput, error) {
	settings, err := s.services.Import.GetImportSettings(ctx)
	if err != nil {
		return nil, err
	}

	return &ImportSettingsOutput{Body: ImportSettingsResponse{
		DestinationTemplate: settings.DestinationTemplate,
		DestinationRoot:     settings.DestinationRoot,
		UpdatedAt:           settings.UpdatedAt,
	}}, nil
}

func (s *Server) handleSaveImportSettings(ctx context.Context, input *SaveImportSettingsInput) (*ImportSettingsOutput, error) {
	if err := validate.Validate(input.Body); err != nil {
		return nil, err
	}

	settings, err := s.services.Import.SaveImportSettings(ctx, input.Body.DestinationTemplate, input.Body.DestinationRoot)
	if err != nil {
		return nil, err
	}

	return &ImportSettingsOutput{Body: ImportSettingsResponse{
		DestinationTemplate: settings.DestinationTemplate,
		DestinationRoot:     settings.DestinationRoot,
		UpdatedAt:           settings.UpdatedAt,
	}}, nil
}
