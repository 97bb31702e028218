package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/audiofolio/folio-server/internal/domain"
	"github.com/audiofolio/folio-server/internal/service"
)

func (s *Server) registerAudiobookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listAudiobooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/audiobooks",
		Summary:     "List audiobooks",
		Description: "Returns audiobooks, optionally filtered to one library",
		Tags:        []string{"Audiobooks"},
	}, s.handleListAudiobooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAudiobook",
		Method:      http.MethodGet,
		Path:        "/api/v1/audiobooks/{id}",
		Summary:     "Get audiobook",
		Description: "Returns an audiobook by ID with its media files",
		Tags:        []string{"Audiobooks"},
	}, s.handleGetAudiobook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAudiobookMetadata",
		Method:      http.MethodGet,
		Path:        "/api/v1/audiobooks/{id}/metadata",
		Summary:     "Get effective metadata",
		Description: "Returns the resolved per-field metadata with source and lock state",
		Tags:        []string{"Metadata"},
	}, s.handleGetAudiobookMetadata)

	huma.Register(s.api, huma.Operation{
		OperationID: "saveAudiobookOverrides",
		Method:      http.MethodPut,
		Path:        "/api/v1/audiobooks/{id}/metadata/overrides",
		Summary:     "Save metadata overrides",
		Description: "Replaces the full override set. Fields absent from the request revert to agent data.",
		Tags:        []string{"Metadata"},
	}, s.handleSaveAudiobookOverrides)
}

// === DTOs ===

// MediaFileResponse contains media file data in API responses.
type MediaFileResponse struct {
	ID          string  `json:"id" doc:"Media file ID"`
	Filename    string  `json:"filename" doc:"File name within the book folder"`
	DurationSec float64 `json:"duration_sec" doc:"Playback duration in seconds"`
	MIMEType    string  `json:"mime_type" doc:"Audio MIME type"`
}

// AudiobookResponse contains audiobook data in API responses.
type AudiobookResponse struct {
	ID          string              `json:"id" doc:"Audiobook ID"`
	LibraryID   string              `json:"library_id,omitempty" doc:"Owning library"`
	DirectoryID string              `json:"directory_id" doc:"Library path the book lives under"`
	AssetPath   string              `json:"asset_path" doc:"Book folder or single file path"`
	DurationSec float64             `json:"duration_sec" doc:"Total playback duration in seconds"`
	MediaFiles  []MediaFileResponse `json:"media_files" doc:"Audio files of this book"`
	CreatedAt   time.Time           `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time           `json:"updated_at" doc:"Last update time"`
}

// ListAudiobooksInput contains parameters for listing audiobooks.
type ListAudiobooksInput struct {
	LibraryID string `query:"library_id" doc:"Restrict to one library, empty for all"`
}

// ListAudiobooksResponse contains a list of audiobooks.
type ListAudiobooksResponse struct {
	Audiobooks []AudiobookResponse `json:"audiobooks" doc:"List of audiobooks"`
}

// ListAudiobooksOutput wraps the list audiobooks response for Huma.
type ListAudiobooksOutput struct {
	Body ListAudiobooksResponse
}

// GetAudiobookInput contains parameters for getting an audiobook.
type GetAudiobookInput struct {
	ID string `path:"id" doc:"Audiobook ID"`
}

// AudiobookOutput wraps a single audiobook for Huma.
type AudiobookOutput struct {
	Body AudiobookResponse
}

// EffectiveMetadataOutput wraps resolved metadata for Huma.
type EffectiveMetadataOutput struct {
	Body service.EffectiveMetadata
}

// SaveOverridesRequest is the full override set keyed by field name.
// A field with a value becomes a locked custom value. A field without a
// value carries only its lock flag. Absent fields revert to agent data.
type SaveOverridesRequest struct {
	Overrides map[string]domain.FieldOverride `json:"overrides" doc:"Override per metadata field"`
}

// SaveOverridesInput wraps the save overrides request for Huma.
type SaveOverridesInput struct {
	ID   string `path:"id" doc:"Audiobook ID"`
	Body SaveOverridesRequest
}

func audiobookResponse(book *domain.Audiobook) AudiobookResponse {
	resp := AudiobookResponse{
		ID:          book.ID,
		LibraryID:   book.LibraryID,
		DirectoryID: book.DirectoryID,
		AssetPath:   book.AssetPath,
		DurationSec: book.TotalDuration(),
		MediaFiles:  make([]MediaFileResponse, 0, len(book.MediaFiles)),
		CreatedAt:   book.CreatedAt,
		UpdatedAt:   book.UpdatedAt,
	}
	for _, file := range book.MediaFiles {
		resp.MediaFiles = append(resp.MediaFiles, MediaFileResponse{
			ID:          file.ID,
			Filename:    file.Filename,
			DurationSec: file.DurationSec,
			MIMEType:    file.MIMEType,
		})
	}
	return resp
}

// === Handlers ===

func (s *Server) handleListAudiobooks(ctx context.Context, input *ListAudiobooksInput) (*ListAudiobooksOutput, error) {
	books, err := s.services.Library.ListAudiobooks(ctx, input.LibraryID)
	if err != nil {
		return nil, err
	}

	resp := make([]AudiobookResponse, len(books))
	for i, book := range books {
		resp[i] = audiobookResponse(book)
	}

	return &ListAudiobooksOutput{Body: ListAudiobooksResponse{Audiobooks: resp}}, nil
}

func (s *Server) handleGetAudiobook(ctx context.Context, input *GetAudiobookInput) (*AudiobookOutput, error) {
	book, err := s.services.Library.GetAudiobook(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &AudiobookOutput{Body: audiobookResponse(book)}, nil
}

func (s *Server) handleGetAudiobookMetadata(ctx context.Context, input *GetAudiobookInput) (*EffectiveMetadataOutput, error) {
	effective, err := s.services.Metadata.GetEffectiveMetadata(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &EffectiveMetadataOutput{Body: *effective}, nil
}

func (s *Server) handleSaveAudiobookOverrides(ctx context.Context, input *SaveOverridesInput) (*EffectiveMetadataOutput, error) {
	overrides := make(map[domain.MetadataField]domain.FieldOverride, len(input.Body.Overrides))
	for field, override := range input.Body.Overrides {
		overrides[domain.MetadataField(field)] = override
	}

	effective, err := s.services.Metadata.SaveOverrides(ctx, input.ID, overrides)
	if err != nil {
		return nil, err
	}

	return &EffectiveMetadataOutput{Body: *effective}, nil
}
