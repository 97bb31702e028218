// Package store defines the persistence interface for the Folio server.
package store

import (
	"context"
	"time"

	"github.com/audiofolio/folio-server/internal/domain"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error

	// Libraries
	CreateLibrary(ctx context.Context, lib *domain.Library, directoryIDs []string) error
	GetLibrary(ctx context.Context, id string) (*domain.Library, error)
	ListLibraries(ctx context.Context) ([]*domain.Library, error)

	// Directories (library paths)
	CreateDirectory(ctx context.Context, dir *domain.Directory, libraryIDs []string) error
	GetDirectory(ctx context.Context, id string) (*domain.Directory, error)
	ListDirectories(ctx context.Context) ([]*domain.Directory, error)
	SetDirectoryScannedAt(ctx context.Context, id string, at time.Time) error

	// Audiobooks
	CreateAudiobook(ctx context.Context, book *domain.Audiobook) error
	GetAudiobook(ctx context.Context, id string) (*domain.Audiobook, error)
	GetAudiobookByPath(ctx context.Context, assetPath string) (*domain.Audiobook, error)
	ListAudiobooks(ctx context.Context, libraryID string) ([]*domain.Audiobook, error)

	// Metadata layers
	SaveAgentMetadata(ctx context.Context, meta *domain.AgentMetadata) error
	GetAgentMetadata(ctx context.Context, audiobookID string) (*domain.AgentMetadata, error)
	SaveEmbeddedMetadata(ctx context.Context, meta *domain.EmbeddedMetadata) error
	GetEmbeddedMetadata(ctx context.Context, audiobookID string) (*domain.EmbeddedMetadata, error)
	SaveOverrides(ctx context.Context, audiobookID string, overrides map[domain.MetadataField]domain.FieldOverride, snapshots map[domain.MetadataField]string) error
	GetOverrides(ctx context.Context, audiobookID string) (map[domain.MetadataField]domain.FieldOverride, map[domain.MetadataField]string, error)

	// Import folders and settings
	CreateImportFolder(ctx context.Context, folder *domain.ImportFolder) error
	GetImportFolder(ctx context.Context, id string) (*domain.ImportFolder, error)
	ListImportFolders(ctx context.Context) ([]*domain.ImportFolder, error)
	GetImportSettings(ctx context.Context) (*domain.ImportSettings, error)
	SaveImportSettings(ctx context.Context, settings *domain.ImportSettings) error
}
