package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/audiofolio/folio-server/internal/domain"
	"github.com/audiofolio/folio-server/internal/store"
)

// scanImportFolder scans a row into a domain.ImportFolder.
func scanImportFolder(scanner interface{ Scan(dest ...any) error }) (*domain.ImportFolder, error) {
	var folder domain.ImportFolder

	var (
		enabled   int
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&folder.ID,
		&folder.Name,
		&folder.Path,
		&enabled,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	folder.Enabled = enabled != 0

	folder.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	folder.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &folder, nil
}

// CreateImportFolder inserts a new staging folder.
// Returns store.ErrAlreadyExists on duplicate ID or path.
func (s *Store) CreateImportFolder(ctx context.Context, folder *domain.ImportFolder) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_folders (id, name, path, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		folder.ID,
		folder.Name,
		folder.Path,
		boolToInt(folder.Enabled),
		formatTime(folder.CreatedAt),
		formatTime(folder.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetImportFolder retrieves a staging folder by ID.
// Returns store.ErrNotFound if the folder does not exist.
func (s *Store) GetImportFolder(ctx context.Context, id string) (*domain.ImportFolder, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, path, enabled, created_at, updated_at
		FROM import_folders WHERE id = ?`, id)

	folder, err := scanImportFolder(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return folder, nil
}

// ListImportFolders returns all staging folders ordered by name.
func (s *Store) ListImportFolders(ctx context.Context) ([]*domain.ImportFolder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, path, enabled, created_at, updated_at
		FROM import_folders ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var folders []*domain.ImportFolder
	for rows.Next() {
		folder, err := scanImportFolder(rows)
		if err != nil {
			return nil, err
		}
		folders = append(folders, folder)
	}
	return folders, rows.Err()
}

// GetImportSettings returns the active import settings, falling back to
// defaults when none have been saved yet.
func (s *Store) GetImportSettings(ctx context.Context) (*domain.ImportSettings, error) {
	var (
		settings  domain.ImportSettings
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT destination_template, destination_root, updated_at
		FROM import_settings WHERE id = 1`,
	).Scan(&settings.DestinationTemplate, &settings.DestinationRoot, &updatedAt)
	if err == sql.ErrNoRows {
		return &domain.ImportSettings{DestinationTemplate: "{author}/{title}"}, nil
	}
	if err != nil {
		return nil, err
	}

	settings.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// SaveImportSettings upserts the single import settings row.
func (s *Store) SaveImportSettings(ctx context.Context, settings *domain.ImportSettings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_settings (id, destination_template, destination_root, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			destination_template = excluded.destination_template,
			destination_root = excluded.destination_root,
			updated_at = excluded.updated_at`,
		settings.DestinationTemplate,
		settings.DestinationRoot,
		formatTime(settings.UpdatedAt),
	)
	return err
}
