package sqlite

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"strings"
	"time"

	"github.com/audiofolio/folio-server/internal/domain"
	"github.com/audiofolio/folio-server/internal/store"
)

// libraryColumns is the ordered list of columns selected in library queries.
// Must match the scan order in scanLibrary.
const libraryColumns = `id, name, type, settings, created_at, updated_at`

// scanLibrary scans a sql.Row (or sql.Rows via its Scan method) into a domain.Library.
func scanLibrary(scanner interface{ Scan(dest ...any) error }) (*domain.Library, error) {
	var lib domain.Library

	var (
		libType   string
		settings  string
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&lib.ID,
		&lib.Name,
		&libType,
		&settings,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	lib.Type = domain.LibraryType(libType)

	if err := json.Unmarshal([]byte(settings), &lib.Settings); err != nil {
		return nil, err
	}

	lib.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	lib.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &lib, nil
}

// CreateLibrary inserts a new library and links it to the given directories.
// Returns store.ErrAlreadyExists on duplicate ID.
func (s *Store) CreateLibrary(ctx context.Context, lib *domain.Library, directoryIDs []string) error {
	settings := lib.Settings
	if settings == nil {
		settings = map[string]any{}
	}
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO libraries (id, name, type, settings, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		lib.ID,
		lib.Name,
		string(lib.Type),
		string(settingsJSON),
		formatTime(lib.CreatedAt),
		formatTime(lib.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	for _, dirID := range directoryIDs {
		_, err = tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO library_directories (library_id, directory_id)
			VALUES (?, ?)`,
			lib.ID, dirID,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetLibrary retrieves a library by ID, including its linked directories.
// Returns store.ErrNotFound if the library does not exist.
func (s *Store) GetLibrary(ctx context.Context, id string) (*domain.Library, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+libraryColumns+` FROM libraries WHERE id = ?`, id)

	lib, err := scanLibrary(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	lib.Directories, err = s.libraryDirectories(ctx, lib.ID)
	if err != nil {
		return nil, err
	}
	return lib, nil
}

// ListLibraries returns all libraries with their directories, ordered by
// creation time.
func (s *Store) ListLibraries(ctx context.Context) ([]*domain.Library, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+libraryColumns+` FROM libraries ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var libraries []*domain.Library
	for rows.Next() {
		lib, err := scanLibrary(rows)
		if err != nil {
			return nil, err
		}
		libraries = append(libraries, lib)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, lib := range libraries {
		lib.Directories, err = s.libraryDirectories(ctx, lib.ID)
		if err != nil {
			return nil, err
		}
	}
	return libraries, nil
}

// libraryDirectories returns the directories linked to a library.
func (s *Store) libraryDirectories(ctx context.Context, libraryID string) ([]domain.Directory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.path, d.enabled, d.last_scanned_at, d.created_at, d.updated_at
		FROM directories d
		JOIN library_directories ld ON ld.directory_id = d.id
		WHERE ld.library_id = ?
		ORDER BY d.path ASC`,
		libraryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dirs []domain.Directory
	for rows.Next() {
		dir, err := scanDirectory(rows)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, *dir)
	}
	return dirs, rows.Err()
}

// SetDirectoryScannedAt records a completed scan of a directory.
func (s *Store) SetDirectoryScannedAt(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE directories SET last_scanned_at = ?, updated_at = ? WHERE id = ?`,
		formatTime(at), formatTime(at), id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
