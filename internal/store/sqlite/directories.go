package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/audiofolio/folio-server/internal/domain"
	"github.com/audiofolio/folio-server/internal/store"
)

// scanDirectory scans a row into a domain.Directory.
func scanDirectory(scanner interface{ Scan(dest ...any) error }) (*domain.Directory, error) {
	var dir domain.Directory

	var (
		enabled       int
		lastScannedAt sql.NullString
		createdAt     string
		updatedAt     string
	)

	err := scanner.Scan(
		&dir.ID,
		&dir.Path,
		&enabled,
		&lastScannedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	dir.Enabled = enabled != 0

	dir.LastScannedAt, err = parseNullableTime(lastScannedAt)
	if err != nil {
		return nil, err
	}
	dir.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	dir.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &dir, nil
}

// CreateDirectory inserts a new directory and links it to the given libraries.
// Returns store.ErrAlreadyExists on duplicate ID or path.
func (s *Store) CreateDirectory(ctx context.Context, dir *domain.Directory, libraryIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO directories (id, path, enabled, last_scanned_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		dir.ID,
		dir.Path,
		boolToInt(dir.Enabled),
		nullTimeString(dir.LastScannedAt),
		formatTime(dir.CreatedAt),
		formatTime(dir.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	for _, libID := range libraryIDs {
		_, err = tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO library_directories (library_id, directory_id)
			VALUES (?, ?)`,
			libID, dir.ID,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetDirectory retrieves a directory by ID, including the libraries it backs.
// Returns store.ErrNotFound if the directory does not exist.
func (s *Store) GetDirectory(ctx context.Context, id string) (*domain.Directory, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, path, enabled, last_scanned_at, created_at, updated_at
		FROM directories WHERE id = ?`, id)

	dir, err := scanDirectory(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	dir.Libraries, err = s.directoryLibraries(ctx, dir.ID)
	if err != nil {
		return nil, err
	}
	return dir, nil
}

// ListDirectories returns all directories ordered by path.
func (s *Store) ListDirectories(ctx context.Context) ([]*domain.Directory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path, enabled, last_scanned_at, created_at, updated_at
		FROM directories ORDER BY path ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dirs []*domain.Directory
	for rows.Next() {
		dir, err := scanDirectory(rows)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, dir)
	}
	return dirs, rows.Err()
}

// directoryLibraries returns the libraries a directory is linked to.
func (s *Store) directoryLibraries(ctx context.Context, directoryID string) ([]domain.Library, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.id, l.name, l.type, l.settings, l.created_at, l.updated_at
		FROM libraries l
		JOIN library_directories ld ON ld.library_id = l.id
		WHERE ld.directory_id = ?
		ORDER BY l.created_at ASC`,
		directoryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var libs []domain.Library
	for rows.Next() {
		lib, err := scanLibrary(rows)
		if err != nil {
			return nil, err
		}
		libs = append(libs, *lib)
	}
	return libs, rows.Err()
}
