package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/audiofolio/folio-server/internal/domain"
	"github.com/audiofolio/folio-server/internal/store"
)

// audiobookColumns is the ordered list of columns selected in audiobook
// queries. Must match the scan order in scanAudiobook.
const audiobookColumns = `id, library_id, directory_id, metadata_id, asset_path, created_at, updated_at`

// scanAudiobook scans a row into a domain.Audiobook without its media files.
func scanAudiobook(scanner interface{ Scan(dest ...any) error }) (*domain.Audiobook, error) {
	var book domain.Audiobook

	var (
		libraryID  sql.NullString
		metadataID sql.NullString
		createdAt  string
		updatedAt  string
	)

	err := scanner.Scan(
		&book.ID,
		&libraryID,
		&book.DirectoryID,
		&metadataID,
		&book.AssetPath,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	book.LibraryID = libraryID.String
	book.MetadataID = metadataID.String

	book.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	book.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &book, nil
}

// CreateAudiobook inserts a new audiobook plus its media files in one
// transaction. Returns store.ErrAlreadyExists when the asset path is
// already registered.
func (s *Store) CreateAudiobook(ctx context.Context, book *domain.Audiobook) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO audiobooks (id, library_id, directory_id, metadata_id, asset_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		nullString(book.LibraryID),
		book.DirectoryID,
		nullString(book.MetadataID),
		book.AssetPath,
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	for i := range book.MediaFiles {
		file := &book.MediaFiles[i]
		file.AudiobookID = book.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO media_files (id, audiobook_id, filename, duration_sec, mime_type)
			VALUES (?, ?, ?, ?, ?)`,
			file.ID,
			file.AudiobookID,
			file.Filename,
			file.DurationSec,
			file.MIMEType,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetAudiobook retrieves an audiobook by ID with its media files.
// Returns store.ErrNotFound if the audiobook does not exist.
func (s *Store) GetAudiobook(ctx context.Context, id string) (*domain.Audiobook, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+audiobookColumns+` FROM audiobooks WHERE id = ?`, id)
	return s.finishAudiobook(ctx, row)
}

// GetAudiobookByPath retrieves an audiobook by its unique asset path.
// Returns store.ErrNotFound if no audiobook is registered at that path.
func (s *Store) GetAudiobookByPath(ctx context.Context, assetPath string) (*domain.Audiobook, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+audiobookColumns+` FROM audiobooks WHERE asset_path = ?`, assetPath)
	return s.finishAudiobook(ctx, row)
}

func (s *Store) finishAudiobook(ctx context.Context, row *sql.Row) (*domain.Audiobook, error) {
	book, err := scanAudiobook(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	book.MediaFiles, err = s.audiobookMediaFiles(ctx, book.ID)
	if err != nil {
		return nil, err
	}
	return book, nil
}

// ListAudiobooks returns audiobooks ordered by asset path. An empty
// libraryID lists every audiobook.
func (s *Store) ListAudiobooks(ctx context.Context, libraryID string) ([]*domain.Audiobook, error) {
	query := `SELECT ` + audiobookColumns + ` FROM audiobooks ORDER BY asset_path ASC`
	args := []any{}
	if libraryID != "" {
		query = `SELECT ` + audiobookColumns + ` FROM audiobooks WHERE library_id = ? ORDER BY asset_path ASC`
		args = append(args, libraryID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Audiobook
	for rows.Next() {
		book, err := scanAudiobook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, book := range books {
		book.MediaFiles, err = s.audiobookMediaFiles(ctx, book.ID)
		if err != nil {
			return nil, err
		}
	}
	return books, nil
}

// audiobookMediaFiles returns the media files of one audiobook, ordered
// by filename.
func (s *Store) audiobookMediaFiles(ctx context.Context, audiobookID string) ([]domain.MediaFile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, audiobook_id, filename, duration_sec, mime_type
		FROM media_files WHERE audiobook_id = ? ORDER BY filename ASC`,
		audiobookID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []domain.MediaFile
	for rows.Next() {
		var file domain.MediaFile
		err := rows.Scan(&file.ID, &file.AudiobookID, &file.Filename, &file.DurationSec, &file.MIMEType)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}
