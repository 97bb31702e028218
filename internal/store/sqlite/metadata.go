package sqlite

import (
	"context"
	"database/sql"

	"github.com/audiofolio/folio-server/internal/domain"
	"github.com/audiofolio/folio-server/internal/store"
)

// SaveAgentMetadata upserts the agent metadata layer for an audiobook.
func (s *Store) SaveAgentMetadata(ctx context.Context, meta *domain.AgentMetadata) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO agent_metadata (audiobook_id, title, subtitle, author, narrator, series, series_number, year, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (audiobook_id) DO UPDATE SET
			title = excluded.title,
			subtitle = excluded.subtitle,
			author = excluded.author,
			narrator = excluded.narrator,
			series = excluded.series,
			series_number = excluded.series_number,
			year = excluded.year,
			description = excluded.description`,
		meta.AudiobookID,
		meta.Title,
		meta.Subtitle,
		meta.Author,
		meta.Narrator,
		meta.Series,
		meta.SeriesNumber,
		meta.Year,
		meta.Description,
	)
	return err
}

// GetAgentMetadata retrieves the agent metadata layer for an audiobook.
// Returns store.ErrNotFound when the audiobook has never been matched.
func (s *Store) GetAgentMetadata(ctx context.Context, audiobookID string) (*domain.AgentMetadata, error) {
	var meta domain.AgentMetadata
	err := s.db.QueryRowContext(ctx, `
		SELECT audiobook_id, title, subtitle, author, narrator, series, series_number, year, description
		FROM agent_metadata WHERE audiobook_id = ?`,
		audiobookID,
	).Scan(
		&meta.AudiobookID,
		&meta.Title,
		&meta.Subtitle,
		&meta.Author,
		&meta.Narrator,
		&meta.Series,
		&meta.SeriesNumber,
		&meta.Year,
		&meta.Description,
	)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// SaveEmbeddedMetadata upserts the embedded-tag metadata layer for an audiobook.
func (s *Store) SaveEmbeddedMetadata(ctx context.Context, meta *domain.EmbeddedMetadata) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO embedded_metadata (audiobook_id, title, author, series, series_number)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (audiobook_id) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			series = excluded.series,
			series_number = excluded.series_number`,
		meta.AudiobookID,
		meta.Title,
		meta.Author,
		meta.Series,
		meta.SeriesNumber,
	)
	return err
}

// GetEmbeddedMetadata retrieves the embedded-tag metadata layer for an
// audiobook. Returns store.ErrNotFound when no tags were extracted.
func (s *Store) GetEmbeddedMetadata(ctx context.Context, audiobookID string) (*domain.EmbeddedMetadata, error) {
	var meta domain.EmbeddedMetadata
	err := s.db.QueryRowContext(ctx, `
		SELECT audiobook_id, title, author, series, series_number
		FROM embedded_metadata WHERE audiobook_id = ?`,
		audiobookID,
	).Scan(
		&meta.AudiobookID,
		&meta.Title,
		&meta.Author,
		&meta.Series,
		&meta.SeriesNumber,
	)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// SaveOverrides replaces the full override set for an audiobook.
// Fields absent from the map lose their override and track the live
// source again. snapshots carries the frozen value for locked fields
// persisted without a value.
func (s *Store) SaveOverrides(ctx context.Context, audiobookID string, overrides map[domain.MetadataField]domain.FieldOverride, snapshots map[domain.MetadataField]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM metadata_overrides WHERE audiobook_id = ?`, audiobookID)
	if err != nil {
		return err
	}

	for field, ov := range overrides {
		var snapshot sql.NullString
		if ov.Value == nil && ov.Locked {
			if frozen, ok := snapshots[field]; ok {
				snapshot = sql.NullString{String: frozen, Valid: true}
			}
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO metadata_overrides (audiobook_id, field, value, locked, snapshot)
			VALUES (?, ?, ?, ?, ?)`,
			audiobookID,
			string(field),
			nullableString(ov.Value),
			boolToInt(ov.Locked),
			snapshot,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetOverrides retrieves the override set and the snapshot values for
// an audiobook. Both maps are empty when nothing is overridden.
func (s *Store) GetOverrides(ctx context.Context, audiobookID string) (map[domain.MetadataField]domain.FieldOverride, map[domain.MetadataField]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT field, value, locked, snapshot
		FROM metadata_overrides WHERE audiobook_id = ?`,
		audiobookID,
	)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	overrides := map[domain.MetadataField]domain.FieldOverride{}
	snapshots := map[domain.MetadataField]string{}

	for rows.Next() {
		var (
			field    string
			value    sql.NullString
			locked   int
			snapshot sql.NullString
		)
		if err := rows.Scan(&field, &value, &locked, &snapshot); err != nil {
			return nil, nil, err
		}

		ov := domain.FieldOverride{Locked: locked != 0}
		if value.Valid {
			v := value.String
			ov.Value = &v
		}
		overrides[domain.MetadataField(field)] = ov

		if snapshot.Valid {
			snapshots[domain.MetadataField(field)] = snapshot.String
		}
	}
	return overrides, snapshots, rows.Err()
}
