package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/audiofolio/folio-server/internal/domain"
	apperrors "github.com/audiofolio/folio-server/internal/errors"
	"github.com/audiofolio/folio-server/internal/metadata"
	"github.com/audiofolio/folio-server/internal/search"
	"github.com/audiofolio/folio-server/internal/store"
)

// FieldView is the per-field state reported to clients: the effective
// value plus where it came from.
type FieldView struct {
	Value  string                `json:"value"`
	Source domain.MetadataSource `json:"source"`
	Locked bool                  `json:"locked"`
}

// EffectiveMetadata is the resolved metadata of one audiobook.
type EffectiveMetadata struct {
	AudiobookID string                             `json:"audiobook_id"`
	Fields      map[domain.MetadataField]FieldView `json:"fields"`
}

// MetadataService resolves effective metadata and persists overrides.
type MetadataService struct {
	store   store.Store
	indexer SearchIndexer
	logger  *slog.Logger
}

// NewMetadataService creates a new metadata service. indexer may be nil.
func NewMetadataService(st store.Store, indexer SearchIndexer, logger *slog.Logger) *MetadataService {
	return &MetadataService{store: st, indexer: indexer, logger: logger}
}

// resolve loads all three metadata layers for an audiobook. A missing
// agent or embedded layer is not an error; the audiobook itself must
// exist.
func (s *MetadataService) resolve(ctx context.Context, audiobookID string) (*metadata.Resolution, error) {
	if _, err := s.store.GetAudiobook(ctx, audiobookID); err != nil {
		return nil, err
	}

	agent, err := s.store.GetAgentMetadata(ctx, audiobookID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	embedded, err := s.store.GetEmbeddedMetadata(ctx, audiobookID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	overrides, snapshots, err := s.store.GetOverrides(ctx, audiobookID)
	if err != nil {
		return nil, err
	}

	return metadata.NewResolution(agent, embedded, overrides, snapshots), nil
}

// GetEffectiveMetadata computes what each field currently presents.
func (s *MetadataService) GetEffectiveMetadata(ctx context.Context, audiobookID string) (*EffectiveMetadata, error) {
	resolution, err := s.resolve(ctx, audiobookID)
	if err != nil {
		return nil, err
	}

	result := &EffectiveMetadata{
		AudiobookID: audiobookID,
		Fields:      make(map[domain.MetadataField]FieldView, len(domain.MetadataFields())),
	}
	for _, field := range domain.MetadataFields() {
		state := resolution.State(field)
		result.Fields[field] = FieldView{
			Value:  resolution.EffectiveValue(field),
			Source: state.Source,
			Locked: state.Locked,
		}
	}
	return result, nil
}

// SaveOverrides applies a full override payload. Fields absent from the
// payload lose their override and track the live source again; fields
// with a value become locked custom fields; valueless locked fields get
// their live source value snapshotted so it survives later refreshes.
func (s *MetadataService) SaveOverrides(ctx context.Context, audiobookID string, incoming map[domain.MetadataField]domain.FieldOverride) (*EffectiveMetadata, error) {
	for field := range incoming {
		if !field.Valid() {
			return nil, apperrors.Validationf("unknown metadata field %q", field)
		}
	}

	resolution, err := s.resolve(ctx, audiobookID)
	if err != nil {
		return nil, err
	}

	for _, field := range domain.MetadataFields() {
		override, ok := incoming[field]
		switch {
		case !ok:
			if resolution.State(field).Source == domain.SourceCustom {
				resolution.SetSource(field, domain.SourceAgent)
			}
			resolution.SetLocked(field, false)
		case override.Value != nil:
			resolution.SetCustomValue(field, *override.Value)
			resolution.SetLocked(field, true)
		default:
			if resolution.State(field).Source == domain.SourceCustom {
				resolution.SetSource(field, domain.SourceAgent)
			}
			resolution.SetLocked(field, override.Locked)
		}
	}

	payload := resolution.SavePayload()
	snapshots := resolution.SnapshotValues()
	if err := s.store.SaveOverrides(ctx, audiobookID, payload, snapshots); err != nil {
		return nil, err
	}

	s.logger.Info("metadata overrides saved",
		"audiobook_id", audiobookID, "overridden_fields", len(payload))

	s.reindex(ctx, audiobookID, resolution)

	return s.GetEffectiveMetadata(ctx, audiobookID)
}

// SaveAgentMetadata stores a fresh agent match and refreshes the index.
// Locked fields keep presenting their frozen snapshots.
func (s *MetadataService) SaveAgentMetadata(ctx context.Context, meta *domain.AgentMetadata) error {
	if _, err := s.store.GetAudiobook(ctx, meta.AudiobookID); err != nil {
		return err
	}
	if err := s.store.SaveAgentMetadata(ctx, meta); err != nil {
		return err
	}

	resolution, err := s.resolve(ctx, meta.AudiobookID)
	if err != nil {
		return err
	}
	s.reindex(ctx, meta.AudiobookID, resolution)
	return nil
}

func (s *MetadataService) reindex(ctx context.Context, audiobookID string, resolution *metadata.Resolution) {
	if s.indexer == nil {
		return
	}

	book, err := s.store.GetAudiobook(ctx, audiobookID)
	if err != nil {
		s.logger.Warn("failed to load audiobook for reindex", "audiobook_id", audiobookID, "error", err)
		return
	}

	doc := &search.Document{
		ID:        audiobookID,
		LibraryID: book.LibraryID,
		Title:     resolution.EffectiveValue(domain.FieldTitle),
		Author:    resolution.EffectiveValue(domain.FieldAuthor),
		Narrator:  resolution.EffectiveValue(domain.FieldNarrator),
		Series:    resolution.EffectiveValue(domain.FieldSeries),
	}
	if err := s.indexer.IndexDocument(doc); err != nil {
		s.logger.Warn("failed to reindex audiobook", "audiobook_id", audiobookID, "error", err)
	}
}
