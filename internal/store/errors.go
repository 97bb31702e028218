package store

import (
	apperrors "github.com/audiofolio/folio-server/internal/errors"
)

// Sentinel errors returned by Store implementations. These alias the
// application error taxonomy so callers can match either way.
var (
	ErrNotFound      = apperrors.ErrNotFound
	ErrAlreadyExists = apperrors.ErrAlreadyExists
)
