// Package domain contains the core business entities for the Folio audiobook collection.
package domain

import (
	"slices"
	"time"
)

// LibraryType tags a library with the kind of content it presents.
type LibraryType string

// Library types. Only audiobooks get first-class treatment today; the tag
// exists so a podcast library can be added without a schema change.
const (
	LibraryTypeAudiobooks LibraryType = "audiobooks"
	LibraryTypePodcasts   LibraryType = "podcasts"
)

// Library represents a named, user-facing collection of audiobooks backed by
// one or more Directories. Directories are shared: the same filesystem root
// may back several logical libraries.
type Library struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Type     LibraryType    `json:"type"`
	Settings map[string]any `json:"settings,omitempty"`

	// Directories linked through the library_directories join. Populated on
	// reads that request it; nil otherwise.
	Directories []Directory `json:"directories,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EnabledDirectories returns the linked directories that are enabled for scanning.
func (l *Library) EnabledDirectories() []Directory {
	out := make([]Directory, 0, len(l.Directories))
	for _, d := range l.Directories {
		if d.Enabled {
			out = append(out, d)
		}
	}
	return out
}

// HasDirectory reports whether the library is linked to the given directory.
func (l *Library) HasDirectory(directoryID string) bool {
	return slices.ContainsFunc(l.Directories, func(d Directory) bool {
		return d.ID == directoryID
	})
}

// Directory is a physical filesystem root scanned for content. It is a
// distinct entity from Library so one folder can back several collections.
type Directory struct {
	ID            string     `json:"id"`
	Path          string     `json:"path"`
	Enabled       bool       `json:"enabled"`
	LastScannedAt *time.Time `json:"last_scanned_at,omitempty"`

	// Libraries linked through the library_directories join. Populated on
	// reads that request it; nil otherwise.
	Libraries []Library `json:"libraries,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
