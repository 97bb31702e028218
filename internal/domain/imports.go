package domain

import "time"

// ImportFolder is a staging root users drop files into before importing them
// into a managed Directory. Not owned by any Library.
type ImportFolder struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Path    string `json:"path"`
	Enabled bool   `json:"enabled"`
	// HasNewFiles is set by the folder watcher when something arrived since
	// the last import from this folder. In-memory only, never persisted.
	HasNewFiles bool      `json:"has_new_files"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ImportSettings holds the active destination template configuration.
// Singleton: exactly one row exists.
type ImportSettings struct {
	// DestinationTemplate is either the literal "flat" or a token template
	// like "{author}/{title}". See importer.BuildDestination.
	DestinationTemplate string `json:"destination_template"`
	// DestinationRoot is the managed tree imports are copied into. It should
	// lie inside a configured Directory so imported books get registered.
	DestinationRoot string    `json:"destination_root"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ImportJobStatus summarizes how an import run went.
type ImportJobStatus string

// Job statuses. Partial failures still return HTTP 200 with the status field.
const (
	ImportStatusCompleted ImportJobStatus = "completed"
	ImportStatusPartial   ImportJobStatus = "partial"
	ImportStatusFailed    ImportJobStatus = "failed"
)

// ImportError records one failed selection within a job.
type ImportError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ImportJob is the report for one ImportSelection invocation.
type ImportJob struct {
	Status        ImportJobStatus `json:"status"`
	SourcePaths   []string        `json:"source_paths"`
	ImportedBooks []Audiobook     `json:"imported_books"`
	Errors        []ImportError   `json:"errors"`
	StartedAt     time.Time       `json:"started_at"`
	CompletedAt   time.Time       `json:"completed_at"`
}

// Resolve computes the job status from its outcome counts.
func (j *ImportJob) Resolve() {
	switch {
	case len(j.Errors) == 0:
		j.Status = ImportStatusCompleted
	case len(j.ImportedBooks) > 0:
		j.Status = ImportStatusPartial
	default:
		j.Status = ImportStatusFailed
	}
}
