package domain

import "time"

// DirectoryScan reports the outcome for one directory within a library scan.
type DirectoryScan struct {
	DirectoryID string `json:"directory_id"`
	Path        string `json:"path"`
	BooksFound  int    `json:"books_found"`
	NewBooks    int    `json:"new_books"`
	// Error is set when the directory could not be walked at all. The scan
	// continues with the remaining directories.
	Error string `json:"error,omitempty"`
}

// ScanResult is the report for one ScanLibrary invocation. Scanning is
// strictly additive: existing audiobooks are never mutated or removed.
type ScanResult struct {
	LibraryID       string          `json:"library_id"`
	LibraryName     string          `json:"library_name"`
	Directories     []DirectoryScan `json:"directories"`
	TotalBooksFound int             `json:"total_books_found"`
	TotalNewBooks   int             `json:"total_new_books"`
	Duration        time.Duration   `json:"duration"`
	// Error is set when the whole library failed (unknown ID, store failure).
	// Only used by ScanAllLibraries, which fails per library independently.
	Error string `json:"error,omitempty"`
}
