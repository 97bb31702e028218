// Package pathutil confines filesystem operations to a configured root.
//
// Every browse and import endpoint takes client-supplied relative paths; none
// of them may reach outside the library or import-folder root they were issued
// against. ResolveWithinRoot is the single chokepoint for that check.
package pathutil

import (
	"path/filepath"
	"strings"

	"github.com/audiofolio/folio-server/internal/errors"
)

// ResolveWithinRoot joins child onto root and verifies the result stays
// inside root. Returns the cleaned absolute path and the path relative to
// root. An empty or "." child resolves to the root itself.
//
// Fails with errors.ErrPathEscapesRoot when the relative computation begins
// with ".." or equals "..".
func ResolveWithinRoot(root, child string) (absPath, relPath string, err error) {
	cleanRoot := filepath.Clean(root)

	if child == "" || child == "." {
		return cleanRoot, ".", nil
	}

	abs := filepath.Clean(filepath.Join(cleanRoot, child))

	rel, relErr := filepath.Rel(cleanRoot, abs)
	if relErr != nil {
		return "", "", errors.ErrPathEscapesRoot.WithCause(relErr)
	}

	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", errors.PathEscapesRoot("path escapes root: " + child)
	}

	return abs, rel, nil
}

// Contains reports whether path lies inside (or equals) root. Both paths are
// cleaned before comparison; no symlink resolution is attempted.
func Contains(root, path string) bool {
	cleanRoot := filepath.Clean(root)
	cleanPath := filepath.Clean(path)
	return cleanPath == cleanRoot || strings.HasPrefix(cleanPath, cleanRoot+string(filepath.Separator))
}
