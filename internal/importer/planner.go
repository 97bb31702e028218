// Package importer plans and executes the transfer of staged audio
// content into the managed library tree.
package importer

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/audiofolio/folio-server/internal/scanner"
)

const (
	unknownAuthor = "Unknown Author"
	unknownTitle  = "Unknown Title"

	// TemplateFlat disables path synthesis: the source keeps its
	// original name directly under the destination root.
	TemplateFlat = "flat"
)

// Metadata is the naive metadata guessed from a staged entry's name.
// It seeds the destination template and the initial audiobook record;
// agent matching is expected to correct it later.
type Metadata struct {
	Title        string
	Author       string
	Series       string
	SeriesNumber string
	Narrator     string
	Year         string
	OriginalName string
}

// ExtractMetadata guesses author and title from the base name of a
// staged file or folder. "Author - Title" wins over "Author_Title";
// anything else becomes the title with an unknown author.
func ExtractMetadata(path string) Metadata {
	base := filepath.Base(path)
	name := base
	if ext := filepath.Ext(base); scanner.IsAudioExt(ext) {
		name = strings.TrimSuffix(base, ext)
	}

	meta := Metadata{
		Title:        name,
		Author:       unknownAuthor,
		OriginalName: base,
	}

	switch {
	case strings.Contains(name, " - "):
		parts := strings.SplitN(name, " - ", 2)
		meta.Author = strings.TrimSpace(parts[0])
		meta.Title = strings.TrimSpace(parts[1])
	case strings.Contains(name, "_"):
		parts := strings.Split(name, "_")
		meta.Author = strings.TrimSpace(parts[0])
		meta.Title = strings.TrimSpace(strings.Join(parts[1:], " "))
	}

	return meta
}

var dashRuns = regexp.MustCompile(`-{2,}`)

var hostileChars = strings.NewReplacer(
	"/", "-",
	`\`, "-",
	":", "-",
	"*", "-",
	"?", "-",
	`"`, "-",
	"<", "-",
	">", "-",
	"|", "-",
)

// sanitizeComponent makes a metadata value safe to use as a path
// component. Hostile characters become dashes and dash runs collapse
// so substitution never produces "--".
func sanitizeComponent(s string) string {
	s = hostileChars.Replace(s)
	s = dashRuns.ReplaceAllString(s, "-")
	return strings.Trim(strings.TrimSpace(s), "-")
}

// BuildDestination expands a destination template against extracted
// metadata and joins the result onto the destination root. The "flat"
// template keeps the original name verbatim.
func BuildDestination(meta Metadata, template, destinationRoot string) string {
	if template == TemplateFlat {
		return filepath.Join(destinationRoot, meta.OriginalName)
	}

	author := meta.Author
	if author == "" {
		author = unknownAuthor
	}
	title := meta.Title
	if title == "" {
		title = unknownTitle
	}

	rel := strings.NewReplacer(
		"{author}", sanitizeComponent(author),
		"{title}", sanitizeComponent(title),
		"{series}", sanitizeComponent(meta.Series),
		"{narrator}", sanitizeComponent(meta.Narrator),
		"{series_num}", meta.SeriesNumber,
		"{year}", meta.Year,
	).Replace(template)

	for strings.Contains(rel, "//") {
		rel = strings.ReplaceAll(rel, "//", "/")
	}
	rel = strings.Trim(rel, "/")

	return filepath.Join(destinationRoot, rel)
}
