package pathutil

import (
	"testing"

	"github.com/audiofolio/folio-server/internal/errors"
)

func TestResolveWithinRoot(t *testing.T) {
	tests := []struct {
		name    string
		root    string
		child   string
		wantAbs string
		wantRel string
		wantErr bool
	}{
		{"empty child is root", "/library", "", "/library", ".", false},
		{"dot child is root", "/library", ".", "/library", ".", false},
		{"simple child", "/library", "Author/Book", "/library/Author/Book", "Author/Book", false},
		{"cleans inner dots", "/library", "Author/./Book", "/library/Author/Book", "Author/Book", false},
		{"dotdot inside stays inside", "/library", "Author/../Other", "/library/Other", "Other", false},
		{"escapes with dotdot", "/library", "../../etc", "", "", true},
		{"escapes exactly one level", "/library", "..", "", "", true},
		{"sneaky escape through child", "/library", "Author/../../etc/passwd", "", "", true},
		{"trailing slash root", "/library/", "Book", "/library/Book", "Book", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			abs, rel, err := ResolveWithinRoot(tt.root, tt.child)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got abs=%q rel=%q", abs, rel)
				}
				if !errors.Is(err, errors.ErrPathEscapesRoot) {
					t.Errorf("expected ErrPathEscapesRoot, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if abs != tt.wantAbs {
				t.Errorf("abs: got %q, want %q", abs, tt.wantAbs)
			}
			if rel != tt.wantRel {
				t.Errorf("rel: got %q, want %q", rel, tt.wantRel)
			}
		})
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		root string
		path string
		want bool
	}{
		{"/media/books", "/media/books/Author/Book", true},
		{"/media/books", "/media/books", true},
		{"/media/books", "/media/booksmore/x", false},
		{"/media/books", "/media", false},
		{"/media/books", "/media/books/../elsewhere", false},
	}

	for _, tt := range tests {
		if got := Contains(tt.root, tt.path); got != tt.want {
			t.Errorf("Contains(%q, %q): got %v, want %v", tt.root, tt.path, got, tt.want)
		}
	}
}
