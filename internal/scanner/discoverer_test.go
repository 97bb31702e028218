package scanner

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("audio"), 0644); err != nil {
		t.Fatal(err)
	}
}

func assetPaths(discoveries []Discovery) []string {
	paths := make([]string, 0, len(discoveries))
	for _, d := range discoveries {
		paths = append(paths, d.AssetPath)
	}
	sort.Strings(paths)
	return paths
}

func TestDiscover_EmptyRoot(t *testing.T) {
	root := t.TempDir()

	d := NewDiscoverer(nil, testLogger())
	discoveries, err := d.Discover(context.Background(), root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(discoveries) != 0 {
		t.Errorf("expected 0 discoveries, got %d", len(discoveries))
	}
}

func TestDiscover_LooseFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "standalone.m4b"))
	writeFile(t, filepath.Join(root, "notes.txt"))

	d := NewDiscoverer(nil, testLogger())
	discoveries, err := d.Discover(context.Background(), root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(discoveries) != 1 {
		t.Fatalf("expected 1 discovery, got %d", len(discoveries))
	}
	if got := discoveries[0].AssetPath; got != filepath.Join(root, "standalone.m4b") {
		t.Errorf("unexpected asset path: %s", got)
	}
	if len(discoveries[0].MediaFiles) != 1 {
		t.Fatalf("expected 1 media file, got %d", len(discoveries[0].MediaFiles))
	}
	if got := discoveries[0].MediaFiles[0].Filename; got != "standalone.m4b" {
		t.Errorf("unexpected filename: %s", got)
	}
}

func TestDiscover_FolderWithAudio(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "BookA", "ch1.mp3"))
	writeFile(t, filepath.Join(root, "BookA", "ch2.mp3"))
	writeFile(t, filepath.Join(root, "BookA", "cover.jpg"))

	d := NewDiscoverer(nil, testLogger())
	discoveries, err := d.Discover(context.Background(), root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(discoveries) != 1 {
		t.Fatalf("expected 1 discovery, got %d", len(discoveries))
	}
	if got := discoveries[0].AssetPath; got != filepath.Join(root, "BookA") {
		t.Errorf("unexpected asset path: %s", got)
	}
	if len(discoveries[0].MediaFiles) != 2 {
		t.Errorf("expected 2 media files, got %d", len(discoveries[0].MediaFiles))
	}
	// Files come back sorted by name.
	if discoveries[0].MediaFiles[0].Filename != "ch1.mp3" {
		t.Errorf("unexpected first file: %s", discoveries[0].MediaFiles[0].Filename)
	}
}

func TestDiscover_NestedAudioSuppressed(t *testing.T) {
	// Once a folder qualifies as a book, nothing below it is considered.
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Series", "book1.mp3"))
	writeFile(t, filepath.Join(root, "Series", "Sub", "book2.mp3"))

	d := NewDiscoverer(nil, testLogger())
	discoveries, err := d.Discover(context.Background(), root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(discoveries) != 1 {
		t.Fatalf("expected 1 discovery, got %d", len(discoveries))
	}
	if got := discoveries[0].AssetPath; got != filepath.Join(root, "Series") {
		t.Errorf("unexpected asset path: %s", got)
	}
}

func TestDiscover_DeepNesting(t *testing.T) {
	// Audio three levels down: the folder that directly holds the audio
	// is the book, not its ancestors.
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Author", "Series", "Book1", "ch1.mp3"))

	d := NewDiscoverer(nil, testLogger())
	discoveries, err := d.Discover(context.Background(), root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(discoveries) != 1 {
		t.Fatalf("expected 1 discovery, got %d", len(discoveries))
	}
	if got := discoveries[0].AssetPath; got != filepath.Join(root, "Author", "Series", "Book1") {
		t.Errorf("unexpected asset path: %s", got)
	}
}

func TestDiscover_SiblingBranches(t *testing.T) {
	// Pruning stops one branch, not the whole walk.
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Author", "Book1", "ch1.mp3"))
	writeFile(t, filepath.Join(root, "Author", "Book2", "ch1.mp3"))
	writeFile(t, filepath.Join(root, "loose.flac"))

	d := NewDiscoverer(nil, testLogger())
	discoveries, err := d.Discover(context.Background(), root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		filepath.Join(root, "Author", "Book1"),
		filepath.Join(root, "Author", "Book2"),
		filepath.Join(root, "loose.flac"),
	}
	got := assetPaths(discoveries)
	if len(got) != len(want) {
		t.Fatalf("expected %d discoveries, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("asset path %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestDiscover_BranchWithoutAudio(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Empty", "Deep", "readme.txt"))

	d := NewDiscoverer(nil, testLogger())
	discoveries, err := d.Discover(context.Background(), root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(discoveries) != 0 {
		t.Errorf("expected 0 discoveries, got %d", len(discoveries))
	}
}

func TestDiscover_HiddenEntriesSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".hidden.mp3"))
	writeFile(t, filepath.Join(root, ".trash", "old.mp3"))
	writeFile(t, filepath.Join(root, "Book", "ch1.mp3"))

	d := NewDiscoverer(nil, testLogger())
	discoveries, err := d.Discover(context.Background(), root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(discoveries) != 1 {
		t.Fatalf("expected 1 discovery, got %d", len(discoveries))
	}
	if got := discoveries[0].AssetPath; got != filepath.Join(root, "Book") {
		t.Errorf("unexpected asset path: %s", got)
	}
}

func TestDiscover_MissingRoot(t *testing.T) {
	d := NewDiscoverer(nil, testLogger())
	_, err := d.Discover(context.Background(), filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestHasAudio(t *testing.T) {
	root := t.TempDir()
	if HasAudio(root) {
		t.Error("empty directory should not report audio")
	}
	writeFile(t, filepath.Join(root, "ch1.ogg"))
	if !HasAudio(root) {
		t.Error("directory with audio should report audio")
	}
}
