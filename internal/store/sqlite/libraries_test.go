package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/audiofolio/folio-server/internal/store"
)

func TestCreateAndGetLibrary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lib := newTestLibrary(t, s)
	dir := newTestDirectory(t, s, "/media/audiobooks", lib.ID)

	got, err := s.GetLibrary(ctx, lib.ID)
	if err != nil {
		t.Fatalf("get library: %v", err)
	}
	if got.Name != lib.Name {
		t.Errorf("name = %q, want %q", got.Name, lib.Name)
	}
	if len(got.Directories) != 1 || got.Directories[0].ID != dir.ID {
		t.Errorf("expected 1 linked directory, got %+v", got.Directories)
	}
}

func TestGetLibrary_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetLibrary(context.Background(), "lib-missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateLibrary_DuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lib := newTestLibrary(t, s)
	err := s.CreateLibrary(ctx, lib, nil)
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestListLibraries(t *testing.T) {
	s := newTestStore(t)

	newTestLibrary(t, s)
	newTestLibrary(t, s)

	libs, err := s.ListLibraries(context.Background())
	if err != nil {
		t.Fatalf("list libraries: %v", err)
	}
	if len(libs) != 2 {
		t.Errorf("expected 2 libraries, got %d", len(libs))
	}
}

func TestSetDirectoryScannedAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	dir := newTestDirectory(t, s, "/media/audiobooks")
	if dir.LastScannedAt != nil {
		t.Fatal("new directory should have no scan timestamp")
	}

	at := time.Now()
	if err := s.SetDirectoryScannedAt(ctx, dir.ID, at); err != nil {
		t.Fatalf("set scanned at: %v", err)
	}

	got, err := s.GetDirectory(ctx, dir.ID)
	if err != nil {
		t.Fatalf("get directory: %v", err)
	}
	if got.LastScannedAt == nil {
		t.Fatal("expected scan timestamp")
	}
	if !got.LastScannedAt.Equal(at.UTC()) {
		t.Errorf("scan timestamp = %v, want %v", got.LastScannedAt, at.UTC())
	}

	if err := s.SetDirectoryScannedAt(ctx, "dir-missing", at); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDirectorySharedAcrossLibraries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lib1 := newTestLibrary(t, s)
	lib2 := newTestLibrary(t, s)
	dir := newTestDirectory(t, s, "/media/shared", lib1.ID, lib2.ID)

	got, err := s.GetDirectory(ctx, dir.ID)
	if err != nil {
		t.Fatalf("get directory: %v", err)
	}
	if len(got.Libraries) != 2 {
		t.Errorf("expected 2 linked libraries, got %d", len(got.Libraries))
	}
}

func TestCreateDirectory_DuplicatePath(t *testing.T) {
	s := newTestStore(t)

	newTestDirectory(t, s, "/media/audiobooks")

	dir := newTestDirectory(t, s, "/media/other")
	dir.Path = "/media/audiobooks"
	dir.ID = dir.ID + "x"
	err := s.CreateDirectory(context.Background(), dir, nil)
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}
