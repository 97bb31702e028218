package service

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/audiofolio/folio-server/internal/store"
	"github.com/audiofolio/folio-server/internal/store/sqlite"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "folio.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// writeAudioFile creates path with throwaway content, making parent
// directories as needed. The content is never decoded in tests; the
// services under test run without a probe.
func writeAudioFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("not real audio"), 0o644))
}
