package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audiofolio/folio-server/internal/config"
	"github.com/audiofolio/folio-server/internal/scanner"
	"github.com/audiofolio/folio-server/internal/search"
	"github.com/audiofolio/folio-server/internal/service"
	"github.com/audiofolio/folio-server/internal/store/sqlite"
)

// testServer wraps the API server with a humatest client.
type testServer struct {
	*Server
	api humatest.TestAPI
}

func setupTestServer(t *testing.T) *testServer {
	return setupTestServerWithConfig(t, testConfig())
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Name: "Folio Test"},
		// generous trigger budget so ordinary tests never trip it
		Scan: config.ScanConfig{TriggerRPS: 100, TriggerBurst: 100},
	}
}

func setupTestServerWithConfig(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dataDir := t.TempDir()

	st, err := sqlite.Open(filepath.Join(dataDir, "folio.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	index, err := search.NewIndex(search.Options{DataPath: dataDir, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	discoverer := scanner.NewDiscoverer(nil, logger)
	metadataService := service.NewMetadataService(st, index, logger)

	services := &Services{
		Library:  service.NewLibraryService(st, discoverer, index, logger),
		Import:   service.NewImportService(st, nil, index, logger),
		Metadata: metadataService,
		Search:   service.NewSearchService(st, index, metadataService, logger),
		Browse:   service.NewBrowseService(st, logger),
	}

	s := NewServer(cfg, services, logger)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.api),
	}
}

func writeAudioFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("not real audio"), 0o644))
}

// createLibraryWithRoot registers root as a library path assigned to a
// new library and returns both IDs.
func (ts *testServer) createLibraryWithRoot(t *testing.T, root string) (libraryID, directoryID string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/directories", map[string]any{
		"path":    root,
		"enabled": true,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var dir DirectoryResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &dir))

	resp = ts.api.Post("/api/v1/libraries", map[string]any{
		"name":          "Main",
		"type":          "audiobooks",
		"directory_ids": []string{dir.ID},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var lib LibraryResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &lib))

	return lib.ID, dir.ID
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	assert.Equal(t, http.StatusOK, resp.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Contains(t, health.Components, "database")
	assert.Contains(t, health.Components, "search")
}

func TestCreateAndListLibraries(t *testing.T) {
	ts := setupTestServer(t)
	libraryID, directoryID := ts.createLibraryWithRoot(t, t.TempDir())

	resp := ts.api.Get("/api/v1/libraries")
	require.Equal(t, http.StatusOK, resp.Code)

	var list ListLibrariesResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Len(t, list.Libraries, 1)
	assert.Equal(t, libraryID, list.Libraries[0].ID)
	require.Len(t, list.Libraries[0].Directories, 1)
	assert.Equal(t, directoryID, list.Libraries[0].Directories[0].ID)
}

func TestCreateLibrary_ValidationError(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/libraries", map[string]any{
		"name": "",
		"type": "audiobooks",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetLibrary_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/libraries/lib_nope")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestScanLibraryEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	root := t.TempDir()
	writeAudioFile(t, filepath.Join(root, "Jane Doe - My Book", "ch1.mp3"))
	libraryID, _ := ts.createLibraryWithRoot(t, root)

	resp := ts.api.Post("/api/v1/libraries/" + libraryID + "/scan")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var result map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	assert.Equal(t, float64(1), result["total_new_books"])

	// second scan over the unchanged tree registers nothing new
	resp = ts.api.Post("/api/v1/libraries/" + libraryID + "/scan")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	assert.Equal(t, float64(0), result["total_new_books"])
}

func TestListAudiobooksAfterScan(t *testing.T) {
	ts := setupTestServer(t)
	root := t.TempDir()
	writeAudioFile(t, filepath.Join(root, "BookA", "ch1.mp3"))
	writeAudioFile(t, filepath.Join(root, "BookB", "ch1.mp3"))
	libraryID, _ := ts.createLibraryWithRoot(t, root)

	resp := ts.api.Post("/api/v1/libraries/" + libraryID + "/scan")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/audiobooks?library_id=" + libraryID)
	require.Equal(t, http.StatusOK, resp.Code)

	var list ListAudiobooksResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	assert.Len(t, list.Audiobooks, 2)
}

func TestImportEndpoint_PartialJob(t *testing.T) {
	ts := setupTestServer(t)
	destRoot := t.TempDir()
	ts.createLibraryWithRoot(t, destRoot)

	srcRoot := t.TempDir()
	writeAudioFile(t, filepath.Join(srcRoot, "Jane Doe - My Book", "ch1.mp3"))
	require.NoError(t, os.MkdirAll(filepath.Join(srcRoot, "NoAudio"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(srcRoot, "NoAudio", "notes.txt"), []byte("x"), 0o644))

	resp := ts.api.Put("/api/v1/import/settings", map[string]any{
		"destination_template": "{author}/{title}",
		"destination_root":     destRoot,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Post("/api/v1/import/folders", map[string]any{
		"name":    "Inbox",
		"path":    srcRoot,
		"enabled": true,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var folder ImportFolderResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &folder))

	resp = ts.api.Post("/api/v1/import/folders/"+folder.ID+"/import", map[string]any{
		"selections": []string{"Jane Doe - My Book", "NoAudio"},
	})
	// partial failure still returns 200; the status field carries it
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var job map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &job))
	assert.Equal(t, "partial", job["status"])
	assert.Len(t, job["imported_books"], 1)
	assert.Len(t, job["errors"], 1)
}

func TestImportEndpoint_DisabledFolder(t *testing.T) {
	ts := setupTestServer(t)
	destRoot := t.TempDir()
	ts.createLibraryWithRoot(t, destRoot)

	resp := ts.api.Put("/api/v1/import/settings", map[string]any{
		"destination_template": "{author}/{title}",
		"destination_root":     destRoot,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/import/folders", map[string]any{
		"name":    "Off",
		"path":    t.TempDir(),
		"enabled": false,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var folder ImportFolderResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &folder))

	resp = ts.api.Post("/api/v1/import/folders/"+folder.ID+"/import", map[string]any{
		"selections": []string{"anything"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestMetadataRoundTrip(t *testing.T) {
	ts := setupTestServer(t)
	root := t.TempDir()
	writeAudioFile(t, filepath.Join(root, "Jane Doe - My Book", "ch1.mp3"))
	libraryID, _ := ts.createLibraryWithRoot(t, root)

	resp := ts.api.Post("/api/v1/libraries/" + libraryID + "/scan")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/audiobooks?library_id=" + libraryID)
	require.Equal(t, http.StatusOK, resp.Code)
	var list ListAudiobooksResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Len(t, list.Audiobooks, 1)
	bookID := list.Audiobooks[0].ID

	resp = ts.api.Put("/api/v1/audiobooks/"+bookID+"/metadata/overrides", map[string]any{
		"overrides": map[string]any{
			"title": map[string]any{"value": "Corrected Title"},
		},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/audiobooks/" + bookID + "/metadata")
	require.Equal(t, http.StatusOK, resp.Code)

	var effective struct {
		Fields map[string]struct {
			Value  string `json:"value"`
			Source string `json:"source"`
			Locked bool   `json:"locked"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &effective))
	assert.Equal(t, "Corrected Title", effective.Fields["title"].Value)
	assert.Equal(t, "custom", effective.Fields["title"].Source)
	assert.True(t, effective.Fields["title"].Locked)
}

func TestMetadataSave_UnknownField(t *testing.T) {
	ts := setupTestServer(t)
	root := t.TempDir()
	writeAudioFile(t, filepath.Join(root, "Book", "ch1.mp3"))
	libraryID, _ := ts.createLibraryWithRoot(t, root)

	resp := ts.api.Post("/api/v1/libraries/" + libraryID + "/scan")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/audiobooks?library_id=" + libraryID)
	var list ListAudiobooksResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Len(t, list.Audiobooks, 1)

	resp = ts.api.Put("/api/v1/audiobooks/"+list.Audiobooks[0].ID+"/metadata/overrides", map[string]any{
		"overrides": map[string]any{
			"genre": map[string]any{"locked": true},
		},
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSearchEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	root := t.TempDir()
	writeAudioFile(t, filepath.Join(root, "Jane Doe - My Book", "ch1.mp3"))
	libraryID, _ := ts.createLibraryWithRoot(t, root)

	resp := ts.api.Post("/api/v1/libraries/" + libraryID + "/scan")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/search?q=my+book")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var result search.Result
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "My Book", result.Hits[0].Title)
}

func TestBrowseDirectoryEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	root := t.TempDir()
	writeAudioFile(t, filepath.Join(root, "BookA", "ch1.mp3"))
	_, directoryID := ts.createLibraryWithRoot(t, root)

	resp := ts.api.Get("/api/v1/directories/" + directoryID + "/browse")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var listing service.BrowseListing
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &listing))
	require.Len(t, listing.Entries, 1)
	assert.Equal(t, "BookA", listing.Entries[0].Name)
	assert.True(t, listing.Entries[0].IsDir)

	// escaping the root is rejected
	resp = ts.api.Get("/api/v1/directories/" + directoryID + "/browse?path=../outside")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestScanTrigger_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.Scan.TriggerRPS = 0.01
	cfg.Scan.TriggerBurst = 1
	ts := setupTestServerWithConfig(t, cfg)

	libraryID, _ := ts.createLibraryWithRoot(t, t.TempDir())

	resp := ts.api.Post("/api/v1/libraries/" + libraryID + "/scan")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/libraries/" + libraryID + "/scan")
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
}
