package server_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxnote/voxnote/internal/config"
	"github.com/voxnote/voxnote/internal/note"
	"github.com/voxnote/voxnote/internal/server"
	"github.com/voxnote/voxnote/internal/store"
)

func newTestServer(t *testing.T) (*server.Server, *note.Repository) {
	t.Helper()

	cfg := &config.Config{
		Env:        "test",
		Port:       "8080",
		Provider:   config.ProviderGemini,
		HSTSMaxAge: 31536000,
		CSPMode:    "relaxed",
		LogLevel:   "info",
	}

	// Create a test logger (only show errors during tests)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	fileStore, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	repo := note.NewRepository(fileStore)
	repo.Load()

	return server.New(cfg, logger, repo, t.TempDir()), repo
}

func do(t *testing.T, srv *server.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.Contains(t, w.Body.String(), "voxnote")
}

func TestListNotes(t *testing.T) {
	srv, repo := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/api/v1/notes", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Notes   []note.Note `json:"notes"`
		Current string      `json:"current"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// A fresh store starts with one synthesized note.
	require.Len(t, resp.Notes, 1)
	assert.Equal(t, repo.Current().ID, resp.Current)
}

func TestCreateAndGetNote(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/v1/notes", "")
	require.Equal(t, http.StatusCreated, w.Code)

	var created note.Note
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)

	w = do(t, srv, http.MethodGet, "/api/v1/notes/"+created.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, http.MethodGet, "/api/v1/notes/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateNote(t *testing.T) {
	srv, repo := newTestServer(t)
	id := repo.Current().ID

	w := do(t, srv, http.MethodPatch, "/api/v1/notes/"+id, `{"title":"Renamed"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var updated note.Note
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Renamed", updated.Title)

	w = do(t, srv, http.MethodPatch, "/api/v1/notes/nope", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, srv, http.MethodPatch, "/api/v1/notes/"+id, `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteNote(t *testing.T) {
	srv, repo := newTestServer(t)
	id := repo.Current().ID

	w := do(t, srv, http.MethodDelete, "/api/v1/notes/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)

	// Deleting the last note synthesizes a replacement.
	assert.Equal(t, 1, repo.Len())
	assert.NotEqual(t, id, repo.Current().ID)

	w = do(t, srv, http.MethodDelete, "/api/v1/notes/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSelectNote(t *testing.T) {
	srv, repo := newTestServer(t)
	first := repo.Current().ID
	second := repo.Create().ID
	require.NotEqual(t, first, second)

	w := do(t, srv, http.MethodPost, "/api/v1/notes/"+first+"/select", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, first, repo.Current().ID)

	w = do(t, srv, http.MethodPost, "/api/v1/notes/nope/select", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportNote(t *testing.T) {
	srv, repo := newTestServer(t)
	id := repo.Current().ID

	// Nothing to export yet.
	w := do(t, srv, http.MethodPost, "/api/v1/notes/"+id+"/export", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	_, err := repo.Update(id, note.Patch{PolishedNote: note.String("# Done\nbody")})
	require.NoError(t, err)

	w = do(t, srv, http.MethodPost, "/api/v1/notes/"+id+"/export", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ".md")
}

func TestClearNotes(t *testing.T) {
	srv, repo := newTestServer(t)
	repo.Create()
	repo.Create()
	require.Equal(t, 3, repo.Len())

	w := do(t, srv, http.MethodDelete, "/api/v1/notes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, repo.Len())
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/health", "")

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
}
