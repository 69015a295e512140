package server

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/scoremerge/internal/appcontext"
	"github.com/agentstation/scoremerge/internal/config"
	"github.com/agentstation/scoremerge/internal/server/handlers"
	"github.com/agentstation/scoremerge/internal/server/response"
)

const (
	scoreA = "Id Igreja;Nome Igreja;Score\n10;Alpha;1.000,50\n20;Beta;3\n"
	scoreB = "Id Igreja;Nome Igreja;Score\n10;Alpha;2,5\n"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func zipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "2024-01/score_a.csv", scoreA)
	writeFile(t, root, "2024-01/score_b.csv", scoreB)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "2024-02"), 0o755))

	cfg := DefaultConfig()
	cfg.DataDir = root
	srv, err := New(&appcontext.Mock{}, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, srv.Handler()
}

// envelope decodes a response whose data is of type T.
type envelope[T any] struct {
	Data  T               `json:"data"`
	Error *response.Error `json:"error"`
}

func do[T any](t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, envelope[T]) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env envelope[T]
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t)
	rec, env := do[map[string]any](t, h, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", env.Data["status"])
}

func TestListMonths(t *testing.T) {
	_, h := newTestServer(t)
	rec, env := do[[]handlers.MonthSummary](t, h, httptest.NewRequest(http.MethodGet, "/api/v1/months", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []handlers.MonthSummary{{Month: "2024-01", Files: 2}, {Month: "2024-02", Files: 0}}, env.Data)
}

func TestGetMonth(t *testing.T) {
	_, h := newTestServer(t)

	rec, env := do[handlers.MonthPayload](t, h, httptest.NewRequest(http.MethodGet, "/api/v1/months/2024-01", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Data.Table)
	assert.Equal(t, []string{"a", "b"}, env.Data.Table.Categories)
	require.Len(t, env.Data.Table.Rows, 2)
	assert.Equal(t, "Alpha", env.Data.Table.Rows[0].Name)
	assert.InDelta(t, 1003.0, env.Data.Table.Rows[0].Total, 0.0001)
	assert.Empty(t, env.Data.Issues)

	rec, env = do[handlers.MonthPayload](t, h, httptest.NewRequest(http.MethodGet, "/api/v1/months/2024-01?filter=bet", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.Data.Table.Rows, 1)
	assert.Equal(t, "Beta", env.Data.Table.Rows[0].Name)
	assert.Equal(t, 2, env.Data.Table.Entities)

	rec, env = do[handlers.MonthPayload](t, h, httptest.NewRequest(http.MethodGet, "/api/v1/months/2024-01?top=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, env.Data.Table.Rows, 1)
}

func TestGetMonthErrors(t *testing.T) {
	_, h := newTestServer(t)

	tests := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{"unknown month", "/api/v1/months/1999-01", http.StatusNotFound, "NOT_FOUND"},
		{"negative top", "/api/v1/months/2024-01?top=-1", http.StatusBadRequest, "BAD_REQUEST"},
		{"empty month export", "/api/v1/months/2024-02/export", http.StatusUnprocessableEntity, "UNPROCESSABLE"},
		{"unknown route", "/api/v1/nothing", http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do[any](t, h, httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, tt.status, rec.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestExportMonth(t *testing.T) {
	_, h := newTestServer(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/months/2024-01/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="planilha_unificada_2024-01.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "Alpha")
	assert.Contains(t, rec.Body.String(), "Beta")
}

func TestUploadArchive(t *testing.T) {
	_, h := newTestServer(t)
	data := zipBytes(t, map[string]string{
		"2024-03/score_a.csv": scoreA,
		"2024-03/broken.csv":  "foo;bar\n1;2\n",
	})

	t.Run("raw body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/archives", bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/zip")
		rec, env := do[handlers.RunPayload](t, h, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, env.Data.RunID)
		require.Len(t, env.Data.Months, 1)
		month := env.Data.Months[0]
		assert.Equal(t, "2024-03", month.Month)
		require.NotNil(t, month.Table)
		assert.Len(t, month.Table.Rows, 2)
		require.Len(t, month.Issues, 1)
		assert.Equal(t, "broken.csv", month.Issues[0].File)
	})

	t.Run("multipart", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, err := mw.CreateFormFile("file", "scores.zip")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/archives?top=1", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec, env := do[handlers.RunPayload](t, h, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, env.Data.Months, 1)
		assert.Len(t, env.Data.Months[0].Table.Rows, 1)
		assert.Equal(t, 2, env.Data.Months[0].Table.Entities)
	})

	t.Run("not a zip", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/archives", bytes.NewReader([]byte("plain text")))
		rec, env := do[any](t, h, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.NotNil(t, env.Error)
	})
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	app := &appcontext.Mock{}
	settings := app.Settings()
	settings.Policy = "fractional"
	app.SettingsFunc = func() config.Settings { return settings }

	_, err := New(app, DefaultConfig())
	assert.Error(t, err)
}
