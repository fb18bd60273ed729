package v1

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/vidfmt/internal/mappings"
	"github.com/vmunix/vidfmt/internal/migrations"
	"github.com/vmunix/vidfmt/internal/store"
	"github.com/vmunix/vidfmt/pkg/filename"
	"github.com/vmunix/vidfmt/pkg/sites"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err, "open db")
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Apply(context.Background(), db), "apply schema")
	return db
}

type testEnv struct {
	srv     *Server
	handler http.Handler
	svc     *mappings.Service
	local   *store.SQLiteStore
}

func setupServer(t *testing.T, deps ServerDeps) *testEnv {
	t.Helper()
	local := store.NewSQLiteStore(setupTestDB(t))
	svc := mappings.New(sites.New(), local, nil, testLogger())

	deps.Mappings = svc
	deps.Logger = testLogger()
	srv, err := New(deps)
	require.NoError(t, err)
	return &testEnv{srv: srv, handler: srv.Handler(), svc: svc, local: local}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func TestNew_RequiresMappings(t *testing.T) {
	_, err := New(ServerDeps{})
	assert.Error(t, err)
}

func TestFormat_OK(t *testing.T) {
	env := setupServer(t, ServerDeps{})

	w := env.do(t, http.MethodPost, "/api/v1/format", formatRequest{Input: "anilos.01.02.20.jane.doe.1080p, badname.mp4"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp formatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "[Anilos] - 01.02.20 - Jane Doe 1080p.mp4\n[Error] Invalid filename format: badname.mp4", resp.Output)
	require.Len(t, resp.Lines, 2)
	assert.True(t, resp.Lines[0].Valid)
	assert.False(t, resp.Lines[1].Valid)
	assert.Contains(t, w.Body.String(), `"shape":"traditional_dot"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestFormat_EmptyInput(t *testing.T) {
	env := setupServer(t, ServerDeps{})

	w := env.do(t, http.MethodPost, "/api/v1/format", formatRequest{Input: "  ,\n "})
	require.Equal(t, http.StatusOK, w.Code)

	var resp formatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, filename.NoValidInput, resp.Output)
	assert.Empty(t, resp.Lines)
}

func TestFormat_InvalidJSON(t *testing.T) {
	env := setupServer(t, ServerDeps{})

	w := env.do(t, http.MethodPost, "/api/v1/format", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_REQUEST")
}

func TestFormat_EscalationRoundTrip(t *testing.T) {
	env := setupServer(t, ServerDeps{})
	input := "julesjordan.20.01.01.jane.doe"

	w := env.do(t, http.MethodPost, "/api/v1/format", formatRequest{Input: input})
	require.Equal(t, http.StatusConflict, w.Code)

	var conflict unmappedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conflict))
	assert.Equal(t, "UNMAPPED_SITES", conflict.Code)
	assert.Equal(t, []string{"julesjordan"}, conflict.Unmapped)
	assert.Equal(t, input, conflict.Input)
	assert.Contains(t, conflict.Suggestions["julesjordan"], "julesjorder")

	w = env.do(t, http.MethodPost, "/api/v1/sites/supply", supplyRequest{Mappings: map[string]string{"julesjordan": "JulesJordan"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/format", formatRequest{Input: conflict.Input})
	require.Equal(t, http.StatusOK, w.Code)
	var resp formatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "[JulesJordan] - 20.01.01 - Jane Doe 1080p.mp4", resp.Output)

	saved, err := env.local.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "JulesJordan", saved["julesjordan"], "supplied name persisted")
}

func TestFormat_AllowUnmapped(t *testing.T) {
	env := setupServer(t, ServerDeps{})

	w := env.do(t, http.MethodPost, "/api/v1/format", formatRequest{Input: "newsite.20.01.01.jane", AllowUnmapped: true})
	require.Equal(t, http.StatusOK, w.Code)

	var resp formatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "[Newsite] - 20.01.01 - Jane 1080p.mp4", resp.Output)
	assert.Equal(t, []string{"newsite"}, resp.Unmapped)
}

func TestSupply_Validation(t *testing.T) {
	env := setupServer(t, ServerDeps{})

	w := env.do(t, http.MethodPost, "/api/v1/sites/supply", supplyRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/sites/supply", supplyRequest{Mappings: map[string]string{"newsite": " "}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INCOMPLETE_MAPPING")
}

func TestMappings_Document(t *testing.T) {
	env := setupServer(t, ServerDeps{})

	w := env.do(t, http.MethodPost, "/api/v1/mappings", map[string]string{"newsite": "NewSite", "anilos": "Anilos"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true, "message": "Mappings saved"}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/v1/mappings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true, "data": {"newsite": "NewSite"}}`, w.Body.String(), "built-in duplicates are not custom")

	w = env.do(t, http.MethodGet, "/api/v1/mappings?all=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var doc struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "NewSite", doc.Data["newsite"])
	assert.Equal(t, "EvilAngel", doc.Data["evilangel"])

	// Posting again replaces the whole custom set.
	w = env.do(t, http.MethodPost, "/api/v1/mappings", map[string]string{"other": "Other"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]string{"other": "Other"}, env.svc.Export(true))
}

func TestMappings_Malformed(t *testing.T) {
	env := setupServer(t, ServerDeps{})

	for _, body := range []string{`["a"]`, `{"a": 1}`, `{"a": {"b": "c"}}`, `nope`} {
		w := env.do(t, http.MethodPost, "/api/v1/mappings", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)

		var resp documentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.NotEmpty(t, resp.Message)
	}
}

func TestMappings_MethodNotAllowed(t *testing.T) {
	env := setupServer(t, ServerDeps{})

	w := env.do(t, http.MethodDelete, "/api/v1/mappings", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestListSites(t *testing.T) {
	env := setupServer(t, ServerDeps{})
	env.svc.Dictionary().MergeCustom(map[string]string{"aaa": "AAA"})

	w := env.do(t, http.MethodGet, "/api/v1/sites", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp listSitesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, len(sites.Builtin())+1, resp.Total)
	assert.Equal(t, sites.Entry{Key: "aaa", Name: "AAA"}, resp.Sites[0])
}

func TestStatus(t *testing.T) {
	env := setupServer(t, ServerDeps{Version: "1.2.3", APIKey: "secret"})
	env.svc.Dictionary().MergeCustom(map[string]string{"newsite": "NewSite"})

	w := env.do(t, http.MethodGet, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, w.Code, "status is not behind the API key")

	var resp statusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, mappings.StatusLocal, resp.Persistence)
	assert.Equal(t, 1, resp.Custom)
	assert.Equal(t, resp.Builtin+1, resp.Total)
}

func TestAPIKey(t *testing.T) {
	env := setupServer(t, ServerDeps{APIKey: "secret"})

	w := env.do(t, http.MethodGet, "/api/v1/sites", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")

	for _, key := range []string{"wrong", "secre", "secret-extra", "SECRET"} {
		w = env.do(t, http.MethodGet, "/api/v1/sites", nil, "X-Api-Key", key)
		assert.Equal(t, http.StatusUnauthorized, w.Code, key)
	}

	w = env.do(t, http.MethodGet, "/api/v1/sites", nil, "X-Api-Key", "secret")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/sites?apikey=secret", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogRequests_KeepsRequestID(t *testing.T) {
	env := setupServer(t, ServerDeps{})

	w := env.do(t, http.MethodGet, "/api/v1/status", nil, "X-Request-Id", "abc-123")
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-Id"))
}
