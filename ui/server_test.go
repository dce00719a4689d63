package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"edascope/adapters/postgres"
	"edascope/adapters/stats/engine"
	"edascope/domain/dataset"
	"edascope/internal"
	"edascope/internal/config"
	"edascope/internal/session"
	"edascope/internal/testkit"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Server.GinMode = "test"
	logger := internal.NewLoggerWithWriter(internal.LogLevelError, io.Discard)
	manager := session.NewManager(engine.NewStatsEngine(engine.DefaultConfig()), logger)
	return NewServer(cfg, manager, append([]Option{WithLogger(logger)}, opts...)...)
}

func uploadBody(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if content != nil {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func do(s *Server, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, s *Server, table *dataset.Table, target string) string {
	t.Helper()
	body, ct := uploadBody(t, table.Name+".csv", testkit.CSV(table), map[string]string{"target": target})
	rec := do(s, http.MethodPost, "/api/v1/sessions", body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Session session.Overview `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Session.SessionID.String()
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthz(t *testing.T) {
	rec := do(newTestServer(t), http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestCreateSession_Upload(t *testing.T) {
	s := newTestServer(t)
	id := createSession(t, s, testkit.ChurnedTable(), "churned")

	rec := do(s, http.MethodGet, "/api/v1/sessions/"+id+"/overview", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	ov := decode(t, rec)
	assert.EqualValues(t, 6, ov["rows"])
	assert.EqualValues(t, 2, ov["missing_cells"])

	schema := ov["schema"].(map[string]any)
	assert.Equal(t, "categorical", schema["target_kind"])
}

func TestCreateSession_Errors(t *testing.T) {
	s := newTestServer(t)
	csv := testkit.CSV(testkit.ChurnedTable())

	body, ct := uploadBody(t, "churn.csv", csv, map[string]string{"target": "revenue"})
	rec := do(s, http.MethodPost, "/api/v1/sessions", body, ct)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVALID_TARGET", decode(t, rec)["code"])

	body, ct = uploadBody(t, "churn.csv", csv, nil)
	rec = do(s, http.MethodPost, "/api/v1/sessions", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct = uploadBody(t, "churn.json", csv, map[string]string{"target": "churned"})
	rec = do(s, http.MethodPost, "/api/v1/sessions", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// no file and no default dataset
	body, ct = uploadBody(t, "", nil, map[string]string{"target": "churned"})
	rec = do(s, http.MethodPost, "/api/v1/sessions", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSession_DefaultDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signed.csv")
	require.NoError(t, os.WriteFile(path, testkit.CSV(testkit.SignedTable()), 0o644))

	s := newTestServer(t)
	s.config.Data.File = path

	body, ct := uploadBody(t, "", nil, map[string]string{"target": "target"})
	rec := do(s, http.MethodPost, "/api/v1/sessions", body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 1, s.sessions.Len())
}

func TestSessionQueries_NumericTarget(t *testing.T) {
	s := newTestServer(t)
	id := createSession(t, s, testkit.SignedTable(), "target")
	base := "/api/v1/sessions/" + id

	rec := do(s, http.MethodGet, base+"/correlations?k=1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	// k is clamped to the configured minimum
	assert.EqualValues(t, 5, out["k"])
	entries := out["correlations"].([]any)
	require.Len(t, entries, 2)
	assert.Equal(t, "positive", entries[0].(map[string]any)["feature"])

	rec = do(s, http.MethodGet, base+"/relationships/negative", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rel := decode(t, rec)
	assert.NotNil(t, rel["trend"])
	assert.Len(t, rel["points"], 10)

	rec = do(s, http.MethodGet, base+"/pairs?a=negative&b=positive", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(s, http.MethodGet, base+"/redundancy?threshold=1.5", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(s, http.MethodGet, base+"/redundancy", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["applicable"])

	rec = do(s, http.MethodGet, base+"/correlation-matrix", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"negative", "positive"}, decode(t, rec)["features"])

	rec = do(s, http.MethodGet, base+"/classes", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "KIND_MISMATCH", decode(t, rec)["code"])
}

func TestSessionQueries_ImpactNullStd(t *testing.T) {
	s := newTestServer(t)
	id := createSession(t, s, testkit.RegionPriceTable(), "price")

	rec := do(s, http.MethodGet, "/api/v1/sessions/"+id+"/impact/region", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"std_dev":null`)

	rec = do(s, http.MethodGet, "/api/v1/sessions/"+id+"/profile/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionQueries_CategoricalTarget(t *testing.T) {
	s := newTestServer(t)
	id := createSession(t, s, testkit.ChurnedTable(), "churned")
	base := "/api/v1/sessions/" + id

	rec := do(s, http.MethodGet, base+"/crosstab/city", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	ct := decode(t, rec)
	assert.Equal(t, []any{"Austin", "Boston"}, ct["rows"])

	rec = do(s, http.MethodGet, base+"/classes", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["classes"], 2)

	rec = do(s, http.MethodGet, base+"/correlations", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(s, http.MethodGet, base+"/report?format=html", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, rec.Body.String(), "<table>")
}

func TestSelectTargetAndClose(t *testing.T) {
	s := newTestServer(t)
	id := createSession(t, s, testkit.ChurnedTable(), "churned")
	base := "/api/v1/sessions/" + id

	rec := do(s, http.MethodPut, base+"/target", strings.NewReader(`{"target":"income"}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(s, http.MethodGet, base+"/correlations", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(s, http.MethodPut, base+"/target", strings.NewReader(`{}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(s, http.MethodDelete, base, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(s, http.MethodGet, base+"/overview", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(s, http.MethodGet, "/api/v1/sessions/not-a-uuid/overview", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogRecording(t *testing.T) {
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	repo := postgres.NewDatasetRepository(db)
	require.NoError(t, repo.Migrate(context.Background()))

	s := newTestServer(t, WithCatalog(repo))
	createSession(t, s, testkit.ChurnedTable(), "churned")

	rec := do(s, http.MethodGet, "/api/v1/datasets", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, true, out["catalog"])
	require.Len(t, out["datasets"], 1)
	assert.Equal(t, "churn", out["datasets"].([]any)[0].(map[string]any)["name"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	do(s, http.MethodGet, "/healthz", nil, "")

	rec := do(s, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `edascope_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), "edascope_http_request_duration_seconds")
}
