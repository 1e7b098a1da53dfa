package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgallion1/docrank/internal/config"
	"github.com/dgallion1/docrank/internal/pathstore"
	"github.com/dgallion1/docrank/internal/pipeline"
	"github.com/dgallion1/docrank/internal/relevance"
)

const testKey = "test-key"

type archive struct {
	nodes map[string]json.RawMessage
}

func (a *archive) PutNode(_ context.Context, key string, req pathstore.NodeRequest) error {
	b, err := json.Marshal(req.Value)
	if err != nil {
		return err
	}
	a.nodes[key] = b
	return nil
}

func (a *archive) GetNode(_ context.Context, key string) (*pathstore.NodeResponse, error) {
	v, ok := a.nodes[key]
	if !ok {
		return nil, nil
	}
	return &pathstore.NodeResponse{Key: key, Value: v}, nil
}

func newTestServer(t *testing.T, pub pipeline.Publisher) (*Server, *pipeline.Orchestrator) {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	stats := relevance.NewStats(time.Hour)
	scorer := relevance.NewAdapter(relevance.KeywordModel{}, relevance.WithStats(stats))
	analyzer := pipeline.NewAnalyzer(scorer, pipeline.AnalyzerConfig{Concurrency: 2}, log)

	orch := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{WorkerCount: 1, MaxQueueSize: 4}, analyzer, pub, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	cfg := config.Config{DocrankAPIKey: testKey, Scorer: config.ScorerKeyword, MaxUploadBytes: 1 << 20}
	srv := NewServer(orch, stats, log, cfg)
	srv.newID = func() string { return "job-fixed" }
	return srv, orch
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	for name, content := range files {
		fw, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func do(srv http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+testKey)
	return req
}

func TestHealth_NoAuth(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuth(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/api/stats/scorer", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/stats/scorer", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	if rec := do(srv, req); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong token, got %d", rec.Code)
	}

	if rec := do(srv, authed(httptest.NewRequest(http.MethodGet, "/api/stats/scorer", nil))); rec.Code != http.StatusOK {
		t.Errorf("expected 200 with token, got %d", rec.Code)
	}
}

func TestAnalyze_Validation(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	tests := []struct {
		name   string
		fields map[string]string
		files  map[string]string
		want   int
	}{
		{"missing persona", map[string]string{"job": "j"}, map[string]string{"a.txt": "x"}, http.StatusBadRequest},
		{"no files", map[string]string{"persona": "p", "job": "j"}, nil, http.StatusBadRequest},
		{"unsupported type", map[string]string{"persona": "p", "job": "j"}, map[string]string{"a.exe": "x"}, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body, ct := multipartBody(t, tc.fields, tc.files)
			req := authed(httptest.NewRequest(http.MethodPost, "/api/analyze", body))
			req.Header.Set("Content-Type", ct)
			if rec := do(srv, req); rec.Code != tc.want {
				t.Errorf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAnalyze_RoundTrip(t *testing.T) {
	pub := &archive{nodes: map[string]json.RawMessage{}}
	srv, _ := newTestServer(t, pub)

	body, ct := multipartBody(t,
		map[string]string{"persona": "Researcher", "job": "Review benchmark results"},
		map[string]string{
			"b.txt": "Gardening\nsoil and seeds and water and patience for a long season\n",
			"a.txt": "Results\nthe benchmark results for the researcher review are strong overall\n",
		})
	req := authed(httptest.NewRequest(http.MethodPost, "/api/analyze", body))
	req.Header.Set("Content-Type", ct)
	rec := do(srv, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var accepted map[string]any
	json.NewDecoder(rec.Body).Decode(&accepted)
	if accepted["job_id"] != "job-fixed" {
		t.Fatalf("expected job-fixed, got %v", accepted["job_id"])
	}

	var snap pipeline.JobSnapshot
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec := do(srv, authed(httptest.NewRequest(http.MethodGet, "/api/analyze/job-fixed", nil)))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		snap = pipeline.JobSnapshot{}
		json.NewDecoder(rec.Body).Decode(&snap)
		if snap.Status == pipeline.StatusCompleted || snap.Status == pipeline.StatusFailed {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if snap.Status != pipeline.StatusCompleted || snap.Report == nil {
		t.Fatalf("expected completed job with report, got %+v", snap)
	}
	docs := snap.Report.Metadata.InputDocuments
	if len(docs) != 2 || docs[0] != "a.txt" || docs[1] != "b.txt" {
		t.Errorf("expected uploads sorted by name, got %v", docs)
	}
	if snap.Report.Sections[0].Document != "a.txt" {
		t.Errorf("expected a.txt ranked first, got %+v", snap.Report.Sections[0])
	}
	if _, ok := pub.nodes[pipeline.ReportKeyPrefix+"job-fixed"]; !ok {
		t.Error("expected report to be published")
	}
}

func TestAnalyzeStatus_ArchivedReport(t *testing.T) {
	pub := &archive{nodes: map[string]json.RawMessage{
		pipeline.ReportKeyPrefix + "old-job": json.RawMessage(`{"report":{"metadata":{"persona":"p"}}}`),
	}}
	srv, _ := newTestServer(t, pub)

	rec := do(srv, authed(httptest.NewRequest(http.MethodGet, "/api/analyze/old-job", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got map[string]any
	json.NewDecoder(rec.Body).Decode(&got)
	if got["phase"] != "archived" {
		t.Errorf("expected archived phase, got %v", got["phase"])
	}

	rec = do(srv, authed(httptest.NewRequest(http.MethodGet, "/api/analyze/unknown", nil)))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestScorerStats(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(srv, authed(httptest.NewRequest(http.MethodGet, "/api/stats/scorer", nil)))
	var got struct {
		Backend string                  `json:"backend"`
		Stats   relevance.StatsSnapshot `json:"stats"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Backend != config.ScorerKeyword {
		t.Errorf("expected keyword backend, got %q", got.Backend)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"report.pdf":           "report.pdf",
		"../../etc/passwd.txt": "passwd.txt",
		`C:\docs\memo.docx`:    "memo.docx",
		"a..b.md":              "a_b.md",
		"":                     "unnamed",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", in, want, got)
		}
	}
}
