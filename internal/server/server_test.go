package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/docsmith/internal/engine"
	"github.com/fyrsmithlabs/docsmith/internal/logging"
	"github.com/fyrsmithlabs/docsmith/internal/metrics"
	"github.com/fyrsmithlabs/docsmith/internal/orchestrator"
	"github.com/fyrsmithlabs/docsmith/internal/task"
)

// stubRunner answers with a fixed outcome or error, recording the task.
type stubRunner struct {
	outcome *orchestrator.Outcome
	err     error
	last    task.DocumentationTask
}

func (s *stubRunner) Run(_ context.Context, t task.DocumentationTask) (*orchestrator.Outcome, error) {
	s.last = t
	if s.err != nil {
		return nil, s.err
	}
	return s.outcome, nil
}

func newTestServer(t *testing.T, runner *stubRunner) *Server {
	t.Helper()
	srv, err := NewServer(runner, nil, prometheus.NewRegistry(), "DOCS", logging.NewNop(), nil)
	require.NoError(t, err)
	return srv
}

func doJSON(srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestNewServerRequiresCollaborators(t *testing.T) {
	_, err := NewServer(nil, nil, nil, "DOCS", logging.NewNop(), nil)
	assert.Error(t, err)

	_, err = NewServer(&stubRunner{}, nil, nil, "DOCS", nil, nil)
	assert.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubRunner{outcome: &orchestrator.Outcome{}})

	rec := doJSON(srv, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	m.TaskFinished("generate", "success")

	srv, err := NewServer(&stubRunner{outcome: &orchestrator.Outcome{}}, nil, registry, "DOCS", logging.NewNop(), nil)
	require.NoError(t, err)

	rec := doJSON(srv, http.MethodGet, "/metrics", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "docsmith_tasks_total")
}

func TestGenerateEndpoint(t *testing.T) {
	runner := &stubRunner{outcome: &orchestrator.Outcome{
		Success:   true,
		PageID:    "9001",
		PageTitle: "Billing Service",
		Message:   "documentation published",
	}}
	srv := newTestServer(t, runner)

	rec := doJSON(srv, http.MethodPost, "/api/v1/docs/generate", map[string]string{
		"file_path": "src/services/billing.ts",
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var outcome orchestrator.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	assert.True(t, outcome.Success)
	assert.Equal(t, "9001", outcome.PageID)

	assert.Equal(t, task.KindGenerate, runner.last.Kind)
	assert.Equal(t, "DOCS", runner.last.SpaceID, "configured space applied when omitted")
	assert.Equal(t, "src/services/billing.ts", runner.last.FilePath)
}

func TestUpdateEndpoint(t *testing.T) {
	runner := &stubRunner{outcome: &orchestrator.Outcome{Success: true, PageID: "98765"}}
	srv := newTestServer(t, runner)

	rec := doJSON(srv, http.MethodPost, "/api/v1/docs/update", map[string]string{
		"commit_id": "4f2a91cde88f01b3a7c55f6f0f6f3b19a0be77aa",
		"page_id":   "98765",
		"space_id":  "ENG",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, task.KindUpdate, runner.last.Kind)
	assert.Equal(t, "ENG", runner.last.SpaceID, "explicit space wins over the default")
	assert.Equal(t, "98765", runner.last.PageID)
}

func TestTaskErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"invalid task", fmt.Errorf("wrap: %w", task.ErrInvalidTask), http.StatusBadRequest},
		{"invalid reference", fmt.Errorf("wrap: %w", task.ErrInvalidReference), http.StatusBadRequest},
		{"engine unavailable", fmt.Errorf("wrap: %w", engine.ErrUnavailable), http.StatusBadGateway},
		{"anything else", fmt.Errorf("collaborator exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &stubRunner{err: tt.err})

			rec := doJSON(srv, http.MethodPost, "/api/v1/docs/update", map[string]string{
				"commit_id": "4f2a91c",
			})

			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestMalformedBodyRejected(t *testing.T) {
	srv := newTestServer(t, &stubRunner{outcome: &orchestrator.Outcome{}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/docs/generate", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
