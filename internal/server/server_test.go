package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/me/ligflow/internal/config"
	"github.com/me/ligflow/internal/store"
	"github.com/me/ligflow/pkg/model"
)

func testServer(t *testing.T) (*Server, store.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	st, err := store.NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return New(config.DefaultServerConfig(), st, logger), st
}

// envelope is used to decode the standard response envelope.
type envelope struct {
	Status     string            `json:"status"`
	RequestID  string            `json:"request_id"`
	Timestamp  string            `json:"timestamp"`
	Data       json.RawMessage   `json:"data"`
	Pagination *model.Pagination `json:"pagination"`
	Error      *model.APIError   `json:"error"`
}

func doGet(t *testing.T, srv *Server, path string, wantStatus int) envelope {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != wantStatus {
		t.Fatalf("GET %s: status=%d, want %d, body=%s", path, w.Code, wantStatus, w.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("GET %s: invalid JSON: %v", path, err)
	}
	return env
}

func seedRun(t *testing.T, st store.Store, name string, state model.RunState) *model.Run {
	t.Helper()
	run := &model.Run{
		ID:        uuid.New().String(),
		Name:      name,
		State:     state,
		CreatedAt: time.Now().UTC(),
	}
	if err := st.CreateRun(context.Background(), run); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	return run
}

func TestHealth(t *testing.T) {
	srv, _ := testServer(t)
	env := doGet(t, srv, "/api/v1/health", http.StatusOK)
	if env.Status != "ok" {
		t.Errorf("status = %q, want ok", env.Status)
	}
	if env.RequestID == "" {
		t.Error("request_id is empty")
	}

	var data struct {
		Status string `json:"status"`
		Store  string `json:"store"`
	}
	json.Unmarshal(env.Data, &data)
	if data.Status != "healthy" {
		t.Errorf("health status = %q, want healthy", data.Status)
	}
	if data.Store != "available" {
		t.Errorf("store = %q, want available", data.Store)
	}
}

func TestListRuns(t *testing.T) {
	srv, st := testServer(t)
	seedRun(t, st, "screen-a", model.RunStateCompleted)
	seedRun(t, st, "screen-b", model.RunStateFailed)

	env := doGet(t, srv, "/api/v1/runs/", http.StatusOK)
	var runs []model.Run
	json.Unmarshal(env.Data, &runs)
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if env.Pagination == nil || env.Pagination.Total != 2 {
		t.Errorf("pagination = %+v, want total 2", env.Pagination)
	}

	env = doGet(t, srv, "/api/v1/runs/?state=FAILED", http.StatusOK)
	json.Unmarshal(env.Data, &runs)
	if len(runs) != 1 || runs[0].Name != "screen-b" {
		t.Errorf("state filter returned %v, want only the failed run", runs)
	}
}

func TestGetRun(t *testing.T) {
	srv, st := testServer(t)
	run := seedRun(t, st, "screen-a", model.RunStateRunning)

	env := doGet(t, srv, "/api/v1/runs/"+run.ID, http.StatusOK)
	var got model.Run
	json.Unmarshal(env.Data, &got)
	if got.ID != run.ID || got.Name != "screen-a" {
		t.Errorf("got %+v, want the seeded run", got)
	}

	env = doGet(t, srv, "/api/v1/runs/"+uuid.New().String(), http.StatusNotFound)
	if env.Error == nil || env.Error.Code != model.ErrNotFound {
		t.Errorf("error = %+v, want NOT_FOUND", env.Error)
	}
}

func TestListRunTasks(t *testing.T) {
	srv, st := testServer(t)
	run := seedRun(t, st, "screen-a", model.RunStateCompleted)

	rec := &model.TaskRecord{
		ID:        uuid.New().String(),
		RunID:     run.ID,
		Name:      "check-protein",
		State:     model.TaskStateSucceeded,
		Cores:     1,
		CreatedAt: time.Now().UTC(),
	}
	if err := st.CreateTaskRecord(context.Background(), rec); err != nil {
		t.Fatalf("CreateTaskRecord() error = %v", err)
	}

	env := doGet(t, srv, "/api/v1/runs/"+run.ID+"/tasks", http.StatusOK)
	var tasks []model.TaskRecord
	json.Unmarshal(env.Data, &tasks)
	if len(tasks) != 1 || tasks[0].Name != "check-protein" {
		t.Errorf("tasks = %v, want the single record", tasks)
	}

	// Tasks of an unknown run are a 404, not an empty list.
	doGet(t, srv, "/api/v1/runs/"+uuid.New().String()+"/tasks", http.StatusNotFound)
}
