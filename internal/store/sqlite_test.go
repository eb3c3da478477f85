package store

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/me/ligflow/internal/graph"
	"github.com/me/ligflow/pkg/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return s
}

func newTestRun(name string) *model.Run {
	return &model.Run{
		ID:        uuid.New().String(),
		Name:      name,
		State:     model.RunStateRunning,
		CreatedAt: time.Now().UTC(),
	}
}

func TestRunCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := newTestRun("p38-screen")
	if err := s.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	got, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetRun() returned nil for an existing run")
	}
	if got.Name != "p38-screen" || got.State != model.RunStateRunning {
		t.Errorf("GetRun() = %+v, want name/state preserved", got)
	}
	if got.CompletedAt != nil {
		t.Errorf("CompletedAt = %v, want nil for a live run", got.CompletedAt)
	}

	now := time.Now().UTC()
	got.State = model.RunStateCompleted
	got.CompletedAt = &now
	if err := s.UpdateRun(ctx, got); err != nil {
		t.Fatalf("UpdateRun() error = %v", err)
	}

	got, err = s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun() after update error = %v", err)
	}
	if got.State != model.RunStateCompleted {
		t.Errorf("State = %s, want COMPLETED", got.State)
	}
	if got.CompletedAt == nil {
		t.Error("CompletedAt = nil after completion")
	}

	// Unknown runs read back as nil, not an error.
	missing, err := s.GetRun(ctx, "nope")
	if err != nil {
		t.Fatalf("GetRun(missing) error = %v", err)
	}
	if missing != nil {
		t.Errorf("GetRun(missing) = %+v, want nil", missing)
	}

	// Updating an unknown run is an error.
	if err := s.UpdateRun(ctx, newTestRun("ghost")); err == nil {
		t.Error("UpdateRun() on an unknown run should fail")
	}
}

func TestListRuns_FilterAndPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		run := newTestRun("batch")
		if i == 0 {
			run.State = model.RunStateFailed
		}
		run.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Second)
		if err := s.CreateRun(ctx, run); err != nil {
			t.Fatalf("CreateRun() error = %v", err)
		}
	}

	runs, total, err := s.ListRuns(ctx, model.ListOptions{})
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if total != 3 || len(runs) != 3 {
		t.Errorf("ListRuns() = %d runs, total %d, want 3/3", len(runs), total)
	}
	// Newest first.
	for i := 1; i < len(runs); i++ {
		if runs[i].CreatedAt.After(runs[i-1].CreatedAt) {
			t.Error("ListRuns() not ordered newest first")
		}
	}

	runs, total, err = s.ListRuns(ctx, model.ListOptions{State: "FAILED"})
	if err != nil {
		t.Fatalf("ListRuns(FAILED) error = %v", err)
	}
	if total != 1 || len(runs) != 1 || runs[0].State != model.RunStateFailed {
		t.Errorf("ListRuns(FAILED) = %d runs, total %d, want the single failed run", len(runs), total)
	}

	runs, total, err = s.ListRuns(ctx, model.ListOptions{Limit: 2})
	if err != nil {
		t.Fatalf("ListRuns(limit 2) error = %v", err)
	}
	if total != 3 || len(runs) != 2 {
		t.Errorf("ListRuns(limit 2) = %d runs, total %d, want 2 of 3", len(runs), total)
	}
}

func TestTaskRecords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := newTestRun("records")
	if err := s.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	rec := &model.TaskRecord{
		ID:        uuid.New().String(),
		RunID:     run.ID,
		Name:      "screening-ligands",
		State:     model.TaskStatePending,
		Cores:     8,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.CreateTaskRecord(ctx, rec); err != nil {
		t.Fatalf("CreateTaskRecord() error = %v", err)
	}

	code := 3
	now := time.Now().UTC()
	rec.State = model.TaskStateFailed
	rec.Command = "apptainer exec ligen.sif ligen"
	rec.ExitCode = &code
	rec.Reason = "`apptainer exec ligen.sif ligen` exited with code 3"
	rec.StartedAt = &now
	rec.CompletedAt = &now
	if err := s.UpdateTaskRecord(ctx, rec); err != nil {
		t.Fatalf("UpdateTaskRecord() error = %v", err)
	}

	got, err := s.GetTaskRecord(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetTaskRecord() error = %v", err)
	}
	if got.State != model.TaskStateFailed {
		t.Errorf("State = %s, want FAILED", got.State)
	}
	if got.ExitCode == nil || *got.ExitCode != 3 {
		t.Errorf("ExitCode = %v, want 3", got.ExitCode)
	}
	if got.Command == "" || got.Reason == "" {
		t.Errorf("Command/Reason not persisted: %+v", got)
	}
	if got.Cores != 8 {
		t.Errorf("Cores = %d, want 8", got.Cores)
	}

	records, err := s.ListTasksByRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("ListTasksByRun() error = %v", err)
	}
	if len(records) != 1 || records[0].ID != rec.ID {
		t.Errorf("ListTasksByRun() = %v, want the single record", records)
	}
}

func TestRecorder_PersistsRunLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := NewRecorder(s, logger)

	job := graph.NewJob("ledger-run")
	ok, err := job.Submit(graph.SubmitSpec{
		Name: "prepare",
		Run:  func(ctx context.Context) error { return nil },
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	bad, err := job.Submit(graph.SubmitSpec{
		Name: "screen",
		Deps: []*graph.Task{ok},
		Run: func(ctx context.Context) error {
			return &model.ExecError{Cmd: []string{"ligen", "-i", "in.smi"}, ExitCode: 2}
		},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := job.Submit(graph.SubmitSpec{
		Name: "select",
		Deps: []*graph.Task{bad},
		Run:  func(ctx context.Context) error { return nil },
	}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if err := recorder.BeginRun(ctx, job); err != nil {
		t.Fatalf("BeginRun() error = %v", err)
	}

	runner := graph.NewRunner(1, logger)
	runner.Observe(recorder)
	runErr := runner.Run(ctx, job)
	if runErr == nil {
		t.Fatal("Run() should report the failed task")
	}
	if err := recorder.FinishRun(ctx, job, runErr); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	run, err := s.GetRun(ctx, job.ID())
	if err != nil || run == nil {
		t.Fatalf("GetRun() = %v, %v", run, err)
	}
	if run.State != model.RunStateFailed {
		t.Errorf("run state = %s, want FAILED", run.State)
	}
	if run.CompletedAt == nil {
		t.Error("run has no completion time")
	}

	records, err := s.ListTasksByRun(ctx, job.ID())
	if err != nil {
		t.Fatalf("ListTasksByRun() error = %v", err)
	}
	byName := map[string]*model.TaskRecord{}
	for _, rec := range records {
		byName[rec.Name] = rec
	}
	if len(byName) != 3 {
		t.Fatalf("ledger has %d tasks, want 3", len(byName))
	}

	if got := byName["prepare"].State; got != model.TaskStateSucceeded {
		t.Errorf("prepare state = %s, want SUCCEEDED", got)
	}

	screen := byName["screen"]
	if screen.State != model.TaskStateFailed {
		t.Errorf("screen state = %s, want FAILED", screen.State)
	}
	if screen.ExitCode == nil || *screen.ExitCode != 2 {
		t.Errorf("screen exit code = %v, want 2", screen.ExitCode)
	}
	if screen.Command != "ligen -i in.smi" {
		t.Errorf("screen command = %q, want the expanded command line", screen.Command)
	}

	sel := byName["select"]
	if sel.State != model.TaskStateSkipped {
		t.Errorf("select state = %s, want SKIPPED", sel.State)
	}
	if !strings.Contains(sel.Reason, `dependency "screen" failed`) {
		t.Errorf("select reason = %q, want the failed dependency named", sel.Reason)
	}
	if sel.StartedAt != nil {
		t.Error("skipped task has a start time; it must never run")
	}
}
