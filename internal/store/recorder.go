package store

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/me/ligflow/internal/graph"
	"github.com/me/ligflow/pkg/model"
)

// Recorder persists a job's task state transitions into the ledger. It
// implements graph.Observer; attach it to a runner with Observe before the
// run starts.
type Recorder struct {
	store  Store
	logger *slog.Logger
}

// NewRecorder creates a Recorder writing to store.
func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:  store,
		logger: logger.With("component", "recorder"),
	}
}

// BeginRun records the run and a PENDING record for every task of the job.
// Call it before handing the job to the runner so the ledger shows the full
// task set even if the process dies mid-run.
func (r *Recorder) BeginRun(ctx context.Context, job *graph.Job) error {
	now := time.Now().UTC()
	run := &model.Run{
		ID:        job.ID(),
		Name:      job.Name(),
		State:     model.RunStateRunning,
		CreatedAt: now,
	}
	if err := r.store.CreateRun(ctx, run); err != nil {
		return err
	}
	for _, task := range job.Tasks() {
		rec := &model.TaskRecord{
			ID:        task.ID(),
			RunID:     job.ID(),
			Name:      task.Name(),
			State:     model.TaskStatePending,
			Cores:     task.Cores(),
			CreatedAt: now,
		}
		if err := r.store.CreateTaskRecord(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// FinishRun marks the run terminal. runErr is the runner's verdict; nil means
// every task succeeded.
func (r *Recorder) FinishRun(ctx context.Context, job *graph.Job, runErr error) error {
	run, err := r.store.GetRun(ctx, job.ID())
	if err != nil {
		return err
	}
	if run == nil {
		return nil
	}
	now := time.Now().UTC()
	run.CompletedAt = &now
	if runErr != nil {
		run.State = model.RunStateFailed
	} else {
		run.State = model.RunStateCompleted
	}
	return r.store.UpdateRun(ctx, run)
}

// TaskStateChanged implements graph.Observer. Failures to persist are logged,
// not propagated: the ledger trails the run, it does not gate it.
func (r *Recorder) TaskStateChanged(job *graph.Job, task *graph.Task) {
	ctx := context.Background()

	rec, err := r.store.GetTaskRecord(ctx, task.ID())
	if err != nil || rec == nil {
		r.logger.Warn("task record lookup failed", "task", task.Name(), "error", err)
		return
	}

	state := task.State()
	rec.State = state
	now := time.Now().UTC()
	switch state {
	case model.TaskStateRunning:
		rec.StartedAt = &now
	case model.TaskStateSucceeded, model.TaskStateFailed, model.TaskStateSkipped:
		rec.CompletedAt = &now
	}

	if taskErr := task.Err(); taskErr != nil {
		rec.Reason = taskErr.Error()

		var execErr *model.ExecError
		if errors.As(taskErr, &execErr) {
			rec.Command = strings.Join(execErr.Cmd, " ")
			code := execErr.ExitCode
			rec.ExitCode = &code
		}
	}

	if err := r.store.UpdateTaskRecord(ctx, rec); err != nil {
		r.logger.Warn("task record update failed", "task", task.Name(), "error", err)
	}
}
