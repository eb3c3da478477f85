package graph

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/me/ligflow/internal/toolexec"
	"github.com/me/ligflow/pkg/model"
)

// Observer is notified of task state changes while a job runs. The run
// ledger implements it to persist per-task outcomes.
type Observer interface {
	TaskStateChanged(job *Job, task *Task)
}

// Runner executes a Job locally, honoring the dependency partial order and a
// total CPU core budget. Tasks with no dependency relationship run in
// parallel; a failed task's dependents are skipped and never started.
type Runner struct {
	sem      *coreSemaphore
	logger   *slog.Logger
	observer Observer
}

// NewRunner creates a Runner limited to the given number of concurrently
// consumed cores. If cores <= 0, runtime.NumCPU() is used.
func NewRunner(cores int, logger *slog.Logger) *Runner {
	if cores <= 0 {
		cores = runtime.NumCPU()
	}
	return &Runner{
		sem:    newCoreSemaphore(cores),
		logger: logger.With("component", "runner"),
	}
}

// Observe registers an observer for task state changes.
func (r *Runner) Observe(o Observer) {
	r.observer = o
}

type taskEvent struct {
	task *Task
}

// Run executes all tasks of the job and blocks until every task is terminal.
// It returns an error if any task failed or was skipped; per-task failure
// reasons stay retrievable through Task.Err afterwards.
func (r *Runner) Run(ctx context.Context, job *Job) error {
	tasks := job.Tasks()
	if len(tasks) == 0 {
		return nil
	}

	r.logger.Info("job started", "job_id", job.ID(), "name", job.Name(), "tasks", len(tasks))

	remaining := make(map[string]int, len(tasks))
	for _, t := range tasks {
		remaining[t.ID()] = len(t.Deps())
	}
	down := job.dependents()
	events := make(chan taskEvent)

	terminal := 0
	failed := 0
	skipped := 0

	launch := func(t *Task) {
		t.setState(model.TaskStateReady, nil)
		r.notify(job, t)
		go r.runTask(ctx, job, t, events)
	}

	// Skip the task and, transitively, everything downstream of it. The
	// recorded reason names the originally failed task, not the intermediate
	// skipped ones.
	var skip func(t *Task, cause string)
	skip = func(t *Task, cause string) {
		if t.State().IsTerminal() {
			return
		}
		t.setState(model.TaskStateSkipped, &model.DependencyError{Predecessor: cause})
		r.logger.Info("task skipped", "task", t.Name(), "failed_dependency", cause)
		r.notify(job, t)
		terminal++
		skipped++
		for _, d := range down[t.ID()] {
			skip(d, cause)
		}
	}

	for _, t := range tasks {
		if remaining[t.ID()] == 0 {
			launch(t)
		}
	}

	for terminal < len(tasks) {
		ev := <-events
		t := ev.task
		terminal++

		switch t.State() {
		case model.TaskStateSucceeded:
			for _, d := range down[t.ID()] {
				remaining[d.ID()]--
				if remaining[d.ID()] == 0 && d.State() == model.TaskStatePending {
					launch(d)
				}
			}
		case model.TaskStateFailed:
			failed++
			for _, d := range down[t.ID()] {
				skip(d, t.Name())
			}
		}
	}

	r.logger.Info("job finished",
		"job_id", job.ID(),
		"tasks", len(tasks),
		"failed", failed,
		"skipped", skipped,
	)

	if failed > 0 {
		return fmt.Errorf("job %s: %d of %d tasks failed, %d skipped", job.Name(), failed, len(tasks), skipped)
	}
	return nil
}

// runTask acquires the task's core request, runs its unit of work and records
// the terminal state. It always emits exactly one event.
func (r *Runner) runTask(ctx context.Context, job *Job, t *Task, events chan<- taskEvent) {
	defer func() { events <- taskEvent{task: t} }()

	if !r.sem.Acquire(ctx, t.Cores()) {
		t.setState(model.TaskStateFailed, fmt.Errorf("task %s: %w", t.Name(), ctx.Err()))
		r.notify(job, t)
		return
	}
	defer r.sem.Release(t.Cores())

	t.setState(model.TaskStateRunning, nil)
	r.notify(job, t)
	r.logger.Info("task started", "task", t.Name(), "cores", t.Cores())

	runCtx := ctx
	var stdout *os.File
	if t.Stdout() != "" {
		if err := os.MkdirAll(filepath.Dir(t.Stdout()), 0o755); err != nil {
			t.setState(model.TaskStateFailed, fmt.Errorf("task %s: create stdout dir: %w", t.Name(), err))
			r.notify(job, t)
			return
		}
		f, err := os.Create(t.Stdout())
		if err != nil {
			t.setState(model.TaskStateFailed, fmt.Errorf("task %s: open stdout: %w", t.Name(), err))
			r.notify(job, t)
			return
		}
		stdout = f
		runCtx = toolexec.WithStdout(ctx, f)
	}

	err := t.run(runCtx)
	if stdout != nil {
		stdout.Close()
	}

	if err != nil {
		t.setState(model.TaskStateFailed, err)
		r.logger.Error("task failed", "task", t.Name(), "error", err)
	} else {
		t.setState(model.TaskStateSucceeded, nil)
		r.logger.Info("task succeeded", "task", t.Name())
	}
	r.notify(job, t)
}

func (r *Runner) notify(job *Job, t *Task) {
	if r.observer != nil {
		r.observer.TaskStateChanged(job, t)
	}
}
