// Package graph records jobs as directed acyclic graphs of tasks. Building a
// graph never executes anything; a built Job is handed whole to a runner.
package graph

import (
	"context"
	"sync"

	"github.com/me/ligflow/pkg/model"
)

// WorkFunc is a task's unit of work. It runs to completion within one
// scheduled execution slot and reports failure through its error.
type WorkFunc func(ctx context.Context) error

// Task is an opaque handle to one node of a Job graph. Tasks are created by
// Job.Submit and owned by their Job for their entire lifetime.
type Task struct {
	id     string
	name   string
	run    WorkFunc
	deps   []*Task
	cores  int
	stdout string

	mu    sync.Mutex
	state model.TaskState
	err   error
}

// ID returns the unique task identifier.
func (t *Task) ID() string {
	return t.id
}

// Name returns the task name given at submission.
func (t *Task) Name() string {
	return t.name
}

// Deps returns the declared predecessors of the task.
func (t *Task) Deps() []*Task {
	return t.deps
}

// Cores returns the declared CPU core request (at least 1).
func (t *Task) Cores() int {
	return t.cores
}

// Stdout returns the declared stdout destination, or "" when none.
func (t *Task) Stdout() string {
	return t.stdout
}

// State returns the task's current lifecycle state.
func (t *Task) State() model.TaskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Err returns the task's failure reason: the work error for a failed task, a
// model.DependencyError naming the failed predecessor for a skipped task, and
// nil otherwise. It remains retrievable after the job completes.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Task) setState(state model.TaskState, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = state
	if err != nil {
		t.err = err
	}
}
