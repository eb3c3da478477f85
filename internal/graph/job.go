package graph

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/me/ligflow/pkg/model"
)

// Job accumulates tasks and their dependency edges. It replaces any ambient
// per-process job state: every submit call goes through an explicit Job value
// and returns an explicit Task handle.
type Job struct {
	id    string
	name  string
	tasks []*Task
	byID  map[string]*Task
}

// NewJob creates an empty job graph.
func NewJob(name string) *Job {
	return &Job{
		id:   uuid.NewString(),
		name: name,
		byID: make(map[string]*Task),
	}
}

// ID returns the unique job identifier.
func (j *Job) ID() string {
	return j.id
}

// Name returns the job name.
func (j *Job) Name() string {
	return j.name
}

// Tasks returns all tasks in submission order.
func (j *Job) Tasks() []*Task {
	return j.tasks
}

// SubmitSpec describes one task to record in the graph.
type SubmitSpec struct {
	// Name identifies the task in logs and in the run ledger.
	Name string

	// Run is the unit of work. Required.
	Run WorkFunc

	// Deps are the predecessor tasks. The task becomes eligible only after
	// every dependency succeeded; if any fails, the task is skipped.
	Deps []*Task

	// Cores is the CPU core request. Zero means 1.
	Cores int

	// Stdout, when set, is the file path the task's tool output is written to.
	Stdout string
}

// Submit records a task in the graph and returns its handle. The task does
// not execute; it only becomes part of the dependency partial order.
func (j *Job) Submit(spec SubmitSpec) (*Task, error) {
	if spec.Run == nil {
		return nil, model.NewConfigurationError("task %q submitted without a unit of work", spec.Name)
	}
	if spec.Cores < 0 {
		return nil, model.NewConfigurationError("task %q requested %d cores", spec.Name, spec.Cores)
	}
	for _, dep := range spec.Deps {
		if dep == nil {
			return nil, model.NewConfigurationError("task %q has a nil dependency", spec.Name)
		}
		if _, ok := j.byID[dep.id]; !ok {
			return nil, model.NewConfigurationError(
				"task %q depends on task %q from a different job", spec.Name, dep.name)
		}
	}

	cores := spec.Cores
	if cores == 0 {
		cores = 1
	}
	name := spec.Name
	if name == "" {
		name = fmt.Sprintf("task-%d", len(j.tasks))
	}

	task := &Task{
		id:     uuid.NewString(),
		name:   name,
		run:    spec.Run,
		deps:   append([]*Task(nil), spec.Deps...),
		cores:  cores,
		stdout: spec.Stdout,
		state:  model.TaskStatePending,
	}
	j.tasks = append(j.tasks, task)
	j.byID[task.id] = task
	return task, nil
}

// dependents returns, per task ID, the tasks that declared it as a dependency.
func (j *Job) dependents() map[string][]*Task {
	down := make(map[string][]*Task, len(j.tasks))
	for _, t := range j.tasks {
		for _, dep := range t.deps {
			down[dep.id] = append(down[dep.id], t)
		}
	}
	return down
}
