package model

// TaskState represents the lifecycle state of a task inside a job graph.
type TaskState string

const (
	// TaskStatePending means the task is recorded in the graph but at least
	// one dependency has not completed yet.
	TaskStatePending TaskState = "PENDING"
	// TaskStateReady means all dependencies succeeded and the task is waiting
	// for execution resources.
	TaskStateReady     TaskState = "READY"
	TaskStateRunning   TaskState = "RUNNING"
	TaskStateSucceeded TaskState = "SUCCEEDED"
	TaskStateFailed    TaskState = "FAILED"
	// TaskStateSkipped means a dependency failed; the task never ran.
	TaskStateSkipped TaskState = "SKIPPED"
)

// String returns the string representation of the task state.
func (s TaskState) String() string {
	return string(s)
}

// IsTerminal returns true if the task is in a final state.
func (s TaskState) IsTerminal() bool {
	switch s {
	case TaskStateSucceeded, TaskStateFailed, TaskStateSkipped:
		return true
	}
	return false
}

// ValidTaskTransitions defines the allowed state transitions. A failed
// dependency moves a task straight from PENDING to SKIPPED; it never passes
// through RUNNING.
var ValidTaskTransitions = map[TaskState][]TaskState{
	TaskStatePending: {TaskStateReady, TaskStateSkipped},
	TaskStateReady:   {TaskStateRunning, TaskStateSkipped},
	TaskStateRunning: {TaskStateSucceeded, TaskStateFailed},
}

// CanTransitionTo returns true if moving from the current state to next is valid.
func (s TaskState) CanTransitionTo(next TaskState) bool {
	for _, allowed := range ValidTaskTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// RunState represents the lifecycle state of a whole job run.
type RunState string

const (
	RunStatePending   RunState = "PENDING"
	RunStateRunning   RunState = "RUNNING"
	RunStateCompleted RunState = "COMPLETED"
	RunStateFailed    RunState = "FAILED"
)

// String returns the string representation of the run state.
func (s RunState) String() string {
	return string(s)
}

// IsTerminal returns true if the run is in a final state.
func (s RunState) IsTerminal() bool {
	return s == RunStateCompleted || s == RunStateFailed
}
