package model

import "time"

// Run is one recorded workflow execution.
type Run struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	State       RunState   `json:"state"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TaskRecord is the persisted trace of one task in a run. Command and
// ExitCode are only set for tasks that spawned an external process; Reason
// holds the failure or skip explanation of a FAILED or SKIPPED task.
type TaskRecord struct {
	ID          string     `json:"id"`
	RunID       string     `json:"run_id"`
	Name        string     `json:"name"`
	State       TaskState  `json:"state"`
	Cores       int        `json:"cores"`
	Command     string     `json:"command,omitempty"`
	ExitCode    *int       `json:"exit_code,omitempty"`
	Reason      string     `json:"reason,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
