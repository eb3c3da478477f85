package model

import "testing"

func TestTaskState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    TaskState
		terminal bool
	}{
		{TaskStatePending, false},
		{TaskStateReady, false},
		{TaskStateRunning, false},
		{TaskStateSucceeded, true},
		{TaskStateFailed, true},
		{TaskStateSkipped, true},
	}
	for _, tt := range tests {
		if got := tt.state.IsTerminal(); got != tt.terminal {
			t.Errorf("TaskState(%q).IsTerminal() = %v, want %v", tt.state, got, tt.terminal)
		}
	}
}

func TestTaskState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from  TaskState
		to    TaskState
		valid bool
	}{
		// Valid transitions
		{TaskStatePending, TaskStateReady, true},
		{TaskStatePending, TaskStateSkipped, true},
		{TaskStateReady, TaskStateRunning, true},
		{TaskStateReady, TaskStateSkipped, true},
		{TaskStateRunning, TaskStateSucceeded, true},
		{TaskStateRunning, TaskStateFailed, true},

		// Invalid transitions
		{TaskStatePending, TaskStateRunning, false},
		{TaskStatePending, TaskStateSucceeded, false},
		{TaskStateRunning, TaskStateSkipped, false},
		{TaskStateFailed, TaskStateRunning, false},
		{TaskStateSkipped, TaskStateReady, false},
		{TaskStateSucceeded, TaskStatePending, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.valid {
			t.Errorf("TaskState(%q).CanTransitionTo(%q) = %v, want %v", tt.from, tt.to, got, tt.valid)
		}
	}
}

func TestRunState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    RunState
		terminal bool
	}{
		{RunStatePending, false},
		{RunStateRunning, false},
		{RunStateCompleted, true},
		{RunStateFailed, true},
	}
	for _, tt := range tests {
		if got := tt.state.IsTerminal(); got != tt.terminal {
			t.Errorf("RunState(%q).IsTerminal() = %v, want %v", tt.state, got, tt.terminal)
		}
	}
}
