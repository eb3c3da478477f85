package store

import (
	"context"

	"github.com/me/ligflow/pkg/model"
)

// Store is the run ledger: every workflow execution and every task state
// transition is persisted so `status` and the HTTP API can report on runs
// after the fact.
type Store interface {
	// Run lifecycle
	CreateRun(ctx context.Context, run *model.Run) error
	GetRun(ctx context.Context, id string) (*model.Run, error)
	ListRuns(ctx context.Context, opts model.ListOptions) ([]*model.Run, int, error)
	UpdateRun(ctx context.Context, run *model.Run) error

	// Task records
	CreateTaskRecord(ctx context.Context, rec *model.TaskRecord) error
	GetTaskRecord(ctx context.Context, id string) (*model.TaskRecord, error)
	ListTasksByRun(ctx context.Context, runID string) ([]*model.TaskRecord, error)
	UpdateTaskRecord(ctx context.Context, rec *model.TaskRecord) error

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
