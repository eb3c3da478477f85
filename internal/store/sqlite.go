package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/ligflow/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a
// Store. Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

func parseTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// --- Run lifecycle ---

func (s *SQLiteStore) CreateRun(ctx context.Context, run *model.Run) error {
	s.logger.Debug("sql", "op", "insert", "table", "runs", "id", run.ID)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, name, state, created_at, completed_at)
		 VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Name, string(run.State),
		run.CreatedAt.Format(time.RFC3339Nano), formatTime(run.CompletedAt),
	)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	s.logger.Debug("sql", "op", "select", "table", "runs", "id", id)

	var run model.Run
	var state, createdAt string
	var completedAt sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, state, created_at, completed_at FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.Name, &state, &createdAt, &completedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	run.State = model.RunState(state)
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	run.CompletedAt = parseTime(completedAt)
	return &run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, opts model.ListOptions) ([]*model.Run, int, error) {
	s.logger.Debug("sql", "op", "list", "table", "runs", "limit", opts.Limit, "offset", opts.Offset)
	opts.Clamp()

	where, args := "", []any{}
	if opts.State != "" {
		where = " WHERE state = ?"
		args = append(args, opts.State)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, state, created_at, completed_at FROM runs`+where+
			` ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		append(args, opts.Limit, opts.Offset)...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		var run model.Run
		var state, createdAt string
		var completedAt sql.NullString

		if err := rows.Scan(&run.ID, &run.Name, &state, &createdAt, &completedAt); err != nil {
			return nil, 0, err
		}
		run.State = model.RunState(state)
		run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		run.CompletedAt = parseTime(completedAt)
		runs = append(runs, &run)
	}
	return runs, total, rows.Err()
}

func (s *SQLiteStore) UpdateRun(ctx context.Context, run *model.Run) error {
	s.logger.Debug("sql", "op", "update", "table", "runs", "id", run.ID, "state", run.State)

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET name = ?, state = ?, completed_at = ? WHERE id = ?`,
		run.Name, string(run.State), formatTime(run.CompletedAt), run.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s: not found", run.ID)
	}
	return nil
}

// --- Task records ---

func (s *SQLiteStore) CreateTaskRecord(ctx context.Context, rec *model.TaskRecord) error {
	s.logger.Debug("sql", "op", "insert", "table", "tasks", "id", rec.ID)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, run_id, name, state, cores, command, exit_code, reason, created_at, started_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RunID, rec.Name, string(rec.State), rec.Cores,
		rec.Command, rec.ExitCode, rec.Reason,
		rec.CreatedAt.Format(time.RFC3339Nano), formatTime(rec.StartedAt), formatTime(rec.CompletedAt),
	)
	return err
}

func (s *SQLiteStore) GetTaskRecord(ctx context.Context, id string) (*model.TaskRecord, error) {
	s.logger.Debug("sql", "op", "select", "table", "tasks", "id", id)

	rec, err := scanTaskRecord(s.db.QueryRowContext(ctx,
		`SELECT id, run_id, name, state, cores, command, exit_code, reason, created_at, started_at, completed_at
		 FROM tasks WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

func (s *SQLiteStore) ListTasksByRun(ctx context.Context, runID string) ([]*model.TaskRecord, error) {
	s.logger.Debug("sql", "op", "list", "table", "tasks", "run_id", runID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, name, state, cores, command, exit_code, reason, created_at, started_at, completed_at
		 FROM tasks WHERE run_id = ? ORDER BY created_at, name`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*model.TaskRecord
	for rows.Next() {
		rec, err := scanTaskRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) UpdateTaskRecord(ctx context.Context, rec *model.TaskRecord) error {
	s.logger.Debug("sql", "op", "update", "table", "tasks", "id", rec.ID, "state", rec.State)

	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET state = ?, command = ?, exit_code = ?, reason = ?, started_at = ?, completed_at = ?
		 WHERE id = ?`,
		string(rec.State), rec.Command, rec.ExitCode, rec.Reason,
		formatTime(rec.StartedAt), formatTime(rec.CompletedAt), rec.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("task %s: not found", rec.ID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTaskRecord(row rowScanner) (*model.TaskRecord, error) {
	var rec model.TaskRecord
	var state, createdAt string
	var exitCode sql.NullInt64
	var startedAt, completedAt sql.NullString

	if err := row.Scan(&rec.ID, &rec.RunID, &rec.Name, &state, &rec.Cores,
		&rec.Command, &exitCode, &rec.Reason, &createdAt, &startedAt, &completedAt); err != nil {
		return nil, err
	}

	rec.State = model.TaskState(state)
	if exitCode.Valid {
		code := int(exitCode.Int64)
		rec.ExitCode = &code
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	rec.StartedAt = parseTime(startedAt)
	rec.CompletedAt = parseTime(completedAt)
	return &rec, nil
}
