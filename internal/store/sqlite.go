package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cpu-sched/cpu-sched/sim"

	_ "modernc.org/sqlite"
)

var _ Store = (*SQLiteStore)(nil)

// timeLayout is fixed-width so that created_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *logrus.Entry
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// A single connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

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
		logger: logrus.WithField("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("migrate")
	return migrate(ctx, s.db)
}

// SaveRun inserts a run and its processes in one transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run) error {
	s.logger.WithField("id", run.ID).Debug("insert run")

	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, label, policy, quantum, aging_enabled, aging_threshold, summary, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Label, run.Policy, run.Quantum, boolToInt(run.AgingEnabled), run.AgingThreshold,
		string(summaryJSON), run.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for seq, p := range run.Processes {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_processes (run_id, seq, process_id, name, arrival_time, burst_time, priority,
			   start_time, completion_time, waiting_time, turnaround_time, response_time)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, seq, p.ID, p.Name, p.ArrivalTime, p.BurstTime, p.Priority,
			p.StartTime, p.CompletionTime, p.WaitingTime, p.TurnaroundTime, p.ResponseTime)
		if err != nil {
			return fmt.Errorf("insert process %d: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// GetRun returns the run with the given ID, or nil if none exists.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	s.logger.WithField("id", id).Debug("select run")

	run, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT id, label, policy, quantum, aging_enabled, aging_threshold, summary, created_at
		 FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT process_id, name, arrival_time, burst_time, priority, start_time, completion_time,
		   waiting_time, turnaround_time, response_time
		 FROM run_processes WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("select processes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p sim.FinishedEntry
		if err := rows.Scan(&p.ID, &p.Name, &p.ArrivalTime, &p.BurstTime, &p.Priority, &p.StartTime,
			&p.CompletionTime, &p.WaitingTime, &p.TurnaroundTime, &p.ResponseTime); err != nil {
			return nil, fmt.Errorf("scan process: %w", err)
		}
		run.Processes = append(run.Processes, p)
	}
	return run, rows.Err()
}

// ListRuns returns runs newest first, without their per-process rows.
func (s *SQLiteStore) ListRuns(ctx context.Context, opts ListOptions) ([]*Run, error) {
	opts.Clamp()
	s.logger.WithFields(logrus.Fields{"limit": opts.Limit, "offset": opts.Offset}).Debug("list runs")

	query := `SELECT id, label, policy, quantum, aging_enabled, aging_threshold, summary, created_at FROM runs`
	args := []any{}
	if opts.Policy != "" {
		query += ` WHERE policy = ?`
		args = append(args, opts.Policy)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run and, through the foreign key, its processes.
func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	s.logger.WithField("id", id).Debug("delete run")
	_, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var agingEnabled int
	var summaryJSON, createdAt string
	if err := row.Scan(&run.ID, &run.Label, &run.Policy, &run.Quantum, &agingEnabled, &run.AgingThreshold,
		&summaryJSON, &createdAt); err != nil {
		return nil, err
	}
	run.AgingEnabled = agingEnabled != 0
	if err := json.Unmarshal([]byte(summaryJSON), &run.Summary); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}
	created, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("run %s: parse created_at: %w", run.ID, err)
	}
	run.CreatedAt = created
	return &run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
