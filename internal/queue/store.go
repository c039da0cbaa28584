package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"mediaproxy/internal/config"
)

// Store manages job persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the job database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "jobs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// NewJob inserts a pending job and returns the stored row.
func (s *Store) NewJob(ctx context.Context, sourcePaths []string, engine, deliverJSON string) (*Job, error) {
	if len(sourcePaths) == 0 {
		return nil, errors.New("at least one source path is required")
	}
	pathsJSON, err := json.Marshal(sourcePaths)
	if err != nil {
		return nil, fmt.Errorf("marshal source paths: %w", err)
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	jobUUID := uuid.NewString()

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (
            uuid, source_paths_json, engine, deliver_json, status,
            progress_percent, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		jobUUID,
		string(pathsJSON),
		engine,
		nullableString(deliverJSON),
		StatusPending,
		0.0,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a job by row identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// GetByUUID fetches a job by its public identifier.
func (s *Store) GetByUUID(ctx context.Context, jobUUID string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE uuid = ?`, jobUUID)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job by uuid: %w", err)
	}
	return job, nil
}

// List returns jobs filtered by status set (or all jobs when no status is provided).
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + jobColumns + ` FROM jobs`
	orderClause := ` ORDER BY created_at`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		rows, err = s.db.QueryContext(ctx, baseQuery+` WHERE status IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Start transitions a pending job to running. Starting a job in any other
// state is an illegal transition.
func (s *Store) Start(ctx context.Context, jobUUID string) (*Job, error) {
	job, err := s.GetByUUID(ctx, jobUUID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	if job.Status != StatusPending {
		return nil, fmt.Errorf("%w: cannot start job in status %q", ErrIllegalTransition, job.Status)
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs SET status = ?, started_at = ?, updated_at = ? WHERE uuid = ? AND status = ?`,
		StatusRunning,
		timestamp,
		timestamp,
		jobUUID,
		StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("start job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: job left pending state concurrently", ErrIllegalTransition)
	}
	return s.GetByUUID(ctx, jobUUID)
}

// UpdateProgress records engine-reported progress for a running job.
func (s *Store) UpdateProgress(ctx context.Context, jobUUID string, percent float64, message string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs SET progress_percent = ?, progress_message = ?, updated_at = ? WHERE uuid = ? AND status = ?`,
		percent,
		nullableString(message),
		now,
		jobUUID,
		StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		job, err := s.GetByUUID(ctx, jobUUID)
		if err != nil {
			return err
		}
		if job == nil {
			return ErrJobNotFound
		}
		return fmt.Errorf("%w: cannot record progress for job in status %q", ErrIllegalTransition, job.Status)
	}
	return nil
}

// Finish records a terminal status reported by the engine. Any terminal
// outcome is accepted for a job with a pending cancel request; cancellation
// is best-effort and the engine may complete first.
func (s *Store) Finish(ctx context.Context, jobUUID string, status Status, errorMessage string) (*Job, error) {
	if !status.IsTerminal() {
		return nil, fmt.Errorf("%w: %q is not a terminal status", ErrIllegalTransition, status)
	}
	job, err := s.GetByUUID(ctx, jobUUID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	if job.IsTerminal() {
		return nil, fmt.Errorf("%w: job already finished as %q", ErrIllegalTransition, job.Status)
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	percent := job.ProgressPercent
	if status == StatusCompleted {
		percent = 100
	}
	// The UPDATE is guarded on the current status so a concurrent terminal
	// report loses cleanly instead of overwriting the winner.
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs SET status = ?, error_message = ?, progress_percent = ?, finished_at = ?, updated_at = ? WHERE uuid = ? AND status IN (?, ?)`,
		status,
		nullableString(errorMessage),
		percent,
		timestamp,
		timestamp,
		jobUUID,
		StatusPending,
		StatusRunning,
	)
	if err != nil {
		return nil, fmt.Errorf("finish job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		current, err := s.GetByUUID(ctx, jobUUID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("%w: job already finished as %q", ErrIllegalTransition, current.Status)
	}
	return s.GetByUUID(ctx, jobUUID)
}

// RequestCancel flags a job for cancellation. The flag is advisory: the
// engine may already have finished, and whatever terminal state it reports
// stands.
func (s *Store) RequestCancel(ctx context.Context, jobUUID string) (*Job, error) {
	job, err := s.GetByUUID(ctx, jobUUID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	if job.IsTerminal() {
		return job, nil
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs SET cancel_requested = 1, updated_at = ? WHERE uuid = ? AND status IN (?, ?)`,
		now,
		jobUUID,
		StatusPending,
		StatusRunning,
	)
	if err != nil {
		return nil, fmt.Errorf("request cancel: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		// The engine finished while the request was in flight; the terminal
		// state stands and the cancel stays a no-op.
		current, err := s.GetByUUID(ctx, jobUUID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrJobNotFound
		}
		return current, nil
	}
	return s.GetByUUID(ctx, jobUUID)
}

// Stats returns a count of jobs grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Health aggregates queue state for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for status, count := range stats {
		health.Total += count
		switch status {
		case StatusPending:
			health.Pending += count
		case StatusRunning:
			health.Running += count
		case StatusCompleted:
			health.Completed += count
		case StatusFailed:
			health.Failed += count
		case StatusCancelled:
			health.Cancelled += count
		}
	}
	return health, nil
}

// Reset removes all jobs from the queue.
func (s *Store) Reset(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs`)
	if err != nil {
		return 0, fmt.Errorf("reset queue: %w", err)
	}
	return res.RowsAffected()
}

// ClearCompleted removes only completed jobs.
func (s *Store) ClearCompleted(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE status = ?`, StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return res.RowsAffected()
}

const jobColumns = "id, uuid, source_paths_json, engine, deliver_json, status, error_message, progress_percent, progress_message, cancel_requested, created_at, updated_at, started_at, finished_at"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id              int64
		jobUUID         string
		sourcePaths     string
		engine          string
		deliver         sql.NullString
		statusStr       string
		errorMessage    sql.NullString
		progressPercent sql.NullFloat64
		progressMessage sql.NullString
		cancelRequested sql.NullInt64
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
		startedRaw      sql.NullString
		finishedRaw     sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&jobUUID,
		&sourcePaths,
		&engine,
		&deliver,
		&statusStr,
		&errorMessage,
		&progressPercent,
		&progressMessage,
		&cancelRequested,
		&createdRaw,
		&updatedRaw,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:              id,
		UUID:            jobUUID,
		SourcePathsJSON: sourcePaths,
		Engine:          engine,
		DeliverJSON:     deliver.String,
		Status:          Status(statusStr),
		ErrorMessage:    errorMessage.String,
		ProgressPercent: progressPercent.Float64,
		ProgressMessage: progressMessage.String,
		CancelRequested: cancelRequested.Valid && cancelRequested.Int64 != 0,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	if startedRaw.Valid {
		if started, err := parseTimeString(startedRaw.String); err == nil {
			job.StartedAt = &started
		}
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			job.FinishedAt = &finished
		}
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
