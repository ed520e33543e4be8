package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"distill/internal/pipeline"
)

// Record is one persisted job row.
type Record struct {
	ID           string          `json:"id"`
	SourcePath   string          `json:"source_path"`
	Status       pipeline.Status `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
	ReportJSON   string          `json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

const timeFormat = time.RFC3339Nano

// CreateJob inserts a new job row. Implements pipeline.Store.
func (s *Store) CreateJob(ctx context.Context, job *pipeline.Job) error {
	now := job.CreatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO jobs (id, source_path, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		job.ID, job.SourcePath, string(job.Status), now.Format(timeFormat), now.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// UpdateStatus moves a job to a new status, recording the failure reason
// for terminal failures. Implements pipeline.Store.
func (s *Store) UpdateStatus(ctx context.Context, id string, status pipeline.Status, errorMessage string) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE jobs SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		string(status), errorMessage, time.Now().UTC().Format(timeFormat), id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update status: %w: %s", ErrNotFound, id)
	}
	return nil
}

// SaveReport stores the final report JSON. Implements pipeline.Store.
func (s *Store) SaveReport(ctx context.Context, id string, report []byte) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE jobs SET report = ?, updated_at = ? WHERE id = ?`,
		string(report), time.Now().UTC().Format(timeFormat), id)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("save report: %w: %s", ErrNotFound, id)
	}
	return nil
}

// GetJob fetches one job by ID.
func (s *Store) GetJob(ctx context.Context, id string) (Record, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source_path, status, error_message, report, created_at, updated_at FROM jobs WHERE id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("get job: %w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get job: %w", err)
	}
	return record, nil
}

// ListJobs returns jobs in reverse creation order, newest first. A zero
// limit returns everything.
func (s *Store) ListJobs(ctx context.Context, limit int) ([]Record, error) {
	ctx = ensureContext(ctx)
	query := `SELECT id, source_path, status, error_message, report, created_at, updated_at FROM jobs ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list jobs: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return records, nil
}

// Clear deletes every job row and returns the number removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM jobs`)
	if err != nil {
		return 0, fmt.Errorf("clear jobs: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear jobs: %w", err)
	}
	return affected, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		record             Record
		status             string
		createdAt, updated string
	)
	if err := row.Scan(&record.ID, &record.SourcePath, &status, &record.ErrorMessage, &record.ReportJSON, &createdAt, &updated); err != nil {
		return Record{}, err
	}
	record.Status = pipeline.Status(status)
	if parsed, err := time.Parse(timeFormat, createdAt); err == nil {
		record.CreatedAt = parsed
	}
	if parsed, err := time.Parse(timeFormat, updated); err == nil {
		record.UpdatedAt = parsed
	}
	return record, nil
}
