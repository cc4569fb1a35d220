package report

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLStore persists reports in PostgreSQL.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates a report store backed by the given database handle.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Create inserts a report. The category is validated against the allowed
// set before insertion.
func (s *SQLStore) Create(ctx context.Context, r *Report) error {
	if !validCategories[r.Category] {
		return fmt.Errorf("report: invalid category %q", r.Category)
	}

	const query = `
		INSERT INTO moderation_reports
			(id, message_id, reporter_id, reported_user_id, reason, category, description, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.db.ExecContext(ctx, query,
		r.ID,
		r.MessageID,
		r.ReporterID,
		r.ReportedUserID,
		r.Reason,
		r.Category,
		r.Description,
		r.Status,
		r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("report: insert: %w", err)
	}
	return nil
}

// Update rewrites the disposition fields of an existing report.
func (s *SQLStore) Update(ctx context.Context, r *Report) error {
	const query = `
		UPDATE moderation_reports
		SET status = $2, reviewed_at = $3, reviewed_by = $4, resolution = $5
		WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, r.ID, r.Status, r.ReviewedAt, r.ReviewedBy, r.Resolution)
	if err != nil {
		return fmt.Errorf("report: update: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("report: unknown id %q", r.ID)
	}
	return nil
}

// Get fetches one report by id.
func (s *SQLStore) Get(ctx context.Context, id string) (*Report, error) {
	const query = selectColumns + ` WHERE id = $1`

	r, err := scanReport(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("report: get %s: %w", id, err)
	}
	return r, nil
}

// List returns reports with the given status, or all reports when status
// is empty, newest first.
func (s *SQLStore) List(ctx context.Context, status string) ([]Report, error) {
	query := selectColumns
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("report: list: %w", err)
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("report: list scan: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("report: list rows: %w", err)
	}
	return out, nil
}

const selectColumns = `
	SELECT id, message_id, reporter_id, reported_user_id, reason, category,
	       COALESCE(description, ''), status, created_at, reviewed_at,
	       COALESCE(reviewed_by, ''), COALESCE(resolution, '')
	FROM moderation_reports`

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (*Report, error) {
	var r Report
	var reviewedAt sql.NullTime
	err := row.Scan(
		&r.ID,
		&r.MessageID,
		&r.ReporterID,
		&r.ReportedUserID,
		&r.Reason,
		&r.Category,
		&r.Description,
		&r.Status,
		&r.CreatedAt,
		&reviewedAt,
		&r.ReviewedBy,
		&r.Resolution,
	)
	if err != nil {
		return nil, err
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		r.ReviewedAt = &t
	}
	return &r, nil
}
