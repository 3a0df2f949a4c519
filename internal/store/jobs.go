package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jcii/hunt/internal/domain"
)

const jobSelect = `
SELECT j.id, j.employer_id, e.name, j.title, j.url, j.job_code, j.source, j.status,
       j.pay_min, j.pay_max, j.description, j.created_at, j.updated_at
FROM jobs j
JOIN employers e ON e.id = j.employer_id`

func scanJob(s scanner) (domain.Job, error) {
	var (
		j                domain.Job
		status           string
		payMin, payMax   sql.NullInt64
		created, updated string
	)
	if err := s.Scan(
		&j.ID,
		&j.EmployerID,
		&j.EmployerName,
		&j.Title,
		&j.URL,
		&j.JobCode,
		&j.Source,
		&status,
		&payMin,
		&payMax,
		&j.Description,
		&created,
		&updated,
	); err != nil {
		return domain.Job{}, err
	}

	st, err := domain.ParseStatus(status)
	if err != nil {
		return domain.Job{}, err
	}
	j.Status = st
	j.Pay = domain.PayRange{Min: payMin.Int64, Max: payMax.Int64}
	j.CreatedAt = parseTime(created)
	j.UpdatedAt = parseTime(updated)
	return j, nil
}

func nullPay(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

// ListJobs returns jobs matching f ordered by id.
func (t *Tx) ListJobs(ctx context.Context, f domain.JobFilter) ([]domain.Job, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != 0 {
		where = append(where, "j.status = ?")
		args = append(args, f.Status.String())
	}
	if f.EmployerID != 0 {
		where = append(where, "j.employer_id = ?")
		args = append(args, f.EmployerID)
	}

	query := jobSelect
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	query += "\nORDER BY j.id;"

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("list jobs: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (t *Tx) GetJob(ctx context.Context, id int64) (domain.Job, error) {
	row := t.tx.QueryRowContext(ctx, jobSelect+"\nWHERE j.id = ?;", id)
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Job{}, fmt.Errorf("job %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Job{}, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

// InsertJob stores j and returns it with its id and timestamps.
// j.EmployerID must reference an existing employer.
func (t *Tx) InsertJob(ctx context.Context, j domain.Job) (domain.Job, error) {
	if j.Status == 0 {
		j.Status = domain.StatusNew
	}
	now := t.timestamp()
	res, err := t.tx.ExecContext(ctx, `
INSERT INTO jobs (employer_id, title, url, job_code, source, status, pay_min, pay_max, description, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		j.EmployerID, j.Title, j.URL, j.JobCode, j.Source, j.Status.String(),
		nullPay(j.Pay.Min), nullPay(j.Pay.Max), j.Description, now, now,
	)
	if err != nil {
		return domain.Job{}, fmt.Errorf("insert job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Job{}, fmt.Errorf("insert job: %w", err)
	}
	return t.GetJob(ctx, id)
}

// UpdateJob writes the patch fields into job id.
func (t *Tx) UpdateJob(ctx context.Context, id int64, p domain.JobPatch) (domain.Job, error) {
	if p.IsEmpty() {
		return t.GetJob(ctx, id)
	}

	var (
		set  []string
		args []any
	)
	if p.URL != nil {
		set = append(set, "url = ?")
		args = append(args, *p.URL)
	}
	if p.JobCode != nil {
		set = append(set, "job_code = ?")
		args = append(args, *p.JobCode)
	}
	if p.Pay != nil {
		set = append(set, "pay_min = ?", "pay_max = ?")
		args = append(args, nullPay(p.Pay.Min), nullPay(p.Pay.Max))
	}
	if p.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *p.Description)
	}
	set = append(set, "updated_at = ?")
	args = append(args, t.timestamp(), id)

	res, err := t.tx.ExecContext(ctx, `UPDATE jobs SET `+strings.Join(set, ", ")+` WHERE id = ?;`, args...)
	if err != nil {
		return domain.Job{}, fmt.Errorf("update job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Job{}, fmt.Errorf("job %d: %w", id, ErrNotFound)
	}
	return t.GetJob(ctx, id)
}

// SetJobStatus stores a status already validated by the caller.
func (t *Tx) SetJobStatus(ctx context.Context, id int64, status domain.Status) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?;`,
		status.String(), t.timestamp(), id)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("job %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteJob purges a job and its snapshots.
func (t *Tx) DeleteJob(ctx context.Context, id int64) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("job %d: %w", id, ErrNotFound)
	}
	return nil
}
