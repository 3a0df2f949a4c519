package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jcii/hunt/internal/domain"
	"github.com/jcii/hunt/internal/normalize"
)

const employerColumns = `id, name, status, notes, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployer(s scanner) (domain.Employer, error) {
	var (
		e                domain.Employer
		status           string
		created, updated string
	)
	if err := s.Scan(&e.ID, &e.Name, &status, &e.Notes, &created, &updated); err != nil {
		return domain.Employer{}, err
	}
	st, err := domain.ParseEmployerStatus(status)
	if err != nil {
		return domain.Employer{}, err
	}
	e.Status = st
	e.CreatedAt = parseTime(created)
	e.UpdatedAt = parseTime(updated)
	return e, nil
}

// FindEmployer looks an employer up by name, ignoring case and punctuation.
func (t *Tx) FindEmployer(ctx context.Context, name string) (domain.Employer, error) {
	key := normalize.EmployerKey(name)
	row := t.tx.QueryRowContext(ctx, `SELECT `+employerColumns+` FROM employers WHERE name_key = ?;`, key)
	e, err := scanEmployer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Employer{}, fmt.Errorf("employer %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return domain.Employer{}, fmt.Errorf("find employer: %w", err)
	}
	return e, nil
}

// ResolveEmployer returns the employer with the given name, creating it with
// status ok on first reference.
func (t *Tx) ResolveEmployer(ctx context.Context, name string) (domain.Employer, error) {
	name = strings.TrimSpace(name)
	e, err := t.FindEmployer(ctx, name)
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return domain.Employer{}, err
	}
	if normalize.EmployerKey(name) == "" {
		return domain.Employer{}, fmt.Errorf("%w: empty employer name", domain.ErrMalformedCandidate)
	}

	now := t.timestamp()
	res, err := t.tx.ExecContext(ctx, `
INSERT INTO employers (name, name_key, status, notes, created_at, updated_at)
VALUES (?, ?, ?, '', ?, ?);`,
		name, normalize.EmployerKey(name), domain.EmployerOK.String(), now, now,
	)
	if err != nil {
		return domain.Employer{}, fmt.Errorf("insert employer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Employer{}, fmt.Errorf("insert employer: %w", err)
	}
	return t.EmployerByID(ctx, id)
}

func (t *Tx) EmployerByID(ctx context.Context, id int64) (domain.Employer, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+employerColumns+` FROM employers WHERE id = ?;`, id)
	e, err := scanEmployer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Employer{}, fmt.Errorf("employer %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Employer{}, fmt.Errorf("get employer: %w", err)
	}
	return e, nil
}

// ListEmployers returns all employers ordered by name.
func (t *Tx) ListEmployers(ctx context.Context) ([]domain.Employer, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT `+employerColumns+` FROM employers ORDER BY name_key;`)
	if err != nil {
		return nil, fmt.Errorf("list employers: %w", err)
	}
	defer rows.Close()

	var out []domain.Employer
	for rows.Next() {
		e, err := scanEmployer(rows)
		if err != nil {
			return nil, fmt.Errorf("list employers: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SetEmployerStatus changes an employer's status. A nil notes leaves the notes as they are.
func (t *Tx) SetEmployerStatus(ctx context.Context, id int64, status domain.EmployerStatus, notes *string) (domain.Employer, error) {
	query := `UPDATE employers SET status = ?, updated_at = ? WHERE id = ?;`
	args := []any{status.String(), t.timestamp(), id}
	if notes != nil {
		query = `UPDATE employers SET status = ?, notes = ?, updated_at = ? WHERE id = ?;`
		args = []any{status.String(), *notes, t.timestamp(), id}
	}

	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return domain.Employer{}, fmt.Errorf("update employer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Employer{}, fmt.Errorf("employer %d: %w", id, ErrNotFound)
	}
	return t.EmployerByID(ctx, id)
}
