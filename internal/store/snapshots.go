package store

import (
	"context"
	"fmt"

	"github.com/jcii/hunt/internal/domain"
)

func (t *Tx) InsertSnapshot(ctx context.Context, jobID int64, raw string) (domain.Snapshot, error) {
	now := t.timestamp()
	res, err := t.tx.ExecContext(ctx, `INSERT INTO job_snapshots (job_id, raw_text, captured_at) VALUES (?, ?, ?);`,
		jobID, raw, now)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}
	return domain.Snapshot{ID: id, JobID: jobID, RawText: raw, CapturedAt: parseTime(now)}, nil
}

// ListSnapshots returns a job's snapshots, oldest first.
func (t *Tx) ListSnapshots(ctx context.Context, jobID int64) ([]domain.Snapshot, error) {
	rows, err := t.tx.QueryContext(ctx, `
SELECT id, job_id, raw_text, captured_at
FROM job_snapshots
WHERE job_id = ?
ORDER BY id;`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []domain.Snapshot
	for rows.Next() {
		var (
			s        domain.Snapshot
			captured string
		)
		if err := rows.Scan(&s.ID, &s.JobID, &s.RawText, &captured); err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		s.CapturedAt = parseTime(captured)
		out = append(out, s)
	}
	return out, rows.Err()
}
