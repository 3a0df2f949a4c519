package domain

import "time"

// Employer is a company identity shared across jobs.
type Employer struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Status    EmployerStatus `json:"status"`
	Notes     string         `json:"notes,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Snapshot is a captured copy of a job's raw text.
type Snapshot struct {
	ID         int64
	JobID      int64
	RawText    string
	CapturedAt time.Time
}
