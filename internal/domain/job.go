package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMalformedCandidate is returned for candidates missing a required field.
var ErrMalformedCandidate = errors.New("malformed candidate")

// PayRange is an optional stated pay range. Zero means "not stated".
type PayRange struct {
	Min int64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max int64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// IsZero reports whether no pay was stated.
func (p PayRange) IsZero() bool { return p.Min == 0 && p.Max == 0 }

// Highest returns the largest stated amount.
func (p PayRange) Highest() int64 {
	if p.Max > p.Min {
		return p.Max
	}
	return p.Min
}

// Ordered returns the range with Min <= Max when both are stated.
func (p PayRange) Ordered() PayRange {
	if p.Min > 0 && p.Max > 0 && p.Min > p.Max {
		return PayRange{Min: p.Max, Max: p.Min}
	}
	return p
}

func (p PayRange) String() string {
	switch {
	case p.IsZero():
		return ""
	case p.Min > 0 && p.Max > 0:
		return fmt.Sprintf("%d-%d", p.Min, p.Max)
	case p.Max > 0:
		return fmt.Sprintf("up to %d", p.Max)
	default:
		return fmt.Sprintf("from %d", p.Min)
	}
}

// Job is a tracked posting. ID is assigned by the record store.
type Job struct {
	ID          int64     `json:"id"`
	EmployerID  int64     `json:"employer_id"`
	Title       string    `json:"title"`
	URL         string    `json:"url,omitempty"`
	JobCode     string    `json:"job_code,omitempty"`
	Pay         PayRange  `json:"pay"`
	Status      Status    `json:"status"`
	Source      string    `json:"source,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// EmployerName is filled by the store on reads for display and matching.
	EmployerName string `json:"employer,omitempty"`
}

// Candidate is an unvalidated posting produced by an ingestion collaborator.
type Candidate struct {
	Title       string   `mapstructure:"title" yaml:"title"`
	Employer    string   `mapstructure:"employer" yaml:"employer"`
	URL         string   `mapstructure:"url" yaml:"url"`
	JobCode     string   `mapstructure:"job_code" yaml:"job_code"`
	Pay         PayRange `mapstructure:"pay" yaml:"pay"`
	Description string   `mapstructure:"description" yaml:"description"`
	Source      string   `mapstructure:"source" yaml:"source"`
}

// Validate checks the required fields.
func (c Candidate) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(c.Employer) == "" {
		missing = append(missing, "employer")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMalformedCandidate, strings.Join(missing, ", "))
	}
	return nil
}

// JobPatch lists the fields a merge writes into an existing job. Nil means untouched.
type JobPatch struct {
	URL         *string
	JobCode     *string
	Pay         *PayRange
	Description *string
}

// IsEmpty reports whether the patch changes nothing.
func (p JobPatch) IsEmpty() bool {
	return p.URL == nil && p.JobCode == nil && p.Pay == nil && p.Description == nil
}

// Fields returns the names of the fields the patch touches.
func (p JobPatch) Fields() []string {
	var out []string
	if p.URL != nil {
		out = append(out, "url")
	}
	if p.JobCode != nil {
		out = append(out, "job_code")
	}
	if p.Pay != nil {
		out = append(out, "pay")
	}
	if p.Description != nil {
		out = append(out, "description")
	}
	return out
}

// Apply returns a copy of j with the patch written over it.
func (p JobPatch) Apply(j Job) Job {
	if p.URL != nil {
		j.URL = *p.URL
	}
	if p.JobCode != nil {
		j.JobCode = *p.JobCode
	}
	if p.Pay != nil {
		j.Pay = *p.Pay
	}
	if p.Description != nil {
		j.Description = *p.Description
	}
	return j
}

// JobFilter narrows a job listing. Zero values mean "any".
type JobFilter struct {
	Status     Status
	EmployerID int64
}
