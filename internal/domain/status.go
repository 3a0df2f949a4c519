package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownStatus is returned when a status name cannot be parsed.
	ErrUnknownStatus = errors.New("unknown status")
	// ErrInvalidTransition is returned when a job status change does not match
	// the current state or is not an edge of the status graph.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Status is the lifecycle state of a tracked job.
type Status int

const (
	StatusNew Status = iota + 1
	StatusReviewing
	StatusApplied
	StatusRejected
	StatusClosed
)

var statusNames = map[Status]string{
	StatusNew:       "new",
	StatusReviewing: "reviewing",
	StatusApplied:   "applied",
	StatusRejected:  "rejected",
	StatusClosed:    "closed",
}

// transitions lists the allowed edges: the lifecycle new, reviewing, applied,
// then rejected or closed, plus early exits to rejected or closed from new and
// reviewing. rejected and closed are terminal.
var transitions = map[Status][]Status{
	StatusNew:       {StatusReviewing, StatusRejected, StatusClosed},
	StatusReviewing: {StatusApplied, StatusRejected, StatusClosed},
	StatusApplied:   {StatusRejected, StatusClosed},
}

// Statuses returns every job status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusNew, StatusReviewing, StatusApplied, StatusRejected, StatusClosed}
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// ParseStatus converts a status name into a Status.
func ParseStatus(name string) (Status, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStatus, name)
}

// CanTransition reports whether the graph has an edge from s to next.
func (s Status) CanTransition(next Status) bool {
	for _, to := range transitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

// Transition validates a requested change from -> to against the current state.
// The returned status is the new state; on error the current state is unchanged.
func Transition(current, from, to Status) (Status, error) {
	if from != current {
		return current, fmt.Errorf("%w: job is %s, not %s", ErrInvalidTransition, current, from)
	}
	if !current.CanTransition(to) {
		return current, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, to)
	}
	return to, nil
}

// EmployerStatus is the user's trust verdict on an employer.
type EmployerStatus int

const (
	EmployerOK EmployerStatus = iota + 1
	EmployerYuck
	EmployerNever
)

var employerStatusNames = map[EmployerStatus]string{
	EmployerOK:    "ok",
	EmployerYuck:  "yuck",
	EmployerNever: "never",
}

func (s EmployerStatus) String() string {
	if name, ok := employerStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("employer_status(%d)", int(s))
}

// ParseEmployerStatus converts an employer status name into an EmployerStatus.
func ParseEmployerStatus(name string) (EmployerStatus, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range employerStatusNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: employer %q", ErrUnknownStatus, name)
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStatus, int(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s EmployerStatus) MarshalText() ([]byte, error) {
	if _, ok := employerStatusNames[s]; !ok {
		return nil, fmt.Errorf("%w: employer %d", ErrUnknownStatus, int(s))
	}
	return []byte(s.String()), nil
}

func (s *EmployerStatus) UnmarshalText(b []byte) error {
	parsed, err := ParseEmployerStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
