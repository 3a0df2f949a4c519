package domain

import (
	"errors"
	"testing"
)

func TestTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		current Status
		from    Status
		to      Status
		wantErr bool
	}{
		{name: "new to reviewing", current: StatusNew, from: StatusNew, to: StatusReviewing},
		{name: "reviewing to applied", current: StatusReviewing, from: StatusReviewing, to: StatusApplied},
		{name: "applied to rejected", current: StatusApplied, from: StatusApplied, to: StatusRejected},
		{name: "applied to closed", current: StatusApplied, from: StatusApplied, to: StatusClosed},
		{name: "new closed early", current: StatusNew, from: StatusNew, to: StatusClosed},
		{name: "source does not match current", current: StatusReviewing, from: StatusNew, to: StatusReviewing, wantErr: true},
		{name: "skipping applied is not an edge", current: StatusNew, from: StatusNew, to: StatusApplied, wantErr: true},
		{name: "terminal rejected", current: StatusRejected, from: StatusRejected, to: StatusNew, wantErr: true},
		{name: "terminal closed", current: StatusClosed, from: StatusClosed, to: StatusApplied, wantErr: true},
		{name: "backwards", current: StatusApplied, from: StatusApplied, to: StatusReviewing, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Transition(tt.current, tt.from, tt.to)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("expected ErrInvalidTransition, got %v", err)
				}
				if got != tt.current {
					t.Fatalf("state changed on error: %s -> %s", tt.current, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.to {
				t.Fatalf("expected %s, got %s", tt.to, got)
			}
		})
	}
}

func TestTransitionEdges(t *testing.T) {
	t.Parallel()

	type edge struct{ from, to Status }
	lifecycle := []edge{
		{StatusNew, StatusReviewing},
		{StatusReviewing, StatusApplied},
		{StatusApplied, StatusRejected},
		{StatusApplied, StatusClosed},
	}
	earlyExits := []edge{
		{StatusNew, StatusRejected},
		{StatusNew, StatusClosed},
		{StatusReviewing, StatusRejected},
		{StatusReviewing, StatusClosed},
	}

	allowed := map[edge]bool{}
	for _, e := range append(lifecycle, earlyExits...) {
		allowed[e] = true
	}

	for _, from := range Statuses() {
		for _, to := range Statuses() {
			_, err := Transition(from, from, to)
			if allowed[edge{from, to}] {
				if err != nil {
					t.Fatalf("%s -> %s must be allowed: %v", from, to, err)
				}
				continue
			}
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("%s -> %s must be rejected, got %v", from, to, err)
			}
		}
	}
}

func TestEveryStatusReachableFromNew(t *testing.T) {
	seen := map[Status]bool{StatusNew: true}
	queue := []Status{StatusNew}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, next := range transitions[s] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}

	for _, s := range Statuses() {
		if !seen[s] {
			t.Fatalf("status %s is not reachable from new", s)
		}
	}

	if !StatusRejected.Terminal() || !StatusClosed.Terminal() {
		t.Fatalf("expected rejected and closed to be terminal")
	}
	if StatusApplied.Terminal() {
		t.Fatalf("applied must not be terminal")
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses() {
		got, err := ParseStatus(" " + s.String() + " ")
		if err != nil {
			t.Fatalf("parse %s: %v", s, err)
		}
		if got != s {
			t.Fatalf("expected %s, got %s", s, got)
		}
	}

	if _, err := ParseStatus("archived"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}

	es, err := ParseEmployerStatus("NEVER")
	if err != nil || es != EmployerNever {
		t.Fatalf("expected never, got %v (%v)", es, err)
	}
}

func TestCandidateValidate(t *testing.T) {
	t.Parallel()

	if err := (Candidate{Title: "DevOps Engineer", Employer: "Acme"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := Candidate{Title: "  ", Employer: ""}.Validate()
	if !errors.Is(err, ErrMalformedCandidate) {
		t.Fatalf("expected ErrMalformedCandidate, got %v", err)
	}
	if err.Error() != "malformed candidate: missing title, employer" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestJobPatchApply(t *testing.T) {
	desc := "full description"
	pay := PayRange{Min: 100000, Max: 150000}
	patch := JobPatch{Description: &desc, Pay: &pay}

	got := patch.Apply(Job{ID: 7, Title: "Go Developer", Description: "short"})
	if got.Description != desc || got.Pay != pay || got.ID != 7 {
		t.Fatalf("unexpected job after patch: %+v", got)
	}

	fields := patch.Fields()
	if len(fields) != 2 || fields[0] != "pay" || fields[1] != "description" {
		t.Fatalf("unexpected fields: %v", fields)
	}
	if (JobPatch{}).IsEmpty() != true {
		t.Fatalf("expected empty patch")
	}
}
