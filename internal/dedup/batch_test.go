package dedup

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/jcii/hunt/internal/domain"
)

func TestResolveBatchInOrder(t *testing.T) {
	t.Parallel()

	r := New(Config{FuzzyThreshold: 0.8, Workers: 3}, nil)
	existing := []domain.Job{
		{ID: 1, Title: "Data Analyst", EmployerName: "Acme Corp", Pay: domain.PayRange{Max: 90000}},
	}
	candidates := []domain.Candidate{
		{Title: "Senior DevOps Engineer", Employer: "Acme Corp"},
		{Title: "Sr. DevOps Engineer", Employer: "Acme Corp", Pay: domain.PayRange{Max: 200000}},
		{Title: "Data Analyst", Employer: "Acme Corp", Description: "SQL all day"},
		{Title: "Senior DevOps Engineer", Employer: "Globex"},
		{Title: "Data Analyst", Employer: "acme corp", Description: "SQL and dashboards"},
	}

	outcomes, err := r.ResolveBatch(context.Background(), candidates, existing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcomes) != len(candidates) {
		t.Fatalf("expected %d outcomes, got %d", len(candidates), len(outcomes))
	}

	if outcomes[0].Decision != Accept {
		t.Fatalf("first candidate must be accepted, got %s", outcomes[0].Decision)
	}
	if outcomes[0].Job.Pay != (domain.PayRange{Max: 200000}) {
		t.Fatalf("later duplicate must fold pay into the pending job, got %+v", outcomes[0].Job.Pay)
	}

	if outcomes[1].Decision != Duplicate || outcomes[1].DuplicateOf != 0 || outcomes[1].Match != FuzzyMatch {
		t.Fatalf("unexpected second outcome: %+v", outcomes[1])
	}

	if outcomes[2].Decision != Merge || outcomes[2].ExistingID != 1 {
		t.Fatalf("unexpected third outcome: %+v", outcomes[2])
	}
	if outcomes[2].Patch.Description == nil || *outcomes[2].Patch.Description != "SQL all day" {
		t.Fatalf("expected description backfill, got %v", outcomes[2].Patch.Fields())
	}

	if outcomes[3].Decision != Accept {
		t.Fatalf("different employer must be accepted, got %s", outcomes[3].Decision)
	}

	// The second merge into job 1 is computed against the first merge's result.
	if outcomes[4].Decision != Merge || outcomes[4].ExistingID != 1 {
		t.Fatalf("unexpected fifth outcome: %+v", outcomes[4])
	}
	if !reflect.DeepEqual(outcomes[4].Conflicts, []string{"description"}) {
		t.Fatalf("expected description conflict, got %v", outcomes[4].Conflicts)
	}
}

func TestResolveBatchSeesEarlierMerges(t *testing.T) {
	t.Parallel()

	r := New(Config{FuzzyThreshold: 0.8, Workers: 2}, nil)
	existing := []domain.Job{
		{ID: 1, Title: "Senior DevOps Engineer", EmployerName: "Acme Corp"},
	}
	candidates := []domain.Candidate{
		{Title: "Senior DevOps Engineer", Employer: "Acme Corp", URL: "https://acme.com/jobs/123"},
		{Title: "Platform Lead", Employer: "Acme Corp", URL: "https://acme.com/jobs/123?src=linkedin"},
	}

	outcomes, err := r.ResolveBatch(context.Background(), candidates, existing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcomes[0].Decision != Merge || outcomes[0].ExistingID != 1 || outcomes[0].Match != ExactTitle {
		t.Fatalf("unexpected first outcome: %+v", outcomes[0])
	}
	// Job 1 now carries the URL, so the second posting is the same job.
	if outcomes[1].Decision != Duplicate || outcomes[1].ExistingID != 1 || outcomes[1].Match != ExactURL {
		t.Fatalf("expected duplicate of job 1 by url, got %+v", outcomes[1])
	}

	// Submitting the candidates one run at a time decides the same way.
	merged := outcomes[0].Patch.Apply(existing[0])
	single, err := r.Resolve(candidates[1], []domain.Job{merged})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if single.Decision != outcomes[1].Decision || single.ExistingID != outcomes[1].ExistingID || single.Match != outcomes[1].Match {
		t.Fatalf("batch and single run disagree: %+v vs %+v", outcomes[1], single)
	}
}

func TestResolveBatchPrefersStrongerPending(t *testing.T) {
	t.Parallel()

	r := New(Config{FuzzyThreshold: 0.8, Workers: 2}, nil)
	existing := []domain.Job{
		{ID: 1, Title: "Senior DevOps Engineer", EmployerName: "Acme Corp"},
	}
	candidates := []domain.Candidate{
		{Title: "Backend Engineer", Employer: "Acme Corp", URL: "https://acme.com/jobs/77"},
		{Title: "Senior DevOps Engineer", Employer: "Acme Corp", URL: "https://acme.com/jobs/77"},
	}

	outcomes, err := r.ResolveBatch(context.Background(), candidates, existing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcomes[0].Decision != Accept {
		t.Fatalf("first candidate must be accepted, got %+v", outcomes[0])
	}
	// A URL match on the pending job beats the title match on job 1.
	if outcomes[1].Decision != Duplicate || outcomes[1].DuplicateOf != 0 || outcomes[1].Match != ExactURL {
		t.Fatalf("unexpected second outcome: %+v", outcomes[1])
	}
}

func TestResolveBatchDeterministic(t *testing.T) {
	t.Parallel()

	r := New(Config{FuzzyThreshold: 0.8, Workers: 8}, nil)
	var candidates []domain.Candidate
	for i := 0; i < 40; i++ {
		candidates = append(candidates, domain.Candidate{
			Title:    fmt.Sprintf("Engineer %d", i%7),
			Employer: fmt.Sprintf("Company %d", i%3),
			URL:      fmt.Sprintf("https://example.com/jobs/%d", i%11),
		})
	}
	existing := []domain.Job{
		{ID: 1, Title: "Engineer 1", EmployerName: "Company 1"},
		{ID: 2, Title: "Engineer 2", EmployerName: "Company 0", URL: "https://example.com/jobs/5"},
	}

	first, err := r.ResolveBatch(context.Background(), candidates, existing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := r.ResolveBatch(context.Background(), candidates, existing)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("batch resolution is not deterministic")
		}
	}
}

func TestResolveBatchTooLarge(t *testing.T) {
	t.Parallel()

	r := New(Config{FuzzyThreshold: 0.8, MaxBatch: 2}, nil)
	candidates := make([]domain.Candidate, 3)
	_, err := r.ResolveBatch(context.Background(), candidates, nil)
	if !errors.Is(err, ErrBatchTooLarge) {
		t.Fatalf("expected ErrBatchTooLarge, got %v", err)
	}
}

func TestResolveBatchMalformed(t *testing.T) {
	t.Parallel()

	r := New(DefaultConfig(), nil)
	candidates := []domain.Candidate{
		{Title: "Go Developer", Employer: "Acme"},
		{Title: "", Employer: "Acme"},
	}
	_, err := r.ResolveBatch(context.Background(), candidates, nil)
	if !errors.Is(err, domain.ErrMalformedCandidate) {
		t.Fatalf("expected ErrMalformedCandidate, got %v", err)
	}
}

func TestResolveBatchCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()

	r := New(DefaultConfig(), nil)
	candidates := []domain.Candidate{{Title: "Go Developer", Employer: "Acme"}}
	if _, err := r.ResolveBatch(ctx, candidates, nil); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestFindDuplicates(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	jobs := []domain.Job{
		{ID: 4, Title: "Sr. DevOps Engineer", EmployerName: "Acme Corp", CreatedAt: base.Add(3 * time.Hour)},
		{ID: 1, Title: "Senior DevOps Engineer", EmployerName: "Acme Corp", CreatedAt: base},
		{ID: 2, Title: "DevOps Engineer", EmployerName: "Other Corp", CreatedAt: base.Add(time.Hour)},
		{ID: 3, Title: "Anything", EmployerName: "Recruiter", URL: "https://acme.com/jobs/9", CreatedAt: base.Add(2 * time.Hour)},
		{ID: 5, Title: "Platform Engineer", EmployerName: "Acme Corp", URL: "https://acme.com/jobs/9", CreatedAt: base.Add(4 * time.Hour)},
	}

	pairs := New(DefaultConfig(), nil).FindDuplicates(jobs)
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d: %+v", len(pairs), pairs)
	}
	if pairs[0].Keep.ID != 1 || pairs[0].Drop.ID != 4 || pairs[0].Match != FuzzyMatch {
		t.Fatalf("unexpected first pair: keep %d drop %d (%s)", pairs[0].Keep.ID, pairs[0].Drop.ID, pairs[0].Match)
	}
	if pairs[1].Keep.ID != 3 || pairs[1].Drop.ID != 5 || pairs[1].Match != ExactURL {
		t.Fatalf("unexpected second pair: keep %d drop %d (%s)", pairs[1].Keep.ID, pairs[1].Drop.ID, pairs[1].Match)
	}
}
