package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jcii/hunt/internal/domain"
)

func TestDecodeCandidates(t *testing.T) {
	t.Parallel()

	doc := []byte(`
source: linkedin
jobs:
  - title: Senior DevOps Engineer
    employer: Acme Corp
    url: https://www.linkedin.com/jobs/view/123
    pay: 150k-200k
  - title: Go Developer
    employer: Globex
    pay:
      min: 120000
      max: 140000
    source: manual
    location: Remote
  - title: Platform Engineer
    employer: Initech
    pay: 175000
`)

	got, err := DecodeCandidates(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}

	if got[0].Source != "linkedin" || got[0].Pay != (domain.PayRange{Min: 150000, Max: 200000}) {
		t.Fatalf("unexpected first candidate: %+v", got[0])
	}
	if got[1].Source != "manual" || got[1].Pay != (domain.PayRange{Min: 120000, Max: 140000}) {
		t.Fatalf("unexpected second candidate: %+v", got[1])
	}
	if got[2].Pay != (domain.PayRange{Min: 175000}) {
		t.Fatalf("unexpected third candidate: %+v", got[2])
	}
}

func TestDecodeCandidatesList(t *testing.T) {
	t.Parallel()

	got, err := DecodeCandidates([]byte("- title: SRE Lead, Platform\n  employer: Acme\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Title != "SRE Lead, Platform" || got[0].Employer != "Acme" {
		t.Fatalf("unexpected candidates: %+v", got)
	}
}

func TestDecodeCandidatesInvalid(t *testing.T) {
	t.Parallel()

	if _, err := DecodeCandidates([]byte("jobs: [unclosed")); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := DecodeCandidates([]byte("jobs:\n  - title: [1, 2]\n")); err == nil {
		t.Fatalf("expected decode error")
	}

	got, err := DecodeCandidates([]byte("  \n"))
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %v (%v)", got, err)
	}
}

func TestLoadCandidates(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "jobs.yaml")
	if err := os.WriteFile(path, []byte("jobs:\n  - title: Data Engineer\n    employer: Hooli\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := LoadCandidates(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Employer != "Hooli" {
		t.Fatalf("unexpected candidates: %+v", got)
	}

	if _, err := LoadCandidates(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
