package filtering

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jcii/hunt/internal/domain"
)

func sample() []domain.Candidate {
	return []domain.Candidate{
		{Title: "Senior DevOps Engineer", Employer: "Acme Corp", URL: "https://acme.com/jobs/1"},
		{Title: "", Employer: "Acme Corp"},
		{Title: "See all jobs", Employer: "LinkedIn"},
		{Title: "Platform Engineer jobs", Employer: "LinkedIn", URL: "https://www.linkedin.com/comm/jobs/search?keywords=platform"},
		{Title: "Site Reliability Engineer", Employer: "Globex"},
		{Title: "Backend Developer", Employer: "Initech", URL: "https://initech.com/careers/jobs/55"},
		{Title: "Staff Software Engineer", Employer: "Acme Corp", URL: "https://www.linkedin.com/jobs/search/"},
	}
}

func titlesOf(items []domain.Candidate) []string {
	out := make([]string, 0, len(items))
	for _, c := range items {
		out = append(out, c.Title)
	}
	return out
}

func TestRunDefaultPipeline(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)
	cfg := &Config{BlockedEmployers: []string{"GLOBEX"}}

	out, err := Run(context.Background(), cfg, Deps{Logger: zap.New(core)}, Default(), NewCandidates(sample()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := titlesOf(out.Items)
	expect := []string{"Senior DevOps Engineer", "Backend Developer"}
	if len(got) != len(expect) || got[0] != expect[0] || got[1] != expect[1] {
		t.Fatalf("expected %v, got %v", expect, got)
	}

	if len(out.Rejected) != 5 {
		t.Fatalf("expected 5 rejections, got %d", len(out.Rejected))
	}
	first := out.Rejected[0]
	if first.Filter != "required_fields" || first.Reason != "malformed candidate: missing title" {
		t.Fatalf("unexpected first rejection: %+v", first)
	}
	if out.Rejected[4].Filter != "blocked_employers" {
		t.Fatalf("expected blocked employer rejection last, got %+v", out.Rejected[4])
	}

	steps := observed.FilterMessage("filter step").All()
	if len(steps) != len(Default()) {
		t.Fatalf("expected %d step logs, got %d", len(Default()), len(steps))
	}
	ctx := steps[0].ContextMap()
	if ctx["name"] != "required_fields" || ctx["dropped"] != int64(1) || ctx["left"] != int64(6) {
		t.Fatalf("unexpected step log: %v", ctx)
	}
}

func TestDisableNavigationArtifacts(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)
	steps := []Filter{NewRequiredFields(), NewNavigationArtifacts()}
	DisableByName(steps, "navigation_artifacts", "explicit title")

	items := []domain.Candidate{{Title: "SRE", Employer: "Acme"}}
	out, err := Run(context.Background(), &Config{}, Deps{Logger: zap.New(core)}, steps, NewCandidates(items))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 1 {
		t.Fatalf("expected short title to survive, got %d items", out.Len())
	}
	if observed.FilterMessage("filter disabled").Len() != 1 {
		t.Fatalf("expected disabled filter to be logged")
	}

	statuses := Describe(steps)
	if statuses[1].Enabled || statuses[1].Reason != "explicit title" {
		t.Fatalf("unexpected status: %+v", statuses[1])
	}
	if !statuses[0].Enabled {
		t.Fatalf("required fields must stay enabled")
	}
}

func TestRunCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, &Config{}, Deps{}, Default(), NewCandidates(sample()))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExcludeFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "excluded.json")
	jobs := []domain.Job{
		{Title: "Backend Developer", EmployerName: "Initech", URL: "https://initech.com/careers/jobs/55"},
		{Title: "Workday Role", EmployerName: "Acme", JobCode: "JR9999"},
	}
	if err := ExcludedFromJobs(jobs, time.Now()).ToFile(path); err != nil {
		t.Fatalf("write exclude file: %v", err)
	}

	items := []domain.Candidate{
		{Title: "Backend Developer II", Employer: "Initech", URL: "https://initech.com/careers/jobs/55?ref=mail"},
		{Title: "Workday Role Again", Employer: "Acme", JobCode: "JR9999"},
		{Title: "Senior DevOps Engineer", Employer: "Acme"},
	}

	out, err := Run(context.Background(), &Config{ExcludeFile: path}, Deps{}, []Filter{NewExcludeFile()}, NewCandidates(items))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 1 || out.Items[0].Title != "Senior DevOps Engineer" {
		t.Fatalf("unexpected survivors: %v", titlesOf(out.Items))
	}
	if out.Rejected[0].Reason != "url is excluded" || out.Rejected[1].Reason != "job code is excluded" {
		t.Fatalf("unexpected reasons: %+v", out.Rejected)
	}
}

func TestLoadExcluded(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	missing, err := LoadExcluded(filepath.Join(dir, "missing.json"))
	if err != nil || len(missing.Items) != 0 {
		t.Fatalf("expected empty list for missing file, got %v (%v)", missing, err)
	}

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got, err := LoadExcluded(empty); err != nil || len(got.Items) != 0 {
		t.Fatalf("expected empty list for empty file, got %v (%v)", got, err)
	}

	broken := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(broken, []byte("{"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadExcluded(broken); err == nil {
		t.Fatalf("expected decode error")
	}

	list := ExcludedFromJobs([]domain.Job{{URL: "https://a.com/jobs/1"}}, time.Now())
	list.Append(ExcludedFromJobs([]domain.Job{{URL: "https://b.com/jobs/2"}}, time.Now()))
	path := filepath.Join(dir, "list.json")
	if err := list.ToFile(path); err != nil {
		t.Fatalf("write list: %v", err)
	}
	got, err := LoadExcluded(path)
	if err != nil || len(got.Items) != 2 {
		t.Fatalf("expected 2 entries, got %v (%v)", got, err)
	}
}
