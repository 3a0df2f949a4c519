package tracker

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jcii/hunt/internal/dedup"
	"github.com/jcii/hunt/internal/domain"
	"github.com/jcii/hunt/internal/filtering"
	"github.com/jcii/hunt/internal/logger"
	"github.com/jcii/hunt/internal/metrics"
)

type IngestOptions struct {
	// DryRun resolves and persists inside a transaction that is rolled back.
	DryRun bool
	// Disabled maps filter names to the reason they are skipped.
	Disabled map[string]string
}

// Result is what became of one candidate that passed the filters.
type Result struct {
	Candidate domain.Candidate
	Outcome   dedup.Outcome
	// Job is the stored job the candidate was accepted as, merged into or
	// found to duplicate.
	Job domain.Job
}

// Report describes one ingest run.
type Report struct {
	BatchID  string
	Results  []Result
	Rejected []filtering.Rejection
	Filters  []filtering.Status
	DryRun   bool
}

// Count returns the number of results with decision d.
func (r *Report) Count(d dedup.Decision) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome.Decision == d {
			n++
		}
	}
	return n
}

// Ingest filters candidates, resolves the survivors against every tracked job
// and stores the outcomes. Resolution and persistence share one transaction,
// so a concurrent run never resolves against a stale job list.
func (s *Service) Ingest(ctx context.Context, candidates []domain.Candidate, opts IngestOptions) (*Report, error) {
	batchID := uuid.NewString()
	log := logger.WithFields(s.logger, zap.String(logger.FieldBatchID, batchID))

	steps := filtering.Default()
	for name, reason := range opts.Disabled {
		filtering.DisableByName(steps, name, reason)
	}

	filtered, err := filtering.Run(ctx, s.filterCfg, filtering.Deps{Logger: log}, steps, filtering.NewCandidates(candidates))
	if err != nil {
		return nil, fmt.Errorf("filtering candidates: %w", err)
	}

	report := &Report{
		BatchID:  batchID,
		Rejected: filtered.Rejected,
		Filters:  filtering.Describe(steps),
		DryRun:   opts.DryRun,
	}

	stored := 0
	if filtered.Len() > 0 {
		run := s.store.Update
		if opts.DryRun {
			run = s.store.View
		}

		err = run(ctx, func(rs RecordStore) error {
			existing, err := rs.ListJobs(ctx, domain.JobFilter{})
			if err != nil {
				return fmt.Errorf("listing jobs: %w", err)
			}

			outcomes, err := s.resolver.ResolveBatch(ctx, filtered.Items, existing)
			if err != nil {
				return fmt.Errorf("resolving candidates: %w", err)
			}

			results, err := persist(ctx, rs, log, filtered.Items, existing, outcomes)
			if err != nil {
				return err
			}
			report.Results = results
			stored = len(existing) + report.Count(dedup.Accept)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	log.Info("batch finished",
		zap.Int("candidates", len(candidates)),
		zap.Int("rejected", len(report.Rejected)),
		zap.Int("accepted", report.Count(dedup.Accept)),
		zap.Int("merged", report.Count(dedup.Merge)),
		zap.Int("duplicates", report.Count(dedup.Duplicate)),
		zap.Bool("dry_run", opts.DryRun),
	)

	if !opts.DryRun {
		s.record(report, len(candidates), stored)
	}
	return report, nil
}

func (s *Service) record(report *Report, candidates, stored int) {
	s.metrics.BatchSize.Observe(float64(candidates))
	for _, r := range report.Rejected {
		s.metrics.Reject(r.Filter)
	}
	for _, res := range report.Results {
		switch res.Outcome.Decision {
		case dedup.Accept:
			s.metrics.Decision(metrics.Accepted)
		case dedup.Merge:
			s.metrics.Decision(metrics.Merged)
		case dedup.Duplicate:
			s.metrics.Decision(metrics.Duplicate)
		}
		s.metrics.Conflicts.Add(float64(len(res.Outcome.Conflicts)))
	}
	if len(report.Results) > 0 {
		s.metrics.JobsStored.Set(float64(stored))
	}
}

// persist writes outcomes in input order so in-batch duplicates can point at
// the job their earlier candidate became.
func persist(ctx context.Context, rs RecordStore, log *zap.Logger, candidates []domain.Candidate, existing []domain.Job, outcomes []dedup.Outcome) ([]Result, error) {
	byID := make(map[int64]domain.Job, len(existing))
	for _, j := range existing {
		byID[j.ID] = j
	}

	results := make([]Result, len(outcomes))
	for i, out := range outcomes {
		res := Result{Candidate: candidates[i], Outcome: out}

		switch {
		case out.Decision == dedup.Accept:
			employer, err := rs.ResolveEmployer(ctx, out.Job.EmployerName)
			if err != nil {
				return nil, fmt.Errorf("resolving employer %q: %w", out.Job.EmployerName, err)
			}
			j := out.Job
			j.EmployerID = employer.ID
			j.EmployerName = employer.Name

			inserted, err := rs.InsertJob(ctx, j)
			if err != nil {
				return nil, fmt.Errorf("storing job: %w", err)
			}
			if inserted.Description != "" {
				if _, err := rs.InsertSnapshot(ctx, inserted.ID, inserted.Description); err != nil {
					return nil, err
				}
			}
			res.Job = inserted
			logger.WithJob(log, inserted).Info("job accepted")

		case out.DuplicateOf >= 0:
			res.Job = results[out.DuplicateOf].Job
			logger.WithJob(log, res.Job).Info("duplicate within batch",
				zap.Int("candidate", i),
				zap.Int("duplicate_of", out.DuplicateOf),
				zap.Stringer("match", out.Match),
			)

		case out.Decision == dedup.Merge:
			updated, err := rs.UpdateJob(ctx, out.ExistingID, out.Patch)
			if err != nil {
				return nil, fmt.Errorf("merging into job %d: %w", out.ExistingID, err)
			}
			if out.Patch.Description != nil {
				if _, err := rs.InsertSnapshot(ctx, updated.ID, *out.Patch.Description); err != nil {
					return nil, err
				}
			}
			res.Job = updated
			logger.WithJob(log, updated).Info("job merged",
				zap.Stringer("match", out.Match),
				zap.Strings("fields", out.Patch.Fields()),
				zap.Strings("conflicts", out.Conflicts),
			)

		default:
			res.Job = byID[out.ExistingID]
			logger.WithJob(log, res.Job).Info("duplicate skipped",
				zap.Stringer("match", out.Match),
				zap.Float64("score", out.Score),
			)
		}

		results[i] = res
	}
	return results, nil
}
