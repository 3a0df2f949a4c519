package tracker

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jcii/hunt/internal/dedup"
	"github.com/jcii/hunt/internal/domain"
	"github.com/jcii/hunt/internal/filtering"
	"github.com/jcii/hunt/internal/ingest"
	"github.com/jcii/hunt/internal/logger"
)

type CleanupOptions struct {
	Duplicates bool
	Artifacts  bool
	DryRun     bool
	// ExcludeFile receives removed artifacts so later imports drop them.
	ExcludeFile string
}

// CleanupPlan lists the jobs a cleanup removes.
type CleanupPlan struct {
	Duplicates []dedup.Pair
	Artifacts  []domain.Job
	Applied    bool
}

func (p *CleanupPlan) Len() int {
	return len(p.Duplicates) + len(p.Artifacts)
}

// Confirm decides whether a non-empty plan is carried out.
type Confirm func(plan *CleanupPlan) (bool, error)

// ErrPlanChanged reports that the tracked jobs changed between planning a
// cleanup and applying it. Nothing was removed.
var ErrPlanChanged = errors.New("jobs changed since the cleanup was planned")

// Cleanup finds tracked jobs that are navigation artifacts or duplicates of
// older jobs and, unless DryRun is set or confirm declines, purges them. The
// older job of a duplicate pair keeps its values and gains the fields only
// the removed job had.
//
// confirm runs with no transaction held. The plan is computed again before it
// is applied and ErrPlanChanged is returned when it no longer matches.
func (s *Service) Cleanup(ctx context.Context, opts CleanupOptions, confirm Confirm) (*CleanupPlan, error) {
	var plan *CleanupPlan
	err := s.store.View(ctx, func(rs RecordStore) error {
		var err error
		plan, _, err = s.planCleanup(ctx, rs, opts)
		return err
	})
	if err != nil {
		return nil, err
	}

	if plan.Len() == 0 || opts.DryRun {
		return plan, nil
	}
	if confirm != nil {
		ok, err := confirm(plan)
		if err != nil {
			return nil, err
		}
		if !ok {
			return plan, nil
		}
	}

	err = s.store.Update(ctx, func(rs RecordStore) error {
		current, total, err := s.planCleanup(ctx, rs, opts)
		if err != nil {
			return err
		}
		if !current.sameTargets(plan) {
			return ErrPlanChanged
		}
		if err := s.applyCleanup(ctx, rs, current); err != nil {
			return err
		}
		plan = current
		plan.Applied = true
		s.metrics.JobsStored.Set(float64(total - plan.Len()))
		return nil
	})
	if err != nil {
		return nil, err
	}

	if opts.ExcludeFile != "" && len(plan.Artifacts) > 0 {
		if err := appendExcluded(opts.ExcludeFile, filtering.ExcludedFromJobs(plan.Artifacts, s.now())); err != nil {
			return plan, err
		}
		s.logger.Info("appended to exclude file",
			zap.String("filename", opts.ExcludeFile),
			zap.Int("count", len(plan.Artifacts)),
		)
	}
	return plan, nil
}

// planCleanup returns the removals opts asks for and the number of tracked jobs.
func (s *Service) planCleanup(ctx context.Context, rs RecordStore, opts CleanupOptions) (*CleanupPlan, int, error) {
	jobs, err := rs.ListJobs(ctx, domain.JobFilter{})
	if err != nil {
		return nil, 0, fmt.Errorf("listing jobs: %w", err)
	}

	plan := &CleanupPlan{}
	remaining := jobs
	if opts.Artifacts {
		remaining = remaining[:0:0]
		for _, j := range jobs {
			if ingest.IsNavigationArtifact(j.Title) {
				plan.Artifacts = append(plan.Artifacts, j)
				continue
			}
			remaining = append(remaining, j)
		}
	}
	if opts.Duplicates {
		plan.Duplicates = s.resolver.FindDuplicates(remaining)
	}
	return plan, len(jobs), nil
}

func (s *Service) applyCleanup(ctx context.Context, rs RecordStore, plan *CleanupPlan) error {
	kept := make(map[int64]domain.Job)
	for _, p := range plan.Duplicates {
		keep, ok := kept[p.Keep.ID]
		if !ok {
			keep = p.Keep
		}
		if patch := dedup.Backfill(keep, p.Drop); !patch.IsEmpty() {
			var err error
			if keep, err = rs.UpdateJob(ctx, keep.ID, patch); err != nil {
				return fmt.Errorf("backfilling job %d: %w", keep.ID, err)
			}
		}
		kept[keep.ID] = keep

		if err := rs.DeleteJob(ctx, p.Drop.ID); err != nil {
			return fmt.Errorf("removing duplicate %d: %w", p.Drop.ID, err)
		}
		logger.WithJob(s.logger, p.Drop).Info("duplicate removed",
			zap.Int64("kept_id", keep.ID),
			zap.Stringer("match", p.Match),
		)
	}

	for _, j := range plan.Artifacts {
		if err := rs.DeleteJob(ctx, j.ID); err != nil {
			return fmt.Errorf("removing artifact %d: %w", j.ID, err)
		}
		logger.WithJob(s.logger, j).Info("navigation artifact removed")
	}
	return nil
}

// sameTargets reports whether both plans keep and remove the same jobs.
func (p *CleanupPlan) sameTargets(o *CleanupPlan) bool {
	if len(p.Duplicates) != len(o.Duplicates) || len(p.Artifacts) != len(o.Artifacts) {
		return false
	}
	for i := range p.Duplicates {
		if p.Duplicates[i].Keep.ID != o.Duplicates[i].Keep.ID || p.Duplicates[i].Drop.ID != o.Duplicates[i].Drop.ID {
			return false
		}
	}
	for i := range p.Artifacts {
		if p.Artifacts[i].ID != o.Artifacts[i].ID {
			return false
		}
	}
	return true
}

func appendExcluded(path string, items *filtering.ExcludedPostings) error {
	excluded, err := filtering.LoadExcluded(path)
	if err != nil {
		return fmt.Errorf("reading exclude file: %w", err)
	}
	excluded.Append(items)
	if err := excluded.ToFile(path); err != nil {
		return fmt.Errorf("writing exclude file: %w", err)
	}
	return nil
}
