package tracker

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/jcii/hunt/internal/domain"
	"github.com/jcii/hunt/internal/logger"
	"github.com/jcii/hunt/internal/rank"
)

// Transition moves job id from status from to status to. A zero from means the
// job's current status. The stored status is unchanged on error.
func (s *Service) Transition(ctx context.Context, id int64, from, to domain.Status) (domain.Job, error) {
	var job domain.Job
	err := s.store.Update(ctx, func(rs RecordStore) error {
		current, err := rs.GetJob(ctx, id)
		if err != nil {
			return err
		}
		if from == 0 {
			from = current.Status
		}

		next, err := domain.Transition(current.Status, from, to)
		if err != nil {
			return err
		}
		if err := rs.SetJobStatus(ctx, id, next); err != nil {
			return err
		}

		job = current
		job.Status = next
		logger.WithJob(s.logger, job).Info("status changed",
			zap.Stringer("from", current.Status),
			zap.Stringer("to", next),
		)
		return nil
	})
	return job, err
}

// List returns the jobs matching f with their scores, in id order.
func (s *Service) List(ctx context.Context, f domain.JobFilter) ([]rank.Ranked, error) {
	ranked, err := s.Rank(ctx, f)
	if err != nil {
		return nil, err
	}
	sortByID(ranked)
	return ranked, nil
}

// Rank returns the jobs matching f ordered by score, highest first.
func (s *Service) Rank(ctx context.Context, f domain.JobFilter) ([]rank.Ranked, error) {
	var ranked []rank.Ranked
	err := s.store.View(ctx, func(rs RecordStore) error {
		jobs, err := rs.ListJobs(ctx, f)
		if err != nil {
			return err
		}
		employers, err := employersByID(ctx, rs)
		if err != nil {
			return err
		}
		ranked = rank.Rank(s.scorer, jobs, employers)
		return nil
	})
	return ranked, err
}

// JobDetail is a job with everything shown about it.
type JobDetail struct {
	Job       domain.Job
	Employer  domain.Employer
	Score     rank.Breakdown
	Snapshots []domain.Snapshot
}

type explainer interface {
	Explain(job domain.Job, employer domain.Employer) rank.Breakdown
}

func (s *Service) Show(ctx context.Context, id int64) (*JobDetail, error) {
	d := &JobDetail{}
	err := s.store.View(ctx, func(rs RecordStore) error {
		var err error
		if d.Job, err = rs.GetJob(ctx, id); err != nil {
			return err
		}
		if d.Employer, err = rs.EmployerByID(ctx, d.Job.EmployerID); err != nil {
			return err
		}
		if d.Snapshots, err = rs.ListSnapshots(ctx, id); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if e, ok := s.scorer.(explainer); ok {
		d.Score = e.Explain(d.Job, d.Employer)
	} else {
		d.Score = rank.Breakdown{Total: s.scorer.Score(d.Job, d.Employer)}
	}
	return d, nil
}

func (s *Service) Employers(ctx context.Context) ([]domain.Employer, error) {
	var out []domain.Employer
	err := s.store.View(ctx, func(rs RecordStore) error {
		var err error
		out, err = rs.ListEmployers(ctx)
		return err
	})
	return out, err
}

// EmployerDetail is an employer with its ranked jobs.
type EmployerDetail struct {
	Employer domain.Employer
	Jobs     []rank.Ranked
}

func (s *Service) Employer(ctx context.Context, name string) (*EmployerDetail, error) {
	d := &EmployerDetail{}
	err := s.store.View(ctx, func(rs RecordStore) error {
		e, err := rs.FindEmployer(ctx, name)
		if err != nil {
			return err
		}
		jobs, err := rs.ListJobs(ctx, domain.JobFilter{EmployerID: e.ID})
		if err != nil {
			return err
		}
		d.Employer = e
		d.Jobs = rank.Rank(s.scorer, jobs, map[int64]domain.Employer{e.ID: e})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// SetEmployerStatus records the user's verdict on an employer, creating the
// employer when it is not known yet. A nil notes keeps the stored notes.
func (s *Service) SetEmployerStatus(ctx context.Context, name string, status domain.EmployerStatus, notes *string) (domain.Employer, error) {
	var out domain.Employer
	err := s.store.Update(ctx, func(rs RecordStore) error {
		e, err := rs.ResolveEmployer(ctx, name)
		if err != nil {
			return err
		}
		if out, err = rs.SetEmployerStatus(ctx, e.ID, status, notes); err != nil {
			return fmt.Errorf("setting employer status: %w", err)
		}
		s.logger.Info("employer status changed",
			zap.String(logger.FieldEmployer, out.Name),
			zap.Stringer("from", e.Status),
			zap.Stringer("to", out.Status),
		)
		return nil
	})
	return out, err
}

func employersByID(ctx context.Context, rs RecordStore) (map[int64]domain.Employer, error) {
	list, err := rs.ListEmployers(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]domain.Employer, len(list))
	for _, e := range list {
		out[e.ID] = e
	}
	return out, nil
}

func sortByID(r []rank.Ranked) {
	sort.Slice(r, func(i, j int) bool { return r[i].Job.ID < r[j].Job.ID })
}
