// Package tracker runs the resolution workflow against the record store.
package tracker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jcii/hunt/internal/dedup"
	"github.com/jcii/hunt/internal/domain"
	"github.com/jcii/hunt/internal/filtering"
	"github.com/jcii/hunt/internal/metrics"
	"github.com/jcii/hunt/internal/rank"
)

// RecordStore is the persistence the tracker uses inside one transaction.
type RecordStore interface {
	ListJobs(ctx context.Context, f domain.JobFilter) ([]domain.Job, error)
	GetJob(ctx context.Context, id int64) (domain.Job, error)
	InsertJob(ctx context.Context, j domain.Job) (domain.Job, error)
	UpdateJob(ctx context.Context, id int64, p domain.JobPatch) (domain.Job, error)
	SetJobStatus(ctx context.Context, id int64, status domain.Status) error
	DeleteJob(ctx context.Context, id int64) error

	ResolveEmployer(ctx context.Context, name string) (domain.Employer, error)
	FindEmployer(ctx context.Context, name string) (domain.Employer, error)
	EmployerByID(ctx context.Context, id int64) (domain.Employer, error)
	ListEmployers(ctx context.Context) ([]domain.Employer, error)
	SetEmployerStatus(ctx context.Context, id int64, status domain.EmployerStatus, notes *string) (domain.Employer, error)

	InsertSnapshot(ctx context.Context, jobID int64, raw string) (domain.Snapshot, error)
	ListSnapshots(ctx context.Context, jobID int64) ([]domain.Snapshot, error)
}

// Store runs functions against a RecordStore. Update commits when fn
// returns nil and holds off every other writer meanwhile. View never commits.
type Store interface {
	Update(ctx context.Context, fn func(RecordStore) error) error
	View(ctx context.Context, fn func(RecordStore) error) error
}

// Options configures a Service. Nil fields get defaults.
type Options struct {
	Resolver *dedup.Resolver
	Scorer   rank.Scorer
	Filters  *filtering.Config
	Metrics  *metrics.Recorder
	Logger   *zap.Logger
}

type Service struct {
	store     Store
	resolver  *dedup.Resolver
	scorer    rank.Scorer
	filterCfg *filtering.Config
	metrics   *metrics.Recorder
	logger    *zap.Logger
	now       func() time.Time
}

func New(st Store, opts Options) *Service {
	s := &Service{
		store:     st,
		resolver:  opts.Resolver,
		scorer:    opts.Scorer,
		filterCfg: opts.Filters,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		now:       time.Now,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.resolver == nil {
		s.resolver = dedup.New(dedup.DefaultConfig(), s.logger)
	}
	if s.scorer == nil {
		s.scorer = rank.WeightedScorer{Cfg: rank.DefaultConfig()}
	}
	if s.filterCfg == nil {
		s.filterCfg = &filtering.Config{}
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	return s
}

// Metrics returns the recorder the service counts into.
func (s *Service) Metrics() *metrics.Recorder { return s.metrics }
