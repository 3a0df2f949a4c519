// Package dedup decides whether a candidate posting is already tracked.
package dedup

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jcii/hunt/internal/canonical"
	"github.com/jcii/hunt/internal/domain"
)

const (
	DefaultFuzzyThreshold = 0.8
	DefaultMaxBatch       = 500
	DefaultWorkers        = 4
)

var (
	// ErrBatchTooLarge is returned when a batch exceeds Config.MaxBatch.
	ErrBatchTooLarge = errors.New("batch too large")
	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid dedup config")
)

// Config tunes the resolver.
type Config struct {
	// FuzzyThreshold is the graded title similarity a pair must exceed.
	FuzzyThreshold float64 `mapstructure:"fuzzy-threshold"`
	// MinSubstringLength is the rune length the shorter title needs before
	// containment counts. Zero counts any containment.
	MinSubstringLength int `mapstructure:"min-substring-length"`
	// Workers limits parallel comparisons in ResolveBatch.
	Workers int `mapstructure:"workers"`
	// MaxBatch bounds the number of candidates in one ResolveBatch call.
	MaxBatch int `mapstructure:"max-batch"`
}

// DefaultConfig returns the stock settings.
func DefaultConfig() Config {
	return Config{
		FuzzyThreshold: DefaultFuzzyThreshold,
		Workers:        DefaultWorkers,
		MaxBatch:       DefaultMaxBatch,
	}
}

func (c Config) Validate() error {
	if c.FuzzyThreshold <= 0 || c.FuzzyThreshold > 1 {
		return fmt.Errorf("%w: fuzzy-threshold must be in (0, 1], got %v", ErrInvalidConfig, c.FuzzyThreshold)
	}
	if c.MinSubstringLength < 0 {
		return fmt.Errorf("%w: min-substring-length must not be negative", ErrInvalidConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}
	if c.MaxBatch < 0 {
		return fmt.Errorf("%w: max-batch must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Decision is the kind of outcome for a candidate.
type Decision int

const (
	Accept Decision = iota + 1
	Duplicate
	Merge
)

func (d Decision) String() string {
	switch d {
	case Accept:
		return "accept"
	case Duplicate:
		return "duplicate"
	case Merge:
		return "merge"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Outcome is the resolution of one candidate.
type Outcome struct {
	Decision Decision
	// Job is the record to insert for Accept. ID and EmployerID are left to the store.
	Job domain.Job
	// ExistingID is the matched job for Duplicate and Merge against the tracked set.
	ExistingID int64
	// DuplicateOf is the batch index of an earlier candidate this one duplicates, or -1.
	DuplicateOf int
	Match       MatchKind
	Score       float64
	// Patch holds the fields to write into the matched job for Merge.
	Patch domain.JobPatch
	// Conflicts lists patched fields whose previous value was non-empty.
	Conflicts []string
}

// Resolver applies the duplicate rules. It is safe for concurrent use.
type Resolver struct {
	cfg    Config
	logger *zap.Logger
}

// New builds a resolver. Zero config fields fall back to defaults.
func New(cfg Config, logger *zap.Logger) *Resolver {
	if cfg.FuzzyThreshold == 0 {
		cfg.FuzzyThreshold = DefaultFuzzyThreshold
	}
	if cfg.Workers == 0 {
		cfg.Workers = DefaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{cfg: cfg, logger: logger}
}

// Config returns the effective configuration.
func (r *Resolver) Config() Config { return r.cfg }

// Evaluate runs the ordered rules for a single pair.
func (r *Resolver) Evaluate(c domain.Candidate, existing domain.Job) MatchKind {
	kind, _ := r.evaluate(candidateRecord(c), jobRecord(existing))
	return kind
}

// IsDuplicate reports whether c duplicates existing.
func (r *Resolver) IsDuplicate(c domain.Candidate, existing domain.Job) bool {
	return r.Evaluate(c, existing).IsDuplicate()
}

// Resolve decides what to do with c given the tracked set.
// Only a malformed candidate is an error.
func (r *Resolver) Resolve(c domain.Candidate, existing []domain.Job) (Outcome, error) {
	if err := c.Validate(); err != nil {
		return Outcome{}, err
	}

	incoming := NewJob(c)
	m, ok := r.best(candidateRecord(c), existing)
	if !ok {
		out := Outcome{Decision: Accept, Job: incoming, DuplicateOf: -1}
		r.logger.Debug("candidate accepted", zap.String("title", incoming.Title), zap.String("employer", c.Employer))
		return out, nil
	}

	out := settle(incoming, existing[m.index], m)
	r.logger.Debug("candidate matched",
		zap.String("title", incoming.Title),
		zap.Int64("existing_id", out.ExistingID),
		zap.Stringer("match", out.Match),
		zap.Float64("score", out.Score),
		zap.Stringer("decision", out.Decision),
		zap.Strings("conflicts", out.Conflicts),
	)
	return out, nil
}

// settle turns a match against existing into Duplicate or Merge.
func settle(incoming, existing domain.Job, m match) Outcome {
	patch, conflicts := buildPatch(incoming, existing)
	out := Outcome{
		Decision:    Duplicate,
		ExistingID:  existing.ID,
		DuplicateOf: -1,
		Match:       m.kind,
		Score:       m.score,
	}
	if !patch.IsEmpty() {
		out.Decision = Merge
		out.Patch = patch
		out.Conflicts = conflicts
	}
	return out
}

// NewJob builds the job a candidate becomes once accepted.
func NewJob(c domain.Candidate) domain.Job {
	url, code := canonical.URL(c.URL)
	if code == "" {
		code = strings.TrimSpace(c.JobCode)
	}
	return domain.Job{
		Title:        strings.TrimSpace(c.Title),
		EmployerName: strings.TrimSpace(c.Employer),
		URL:          url,
		JobCode:      code,
		Pay:          c.Pay.Ordered(),
		Status:       domain.StatusNew,
		Source:       strings.TrimSpace(c.Source),
		Description:  strings.TrimSpace(c.Description),
	}
}
