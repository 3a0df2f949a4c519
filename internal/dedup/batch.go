package dedup

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jcii/hunt/internal/domain"
)

// ResolveBatch resolves candidates against the tracked set.
//
// Comparisons against existing run in parallel. Candidates that duplicate each
// other are then settled sequentially in input order: the first one is accepted
// and later ones become Duplicate with DuplicateOf set, their fields folded into
// the earlier pending job. Repeated calls with the same input give the same result.
func (r *Resolver) ResolveBatch(ctx context.Context, candidates []domain.Candidate, existing []domain.Job) ([]Outcome, error) {
	if r.cfg.MaxBatch > 0 && len(candidates) > r.cfg.MaxBatch {
		return nil, fmt.Errorf("%w: %d candidates, limit %d", ErrBatchTooLarge, len(candidates), r.cfg.MaxBatch)
	}

	outcomes := make([]Outcome, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := r.Resolve(candidates[i], existing)
			if err != nil {
				return fmt.Errorf("candidate %d: %w", i, err)
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.settleBatch(candidates, existing, outcomes)

	r.logger.Debug("batch resolved",
		zap.Int("candidates", len(candidates)),
		zap.Int("existing", len(existing)),
	)
	return outcomes, nil
}

// settleBatch replays the parallel outcomes in input order. Each candidate is
// matched against the tracked jobs as earlier candidates of this batch patched
// them and against the candidates accepted before it, so one batch decides the
// same way as submitting its candidates one run at a time.
func (r *Resolver) settleBatch(candidates []domain.Candidate, existing []domain.Job, outcomes []Outcome) {
	byID := make(map[int64]domain.Job, len(existing))
	for _, j := range existing {
		byID[j.ID] = j
	}

	// working holds tracked jobs as earlier candidates of this batch patched them.
	working := make(map[int64]domain.Job)
	var (
		patched []int64
		pending []int
	)

	for i := range candidates {
		rec := candidateRecord(candidates[i])
		incoming := NewJob(candidates[i])

		tracked, target, onTracked := r.trackedMatch(rec, outcomes[i], existing, byID, working, patched)

		accepted := make([]domain.Job, len(pending))
		for k, idx := range pending {
			accepted[k] = outcomes[idx].Job
		}
		earlier, onPending := r.best(rec, accepted)

		switch {
		case onPending && (!onTracked || stronger(earlier, tracked)):
			idx := pending[earlier.index]
			patch, conflicts := buildPatch(incoming, outcomes[idx].Job)
			outcomes[idx].Job = patch.Apply(outcomes[idx].Job)
			outcomes[i] = Outcome{
				Decision:    Duplicate,
				DuplicateOf: idx,
				Match:       earlier.kind,
				Score:       earlier.score,
				Patch:       patch,
				Conflicts:   conflicts,
			}

		case onTracked:
			out := settle(incoming, target, tracked)
			if _, seen := working[target.ID]; !seen {
				patched = append(patched, target.ID)
			}
			working[target.ID] = out.Patch.Apply(target)
			outcomes[i] = out

		default:
			outcomes[i] = Outcome{Decision: Accept, Job: incoming, DuplicateOf: -1}
			pending = append(pending, i)
		}
	}
}

// trackedMatch finds the strongest tracked job for rec once earlier candidates'
// patches are applied. The parallel outcome stands for every job no patch
// touched; a patched target is compared again.
func (r *Resolver) trackedMatch(rec record, parallel Outcome, existing []domain.Job, byID, working map[int64]domain.Job, patched []int64) (match, domain.Job, bool) {
	var (
		top   match
		job   domain.Job
		found bool
	)
	consider := func(m match, j domain.Job) {
		if !found || m.better(top) {
			top, job, found = m, j, true
		}
	}

	if len(patched) > 0 {
		jobs := make([]domain.Job, len(patched))
		for k, id := range patched {
			jobs[k] = working[id]
		}
		if m, ok := r.best(rec, jobs); ok {
			consider(m, jobs[m.index])
		}
	}

	if parallel.Decision == Accept {
		return top, job, found
	}
	if _, stale := working[parallel.ExistingID]; !stale {
		consider(match{kind: parallel.Match, score: parallel.Score, id: parallel.ExistingID}, byID[parallel.ExistingID])
		return top, job, found
	}

	// The parallel target changed; the best untouched job may now win.
	untouched := make([]domain.Job, 0, len(existing))
	for _, j := range existing {
		if _, ok := working[j.ID]; !ok {
			untouched = append(untouched, j)
		}
	}
	if m, ok := r.best(rec, untouched); ok {
		consider(m, untouched[m.index])
	}
	return top, job, found
}

// stronger reports whether a match against a pending candidate beats one
// against a tracked job. Ties go to the tracked job.
func stronger(pending, tracked match) bool {
	if pending.kind != tracked.kind {
		return pending.kind > tracked.kind
	}
	return pending.score > tracked.score
}
