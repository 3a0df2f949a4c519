package dedup

import (
	"sort"

	"github.com/jcii/hunt/internal/domain"
)

// Pair is a stored job found to duplicate an older one.
type Pair struct {
	Keep  domain.Job
	Drop  domain.Job
	Match MatchKind
	Score float64
}

// FindDuplicates scans jobs in creation order and compares each against the
// older jobs still kept. The oldest job of every duplicate group survives.
func (r *Resolver) FindDuplicates(jobs []domain.Job) []Pair {
	ordered := make([]domain.Job, len(jobs))
	copy(ordered, jobs)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	var (
		kept  []domain.Job
		pairs []Pair
	)
	for _, j := range ordered {
		m, ok := r.best(jobRecord(j), kept)
		if !ok {
			kept = append(kept, j)
			continue
		}
		pairs = append(pairs, Pair{Keep: kept[m.index], Drop: j, Match: m.kind, Score: m.score})
	}
	return pairs
}
