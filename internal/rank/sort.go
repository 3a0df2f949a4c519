package rank

import (
	"sort"

	"github.com/jcii/hunt/internal/domain"
)

// Ranked is a job with its employer and score.
type Ranked struct {
	Job      domain.Job
	Employer domain.Employer
	Score    int
}

// Rank scores jobs and orders them by score, highest first. Equal scores keep
// ascending job id order. Jobs whose employer is missing from employers are
// scored against a zero employer.
func Rank(s Scorer, jobs []domain.Job, employers map[int64]domain.Employer) []Ranked {
	out := make([]Ranked, 0, len(jobs))
	for _, j := range jobs {
		e := employers[j.EmployerID]
		out = append(out, Ranked{Job: j, Employer: e, Score: s.Score(j, e)})
	}
	Sort(out)
	return out
}

func Sort(r []Ranked) {
	sort.SliceStable(r, func(i, j int) bool {
		if r[i].Score != r[j].Score {
			return r[i].Score > r[j].Score
		}
		return r[i].Job.ID < r[j].Job.ID
	})
}
