package rank

import "github.com/jcii/hunt/internal/domain"

// Scorer rates how worth pursuing a job is given its employer's verdict.
// Higher is better.
type Scorer interface {
	Score(job domain.Job, employer domain.Employer) int
}
