package filtering

import "github.com/jcii/hunt/internal/domain"

// Candidates is the working set passed through the pipeline.
type Candidates struct {
	Items    []domain.Candidate
	Rejected []Rejection
}

// Rejection records a candidate dropped by a filter.
type Rejection struct {
	Candidate domain.Candidate
	Filter    string
	Reason    string
}

// NewCandidates wraps items for filtering. The slice is copied.
func NewCandidates(items []domain.Candidate) *Candidates {
	return &Candidates{Items: append([]domain.Candidate(nil), items...)}
}

func (c *Candidates) Len() int {
	return len(c.Items)
}

// Exclude drops every item for which reject returns a non-empty reason.
// The order of the remaining items is preserved.
func (c *Candidates) Exclude(filter string, reject func(domain.Candidate) string) []Rejection {
	var dropped []Rejection
	kept := c.Items[:0]
	for _, item := range c.Items {
		if reason := reject(item); reason != "" {
			dropped = append(dropped, Rejection{Candidate: item, Filter: filter, Reason: reason})
			continue
		}
		kept = append(kept, item)
	}
	c.Items = kept
	c.Rejected = append(c.Rejected, dropped...)
	return dropped
}
