package dedup

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jcii/hunt/internal/canonical"
	"github.com/jcii/hunt/internal/domain"
	"github.com/jcii/hunt/internal/normalize"
	"github.com/jcii/hunt/internal/similarity"
)

// MatchKind names the rule that decided a comparison.
// Larger values are stronger evidence.
type MatchKind int

const (
	NoMatch MatchKind = iota
	FuzzyMatch
	Substring
	ExactTitle
	ExactURL
)

func (k MatchKind) String() string {
	switch k {
	case NoMatch:
		return "no_match"
	case FuzzyMatch:
		return "fuzzy_match"
	case Substring:
		return "substring"
	case ExactTitle:
		return "exact_title"
	case ExactURL:
		return "exact_url"
	default:
		return fmt.Sprintf("match_kind(%d)", int(k))
	}
}

// IsDuplicate reports whether the kind is any duplicate rule.
func (k MatchKind) IsDuplicate() bool { return k != NoMatch }

// record is the comparable form of a candidate or a job.
type record struct {
	url      string
	employer string
	title    string
}

func candidateRecord(c domain.Candidate) record {
	url, _ := canonical.URL(c.URL)
	return record{
		url:      url,
		employer: normalize.EmployerKey(c.Employer),
		title:    normalize.Text(c.Title),
	}
}

func jobRecord(j domain.Job) record {
	url, _ := canonical.URL(j.URL)
	return record{
		url:      url,
		employer: employerKey(j),
		title:    normalize.Text(j.Title),
	}
}

// employerKey falls back to the employer id for jobs read without a name.
func employerKey(j domain.Job) string {
	if key := normalize.EmployerKey(j.EmployerName); key != "" {
		return key
	}
	if j.EmployerID != 0 {
		return fmt.Sprintf("#%d", j.EmployerID)
	}
	return ""
}

func sameURL(a, b record) bool {
	return a.url != "" && a.url == b.url
}

// evaluate applies the rules in order. The score is the graded title
// similarity and is only computed once the URL rule and the employer
// gate have been passed.
func (r *Resolver) evaluate(a, b record) (MatchKind, float64) {
	if sameURL(a, b) {
		return ExactURL, 1
	}
	if a.employer != b.employer {
		return NoMatch, 0
	}

	m := similarity.Compare(a.title, b.title)
	switch {
	case m.Exact:
		return ExactTitle, m.Score
	case m.Contains && r.substringAllowed(a.title, b.title):
		return Substring, m.Score
	case m.Score > r.cfg.FuzzyThreshold:
		return FuzzyMatch, m.Score
	default:
		return NoMatch, m.Score
	}
}

func (r *Resolver) substringAllowed(a, b string) bool {
	if r.cfg.MinSubstringLength <= 0 {
		return true
	}
	shorter := a
	if utf8.RuneCountInString(b) < utf8.RuneCountInString(a) {
		shorter = b
	}
	return utf8.RuneCountInString(strings.TrimSpace(shorter)) >= r.cfg.MinSubstringLength
}

// match is a scored comparison against one job of a set.
type match struct {
	index int
	kind  MatchKind
	score float64
	id    int64
}

// better orders matches: stronger rule, then higher score, then lower id,
// then earlier position.
func (m match) better(o match) bool {
	if m.kind != o.kind {
		return m.kind > o.kind
	}
	if m.score != o.score {
		return m.score > o.score
	}
	if m.id != o.id {
		return m.id < o.id
	}
	return m.index < o.index
}

// best finds the strongest duplicate of rec in jobs. The URL rule is checked
// across the whole set before any title comparison. ok is false when nothing
// matches.
func (r *Resolver) best(rec record, jobs []domain.Job) (match, bool) {
	records := make([]record, len(jobs))
	for i := range jobs {
		records[i] = jobRecord(jobs[i])
	}

	var (
		found bool
		top   match
	)
	consider := func(m match) {
		if !found || m.better(top) {
			top = m
			found = true
		}
	}

	for i := range records {
		if sameURL(rec, records[i]) {
			consider(match{index: i, kind: ExactURL, score: 1, id: jobs[i].ID})
		}
	}
	if found {
		return top, true
	}

	for i := range records {
		kind, score := r.evaluate(rec, records[i])
		if kind == NoMatch {
			continue
		}
		consider(match{index: i, kind: kind, score: score, id: jobs[i].ID})
	}
	return top, found
}
