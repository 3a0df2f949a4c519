// Package rank scores tracked jobs by desirability.
package rank

import (
	"fmt"

	"github.com/jcii/hunt/internal/domain"
)

const (
	BaseScore         = 50
	MaxPayBonus       = 30
	DefaultPayCeiling = 300000

	YuckPenalty  = -20
	NeverPenalty = -100

	ReviewingBonus = 10
	NewBonus       = 5
)

type Config struct {
	// PayCeiling is the pay that earns the full bonus.
	PayCeiling int64 `mapstructure:"pay-ceiling"`
}

func DefaultConfig() Config {
	return Config{PayCeiling: DefaultPayCeiling}
}

func (c Config) Validate() error {
	if c.PayCeiling <= 0 {
		return fmt.Errorf("rank: pay-ceiling must be positive, got %d", c.PayCeiling)
	}
	return nil
}

// Breakdown is a score split into its parts. Total is their sum.
type Breakdown struct {
	Base     int `json:"base"`
	Pay      int `json:"pay"`
	Employer int `json:"employer"`
	Status   int `json:"status"`
	Total    int `json:"total"`
}

// WeightedScorer sums the base score, a pay bonus up to MaxPayBonus, a status
// bonus and the employer penalty.
type WeightedScorer struct {
	Cfg Config
}

func (s WeightedScorer) Score(job domain.Job, employer domain.Employer) int {
	return s.Explain(job, employer).Total
}

// Explain returns the parts that make up Score. The total has no floor or ceiling.
func (s WeightedScorer) Explain(job domain.Job, employer domain.Employer) Breakdown {
	b := Breakdown{
		Base:     BaseScore,
		Pay:      s.payBonus(job.Pay),
		Employer: employerPenalty(employer.Status),
		Status:   statusBonus(job.Status),
	}
	b.Total = b.Base + b.Pay + b.Employer + b.Status
	return b
}

func (s WeightedScorer) payBonus(p domain.PayRange) int {
	ceiling := s.Cfg.PayCeiling
	if ceiling <= 0 {
		ceiling = DefaultPayCeiling
	}

	pay := p.Highest()
	if pay <= 0 {
		return 0
	}
	if pay > ceiling {
		pay = ceiling
	}
	return int(MaxPayBonus * pay / ceiling)
}

func employerPenalty(s domain.EmployerStatus) int {
	switch s {
	case domain.EmployerYuck:
		return YuckPenalty
	case domain.EmployerNever:
		return NeverPenalty
	default:
		return 0
	}
}

func statusBonus(s domain.Status) int {
	switch s {
	case domain.StatusReviewing:
		return ReviewingBonus
	case domain.StatusNew:
		return NewBonus
	default:
		return 0
	}
}
