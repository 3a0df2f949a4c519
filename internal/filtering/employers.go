package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jcii/hunt/internal/domain"
	"github.com/jcii/hunt/internal/normalize"
)

type blockedEmployersFilter struct {
	employers []string
	keys      map[string]bool
}

// NewBlockedEmployers creates a filter that removes candidates from employers listed in the config.
func NewBlockedEmployers() Filter {
	return &blockedEmployersFilter{}
}

func (f *blockedEmployersFilter) Name() string { return "blocked_employers" }

func (f *blockedEmployersFilter) Disable(string) {}

func (f *blockedEmployersFilter) IsEnabled() bool { return true }

func (f *blockedEmployersFilter) Validate(cfg *Config) error {
	f.employers = nil
	f.keys = make(map[string]bool)
	if cfg != nil {
		f.employers = append(f.employers, cfg.BlockedEmployers...)
	}
	for _, e := range f.employers {
		if key := normalize.EmployerKey(e); key != "" {
			f.keys[key] = true
		}
	}
	return nil
}

func (f *blockedEmployersFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	if len(f.keys) == 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	dropped := c.Exclude(f.Name(), func(item domain.Candidate) string {
		if f.keys[normalize.EmployerKey(item.Employer)] {
			return "employer is blocked"
		}
		return ""
	})
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding candidates by employers",
			zap.Strings("excluded_employers", f.employers),
			zap.Strings("excluded_titles", titles(dropped)),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

func (f *blockedEmployersFilter) Status() Status {
	details := map[string]string{}
	if len(f.employers) > 0 {
		details["employers"] = strings.Join(f.employers, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
