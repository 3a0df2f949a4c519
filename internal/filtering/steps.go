package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jcii/hunt/internal/canonical"
	"github.com/jcii/hunt/internal/domain"
	"github.com/jcii/hunt/internal/ingest"
)

type requiredFieldsFilter struct{}

// NewRequiredFields creates a filter that rejects candidates without a title or employer.
func NewRequiredFields() Filter {
	return &requiredFieldsFilter{}
}

func (f *requiredFieldsFilter) Name() string { return "required_fields" }

// Disable is a no-op: malformed candidates never reach the resolver.
func (f *requiredFieldsFilter) Disable(string) {}

func (f *requiredFieldsFilter) IsEnabled() bool { return true }

func (f *requiredFieldsFilter) Validate(*Config) error { return nil }

func (f *requiredFieldsFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	dropped := c.Exclude(f.Name(), func(item domain.Candidate) string {
		if err := item.Validate(); err != nil {
			return err.Error()
		}
		return ""
	})
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Warn("rejecting malformed candidates",
			zap.Int("rejected", len(dropped)),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

func (f *requiredFieldsFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true}
}

type navigationArtifactsFilter struct {
	disabled bool
	reason   string
}

// NewNavigationArtifacts creates a filter that removes link text naming searches or settings pages.
func NewNavigationArtifacts() Filter {
	return &navigationArtifactsFilter{}
}

func (f *navigationArtifactsFilter) Name() string { return "navigation_artifacts" }

func (f *navigationArtifactsFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *navigationArtifactsFilter) IsEnabled() bool { return !f.disabled }

func (f *navigationArtifactsFilter) Validate(*Config) error { return nil }

func (f *navigationArtifactsFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	dropped := c.Exclude(f.Name(), func(item domain.Candidate) string {
		if ingest.IsNavigationArtifact(item.Title) {
			return "title looks like navigation text"
		}
		return ""
	})
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding navigation artifacts",
			zap.Strings("excluded_titles", titles(dropped)),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

func (f *navigationArtifactsFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: !f.disabled, Reason: f.reason}
}

type searchLinksFilter struct{}

// NewSearchLinks creates a filter that removes candidates pointing at a job search or alert page.
func NewSearchLinks() Filter {
	return &searchLinksFilter{}
}

func (f *searchLinksFilter) Name() string { return "search_links" }

func (f *searchLinksFilter) Disable(string) {}

func (f *searchLinksFilter) IsEnabled() bool { return true }

func (f *searchLinksFilter) Validate(*Config) error { return nil }

func (f *searchLinksFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	dropped := c.Exclude(f.Name(), func(item domain.Candidate) string {
		if item.URL != "" && canonical.IsSearchLink(item.URL) {
			return "url is a search or alert page"
		}
		return ""
	})
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding search links",
			zap.Strings("excluded_titles", titles(dropped)),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

func titles(rejections []Rejection) []string {
	out := make([]string, 0, len(rejections))
	for _, r := range rejections {
		out = append(out, strings.TrimSpace(r.Candidate.Title))
	}
	return out
}
