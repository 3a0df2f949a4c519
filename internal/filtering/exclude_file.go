package filtering

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jcii/hunt/internal/canonical"
	"github.com/jcii/hunt/internal/domain"
)

// ExcludedPostings is the content of an exclude file.
type ExcludedPostings struct {
	Items []*ExcludedPosting
}

type ExcludedPosting struct {
	URL        string
	JobCode    string
	Employer   string
	Title      string
	ExcludedAt time.Time
}

// ExcludedFromJobs converts tracked jobs into exclude entries.
func ExcludedFromJobs(jobs []domain.Job, now time.Time) *ExcludedPostings {
	excluded := &ExcludedPostings{}
	for _, j := range jobs {
		excluded.Items = append(excluded.Items, &ExcludedPosting{
			URL:        j.URL,
			JobCode:    j.JobCode,
			Employer:   j.EmployerName,
			Title:      j.Title,
			ExcludedAt: now.UTC(),
		})
	}
	return excluded
}

// LoadExcluded reads an exclude file. A missing or empty file is an empty list.
func LoadExcluded(path string) (*ExcludedPostings, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return &ExcludedPostings{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedPostings{}, nil
	}

	var excluded ExcludedPostings
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *ExcludedPostings) Append(s *ExcludedPostings) {
	e.Items = append(e.Items, s.Items...)
}

// ToFile writes the list, replacing the file content.
func (e *ExcludedPostings) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// keys returns the canonical URLs and job codes of the list.
func (e *ExcludedPostings) keys() (urls, codes map[string]bool) {
	urls = make(map[string]bool)
	codes = make(map[string]bool)
	for _, item := range e.Items {
		if u, code := canonical.URL(item.URL); u != "" {
			urls[u] = true
			if code != "" {
				codes[code] = true
			}
		}
		if item.JobCode != "" {
			codes[item.JobCode] = true
		}
	}
	return urls, codes
}

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes candidates listed in the exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	if f.path == "" {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	excluded, err := LoadExcluded(f.path)
	if err != nil {
		return c, Step{}, fmt.Errorf("getting excluded postings from file: %w", err)
	}

	urls, codes := excluded.keys()
	dropped := c.Exclude(f.Name(), func(item domain.Candidate) string {
		u, code := canonical.URL(item.URL)
		if code == "" {
			code = strings.TrimSpace(item.JobCode)
		}
		switch {
		case u != "" && urls[u]:
			return "url is excluded"
		case code != "" && codes[code]:
			return "job code is excluded"
		default:
			return ""
		}
	})
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding candidates based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_titles", titles(dropped)),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
