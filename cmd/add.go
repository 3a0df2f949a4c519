package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jcii/hunt/internal/dedup"
	"github.com/jcii/hunt/internal/domain"
	"github.com/jcii/hunt/internal/ingest"
	"github.com/jcii/hunt/internal/tracker"
)

var addCmd = &cobra.Command{
	Use:   "add [TEXT]",
	Short: "Add a job posting from pasted text, a file or flags",
	Long: `Add a job posting. The title, employer, url, job code and pay are read from
the text when not given as flags. HTML files are reduced to their text first.`,
	Run: func(cmd *cobra.Command, args []string) {
		add(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringP("file", "f", "", "read the posting from a text or html file")
	addCmd.Flags().StringP("title", "t", "", "job title")
	addCmd.Flags().StringP("employer", "e", "", "employer name")
	addCmd.Flags().StringP("url", "u", "", "posting url")
	addCmd.Flags().String("pay", "", "pay range, e.g. \"150k-180k\"")
	addCmd.Flags().String("description", "", "posting description")
	addCmd.Flags().String("source", "manual", "where the posting came from")
	addCmd.Flags().Bool("dry-run", false, "resolve without storing anything")
}

func add(cmd *cobra.Command, args []string) {
	s := openSession()
	defer s.close()

	content, err := readPosting(cmd, args)
	if err != nil {
		s.logger.Fatal("reading the posting", zap.Error(err))
	}

	c := domain.Candidate{}
	if content != "" {
		c = ingest.ParseText(content)
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("title"); v != "" {
		c.Title = v
	}
	if v, _ := flags.GetString("employer"); v != "" {
		c.Employer = v
	}
	if v, _ := flags.GetString("url"); v != "" {
		c.URL = v
	}
	if v, _ := flags.GetString("pay"); v != "" {
		c.Pay = ingest.ParsePay(v)
	}
	if v, _ := flags.GetString("description"); v != "" {
		c.Description = v
	}
	c.Source, _ = flags.GetString("source")

	opts := tracker.IngestOptions{Disabled: s.disabledFilters()}
	opts.DryRun, _ = flags.GetBool("dry-run")
	// A title typed by the user is never navigation text.
	if flags.Changed("title") {
		opts.Disabled["navigation_artifacts"] = "title given on the command line"
	}

	report, err := s.tracker.Ingest(s.ctx, []domain.Candidate{c}, opts)
	if err != nil {
		s.logger.Fatal("adding the posting", zap.Error(err))
	}
	s.writeMetrics()

	if len(report.Rejected) > 0 {
		r := report.Rejected[0]
		s.logger.Fatal("posting rejected",
			zap.String("filter", r.Filter),
			zap.String("reason", r.Reason),
			zap.String("hint", "pass --title and --employer to set the fields explicitly"),
		)
	}

	printResult(report.Results[0], report.DryRun)
}

// readPosting returns the posting text from --file or the arguments.
func readPosting(cmd *cobra.Command, args []string) (string, error) {
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		return strings.TrimSpace(strings.Join(args, " ")), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return ingest.TextFromHTML(bytes.NewReader(b))
	default:
		return string(b), nil
	}
}

func printResult(res tracker.Result, dryRun bool) {
	prefix := ""
	if dryRun {
		prefix = "[dry run] "
	}

	switch {
	case res.Outcome.Decision == dedup.Accept:
		fmt.Printf("%sAdded job #%d: %s at %s\n", prefix, res.Job.ID, res.Job.Title, res.Job.EmployerName)
	case res.Outcome.Decision == dedup.Merge:
		fmt.Printf("%sMerged into job #%d (%s): updated %s\n",
			prefix, res.Job.ID, res.Outcome.Match, strings.Join(res.Outcome.Patch.Fields(), ", "))
	case res.Outcome.DuplicateOf >= 0:
		fmt.Printf("%sDuplicate of candidate %d, job #%d (%s)\n", prefix, res.Outcome.DuplicateOf+1, res.Job.ID, res.Outcome.Match)
	default:
		fmt.Printf("%sAlready tracked as job #%d (%s)\n", prefix, res.Job.ID, res.Outcome.Match)
	}
}

// disabledFilters returns the filters the config switches off.
func (s *session) disabledFilters() map[string]string {
	disabled := map[string]string{}
	if s.config.Filters.SkipArtifacts {
		disabled["navigation_artifacts"] = "filters.skip-artifacts is set"
	}
	return disabled
}
