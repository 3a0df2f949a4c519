package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jcii/hunt/internal/dedup"
	"github.com/jcii/hunt/internal/domain"
	"github.com/jcii/hunt/internal/ingest"
	"github.com/jcii/hunt/internal/tracker"
	"github.com/jcii/hunt/internal/utils"
)

var importCmd = &cobra.Command{
	Use:   "import FILE...",
	Short: "Import postings from YAML files",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		importFiles(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().String("source", "", "source for entries that do not name one")
	importCmd.Flags().Bool("dry-run", false, "resolve without storing anything")
}

func importFiles(cmd *cobra.Command, files []string) {
	s := openSession()
	defer s.close()

	source, _ := cmd.Flags().GetString("source")

	var candidates []domain.Candidate
	for _, f := range files {
		loaded, err := ingest.LoadCandidates(f)
		if err != nil {
			s.logger.Fatal("loading candidates", zap.Error(err), zap.String("file", f))
		}
		for i := range loaded {
			if loaded[i].Source == "" {
				loaded[i].Source = source
			}
		}
		s.logger.Info("candidates loaded", zap.String("file", f), zap.Int("count", len(loaded)))
		candidates = append(candidates, loaded...)
	}

	if len(candidates) == 0 {
		s.logger.Info("exiting", zap.String("reason", "no candidates found"))
		return
	}

	opts := tracker.IngestOptions{Disabled: s.disabledFilters()}
	opts.DryRun, _ = cmd.Flags().GetBool("dry-run")

	report, err := s.tracker.Ingest(s.ctx, candidates, opts)
	if err != nil {
		s.logger.Fatal("importing candidates", zap.Error(err))
	}
	s.writeMetrics()

	printReport(report)
}

func printReport(report *tracker.Report) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RESULT\tJOB\tMATCH\tTITLE\tEMPLOYER\tDETAIL")
	for _, res := range report.Results {
		detail := ""
		switch {
		case res.Outcome.Decision == dedup.Merge:
			detail = "updated " + strings.Join(res.Outcome.Patch.Fields(), ", ")
		case res.Outcome.DuplicateOf >= 0:
			detail = fmt.Sprintf("same as candidate %d", res.Outcome.DuplicateOf+1)
		}
		match := ""
		if res.Outcome.Decision != dedup.Accept {
			match = res.Outcome.Match.String()
		}
		fmt.Fprintf(w, "%s\t#%d\t%s\t%s\t%s\t%s\n",
			res.Outcome.Decision, res.Job.ID, match,
			utils.TruncateForLog(utils.OneLine(res.Candidate.Title), 40), res.Candidate.Employer, detail)
	}
	for _, r := range report.Rejected {
		fmt.Fprintf(w, "rejected\t-\t%s\t%s\t%s\t%s\n",
			r.Filter, utils.TruncateForLog(utils.OneLine(r.Candidate.Title), 40), r.Candidate.Employer, r.Reason)
	}
	_ = w.Flush()

	prefix := ""
	if report.DryRun {
		prefix = "[dry run] "
	}
	fmt.Printf("\n%s%d added, %d merged, %d duplicates, %d rejected\n", prefix,
		report.Count(dedup.Accept), report.Count(dedup.Merge), report.Count(dedup.Duplicate), len(report.Rejected))
}

