package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jcii/hunt/internal/domain"
	"github.com/jcii/hunt/internal/rank"
	"github.com/jcii/hunt/internal/store"
	"github.com/jcii/hunt/internal/utils"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked jobs",
	Run: func(cmd *cobra.Command, _ []string) {
		s := openSession()
		defer s.close()

		filter := jobFilter(s, cmd)
		jobs, err := s.tracker.List(s.ctx, filter)
		if err != nil {
			s.logger.Fatal("listing jobs", zap.Error(err))
		}
		printJobs(jobs)
	},
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Show open jobs ordered by score",
	Run: func(cmd *cobra.Command, _ []string) {
		s := openSession()
		defer s.close()

		ranked, err := s.tracker.Rank(s.ctx, jobFilter(s, cmd))
		if err != nil {
			s.logger.Fatal("ranking jobs", zap.Error(err))
		}

		all, _ := cmd.Flags().GetBool("all")
		limit, _ := cmd.Flags().GetInt("limit")

		shown := make([]rank.Ranked, 0, len(ranked))
		for _, r := range ranked {
			if !all && r.Job.Status.Terminal() {
				continue
			}
			if limit > 0 && len(shown) == limit {
				break
			}
			shown = append(shown, r)
		}
		printJobs(shown)
	},
}

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a job with its score breakdown and snapshots",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		s := openSession()
		defer s.close()

		id := parseID(s, args[0])
		d, err := s.tracker.Show(s.ctx, id)
		if err != nil {
			fatalLookup(s, "showing job", err)
		}

		j := d.Job
		fmt.Printf("Job #%d\n", j.ID)
		fmt.Printf("Title:    %s\n", j.Title)
		fmt.Printf("Employer: %s (%s)\n", d.Employer.Name, d.Employer.Status)
		fmt.Printf("Status:   %s\n", j.Status)
		if j.URL != "" {
			fmt.Printf("URL:      %s\n", j.URL)
		}
		if j.JobCode != "" {
			fmt.Printf("Code:     %s\n", j.JobCode)
		}
		if j.Source != "" {
			fmt.Printf("Source:   %s\n", j.Source)
		}
		if !j.Pay.IsZero() {
			fmt.Printf("Pay:      %s\n", j.Pay)
		}
		fmt.Printf("Created:  %s\n", j.CreatedAt.Local().Format("2006-01-02 15:04"))
		fmt.Printf("Score:    %d (base %d, pay %+d, employer %+d, status %+d)\n",
			d.Score.Total, d.Score.Base, d.Score.Pay, d.Score.Employer, d.Score.Status)

		if len(d.Snapshots) > 0 {
			last := d.Snapshots[len(d.Snapshots)-1]
			fmt.Printf("\n--- Latest snapshot (%d total), %s ---\n%s\n",
				len(d.Snapshots), last.CapturedAt.Local().Format("2006-01-02 15:04"), last.RawText)
		}
	},
}

var statusCmd = &cobra.Command{
	Use:   "status ID STATUS",
	Short: "Move a job to another status (new, reviewing, applied, rejected, closed)",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		s := openSession()
		defer s.close()

		id := parseID(s, args[0])
		to, err := domain.ParseStatus(args[1])
		if err != nil {
			s.logger.Fatal("parsing status", zap.Error(err))
		}

		var from domain.Status
		if v, _ := cmd.Flags().GetString("from"); v != "" {
			if from, err = domain.ParseStatus(v); err != nil {
				s.logger.Fatal("parsing status", zap.Error(err))
			}
		}

		job, err := s.tracker.Transition(s.ctx, id, from, to)
		if err != nil {
			fatalLookup(s, "changing status", err)
		}
		fmt.Printf("Job #%d is now %s\n", job.ID, job.Status)
	},
}

func init() {
	rootCmd.AddCommand(listCmd, rankCmd, showCmd, statusCmd)

	for _, c := range []*cobra.Command{listCmd, rankCmd} {
		c.Flags().StringP("status", "s", "", "only jobs with this status")
		c.Flags().StringP("employer", "e", "", "only jobs of this employer")
	}
	rankCmd.Flags().IntP("limit", "n", 10, "number of jobs to show, 0 for all")
	rankCmd.Flags().Bool("all", false, "include rejected and closed jobs")
	statusCmd.Flags().String("from", "", "expected current status; the change fails when the job has moved on")
}

func jobFilter(s *session, cmd *cobra.Command) domain.JobFilter {
	var f domain.JobFilter

	if v, _ := cmd.Flags().GetString("status"); v != "" {
		st, err := domain.ParseStatus(v)
		if err != nil {
			s.logger.Fatal("parsing status", zap.Error(err))
		}
		f.Status = st
	}
	if v, _ := cmd.Flags().GetString("employer"); v != "" {
		d, err := s.tracker.Employer(s.ctx, v)
		if err != nil {
			fatalLookup(s, "finding employer", err)
		}
		f.EmployerID = d.Employer.ID
	}
	return f
}

func parseID(s *session, arg string) int64 {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		s.logger.Fatal("invalid job id", zap.String("id", arg))
	}
	return id
}

// fatalLookup adds a hint when the failure is a missing record.
func fatalLookup(s *session, msg string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		s.logger.Fatal(msg, zap.Error(err), zap.String("hint", "check the id or name with `hunt list` or `hunt employer list`"))
	}
	s.logger.Fatal(msg, zap.Error(err))
}

func printJobs(jobs []rank.Ranked) {
	if len(jobs) == 0 {
		fmt.Println("No jobs found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCORE\tSTATUS\tTITLE\tEMPLOYER\tPAY\tURL")
	for _, r := range jobs {
		pay := r.Job.Pay.String()
		if pay == "" {
			pay = "-"
		}
		url := r.Job.URL
		if url == "" {
			url = "-"
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			r.Job.ID, r.Score, r.Job.Status,
			utils.TruncateForLog(utils.OneLine(r.Job.Title), 38),
			utils.TruncateForLog(r.Job.EmployerName, 23),
			pay,
			utils.TruncateForLog(url, 58),
		)
	}
	_ = w.Flush()
}
