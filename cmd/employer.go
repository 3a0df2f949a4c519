package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jcii/hunt/internal/domain"
)

var employerCmd = &cobra.Command{
	Use:   "employer",
	Short: "Manage employers",
}

var employerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List employers",
	Run: func(_ *cobra.Command, _ []string) {
		s := openSession()
		defer s.close()

		employers, err := s.tracker.Employers(s.ctx)
		if err != nil {
			s.logger.Fatal("listing employers", zap.Error(err))
		}
		if len(employers) == 0 {
			fmt.Println("No employers found.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTATUS\tNOTES")
		for _, e := range employers {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.ID, e.Name, e.Status, e.Notes)
		}
		_ = w.Flush()
	},
}

var employerShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Show an employer and its jobs",
	Args:  cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		s := openSession()
		defer s.close()

		d, err := s.tracker.Employer(s.ctx, strings.Join(args, " "))
		if err != nil {
			fatalLookup(s, "showing employer", err)
		}

		fmt.Printf("Employer: %s\n", d.Employer.Name)
		fmt.Printf("Status:   %s\n", d.Employer.Status)
		if d.Employer.Notes != "" {
			fmt.Printf("Notes:    %s\n", d.Employer.Notes)
		}
		fmt.Println()
		printJobs(d.Jobs)
	},
}

func init() {
	rootCmd.AddCommand(employerCmd)
	employerCmd.AddCommand(employerListCmd, employerShowCmd)

	verdicts := []struct {
		use    string
		short  string
		status domain.EmployerStatus
	}{
		{use: "block", short: "Never apply to this employer (score -100)", status: domain.EmployerNever},
		{use: "yuck", short: "Mark the employer as undesirable (score -20)", status: domain.EmployerYuck},
		{use: "ok", short: "Clear the verdict on an employer", status: domain.EmployerOK},
	}
	for _, v := range verdicts {
		status := v.status
		c := &cobra.Command{
			Use:   v.use + " NAME",
			Short: v.short,
			Args:  cobra.MinimumNArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				setEmployerStatus(cmd, strings.Join(args, " "), status)
			},
		}
		c.Flags().String("notes", "", "research notes to keep with the employer")
		employerCmd.AddCommand(c)
	}
}

func setEmployerStatus(cmd *cobra.Command, name string, status domain.EmployerStatus) {
	s := openSession()
	defer s.close()

	var notes *string
	if cmd.Flags().Changed("notes") {
		v, _ := cmd.Flags().GetString("notes")
		notes = &v
	}

	e, err := s.tracker.SetEmployerStatus(s.ctx, name, status, notes)
	if err != nil {
		s.logger.Fatal("setting employer status", zap.Error(err))
	}
	fmt.Printf("%s is now %s\n", e.Name, e.Status)
}
