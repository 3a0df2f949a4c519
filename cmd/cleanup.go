package cmd

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jcii/hunt/internal/tracker"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var cleanupPrompt = promptui.Select{
	Label: "Remove these jobs?",
	Items: []string{PromptYes, PromptNo},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove duplicate jobs and navigation artifacts from the database",
	Run: func(cmd *cobra.Command, _ []string) {
		cleanup(cmd)
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().Bool("duplicates", false, "remove jobs duplicating an older job")
	cleanupCmd.Flags().Bool("artifacts", false, "remove jobs whose title is navigation text")
	cleanupCmd.Flags().Bool("dry-run", false, "show what would be removed")
	cleanupCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}

func cleanup(cmd *cobra.Command) {
	s := openSession()
	defer s.close()

	flags := cmd.Flags()
	opts := tracker.CleanupOptions{ExcludeFile: s.config.Filters.ExcludeFile}
	opts.Duplicates, _ = flags.GetBool("duplicates")
	opts.Artifacts, _ = flags.GetBool("artifacts")
	opts.DryRun, _ = flags.GetBool("dry-run")
	if !opts.Duplicates && !opts.Artifacts {
		opts.Duplicates, opts.Artifacts = true, true
	}

	var confirm tracker.Confirm
	if yes, _ := flags.GetBool("yes"); !yes {
		confirm = func(plan *tracker.CleanupPlan) (bool, error) {
			printPlan(plan)
			_, answer, err := cleanupPrompt.Run()
			if err != nil {
				return false, err
			}
			return answer == PromptYes, nil
		}
	}

	plan, err := s.tracker.Cleanup(s.ctx, opts, confirm)
	if errors.Is(err, tracker.ErrPlanChanged) {
		s.logger.Fatal("cleaning up", zap.Error(err), zap.String("hint", "run the cleanup again to review the new plan"))
	}
	if err != nil {
		s.logger.Fatal("cleaning up", zap.Error(err))
	}

	switch {
	case plan.Len() == 0:
		fmt.Println("Nothing to clean up.")
	case opts.DryRun:
		printPlan(plan)
		fmt.Println("\n[dry run] nothing removed")
	case plan.Applied:
		fmt.Printf("Removed %d duplicates and %d artifacts.\n", len(plan.Duplicates), len(plan.Artifacts))
		s.writeMetrics()
	default:
		s.logger.Info("exiting", zap.String("reason", "got no from prompt"))
	}
}

func printPlan(plan *tracker.CleanupPlan) {
	for _, p := range plan.Duplicates {
		fmt.Printf("duplicate #%d %q (%s) of #%d %q\n", p.Drop.ID, p.Drop.Title, p.Match, p.Keep.ID, p.Keep.Title)
	}
	for _, j := range plan.Artifacts {
		fmt.Printf("artifact  #%d %q\n", j.ID, j.Title)
	}
}
