package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dmelton/plangate/internal/display"
)

var resumeSession string

var resumeCmd = &cobra.Command{
	Use:   "resume <session-prefix>",
	Short: "Resume an unfinished plan from an earlier session",
	Long: `Resume consumes a continuation record saved when a session ended with
incomplete plan items. The plan is re-created under a new session id with
all item ids and statuses preserved, and the record is deleted so it
cannot be resumed twice.

The argument may be a full session id or any unique prefix of one. Run
"plangate status" to list pending continuations.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runResume(args[0])
	},
}

func runResume(prefix string) error {
	rt, err := newRuntime("resume")
	if err != nil {
		return err
	}

	newID := resumeSession
	if newID == "" {
		newID = uuid.NewString()
	}

	plan, err := rt.archive.Resume(prefix, newID, rt.store)
	if err != nil {
		return err
	}

	d := display.New()
	completed, total := plan.Progress()
	fmt.Printf("%s Resumed plan %s as session %s\n", d.Green("✓"), d.Bold(planTitle(plan)), d.Cyan(newID))
	fmt.Printf("  %s\n", d.Bar(completed, total))
	for _, item := range plan.IncompleteItems() {
		fmt.Printf("  [ ] %s\n", item.Task)
	}
	return nil
}

func init() {
	resumeCmd.Flags().StringVar(&resumeSession, "session", "", "session id for the resumed plan (default is a new UUID)")
	rootCmd.AddCommand(resumeCmd)
}
