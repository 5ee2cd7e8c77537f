package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmelton/plangate/internal/display"
)

var clearAll bool

var clearCmd = &cobra.Command{
	Use:   "clear [session-id]",
	Short: "Clear plan state",
	Long: `Clear removes the plan state and stop-attempt counter for one session,
or for every session with --all. The active-plan pointer is cleared when
it points at a removed session.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var sessionID string
		if len(args) > 0 {
			sessionID = args[0]
		}
		return runClear(sessionID)
	},
}

func runClear(sessionID string) error {
	rt, err := newRuntime("clear")
	if err != nil {
		return err
	}
	d := display.New()

	if clearAll {
		for _, id := range rt.store.Sessions() {
			if err := rt.store.DeletePlan(id); err != nil {
				return fmt.Errorf("cannot clear session %s: %w", id, err)
			}
			rt.store.ClearStopAttempts(id)
		}
		if err := rt.store.ClearActivePlan(); err != nil {
			return err
		}
		fmt.Printf("%s Cleared all sessions\n", d.Green("✓"))
		return nil
	}

	if sessionID == "" {
		ap := rt.store.ActivePlan()
		if ap == nil {
			return fmt.Errorf("no active plan; pass a session id or --all")
		}
		sessionID = ap.SessionID
	}

	if err := rt.store.DeletePlan(sessionID); err != nil {
		return fmt.Errorf("cannot clear session %s: %w", sessionID, err)
	}
	rt.store.ClearStopAttempts(sessionID)
	if ap := rt.store.ActivePlan(); ap != nil && ap.SessionID == sessionID {
		if err := rt.store.ClearActivePlan(); err != nil {
			return err
		}
	}

	fmt.Printf("%s Cleared session %s\n", d.Green("✓"), sessionID)
	return nil
}

func init() {
	clearCmd.Flags().BoolVar(&clearAll, "all", false, "clear every session")
	rootCmd.AddCommand(clearCmd)
}
