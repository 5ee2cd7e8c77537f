package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmelton/plangate/internal/display"
	"github.com/dmelton/plangate/internal/types"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active plan and session state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus()
	},
}

func runStatus() error {
	rt, err := newRuntime("status")
	if err != nil {
		return err
	}
	d := display.New()

	if !rt.cfg.Enabled {
		fmt.Printf("%s plangate is disabled\n\n", d.Yellow("!"))
	}

	printActivePlan(rt, d)
	printSessions(rt, d)
	printContinuations(rt, d)
	return nil
}

func printActivePlan(rt *runtime, d *display.Display) {
	var plan *types.PlanState
	if ap := rt.store.ActivePlan(); ap != nil {
		plan = rt.store.LoadPlan(ap.SessionID)
	}
	if plan == nil {
		plan = rt.resolver.FindMostRecent()
	}

	if plan == nil || len(plan.Items) == 0 {
		fmt.Println("No active plan.")
		return
	}

	completed, total := plan.Progress()
	fmt.Printf("%s %s  %s\n", d.StatusIcon(completed, total), d.Bold(planTitle(plan)), d.Cyan("session "+plan.SessionID))
	fmt.Printf("  %s\n", d.Bar(completed, total))
	if attempts := rt.store.StopAttempts(plan.SessionID); attempts > 0 {
		fmt.Printf("  %s %d blocked stop attempt(s)\n", d.Yellow("!"), attempts)
	}
	fmt.Println()

	for _, item := range plan.Items {
		switch {
		case !item.IsActionable():
			fmt.Printf("      %s\n", item.Task)
		case item.Status.IsTerminal():
			fmt.Printf("  %s %s\n", d.Green("[x]"), item.Task)
		case item.Status == types.StatusInProgress:
			fmt.Printf("  %s %s\n", d.Yellow("[~]"), item.Task)
		default:
			fmt.Printf("  [ ] %s\n", item.Task)
		}
	}
}

func printSessions(rt *runtime, d *display.Display) {
	sessions := rt.store.Sessions()
	if len(sessions) == 0 {
		return
	}
	fmt.Printf("\n%s\n", d.Bold("Sessions"))
	for _, id := range sessions {
		plan := rt.store.LoadPlan(id)
		if plan == nil {
			continue
		}
		completed, total := plan.Progress()
		fmt.Printf("  %s %s  %s (%d/%d)\n", d.StatusIcon(completed, total), id, planTitle(plan), completed, total)
	}
}

func printContinuations(rt *runtime, d *display.Display) {
	recs := rt.archive.Continuations()
	if len(recs) == 0 {
		return
	}
	fmt.Printf("\n%s\n", d.Bold("Pending continuations"))
	for _, rec := range recs {
		fmt.Printf("  %s  %s (%d/%d)  saved %s\n",
			rec.SessionID, rec.PlanName, rec.CompletedCount, rec.TotalCount,
			rec.SavedAt.Format("2006-01-02 15:04"))
	}
	fmt.Printf("\nResume with: plangate resume <session-prefix>\n")
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
