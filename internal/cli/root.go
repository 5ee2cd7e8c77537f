package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	dataDir string
)

var rootCmd = &cobra.Command{
	Use:   "plangate",
	Short: "Plan tracking and stop gating for autonomous coding agents",
	Long: `Plangate keeps an autonomous coding agent honest about its own plan.

Hook commands (JSON in on stdin, JSON out on stdout):
  track     Capture plan files written by the agent
  sync      Reconcile the agent's todo list with the plan
  stop      Gate termination attempts on plan completion
  cleanup   Archive the session's plan when it actually ends
  prompt    Handle plan commands and inject continuation context

Human commands:
  status    Show the active plan and session state
  resume    Resume an unfinished plan from an earlier session
  clear     Clear plan state`,
	Version: version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "dir", "", "data directory (default is ./.plangate)")
	rootCmd.SetVersionTemplate(fmt.Sprintf("plangate version %s\n", version))
}
