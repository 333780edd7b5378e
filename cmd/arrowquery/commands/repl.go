package commands

import (
	"github.com/marshallshelly/arrowquery/cmd/arrowquery/tui"
	"github.com/marshallshelly/arrowquery/pkg/compose"
	"github.com/marshallshelly/arrowquery/pkg/schema"
	"github.com/spf13/cobra"
)

// replCmd launches an interactive TUI for browsing the bundled example
// chains and their compiled SQL.
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Browse the bundled example chains and their compiled SQL interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepl()
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl() error {
	var replScenarios []tui.ReplScenario
	for _, s := range scenarios() {
		q, err := compose.Compose(schema.Default, s.State())
		rs := tui.ReplScenario{Name: s.Name, Chain: s.Chain, Err: err}
		if err == nil {
			rs.SQL = q.SQL
		}
		replScenarios = append(replScenarios, rs)
	}
	return tui.RunRepl(replScenarios)
}
