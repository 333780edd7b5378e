package commands

import (
	"fmt"

	"github.com/marshallshelly/arrowquery/cmd/arrowquery/output"
	"github.com/marshallshelly/arrowquery/pkg/compose"
	"github.com/marshallshelly/arrowquery/pkg/schema"
	"github.com/spf13/cobra"
)

var explainScenario string

// explainCmd compiles one of the bundled chains to SQL and prints it,
// without opening a database connection: composition never touches
// the backend.
var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Compile a bundled example chain to SQL without executing it",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExplain()
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)
	explainCmd.Flags().StringVar(&explainScenario, "scenario", "", "Scenario name (default: all)")
}

func runExplain() error {
	for _, s := range scenarios() {
		if explainScenario != "" && s.Name != explainScenario {
			continue
		}

		q, err := compose.Compose(schema.Default, s.State())
		if err != nil {
			output.Error("%s: %v", s.Name, err)
			continue
		}

		output.Section(s.Name)
		output.Muted("%s", s.Chain)
		fmt.Println()
		fmt.Println(q.SQL)
		fmt.Println()
	}
	return nil
}
