package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	dbURL      string
	verbose    bool
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "arrowquery",
	Short: "arrowquery - a query compiler for PostgreSQL",
	Long: `arrowquery compiles chained, array-like read operations over a
struct-tagged entity into a single layered SQL SELECT statement.

Features:
  - Filter/Map/Include/OrderBy/Skip/Take chains compiled to one SELECT
  - Filter and projection callbacks written as ordinary Go function literals
  - Layered sub-selects when a later stage needs a prior stage's aliases
  - Dot-path column aliases rehydrated back into nested result objects`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database connection URL")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}
