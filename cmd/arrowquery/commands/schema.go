package commands

import (
	"fmt"

	"github.com/marshallshelly/arrowquery/cmd/arrowquery/output"
	"github.com/marshallshelly/arrowquery/examples/blog/models"
	"github.com/marshallshelly/arrowquery/pkg/schema"
	"github.com/spf13/cobra"
)

// schemaCmd prints the registered table, column, and relation
// descriptors for the bundled blog example's entities.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print registered table, column, and relation descriptors",
	Long: `schema declares the bundled blog example's entities against the
default schema registry and prints their table, column, and relation
descriptors, the same metadata the query composer reads when it
compiles a chain.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSchema()
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema() error {
	entities := []any{models.User{}, models.Post{}}
	for _, e := range entities {
		if err := schema.Declare(schema.Default, e); err != nil {
			return fmt.Errorf("declare %T: %w", e, err)
		}
	}

	for _, e := range entities {
		printEntity(e)
	}
	return nil
}

func printEntity(ctor any) {
	table, err := schema.Default.GetTable(ctor)
	if err != nil {
		output.Error("%v", err)
		return
	}

	output.Section(fmt.Sprintf("%s → %q", table.EntityTypeName, table.TableName))

	for _, col := range schema.Default.GetColumnsOrdered(ctor) {
		flags := ""
		if col.Primary {
			flags += " primary"
		}
		if col.Nullable {
			flags += " nullable"
		}
		fmt.Printf("  %-16s %-20s%s\n", col.FieldName, col.ColumnName, flags)
	}

	relations := schema.Default.GetRelations(ctor)
	if len(relations) == 0 {
		return
	}
	fmt.Println()
	for field, rel := range relations {
		fmt.Printf("  %-16s %s (foreignKey=%s, principalKey=%s)\n", field, rel.Type, rel.ForeignKey, rel.PrincipalKey)
	}
}
