package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonathan/docpack/internal/pipeline/steps"
	"github.com/jonathan/docpack/internal/types"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the document types and what each depends on",
	Args:  cobra.NoArgs,
	RunE:  runTypes,
}

func init() {
	rootCmd.AddCommand(typesCmd)
}

func runTypes(cmd *cobra.Command, _ []string) error {
	table := steps.DefaultTable()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TYPE\tNAME\tDEPENDS ON\tREQUIRED BY")
	for _, t := range types.AllDocumentTypes() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t, t.DisplayName(),
			joinTypes(table.DependenciesOf(t)), joinTypes(table.Dependents(t)))
	}
	return w.Flush()
}

func joinTypes(list []types.DocumentType) string {
	if len(list) == 0 {
		return "-"
	}
	names := make([]string, len(list))
	for i, t := range list {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
