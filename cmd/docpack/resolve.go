package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/docpack/internal/observability"
	"github.com/jonathan/docpack/internal/pipeline"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve TYPE...",
	Short: "Print the generation order for a set of document types",
	Long: `Resolves the order in which the given document types would be generated.
Types may be separated by spaces or commas. Nothing is generated.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	docTypes, err := parseTypeList(args)
	if err != nil {
		return err
	}

	// no generators are needed to plan a run
	o := pipeline.New(pipeline.DefaultConfig(), nil, nil)
	order, err := o.Resolve(docTypes)
	if err != nil {
		return fmt.Errorf("resolving generation order: %w", err)
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintOrder(order, o.Table())
	return nil
}
