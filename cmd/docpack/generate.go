package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/docpack/internal/db"
	"github.com/jonathan/docpack/internal/observability"
	"github.com/jonathan/docpack/internal/pipeline"
	"github.com/jonathan/docpack/internal/progress"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a document package from a request file",
	Long: `Reads a JSON or YAML request (document types, context and options), generates
the requested documents in dependency order and prints a summary.

--types overrides the document types in the request file. With --output the full
result is written as JSON. With --save the result is stored in PostgreSQL.`,
	RunE: runGenerate,
}

var (
	generateFlags   commonFlags
	generateInput   string
	generateTypes   []string
	generateOutput  string
	generateClient  string
	generateSave    bool
	generateOffline bool
	generateQuiet   bool
)

func init() {
	generateFlags.register(generateCmd)
	generateCmd.Flags().StringVarP(&generateInput, "input", "i", "", "Path to the request file (JSON or YAML)")
	generateCmd.Flags().StringSliceVarP(&generateTypes, "types", "t", nil, "Document types to generate, comma separated (overrides the request file)")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Write the package result as JSON to this path")
	generateCmd.Flags().StringVar(&generateClient, "client-id", "", "Client identifier stored with the package (used with --save)")
	generateCmd.Flags().BoolVar(&generateSave, "save", false, "Store the result in PostgreSQL")
	generateCmd.Flags().BoolVar(&generateOffline, "offline", false, "Run without a model; every document is a fallback")
	generateCmd.Flags().BoolVarP(&generateQuiet, "quiet", "q", false, "Do not print progress")
	_ = generateCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := generateFlags.loadConfig(cmd)
	if err != nil {
		return err
	}

	req, err := loadRequestFile(generateInput)
	if err != nil {
		return err
	}
	rawTypes := req.DocumentTypes
	if cmd.Flags().Changed("types") {
		rawTypes = generateTypes
	}
	docTypes, err := parseTypeList(rawTypes)
	if err != nil {
		return err
	}
	if generateSave && cfg.DatabaseURL == "" {
		return fmt.Errorf("--save requires a database URL (--db-url, DATABASE_URL or database_url in config)")
	}

	a, err := buildApp(ctx, cfg, generateOffline)
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()
	printer := observability.NewPrinter(out)

	var sink progress.Sink
	if !generateQuiet {
		sink = progress.SinkFunc(printer.PrintProgress)
	}

	result := a.orchestrator.Generate(ctx, pipeline.Request{
		DocumentTypes: docTypes,
		Context:       req.Context,
		Options:       req.Options,
	}, sink)

	printer.PrintPackage(result)
	if cfg.Verbose && len(result.Documents) > 0 {
		printer.PrintInsights(result.Insights, result.Recommendations)
	}

	if generateOutput != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		if err := os.WriteFile(generateOutput, data, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		_, _ = fmt.Fprintf(out, "Wrote %s\n", generateOutput)
	}

	if generateSave {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			return err
		}
		if err := database.SavePackage(ctx, generateClient, result); err != nil {
			return fmt.Errorf("failed to save package: %w", err)
		}
		_, _ = fmt.Fprintf(out, "Saved package %s\n", result.Metadata.PackageID)
	}

	if len(result.Errors) > 0 {
		return fmt.Errorf("package %s: %s", result.Status, result.Errors[0])
	}
	return nil
}
