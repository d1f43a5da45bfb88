// Package main provides the docpack command line tool and HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "docpack",
	Short: "Real estate document package generator",
	Long: `docpack generates coordinated packages of real estate documents (cover letters,
offer analyses, negotiation strategies, market and risk reports) from one client,
property and agent context, in dependency order, with fallbacks for any document
that cannot be generated.`,
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
