// Package observability provides metrics, tracing and formatted output
// utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/docpack/internal/progress"
	"github.com/jonathan/docpack/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// progressBarWidth is the number of cells in a progress bar
	progressBarWidth = 30
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len([]rune(line)) > boxWidth-4 {
			line = string([]rune(line)[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintOrder outputs a resolved generation order with each document's
// in-package dependencies.
func (p *Printer) PrintOrder(order []types.DocumentType, deps map[types.DocumentType][]types.DocumentType) {
	if len(order) == 0 {
		return
	}

	inOrder := make(map[types.DocumentType]bool, len(order))
	for _, t := range order {
		inOrder[t] = true
	}

	var sb strings.Builder
	for i, t := range order {
		sb.WriteString(fmt.Sprintf("%d. %s", i+1, t.DisplayName()))
		var after []string
		for _, d := range deps[t] {
			if inOrder[d] {
				after = append(after, string(d))
			}
		}
		if len(after) > 0 {
			sb.WriteString(fmt.Sprintf("  (after %s)", strings.Join(after, ", ")))
		}
		sb.WriteString("\n")
	}

	p.printBox("GENERATION ORDER", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintProgress writes a single-line progress bar for a snapshot.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(s progress.Snapshot) {
	filled := s.Percentage * progressBarWidth / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)

	line := fmt.Sprintf("[%s] %3d%% %-12s %s", bar, s.Percentage, s.Status, s.Step)
	if s.Total > 0 {
		line += fmt.Sprintf(" (%d/%d)", s.Completed, s.Total)
	}
	if s.EstimatedRemainingMs > 0 {
		line += fmt.Sprintf(" ~%ds left", (s.EstimatedRemainingMs+999)/1000)
	}
	fmt.Fprintln(p.out, line)
}

// PrintPackage outputs a summary of a finished package.
func (p *Printer) PrintPackage(result *types.PackageResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Status:     %s\n", result.Status))
	sb.WriteString(fmt.Sprintf("Package:    %s\n", result.Metadata.PackageID))
	sb.WriteString(fmt.Sprintf("Documents:  %d/%d generated", result.Metadata.GeneratedCount, result.Metadata.RequestedCount))
	if result.Metadata.FallbackCount > 0 {
		sb.WriteString(fmt.Sprintf(", %d fallback", result.Metadata.FallbackCount))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Duration:   %dms\n", result.Metadata.DurationMs))

	if len(result.Documents) > 0 {
		sb.WriteString("\n")
		for _, doc := range result.Documents {
			marker := "✓"
			if doc.IsFallback() {
				marker = "!"
			}
			sb.WriteString(fmt.Sprintf("%s %-24s q=%3d  %4d words\n", marker, doc.Type, doc.Quality.Score, doc.Metadata.WordCount))
		}
	}

	if len(result.Errors) > 0 {
		sb.WriteString("\nErrors:\n")
		for _, e := range result.Errors {
			sb.WriteString(fmt.Sprintf("  • %s\n", e))
		}
	}

	p.printBox("DOCUMENT PACKAGE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintInsights outputs package insights and recommendations.
func (p *Printer) PrintInsights(insights types.Insights, recommendations []string) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Consistency: %.0f/100\n", insights.ConsistencyScore))
	if insights.StrategicPosition != "" {
		sb.WriteString(fmt.Sprintf("Position:    %s\n", insights.StrategicPosition))
	}
	writeList(&sb, "Key themes", insights.KeyThemes)
	writeList(&sb, "Risk factors", insights.RiskFactors)
	writeList(&sb, "Recommendations", recommendations)

	p.printBox("PACKAGE INSIGHTS", strings.TrimSuffix(sb.String(), "\n"))
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("\n%s:\n", title))
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}
