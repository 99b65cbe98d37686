// Command xdbi is a small informational CLI over a local xdbi database:
// it reports per-graph, per-class entity counts. It does not expose the
// full CRUD surface — that belongs to xdbid and the Go dbiface package.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dfki-ric/xdbi/internal/layout"
)

var rootCmd = &cobra.Command{
	Use:   "xdbi",
	Short: "Inspect an xdbi database",
}

var statsCmd = &cobra.Command{
	Use:   "stats <db-dir>",
	Short: "Report per-graph, per-class entity counts",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

var styleTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))

func runStats(cmd *cobra.Command, args []string) error {
	l := layout.New(args[0])

	graphs, err := l.ListGraphs()
	if err != nil {
		return fmt.Errorf("list graphs: %w", err)
	}

	names := make([]string, 0, len(graphs))
	for g := range graphs {
		names = append(names, g)
	}
	sort.Strings(names)

	var report strings.Builder
	fmt.Fprintf(&report, "# %s\n\n", args[0])
	if len(names) == 0 {
		report.WriteString("_no graphs found_\n")
	}
	for _, graph := range names {
		classes, err := l.ListClasses(graph)
		if err != nil {
			return fmt.Errorf("list classes for %s: %w", graph, err)
		}
		fmt.Fprintf(&report, "## %s\n\n", graph)
		fmt.Fprintf(&report, "| class | entities |\n|---|---|\n")

		classNames := make([]string, 0, len(classes))
		for c := range classes {
			classNames = append(classNames, c)
		}
		sort.Strings(classNames)

		for _, class := range classNames {
			files, err := l.ListFiles(graph, class)
			if err != nil {
				return fmt.Errorf("list files for %s/%s: %w", graph, class, err)
			}
			fmt.Fprintf(&report, "| %s | %d |\n", class, len(files))
		}
		report.WriteString("\n")
	}

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return fmt.Errorf("build renderer: %w", err)
	}
	out, err := renderer.Render(report.String())
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	fmt.Println(styleTitle.Render("xdbi stats"))
	fmt.Print(out)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
