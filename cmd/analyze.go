// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"os"

	"github.com/luthersystems/reactor/analysis"
	"github.com/luthersystems/reactor/diagnostic"
	"github.com/luthersystems/reactor/formatter"
	"github.com/luthersystems/reactor/lang"
	"github.com/luthersystems/reactor/parser"
	"github.com/luthersystems/reactor/repl"
	"github.com/spf13/cobra"
)

var (
	analyzeTree        bool
	analyzeInteractive bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [files...]",
	Short: "Run semantic analysis over source files",
	Long: `Parse the given source files, run reactor-based semantic analysis,
and report any semantic errors with their source locations.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		failed := false
		for _, path := range args {
			if !analyzeFile(path) {
				failed = true
			}
		}
		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVarP(&analyzeTree, "tree", "t", false,
		"dump the attributed syntax tree")
	analyzeCmd.Flags().BoolVarP(&analyzeInteractive, "interactive", "i", false,
		"inspect the analysis result interactively")
}

func analyzeFile(path string) bool {
	prog, err := parser.ParseFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err) //nolint:errcheck // best-effort error display
		return false
	}
	res := analysis.Analyze(prog, nil)

	if analyzeTree {
		fmt.Print(formatter.FormatFields(prog, res.Reactor))
	}

	errs := res.Errors()
	if len(errs) > 0 {
		renderer := &diagnostic.Renderer{Color: colorMode()}
		diags := diagnostic.FromErrors(errs, spanLocator)
		if err := renderer.RenderAll(os.Stderr, diags); err != nil {
			fmt.Fprintln(os.Stderr, err) //nolint:errcheck // best-effort error display
		}
	}

	if analyzeInteractive {
		repl.RunInspector(res.Reactor, printLocation)
	}
	return len(errs) == 0
}

// spanLocator maps an error location to a source span for diagnostics.
func spanLocator(location any) *diagnostic.Span {
	node, ok := location.(lang.Node)
	if !ok {
		return nil
	}
	loc := node.Loc()
	return &diagnostic.Span{
		File: loc.File,
		Line: loc.Line,
		Col:  loc.Col,
	}
}

// printLocation renders an error location for the inspector.
func printLocation(location any) string {
	if node, ok := location.(lang.Node); ok {
		return fmt.Sprintf("%v (%v)", node, node.Loc())
	}
	return fmt.Sprintf("%v", location)
}
