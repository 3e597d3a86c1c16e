package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dhamidi/classpool/classfile"
	"github.com/dhamidi/classpool/codebase"
	"github.com/dhamidi/classpool/graph"
)

func newGraphCmd(cfg *config) *cobra.Command {
	var roots []string
	var output string
	var workers int

	cmd := &cobra.Command{
		Use:   "graph <dir|jar>",
		Short: "Build the class reference graph of a directory or jar",
		Long: `Parse every class under the given directory or jar and print the
class reference graph in Graphviz DOT format. With --roots, print the
classes reachable from the roots instead, one per line, and restrict
the graph to them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cb := codebase.New(args[0],
				codebase.WithWorkers(workers),
				codebase.WithParseOptions(cfg.parseOptions()...))
			if err := cb.ScanAll(cmd.Context()); err != nil {
				return fmt.Errorf("scan %s: %w", args[0], err)
			}
			for _, f := range cb.Failed() {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", f.ParseErr)
			}

			g := graph.Build(cb.Classes())
			if len(roots) > 0 {
				internal := make([]string, len(roots))
				for i, r := range roots {
					internal[i] = classfile.SourceToInternalName(r)
				}
				keep := graph.Reachable(g, internal)
				for _, name := range keep {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				g = graph.Restrict(g, keep)
			}

			dot := graph.DOT(g, filepath.Base(args[0]))
			switch {
			case output != "":
				if err := os.WriteFile(output, []byte(dot), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d nodes, %d edges)\n", output, len(g.Nodes), len(g.Edges))
			case len(roots) == 0:
				fmt.Fprint(cmd.OutOrStdout(), dot)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&roots, "roots", nil, "entry point classes; print what they reach")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the DOT graph to this file")
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "parse this many files at once (default: number of CPUs)")

	return cmd
}
