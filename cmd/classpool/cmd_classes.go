package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/classpool/classfile"
)

func newClassesCmd(cfg *config) *cobra.Command {
	var sourceNames bool

	cmd := &cobra.Command{
		Use:   "classes <file>",
		Short: "List the classes a .class file refers to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, pool, err := classfile.ParseClassFile(args[0], cfg.parseOptions()...)
			if err != nil {
				return fmt.Errorf("parse class file: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, name := range pool.ClassNames() {
				if sourceNames {
					name = classfile.InternalToSourceName(name)
				}
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&sourceNames, "source-names", false, "print java.lang.String instead of java/lang/String")

	return cmd
}
