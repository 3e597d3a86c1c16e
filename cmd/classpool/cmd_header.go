package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/classpool/classfile"
)

func newHeaderCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "header <file>",
		Short: "Print the magic number, version and constant pool count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			header, pool, err := classfile.ParseClassFile(args[0], cfg.parseOptions()...)
			if err != nil {
				return fmt.Errorf("parse class file: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "magic\t0x%08X\n", header.Magic)
			fmt.Fprintf(out, "version\t%d.%d\n", header.MajorVersion, header.MinorVersion)
			fmt.Fprintf(out, "constant_pool_count\t%d\n", header.ConstantPoolCount)
			fmt.Fprintf(out, "entries\t%d\n", len(pool))
			return nil
		},
	}
}
