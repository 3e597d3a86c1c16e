package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/classpool/classfile"
	"github.com/dhamidi/classpool/format"
)

func newDumpCmd(cfg *config) *cobra.Command {
	var dumpFormat string
	var validate bool

	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Dump the constant pool of a .class file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := format.New(dumpFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			class, err := classfile.ParseFile(args[0], cfg.parseOptions()...)
			if err != nil {
				return fmt.Errorf("parse class file: %w", err)
			}
			if validate {
				if err := class.ConstantPool.Validate(); err != nil {
					return fmt.Errorf("validate %s: %w", args[0], err)
				}
			}

			if err := enc.Encode(class); err != nil {
				return fmt.Errorf("encode %s: %w", dumpFormat, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dumpFormat, "format", "f", "line", "output format ("+strings.Join(format.Names, ", ")+")")
	cmd.Flags().BoolVar(&validate, "validate", false, "check that every index points at an entry of the right kind")

	return cmd
}
