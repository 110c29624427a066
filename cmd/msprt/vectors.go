package main

import (
	"os"

	"github.com/spf13/cobra"

	"omibyte.io/msprt/builder"
	"omibyte.io/msprt/codegen"
)

var vectorsCmd = &cobra.Command{
	Use:   "vectors [packages]",
	Short: "Print the vector table assembly of a program",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := options(args)
		if err != nil {
			return err
		}

		result, err := builder.Check(cmd.Context(), opts)
		if err != nil {
			return err
		}

		return codegen.Vectors(os.Stdout, result.Table, codegen.AsmOptions{
			Large:       result.Target.Cpu == "msp430x",
			PointerSize: result.Layout.PointerSize,
		})
	},
}
