package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"omibyte.io/msprt/builder"
)

var generateCmd = &cobra.Command{
	Use:   "generate [packages]",
	Short: "Generate the binding wrappers, vector table and linker scripts",
	Long: `Generate validates the bindings of the packages and writes a wrapper file
into every package that declares one. The vector table assembly and the
linker scripts link.x, memory.x and device.x are written to the output
directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := options(args)
		if err != nil {
			return err
		}

		result, err := builder.Generate(cmd.Context(), opts)
		if err != nil {
			return err
		}

		if opts.Verbosity >= builder.Info {
			for _, fname := range result.Files {
				fmt.Println(fname)
			}
		}
		return nil
	},
}
