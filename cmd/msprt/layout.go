package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"omibyte.io/msprt/builder"
	"omibyte.io/msprt/codegen"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Validate and print the memory layout of the target",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := options(nil)
		if err != nil {
			return err
		}

		result, err := builder.Resolve(opts)
		if err != nil {
			return err
		}

		l := result.Layout
		for _, r := range []fmt.Stringer{l.Regions.Vectors, l.Regions.ROM, l.Regions.RAM} {
			fmt.Println("#", r)
		}
		fmt.Printf("# %d vectors of %d bytes, stack top 0x%04X\n\n", l.VectorCount, l.PointerSize, l.StackTop())

		return codegen.MemoryX(os.Stdout, l)
	},
}
