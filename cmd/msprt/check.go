package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"omibyte.io/msprt/builder"
)

var checkCmd = &cobra.Command{
	Use:   "check [packages]",
	Short: "Validate the bindings without writing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := options(args)
		if err != nil {
			return err
		}

		result, err := builder.Check(cmd.Context(), opts)
		if err != nil {
			return err
		}

		fmt.Print(result.Summary())
		return nil
	},
}
