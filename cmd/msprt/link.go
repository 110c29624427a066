package main

import (
	"github.com/spf13/cobra"

	"omibyte.io/msprt/builder"
)

var (
	linkOpts = struct {
		image string
	}{}

	linkCmd = &cobra.Command{
		Use:   "link [objects]",
		Short: "Link object files against the generated runtime files",
		Long: `Link runs the target toolchain with the generated link.x, verifies the
image and converts it when the image name ends in .hex or .bin.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options(nil)
			if err != nil {
				return err
			}
			return builder.Link(cmd.Context(), opts, args, linkOpts.image)
		},
	}

	verifyCmd = &cobra.Command{
		Use:   "verify image.elf",
		Short: "Check a linked image against the memory layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options(nil)
			if err != nil {
				return err
			}
			return builder.Verify(opts, args[0])
		},
	}

	envCmd = &cobra.Command{
		Use:   "env",
		Short: "Print the msprt environment",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			builder.Environment().Print()
		},
	}
)

func init() {
	linkCmd.Flags().StringVar(&linkOpts.image, "image", "main.elf", "linked image (.elf, .hex or .bin)")
}
