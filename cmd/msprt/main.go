package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"omibyte.io/msprt/binding"
	"omibyte.io/msprt/builder"
)

var (
	globalOpts = struct {
		config  string
		chip    string
		device  string
		memory  string
		output  string
		tags    string
		verbose string
		log     bool
	}{}

	rootCmd = &cobra.Command{
		Use:   "msprt",
		Short: "Bind an MSP430 Go program to its startup and interrupt runtime",
		Long: `msprt discovers the entry point, pre-init hook and interrupt handlers of a
program, validates them and generates the wrappers, vector table and linker
scripts that connect them to the hardware.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globalOpts.config, "config", "", "project file (default: "+builder.ConfigFile+" in the working directory)")
	flags.StringVar(&globalOpts.chip, "chip", "", "target chip, e.g. msp430g2553")
	flags.StringVar(&globalOpts.device, "device", "", "device interrupt enumeration (.svd or .yaml)")
	flags.StringVar(&globalOpts.memory, "memory", "", "memory layout overriding the chip defaults (.yaml or memory.x)")
	flags.StringVarP(&globalOpts.output, "output", "o", "", "output directory of the generated build files")
	flags.StringVarP(&globalOpts.tags, "tags", "t", "", "comma separated build tags")
	flags.StringVarP(&globalOpts.verbose, "verbose", "v", "", "verbosity level (quiet, info, warning, debug)")
	flags.BoolVar(&globalOpts.log, "log", false, "keep the log metadata section in the image")

	rootCmd.AddCommand(generateCmd, checkCmd, layoutCmd, vectorsCmd, linkCmd, verifyCmd, envCmd)
}

// options builds the builder options from the project file and the flags.
// Flags take precedence.
func options(args []string) (*builder.Options, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	verbosity, err := builder.ParseVerbosity(globalOpts.verbose)
	if err != nil {
		return nil, err
	}

	opts := builder.Options{
		Packages:    args,
		Dir:         cwd,
		Output:      globalOpts.output,
		Chip:        globalOpts.chip,
		Device:      globalOpts.device,
		Memory:      globalOpts.memory,
		Log:         globalOpts.log,
		Environment: builder.Environment(),
		Verbosity:   verbosity,
	}

	if len(globalOpts.tags) > 0 {
		opts.BuildTags = strings.Split(globalOpts.tags, ",")
	}

	configFile := globalOpts.config
	if len(configFile) == 0 {
		configFile = filepath.Join(cwd, builder.ConfigFile)
	}
	cfg, err := builder.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}

	opts = opts.Project(cfg)
	return &opts, nil
}

// report prints err the way the binding errors read best: one problem per
// line.
func report(err error) {
	var bindingErr *binding.Error
	if errors.As(err, &bindingErr) {
		fmt.Println("Binding error:")
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Println("\t" + line)
		}
		return
	}
	fmt.Println("Error:", err)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		report(err)
		os.Exit(1)
	}
}
