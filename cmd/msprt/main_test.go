package main

import (
	"os"
	"path/filepath"
	"testing"

	"omibyte.io/msprt/builder"
)

func TestOptionsPreferFlags(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, builder.ConfigFile)
	if err := os.WriteFile(config, []byte("chip: msp430g2553\ndevice: g2553.svd\ntags: [board]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	saved := globalOpts
	t.Cleanup(func() { globalOpts = saved })

	globalOpts.config = config
	globalOpts.chip = "msp430fr2355"
	globalOpts.verbose = "debug"

	opts, err := options([]string{"./app"})
	if err != nil {
		t.Fatal(err)
	}

	if opts.Chip != "msp430fr2355" {
		t.Fatalf("expected the chip flag to win; got %s", opts.Chip)
	}
	if opts.Device != filepath.Join(dir, "g2553.svd") {
		t.Fatalf("expected the device from the project file; got %s", opts.Device)
	}
	if len(opts.BuildTags) != 1 || opts.BuildTags[0] != "board" {
		t.Fatalf("expected tags from the project file; got %v", opts.BuildTags)
	}
	if opts.Verbosity != builder.Debug || len(opts.Packages) != 1 {
		t.Fatalf("unexpected options %+v", opts)
	}

	globalOpts.verbose = "loud"
	if _, err = options(nil); err == nil {
		t.Fatal("expected an error for an unknown verbosity")
	}
}

func TestCommands(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, name := range []string{"generate", "check", "layout", "vectors", "link", "verify", "env"} {
		if !names[name] {
			t.Fatalf("command %s is not registered", name)
		}
	}
}
