package builder

import "log"

type Options struct {
	// Packages are the package patterns of the program, relative to Dir.
	Packages []string
	Dir      string

	// Output is the directory the vector table and linker scripts are
	// written to.
	Output string

	// Chip selects the target and its default memory layout.
	Chip string

	// Device is the path of the interrupt enumeration. Without one only the
	// default handler can be bound.
	Device string

	// Memory is the path of a memory descriptor that overrides the target's
	// default layout.
	Memory string

	BuildTags   []string
	Log         bool
	Environment Env
	Verbosity   Verbosity

	// Logger receives diagnostic output. The standard logger is used when
	// nil.
	Logger *log.Logger
}

// Project returns the options with every unset field taken from the project
// file.
func (o Options) Project(cfg *Config) Options {
	if cfg == nil {
		return o
	}
	if len(o.Chip) == 0 {
		o.Chip = cfg.Chip
	}
	if len(o.Device) == 0 {
		o.Device = cfg.Device
	}
	if len(o.Memory) == 0 {
		o.Memory = cfg.Memory
	}
	if len(o.Output) == 0 {
		o.Output = cfg.Output
	}
	if len(o.BuildTags) == 0 {
		o.BuildTags = cfg.Tags
	}
	if len(o.Packages) == 0 {
		o.Packages = cfg.Packages
	}
	o.Log = o.Log || cfg.Log
	return o
}
