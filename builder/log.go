package builder

import (
	"fmt"
	"log"
	"strings"
)

type Verbosity int

const (
	Quiet Verbosity = iota
	Info
	Warning
	Debug
)

func ParseVerbosity(s string) (Verbosity, error) {
	switch strings.ToLower(s) {
	case "", "quiet":
		return Quiet, nil
	case "info":
		return Info, nil
	case "warning":
		return Warning, nil
	case "debug", "verbose":
		return Debug, nil
	default:
		return Quiet, fmt.Errorf("%w: %q", ErrUnknownVerbosity, s)
	}
}

func (o *Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}

func (o *Options) println(verbosity Verbosity, args ...any) {
	if o.Verbosity >= verbosity {
		o.logger().Println(args...)
	}
}

func (o *Options) printf(verbosity Verbosity, format string, args ...any) {
	if o.Verbosity >= verbosity {
		o.logger().Printf(format, args...)
	}
}
