package builder

import "errors"

var (
	ErrNoChip               = errors.New("no target chip specified")
	ErrPackageErrors        = errors.New("packages contain errors")
	ErrNoPackages           = errors.New("no packages matched")
	ErrConfig               = errors.New("project file error")
	ErrUnknownVerbosity     = errors.New("unknown verbosity")
	ErrUnexpectedOutputPath = errors.New("unexpected output path provided")
	ErrToolNotFound         = errors.New("toolchain executable not found")
	ErrLinkFailed           = errors.New("link failed")
)
