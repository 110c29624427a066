package device

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported device description format")
	ErrSyntax            = errors.New("device description syntax error")
	ErrBadName           = errors.New("interrupt name is not a valid symbol")
	ErrBadSlot           = errors.New("invalid interrupt slot")
	ErrDuplicateName     = errors.New("interrupt name declared twice")
	ErrDuplicateSlot     = errors.New("interrupt slot declared twice")
)
