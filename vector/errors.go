package vector

import "errors"

var (
	ErrTableTooShort    = errors.New("vector table is shorter than the device interrupt enumeration")
	ErrBadCount         = errors.New("vector table needs at least the reset slot")
	ErrUnknownInterrupt = errors.New("unknown interrupt")
	ErrUnresolved       = errors.New("unresolved vector")
	ErrBadWidth         = errors.New("unsupported vector width")
	ErrAddressRange     = errors.New("handler address does not fit the vector width")
)
