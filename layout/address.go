package layout

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Address is a target address or size. It accepts hexadecimal ("0xFFE0"),
// decimal and K/M suffixed ("16K") notations.
type Address uint32

func ParseAddress(s string) (Address, error) {
	v := strings.TrimSpace(s)
	multiplier := uint64(1)
	switch {
	case strings.HasSuffix(v, "K"), strings.HasSuffix(v, "k"):
		multiplier = 1024
		v = v[:len(v)-1]
	case strings.HasSuffix(v, "M"), strings.HasSuffix(v, "m"):
		multiplier = 1024 * 1024
		v = v[:len(v)-1]
	}

	var value uint64
	var err error
	if strings.HasPrefix(v, "0x") || strings.HasPrefix(v, "0X") {
		value, err = strconv.ParseUint(v[2:], 16, 64)
	} else {
		value, err = strconv.ParseUint(v, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadAddress, s)
	}

	value *= multiplier
	if value >= 1<<32 {
		return 0, fmt.Errorf("%w: %q is out of range", ErrBadAddress, s)
	}
	return Address(value), nil
}

func (a *Address) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: expected a scalar", ErrBadAddress, node.Line)
	}
	v, err := ParseAddress(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*a = v
	return nil
}

func (a Address) MarshalYAML() (any, error) {
	return a.String(), nil
}

func (a Address) String() string {
	return fmt.Sprintf("0x%04X", uint32(a))
}
