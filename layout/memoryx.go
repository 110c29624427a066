package layout

import (
	"fmt"
	"regexp"
	"strings"

	"omibyte.io/msprt/internal/symbols"
)

var (
	commentRegex = regexp.MustCompile(`(?s)/\*.*?\*/`)
	memoryRegex  = regexp.MustCompile(`(?s)MEMORY\s*\{(.*?)\}`)
	regionRegex  = regexp.MustCompile(`^\s*(\w+)\s*(?:\([^)]*\))?\s*:\s*(?:ORIGIN|org|o)\s*=\s*([^,]+?)\s*,\s*(?:LENGTH|len|l)\s*=\s*(\S+?)\s*$`)
)

// ParseMemoryX parses the MEMORY command of a GNU linker script fragment.
// Regions are matched by name: VECTORS, ROM (or FLASH) and RAM. Everything
// other than the MEMORY command is ignored; the vector end address and count
// come from the target defaults.
func ParseMemoryX(src string) (*Layout, error) {
	src = commentRegex.ReplaceAllString(src, "")
	m := memoryRegex.FindStringSubmatch(src)
	if m == nil {
		return nil, fmt.Errorf("%w: no MEMORY command", ErrSyntax)
	}

	var l Layout
	for n, line := range strings.Split(m[1], "\n") {
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}

		parts := regionRegex.FindStringSubmatch(line)
		if parts == nil {
			return nil, fmt.Errorf("%w: MEMORY line %d: %q", ErrSyntax, n+1, strings.TrimSpace(line))
		}

		origin, err := ParseAddress(parts[2])
		if err != nil {
			return nil, err
		}
		length, err := ParseAddress(parts[3])
		if err != nil {
			return nil, err
		}

		region := Region{Name: parts[1], Origin: origin, Length: length}
		switch strings.ToUpper(parts[1]) {
		case symbols.RegionVectors:
			l.Regions.Vectors = region
		case symbols.RegionROM, "FLASH":
			l.Regions.ROM = region
		case symbols.RegionRAM:
			l.Regions.RAM = region
		}
	}

	l.setNames()
	return &l, nil
}
