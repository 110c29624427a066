package targets

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"omibyte.io/msprt/layout"
)

//go:embed targets.yaml
var rawTargets []byte

var targets Targets

var ErrChipNotFound = errors.New("chip not found")

func All() Targets {
	return targets
}

type Targets []TargetInfo
type TargetInfo struct {
	Series          string        `yaml:"series"`
	Chips           []string      `yaml:"chips"`
	Cpu             string        `yaml:"cpu"`
	Architecture    string        `yaml:"architecture"`
	Triple          string        `yaml:"triple"`
	ToolchainPrefix string        `yaml:"toolchainPrefix"`
	Tags            []string      `yaml:"tags"`
	Layout          layout.Layout `yaml:"layout"`
}

// MemoryLayout returns a copy of the default memory layout of this target.
func (t TargetInfo) MemoryLayout() layout.Layout {
	var l layout.Layout
	l.Merge(t.Layout)
	return l
}

// LinkerFlags returns the flags passed to the toolchain driver for the given
// chip of this target.
func (t TargetInfo) LinkerFlags(chip string) []string {
	flags := []string{"-nostartfiles"}
	if len(chip) > 0 {
		flags = append(flags, "-mmcu="+strings.ToLower(chip))
	}
	if t.Cpu == "msp430x" {
		flags = append(flags, "-mlarge")
	}
	return flags
}

func (t Targets) FindByChip(name string) (TargetInfo, error) {
	for _, target := range t {
		if slices.Contains(target.Chips, strings.ToLower(name)) {
			return target, nil
		}
	}
	return TargetInfo{}, fmt.Errorf("%w: %s", ErrChipNotFound, name)
}

// Chips lists every known chip name in sorted order.
func (t Targets) Chips() []string {
	var chips []string
	for _, target := range t {
		chips = append(chips, target.Chips...)
	}
	slices.Sort(chips)
	return chips
}

func init() {
	var t struct {
		Elements []TargetInfo `yaml:"targets"`
	}
	if err := yaml.Unmarshal(rawTargets, &t); err != nil {
		panic(err)
	}

	targets = t.Elements
}
