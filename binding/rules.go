package binding

import "omibyte.io/msprt/internal/symbols"

type Role int

const (
	RoleReset Role = iota
	RoleEntry
	RolePreInit
	RoleInterrupt
	RoleDefaultHandler
)

func (r Role) String() string {
	switch r {
	case RoleReset:
		return "reset"
	case RoleEntry:
		return "entry"
	case RolePreInit:
		return "pre_init"
	case RoleInterrupt:
		return "interrupt"
	case RoleDefaultHandler:
		return "default_handler"
	default:
		return "unknown"
	}
}

// Rule is what a role requires of the function bound to it.
type Rule struct {
	Role Role

	// Symbol is the external symbol of the role. Interrupts use their own name.
	Symbol string

	// Max is the number of bindings a program may declare. Zero is unlimited.
	Max int

	// Required roles must be bound exactly once.
	Required bool

	// ErrCount is reported when the binding count is out of range.
	ErrCount error

	// Token reports whether the function may take a CriticalSection.
	Token bool

	// Unexported functions only.
	Unexported bool

	// Diverges requires the body to never return.
	Diverges bool

	// NoStatics forbids the function and its callees from referencing
	// package-level variables.
	NoStatics bool

	// Device requires the bound name to be in the device enumeration.
	Device bool
}

var rules = map[Role]Rule{
	RoleReset: {
		Role:   RoleReset,
		Symbol: symbols.Reset,
	},
	RoleEntry: {
		Role:       RoleEntry,
		Symbol:     symbols.Entry,
		Max:        1,
		Required:   true,
		ErrCount:   ErrDuplicateEntry,
		Token:      true,
		Unexported: true,
		Diverges:   true,
	},
	RolePreInit: {
		Role:      RolePreInit,
		Symbol:    symbols.PreInit,
		Max:       1,
		ErrCount:  ErrDuplicatePreInit,
		NoStatics: true,
	},
	RoleInterrupt: {
		Role:   RoleInterrupt,
		Token:  true,
		Device: true,
	},
	RoleDefaultHandler: {
		Role:     RoleDefaultHandler,
		Symbol:   symbols.DefaultHandler,
		Max:      1,
		ErrCount: ErrDuplicateDefault,
		Token:    true,
	},
}

// RuleFor returns the rule of a role.
func RuleFor(role Role) Rule {
	return rules[role]
}

// Directive verbs.
const (
	directivePrefix    = "//msprt:"
	verbEntry          = "entry"
	verbInterrupt      = "interrupt"
	verbPreInit        = "pre_init"
	argInterruptEnable = "interrupt_enable"
	argPreInterrupt    = "pre_interrupt"
)
