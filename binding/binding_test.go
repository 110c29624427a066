package binding

import (
	"errors"
	"strings"
	"testing"

	"omibyte.io/msprt/internal/symbols"
)

const validProgram = `package app

import "omibyte.io/msprt/rt/interrupt"

type Peripherals struct {
	LED uint16
}

//msprt:pre_init
func stopWatchdog() {
	write(0x0120, 0x5A80)
}

func write(addr uintptr, v uint16) {
	_ = addr
	_ = v
}

//msprt:entry interrupt_enable pre_interrupt=setup
func run(p Peripherals) {
	for {
		p.LED ^= 1
	}
}

func setup(cs interrupt.CriticalSection) Peripherals {
	return Peripherals{LED: 1}
}

//msprt:interrupt
func TIMER0_A0(cs interrupt.CriticalSection) {
}

//msprt:interrupt WDT
func watchdog() {
}

//msprt:interrupt DefaultHandler
func trap() {
	for {
	}
}
`

func TestDiscover(t *testing.T) {
	pkgs := loadProgram(t, map[string]string{"app.go": validProgram})

	set, err := Discover(pkgs, testDevice)
	if err != nil {
		t.Fatal(err)
	}

	entry := set.Entry
	if entry == nil || entry.Decl.Name.Name != "run" || entry.Symbol != symbols.Entry {
		t.Fatalf("unexpected entry binding %+v", entry)
	}
	if !entry.EnableInterrupts || entry.Setup == nil || entry.Setup.Name() != "setup" {
		t.Fatalf("expected run to enable interrupts after setup; got %+v", entry)
	}
	if entry.SetupResult == nil || !strings.HasSuffix(entry.SetupResult.String(), "Peripherals") {
		t.Fatalf("unexpected setup result %v", entry.SetupResult)
	}

	if set.PreInit == nil || set.PreInit.Symbol != symbols.PreInit || set.PreInit.Decl.Name.Name != "stopWatchdog" {
		t.Fatalf("unexpected pre-init binding %+v", set.PreInit)
	}

	if set.DefaultHandler == nil || set.DefaultHandler.Symbol != symbols.DefaultHandler {
		t.Fatalf("unexpected default handler %+v", set.DefaultHandler)
	}

	if len(set.Interrupts) != 2 {
		t.Fatalf("expected 2 interrupts; got %d", len(set.Interrupts))
	}
	timer, wdt := set.Interrupts[0], set.Interrupts[1]
	if timer.Name != "TIMER0_A0" || !timer.TakesToken || timer.Symbol != "TIMER0_A0" {
		t.Fatalf("unexpected timer binding %+v", timer)
	}
	if wdt.Name != "WDT" || wdt.TakesToken || wdt.Decl.Name.Name != "watchdog" {
		t.Fatalf("unexpected watchdog binding %+v", wdt)
	}

	names := set.InterruptNames()
	if len(names) != 3 || names[2] != symbols.DefaultHandler {
		t.Fatalf("unexpected interrupt names %v", names)
	}

	wrappers := map[string]bool{}
	for _, b := range set.All() {
		if !strings.HasPrefix(b.Wrapper, "_msprt_"+b.Role.String()+"_") {
			t.Fatalf("unexpected wrapper name %s for %s", b.Wrapper, b.Role)
		}
		if wrappers[b.Wrapper] {
			t.Fatalf("wrapper name %s issued twice", b.Wrapper)
		}
		wrappers[b.Wrapper] = true
	}

	pkgList, byPkg := set.Packages()
	if len(pkgList) != 1 || len(byPkg[pkgList[0]]) != 5 {
		t.Fatalf("expected 5 bindings in one package; got %d packages", len(pkgList))
	}
}

func TestDiscoverIsReproducible(t *testing.T) {
	first, err := Discover(loadProgram(t, map[string]string{"app.go": validProgram}), testDevice)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Discover(loadProgram(t, map[string]string{"app.go": validProgram}), testDevice)
	if err != nil {
		t.Fatal(err)
	}

	a, b := first.All(), second.All()
	for i := range a {
		if a[i].Wrapper != b[i].Wrapper {
			t.Fatalf("wrapper names differ between runs: %s and %s", a[i].Wrapper, b[i].Wrapper)
		}
	}
}

func TestWrapperNameAvoidsDeclarations(t *testing.T) {
	set, err := Discover(loadProgram(t, map[string]string{"main.go": entrySource}), nil)
	if err != nil {
		t.Fatal(err)
	}
	taken := set.Entry.Wrapper

	// Declaring the identifier in another file leaves the entry point in place.
	set, err = Discover(loadProgram(t, map[string]string{
		"main.go":  entrySource,
		"other.go": "package app\n\nfunc " + taken + "() {}\n",
	}), nil)
	if err != nil {
		t.Fatal(err)
	}

	if set.Entry.Wrapper != taken+"_1" {
		t.Fatalf("expected %s_1; got %s", taken, set.Entry.Wrapper)
	}
}

func TestNamesNeverRepeat(t *testing.T) {
	set, err := Discover(loadProgram(t, map[string]string{"main.go": entrySource}), nil)
	if err != nil {
		t.Fatal(err)
	}

	names := NewNames()
	first := names.Wrapper(set.Entry)
	second := names.Wrapper(set.Entry)
	if first == second || second != first+"_1" {
		t.Fatalf("expected distinct names; got %s and %s", first, second)
	}
}

func TestDivergentEntryForms(t *testing.T) {
	tests := map[string]string{
		"empty select": `select {}`,
		"panic":        `panic("unreachable")`,
		"helper":       `loop()`,
		"if else":      `if x := 1; x > 0 { panic(x) } else { for {} }`,
		"inner break": `for {
			for {
				break
			}
		}`,
		"labelled inner break": `outer:
		for {
			for {
				break
			}
			continue outer
		}`,
		"switch": `switch x := 3; x {
		case 1:
			panic(x)
		default:
			for {}
		}`,
		"goto": `start:
		goto start`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			src := "package app\n\n//msprt:entry\nfunc main() {\n" + body + "\n}\n\nfunc loop() {\n\tfor {\n\t}\n}\n"
			if _, err := Discover(loadProgram(t, map[string]string{"main.go": src}), nil); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestNoDeviceAllowsDefaultHandler(t *testing.T) {
	pkgs := loadProgram(t, withEntry(map[string]string{"app.go": `package app

//msprt:interrupt DefaultHandler
func fallback() {
	for {
	}
}
`}))

	set, err := Discover(pkgs, nil)
	if err != nil {
		t.Fatal(err)
	}
	if set.DefaultHandler == nil || len(set.Interrupts) != 0 {
		t.Fatalf("unexpected set %+v", set)
	}
}

func TestErrorPosition(t *testing.T) {
	src := "package app\n\n//msprt:entry\nfunc Main() {\n\tfor {\n\t}\n}\n"
	_, err := Discover(loadProgram(t, map[string]string{"main.go": src}), nil)

	var bindingErr *Error
	if !errors.As(err, &bindingErr) {
		t.Fatalf("expected a *binding.Error; got %v", err)
	}
	if bindingErr.Pos.Filename != "main.go" || bindingErr.Pos.Line != 4 {
		t.Fatalf("unexpected position %s", bindingErr.Pos)
	}
	if !strings.HasPrefix(bindingErr.Error(), "main.go:4:6: ") {
		t.Fatalf("unexpected message %q", bindingErr.Error())
	}
}

func TestAllErrorsReported(t *testing.T) {
	pkgs := loadProgram(t, withEntry(map[string]string{"app.go": `package app

//msprt:interrupt USART0
func usart() {}

//msprt:pre_init
func a(x int) {}
`}))

	_, err := Discover(pkgs, testDevice)
	if !errors.Is(err, ErrUnknownInterrupt) || !errors.Is(err, ErrSignature) {
		t.Fatalf("expected both errors to be reported; got %v", err)
	}
}
