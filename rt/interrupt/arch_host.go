//go:build !sigo

package interrupt

import "sync/atomic"

// Controller is the interrupt enable primitive of a host build. Simulators
// install their own to observe and drive masking.
type Controller interface {
	Enable()
	Disable() State
	Restore(s State)
	Enabled() bool
}

var controller Controller = &flagController{}

// SetController installs c and returns the previously installed controller.
func SetController(c Controller) Controller {
	prev := controller
	controller = c
	return prev
}

func enable() {
	controller.Enable()
}

func disable() State {
	return controller.Disable()
}

func restore(s State) {
	controller.Restore(s)
}

func enabled() bool {
	return controller.Enabled()
}

// flagController models the enable bit only. Like the hardware it starts
// with interrupts masked.
type flagController struct {
	on atomic.Bool
}

func (f *flagController) Enable() {
	f.on.Store(true)
}

func (f *flagController) Disable() State {
	if f.on.Swap(false) {
		return GIE
	}
	return 0
}

func (f *flagController) Restore(s State) {
	f.on.Store(s&GIE != 0)
}

func (f *flagController) Enabled() bool {
	return f.on.Load()
}
