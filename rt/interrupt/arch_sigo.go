//go:build sigo

package interrupt

//sigo:extern _enable_irq _enable_irq
func _enable_irq()

//sigo:extern _disable_irq _disable_irq
func _disable_irq() State

//sigo:extern _irq_state _irq_state
func _irq_state() State

func enable() {
	_enable_irq()
}

func disable() State {
	return _disable_irq()
}

func restore(s State) {
	if s&GIE != 0 {
		_enable_irq()
	} else {
		_disable_irq()
	}
}

func enabled() bool {
	return _irq_state()&GIE != 0
}
