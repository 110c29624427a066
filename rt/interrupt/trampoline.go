package interrupt

// The functions below are called only by generated binding wrappers.

// Handler runs an interrupt handler body.
func Handler(body func()) {
	body()
}

// HandlerCS runs an interrupt handler body that takes a token. The hardware
// masks interrupts on entry to an interrupt service routine.
func HandlerCS(body func(cs CriticalSection)) {
	body(CriticalSection{})
}

// Entry runs the program entry point.
func Entry(body func()) {
	body()
}

// EntryCS runs an entry point that takes a token. Interrupts are masked from
// reset until something unmasks them.
func EntryCS(body func(cs CriticalSection)) {
	body(CriticalSection{})
}

// EntryEnable unmasks interrupts and then runs the entry point.
func EntryEnable(body func()) {
	enable()
	body()
}

// EntryEnableSetup runs setup while interrupts are still masked, unmasks
// interrupts, then runs the entry point.
func EntryEnableSetup(setup func(cs CriticalSection), body func()) {
	setup(CriticalSection{})
	enable()
	body()
}

// EntryEnableWith is EntryEnableSetup for a setup function whose result is
// handed to the entry point.
func EntryEnableWith[T any](setup func(cs CriticalSection) T, body func(T)) {
	v := setup(CriticalSection{})
	enable()
	body(v)
}
