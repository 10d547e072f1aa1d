package prompt

import "os"

// interruptSignals lists the signals that should abort an in-progress
// prompt. os.Interrupt is portable across the platforms term.MakeRaw
// supports.
func interruptSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}
