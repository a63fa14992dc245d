package core

// intr.go implements the interrupt dispatcher (spec.md §4.5). Unlike ELSIE's interrupt controller
// (internal/vm/intr.go), which asks each registered driver "do you want service?", this device model
// has no peripheral drivers wired into the simulator: pending flags are set directly by [Interrupts
// .Raise], mirroring the debugger's `irq_raise(n)` command (spec.md §3, §4.5) and the RSP
// dispatcher's continue-with-signal handling (spec.md §4.9). Priority is implicit in vector
// numbering: lower index is higher priority.

import "github.com/coreavr/coreavr/internal/log"

// Interrupts holds the pending-IRQ state for a vector table of the given size.
type Interrupts struct {
	pending []bool
	log     *log.Logger
}

// NewInterrupts allocates a pending-flag table sized to the device's vector count.
func NewInterrupts(vectors int) *Interrupts {
	return &Interrupts{
		pending: make([]bool, vectors),
		log:     log.DefaultLogger(),
	}
}

// Raise sets the pending flag for vector n. It is a no-op if n is out of range. The debugger's
// `irq_raise(n)` command and the RSP continue-with-signal path (spec.md §4.9) both call this; actual
// delivery happens at the next dispatch point.
func (in *Interrupts) Raise(n int) {
	if n < 0 || n >= len(in.pending) {
		in.log.Warn("irq_raise: vector out of range", "vector", n)
		return
	}

	in.pending[n] = true
}

// Clear clears the pending flag for vector n.
func (in *Interrupts) Clear(n int) {
	if n >= 0 && n < len(in.pending) {
		in.pending[n] = false
	}
}

// Reset clears every pending flag.
func (in *Interrupts) Reset() {
	for i := range in.pending {
		in.pending[i] = false
	}
}

// Highest returns the lowest-numbered (highest priority) pending vector and true, or (0, false) if
// none are pending.
func (in *Interrupts) Highest() (int, bool) {
	for n, p := range in.pending {
		if p {
			return n, true
		}
	}

	return 0, false
}

// Dispatch services the highest-priority pending interrupt, if SREG.I is set and one is pending
// (spec.md §4.5). It clears the vector's pending flag and SREG.I, pushes the current PC, and
// transfers control to the vector's flash address. It must be called only between instructions,
// never within a multi-cycle instruction (spec.md §4.5, §5 ordering guarantee 1).
func (c *Core) Dispatch() (delivered bool, err error) {
	if !c.SREG.Has(FlagI) {
		return false, nil
	}

	vec, ok := c.INT.Highest()
	if !ok {
		return false, nil
	}

	c.INT.Clear(vec)
	c.SREG.Set(FlagI, false)

	if err := c.pushPC(); err != nil {
		return false, err
	}

	addr, err := c.vectorAddr(vec)
	if err != nil {
		return false, err
	}

	c.log.Debug("interrupt dispatched", "vector", vec, "pc", addr)

	c.PC = addr

	return true, nil
}

// vectorAddr returns the flash address of vector n: each vector occupies one PC-width slot starting
// at word 0 (the reset vector), matching the real device's jump table laid out by the linker.
func (c *Core) vectorAddr(n int) (PC, error) {
	if n < 0 || n >= c.Variant.Vectors {
		return 0, errIllegalVector
	}

	return PC(n * c.Variant.PCWords), nil
}
