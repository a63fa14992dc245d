package core

// ops_ctrl.go implements the fixed-encoding control instructions (spec.md §4.4): NOP, SLEEP, WDR,
// BREAK, RET, RETI, ICALL, IJMP, EICALL, EIJMP. None of these take operand fields, so each is
// recognized by an exact word match rather than a masked family.

import "fmt"

func decodeControl(w Word) operation {
	switch w {
	case 0x0000:
		return nopOp{}
	case 0x9588:
		return sleepOp{}
	case 0x95a8:
		return wdrOp{}
	case 0x9598:
		return breakOp{}
	case 0x9508:
		return &ret{}
	case 0x9518:
		return &reti{}
	case 0x9409:
		return &ijmp{extended: false}
	case 0x9419:
		return &ijmp{extended: true}
	case 0x9509:
		return &icall{extended: false}
	case 0x9519:
		return &icall{extended: true}
	default:
		return nil
	}
}

type nopOp struct{}

func (nopOp) String() string        { return "NOP" }
func (nopOp) Execute(c *Core) error { return nil }

type sleepOp struct{}

func (sleepOp) String() string { return "SLEEP" }

func (sleepOp) Execute(c *Core) error {
	c.log.Debug("sleep")
	return nil
}

type wdrOp struct{}

func (wdrOp) String() string        { return "WDR" }
func (wdrOp) Execute(c *Core) error { return nil }

// breakOp implements BREAK. Since breakpoints are tracked in a side table rather than spliced into
// flash (spec.md §9, "Breakpoint encoding in flash"), a BREAK opcode actually present in an image
// has no debugger-visible effect here; it behaves as a documented no-op.
type breakOp struct{}

func (breakOp) String() string { return "BREAK" }

func (breakOp) Execute(c *Core) error {
	c.log.Debug("break instruction executed")
	return nil
}

// ret implements RET: pop the return address, leave SREG.I untouched.
type ret struct{}

func (op *ret) String() string { return "RET" }

func (op *ret) Execute(c *Core) error {
	c.PC = c.popPC()
	return nil
}

// reti implements RETI: pop the return address and re-enable global interrupts.
type reti struct{}

func (op *reti) String() string { return "RETI" }

func (op *reti) Execute(c *Core) error {
	c.PC = c.popPC()
	c.SREG.Set(FlagI, true)

	return nil
}

// ijmp implements IJMP and EIJMP: jump to the word address held in Z (EIJMP's EIND extension is
// not modeled, so EIJMP behaves identically to IJMP and reaches only the first 64K flash words,
// also on variants whose flash is larger).
type ijmp struct{ extended bool }

func (op *ijmp) String() string {
	if op.extended {
		return "EIJMP"
	}

	return "IJMP"
}

func (op *ijmp) Execute(c *Core) error {
	c.PC = PC(c.Mem.Regs.WordPair(ZH, ZL))
	return nil
}

// icall implements ICALL and EICALL: push the return address, then jump to the word address held
// in Z (same EIND caveat as ijmp).
type icall struct{ extended bool }

func (op *icall) String() string {
	if op.extended {
		return "EICALL"
	}

	return "ICALL"
}

func (op *icall) Execute(c *Core) error {
	if err := c.pushPC(); err != nil {
		return fmt.Errorf("icall: %w", err)
	}

	c.PC = PC(c.Mem.Regs.WordPair(ZH, ZL))

	return nil
}
