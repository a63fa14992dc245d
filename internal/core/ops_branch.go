package core

// ops_branch.go implements the control-flow family (spec.md §4.4): BRBS/BRBC (and their named flag
// aliases), RJMP, RCALL, JMP, CALL. JMP and CALL are two-word instructions; their destination is a
// 22-bit word address split across both words.

import "fmt"

func decodeBranch(w Word) operation {
	switch {
	case w&0xfc00 == 0xf000:
		k := branchOffset(w)
		return &branch{bit: sreg3(w), set: true, offset: k}
	case w&0xfc00 == 0xf400:
		k := branchOffset(w)
		return &branch{bit: sreg3(w), set: false, offset: k}
	case w&0xf000 == 0xc000:
		return &rjmp{offset: rjmpOffset(w)}
	case w&0xf000 == 0xd000:
		return &rcall{offset: rjmpOffset(w)}
	case w&0xfe0e == 0x940c:
		return &jmp{}
	case w&0xfe0e == 0x940e:
		return &callOp{}
	default:
		return nil
	}
}

// branchMnemonic names the common flag aliases for BRBS/BRBC, by (bit, set).
var branchMnemonic = map[[2]int]string{
	{0, 1}: "BRCS", {0, 0}: "BRCC",
	{1, 1}: "BREQ", {1, 0}: "BRNE",
	{2, 1}: "BRMI", {2, 0}: "BRPL",
	{3, 1}: "BRVS", {3, 0}: "BRVC",
	{4, 1}: "BRLT", {4, 0}: "BRGE",
	{5, 1}: "BRHS", {5, 0}: "BRHC",
	{6, 1}: "BRTS", {6, 0}: "BRTC",
	{7, 1}: "BRIE", {7, 0}: "BRID",
}

// branch implements BRBS (set=true) and BRBC (set=false): branch by offset words if SREG bit is
// in the given state.
type branch struct {
	bit    uint8
	set    bool
	offset int32
}

func (op *branch) String() string {
	setBit := 0
	if op.set {
		setBit = 1
	}

	if name, ok := branchMnemonic[[2]int{int(op.bit), setBit}]; ok {
		return fmt.Sprintf("%s %d", name, op.offset)
	}

	return fmt.Sprintf("BRB%c %d,%d", map[bool]byte{true: 'S', false: 'C'}[op.set], op.bit, op.offset)
}

func (op *branch) Execute(c *Core) error {
	if c.SREG.Has(SREG(1<<op.bit)) == op.set {
		c.PC = PC(int32(c.PC) + op.offset)
	}

	return nil
}

// rjmp implements RJMP: relative jump by a 12-bit signed word offset.
type rjmp struct{ offset int32 }

func (op *rjmp) String() string { return fmt.Sprintf("RJMP %d", op.offset) }

func (op *rjmp) Execute(c *Core) error {
	c.PC = PC(int32(c.PC) + op.offset)
	return nil
}

// rcall implements RCALL: push the return address, then jump by a 12-bit signed word offset.
type rcall struct{ offset int32 }

func (op *rcall) String() string { return fmt.Sprintf("RCALL %d", op.offset) }

func (op *rcall) Execute(c *Core) error {
	if err := c.pushPC(); err != nil {
		return fmt.Errorf("rcall: %w", err)
	}

	c.PC = PC(int32(c.PC) + op.offset)

	return nil
}

// jmp implements JMP: absolute jump to a 22-bit word address, the second word fetched via
// [Core.fetchExtra].
type jmp struct{}

func (op *jmp) String() string { return "JMP" }

func (op *jmp) Execute(c *Core) error {
	addr, err := c.jmpTarget()
	if err != nil {
		return fmt.Errorf("jmp: %w", err)
	}

	c.PC = addr

	return nil
}

// callOp implements CALL: push the return address, then jump to a 22-bit word address.
type callOp struct{}

func (op *callOp) String() string { return "CALL" }

func (op *callOp) Execute(c *Core) error {
	addr, err := c.jmpTarget()
	if err != nil {
		return fmt.Errorf("call: %w", err)
	}

	if err := c.pushPC(); err != nil {
		return fmt.Errorf("call: %w", err)
	}

	c.PC = addr

	return nil
}

// jmpTarget reassembles the 22-bit word address of a JMP/CALL from the already-fetched first word
// (in IR) and its second word, fetched here.
func (c *Core) jmpTarget() (PC, error) {
	w := Word(c.IR)

	top := uint32((w>>8)&1)<<5 | uint32((w>>4)&0xf)<<1 | uint32(w&1)

	low, err := c.fetchExtra()
	if err != nil {
		return 0, err
	}

	return PC(top<<16 | uint32(low)), nil
}
