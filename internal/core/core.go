package core

// core.go assembles the virtual core from its component parts (spec.md §2) and implements the
// lifecycle operations shared by every opcode: construction, reset, and the PC/stack push-pop pair
// used by CALL/RCALL/ICALL/RET/RETI and the interrupt dispatcher. Grounded on ELSIE's machine
// assembly in internal/vm/vm.go (New, PushStack/PopStack) and cpu.go, generalized from LC-3's
// single-word PC and word-addressed stack to this architecture's variable-width PC and byte
// stack.

import (
	"errors"
	"fmt"

	"github.com/coreavr/coreavr/internal/log"
)

// Core is the simulated microcontroller: the instruction-fetch/execute loop, register file, status
// flags, program counter, flash program store, data-memory decoder, interrupt dispatcher, and
// breakpoint set (spec.md §2 component table, items 1-8).
type Core struct {
	PC   PC
	IR   Instruction
	SREG SREG

	Mem    *DataMemory
	Flash  *Flash
	EEPROM *EEPROM
	INT    *Interrupts
	Breaks *BreakpointSet

	Variant Variant

	// afterBreak, when true, exempts the next Step from the breakpoint probe and makes it re-enable
	// the breakpoint set once it completes; used only internally by the stepper's post-break
	// single-step (spec.md §4.6).
	afterBreak bool

	log *log.Logger
}

// Sentinel errors for stepper and dispatch failures.
var (
	ErrIllegalOpcode = errors.New("illegal opcode")
	errIllegalVector = errors.New("illegal interrupt vector")
)

// New constructs a core for the given device variant. All memories are sized from the variant and
// persist for the core's lifetime (spec.md §3 Lifecycle).
func New(v Variant) *Core {
	c := &Core{
		Flash:   NewFlash(v.FlashWords),
		Mem:     NewDataMemory(v),
		EEPROM:  NewEEPROM(4096),
		INT:     NewInterrupts(v.Vectors),
		Breaks:  NewBreakpointSet(),
		Variant: v,
		log:     log.DefaultLogger(),
	}

	c.mapStackRegisters()

	return c
}

// mapStackRegisters binds SPL/SPH so that plain reads/writes via the data-memory decoder
// transparently become the stack-pointer view named in spec.md §3; no hooks are needed since SPL/SPH
// are themselves plain I/O register slots indexed directly by the decoder (spec.md §4.2 map), kept
// here only as a documented no-op for discoverability and as a home for future SP-change hooks
// (e.g., a device variant that clamps SP to SRAM bounds).
func (c *Core) mapStackRegisters() {}

// Reset zeroes registers, clears SREG, sets PC to 0, and clears pending interrupts, but does not
// erase flash or EEPROM (spec.md §3 Lifecycle).
func (c *Core) Reset() {
	c.PC = 0
	c.IR = 0
	c.SREG = 0
	c.Mem.Regs = RegisterFile{}
	c.Mem.SRAM = make([]byte, len(c.Mem.SRAM))
	c.INT.Reset()
	c.afterBreak = false

	c.log.Debug("core reset")
}

func (c *Core) String() string {
	return fmt.Sprintf("PC: %s  SREG: %s  SP: %s", c.PC, c.SREG, c.Mem.SP())
}

// pcBytes is the number of bytes the PC occupies on the stack: 2 for devices with a one-word PC, 3
// for devices whose PC needs a second word's worth of extra bits.
func (c *Core) pcBytes() int {
	if c.Variant.PCWords <= 1 {
		return 2
	}

	return 3
}

// pushPC pushes the current PC onto the stack, low byte first, per spec.md §4.4/§4.5 ("push
// return-PC low byte first, then high, decrementing SP by the device's PC width").
func (c *Core) pushPC() error {
	v := uint32(c.PC)
	n := c.pcBytes()

	for i := 0; i < n; i++ {
		c.Mem.PushByte(byte(v >> (8 * uint(i))))
	}

	return nil
}

// popPC pops a PC from the stack in the reverse order it was pushed: since push decrements-then-
// stores starting with the low byte, the most recently pushed (highest) byte is popped first.
func (c *Core) popPC() PC {
	var v uint32

	n := c.pcBytes()

	for i := 0; i < n; i++ {
		b := c.Mem.PopByte()
		v |= uint32(b) << (8 * uint(n-1-i))
	}

	return PC(v)
}
