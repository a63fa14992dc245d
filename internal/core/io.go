package core

// io.go implements the I/O register bank (spec.md §4.3): a fixed-size array of named registers,
// each optionally backed by read/write side-effect hooks. This generalizes ELSIE's MMIO controller
// (internal/vm/io.go), which dispatches to either a bare [RegisterDevice] or a [ReadDriver]/
// [WriteDriver] pair, down to the AVR's simpler per-slot hook model (spec.md §4.2/§4.3: "Side-effect
// hooks run on the I/O path; pure SRAM/register accesses never invoke hooks").

import (
	"github.com/coreavr/coreavr/internal/log"
)

// ReadHook is called when its register is read. It returns the value to report to the reader.
type ReadHook func() Byte

// WriteHook is called when its register is written. It receives the byte being written and may
// mutate arbitrary core state (spec.md §4.3: "a write to SPL changes the stack pointer").
type WriteHook func(val Byte)

// IOReg is a single named, memory-mapped I/O register slot.
type IOReg struct {
	Name  string
	value Byte
	read  ReadHook
	write WriteHook
}

// Get returns the register's raw value, bypassing hooks. Used by the bank's plain reads.
func (r *IOReg) Get() Byte { return r.value }

// Put sets the register's raw value, bypassing hooks.
func (r *IOReg) Put(v Byte) { r.value = v }

// IOBank is the fixed-size array of I/O registers, spanning the base I/O window (0x20..0x5f) and,
// for variants with [Variant.ExtendedIO], the extended window (0x60..0xff).
type IOBank struct {
	regs []IOReg
	log  *log.Logger
}

// NewIOBank allocates a bank with n register slots, all initially unnamed and unhooked.
func NewIOBank(n int) *IOBank {
	bank := &IOBank{
		regs: make([]IOReg, n),
		log:  log.DefaultLogger(),
	}

	for i := range bank.regs {
		bank.regs[i].Name = "-"
	}

	return bank
}

// Len returns the number of register slots in the bank.
func (b *IOBank) Len() int {
	return len(b.regs)
}

// Bind names register n and attaches optional read/write hooks. A nil hook means "no side effect";
// reads and writes fall through to the register's plain value.
func (b *IOBank) Bind(n int, name string, read ReadHook, write WriteHook) {
	b.regs[n].Name = name
	b.regs[n].read = read
	b.regs[n].write = write
}

// Read returns the value at register n, invoking its read hook if bound.
func (b *IOBank) Read(n int) Byte {
	reg := &b.regs[n]

	if reg.read != nil {
		return reg.read()
	}

	return reg.value
}

// Write stores val at register n, invoking its write hook if bound.
func (b *IOBank) Write(n int, val Byte) {
	reg := &b.regs[n]

	reg.value = val

	if reg.write != nil {
		reg.write(val)
	}
}

// Fetch returns the value and display name of register n, for the debugger's `qR avr.io_reg`
// introspection command (spec.md §4.3, §4.9).
func (b *IOBank) Fetch(n int) (Byte, string) {
	if n < 0 || n >= len(b.regs) {
		return 0xff, "-"
	}

	return b.Read(n), b.regs[n].Name
}
