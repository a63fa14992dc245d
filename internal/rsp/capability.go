package rsp

// capability.go defines the dispatcher's view of a simulated core (spec.md §9 Design Notes:
// "Function-pointer 'comm' table -> trait/interface"). The original routes every RSP-to-core call
// through a struct of function pointers and an opaque user_data blob; this is recast as a Go
// interface so the dispatcher is parametric in its core and a test double can stand in without
// wiring up a real simulator.

import "github.com/coreavr/coreavr/internal/core"

// CoreOps is everything the RSP dispatcher needs from a simulated core.
type CoreOps interface {
	// ReadReg and WriteReg access one of the 32 general-purpose registers.
	ReadReg(n int) byte
	WriteReg(n int, v byte)

	ReadSREG() byte
	WriteSREG(v byte)

	// ReadPC and WritePC operate in flash words, not bytes.
	ReadPC() uint32
	WritePC(v uint32)

	// MaxPC is the highest valid word address in flash.
	MaxPC() uint32

	ReadSP() uint16
	WriteSP(v uint16)

	// ReadData and WriteData address the unified data-memory space (general-purpose registers,
	// I/O window, SRAM) by a single flat address, the same way the core's own decoder does.
	ReadData(addr uint16) byte
	WriteData(addr uint16, v byte)

	ReadFlash(word uint16) (uint16, error)
	WriteFlash(word uint16, v uint16) error
	WriteFlashLo(word uint16, b byte) error
	WriteFlashHi(word uint16, b byte) error

	ReadEEPROM(addr int) (byte, error)
	WriteEEPROM(addr int, b byte) error

	InsertBreak(word uint16)
	RemoveBreak(word uint16)
	EnableBreakpoints()
	DisableBreakpoints()

	Step() (core.StepResult, error)
	Reset()

	IOCount() int
	IOFetch(n int) (byte, string)

	IRQRaise(n int)
}
