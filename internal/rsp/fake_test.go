package rsp

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/coreavr/coreavr/internal/core"
	"github.com/coreavr/coreavr/internal/log"
)

// discardLogger returns a logger that writes nowhere, for tests that exercise code paths which log
// but don't want the noise.
func discardLogger() *log.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCoreOps is a minimal, in-memory [CoreOps] test double: a test double "provides another"
// implementation, per spec.md §9's Design Note on the comm-table-to-interface translation.
type fakeCoreOps struct {
	regs  [32]byte
	sreg  byte
	pc    uint32 // Words.
	sp    uint16
	data  [2048]byte
	flash []uint16
	eprom []byte

	breaks     map[uint16]bool
	breaksOn   bool
	breakAtPC  uint32 // Not consulted by Step; Step breaks on the addresses in breaks.
	brokeOnce  bool
	resets     int
	irqsRaised []int
}

func newFakeCoreOps() *fakeCoreOps {
	return &fakeCoreOps{
		flash:    make([]uint16, 256),
		eprom:    make([]byte, 64),
		breaks:   make(map[uint16]bool),
		breaksOn: true,
	}
}

func (f *fakeCoreOps) ReadReg(n int) byte     { return f.regs[n] }
func (f *fakeCoreOps) WriteReg(n int, v byte) { f.regs[n] = v }

func (f *fakeCoreOps) ReadSREG() byte   { return f.sreg }
func (f *fakeCoreOps) WriteSREG(v byte) { f.sreg = v }

func (f *fakeCoreOps) ReadPC() uint32   { return f.pc }
func (f *fakeCoreOps) WritePC(v uint32) { f.pc = v }

func (f *fakeCoreOps) MaxPC() uint32 { return uint32(len(f.flash) - 1) }

func (f *fakeCoreOps) ReadSP() uint16   { return f.sp }
func (f *fakeCoreOps) WriteSP(v uint16) { f.sp = v }

func (f *fakeCoreOps) ReadData(addr uint16) byte     { return f.data[addr] }
func (f *fakeCoreOps) WriteData(addr uint16, v byte) { f.data[addr] = v }

func (f *fakeCoreOps) ReadFlash(word uint16) (uint16, error) {
	if int(word) >= len(f.flash) {
		return 0, fmt.Errorf("out of range")
	}

	return f.flash[word], nil
}

func (f *fakeCoreOps) WriteFlash(word uint16, v uint16) error {
	f.flash[word] = v
	return nil
}

func (f *fakeCoreOps) WriteFlashLo(word uint16, b byte) error {
	f.flash[word] = f.flash[word]&0xff00 | uint16(b)
	return nil
}

func (f *fakeCoreOps) WriteFlashHi(word uint16, b byte) error {
	f.flash[word] = f.flash[word]&0x00ff | uint16(b)<<8
	return nil
}

func (f *fakeCoreOps) ReadEEPROM(addr int) (byte, error)   { return f.eprom[addr], nil }
func (f *fakeCoreOps) WriteEEPROM(addr int, b byte) error { f.eprom[addr] = b; return nil }

func (f *fakeCoreOps) InsertBreak(word uint16) { f.breaks[word] = true }
func (f *fakeCoreOps) RemoveBreak(word uint16) { delete(f.breaks, word) }

func (f *fakeCoreOps) EnableBreakpoints()  { f.breaksOn = true }
func (f *fakeCoreOps) DisableBreakpoints() { f.breaksOn = false }

func (f *fakeCoreOps) Step() (core.StepResult, error) {
	if f.breaksOn && f.breaks[uint16(f.pc)] && !f.brokeOnce {
		f.brokeOnce = true
		return core.StepBreak, nil
	}

	f.brokeOnce = false
	f.pc++

	return core.StepOK, nil
}

func (f *fakeCoreOps) Reset() { f.resets++; f.pc = 0 }

func (f *fakeCoreOps) IOCount() int { return 2 }

func (f *fakeCoreOps) IOFetch(n int) (byte, string) {
	names := []string{"PORTB", "DDRB"}
	return byte(n), names[n]
}

func (f *fakeCoreOps) IRQRaise(n int) { f.irqsRaised = append(f.irqsRaised, n) }
