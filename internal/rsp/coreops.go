package rsp

// coreops.go adapts a *core.Core to the [CoreOps] interface. This is the "real" implementation
// named in spec.md §9; tests supply a different one (see fake_test.go's fakeCoreOps).

import "github.com/coreavr/coreavr/internal/core"

// CoreAdapter wraps a simulated core for the RSP dispatcher.
type CoreAdapter struct {
	C *core.Core
}

// NewCoreAdapter wraps c for use by a [Dispatcher].
func NewCoreAdapter(c *core.Core) *CoreAdapter {
	return &CoreAdapter{C: c}
}

func (a *CoreAdapter) ReadReg(n int) byte     { return byte(a.C.Mem.Regs[n]) }
func (a *CoreAdapter) WriteReg(n int, v byte) { a.C.Mem.Regs[n] = core.Byte(v) }

func (a *CoreAdapter) ReadSREG() byte     { return byte(a.C.SREG) }
func (a *CoreAdapter) WriteSREG(v byte)   { a.C.SREG = core.SREG(v) }

func (a *CoreAdapter) ReadPC() uint32   { return uint32(a.C.PC) }
func (a *CoreAdapter) WritePC(v uint32) { a.C.PC = core.PC(v) }

func (a *CoreAdapter) MaxPC() uint32 { return uint32(a.C.Flash.Len() - 1) }

func (a *CoreAdapter) ReadSP() uint16   { return uint16(a.C.Mem.SP()) }
func (a *CoreAdapter) WriteSP(v uint16) { a.C.Mem.SetSP(core.Addr(v)) }

func (a *CoreAdapter) ReadData(addr uint16) byte     { return a.C.Mem.Read(core.Addr(addr)) }
func (a *CoreAdapter) WriteData(addr uint16, v byte) { a.C.Mem.Write(core.Addr(addr), v) }

func (a *CoreAdapter) ReadFlash(word uint16) (uint16, error) {
	w, err := a.C.Flash.ReadWord(core.Word(word))
	return uint16(w), err
}

func (a *CoreAdapter) WriteFlash(word uint16, v uint16) error {
	return a.C.Flash.WriteWord(core.Word(word), core.Word(v))
}

func (a *CoreAdapter) WriteFlashLo(word uint16, b byte) error {
	return a.C.Flash.WriteLo(core.Word(word), b)
}

func (a *CoreAdapter) WriteFlashHi(word uint16, b byte) error {
	return a.C.Flash.WriteHi(core.Word(word), b)
}

func (a *CoreAdapter) ReadEEPROM(addr int) (byte, error)   { return a.C.EEPROM.Read(addr) }
func (a *CoreAdapter) WriteEEPROM(addr int, b byte) error { return a.C.EEPROM.Write(addr, b) }

func (a *CoreAdapter) InsertBreak(word uint16) { a.C.Breaks.Insert(core.Word(word)) }
func (a *CoreAdapter) RemoveBreak(word uint16) { a.C.Breaks.Remove(core.Word(word)) }

func (a *CoreAdapter) EnableBreakpoints()  { a.C.Breaks.EnableAll() }
func (a *CoreAdapter) DisableBreakpoints() { a.C.Breaks.DisableAll() }

func (a *CoreAdapter) Step() (core.StepResult, error) { return a.C.Step() }
func (a *CoreAdapter) Reset()                         { a.C.Reset() }

func (a *CoreAdapter) IOCount() int                  { return a.C.Mem.IO.Len() }
func (a *CoreAdapter) IOFetch(n int) (byte, string) {
	v, name := a.C.Mem.IO.Fetch(n)
	return byte(v), name
}

func (a *CoreAdapter) IRQRaise(n int) { a.C.INT.Raise(n) }
