package core

// mem.go implements the data-memory decoder (spec.md §4.2): it unifies the general-purpose register
// file, the I/O register window, and SRAM under one flat byte address space, dispatching reads and
// writes to the right backing store by address range. Grounded on ELSIE's memory controller
// (internal/vm/mem.go), whose Fetch/Store pair plays the same unifying role for LC-3's word-address
// space; ours is byte-addressed and has three regions instead of "everything or the I/O page".

import (
	"fmt"

	"github.com/coreavr/coreavr/internal/log"
)

// Base addresses of the data-memory regions (spec.md §3).
const (
	RegFileBase  Addr = 0x0000
	RegFileEnd   Addr = 0x001f
	IOWindowBase Addr = 0x0020
	IOWindowEnd  Addr = 0x005f
	ExtIOEnd     Addr = 0x00ff

	// SPL and SPH are the I/O registers holding the stack pointer view (spec.md §3).
	SPLAddr Addr = 0x5d
	SPHAddr Addr = 0x5e
)

// Region identifies which backing store an address decodes to (spec.md §9 Design Notes: "Use a
// discriminated variant ... rather than magic comparisons at call sites").
type Region int

const (
	RegionUnmapped Region = iota
	RegionGPR
	RegionIO
	RegionSRAM
)

func (r Region) String() string {
	switch r {
	case RegionGPR:
		return "GPR"
	case RegionIO:
		return "IO"
	case RegionSRAM:
		return "SRAM"
	default:
		return "UNMAPPED"
	}
}

// DataMemory is the unified data address space.
type DataMemory struct {
	Regs      RegisterFile
	IO        *IOBank
	SRAM      []byte
	sramStart Addr

	ioEnd Addr

	log *log.Logger
}

// NewDataMemory allocates a data-memory decoder sized by the device variant.
func NewDataMemory(v Variant) *DataMemory {
	ioEnd := IOWindowEnd
	if v.ExtendedIO {
		ioEnd = ExtIOEnd
	}

	return &DataMemory{
		IO:        NewIOBank(v.IOWindowSize()),
		SRAM:      make([]byte, v.SRAMSize),
		sramStart: v.SRAMStart,
		ioEnd:     ioEnd,
		log:       log.DefaultLogger(),
	}
}

// Classify returns the region addr decodes to.
func (m *DataMemory) Classify(addr Addr) Region {
	switch {
	case addr <= RegFileEnd:
		return RegionGPR
	case addr <= m.ioEnd:
		return RegionIO
	case addr >= m.sramStart && int(addr-m.sramStart) < len(m.SRAM):
		return RegionSRAM
	default:
		return RegionUnmapped
	}
}

// Read returns the byte at addr. Out-of-range reads return 0xff and log a warning (spec.md §4.2).
func (m *DataMemory) Read(addr Addr) byte {
	switch m.Classify(addr) {
	case RegionGPR:
		return byte(m.Regs[addr])
	case RegionIO:
		return byte(m.IO.Read(int(addr - IOWindowBase)))
	case RegionSRAM:
		return m.SRAM[addr-m.sramStart]
	default:
		m.log.Warn("read from unmapped data address", "addr", addr)
		return 0xff
	}
}

// Write stores val at addr. Out-of-range writes are a logged warning and otherwise a no-op
// (spec.md §4.2).
func (m *DataMemory) Write(addr Addr, val byte) {
	switch m.Classify(addr) {
	case RegionGPR:
		m.Regs[addr] = Byte(val)
	case RegionIO:
		m.IO.Write(int(addr-IOWindowBase), Byte(val))
	case RegionSRAM:
		m.SRAM[addr-m.sramStart] = val
	default:
		m.log.Warn("write to unmapped data address", "addr", addr, "val", val)
	}
}

// SP returns the stack pointer, read from the SPL/SPH I/O registers (8-bit variants only ever write
// SPL; SPH reads back whatever was last written there, typically left at zero).
func (m *DataMemory) SP() Addr {
	lo := m.IO.Read(int(SPLAddr - IOWindowBase))
	hi := m.IO.Read(int(SPHAddr - IOWindowBase))

	return Addr(hi)<<8 | Addr(lo)
}

// SetSP writes the stack pointer back to SPL/SPH.
func (m *DataMemory) SetSP(sp Addr) {
	m.IO.Write(int(SPLAddr-IOWindowBase), Byte(sp))
	m.IO.Write(int(SPHAddr-IOWindowBase), Byte(sp>>8))
}

// PushByte decrements SP then stores b at the new SP (spec.md §3: "Push decrements then stores").
func (m *DataMemory) PushByte(b byte) {
	sp := m.SP() - 1
	m.SetSP(sp)
	m.Write(sp, b)
}

// PopByte loads the byte at SP then increments SP (spec.md §3: "pop loads then increments").
func (m *DataMemory) PopByte() byte {
	sp := m.SP()
	val := m.Read(sp)
	m.SetSP(sp + 1)

	return val
}

func (m *DataMemory) String() string {
	return fmt.Sprintf("SP: %s\n%s", m.SP(), m.Regs)
}
