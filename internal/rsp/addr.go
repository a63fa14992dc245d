package rsp

// addr.go implements the GDB address-space mapping (spec.md §4.9): a single 32-bit GDB address is
// classified by its high byte into one of three simulated spaces, each with a fixed offset
// subtracted to recover the in-space address. Grounded on the discriminated-variant guidance in
// spec.md §9 Design Notes ("Use a discriminated variant {Flash, SRAM, EEPROM, Unmapped} ... rather
// than magic comparisons at call sites"), the same shape [core.Region] already uses for the
// unified data-memory decoder.

import "fmt"

// Space identifies which simulated memory a GDB address names.
type Space int

const (
	SpaceUnknown Space = iota
	SpaceFlash
	SpaceData // GDB calls this "SRAM"; it is the core's unified register/IO/SRAM address space.
	SpaceEEPROM
)

func (s Space) String() string {
	switch s {
	case SpaceFlash:
		return "flash"
	case SpaceData:
		return "data"
	case SpaceEEPROM:
		return "eeprom"
	default:
		return "unknown"
	}
}

const (
	flashOffset  = 0x000000
	dataOffset   = 0x800000
	eepromOffset = 0x810000
)

// MapAddress classifies a GDB address and returns the space it names along with the address
// local to that space (byte address for flash and data, byte offset for EEPROM).
func MapAddress(gdbAddr uint32) (Space, uint32) {
	switch gdbAddr >> 16 {
	case 0x00:
		return SpaceFlash, gdbAddr - flashOffset
	case 0x80:
		return SpaceData, gdbAddr - dataOffset
	case 0x81:
		return SpaceEEPROM, gdbAddr - eepromOffset
	default:
		return SpaceUnknown, gdbAddr
	}
}

// ErrUnmappedAddress is returned when a GDB address does not classify into a known space.
var ErrUnmappedAddress = fmt.Errorf("unmapped address")
