package core

// eeprom.go implements byte-addressed, byte-granular non-volatile storage (spec.md §3). No I/O
// registers (EEAR/EEDR/EECR) are bound to it, so firmware running on the core cannot reach it; it
// is filled by the `-e` image load and addressed directly by the RSP dispatcher for GDB's `m`/`M`
// commands over the EEPROM address space (spec.md §4.9).

import "fmt"

// EEPROM is a flat byte-addressed store.
type EEPROM struct {
	cell []byte
}

// NewEEPROM allocates an EEPROM of the given byte size.
func NewEEPROM(size int) *EEPROM {
	return &EEPROM{cell: make([]byte, size)}
}

// Len returns the size of the store, in bytes.
func (e *EEPROM) Len() int {
	return len(e.cell)
}

// Read returns the byte at addr.
func (e *EEPROM) Read(addr int) (byte, error) {
	if addr < 0 || addr >= len(e.cell) {
		return 0xff, fmt.Errorf("eeprom: address %#x out of range (len=%d)", addr, len(e.cell))
	}

	return e.cell[addr], nil
}

// Write sets the byte at addr.
func (e *EEPROM) Write(addr int, val byte) error {
	if addr < 0 || addr >= len(e.cell) {
		return fmt.Errorf("eeprom: address %#x out of range (len=%d)", addr, len(e.cell))
	}

	e.cell[addr] = val

	return nil
}

// LoadRaw loads a raw binary EEPROM image starting at byte 0. Per SPEC_FULL.md's supplemented
// features, this is the `-e <file>` image load; only raw binary is supported, matching spec.md §6's
// constraint on flash images.
func (e *EEPROM) LoadRaw(data []byte) (int, error) {
	n := copy(e.cell, data)

	return n, nil
}
