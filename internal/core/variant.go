package core

// variant.go holds the built-in device variant table. A device variant supplies the sizes and
// addresses that differ between members of the simulated family: flash size, SRAM size/start,
// program-counter width, and the size of the interrupt vector table. It is queried by both the core
// (to size its memories at construction) and the RSP dispatcher (to map addresses and answer
// capability queries), per the data model in spec.md §3.

import "fmt"

// Variant describes one member of the microcontroller family.
type Variant struct {
	Name string

	// FlashWords is the number of 16-bit words in program flash.
	FlashWords int

	// SRAMStart is the first SRAM byte address in the data-memory space; SRAM runs from SRAMStart
	// to SRAMStart+SRAMSize-1.
	SRAMStart Addr
	SRAMSize  int

	// ExtendedIO enables the 0x60..0xff extended I/O window in addition to the base 0x20..0x5f
	// window.
	ExtendedIO bool

	// PCWords is the width of the program counter, in flash words: 1 for devices with up to 8K
	// words of flash, 2 for larger devices that need a wider PC.
	PCWords int

	// Vectors is the number of entries in the interrupt vector table.
	Vectors int
}

// IOWindowSize returns the number of addressable I/O registers for the variant: 64, or 96 when
// extended I/O is enabled.
func (v Variant) IOWindowSize() int {
	if v.ExtendedIO {
		return 96
	}

	return 64
}

func (v Variant) String() string {
	return fmt.Sprintf("%s (flash=%dw sram=%d@%s vectors=%d pc=%dw)",
		v.Name, v.FlashWords, v.SRAMSize, v.SRAMStart, v.Vectors, v.PCWords)
}

// Variants is the built-in table of supported device variants, keyed by name as accepted by the
// `-d` flag (spec.md §6).
var Variants = map[string]Variant{
	"atmega8": {
		Name:       "atmega8",
		FlashWords: 4096,
		SRAMStart:  0x0060,
		SRAMSize:   1024,
		ExtendedIO: false,
		PCWords:    1,
		Vectors:    19,
	},
	"atmega16": {
		Name:       "atmega16",
		FlashWords: 8192,
		SRAMStart:  0x0060,
		SRAMSize:   1024,
		ExtendedIO: false,
		PCWords:    1,
		Vectors:    21,
	},
	"atmega32": {
		Name:       "atmega32",
		FlashWords: 16384,
		SRAMStart:  0x0060,
		SRAMSize:   2048,
		ExtendedIO: false,
		PCWords:    2,
		Vectors:    21,
	},
	"atmega128": {
		Name:       "atmega128",
		FlashWords: 65536,
		SRAMStart:  0x0100,
		SRAMSize:   4096,
		ExtendedIO: true,
		PCWords:    2,
		Vectors:    35,
	},
	"atmega2560": {
		Name:       "atmega2560",
		FlashWords: 131072,
		SRAMStart:  0x0200,
		SRAMSize:   8192,
		ExtendedIO: true,
		PCWords:    2,
		Vectors:    57,
	},
}

// DefaultVariant is used when no `-d` flag is given.
const DefaultVariant = "atmega128"

// Names returns the sorted list of variant names, for the `-L` list-devices flag.
func Names() []string {
	names := make([]string, 0, len(Variants))
	for name := range Variants {
		names = append(names, name)
	}

	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j-1] > names[j]; j-- {
			names[j-1], names[j] = names[j], names[j-1]
		}
	}

	return names
}
