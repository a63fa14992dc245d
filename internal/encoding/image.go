package encoding

// image.go loads raw binary flash and EEPROM images (spec.md §6: "-F <fmt>, -E <fmt>: ... only raw
// binary supported"). Grounded on ELSIE's internal/vm/loader.go ObjectCode.read, which reads a
// binary object straight into []Word with encoding/binary; generalized here to a plain byte-pair
// decode since a raw AVR flash image has no origin-address header to parse first.

import (
	"encoding/binary"
	"fmt"
)

// ErrImage is returned for a malformed raw image.
var ErrImage = fmt.Errorf("image error")

// FlashWords decodes a raw flash image into 16-bit words, little-endian (the byte order
// avr-objcopy's raw binary output uses).
func FlashWords(data []byte) ([]uint16, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("%w: odd byte length %d", ErrImage, len(data))
	}

	words := make([]uint16, len(data)/2)

	for i := range words {
		words[i] = binary.LittleEndian.Uint16(data[2*i:])
	}

	return words, nil
}

// EEPROMBytes validates a raw EEPROM image; EEPROM has no word alignment requirement, so this is
// a pass-through that exists for symmetry with FlashWords and to give image loading a single
// entry point per region.
func EEPROMBytes(data []byte) ([]byte, error) {
	return data, nil
}
