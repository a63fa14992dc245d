package core

// flash.go implements the word-addressed program store (spec.md §4.1).

import (
	"errors"
	"fmt"

	"github.com/coreavr/coreavr/internal/log"
)

// Flash is the simulated program memory: an ordered sequence of 16-bit words indexed
// [0, Len()). Breakpoints are NOT encoded into flash storage; see [BreakpointSet] for why a
// sentinel-opcode design is dropped in favor of a side-table (§9 Design Notes, "Breakpoint encoding
// in flash").
type Flash struct {
	cell []Word
	log  *log.Logger
}

// ErrFlash is the sentinel wrapped by all flash errors.
var ErrFlash = errors.New("flash error")

// NewFlash allocates a flash store of the given word size.
func NewFlash(words int) *Flash {
	return &Flash{
		cell: make([]Word, words),
		log:  log.DefaultLogger(),
	}
}

// Len returns the number of addressable words.
func (f *Flash) Len() int {
	return len(f.cell)
}

// ReadWord reads the word at w. Reading out of range returns the zero word together with an error
// wrapping [ErrFlash].
func (f *Flash) ReadWord(w Word) (Word, error) {
	if err := f.checkAddr(w); err != nil {
		return 0, err
	}

	return f.cell[w], nil
}

// WriteWord writes a full word at w.
func (f *Flash) WriteWord(w Word, val Word) error {
	if err := f.checkAddr(w); err != nil {
		return err
	}

	f.cell[w] = val

	return nil
}

// WriteLo writes the low byte of word w, leaving the high byte untouched.
func (f *Flash) WriteLo(w Word, b byte) error {
	if err := f.checkAddr(w); err != nil {
		return err
	}

	f.cell[w] = f.cell[w]&0xff00 | Word(b)

	return nil
}

// WriteHi writes the high byte of word w, leaving the low byte untouched. Per spec.md §9 Open
// Questions, this is also the path used when GDB writes flash from an odd starting address: the
// first byte written lands as the high byte of word addr/2, and the low byte is left alone.
func (f *Flash) WriteHi(w Word, b byte) error {
	if err := f.checkAddr(w); err != nil {
		return err
	}

	f.cell[w] = f.cell[w]&0x00ff | Word(b)<<8

	return nil
}

func (f *Flash) checkAddr(w Word) error {
	if int(w) >= len(f.cell) {
		return fmt.Errorf("%w: address %s out of range (len=%d)", ErrFlash, w, len(f.cell))
	}

	return nil
}

// LoadRaw loads a raw binary image starting at word 0, the only image format spec.md §6 supports.
func (f *Flash) LoadRaw(data []byte) (int, error) {
	words := (len(data) + 1) / 2

	if words > len(f.cell) {
		return 0, fmt.Errorf("%w: image too large: %d words > %d", ErrFlash, words, len(f.cell))
	}

	for i := 0; i < words; i++ {
		lo := data[2*i]

		var hi byte

		if 2*i+1 < len(data) {
			hi = data[2*i+1]
		}

		f.cell[i] = Word(lo) | Word(hi)<<8
	}

	f.log.Debug("loaded flash image", "words", words)

	return words, nil
}
