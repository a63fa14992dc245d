package core

import "testing"

func TestSetAddFlagsWorkedExample(t *testing.T) {
	var c Core

	c.setAddFlags(0x80, 0x80, 0x00) // R16=0x80 + R17=0x80 = 0x00 (mod 256)

	if !c.SREG.Has(FlagZ) {
		t.Error("Z not set")
	}

	if !c.SREG.Has(FlagC) {
		t.Error("C not set")
	}

	if !c.SREG.Has(FlagV) {
		t.Error("V not set")
	}

	if c.SREG.Has(FlagN) {
		t.Error("N set, want clear")
	}

	if c.SREG.Has(FlagH) {
		t.Error("H set, want clear")
	}

	if !c.SREG.Has(FlagS) {
		t.Error("S not set")
	}
}

func TestSetSubFlagsStickyZero(t *testing.T) {
	var c Core

	c.SREG.Set(FlagZ, true)
	c.setSubFlags(5, 5, 0, true) // SBC-style: r == 0, sticky leaves Z untouched (stays set)

	if !c.SREG.Has(FlagZ) {
		t.Error("sticky subtract cleared Z on zero result, want untouched")
	}

	c.setSubFlags(5, 3, 2, true) // nonzero result always clears Z even when sticky
	if c.SREG.Has(FlagZ) {
		t.Error("sticky subtract left Z set on nonzero result")
	}
}

func TestSetSubFlagsNonSticky(t *testing.T) {
	var c Core

	c.SREG.Set(FlagZ, true)
	c.setSubFlags(5, 5, 0, false)

	if !c.SREG.Has(FlagZ) {
		t.Error("Z not set for zero result")
	}
}

func TestSetIncDecFlagsOverflow(t *testing.T) {
	var c Core

	c.setIncFlags(0x80) // 0x7f + 1 overflowed into negative
	if !c.SREG.Has(FlagV) {
		t.Error("INC 0x7f->0x80 did not set V")
	}

	c.setDecFlags(0x7f) // 0x80 - 1 overflowed out of negative
	if !c.SREG.Has(FlagV) {
		t.Error("DEC 0x80->0x7f did not set V")
	}
}

func TestSetComFlagsAlwaysSetsCarry(t *testing.T) {
	var c Core

	c.setComFlags(0x00)
	if !c.SREG.Has(FlagC) {
		t.Error("COM did not set C")
	}
}

func TestSetMulFlags(t *testing.T) {
	var c Core

	c.setMulFlags(0)
	if !c.SREG.Has(FlagZ) {
		t.Error("MUL 0 result did not set Z")
	}

	c.setMulFlags(0x8000)
	if !c.SREG.Has(FlagC) {
		t.Error("MUL top-bit result did not set C")
	}
}
