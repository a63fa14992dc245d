package core

import "testing"

func TestNewZeroesState(t *testing.T) {
	c := New(Variants["atmega8"])

	if c.PC != 0 {
		t.Errorf("PC = %s, want 0", c.PC)
	}

	if c.SREG != 0 {
		t.Errorf("SREG = %s, want 0", c.SREG)
	}

	if c.Flash.Len() != Variants["atmega8"].FlashWords {
		t.Errorf("Flash.Len() = %d, want %d", c.Flash.Len(), Variants["atmega8"].FlashWords)
	}
}

func TestReset(t *testing.T) {
	c := New(Variants["atmega8"])

	c.PC = 42
	c.Mem.Regs[3] = 0xaa
	c.SREG.Set(FlagZ, true)
	c.INT.Raise(2)

	c.Reset()

	if c.PC != 0 {
		t.Errorf("PC = %s after reset, want 0", c.PC)
	}

	if c.Mem.Regs[3] != 0 {
		t.Errorf("R3 = %s after reset, want 0", c.Mem.Regs[3])
	}

	if c.SREG != 0 {
		t.Errorf("SREG = %s after reset, want 0", c.SREG)
	}

	if _, ok := c.INT.Highest(); ok {
		t.Error("interrupt still pending after reset")
	}
}

func TestPushPopPC(t *testing.T) {
	c := New(Variants["atmega8"]) // PCWords == 1, 2-byte PC on stack

	c.Mem.SetSP(0x045f)
	c.PC = 0x1234

	if err := c.pushPC(); err != nil {
		t.Fatalf("pushPC: %v", err)
	}

	got := c.popPC()
	if got != 0x1234 {
		t.Errorf("popPC() = %s, want 0x1234", got)
	}
}

func TestPushPopPCWideDevice(t *testing.T) {
	c := New(Variants["atmega128"]) // PCWords == 2, 3-byte PC on stack

	c.Mem.SetSP(0x10ff)
	c.PC = 0x01abcd

	if err := c.pushPC(); err != nil {
		t.Fatalf("pushPC: %v", err)
	}

	got := c.popPC()
	if got != 0x01abcd {
		t.Errorf("popPC() = %s, want 0x01abcd", got)
	}
}
