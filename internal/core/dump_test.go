package core

import (
	"bytes"
	"testing"
)

func TestDumpLoadRoundTrip(t *testing.T) {
	c := New(Variants["atmega8"])

	c.Mem.Regs[0] = 0x42
	c.Mem.Regs[16] = 0x7f
	c.SREG.Set(FlagZ, true)
	c.Mem.SetSP(0x045f)
	c.PC = 12
	c.Mem.SRAM[0] = 0xaa
	if err := c.EEPROM.Write(3, 0x55); err != nil {
		t.Fatalf("EEPROM.Write: %v", err)
	}

	if err := c.Flash.WriteWord(0, 0x0c01); err != nil {
		t.Fatalf("Flash.WriteWord: %v", err)
	}

	var buf bytes.Buffer
	if err := c.Dump(&buf); err != nil {
		t.Fatalf("Dump: %v", err)
	}

	restored := New(Variants["atmega8"])
	if err := restored.Load(&buf); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if restored.Mem.Regs[0] != 0x42 || restored.Mem.Regs[16] != 0x7f {
		t.Errorf("registers not restored: R0=%s R16=%s", restored.Mem.Regs[0], restored.Mem.Regs[16])
	}

	if !restored.SREG.Has(FlagZ) {
		t.Error("SREG.Z not restored")
	}

	if restored.Mem.SP() != 0x045f {
		t.Errorf("SP = %s, want 0x045f", restored.Mem.SP())
	}

	if restored.PC != 12 {
		t.Errorf("PC = %s, want 12", restored.PC)
	}

	if restored.Mem.SRAM[0] != 0xaa {
		t.Errorf("SRAM[0] = %#x, want 0xaa", restored.Mem.SRAM[0])
	}

	got, err := restored.EEPROM.Read(3)
	if err != nil || got != 0x55 {
		t.Errorf("EEPROM[3] = %#x, err=%v, want 0x55", got, err)
	}

	word, err := restored.Flash.ReadWord(0)
	if err != nil || word != 0x0c01 {
		t.Errorf("Flash[0] = %s, err=%v, want 0x0c01", word, err)
	}
}
