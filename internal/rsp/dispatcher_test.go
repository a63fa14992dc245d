package rsp

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"
)

func TestDispatchQueryStatus(t *testing.T) {
	d := NewDispatcher(newFakeCoreOps())

	reply, exit := d.Dispatch([]byte("?"), nil)
	if exit {
		t.Fatal("? reported exit")
	}

	if string(reply) != "S05" {
		t.Errorf("reply = %q, want %q", reply, "S05")
	}
}

func TestDispatchReadWriteSingleRegister(t *testing.T) {
	ops := newFakeCoreOps()
	d := NewDispatcher(ops)

	reply, _ := d.Dispatch([]byte("P5=2a"), nil)
	if string(reply) != "OK" {
		t.Fatalf("P reply = %q, want OK", reply)
	}

	if ops.regs[5] != 0x2a {
		t.Errorf("R5 = %#x, want 0x2a", ops.regs[5])
	}

	reply, _ = d.Dispatch([]byte("p5"), nil)
	if string(reply) != "2a" {
		t.Errorf("p5 reply = %q, want %q", reply, "2a")
	}
}

func TestDispatchReadWriteAllRegisters(t *testing.T) {
	ops := newFakeCoreOps()
	d := NewDispatcher(ops)

	ops.regs[0] = 0x11
	ops.sreg = 0x80
	ops.sp = 0x08ff
	ops.pc = 0x100 // Words; byte address 0x200.

	reply, _ := d.Dispatch([]byte("g"), nil)

	raw, err := hex.DecodeString(string(reply))
	if err != nil {
		t.Fatalf("decode reply: %v", err)
	}

	if len(raw) != 39 {
		t.Fatalf("len(raw) = %d, want 39", len(raw))
	}

	if raw[0] != 0x11 {
		t.Errorf("R0 = %#x, want 0x11", raw[0])
	}

	if raw[32] != 0x80 {
		t.Errorf("SREG = %#x, want 0x80", raw[32])
	}

	if raw[35] != 0x00 || raw[36] != 0x02 {
		t.Errorf("PC bytes = %#x %#x, want 0x00 0x02", raw[35], raw[36])
	}
}

func TestDispatchReadMemoryEachSpace(t *testing.T) {
	ops := newFakeCoreOps()
	ops.data[0x60] = 0x42
	ops.flash[0] = 0xc0de
	ops.eprom[3] = 0x7a

	d := NewDispatcher(ops)

	reply, _ := d.Dispatch([]byte("m800060,1"), nil)
	if string(reply) != "42" {
		t.Errorf("SRAM read = %q, want %q", reply, "42")
	}

	reply, _ = d.Dispatch([]byte("m0,2"), nil)
	if string(reply) != "dec0" {
		t.Errorf("flash read = %q, want %q (little-endian bytes of 0xc0de)", reply, "dec0")
	}

	reply, _ = d.Dispatch([]byte("m810003,1"), nil)
	if string(reply) != "7a" {
		t.Errorf("EEPROM read = %q, want %q", reply, "7a")
	}
}

func TestDispatchWriteMemory(t *testing.T) {
	ops := newFakeCoreOps()
	d := NewDispatcher(ops)

	reply, _ := d.Dispatch([]byte("M800010,2:aabb"), nil)
	if string(reply) != "OK" {
		t.Fatalf("M reply = %q, want OK", reply)
	}

	if ops.data[0x10] != 0xaa || ops.data[0x11] != 0xbb {
		t.Errorf("data[0x10:0x12] = %#x %#x, want 0xaa 0xbb", ops.data[0x10], ops.data[0x11])
	}
}

func TestDispatchUnmappedAddressReportsE05(t *testing.T) {
	ops := newFakeCoreOps()
	d := NewDispatcher(ops)

	reply, _ := d.Dispatch([]byte("m900000,1"), nil)
	if string(reply) != "E05" {
		t.Errorf("reply = %q, want E05", reply)
	}
}

func TestDispatchBreakpointInsertRemove(t *testing.T) {
	ops := newFakeCoreOps()
	d := NewDispatcher(ops)

	reply, _ := d.Dispatch([]byte("Z0,10,2"), nil)
	if string(reply) != "OK" {
		t.Fatalf("Z reply = %q, want OK", reply)
	}

	if !ops.breaks[0x08] { // Byte address 0x10 is flash word 8.
		t.Error("breakpoint not armed at word 8")
	}

	reply, _ = d.Dispatch([]byte("z0,10,2"), nil)
	if string(reply) != "OK" {
		t.Fatalf("z reply = %q, want OK", reply)
	}

	if ops.breaks[0x08] {
		t.Error("breakpoint still armed after removal")
	}
}

func TestDispatchContinueStopsAtBreakpoint(t *testing.T) {
	ops := newFakeCoreOps()
	ops.breaks[5] = true

	d := NewDispatcher(ops)

	reply, _ := d.Dispatch([]byte("c"), nil)

	if !strings.HasPrefix(string(reply), "T05") {
		t.Errorf("reply = %q, want prefix T05", reply)
	}

	if ops.pc != 5 {
		t.Errorf("pc = %d, want 5 (stopped before executing the breakpointed instruction)", ops.pc)
	}
}

func TestDispatchStepAdvancesOneInstruction(t *testing.T) {
	ops := newFakeCoreOps()
	d := NewDispatcher(ops)

	reply, _ := d.Dispatch([]byte("s"), nil)

	if !strings.HasPrefix(string(reply), "T05") {
		t.Errorf("reply = %q, want prefix T05", reply)
	}

	if ops.pc != 1 {
		t.Errorf("pc = %d, want 1", ops.pc)
	}
}

func TestDispatchContinueWithCancelReportsSigint(t *testing.T) {
	ops := newFakeCoreOps()
	d := NewDispatcher(ops)

	cancel := make(chan struct{})
	close(cancel)

	reply, _ := d.Dispatch([]byte("c"), cancel)

	if !strings.HasPrefix(string(reply), "T02") {
		t.Errorf("reply = %q, want prefix T02 (SIGINT)", reply)
	}
}

func TestDispatchSignalHangupResets(t *testing.T) {
	ops := newFakeCoreOps()
	ops.pc = 40

	d := NewDispatcher(ops)

	reply, _ := d.Dispatch([]byte("C01"), nil)

	if !strings.HasPrefix(string(reply), "T05") {
		t.Errorf("reply = %q, want prefix T05", reply)
	}

	if ops.resets != 1 {
		t.Errorf("resets = %d, want 1", ops.resets)
	}

	if ops.pc != 0 {
		t.Errorf("pc = %d, want 0 after reset", ops.pc)
	}
}

func TestDispatchSignalRaisesInterruptVector(t *testing.T) {
	ops := newFakeCoreOps()
	ops.breaks[0] = true // Stop immediately so the test doesn't spin.

	d := NewDispatcher(ops)

	d.Dispatch([]byte("C62"), nil) // 0x62 = 98 = irqSignalBase(94) + 4.

	if len(ops.irqsRaised) != 1 || ops.irqsRaised[0] != 4 {
		t.Errorf("irqsRaised = %v, want [4]", ops.irqsRaised)
	}
}

func TestDispatchKillAndDetachSignalExit(t *testing.T) {
	d := NewDispatcher(newFakeCoreOps())

	if _, exit := d.Dispatch([]byte("k"), nil); !exit {
		t.Error("k did not signal exit")
	}

	reply, exit := d.Dispatch([]byte("D"), nil)
	if !exit {
		t.Error("D did not signal exit")
	}

	if string(reply) != "OK" {
		t.Errorf("D reply = %q, want OK", reply)
	}
}

func TestDispatchUnknownCommandRepliesEmpty(t *testing.T) {
	d := NewDispatcher(newFakeCoreOps())

	reply, _ := d.Dispatch([]byte("$nonsense"), nil)
	if reply != nil {
		t.Errorf("reply = %q, want nil", reply)
	}
}

func TestDispatchMonitorResetCommand(t *testing.T) {
	ops := newFakeCoreOps()
	d := NewDispatcher(ops)

	cmd := hex.EncodeToString([]byte("reset"))

	reply, _ := d.Dispatch([]byte("qRcmd,"+cmd), nil)
	if string(reply) != "OK" {
		t.Errorf("reply = %q, want OK", reply)
	}

	if ops.resets != 1 {
		t.Errorf("resets = %d, want 1", ops.resets)
	}
}

func TestDispatchQSupported(t *testing.T) {
	d := NewDispatcher(newFakeCoreOps())

	reply, _ := d.Dispatch([]byte("qSupported:multiprocess+"), nil)
	if !strings.Contains(string(reply), "PacketSize") {
		t.Errorf("reply = %q, want it to mention PacketSize", reply)
	}
}

func TestDispatchVContQuery(t *testing.T) {
	d := NewDispatcher(newFakeCoreOps())

	reply, _ := d.Dispatch([]byte("vCont?"), nil)
	if string(reply) != "vCont;c;C;s;S" {
		t.Errorf("reply = %q", reply)
	}
}

func TestDispatchStepMirrorsPCToDisplay(t *testing.T) {
	var buf bytes.Buffer

	d := NewDispatcher(newFakeCoreOps()).WithDisplay(NewDisplayFeed(&buf))

	d.Dispatch([]byte("s"), nil)

	if buf.Len() == 0 {
		t.Fatal("display feed received nothing after step")
	}

	if got := buf.Bytes()[0]; got != '$' {
		t.Errorf("display feed frame starts with %q, want '$'", got)
	}
}

func TestDispatchKillNotifiesDisplay(t *testing.T) {
	var buf bytes.Buffer

	d := NewDispatcher(newFakeCoreOps()).WithDisplay(NewDisplayFeed(&buf))

	d.Dispatch([]byte("s"), nil) // Clear the step's own PC packet first.
	buf.Reset()

	d.Dispatch([]byte("k"), nil)

	if !strings.Contains(buf.String(), "q") {
		t.Errorf("display feed = %q, want it to contain a quit packet", buf.String())
	}
}
