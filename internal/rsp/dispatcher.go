package rsp

// dispatcher.go implements the RSP command table (spec.md §4.9) against a [CoreOps]. Grounded on
// ELSIE's monitor command dispatch (internal/monitor), generalized from a line-oriented REPL to a
// binary, checksum-framed wire protocol since GDB's command set has no line-editing concerns of its
// own.

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/coreavr/coreavr/internal/core"
	"github.com/coreavr/coreavr/internal/log"
)

// Signal numbers used in stop replies and accepted by the continue/step-with-signal commands
// (spec.md §4.9).
const (
	sigIllegalOpcode = 4 // SIGILL, reported when decode fails.
	sigInterrupt     = 2 // SIGINT, reported on an out-of-band break.
	sigTrap          = 5 // SIGTRAP, reported on breakpoint hits and ordinary stops.
	sigHangup        = 1 // SIGHUP, the convention this server uses to mean "reset".
)

// irqSignalBase is the signal number that maps to interrupt vector 0 in a `C`/`S` command
// (spec.md §4.9: "signo >= 94 raises the interrupt vector signo-94"). GDB reserves signals up to
// the real-time range; 94 is the first vector-carrying value left unclaimed by any signal GDB
// itself interprets.
const irqSignalBase = 94

// Dispatcher answers one GDB client's packets against a [CoreOps].
type Dispatcher struct {
	ops     CoreOps
	log     *log.Logger
	display *DisplayFeed
}

// NewDispatcher returns a dispatcher driving ops.
func NewDispatcher(ops CoreOps) *Dispatcher {
	return &Dispatcher{ops: ops, log: log.DefaultLogger(), display: NewDisplayFeed(nil)}
}

// WithDisplay attaches a display coprocess feed; every PC change during continue/step is mirrored
// to it (spec.md §6 display-coprocess protocol).
func (d *Dispatcher) WithDisplay(feed *DisplayFeed) *Dispatcher {
	d.display = feed
	return d
}

// Dispatch answers a single packet payload. cancel, if it fires while a `c`/`C` command is
// running, stops the core at the next instruction boundary and reports SIGINT (spec.md §5:
// "interrupts, breakpoint hits, and the out-of-band break are only observed between
// instructions"). exit is true for `k` and `D`, after which the caller closes the session.
func (d *Dispatcher) Dispatch(payload []byte, cancel <-chan struct{}) (reply []byte, exit bool) {
	if len(payload) == 0 {
		return nil, false
	}

	switch payload[0] {
	case '?':
		return []byte(fmt.Sprintf("S%02x", sigTrap)), false
	case 'g':
		return d.readAllRegs(), false
	case 'G':
		return d.writeAllRegs(payload[1:]), false
	case 'p':
		return d.readReg(payload[1:]), false
	case 'P':
		return d.writeReg(payload[1:]), false
	case 'm':
		return d.readMem(payload[1:]), false
	case 'M':
		return d.writeMem(payload[1:]), false
	case 'c':
		return d.continueRun(payload[1:], 0, cancel), false
	case 's':
		return d.step(payload[1:], 0), false
	case 'C':
		return d.continueWithSignal(payload[1:], cancel), false
	case 'S':
		return d.stepWithSignal(payload[1:]), false
	case 'z':
		return d.removeBreak(payload[1:]), false
	case 'Z':
		return d.insertBreak(payload[1:]), false
	case 'k':
		d.display.Quit()
		return nil, true
	case 'D':
		d.display.Quit()
		return []byte("OK"), true
	case 'q':
		return d.query(payload[1:]), false
	case 'v':
		return d.vPacket(payload[1:], cancel), false
	default:
		d.log.Debug("unsupported command", "command", string(payload[0]))
		return nil, false // Empty reply tells GDB the command isn't supported (spec.md §7).
	}
}

// registerCount is the 32 general-purpose registers plus SREG, SP, and PC (spec.md §4.9's
// register numbers 0x20, 0x21, 0x22 respectively).
const registerCount = 35

func (d *Dispatcher) readAllRegs() []byte {
	buf := make([]byte, 0, registerCount*4)

	for n := 0; n < 32; n++ {
		buf = append(buf, d.ops.ReadReg(n))
	}

	buf = append(buf, d.ops.ReadSREG())

	sp := d.ops.ReadSP()
	buf = append(buf, byte(sp), byte(sp>>8))

	pc := d.ops.ReadPC() * 2 // GDB's PC register is a byte address.
	buf = append(buf, byte(pc), byte(pc>>8), byte(pc>>16), byte(pc>>24))

	return []byte(hex.EncodeToString(buf))
}

func (d *Dispatcher) writeAllRegs(hexData []byte) []byte {
	raw, err := hex.DecodeString(string(hexData))
	if err != nil || len(raw) < 39 {
		return errReply(stateError)
	}

	for n := 0; n < 32; n++ {
		d.ops.WriteReg(n, raw[n])
	}

	d.ops.WriteSREG(raw[32])
	d.ops.WriteSP(uint16(raw[33]) | uint16(raw[34])<<8)

	pc := uint32(raw[35]) | uint32(raw[36])<<8 | uint32(raw[37])<<16 | uint32(raw[38])<<24
	d.ops.WritePC(pc / 2)

	return []byte("OK")
}

func (d *Dispatcher) readReg(arg []byte) []byte {
	n, err := strconv.ParseUint(string(arg), 16, 32)
	if err != nil {
		return errReply(protocolError)
	}

	switch {
	case n < 32:
		return []byte(hex.EncodeToString([]byte{d.ops.ReadReg(int(n))}))
	case n == 32:
		return []byte(hex.EncodeToString([]byte{d.ops.ReadSREG()}))
	case n == 33:
		sp := d.ops.ReadSP()
		return []byte(hex.EncodeToString([]byte{byte(sp), byte(sp >> 8)}))
	case n == 34:
		pc := d.ops.ReadPC() * 2
		return []byte(hex.EncodeToString([]byte{byte(pc), byte(pc >> 8), byte(pc >> 16), byte(pc >> 24)}))
	default:
		return errReply(protocolError)
	}
}

func (d *Dispatcher) writeReg(arg []byte) []byte {
	parts := strings.SplitN(string(arg), "=", 2)
	if len(parts) != 2 {
		return errReply(protocolError)
	}

	n, err := strconv.ParseUint(parts[0], 16, 32)
	if err != nil {
		return errReply(protocolError)
	}

	raw, err := hex.DecodeString(parts[1])
	if err != nil {
		return errReply(protocolError)
	}

	switch {
	case n < 32 && len(raw) >= 1:
		d.ops.WriteReg(int(n), raw[0])
	case n == 32 && len(raw) >= 1:
		d.ops.WriteSREG(raw[0])
	case n == 33 && len(raw) >= 2:
		d.ops.WriteSP(uint16(raw[0]) | uint16(raw[1])<<8)
	case n == 34 && len(raw) >= 4:
		pc := uint32(raw[0]) | uint32(raw[1])<<8 | uint32(raw[2])<<16 | uint32(raw[3])<<24
		d.ops.WritePC(pc / 2)
	default:
		return errReply(protocolError)
	}

	return []byte("OK")
}

func parseAddrLen(arg string) (addr uint32, length int, err error) {
	parts := strings.SplitN(arg, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: malformed address,length %q", ErrProtocol, arg)
	}

	a, err := strconv.ParseUint(parts[0], 16, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrProtocol, err)
	}

	l, err := strconv.ParseUint(parts[1], 16, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrProtocol, err)
	}

	return uint32(a), int(l), nil
}

func (d *Dispatcher) readMem(arg []byte) []byte {
	addr, length, err := parseAddrLen(string(arg))
	if err != nil {
		return errReply(protocolError)
	}

	space, local := MapAddress(addr)

	buf := make([]byte, 0, length)

	for i := 0; i < length; i++ {
		b, err := d.readByte(space, local+uint32(i))
		if err != nil {
			return errReply(addressError)
		}

		buf = append(buf, b)
	}

	return []byte(hex.EncodeToString(buf))
}

func (d *Dispatcher) readByte(space Space, addr uint32) (byte, error) {
	switch space {
	case SpaceFlash:
		word, err := d.ops.ReadFlash(uint16(addr / 2))
		if err != nil {
			return 0, err
		}

		if addr%2 == 0 {
			return byte(word), nil
		}

		return byte(word >> 8), nil
	case SpaceData:
		return d.ops.ReadData(uint16(addr)), nil
	case SpaceEEPROM:
		return d.ops.ReadEEPROM(int(addr))
	default:
		return 0, ErrUnmappedAddress
	}
}

func (d *Dispatcher) writeMem(arg []byte) []byte {
	parts := strings.SplitN(string(arg), ":", 2)
	if len(parts) != 2 {
		return errReply(protocolError)
	}

	addr, length, err := parseAddrLen(parts[0])
	if err != nil {
		return errReply(protocolError)
	}

	raw, err := hex.DecodeString(parts[1])
	if err != nil || len(raw) < length {
		return errReply(protocolError)
	}

	space, local := MapAddress(addr)

	for i := 0; i < length; i++ {
		if err := d.writeByte(space, local+uint32(i), raw[i]); err != nil {
			return errReply(addressError)
		}
	}

	return []byte("OK")
}

func (d *Dispatcher) writeByte(space Space, addr uint32, b byte) error {
	switch space {
	case SpaceFlash:
		word := uint16(addr / 2)
		if addr%2 == 0 {
			return d.ops.WriteFlashLo(word, b)
		}

		return d.ops.WriteFlashHi(word, b)
	case SpaceData:
		d.ops.WriteData(uint16(addr), b)
		return nil
	case SpaceEEPROM:
		return d.ops.WriteEEPROM(int(addr), b)
	default:
		return ErrUnmappedAddress
	}
}

// stopReply formats the continue/step stop reply (spec.md §4.9, §8): `T<sig>20:<sreg>;21:<sp
// LE>;22:<pc 4 bytes LE>;`.
func (d *Dispatcher) stopReply(sig int) []byte {
	sreg := d.ops.ReadSREG()
	sp := d.ops.ReadSP()
	pc := d.ops.ReadPC() * 2

	return []byte(fmt.Sprintf("T%02x20:%02x;21:%02x%02x;22:%02x%02x%02x%02x;",
		sig, sreg,
		byte(sp), byte(sp>>8),
		byte(pc), byte(pc>>8), byte(pc>>16), byte(pc>>24)))
}

// setOptionalAddr applies an optional leading address argument to commands whose spec allows
// resuming execution at a new PC ("c addr", "s addr").
func (d *Dispatcher) setOptionalAddr(arg string) error {
	if arg == "" {
		return nil
	}

	addr, err := strconv.ParseUint(arg, 16, 32)
	if err != nil {
		return err
	}

	d.ops.WritePC(uint32(addr) / 2)

	return nil
}

func (d *Dispatcher) continueRun(arg []byte, signo int, cancel <-chan struct{}) []byte {
	if err := d.applySignal(signo); err != nil {
		return errReply(stateError)
	}

	if err := d.setOptionalAddr(string(arg)); err != nil {
		return errReply(protocolError)
	}

	for {
		select {
		case <-cancel:
			return d.stopReply(sigInterrupt)
		default:
		}

		result, err := d.ops.Step()
		if err != nil {
			return stepErrorReply(err)
		}

		d.display.PC(d.ops.ReadPC() * 2)

		if result == core.StepBreak {
			return d.stopReply(sigTrap)
		}
	}
}

func (d *Dispatcher) step(arg []byte, signo int) []byte {
	if err := d.applySignal(signo); err != nil {
		return errReply(stateError)
	}

	if err := d.setOptionalAddr(string(arg)); err != nil {
		return errReply(protocolError)
	}

	if _, err := d.ops.Step(); err != nil {
		return stepErrorReply(err)
	}

	d.display.PC(d.ops.ReadPC() * 2)

	return d.stopReply(sigTrap)
}

// stepErrorReply answers a failed step: an illegal opcode stops with SIGILL, anything else is a
// state error.
func stepErrorReply(err error) []byte {
	if errors.Is(err, core.ErrIllegalOpcode) {
		return []byte(fmt.Sprintf("S%02x", sigIllegalOpcode))
	}

	return errReply(stateError)
}

// applySignal implements the continue/step-with-signal semantics (spec.md §4.9): SIGHUP resets
// the core, a signal number at or past irqSignalBase raises the corresponding interrupt vector,
// anything else is ignored and execution resumes normally.
func (d *Dispatcher) applySignal(signo int) error {
	switch {
	case signo == 0:
		return nil
	case signo == sigHangup:
		d.ops.Reset()
		return nil
	case signo >= irqSignalBase:
		d.ops.IRQRaise(signo - irqSignalBase)
		return nil
	default:
		return nil
	}
}

func (d *Dispatcher) continueWithSignal(arg []byte, cancel <-chan struct{}) []byte {
	signo, rest, err := splitSignal(arg)
	if err != nil {
		return errReply(protocolError)
	}

	if signo == sigHangup {
		d.ops.Reset()
		return d.stopReply(sigTrap)
	}

	return d.continueRun([]byte(rest), signo, cancel)
}

func (d *Dispatcher) stepWithSignal(arg []byte) []byte {
	signo, rest, err := splitSignal(arg)
	if err != nil {
		return errReply(protocolError)
	}

	if signo == sigHangup {
		d.ops.Reset()
		return d.stopReply(sigTrap)
	}

	return d.step([]byte(rest), signo)
}

// splitSignal parses "<sig>[;addr]" as used by C and S commands.
func splitSignal(arg []byte) (signo int, rest string, err error) {
	s := string(arg)

	parts := strings.SplitN(s, ";", 2)

	n, err := strconv.ParseUint(parts[0], 16, 32)
	if err != nil {
		return 0, "", err
	}

	if len(parts) == 2 {
		return int(n), parts[1], nil
	}

	return int(n), "", nil
}

// breakpointType identifies the GDB "z"/"Z" kind argument this server understands: 0, a software
// breakpoint (spec.md §4.6). Hardware watchpoints (types 1-4) are not modeled.
const softwareBreakpoint = "0"

func (d *Dispatcher) insertBreak(arg []byte) []byte {
	kind, addr, _, ok := parseBreakArg(string(arg))
	if !ok || kind != softwareBreakpoint {
		return nil // Empty reply: unsupported breakpoint kind.
	}

	space, local := MapAddress(addr)
	if space != SpaceFlash {
		return errReply(addressError)
	}

	d.ops.InsertBreak(uint16(local / 2))

	return []byte("OK")
}

func (d *Dispatcher) removeBreak(arg []byte) []byte {
	kind, addr, _, ok := parseBreakArg(string(arg))
	if !ok || kind != softwareBreakpoint {
		return nil
	}

	space, local := MapAddress(addr)
	if space != SpaceFlash {
		return errReply(addressError)
	}

	d.ops.RemoveBreak(uint16(local / 2))

	return []byte("OK")
}

func parseBreakArg(arg string) (kind string, addr uint32, length int, ok bool) {
	parts := strings.SplitN(arg, ",", 3)
	if len(parts) != 3 {
		return "", 0, 0, false
	}

	a, err := strconv.ParseUint(parts[1], 16, 32)
	if err != nil {
		return "", 0, 0, false
	}

	l, err := strconv.ParseUint(parts[2], 16, 32)
	if err != nil {
		return "", 0, 0, false
	}

	return parts[0], uint32(a), int(l), true
}

// query answers the "q" packets this server recognizes: qSupported, qOffsets, the io register
// dump, and the monitor-command channel (all SUPPLEMENTED FEATURES; avr-gdb expects all four for
// a smooth connection even though the base RSP command table does not require them).
func (d *Dispatcher) query(arg []byte) []byte {
	s := string(arg)

	switch {
	case strings.HasPrefix(s, "Supported"):
		return []byte("PacketSize=4000;qXfer:features:read-")
	case s == "Offsets":
		return []byte("Text=0;Data=0;Bss=0")
	case strings.HasPrefix(s, "Rcmd,"):
		return d.monitorCommand(s[len("Rcmd,"):])
	case strings.HasPrefix(s, "Ravr.io_reg"):
		return d.ioRegisterDump()
	default:
		return nil
	}
}

// monitorCommand implements the "monitor" console GDB exposes over qRcmd (SUPPLEMENTED FEATURE):
// the command text arrives hex-encoded and the reply is an O-prefixed hex-encoded message, or OK.
func (d *Dispatcher) monitorCommand(hexCmd string) []byte {
	raw, err := hex.DecodeString(hexCmd)
	if err != nil {
		return errReply(protocolError)
	}

	switch strings.TrimSpace(string(raw)) {
	case "reset":
		d.ops.Reset()
		return []byte("OK")
	default:
		msg := fmt.Sprintf("unknown monitor command %q\n", raw)
		return []byte("O" + hex.EncodeToString([]byte(msg)))
	}
}

// ioRegisterDump answers "qRavr.io_reg" with a hex-encoded "name value\n" line per I/O register
// (SUPPLEMENTED FEATURE, grounded on avr-gdb's own io_reg query; the wire shape here is this
// server's own, since no Go client library for it exists to match against).
func (d *Dispatcher) ioRegisterDump() []byte {
	var sb strings.Builder

	for n := 0; n < d.ops.IOCount(); n++ {
		v, name := d.ops.IOFetch(n)
		fmt.Fprintf(&sb, "%s %02x\n", name, v)
	}

	return []byte("O" + hex.EncodeToString([]byte(sb.String())))
}

// vPacket answers the "v" packets this server recognizes: only vCont and vCont?, trivially mapped
// onto c/s since this core has exactly one thread of execution (SUPPLEMENTED FEATURE).
func (d *Dispatcher) vPacket(arg []byte, cancel <-chan struct{}) []byte {
	s := string(arg)

	switch {
	case s == "Cont?":
		return []byte("vCont;c;C;s;S")
	case strings.HasPrefix(s, "Cont;c"):
		return d.continueRun(nil, 0, cancel)
	case strings.HasPrefix(s, "Cont;s"):
		return d.step(nil, 0)
	default:
		return nil
	}
}

// Error taxonomy (spec.md §7): address errors report E05, while protocol errors and state errors
// share E01; illegal opcodes and resets report signal-style stop replies instead.
const (
	protocolError = 0x01
	addressError  = 0x05
	stateError    = 0x01
)

func errReply(code int) []byte {
	return []byte(fmt.Sprintf("E%02x", code))
}
