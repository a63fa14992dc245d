// Package rsp implements a GDB Remote Serial Protocol server over TCP for a simulated core.
package rsp

// codec.go implements the packet framing (spec.md §4.8): `$<payload>#<cc>` where cc is the
// modulo-256 sum of payload bytes, plus the ack/nak (`+`/`-`) and out-of-band break (0x03)
// handling. Grounded on ELSIE's memory controller style (typed sentinel errors, %w wrapping) in
// internal/vm/mem.go, generalized from a register-file abstraction to a byte-stream framing
// protocol since elsie has no wire codec of its own to draw from directly.

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/coreavr/coreavr/internal/log"
)

// ErrProtocol is the sentinel wrapped by every framing error.
var ErrProtocol = errors.New("protocol error")

const (
	packetStart = '$'
	packetEnd   = '#'
	ackByte     = '+'
	nakByte     = '-'
	breakByte   = 0x03
)

// Codec reads and writes RSP packets over a byte stream. It retains the last reply sent so that a
// nak (`-`) can trigger a resend (spec.md §4.8: "the last reply sent is retained in a one-slot
// buffer").
type Codec struct {
	r *bufio.Reader
	w io.Writer

	lastReply []byte
	log       *log.Logger
}

// NewCodec wraps rw with RSP framing.
func NewCodec(r io.Reader, w io.Writer) *Codec {
	return &Codec{
		r:   bufio.NewReader(r),
		w:   w,
		log: log.DefaultLogger(),
	}
}

// Checksum returns the modulo-256 sum of payload; [Frame] writes it as two lowercase hex digits.
func Checksum(payload []byte) byte {
	var sum byte

	for _, b := range payload {
		sum += b
	}

	return sum
}

// Frame wraps payload in `$...#cc` framing (spec.md §4.8, reused by [DisplayFeed] for the
// out-of-scope display coprocess's packets, §6).
func Frame(payload []byte) []byte {
	cc := Checksum(payload)
	out := make([]byte, 0, len(payload)+4)
	out = append(out, packetStart)
	out = append(out, payload...)
	out = append(out, packetEnd)
	out = append(out, fmt.Sprintf("%02x", cc)...)

	return out
}

// ReadPacket blocks until it has read one complete packet, an ack, a nak, or the out-of-band break
// byte. It sends `+` for a well-formed packet and returns its payload; on checksum mismatch it
// aborts the session with a wrapped [ErrProtocol], per spec.md §4.8's "the simple implementation
// aborts with a diagnostic" option.
func (c *Codec) ReadPacket() (payload []byte, err error) {
	for {
		b, err := c.r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("read packet: %w", err)
		}

		switch b {
		case breakByte:
			return nil, ErrBreak
		case ackByte:
			continue // Ack for our last reply; nothing to do.
		case nakByte:
			return nil, ErrResend
		case packetStart:
			return c.readBody()
		default:
			c.log.Debug("discarding byte outside packet", "byte", fmt.Sprintf("%#x", b))
		}
	}
}

// readBody reads the payload and checksum following a `$`, already consumed by the caller.
func (c *Codec) readBody() ([]byte, error) {
	payload, err := c.r.ReadBytes(packetEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: truncated packet: %w", ErrProtocol, err)
	}

	payload = payload[:len(payload)-1] // Drop the trailing '#'.

	ccHex := make([]byte, 2)
	if _, err := io.ReadFull(c.r, ccHex); err != nil {
		return nil, fmt.Errorf("%w: truncated checksum: %w", ErrProtocol, err)
	}

	var want byte
	if _, err := fmt.Sscanf(string(ccHex), "%02x", &want); err != nil {
		return nil, fmt.Errorf("%w: malformed checksum %q: %w", ErrProtocol, ccHex, err)
	}

	if got := Checksum(payload); got != want {
		return nil, fmt.Errorf("%w: checksum mismatch: got %#x want %#x", ErrProtocol, got, want)
	}

	if _, err := c.w.Write([]byte{ackByte}); err != nil {
		return nil, fmt.Errorf("ack: %w", err)
	}

	return payload, nil
}

// SendReply frames and writes payload, remembering it for a future resend.
func (c *Codec) SendReply(payload []byte) error {
	c.lastReply = Frame(payload)

	if _, err := c.w.Write(c.lastReply); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}

	return nil
}

// Resend re-transmits the last reply sent, for a nak response.
func (c *Codec) Resend() error {
	if c.lastReply == nil {
		return nil
	}

	if _, err := c.w.Write(c.lastReply); err != nil {
		return fmt.Errorf("resend: %w", err)
	}

	return nil
}

// WatchBreak starts reading bytes in the background and returns a channel that closes the moment
// the out-of-band break byte arrives. It is used while a continue or step command runs, since the
// core steps on the calling goroutine and cannot itself poll the connection (spec.md §5: "the
// server polls for the out-of-band break between steps rather than blocking on it"). The
// background read stops on its own once the connection closes or a break arrives; a client is not
// expected to send anything else while a continue is outstanding.
func (c *Codec) WatchBreak() <-chan struct{} {
	brk := make(chan struct{})

	go func() {
		for {
			b, err := c.r.ReadByte()
			if err != nil {
				return
			}

			if b == breakByte {
				close(brk)
				return
			}

			c.log.Debug("discarding byte during continue", "byte", fmt.Sprintf("%#x", b))
		}
	}()

	return brk
}

// Sentinel control-flow errors returned by [Codec.ReadPacket].
var (
	ErrBreak  = errors.New("break received")
	ErrResend = errors.New("resend requested")
)
