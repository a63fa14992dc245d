package rsp

// display.go implements the emitting half of the optional curses display coprocess protocol
// (spec.md §6: "the core emits; it does not consume"). Grounded on ELSIE's listener-callback
// display driver (internal/vm/disp.go's Display.Listen/notify), generalized from a single
// character-output callback to the six packet kinds the coprocess protocol defines.

import (
	"fmt"
	"io"
	"sync"

	"github.com/coreavr/coreavr/internal/log"
)

// DisplayFeed mirrors core state to an optional curses display coprocess as `$payload#cc`-framed
// packets (spec.md §6). A nil or disconnected feed is a silent no-op; nothing in the core or RSP
// dispatcher depends on a coprocess actually being attached.
type DisplayFeed struct {
	mu  sync.Mutex
	out io.Writer
	log *log.Logger
}

// NewDisplayFeed mirrors updates to out. Pass nil to get a feed that discards everything.
func NewDisplayFeed(out io.Writer) *DisplayFeed {
	return &DisplayFeed{out: out, log: log.DefaultLogger()}
}

func (f *DisplayFeed) send(payload string) {
	if f == nil || f.out == nil {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.out.Write(Frame([]byte(payload))); err != nil {
		f.log.Debug("display feed write failed", "error", err)
	}
}

// PC reports a new program counter value ("p<hex>").
func (f *DisplayFeed) PC(pc uint32) {
	f.send(fmt.Sprintf("p%x", pc))
}

// Reg reports a general-purpose register write ("r<hex reg>:<hex value>").
func (f *DisplayFeed) Reg(n int, v byte) {
	f.send(fmt.Sprintf("r%x:%x", n, v))
}

// IO reports an I/O register write ("i<hex addr>:<hex value>").
func (f *DisplayFeed) IO(addr int, v byte) {
	f.send(fmt.Sprintf("i%x:%x", addr, v))
}

// SRAM reports a run of written SRAM bytes ("s<addr>,<len>:<data>").
func (f *DisplayFeed) SRAM(addr uint16, data []byte) {
	f.send(fmt.Sprintf("s%x,%x:%x", addr, len(data), data))
}

// IOName reports the display name bound to an I/O register ("I<hex addr>:<name>"), sent once at
// device-setup time so the coprocess can label its view.
func (f *DisplayFeed) IOName(addr int, name string) {
	f.send(fmt.Sprintf("I%x:%s", addr, name))
}

// Quit tells the coprocess to exit ("q"), sent when the client kills (`k`) or detaches (`D`).
func (f *DisplayFeed) Quit() {
	f.send("q")
}
