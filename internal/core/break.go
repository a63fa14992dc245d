package core

// break.go implements the breakpoint set (spec.md §4.6). Per the Design Note in spec.md §9
// ("Breakpoint encoding in flash"), this is an explicit side-table of flash word-addresses rather
// than sentinel opcodes spliced into the program store: [Flash] stays pure, and a
// separate probe answers "is this PC a break?" so the debugger's memory reads always see the real
// firmware image.

import "github.com/coreavr/coreavr/internal/log"

// BreakpointSet tracks armed breakpoints by flash word address.
type BreakpointSet struct {
	armed    map[Word]struct{}
	disabled bool
	log      *log.Logger
}

// NewBreakpointSet creates an empty, armed breakpoint set.
func NewBreakpointSet() *BreakpointSet {
	return &BreakpointSet{
		armed: make(map[Word]struct{}),
		log:   log.DefaultLogger(),
	}
}

// Insert arms a breakpoint at w. Inserting twice at the same address is idempotent (spec.md §8
// testable property 5).
func (b *BreakpointSet) Insert(w Word) {
	b.armed[w] = struct{}{}
}

// Remove disarms the breakpoint at w, if any. Removing an address with no breakpoint is a no-op.
func (b *BreakpointSet) Remove(w Word) {
	delete(b.armed, w)
}

// Contains reports whether w has an armed breakpoint. While the set is disabled (see
// [BreakpointSet.DisableAll]) it behaves as empty, regardless of what is armed.
func (b *BreakpointSet) Contains(w Word) bool {
	if b.disabled {
		return false
	}

	_, ok := b.armed[w]

	return ok
}

// DisableAll temporarily disables every armed breakpoint, so a single-step resume immediately
// following a break can step past it (spec.md §4.6).
func (b *BreakpointSet) DisableAll() {
	b.disabled = true
}

// EnableAll re-enables breakpoint checking after a [BreakpointSet.DisableAll].
func (b *BreakpointSet) EnableAll() {
	b.disabled = false
}

// Len returns the number of armed breakpoints (ignoring disable state).
func (b *BreakpointSet) Len() int {
	return len(b.armed)
}
