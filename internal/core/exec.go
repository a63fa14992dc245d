package core

// exec.go implements the core stepper (spec.md §4.7): the only entry point for driven simulation.
// Each call fetches one instruction, advances the PC, executes it, runs the interrupt dispatch, and
// probes the breakpoint set. Grounded on ELSIE's Step/Run pair (internal/vm/exec.go), collapsed from
// LC-3's six-stage pipeline (decode/eval-address/fetch-operands/execute/writeback) to this
// architecture's simpler fetch-decode-execute, since AVR load/store addressing resolves within a
// single Execute call rather than needing a separate address-evaluation stage.

import (
	"fmt"
)

// StepResult reports what happened during a Step call.
type StepResult int

const (
	// StepOK means the instruction executed normally.
	StepOK StepResult = iota

	// StepBreak means execution stopped at an armed breakpoint before the instruction there was
	// executed.
	StepBreak
)

func (r StepResult) String() string {
	switch r {
	case StepBreak:
		return "BREAK"
	default:
		return "OK"
	}
}

// Step executes exactly one instruction: fetch, decode, execute, interrupt dispatch, breakpoint
// probe (spec.md §4.7). It returns StepBreak, without executing anything, if the current PC has an
// armed breakpoint; a single step taken immediately after a break is exempt (spec.md §4.6) and the
// breakpoint set is re-armed once that step completes.
func (c *Core) Step() (StepResult, error) {
	resuming := c.afterBreak
	c.afterBreak = false

	if !resuming && c.Breaks.Contains(Word(c.PC)) {
		c.Breaks.DisableAll()
		c.afterBreak = true

		return StepBreak, nil
	}

	word, err := c.fetch()
	if err != nil {
		return StepOK, fmt.Errorf("step: fetch: %w", err)
	}

	c.IR = Instruction(word)

	op, err := c.decode(word)
	if err != nil {
		return StepOK, err
	}

	if err := op.Execute(c); err != nil {
		return StepOK, fmt.Errorf("step: %s: %w", op, err)
	}

	if _, err := c.Dispatch(); err != nil {
		return StepOK, fmt.Errorf("step: interrupt: %w", err)
	}

	if resuming {
		c.Breaks.EnableAll()
	}

	return StepOK, nil
}

// fetch loads the word at PC into the instruction register's source, advancing PC by one word.
// Multi-word instructions (LDS, STS, JMP, CALL) fetch their second word explicitly during Execute
// via [Core.fetchExtra].
func (c *Core) fetch() (Word, error) {
	w, err := c.Flash.ReadWord(Word(c.PC))
	if err != nil {
		return 0, err
	}

	c.PC++

	return w, nil
}

// fetchExtra reads the second word of a two-word instruction, advancing PC again.
func (c *Core) fetchExtra() (Word, error) {
	return c.fetch()
}

// instructionWords returns the encoded length, in flash words, of the instruction encoded by w:
// two for LDS, STS, JMP, and CALL; one otherwise. This is used by the skip family (SBIC, SBIS,
// SBRC, SBRS) to know how far to skip without fully decoding the skipped instruction (spec.md
// §4.4: "Skip instructions skip 1 or 2 words depending on the skipped instruction's size").
func instructionWords(w Word) int {
	switch {
	case w&0xfc0f == 0x9000: // LDS Rd,k / STS k,Rr
		return 2
	case w&0xfe0e == 0x940c: // JMP
		return 2
	case w&0xfe0e == 0x940e: // CALL
		return 2
	default:
		return 1
	}
}
