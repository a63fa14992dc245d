package core

// instr.go defines the instruction register and the bit-field extraction helpers used by the
// decoder (spec.md §4.4). AVR opcodes pack operand fields into varying bit positions depending on
// the instruction's encoding family, so (unlike ELSIE's LC-3 decoder, which can extract DR/SR/offset
// uniformly from fixed bit ranges) each family gets its own small field-extraction function.

import "fmt"

// Instruction is the word fetched into IR: either a one-word opcode or the first word of a
// two-word opcode (LDS, STS, JMP, CALL).
type Instruction Word

func (i Instruction) String() string {
	return fmt.Sprintf("%s", Word(i))
}

// rdRr extracts the 5-bit destination and source register fields from a 0001/0010/0000-class
// register-register instruction: "ffff ffrd dddd rrrr" (r is split across bit 9 and bits 3-0).
func rdRr(w Word) (d, r GPR) {
	d = GPR((w >> 4) & 0x1f)
	r = GPR((w&0x0200)>>5 | (w & 0x000f))

	return d, r
}

// rdK extracts the destination register (16..31) and 8-bit immediate from a "ffff KKKK ddddKKKK"
// instruction (SUBI, SBCI, ANDI, ORI, CPI, LDI).
func rdK(w Word) (d GPR, k byte) {
	d = GPR(16 + (w>>4)&0x0f)
	k = byte((w&0x0f00)>>4 | w&0x000f)

	return d, k
}

// rd extracts the single 5-bit register field from a "1001 010d dddd ffff" instruction (COM, NEG,
// INC, DEC, and others).
func rd(w Word) GPR {
	return GPR((w >> 4) & 0x1f)
}

// ioAddr5 extracts a 6-bit I/O address and 5-bit register from an IN/OUT instruction:
// "1011 fAAd dddd AAAA".
func ioAddr5(w Word) (d GPR, a byte) {
	d = GPR((w >> 4) & 0x1f)
	a = byte((w&0x0600)>>5 | w&0x000f)

	return d, a
}

// ioAddr3 extracts a 5-bit I/O address and 3-bit bit-index from an SBI/CBI/SBIC/SBIS instruction:
// "1001 10ff AAAA Abbb".
func ioAddr3(w Word) (addr byte, bit uint8) {
	addr = byte((w >> 3) & 0x1f)
	bit = uint8(w & 0x0007)

	return addr, bit
}

// regBit extracts a register and 3-bit bit-index from a BST/BLD/SBRC/SBRS instruction:
// "ffff ffrd dddd 0bbb" (or "...r rrrr 0bbb" for SBRC/SBRS; the register field is the same
// position either way).
func regBit(w Word) (reg GPR, bit uint8) {
	reg = GPR((w >> 4) & 0x1f)
	bit = uint8(w & 0x0007)

	return reg, bit
}

// sreg3 extracts the 3-bit status-flag index from a BSET/BCLR/BRBS/BRBC instruction.
func sreg3(w Word) uint8 {
	return uint8(w & 0x0007)
}

// sext extends the low n bits of v as a signed value.
func sext(v int32, n uint) int32 {
	shift := 32 - n
	return (v << shift) >> shift
}

// branchOffset extracts the 7-bit signed word offset from a BRBS/BRBC instruction:
// "1111 00kk kkkk ksss".
func branchOffset(w Word) int32 {
	k := int32((w >> 3) & 0x7f)
	return sext(k, 7)
}

// rjmpOffset extracts the 12-bit signed word offset from an RJMP/RCALL instruction.
func rjmpOffset(w Word) int32 {
	k := int32(w & 0x0fff)
	return sext(k, 12)
}

// wordPairRegs extracts the two register-pair numbers from a MOVW instruction: "0000 0001 ddddrrrr",
// each nibble naming a pair by half its GPR number (0 -> R0:R1 is not how AVR numbers it; AVR MOVW
// operands name the even register directly, so the stored nibble is doubled).
func wordPairRegs(w Word) (d, r GPR) {
	d = GPR(((w >> 4) & 0x0f) * 2)
	r = GPR((w & 0x0f) * 2)

	return d, r
}
