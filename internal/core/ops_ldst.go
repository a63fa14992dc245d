package core

// ops_ldst.go implements the data-memory load/store family (spec.md §4.4): LD, LDD, LDS, ST, STD,
// STS, LPM, IN, OUT. Indirect addressing through X, Y, Z follows the real device's pre-decrement/
// post-increment semantics; LDS/STS are two-word instructions whose second word is fetched via
// [Core.fetchExtra] (spec.md §4.4 two-word opcode note).

import "fmt"

func decodeLoadStore(w Word) operation {
	switch {
	case w == 0x95c8:
		return &lpm{d: 0, postInc: false}
	case w&0xfe0f == 0x9000:
		return &lds{d: rd(w)}
	case w&0xfe0f == 0x9200:
		return &sts{r: rd(w)}
	case w&0xfe0f == 0x9004:
		return &lpm{d: rd(w), postInc: false}
	case w&0xfe0f == 0x9005:
		return &lpm{d: rd(w), postInc: true}
	case w&0xfe0f == 0x9001:
		return &ldst{reg: rd(w), pair: zPair, mode: modePostInc, load: true}
	case w&0xfe0f == 0x9002:
		return &ldst{reg: rd(w), pair: zPair, mode: modePreDec, load: true}
	case w&0xfe0f == 0x9009:
		return &ldst{reg: rd(w), pair: yPair, mode: modePostInc, load: true}
	case w&0xfe0f == 0x900a:
		return &ldst{reg: rd(w), pair: yPair, mode: modePreDec, load: true}
	case w&0xfe0f == 0x900c:
		return &ldst{reg: rd(w), pair: xPair, mode: modePlain, load: true}
	case w&0xfe0f == 0x900d:
		return &ldst{reg: rd(w), pair: xPair, mode: modePostInc, load: true}
	case w&0xfe0f == 0x900e:
		return &ldst{reg: rd(w), pair: xPair, mode: modePreDec, load: true}
	case w&0xfe0f == 0x9201:
		return &ldst{reg: rd(w), pair: zPair, mode: modePostInc, load: false}
	case w&0xfe0f == 0x9202:
		return &ldst{reg: rd(w), pair: zPair, mode: modePreDec, load: false}
	case w&0xfe0f == 0x9209:
		return &ldst{reg: rd(w), pair: yPair, mode: modePostInc, load: false}
	case w&0xfe0f == 0x920a:
		return &ldst{reg: rd(w), pair: yPair, mode: modePreDec, load: false}
	case w&0xfe0f == 0x920c:
		return &ldst{reg: rd(w), pair: xPair, mode: modePlain, load: false}
	case w&0xfe0f == 0x920d:
		return &ldst{reg: rd(w), pair: xPair, mode: modePostInc, load: false}
	case w&0xfe0f == 0x920e:
		return &ldst{reg: rd(w), pair: xPair, mode: modePreDec, load: false}
	case w&0xd208 == 0x8008:
		d, q := ldStDisp(w)
		return &lddstd{reg: d, pair: yPair, disp: q, load: true}
	case w&0xd208 == 0x8000:
		d, q := ldStDisp(w)
		return &lddstd{reg: d, pair: zPair, disp: q, load: true}
	case w&0xd208 == 0x8208:
		d, q := ldStDisp(w)
		return &lddstd{reg: d, pair: yPair, disp: q, load: false}
	case w&0xd208 == 0x8200:
		d, q := ldStDisp(w)
		return &lddstd{reg: d, pair: zPair, disp: q, load: false}
	case w == 0x95e8:
		return &spm{}
	case w&0xf800 == 0xb000:
		d, a := ioAddr5(w)
		return &in{d: d, addr: a}
	case w&0xf800 == 0xb800:
		r, a := ioAddr5(w)
		return &out{r: r, addr: a}
	default:
		return nil
	}
}

// regPair names the index register pair used by indirect addressing.
type regPair int

const (
	xPair regPair = iota
	yPair
	zPair
)

func (p regPair) hilo() (hi, lo GPR) {
	switch p {
	case xPair:
		return XH, XL
	case yPair:
		return YH, YL
	default:
		return ZH, ZL
	}
}

func (p regPair) String() string {
	return [...]string{"X", "Y", "Z"}[p]
}

type addrMode int

const (
	modePlain addrMode = iota
	modePostInc
	modePreDec
)

// ldst implements LD/ST through X, Y, or Z with optional post-increment or pre-decrement.
type ldst struct {
	reg  GPR
	pair regPair
	mode addrMode
	load bool
}

func (op *ldst) String() string {
	ptr := op.pair.String()

	switch op.mode {
	case modePostInc:
		ptr += "+"
	case modePreDec:
		ptr = "-" + ptr
	}

	if op.load {
		return fmt.Sprintf("LD %s,%s", op.reg, ptr)
	}

	return fmt.Sprintf("ST %s,%s", ptr, op.reg)
}

func (op *ldst) Execute(c *Core) error {
	hi, lo := op.pair.hilo()
	addr := Addr(c.Mem.Regs.WordPair(hi, lo))

	if op.mode == modePreDec {
		addr--
	}

	if op.load {
		c.Mem.Regs[op.reg] = Byte(c.Mem.Read(addr))
	} else {
		c.Mem.Write(addr, byte(c.Mem.Regs[op.reg]))
	}

	switch op.mode {
	case modePostInc:
		addr++
		c.Mem.Regs.SetWordPair(hi, lo, Word(addr))
	case modePreDec:
		c.Mem.Regs.SetWordPair(hi, lo, Word(addr))
	}

	return nil
}

// lddstd implements LDD/STD: fixed-displacement indirect addressing through Y or Z, no pointer
// update.
type lddstd struct {
	reg  GPR
	pair regPair
	disp byte
	load bool
}

func (op *lddstd) String() string {
	if op.load {
		return fmt.Sprintf("LDD %s,%s+%d", op.reg, op.pair, op.disp)
	}

	return fmt.Sprintf("STD %s+%d,%s", op.pair, op.disp, op.reg)
}

func (op *lddstd) Execute(c *Core) error {
	hi, lo := op.pair.hilo()
	addr := Addr(c.Mem.Regs.WordPair(hi, lo)) + Addr(op.disp)

	if op.load {
		c.Mem.Regs[op.reg] = Byte(c.Mem.Read(addr))
	} else {
		c.Mem.Write(addr, byte(c.Mem.Regs[op.reg]))
	}

	return nil
}

// ldStDisp extracts the destination/source register and the 6-bit displacement q from an LDD/STD
// word, whose q bits are scattered across the encoding: "10q0 qq0d dddd 1qqq" (q5 at bit 13, q4:q3
// at bits 11:10, q2:q0 at bits 2:0).
func ldStDisp(w Word) (reg GPR, q byte) {
	reg = rd(w)
	q = byte((w>>8)&0x20 | (w>>7)&0x18 | w&0x07)

	return reg, q
}

// lds implements LDS Rd,k: a two-word instruction whose second word is the absolute SRAM address.
type lds struct{ d GPR }

func (op *lds) String() string { return fmt.Sprintf("LDS %s,k", op.d) }

func (op *lds) Execute(c *Core) error {
	k, err := c.fetchExtra()
	if err != nil {
		return fmt.Errorf("lds: %w", err)
	}

	c.Mem.Regs[op.d] = Byte(c.Mem.Read(Addr(k)))

	return nil
}

// sts implements STS k,Rr.
type sts struct{ r GPR }

func (op *sts) String() string { return fmt.Sprintf("STS k,%s", op.r) }

func (op *sts) Execute(c *Core) error {
	k, err := c.fetchExtra()
	if err != nil {
		return fmt.Errorf("sts: %w", err)
	}

	c.Mem.Write(Addr(k), byte(c.Mem.Regs[op.r]))

	return nil
}

// lpm implements LPM (implicit R0,Z when d==0 and postInc==false is ambiguous with "LPM Rd,Z" for
// d==0; decode distinguishes them by opcode, not here), "LPM Rd,Z", and "LPM Rd,Z+". The flash word
// addressed by Z is split into its low or high byte by Z's low address bit.
type lpm struct {
	d       GPR
	postInc bool
}

func (op *lpm) String() string {
	if op.postInc {
		return fmt.Sprintf("LPM %s,Z+", op.d)
	}

	return fmt.Sprintf("LPM %s,Z", op.d)
}

func (op *lpm) Execute(c *Core) error {
	z := c.Mem.Regs.WordPair(ZH, ZL)

	word, err := c.Flash.ReadWord(Word(z >> 1))
	if err != nil {
		return fmt.Errorf("lpm: %w", err)
	}

	var b byte
	if z&1 == 0 {
		b = byte(word)
	} else {
		b = byte(word >> 8)
	}

	c.Mem.Regs[op.d] = Byte(b)

	if op.postInc {
		c.Mem.Regs.SetWordPair(ZH, ZL, z+1)
	}

	return nil
}

// spm implements SPM: write the flash word addressed by Z from R1:R0. The real device buffers a
// full page in a temporary write buffer and requires an erase before a dirty write (spec.md §4.4
// Non-goal: flash-protection semantics); this writes the addressed word directly, which is enough
// to let firmware that self-programs a single word behave as a GDB session would observe it.
type spm struct{}

func (op *spm) String() string { return "SPM" }

func (op *spm) Execute(c *Core) error {
	z := c.Mem.Regs.WordPair(ZH, ZL)
	val := Word(c.Mem.Regs[0]) | Word(c.Mem.Regs[1])<<8

	if err := c.Flash.WriteWord(Word(z>>1), val); err != nil {
		return fmt.Errorf("spm: %w", err)
	}

	return nil
}

// in implements IN: read an I/O register into a GPR.
type in struct {
	d    GPR
	addr byte
}

func (op *in) String() string { return fmt.Sprintf("IN %s,%#x", op.d, op.addr) }

func (op *in) Execute(c *Core) error {
	c.Mem.Regs[op.d] = Byte(c.Mem.Read(IOWindowBase + Addr(op.addr)))
	return nil
}

// out implements OUT: write a GPR to an I/O register.
type out struct {
	r    GPR
	addr byte
}

func (op *out) String() string { return fmt.Sprintf("OUT %#x,%s", op.addr, op.r) }

func (op *out) Execute(c *Core) error {
	c.Mem.Write(IOWindowBase+Addr(op.addr), byte(c.Mem.Regs[op.r]))
	return nil
}
