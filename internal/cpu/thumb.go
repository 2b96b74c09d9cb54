package cpu

import "math/bits"

// Thumb instruction routines. Each routine receives the full 16-bit
// instruction word; PC has already been advanced past it. Branch offsets are
// relative to that post-fetch PC; only the literal load adds a further
// halfword before word-aligning its base.

// ------------------------------ flag helpers ------------------------------

func (c *CPU) setFlag(mask uint32, on bool) {
	if on {
		c.cpsr |= mask
	} else {
		c.cpsr &^= mask
	}
}

func (c *CPU) setNZ(result uint32) {
	c.setFlag(FlagN, result&signBit != 0)
	c.setFlag(FlagZ, result == 0)
}

// addFlags computes a+b and sets all four flags. Carry is unsigned overflow
// out of bit 31; V is set when both operands share a sign the result lacks.
func (c *CPU) addFlags(a, b uint32) uint32 {
	sum := uint64(a) + uint64(b)
	result := uint32(sum)
	c.setNZ(result)
	c.setFlag(FlagC, sum>>32 != 0)
	c.setFlag(FlagV, (^(a^b)&(a^result))&signBit != 0)
	return result
}

// subFlags computes a-b and sets all four flags. Carry follows the ARM
// no-borrow convention: set when a >= b.
func (c *CPU) subFlags(a, b uint32) uint32 {
	result := a - b
	c.setNZ(result)
	c.setFlag(FlagC, a >= b)
	c.setFlag(FlagV, ((a^b)&(a^result))&signBit != 0)
	return result
}

// ------------------------------ memory helpers ------------------------------

func rotr(value uint32, n uint32) uint32 {
	return bits.RotateLeft32(value, -int(n&31))
}

// readWordUnaligned implements the ARM7 unaligned load: the word at the
// rounded-down address, rotated right so the byte at the requested address
// lands in the low lane.
func (c *CPU) readWordUnaligned(addr uint32) uint32 {
	return rotr(c.bus.Read32(addr&^3), 8*(addr&3))
}

// writeWordUnaligned is the store-side inverse: pre-rotate the value so the
// aligned write leaves the low byte at the requested address.
func (c *CPU) writeWordUnaligned(addr uint32, value uint32) {
	c.bus.Write32(addr&^3, rotr(value, (32-8*(addr&3))&31))
}

// signExtend12 sign-extends the low 12 bits of v.
func signExtend12(v uint32) uint32 {
	return (v&0xFFF ^ 0x800) - 0x800
}

// ------------------------------ format 2: add/subtract ------------------------------

func (c *CPU) execAddReg(insn uint16) {
	rd, rs, rn := insn&7, (insn>>3)&7, (insn>>6)&7
	c.regs[rd] = c.addFlags(c.regs[rs], c.regs[rn])
}

func (c *CPU) execSubReg(insn uint16) {
	rd, rs, rn := insn&7, (insn>>3)&7, (insn>>6)&7
	c.regs[rd] = c.subFlags(c.regs[rs], c.regs[rn])
}

func (c *CPU) execAddImm3(insn uint16) {
	rd, rs, imm := insn&7, (insn>>3)&7, uint32((insn>>6)&7)
	c.regs[rd] = c.addFlags(c.regs[rs], imm)
}

func (c *CPU) execSubImm3(insn uint16) {
	rd, rs, imm := insn&7, (insn>>3)&7, uint32((insn>>6)&7)
	c.regs[rd] = c.subFlags(c.regs[rs], imm)
}

// ------------------------------ format 3: immediate ALU ------------------------------

// execMovImm loads an 8-bit immediate. Unlike ADD/SUB it touches only N and
// Z; carry and overflow survive.
func (c *CPU) execMovImm(insn uint16) {
	rd, imm := (insn>>8)&7, uint32(insn&0xFF)
	c.regs[rd] = imm
	c.setNZ(imm)
}

func (c *CPU) execAddImm(insn uint16) {
	rd, imm := (insn>>8)&7, uint32(insn&0xFF)
	c.regs[rd] = c.addFlags(c.regs[rd], imm)
}

func (c *CPU) execSubImm(insn uint16) {
	rd, imm := (insn>>8)&7, uint32(insn&0xFF)
	c.regs[rd] = c.subFlags(c.regs[rd], imm)
}

// ------------------------------ format 5: high registers and BX ------------------------------

func highRegIndices(insn uint16) (rd, rs uint16) {
	rd = insn&7 | (insn>>4)&8
	rs = (insn >> 3) & 0xF
	return rd, rs
}

// execAddHigh adds across the full register file without touching flags. The
// raw result lands even in PC; no alignment fixup happens here.
func (c *CPU) execAddHigh(insn uint16) {
	rd, rs := highRegIndices(insn)
	c.regs[rd] += c.regs[rs]
}

func (c *CPU) execCmpHigh(insn uint16) {
	rd, rs := highRegIndices(insn)
	c.subFlags(c.regs[rd], c.regs[rs])
}

func (c *CPU) execMovHigh(insn uint16) {
	rd, rs := highRegIndices(insn)
	c.regs[rd] = c.regs[rs]
}

// execBX branches and exchanges instruction state on bit 0 of the target.
func (c *CPU) execBX(insn uint16) {
	c.interworkBranch(c.regs[(insn>>3)&0xF])
}

// interworkBranch applies the BX rule shared with POP {pc}: bit 0 selects
// Thumb, a clear bit 0 enters ARM state with a word-aligned PC.
func (c *CPU) interworkBranch(target uint32) {
	if target&1 != 0 {
		c.cpsr |= FlagT
		c.regs[RegPC] = target &^ 1
	} else {
		c.cpsr &^= FlagT
		c.regs[RegPC] = target &^ 3
	}
}

// ------------------------------ formats 6/7/9: loads and stores ------------------------------

// Loads update N and Z on the loaded value; C and V survive.
func (c *CPU) execLdrLiteral(insn uint16) {
	rd, imm := (insn>>8)&7, uint32(insn&0xFF)
	base := (c.regs[RegPC] + 2) &^ 3
	c.regs[rd] = c.bus.Read32(base + imm*4)
	c.setNZ(c.regs[rd])
}

func (c *CPU) execStrImmW(insn uint16) {
	rd, rb, off := insn&7, (insn>>3)&7, uint32((insn>>6)&0x1F)*4
	c.writeWordUnaligned(c.regs[rb]+off, c.regs[rd])
}

func (c *CPU) execLdrImmW(insn uint16) {
	rd, rb, off := insn&7, (insn>>3)&7, uint32((insn>>6)&0x1F)*4
	c.regs[rd] = c.readWordUnaligned(c.regs[rb] + off)
	c.setNZ(c.regs[rd])
}

func (c *CPU) execStrImmB(insn uint16) {
	rd, rb, off := insn&7, (insn>>3)&7, uint32((insn>>6)&0x1F)
	c.bus.Write8(c.regs[rb]+off, uint8(c.regs[rd]))
}

func (c *CPU) execLdrImmB(insn uint16) {
	rd, rb, off := insn&7, (insn>>3)&7, uint32((insn>>6)&0x1F)
	c.regs[rd] = uint32(c.bus.Read8(c.regs[rb] + off))
	c.setNZ(c.regs[rd])
}

// ------------------------------ format 14: push/pop ------------------------------

// execPush stores the listed low registers, optionally followed by LR, on a
// full-descending stack: the lowest register ends up at the lowest address.
func (c *CPU) execPush(insn uint16) {
	count := uint32(bits.OnesCount16(insn & 0x1FF))
	addr := c.regs[RegSP] - count*4
	c.regs[RegSP] = addr
	for i := uint16(0); i < 8; i++ {
		if insn&(1<<i) != 0 {
			c.bus.Write32(addr, c.regs[i])
			addr += 4
		}
	}
	if insn&0x100 != 0 {
		c.bus.Write32(addr, c.regs[RegLR])
	}
}

// execPop mirrors execPush. The optional last slot loads PC through the same
// interworking rule as BX.
func (c *CPU) execPop(insn uint16) {
	addr := c.regs[RegSP]
	for i := uint16(0); i < 8; i++ {
		if insn&(1<<i) != 0 {
			c.regs[i] = c.bus.Read32(addr)
			addr += 4
		}
	}
	if insn&0x100 != 0 {
		target := c.bus.Read32(addr)
		addr += 4
		c.interworkBranch(target)
	}
	c.regs[RegSP] = addr
}

// ------------------------------ formats 16/18: branches ------------------------------

func (c *CPU) execB(insn uint16) {
	c.regs[RegPC] += signExtend12(uint32(insn&0x7FF) << 1)
}

func (c *CPU) execBCond(insn uint16) {
	if !c.condPassed((insn >> 8) & 0xF) {
		return
	}
	c.regs[RegPC] += uint32(int32(int8(insn&0xFF))) << 1
}

// condPassed evaluates an ARM condition code against the current flags.
// Code 14 is the always condition; code 15 is reserved in this position and
// never taken.
func (c *CPU) condPassed(cond uint16) bool {
	n := c.cpsr&FlagN != 0
	z := c.cpsr&FlagZ != 0
	cf := c.cpsr&FlagC != 0
	v := c.cpsr&FlagV != 0
	switch cond {
	case 0x0: // EQ
		return z
	case 0x1: // NE
		return !z
	case 0x2: // CS
		return cf
	case 0x3: // CC
		return !cf
	case 0x4: // MI
		return n
	case 0x5: // PL
		return !n
	case 0x6: // VS
		return v
	case 0x7: // VC
		return !v
	case 0x8: // HI
		return cf && !z
	case 0x9: // LS
		return !cf || z
	case 0xA: // GE
		return n == v
	case 0xB: // LT
		return n != v
	case 0xC: // GT
		return !z && n == v
	case 0xD: // LE
		return z || n != v
	case 0xE: // AL
		return true
	default: // reserved
		return false
	}
}
