package cpu_test

import (
	"testing"

	"gbacore/internal/bus"
	"gbacore/internal/cpu"
	"gbacore/internal/mmu"
)

// Programs are assembled into IWRAM and executed through the real bus and
// MMU, so these tests exercise the full fetch path.
const codeOrigin = mmu.IWRAMBase

type system struct {
	bus *bus.Bus
	cpu *cpu.CPU
}

func newSystem() *system {
	b := bus.NewBus(mmu.NewMMU())
	c := cpu.NewCPU(b)
	c.Reset()
	c.SetPC(codeOrigin)
	return &system{bus: b, cpu: c}
}

// putProgram writes the instruction words at origin and returns the address
// one past the last word.
func (s *system) putProgram(origin uint32, words ...uint16) uint32 {
	for i, w := range words {
		s.bus.Write16(origin+uint32(i)*2, w)
	}
	return origin + uint32(len(words))*2
}

func (s *system) stepN(n int) {
	for i := 0; i < n; i++ {
		s.cpu.Step()
	}
}

func (s *system) assertReg(t *testing.T, index int, want uint32) {
	t.Helper()
	if got := s.cpu.Reg(index); got != want {
		t.Errorf("r%d = %08X, want %08X", index, got, want)
	}
}

func (s *system) assertFlags(t *testing.T, want string) {
	t.Helper()
	if got := flagString(s.cpu.CPSR()); got != want {
		t.Errorf("flags = %q, want %q", got, want)
	}
}

// flagString renders N/Z/C/V as upper case when set, lower case when clear.
func flagString(cpsr uint32) string {
	out := make([]byte, 4)
	for i, f := range []struct {
		mask     uint32
		set, clr byte
	}{
		{cpu.FlagN, 'N', 'n'},
		{cpu.FlagZ, 'Z', 'z'},
		{cpu.FlagC, 'C', 'c'},
		{cpu.FlagV, 'V', 'v'},
	} {
		if cpsr&f.mask != 0 {
			out[i] = f.set
		} else {
			out[i] = f.clr
		}
	}
	return string(out)
}

// ------------------------------ Thumb encoders ------------------------------

func movImm(rd, imm uint16) uint16  { return 0x2000 | rd<<8 | imm&0xFF }
func addImm8(rd, imm uint16) uint16 { return 0x3000 | rd<<8 | imm&0xFF }
func subImm8(rd, imm uint16) uint16 { return 0x3800 | rd<<8 | imm&0xFF }

func addReg(rd, rs, rn uint16) uint16   { return 0x1800 | rn<<6 | rs<<3 | rd }
func subReg(rd, rs, rn uint16) uint16   { return 0x1A00 | rn<<6 | rs<<3 | rd }
func addImm3(rd, rs, imm uint16) uint16 { return 0x1C00 | imm<<6 | rs<<3 | rd }
func subImm3(rd, rs, imm uint16) uint16 { return 0x1E00 | imm<<6 | rs<<3 | rd }

// High-register forms take full 4-bit indices; bit 3 of rd becomes the H1
// flag and rs occupies a 4-bit field.
func addHigh(rd, rs uint16) uint16 { return 0x4400 | (rd&8)<<4 | (rs&0xF)<<3 | rd&7 }
func cmpHigh(rd, rs uint16) uint16 { return 0x4500 | (rd&8)<<4 | (rs&0xF)<<3 | rd&7 }
func movHigh(rd, rs uint16) uint16 { return 0x4600 | (rd&8)<<4 | (rs&0xF)<<3 | rd&7 }
func bx(rm uint16) uint16          { return 0x4700 | (rm&0xF)<<3 }

func push(rlist uint16, lr bool) uint16 {
	insn := uint16(0xB400) | rlist&0xFF
	if lr {
		insn |= 0x100
	}
	return insn
}

func pop(rlist uint16, pc bool) uint16 {
	insn := uint16(0xBC00) | rlist&0xFF
	if pc {
		insn |= 0x100
	}
	return insn
}

func ldrLit(rd, imm uint16) uint16 { return 0x4800 | rd<<8 | imm&0xFF }

func strW(rd, rb, imm5 uint16) uint16 { return 0x6000 | imm5<<6 | rb<<3 | rd }
func ldrW(rd, rb, imm5 uint16) uint16 { return 0x6800 | imm5<<6 | rb<<3 | rd }
func strB(rd, rb, imm5 uint16) uint16 { return 0x7000 | imm5<<6 | rb<<3 | rd }
func ldrB(rd, rb, imm5 uint16) uint16 { return 0x7800 | imm5<<6 | rb<<3 | rd }

// b encodes an unconditional branch; off is a signed halfword count relative
// to the post-fetch PC (the instruction address plus 2).
func b(off int16) uint16 { return 0xE000 | uint16(off)&0x7FF }

func bCond(cond uint16, off int8) uint16 { return 0xD000 | cond<<8 | uint16(uint8(off)) }
