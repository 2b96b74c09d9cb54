package cpu

import (
	"fmt"

	"gbacore/internal/interfaces"
	"gbacore/util/dbg"
)

// ARM7TDMI CPSR flag bits (modelled subset). Mode and interrupt-mask bits are
// out of scope for this core.
const (
	FlagN = 1 << 31 // negative
	FlagZ = 1 << 30 // zero
	FlagC = 1 << 29 // carry / no-borrow
	FlagV = 1 << 28 // signed overflow
	FlagT = 1 << 5  // Thumb state
)

// Register file geometry. SP, LR and PC are conventional indices into the
// same array, not separate storage.
const (
	NumRegs = 16
	RegSP   = 13
	RegLR   = 14
	RegPC   = 15

	signBit = uint32(1) << 31
)

// CPU is an ARM7TDMI executing the Thumb (16-bit) instruction subset. ARM
// (32-bit) execution is not implemented: BX detects the target state from bit
// 0 as the hardware does, but once the T flag is cleared Step fetches and
// skips words without executing them until the next Reset.
//
// The CPU is not safe for concurrent use; one instance is meant to be driven
// by one calling thread. The attached bus must outlive every call.
type CPU struct {
	regs [NumRegs]uint32
	cpsr uint32
	bus  interfaces.Bus
}

// NewCPU creates a CPU attached to the given bus. Reset must be called before
// the first Step.
func NewCPU(bus interfaces.Bus) *CPU {
	c := &CPU{}
	c.Attach(bus)
	return c
}

// Attach binds the bus the CPU fetches and loads/stores through. The CPU does
// not own the bus.
func (c *CPU) Attach(bus interfaces.Bus) {
	c.bus = bus
}

// Reset zeroes all registers and puts the CPU in Thumb state. It is the only
// way back from ARM state.
func (c *CPU) Reset() {
	c.regs = [NumRegs]uint32{}
	c.cpsr = FlagT
}

// thumbOp pairs a masked bit-pattern with its execution routine. Several
// formats share leading bits, so the table is ordered by prefix length:
// 8-bit prefixes first, then 7-bit, then 5-bit, then the 4-bit conditional
// branch. Dispatch must preserve this ordering.
type thumbOp struct {
	mask  uint16
	value uint16
	exec  func(*CPU, uint16)
}

var thumbOps = []thumbOp{
	// 8-bit prefixes: high register operations and BX
	{0xFF00, 0x4400, (*CPU).execAddHigh},
	{0xFF00, 0x4500, (*CPU).execCmpHigh},
	{0xFF00, 0x4600, (*CPU).execMovHigh},
	{0xFF00, 0x4700, (*CPU).execBX},

	// 7-bit prefixes: register/3-bit-immediate add/sub, push/pop
	{0xFE00, 0x1800, (*CPU).execAddReg},
	{0xFE00, 0x1A00, (*CPU).execSubReg},
	{0xFE00, 0x1C00, (*CPU).execAddImm3},
	{0xFE00, 0x1E00, (*CPU).execSubImm3},
	{0xFE00, 0xB400, (*CPU).execPush},
	{0xFE00, 0xBC00, (*CPU).execPop},

	// 5-bit prefixes: immediate ALU ops, literal load, loads/stores, branch
	{0xF800, 0x2000, (*CPU).execMovImm},
	{0xF800, 0x3000, (*CPU).execAddImm},
	{0xF800, 0x3800, (*CPU).execSubImm},
	{0xF800, 0x4800, (*CPU).execLdrLiteral},
	{0xF800, 0x6000, (*CPU).execStrImmW},
	{0xF800, 0x6800, (*CPU).execLdrImmW},
	{0xF800, 0x7000, (*CPU).execStrImmB},
	{0xF800, 0x7800, (*CPU).execLdrImmB},
	{0xF800, 0xE000, (*CPU).execB},

	// 4-bit prefix: conditional branch
	{0xF000, 0xD000, (*CPU).execBCond},
}

// Step executes exactly one instruction: fetch a halfword at PC, advance PC
// by 2, match the opcode bit-pattern and run its routine. It runs to
// completion without blocking and never fails; an instruction word matching
// no implemented pattern executes as a no-op.
func (c *CPU) Step() {
	if c.cpsr&FlagT == 0 {
		// ARM state is a permanent no-op state until Reset: consume one word
		// so a driver loop still makes progress.
		word := c.bus.Read32(c.regs[RegPC])
		c.regs[RegPC] += 4
		dbg.Printf("CPU: ARM-state word %08X at %08X skipped (ARM execution not implemented)\n", word, c.regs[RegPC]-4)
		return
	}

	insn := c.bus.Read16(c.regs[RegPC])
	c.regs[RegPC] += 2

	for _, op := range thumbOps {
		if insn&op.mask == op.value {
			op.exec(c, insn)
			return
		}
	}
	c.execUnimplemented(insn)
}

// execUnimplemented is the single fallback for opcodes outside the
// implemented subset. The instruction is a silent no-op: registers, flags and
// memory are left untouched. A strict or diagnostic mode would hook in here.
func (c *CPU) execUnimplemented(insn uint16) {
	dbg.Printf("CPU: unimplemented Thumb opcode %04X at %08X\n", insn, c.regs[RegPC]-2)
}

// ------------------------------ debug accessors ------------------------------

// Reg returns a register by index; the index is masked to 0..15.
func (c *CPU) Reg(index int) uint32 {
	return c.regs[index&0xF]
}

// SetReg sets a register by index; the index is masked to 0..15.
func (c *CPU) SetReg(index int, value uint32) {
	c.regs[index&0xF] = value
}

// PC returns the program counter.
func (c *CPU) PC() uint32 {
	return c.regs[RegPC]
}

// SetPC aims the program counter, forcing halfword alignment.
func (c *CPU) SetPC(addr uint32) {
	c.regs[RegPC] = addr &^ 1
}

// CPSR returns the status register.
func (c *CPU) CPSR() uint32 {
	return c.cpsr
}

// String renders the register file and flags for dumps and traces.
func (c *CPU) String() string {
	flag := func(mask uint32, set string) string {
		if c.cpsr&mask != 0 {
			return set
		}
		return "-"
	}
	state := "ARM"
	if c.cpsr&FlagT != 0 {
		state = "THUMB"
	}
	return fmt.Sprintf(
		"r0 =%08X r1 =%08X r2 =%08X r3 =%08X\n"+
			"r4 =%08X r5 =%08X r6 =%08X r7 =%08X\n"+
			"r8 =%08X r9 =%08X r10=%08X r11=%08X\n"+
			"r12=%08X sp =%08X lr =%08X pc =%08X\n"+
			"cpsr=%08X [%s%s%s%s %s]",
		c.regs[0], c.regs[1], c.regs[2], c.regs[3],
		c.regs[4], c.regs[5], c.regs[6], c.regs[7],
		c.regs[8], c.regs[9], c.regs[10], c.regs[11],
		c.regs[12], c.regs[RegSP], c.regs[RegLR], c.regs[RegPC],
		c.cpsr,
		flag(FlagN, "N"), flag(FlagZ, "Z"), flag(FlagC, "C"), flag(FlagV, "V"),
		state)
}
