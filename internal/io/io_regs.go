package io

import (
	"gbacore/util/convert"
)

// I/O register block (0x04000000 - 0x040003FF). Only a small typed subset is
// modelled:
//
//	DISPCNT  (0x0000, 16-bit, read/write, opaque)
//	DISPSTAT (0x0004, 16-bit, flags composed live on read)
//	VCOUNT   (0x0006, 16-bit, read-only, system-driven)
//
// Every other offset in the 1 KiB window falls back to a plain byte array.
// Accesses are little-endian; unaligned 8/16/32-bit access is permitted.
const (
	// Size of the mappable I/O window in bytes.
	Size = 0x400

	OffDISPCNT  = 0x0000
	OffDISPSTAT = 0x0004
	OffVCOUNT   = 0x0006

	// Scanlines 0..159 are visible; 160 and up is VBlank.
	VisibleLines = 160

	// DISPSTAT bits 0..2 are live flags composed on read; writes to them are
	// discarded. Bits 3..5 are the IRQ enables and bits 8..15 hold the LYC
	// compare value; those land in the writable shadow.
	DispstatVBlankFlag   = 1 << 0
	DispstatHBlankFlag   = 1 << 1
	DispstatVCountFlag   = 1 << 2
	DispstatVBlankEnable = 1 << 3
	DispstatHBlankEnable = 1 << 4
	DispstatVCountEnable = 1 << 5
	DispstatLYCShift     = 8
	DispstatLYCMask      = 0xFF << DispstatLYCShift

	dispstatWritableMask = DispstatVBlankEnable | DispstatHBlankEnable |
		DispstatVCountEnable | DispstatLYCMask
)

// IORegs models the register block. VCOUNT and the HBlank state are driven by
// the system (a display timing generator, or a test harness) through the
// setters; the CPU can only observe them.
type IORegs struct {
	raw            [Size]byte
	vcount         uint16
	hblank         bool
	dispstatShadow uint16
}

func NewIORegs() *IORegs {
	return &IORegs{}
}

// Reset zeroes the backing array, the scanline and the HBlank state.
func (i *IORegs) Reset() {
	i.raw = [Size]byte{}
	i.vcount = 0
	i.hblank = false
	i.dispstatShadow = 0
}

// SetVCount is the system-facing scanline setter (what a display timing
// generator would drive). Bus writes to VCOUNT never land here.
func (i *IORegs) SetVCount(scanline uint16) {
	i.vcount = scanline
}

// SetHBlank injects the externally tracked HBlank state.
func (i *IORegs) SetHBlank(hblank bool) {
	i.hblank = hblank
}

// Read8 reads one byte at an offset relative to the window base. DISPSTAT and
// VCOUNT are handled per half explicitly because their content is computed at
// read time and differs between the low and high byte.
func (i *IORegs) Read8(offset uint32) uint8 {
	switch offset {
	case OffVCOUNT:
		return uint8(i.vcount)
	case OffVCOUNT + 1:
		return uint8(i.vcount >> 8)
	case OffDISPSTAT:
		return uint8(i.composedDispstat())
	case OffDISPSTAT + 1:
		return uint8(i.composedDispstat() >> 8)
	}
	if offset >= Size {
		return 0xFF
	}
	return i.raw[offset]
}

// Write8 writes one byte at an offset relative to the window base. VCOUNT is
// read-only at every width; DISPSTAT keeps only its writable bits.
func (i *IORegs) Write8(offset uint32, value uint8) {
	switch offset {
	case OffVCOUNT, OffVCOUNT + 1:
		return
	case OffDISPSTAT:
		i.writeDispstat(i.dispstatShadow&0xFF00 | uint16(value))
		return
	case OffDISPSTAT + 1:
		i.writeDispstat(i.dispstatShadow&0x00FF | uint16(value)<<8)
		return
	}
	if offset >= Size {
		return
	}
	i.raw[offset] = value
}

func (i *IORegs) Read16(offset uint32) uint16 {
	switch offset {
	case OffVCOUNT:
		return i.vcount
	case OffDISPSTAT:
		return i.composedDispstat()
	}
	return uint16(i.Read8(offset)) | uint16(i.Read8(offset+1))<<8
}

func (i *IORegs) Write16(offset uint32, value uint16) {
	switch offset {
	case OffVCOUNT:
		return
	case OffDISPSTAT:
		i.writeDispstat(value)
		return
	}
	i.Write8(offset, uint8(value))
	i.Write8(offset+1, uint8(value>>8))
}

func (i *IORegs) Read32(offset uint32) uint32 {
	return uint32(i.Read8(offset)) |
		uint32(i.Read8(offset+1))<<8 |
		uint32(i.Read8(offset+2))<<16 |
		uint32(i.Read8(offset+3))<<24
}

func (i *IORegs) Write32(offset uint32, value uint32) {
	i.Write8(offset, uint8(value))
	i.Write8(offset+1, uint8(value>>8))
	i.Write8(offset+2, uint8(value>>16))
	i.Write8(offset+3, uint8(value>>24))
}

// composedDispstat builds the DISPSTAT value seen by reads: the shadow's
// writable bits OR'd with the three live flags.
func (i *IORegs) composedDispstat() uint16 {
	composed := i.dispstatShadow & dispstatWritableMask

	lyc := (i.dispstatShadow & DispstatLYCMask) >> DispstatLYCShift
	composed |= convert.BoolToUint16(i.vcount >= VisibleLines) << 0
	composed |= convert.BoolToUint16(i.hblank) << 1
	composed |= convert.BoolToUint16(i.vcount == lyc) << 2
	return composed
}

// writeDispstat stores only the writable bits; the flag bits 0..2 are
// discarded whatever the access width was.
func (i *IORegs) writeDispstat(value uint16) {
	i.dispstatShadow = i.dispstatShadow&^uint16(dispstatWritableMask) |
		value&dispstatWritableMask
}
