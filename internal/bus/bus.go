package bus

import (
	"gbacore/internal/interfaces"
	"gbacore/internal/mmu"
)

// Bus is the routing facade between the CPU and the MMU. It holds no state of
// its own and adds no logic beyond delegation; it exists so the CPU depends
// on the bus contract rather than on MMU internals, leaving room for a future
// bus with wait-state timing without touching CPU code. The MMU must outlive
// every call made through the Bus.
type Bus struct {
	mmu *mmu.MMU
}

var _ interfaces.Bus = (*Bus)(nil)

func NewBus(m *mmu.MMU) *Bus {
	return &Bus{mmu: m}
}

// Reset zeroes all backing memory, clears the BIOS-loaded state and drops the
// cartridge contents.
func (b *Bus) Reset() {
	b.mmu.Reset()
}

// LoadBIOS loads a BIOS image from a file; see mmu.LoadBIOS.
func (b *Bus) LoadBIOS(path string) error {
	return b.mmu.LoadBIOS(path)
}

// LoadGamePak loads a cartridge image from a file; see mmu.LoadGamePak.
func (b *Bus) LoadGamePak(path string) error {
	return b.mmu.LoadGamePak(path)
}

// LoadGamePakBytes loads a cartridge image from memory. It always succeeds.
func (b *Bus) LoadGamePakBytes(data []byte) {
	b.mmu.LoadGamePakBytes(data)
}

func (b *Bus) Read8(addr uint32) uint8 { return b.mmu.Read8(addr) }

func (b *Bus) Write8(addr uint32, value uint8) { b.mmu.Write8(addr, value) }

func (b *Bus) Read16(addr uint32) uint16 { return b.mmu.Read16(addr) }

func (b *Bus) Write16(addr uint32, value uint16) { b.mmu.Write16(addr, value) }

func (b *Bus) Read32(addr uint32) uint32 { return b.mmu.Read32(addr) }

func (b *Bus) Write32(addr uint32, value uint32) { b.mmu.Write32(addr, value) }

// SetVCount injects the current scanline, for test harnesses and a future
// display timing generator. Not safe to call concurrently with CPU stepping.
func (b *Bus) SetVCount(scanline uint16) {
	b.mmu.SetVCount(scanline)
}

// SetHBlank injects the HBlank state; same contract as SetVCount.
func (b *Bus) SetHBlank(hblank bool) {
	b.mmu.SetHBlank(hblank)
}
