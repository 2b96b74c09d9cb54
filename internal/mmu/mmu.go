package mmu

import (
	"fmt"
	"os"

	"gbacore/internal/io"
	"gbacore/rom"
	"gbacore/util/dbg"
)

// GBA memory map constants. Every region is a fixed-size backing store at a
// fixed base; the mirrored regions repeat that store across a larger window.
const (
	BIOSBase = 0x00000000
	BIOSSize = 0x4000 // 16 KiB

	EWRAMBase = 0x02000000
	EWRAMSize = 0x40000 // 256 KiB

	IWRAMBase = 0x03000000
	IWRAMSize = 0x8000 // 32 KiB

	IOBase = 0x04000000
	IOSize = io.Size // 1 KiB window

	PalBase = 0x05000000
	PalSize = 0x400 // 1 KiB backing, mirrored across 16 MiB

	VRAMBase   = 0x06000000
	VRAMSize   = 0x18000 // 96 KiB backing
	VRAMWindow = 0x20000 // 128 KiB window; the 32 KiB tail aliases offsets 0..32 KiB
	vramAlias  = 0x8000  // size of the aliased tail

	OAMBase = 0x07000000
	OAMSize = 0x400 // 1 KiB backing, mirrored across 16 MiB

	// Cartridge ROM is visible through three identical wait-state windows.
	WS0Base      = 0x08000000
	WS1Base      = 0x0A000000
	WS2Base      = 0x0C000000
	WSWindowSize = 0x02000000 // 32 MiB each

	window16MiB = 0x01000000

	// OpenBus is the byte returned for any address with no backing store,
	// including BIOS before a successful load.
	OpenBus = 0xFF
)

// MMU owns every physical memory region and implements the address decode,
// mirroring and open-bus policy. It performs no instruction-level logic:
// 16/32-bit accesses are always composed from byte accesses in little-endian
// order, so unaligned addresses need no special handling here.
type MMU struct {
	bios       [BIOSSize]byte
	biosLoaded bool
	ewram      [EWRAMSize]byte
	iwram      [IWRAMSize]byte
	ioregs     *io.IORegs
	pal        [PalSize]byte
	vram       [VRAMSize]byte
	oam        [OAMSize]byte
	gamepak    []byte
}

func NewMMU() *MMU {
	return &MMU{
		ioregs: io.NewIORegs(),
	}
}

// Reset clears every backing store, the BIOS-loaded flag and the cartridge.
func (m *MMU) Reset() {
	m.bios = [BIOSSize]byte{}
	m.biosLoaded = false
	m.ewram = [EWRAMSize]byte{}
	m.iwram = [IWRAMSize]byte{}
	m.ioregs.Reset()
	m.pal = [PalSize]byte{}
	m.vram = [VRAMSize]byte{}
	m.oam = [OAMSize]byte{}
	m.gamepak = nil
}

// ------------------------------ loaders ------------------------------

// LoadBIOS reads up to 16 KiB from a file into the BIOS region, zero-filling
// any shortfall. On failure the BIOS keeps its pre-load state (open bus if it
// was never loaded). Loading may be repeated.
func (m *MMU) LoadBIOS(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read BIOS file: %w", err)
	}

	m.bios = [BIOSSize]byte{}
	copy(m.bios[:], data)
	m.biosLoaded = true
	return nil
}

// LoadGamePak loads a cartridge image from a file. An unopenable or empty
// file is an error and leaves the cartridge in its pre-load state.
func (m *MMU) LoadGamePak(path string) error {
	r, err := rom.Load(path)
	if err != nil {
		return err
	}
	m.gamepak = r.Data
	return nil
}

// LoadGamePakBytes loads a cartridge image from memory. It cannot fail; a
// zero-length image simply makes every ROM read resolve to open bus.
func (m *MMU) LoadGamePakBytes(data []byte) {
	m.gamepak = append([]byte(nil), data...)
}

// BIOSLoaded reports whether a BIOS image has been loaded since reset.
func (m *MMU) BIOSLoaded() bool {
	return m.biosLoaded
}

// ------------------------------ system hooks ------------------------------

// SetVCount forwards the current scanline to the I/O block.
func (m *MMU) SetVCount(scanline uint16) {
	m.ioregs.SetVCount(scanline)
}

// SetHBlank forwards the HBlank state to the I/O block.
func (m *MMU) SetHBlank(hblank bool) {
	m.ioregs.SetHBlank(hblank)
}

// ------------------------------ address helpers ------------------------------

// in reports whether addr falls in the half-open range [base, base+size).
func in(addr, base, size uint32) bool {
	return addr >= base && addr-base < size
}

func inAnyWS(addr uint32) bool {
	return in(addr, WS0Base, WSWindowSize) ||
		in(addr, WS1Base, WSWindowSize) ||
		in(addr, WS2Base, WSWindowSize)
}

func wsBaseOf(addr uint32) uint32 {
	switch {
	case in(addr, WS0Base, WSWindowSize):
		return WS0Base
	case in(addr, WS1Base, WSWindowSize):
		return WS1Base
	default:
		return WS2Base
	}
}

// vramOffset maps an address in the 128 KiB VRAM window onto the 96 KiB
// backing store: offsets past 96 KiB alias offsets 0..32 KiB.
func vramOffset(addr uint32) uint32 {
	offset := addr - VRAMBase
	if offset >= VRAMSize {
		offset -= VRAMSize
	}
	return offset
}

// palOffset mirrors the 1 KiB palette across its 16 MiB window; the size is a
// power of two so only the low bits of the window offset matter.
func palOffset(addr uint32) uint32 {
	return (addr - PalBase) % PalSize
}

// oamOffset mirrors the 1 KiB OAM across its 16 MiB window.
func oamOffset(addr uint32) uint32 {
	return (addr - OAMBase) % OAMSize
}

// gamepakIndex maps an address in any wait-state window onto the loaded ROM,
// wrapping by the actual ROM size. Callers must check for an empty ROM first.
func (m *MMU) gamepakIndex(addr uint32) uint32 {
	offset := addr - wsBaseOf(addr)
	return offset % uint32(len(m.gamepak))
}

// ------------------------------ reads/writes ------------------------------

// Read8 resolves an address against each region in a fixed priority order.
// Reads never fail; anything unmapped degrades to the open-bus value.
func (m *MMU) Read8(addr uint32) uint8 {
	switch {
	case in(addr, BIOSBase, BIOSSize):
		if !m.biosLoaded {
			return OpenBus
		}
		return m.bios[addr-BIOSBase]

	case in(addr, EWRAMBase, EWRAMSize):
		return m.ewram[addr-EWRAMBase]

	case in(addr, IWRAMBase, IWRAMSize):
		return m.iwram[addr-IWRAMBase]

	case in(addr, IOBase, IOSize):
		return m.ioregs.Read8(addr - IOBase)

	case in(addr, PalBase, window16MiB):
		return m.pal[palOffset(addr)]

	case in(addr, VRAMBase, VRAMWindow):
		return m.vram[vramOffset(addr)]

	case in(addr, OAMBase, window16MiB):
		return m.oam[oamOffset(addr)]

	case inAnyWS(addr):
		if len(m.gamepak) == 0 {
			return OpenBus
		}
		return m.gamepak[m.gamepakIndex(addr)]

	default:
		return OpenBus
	}
}

// Write8 mutates the addressed region in place. Writes to BIOS, cartridge ROM
// and unmapped space are discarded without error.
func (m *MMU) Write8(addr uint32, value uint8) {
	switch {
	case in(addr, BIOSBase, BIOSSize):
		dbg.Printf("MMU: discarded write %02X to read-only BIOS at %08X\n", value, addr)

	case in(addr, EWRAMBase, EWRAMSize):
		m.ewram[addr-EWRAMBase] = value

	case in(addr, IWRAMBase, IWRAMSize):
		m.iwram[addr-IWRAMBase] = value

	case in(addr, IOBase, IOSize):
		m.ioregs.Write8(addr-IOBase, value)

	case in(addr, PalBase, window16MiB):
		m.pal[palOffset(addr)] = value

	case in(addr, VRAMBase, VRAMWindow):
		m.vram[vramOffset(addr)] = value

	case in(addr, OAMBase, window16MiB):
		m.oam[oamOffset(addr)] = value

	case inAnyWS(addr):
		dbg.Printf("MMU: discarded write %02X to cartridge ROM at %08X\n", value, addr)

	default:
		dbg.Printf("MMU: discarded write %02X to unmapped address %08X\n", value, addr)
	}
}

// Read16 composes a halfword from bytes in little-endian order. The MMU
// imposes no alignment requirement.
func (m *MMU) Read16(addr uint32) uint16 {
	return uint16(m.Read8(addr)) | uint16(m.Read8(addr+1))<<8
}

func (m *MMU) Write16(addr uint32, value uint16) {
	m.Write8(addr, uint8(value))
	m.Write8(addr+1, uint8(value>>8))
}

// Read32 composes a word from bytes in little-endian order.
func (m *MMU) Read32(addr uint32) uint32 {
	return uint32(m.Read8(addr)) |
		uint32(m.Read8(addr+1))<<8 |
		uint32(m.Read8(addr+2))<<16 |
		uint32(m.Read8(addr+3))<<24
}

func (m *MMU) Write32(addr uint32, value uint32) {
	m.Write8(addr, uint8(value))
	m.Write8(addr+1, uint8(value>>8))
	m.Write8(addr+2, uint8(value>>16))
	m.Write8(addr+3, uint8(value>>24))
}
