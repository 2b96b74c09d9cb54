package interfaces

// Bus is the CPU's view of the memory system. All accesses are little-endian
// and carry no alignment requirement; rotate-on-misalignment for word loads
// and stores is a CPU concern, not a bus concern. Implementations never fail:
// unmapped reads degrade to the open-bus value and degenerate writes are
// silently discarded.
type Bus interface {
	Read8(addr uint32) uint8
	Write8(addr uint32, value uint8)
	Read16(addr uint32) uint16
	Write16(addr uint32, value uint16)
	Read32(addr uint32) uint32
	Write32(addr uint32, value uint32)
}
