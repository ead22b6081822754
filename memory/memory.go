// Memory is a package that provides the 4k of RAM
// within which the emulator executes its programs.
//
// The first 240 bytes hold the built-in font sprites, the standard
// 5-byte glyphs followed by the double-height SuperChip glyphs.
// Programs are loaded at 0x200 and everything above that is free for
// the running program to use as scratch space.
package memory

// Size is the number of addressable bytes; the architecture uses
// 12-bit addresses so this can never grow.
const Size = 4096

// ProgramOffset is the address at which loaded programs begin.
const ProgramOffset = 0x200

// FontOffset is the address of the standard 5-byte font glyphs.
const FontOffset = 0

// BigFontOffset is the address of the SuperChip 10-byte font glyphs,
// which are laid down immediately after the standard ones.
const BigFontOffset = FontOffset + FontBytes

// Memory provides the 4K bytes array memory.
type Memory struct {
	buf [Size]uint8
}

// New returns a memory with the font tables installed and the given
// program copied to ProgramOffset.
//
// A program too large to fit is the caller's responsibility to reject,
// we make no attempt to validate it here.
func New(rom []uint8) *Memory {
	m := &Memory{}
	m.LoadROM(rom)
	return m
}

// LoadROM zeroes the RAM, installs the two font tables at the base of
// memory, and copies the program to ProgramOffset.
func (m *Memory) LoadROM(rom []uint8) {
	m.buf = [Size]uint8{}

	copy(m.buf[FontOffset:], font[:])
	copy(m.buf[BigFontOffset:], bigFont[:])
	copy(m.buf[ProgramOffset:], rom)
}

// Set sets a byte at addr of memory.
//
// Addresses are truncated to the 12 bits the architecture specifies.
func (m *Memory) Set(addr uint16, value uint8) {
	m.buf[addr&0x0FFF] = value
}

// Get returns a byte at addr of memory.
func (m *Memory) Get(addr uint16) uint8 {
	return m.buf[addr&0x0FFF]
}

// GetU16 returns a word from the given address of memory.
//
// Instructions are stored high-byte first, so that is the order in
// which we combine.
func (m *Memory) GetU16(addr uint16) uint16 {
	h := m.Get(addr)
	l := m.Get(addr + 1)
	return (uint16(h) << 8) | uint16(l)
}

// SetRange copies bytes from the given data to the specified
// starting address in RAM.
func (m *Memory) SetRange(addr uint16, data ...uint8) {
	for i, b := range data {
		m.Set(addr+uint16(i), b)
	}
}

// GetRange returns the contents of a given range
func (m *Memory) GetRange(addr uint16, size int) []uint8 {
	ret := make([]uint8, 0, size)
	for size > 0 {
		ret = append(ret, m.Get(addr))
		addr++
		size--
	}
	return ret
}
