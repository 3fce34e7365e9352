package chip8

import "fmt"

const (
	MemorySize     = 4096
	StartOfProgram = 0x200
	// MaxProgramSize is the largest image that fits between StartOfProgram and the end of memory
	MaxProgramSize = MemorySize - StartOfProgram

	FontGlyphSize = 5
)

// Memory is the addressable space of the machine
type Memory [MemorySize]byte

var font = [16 * FontGlyphSize]byte{
	// 0
	0xF0, 0x90, 0x90, 0x90, 0xF0,
	// 1
	0x20, 0x60, 0x20, 0x20, 0x70,
	// 2
	0xF0, 0x10, 0xF0, 0x80, 0xF0,
	// 3
	0xF0, 0x10, 0xF0, 0x10, 0xF0,
	// 4
	0x90, 0x90, 0xF0, 0x10, 0x10,
	// 5
	0xF0, 0x80, 0xF0, 0x10, 0xF0,
	// 6
	0xF0, 0x80, 0xF0, 0x90, 0xF0,
	// 7
	0xF0, 0x10, 0x20, 0x40, 0x40,
	// 8
	0xF0, 0x90, 0xF0, 0x90, 0xF0,
	// 9
	0xF0, 0x90, 0xF0, 0x10, 0xF0,
	// A
	0xF0, 0x90, 0xF0, 0x90, 0x90,
	// B
	0xE0, 0x90, 0xE0, 0x90, 0xE0,
	// C
	0xF0, 0x80, 0x80, 0x80, 0xF0,
	// D
	0xE0, 0x90, 0x90, 0x90, 0xE0,
	// E
	0xF0, 0x80, 0xF0, 0x80, 0xF0,
	// F
	0xF0, 0x80, 0xF0, 0x80, 0x80,
}

// newMemory returns a zeroed memory with the font at 0x000 and the program at StartOfProgram
func newMemory(program []byte) (*Memory, error) {
	if len(program) > MaxProgramSize {
		return nil, fmt.Errorf("%w: %d bytes, at most %d fit", ErrImageTooLarge, len(program), MaxProgramSize)
	}

	mem := &Memory{}
	copy(mem[:], font[:])
	copy(mem[StartOfProgram:], program)

	return mem, nil
}

// checkRange fails unless every address in [addr, addr+n) is inside memory
func checkRange(addr int, n int) error {
	if n <= 0 {
		return nil
	}
	if addr < 0 || addr >= MemorySize {
		return ErrInvalidAddress{Address: addr}
	}
	if addr+n-1 >= MemorySize {
		return ErrInvalidAddress{Address: addr + n - 1}
	}

	return nil
}

func (mem *Memory) readWord(addr int) (uint16, error) {
	if err := checkRange(addr, 2); err != nil {
		return 0, err
	}

	return uint16(mem[addr])<<8 | uint16(mem[addr+1]), nil
}
