package chip8

const (
	DefaultStackSize = 16
	NumKeys          = 16
)

// CpuConfig holds the collaborators of a Cpu
type CpuConfig struct {
	// Random is used by RND
	Random RandomSource
	// StackSize is the maximum number of nested calls
	StackSize int
}

type CpuConfigCb func(config *CpuConfig)

// Cpu is the CHIP-8 interpreter.
// It owns all of the machine state and is not safe for concurrent use.
type Cpu struct {
	memory *Memory
	// V 8-bit registers
	v [16]byte
	// I 16-bit register
	i uint16
	// Delay timer register
	dt byte
	// Sound timer register
	st byte
	// Program counter
	pc    uint16
	stack []uint16

	keys   [NumKeys]bool
	screen Screen

	waitingForKey  bool
	keyDstRegister byte

	random    RandomSource
	stackSize int
}

// NewCpu returns a Cpu with the font and the program loaded and the PC at the start of the program
func NewCpu(program []byte, configs ...CpuConfigCb) (*Cpu, error) {
	config := &CpuConfig{
		Random:    DefaultRandom,
		StackSize: DefaultStackSize,
	}
	for _, cb := range configs {
		cb(config)
	}

	mem, err := newMemory(program)
	if err != nil {
		return nil, err
	}

	if config.Random == nil {
		config.Random = DefaultRandom
	}
	if config.StackSize <= 0 {
		config.StackSize = DefaultStackSize
	}

	return &Cpu{
		memory:    mem,
		pc:        StartOfProgram,
		stack:     make([]uint16, 0, config.StackSize),
		random:    config.Random,
		stackSize: config.StackSize,
	}, nil
}

// Step fetches, decodes and executes a single instruction.
// While the cpu waits for a key it does nothing.
func (cpu *Cpu) Step() error {
	if cpu.waitingForKey {
		return nil
	}

	opCode, err := cpu.memory.readWord(int(cpu.pc))
	if err != nil {
		return err
	}
	cpu.pc += 2

	ins, err := Decode(opCode)
	if err != nil {
		return err
	}

	return cpu.execute(ins)
}

// TickTimers decrements both timers, stopping at zero
func (cpu *Cpu) TickTimers() {
	if cpu.dt > 0 {
		cpu.dt--
	}
	if cpu.st > 0 {
		cpu.st--
	}
}

// SetKey updates the state of a key.
// A key press releases a pending LD Vx, K and stores the key in Vx.
func (cpu *Cpu) SetKey(key byte, pressed bool) error {
	if key >= NumKeys {
		return ErrInvalidKey{Key: key}
	}

	cpu.keys[key] = pressed
	if pressed && cpu.waitingForKey {
		cpu.v[cpu.keyDstRegister] = key
		cpu.waitingForKey = false
	}

	return nil
}

// Screen returns a copy of the display
func (cpu *Cpu) Screen() Screen {
	return cpu.screen
}

func (cpu *Cpu) SoundTimer() byte {
	return cpu.st
}

func (cpu *Cpu) DelayTimer() byte {
	return cpu.dt
}

// V returns the value of register Vx, x is taken modulo 16
func (cpu *Cpu) V(x byte) byte {
	return cpu.v[x&0xF]
}

func (cpu *Cpu) I() uint16 {
	return cpu.i
}

func (cpu *Cpu) Pc() uint16 {
	return cpu.pc
}

func (cpu *Cpu) StackDepth() int {
	return len(cpu.stack)
}

func (cpu *Cpu) IsWaitingForKey() bool {
	return cpu.waitingForKey
}

func (cpu *Cpu) IsKeyPressed(key byte) bool {
	if key >= NumKeys {
		return false
	}
	return cpu.keys[key]
}

// Peek decodes the instruction at the PC without executing it
func (cpu *Cpu) Peek() (Instruction, error) {
	opCode, err := cpu.memory.readWord(int(cpu.pc))
	if err != nil {
		return Instruction{}, err
	}

	return Decode(opCode)
}

func bool2byte(b bool) byte {
	if b {
		return 1
	}

	return 0
}
