package chip8

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var ErrNoProgram = errors.New("there is no program loaded")

const (
	DefaultSpeed uint = 500
	MaxSpeed     uint = 700
	MinSpeed     uint = 5

	// FrameRate is the rate at which timers tick and the screen is rendered
	FrameRate = 60
)

// ConsoleConfig for the console
type ConsoleConfig struct {
	// Speed in instructions per second
	Speed     uint
	Random    RandomSource
	StackSize int

	Display Display
	Buzzer  Buzzer
	Logger  *slog.Logger
}

type ConsoleConfigCb func(config *ConsoleConfig)

// Console drives a Cpu: it steps it at the configured speed, ticks the timers at
// FrameRate and forwards the screen and the sound timer to the host.
// All methods are safe for concurrent use, so hosts may push keys from their own goroutines.
type Console struct {
	mu sync.Mutex

	cpu     *Cpu
	program []byte
	config  ConsoleConfig

	speedInHz uint
	isPaused  bool
	isHalted  bool
	isBuzzing bool
	lastError error

	lastScreen Screen
	cycles     uint
	frames     uint

	// Hooks that run before every frame
	beforeFrameHooks []Hook
	// Hooks that run after every frame
	afterFrameHooks []Hook
	// Hooks that run after an error
	errorHooks []Hook
}

// NewConsole creates a console running program.
// A nil program creates an empty console that must be given one with Load.
func NewConsole(program []byte, configs ...ConsoleConfigCb) (*Console, error) {
	config := ConsoleConfig{
		Speed:     DefaultSpeed,
		Random:    DefaultRandom,
		StackSize: DefaultStackSize,
		Display:   NewDummyDisplay(),
		Buzzer:    NewDummyBuzzer(),
		Logger:    slog.Default(),
	}
	for _, cb := range configs {
		cb(&config)
	}
	if config.Display == nil {
		config.Display = NewDummyDisplay()
	}
	if config.Buzzer == nil {
		config.Buzzer = NewDummyBuzzer()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	c := &Console{
		config:           config,
		beforeFrameHooks: make([]Hook, 0),
		afterFrameHooks:  make([]Hook, 0),
		errorHooks:       make([]Hook, 0),
	}
	c.setSpeed(config.Speed)

	if program != nil {
		if err := c.Load(program); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Boot initializes the host collaborators
func (c *Console) Boot() error {
	if err := c.config.Display.Boot(); err != nil {
		return err
	}

	return c.config.Buzzer.Boot()
}

// Load replaces the running program and resets the machine
func (c *Console) Load(program []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cpu, err := c.newCpu(program)
	if err != nil {
		return err
	}

	c.program = append([]byte(nil), program...)
	c.install(cpu)
	c.config.Logger.Info("Program loaded", slog.Int("size", len(program)))

	return nil
}

// Reset restarts the loaded program from scratch
func (c *Console) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cpu == nil {
		return ErrNoProgram
	}

	cpu, err := c.newCpu(c.program)
	if err != nil {
		return err
	}
	c.install(cpu)

	return nil
}

func (c *Console) newCpu(program []byte) (*Cpu, error) {
	return NewCpu(program, func(config *CpuConfig) {
		config.Random = c.config.Random
		config.StackSize = c.config.StackSize
	})
}

func (c *Console) install(cpu *Cpu) {
	c.cpu = cpu
	c.isHalted = false
	c.lastError = nil
	c.cycles = 0
	c.frames = 0
	c.stopBuzzer()

	c.lastScreen = cpu.Screen()
	if err := c.config.Display.Render(c.lastScreen); err != nil {
		c.config.Logger.Error("Error rendering the screen", slog.Any("error", err))
	}
}

func (c *Console) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isPaused = false
}

func (c *Console) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isPaused = true
	c.stopBuzzer()
}

func (c *Console) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.isPaused
}

// IsHalted reports whether the program ran into an invalid instruction
func (c *Console) IsHalted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isHalted
}

func (c *Console) HasProgram() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cpu != nil
}

func (c *Console) SpeedInHz() uint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speedInHz
}

// SetSpeedInHz sets the speed, clamped to [MinSpeed, MaxSpeed]
func (c *Console) SetSpeedInHz(inHz uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setSpeed(inHz)
}

func (c *Console) setSpeed(inHz uint) {
	c.speedInHz = min(max(inHz, MinSpeed), MaxSpeed)
}

func (c *Console) Cycles() uint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cycles
}

func (c *Console) Frames() uint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

// LastError returns the fault that stopped the console, if any
func (c *Console) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// Snapshot is the state of a console read under a single lock
type Snapshot struct {
	HasProgram bool
	Running    bool
	Halted     bool
	Speed      uint
	Cycles     uint
	Frames     uint
	LastError  error
}

func (c *Console) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		HasProgram: c.cpu != nil,
		Running:    !c.isPaused,
		Halted:     c.isHalted,
		Speed:      c.speedInHz,
		Cycles:     c.cycles,
		Frames:     c.frames,
		LastError:  c.lastError,
	}
}

// SetKey forwards a key transition to the cpu
func (c *Console) SetKey(key byte, pressed bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cpu == nil {
		return ErrNoProgram
	}

	return c.cpu.SetKey(key, pressed)
}

func (c *Console) IsKeyPressed(key byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cpu == nil {
		return false
	}

	return c.cpu.IsKeyPressed(key)
}

// Screen returns a copy of the current display
func (c *Console) Screen() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cpu == nil {
		return Screen{}
	}

	return c.cpu.Screen()
}

// Inspect runs f with the cpu while holding the console lock
func (c *Console) Inspect(f func(cpu *Cpu)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cpu != nil {
		f(c.cpu)
	}
}

// RunCycles steps the cpu up to n times without ticking the timers.
// It stops early and reports halted when the program hits an invalid instruction.
func (c *Console) RunCycles(n int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.runCycles(n)
}

func (c *Console) runCycles(n int) (bool, error) {
	if c.cpu == nil {
		return false, ErrNoProgram
	}
	if c.lastError != nil {
		return false, c.lastError
	}
	if c.isHalted {
		return true, nil
	}

	for i := 0; i < n; i++ {
		if c.config.Logger.Enabled(context.Background(), slog.LevelDebug) {
			c.logNextInstruction()
		}

		if err := c.cpu.Step(); err != nil {
			if IsHalt(err) {
				c.isHalted = true
				c.config.Logger.Info("Program halted", slog.Any("reason", err), slog.Uint64("cycles", uint64(c.cycles)))
				return true, nil
			}

			c.lastError = err
			c.runHooks(c.errorHooks)
			return false, err
		}
		c.cycles++
	}

	return false, nil
}

func (c *Console) logNextInstruction() {
	if c.cpu.IsWaitingForKey() {
		return
	}

	ins, err := c.cpu.Peek()
	if err != nil {
		return
	}
	c.config.Logger.Debug("exec",
		slog.String("pc", formatAddress(c.cpu.Pc())),
		slog.String("instruction", ins.String()),
	)
}

// RunFrame runs one frame worth of instructions, ticks the timers once and
// renders the screen if it changed. A paused console does nothing.
func (c *Console) RunFrame() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.runHooks(c.beforeFrameHooks)

	if c.isPaused {
		return false, nil
	}

	halted, err := c.runCycles(c.cyclesPerFrame())
	if err != nil || halted {
		c.stopBuzzer()
		return halted, err
	}

	c.cpu.TickTimers()

	if c.cpu.SoundTimer() > 0 {
		if !c.isBuzzing {
			c.isBuzzing = true
			c.config.Buzzer.Play()
		}
	} else {
		c.stopBuzzer()
	}

	if screen := c.cpu.Screen(); screen != c.lastScreen {
		c.lastScreen = screen
		if err := c.config.Display.Render(screen); err != nil {
			c.lastError = err
			c.runHooks(c.errorHooks)
			return false, err
		}
	}

	c.frames++
	c.runHooks(c.afterFrameHooks)

	return false, nil
}

func (c *Console) cyclesPerFrame() int {
	return max(int(c.speedInHz)/FrameRate, 1)
}

func (c *Console) stopBuzzer() {
	if c.isBuzzing {
		c.isBuzzing = false
		c.config.Buzzer.Stop()
	}
}

// Run runs frames at FrameRate until ctx is done, the program halts or the cpu faults
func (c *Console) Run(ctx context.Context) error {
	if !c.HasProgram() {
		return ErrNoProgram
	}

	ticker := time.NewTicker(time.Second / FrameRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			halted, err := c.RunFrame()
			if err != nil {
				return err
			}
			if halted {
				return nil
			}
		}
	}
}
