package chip8_test

import (
	"errors"
	"testing"

	"github.com/guslan/chip8"
	"github.com/retroenv/retrogolib/assert"
)

func newCpu(t *testing.T, program []byte, configs ...chip8.CpuConfigCb) *chip8.Cpu {
	t.Helper()

	cpu, err := chip8.NewCpu(program, configs...)
	if err != nil {
		t.Fatalf(`NewCpu() returned an error %v`, err)
	}

	return cpu
}

func runNSteps(t *testing.T, cpu *chip8.Cpu, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		if err := cpu.Step(); err != nil {
			t.Fatalf(`Step() %d returned an error %v`, i, err)
		}
	}
}

func assertVxEq(t *testing.T, msg string, cpu *chip8.Cpu, x, kk byte) {
	t.Helper()

	if cpu.V(x) != kk {
		t.Fatalf(`%s: cpu.V[%x] = %x, expected %x`, msg, x, cpu.V(x), kk)
	}
}

func TestNewCpu(t *testing.T) {
	cpu := newCpu(t, []byte{0x1F, 0xFE})

	assert.Equal(t, uint16(0x200), cpu.Pc())
	assert.Equal(t, uint16(0), cpu.I())
	assert.Equal(t, byte(0), cpu.DelayTimer())
	assert.Equal(t, byte(0), cpu.SoundTimer())
	assert.Equal(t, 0, cpu.StackDepth())
	assert.False(t, cpu.IsWaitingForKey())
	assert.Equal(t, chip8.Screen{}, cpu.Screen())
}

func TestNewCpuImageTooLarge(t *testing.T) {
	_, err := chip8.NewCpu(make([]byte, chip8.MaxProgramSize))
	assert.NoError(t, err)

	cpu, err := chip8.NewCpu(make([]byte, chip8.MaxProgramSize+1))
	assert.True(t, errors.Is(err, chip8.ErrImageTooLarge))
	assert.True(t, cpu == nil)
}

// TestProgramLoading loads a program that jumps to the last address
func TestProgramLoading(t *testing.T) {
	cpu := newCpu(t, []byte{
		// move to the last address
		0x1F, 0xFE,
	})
	runNSteps(t, cpu, 1)

	assert.Equal(t, uint16(0xFFE), cpu.Pc())

	// 0xFFE holds 0x0000, a SYS that does nothing
	runNSteps(t, cpu, 1)
	assert.Equal(t, uint16(0x1000), cpu.Pc())

	err := cpu.Step()
	var addrErr chip8.ErrInvalidAddress
	assert.True(t, errors.As(err, &addrErr))
	assert.Equal(t, 0x1000, addrErr.Address)
	assert.Equal(t, uint16(0x1000), cpu.Pc())
}

func TestFetchAtLastByte(t *testing.T) {
	cpu := newCpu(t, []byte{0x1F, 0xFF})
	runNSteps(t, cpu, 1)

	err := cpu.Step()
	var addrErr chip8.ErrInvalidAddress
	assert.True(t, errors.As(err, &addrErr))
	assert.Equal(t, 0x1000, addrErr.Address)
	assert.Equal(t, uint16(0xFFF), cpu.Pc())
}

func TestConstantSetInstructions(t *testing.T) {
	cpu := newCpu(t, []byte{
		// set v0 to 128
		0x60, 128,
		// set v1 to 16
		0x61, 16,
		// set v2 to 1
		0x62, 1,
		// add to v2 4
		0x72, 4,
		// add to v0 200, wraps without touching VF
		0x70, 200,
	})
	runNSteps(t, cpu, 5)

	assertVxEq(t, "LD Vx kk", cpu, 0x0, 72)
	assertVxEq(t, "LD Vx kk", cpu, 0x1, 16)
	assertVxEq(t, "ADD Vx kk", cpu, 0x2, 5)
	assertVxEq(t, "ADD Vx kk", cpu, 0xF, 0)
}

func TestSimpleSkips(t *testing.T) {
	cpu := newCpu(t, []byte{
		// set v0 to 128
		0x60, 128,
		// set v1 to 16
		0x61, 16,
		// set v2 to 128
		0x62, 128,

		// if v0 == 128, do not set v3 to 1
		0x30, 128,
		0x63, 1,

		// if v0 == 16, do not set vA to 1
		0x30, 16,
		0x6A, 1,

		// if v0 != 128, do not set v4 to 1
		0x40, 128,
		0x64, 1,

		// if v0 != 16, do not set vB to 1
		0x40, 16,
		0x6B, 1,

		// if v0 == v1, do not set v5 to 1
		0x50, 0x10,
		0x65, 1,

		// if v0 == v2, do not set v6 to 1
		0x50, 0x20,
		0x66, 1,

		// if v0 != v1, do not set v7 to 1
		0x90, 0x10,
		0x67, 1,

		// if v0 != v2, do not set v8 to 1
		0x90, 0x20,
		0x68, 1,
	})
	runNSteps(t, cpu, 15)

	assertVxEq(t, "SE Vx kk true", cpu, 0x3, 0x0)
	assertVxEq(t, "SE Vx kk false", cpu, 0xA, 0x1)
	assertVxEq(t, "SNE Vx kk true", cpu, 0xB, 0x0)
	assertVxEq(t, "SNE Vx kk false", cpu, 0x4, 0x1)
	assertVxEq(t, "SE Vx Vy true", cpu, 0x6, 0x0)
	assertVxEq(t, "SE Vx Vy false", cpu, 0x5, 0x1)
	assertVxEq(t, "SNE Vx Vy true", cpu, 0x7, 0x0)
	assertVxEq(t, "SNE Vx Vy false", cpu, 0x8, 0x1)
	assert.Equal(t, uint16(0x200+2*19), cpu.Pc())
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		program  []byte
		x        byte
		want, vf byte
	}{
		{"ADD with carry", []byte{0x60, 0xFF, 0x61, 0x01, 0x80, 0x14}, 0x0, 0x00, 0x01},
		{"ADD without carry", []byte{0x60, 0x02, 0x61, 0x01, 0x80, 0x14}, 0x0, 0x03, 0x00},
		{"SUB with borrow", []byte{0x60, 0x00, 0x61, 0x01, 0x80, 0x15}, 0x0, 0xFF, 0x00},
		{"SUB without borrow", []byte{0x60, 0x03, 0x61, 0x01, 0x80, 0x15}, 0x0, 0x02, 0x01},
		{"SUB equal", []byte{0x60, 0x07, 0x61, 0x07, 0x80, 0x15}, 0x0, 0x00, 0x01},
		{"SUBN without borrow", []byte{0x60, 0x01, 0x61, 0x03, 0x80, 0x17}, 0x0, 0x02, 0x01},
		{"SUBN with borrow", []byte{0x60, 0x03, 0x61, 0x01, 0x80, 0x17}, 0x0, 0xFE, 0x00},
		{"SHR", []byte{0x60, 0x00, 0x61, 0b011, 0x80, 0x16}, 0x0, 0b001, 0x01},
		{"SHR even", []byte{0x60, 0x00, 0x61, 0b110, 0x80, 0x16}, 0x0, 0b011, 0x00},
		{"SHL", []byte{0x60, 0x00, 0x61, 0b1000_0001, 0x80, 0x1E}, 0x0, 0x02, 0x01},
		{"SHL no carry", []byte{0x60, 0x00, 0x61, 0b0100_0001, 0x80, 0x1E}, 0x0, 0x82, 0x00},
		{"OR", []byte{0x60, 0x0F, 0x61, 0b0101_0101, 0x80, 0x11}, 0x0, 0b0101_1111, 0x00},
		{"AND", []byte{0x60, 0x0F, 0x61, 0b0101_0101, 0x80, 0x12}, 0x0, 0b0000_0101, 0x00},
		{"XOR", []byte{0x60, 0x0F, 0x61, 0b0101_0101, 0x80, 0x13}, 0x0, 0b0101_1010, 0x00},
		{"LD Vx Vy", []byte{0x60, 0x00, 0x61, 0xAB, 0x80, 0x10}, 0x0, 0xAB, 0x00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu := newCpu(t, tt.program)
			runNSteps(t, cpu, 3)

			assert.Equal(t, tt.want, cpu.V(tt.x))
			assert.Equal(t, tt.vf, cpu.V(0xF))
			assert.Equal(t, uint16(0x206), cpu.Pc())
		})
	}
}

func TestFlagIsWrittenLast(t *testing.T) {
	tests := []struct {
		name    string
		program []byte
		vf      byte
	}{
		// 0xFF + 0x01 = 0x00, carry 1
		{"ADD VF, V1", []byte{0x6F, 0xFF, 0x61, 0x01, 0x8F, 0x14}, 0x01},
		// 0x01 - 0x02 = 0xFF, borrow
		{"SUB VF, V1", []byte{0x6F, 0x01, 0x61, 0x02, 0x8F, 0x15}, 0x00},
		// 0x03 - 0x01 = 0x02, no borrow
		{"SUBN VF, V1", []byte{0x6F, 0x01, 0x61, 0x03, 0x8F, 0x17}, 0x01},
		// 0b10 >> 1 = 1, shifted out 0
		{"SHR VF, VF", []byte{0x6F, 0b10, 0x61, 0x00, 0x8F, 0xF6}, 0x00},
		// 0b0100_0000 << 1 = 0x80, shifted out 0
		{"SHL VF, V1", []byte{0x6F, 0x00, 0x61, 0b0100_0000, 0x8F, 0x1E}, 0x00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu := newCpu(t, tt.program)
			runNSteps(t, cpu, 3)

			assert.Equal(t, tt.vf, cpu.V(0xF))
		})
	}
}

func TestClearScreen(t *testing.T) {
	cpu := newCpu(t, []byte{
		// I = font glyph 0, draw it at (0, 0)
		0xA0, 0x00,
		0xD0, 0x05,
		0x00, 0xE0,
	})
	runNSteps(t, cpu, 2)
	assert.True(t, cpu.Screen().Pixel(0, 0))

	runNSteps(t, cpu, 1)
	assert.Equal(t, chip8.Screen{}, cpu.Screen())
	assert.Equal(t, uint16(0x206), cpu.Pc())
}

func TestDraw(t *testing.T) {
	cpu := newCpu(t, []byte{
		0xA2, 0x0A,
		0x60, 0x01,
		0x61, 0x00,
		0xD0, 0x14,
		0xD0, 0x14,
		// sprite
		0xFF, 0x81, 0x81, 0xFF,
	})
	runNSteps(t, cpu, 4)

	assertVxEq(t, "no collision", cpu, 0xF, 0)
	screen := cpu.Screen()
	rows := []byte{0xFF, 0x81, 0x81, 0xFF}
	for y, row := range rows {
		for col := 0; col < 8; col++ {
			want := row&(0x80>>col) != 0
			if screen.Pixel(1+col, y) != want {
				t.Fatalf(`pixel (%d, %d) = %v, expected %v`, 1+col, y, !want, want)
			}
		}
		if screen.Pixel(0, y) || screen.Pixel(9, y) {
			t.Fatalf(`row %d is drawn outside of the sprite`, y)
		}
	}

	runNSteps(t, cpu, 1)
	assertVxEq(t, "self erasure", cpu, 0xF, 1)
	assert.Equal(t, chip8.Screen{}, cpu.Screen())
	assert.Equal(t, uint16(0x20A), cpu.Pc())
}

func TestDrawWraps(t *testing.T) {
	cpu := newCpu(t, []byte{
		0x60, 60,
		0x61, 31,
		0xA2, 0x08,
		0xD0, 0x12,
		// sprite
		0xFF, 0xFF,
	})
	runNSteps(t, cpu, 4)

	screen := cpu.Screen()
	for _, y := range []int{0, 31} {
		for x := 0; x < chip8.ScreenWidth; x++ {
			want := x < 4 || x >= 60
			if screen[y*chip8.ScreenWidth+x] != want {
				t.Fatalf(`pixel (%d, %d) = %v, expected %v`, x, y, !want, want)
			}
		}
	}
	for y := 1; y < 31; y++ {
		for x := 0; x < chip8.ScreenWidth; x++ {
			if screen.Pixel(x, y) {
				t.Fatalf(`pixel (%d, %d) is lit`, x, y)
			}
		}
	}
	assertVxEq(t, "no collision", cpu, 0xF, 0)
}

func TestDrawZeroRowsPastMemory(t *testing.T) {
	cpu := newCpu(t, []byte{
		0xAF, 0xFF,
		0x60, 0xFF,
		0xF0, 0x1E,
		0x6F, 0x01,
		0xD0, 0x00,
	})
	runNSteps(t, cpu, 5)

	assert.Equal(t, uint16(0x10FE), cpu.I())
	assertVxEq(t, "flag cleared", cpu, 0xF, 0)
	assert.Equal(t, chip8.Screen{}, cpu.Screen())
	assert.Equal(t, uint16(0x20A), cpu.Pc())
}

func TestDrawOutOfMemory(t *testing.T) {
	cpu := newCpu(t, []byte{
		0xAF, 0xFE,
		0xD0, 0x05,
	})
	runNSteps(t, cpu, 1)

	err := cpu.Step()
	var addrErr chip8.ErrInvalidAddress
	assert.True(t, errors.As(err, &addrErr))
	assert.Equal(t, 0x1002, addrErr.Address)
	assert.Equal(t, chip8.Screen{}, cpu.Screen())
}

func TestFont(t *testing.T) {
	cpu := newCpu(t, []byte{
		0x6A, 0x0B,
		0xFA, 0x29,
	})
	runNSteps(t, cpu, 2)
	assert.Equal(t, uint16(0xB*5), cpu.I())

	// only the low nibble selects the glyph
	cpu = newCpu(t, []byte{
		0x6A, 0xF3,
		0xFA, 0x29,
		// draw "3" at (0, 0)
		0x60, 0x00,
		0xD0, 0x05,
	})
	runNSteps(t, cpu, 4)
	assert.Equal(t, uint16(3*5), cpu.I())

	glyph := []byte{0xF0, 0x10, 0xF0, 0x10, 0xF0}
	screen := cpu.Screen()
	for y, row := range glyph {
		for x := 0; x < 8; x++ {
			want := row&(0x80>>x) != 0
			if screen.Pixel(x, y) != want {
				t.Fatalf(`pixel (%d, %d) = %v, expected %v`, x, y, !want, want)
			}
		}
	}
}

func TestCallAndReturn(t *testing.T) {
	cpu := newCpu(t, []byte{
		// 0x200: call 0x206
		0x22, 0x06,
		// 0x202: v1 = 1
		0x61, 0x01,
		// 0x204: halt
		0xFF, 0xFF,
		// 0x206: v0 = 1, return
		0x60, 0x01,
		0x00, 0xEE,
	})

	runNSteps(t, cpu, 1)
	assert.Equal(t, uint16(0x206), cpu.Pc())
	assert.Equal(t, 1, cpu.StackDepth())

	runNSteps(t, cpu, 2)
	assert.Equal(t, uint16(0x202), cpu.Pc())
	assert.Equal(t, 0, cpu.StackDepth())

	runNSteps(t, cpu, 1)
	assertVxEq(t, "after return", cpu, 0x0, 1)
	assertVxEq(t, "after return", cpu, 0x1, 1)

	err := cpu.Step()
	assert.True(t, chip8.IsHalt(err))
	assert.Equal(t, uint16(0x206), cpu.Pc())
}

func TestReturnOnEmptyStack(t *testing.T) {
	cpu := newCpu(t, []byte{0x00, 0xEE})

	err := cpu.Step()
	assert.True(t, errors.Is(err, chip8.ErrEmptyStack))
	assert.Equal(t, uint16(0x202), cpu.Pc())
	assert.Equal(t, 0, cpu.StackDepth())
}

func TestStackOverflow(t *testing.T) {
	// 0x200: call 0x200
	cpu := newCpu(t, []byte{0x22, 0x00})
	runNSteps(t, cpu, chip8.DefaultStackSize)
	assert.Equal(t, chip8.DefaultStackSize, cpu.StackDepth())

	err := cpu.Step()
	assert.True(t, errors.Is(err, chip8.ErrStackOverflow))
	assert.Equal(t, chip8.DefaultStackSize, cpu.StackDepth())

	cpu = newCpu(t, []byte{0x22, 0x00}, func(config *chip8.CpuConfig) {
		config.StackSize = 2
	})
	runNSteps(t, cpu, 2)
	assert.True(t, errors.Is(cpu.Step(), chip8.ErrStackOverflow))
}

func TestJumps(t *testing.T) {
	cpu := newCpu(t, []byte{0x1A, 0xBC})
	runNSteps(t, cpu, 1)
	assert.Equal(t, uint16(0xABC), cpu.Pc())

	cpu = newCpu(t, []byte{
		0x60, 0xAB,
		0xB2, 0x00,
	})
	runNSteps(t, cpu, 2)
	assert.Equal(t, uint16(0x2AB), cpu.Pc())
}

func TestIndexRegister(t *testing.T) {
	cpu := newCpu(t, []byte{
		0xAA, 0xBC,
		0x60, 0x10,
		0xF0, 0x1E,
	})
	runNSteps(t, cpu, 1)
	assert.Equal(t, uint16(0xABC), cpu.I())

	runNSteps(t, cpu, 2)
	assert.Equal(t, uint16(0xACC), cpu.I())
	assertVxEq(t, "ADD I does not touch VF", cpu, 0xF, 0)
}

func TestRandom(t *testing.T) {
	cpu := newCpu(t, []byte{
		0xC0, 0xF0,
		0xC1, 0x0F,
		0xC2, 0xFF,
	}, func(config *chip8.CpuConfig) {
		config.Random = chip8.NewSequenceRandom(0xAB, 0xCD)
	})
	runNSteps(t, cpu, 3)

	assertVxEq(t, "RND masked high", cpu, 0x0, 0xA0)
	assertVxEq(t, "RND masked low", cpu, 0x1, 0x0D)
	assertVxEq(t, "RND sequence repeats", cpu, 0x2, 0xAB)
}

func TestBCD(t *testing.T) {
	cpu := newCpu(t, []byte{
		0x63, 254,
		0xA3, 0x00,
		0xF3, 0x33,
		0xA3, 0x00,
		0xF2, 0x65,
	})
	runNSteps(t, cpu, 5)

	assertVxEq(t, "hundreds", cpu, 0x0, 2)
	assertVxEq(t, "tens", cpu, 0x1, 5)
	assertVxEq(t, "ones", cpu, 0x2, 4)
}

func TestRegisterBlockRoundTrip(t *testing.T) {
	cpu := newCpu(t, []byte{
		0x60, 0x0A,
		0x61, 0x0B,
		0x62, 0x0C,
		0xA3, 0x00,
		0xF2, 0x55,
	})
	runNSteps(t, cpu, 5)
	assert.Equal(t, uint16(0x303), cpu.I())

	cpu = newCpu(t, []byte{
		// store V0..V2 at 0x300
		0x60, 0x0A,
		0x61, 0x0B,
		0x62, 0x0C,
		0xA3, 0x00,
		0xF2, 0x55,
		// clobber them and load them back
		0x60, 0x00,
		0x61, 0x00,
		0x62, 0x00,
		0xA3, 0x00,
		0xF2, 0x65,
	})
	runNSteps(t, cpu, 10)

	assertVxEq(t, "V0", cpu, 0x0, 0x0A)
	assertVxEq(t, "V1", cpu, 0x1, 0x0B)
	assertVxEq(t, "V2", cpu, 0x2, 0x0C)
	assert.Equal(t, uint16(0x303), cpu.I())
}

func TestRegisterBlockOutOfMemory(t *testing.T) {
	cpu := newCpu(t, []byte{
		0xAF, 0xFE,
		0xF2, 0x55,
	})
	runNSteps(t, cpu, 1)

	err := cpu.Step()
	var addrErr chip8.ErrInvalidAddress
	assert.True(t, errors.As(err, &addrErr))
	assert.Equal(t, 0x1000, addrErr.Address)
	assert.Equal(t, uint16(0xFFE), cpu.I())
}

func TestTimers(t *testing.T) {
	cpu := newCpu(t, []byte{
		0x60, 0x01,
		0xF0, 0x15,
		0x61, 0x03,
		0xF1, 0x18,
		0xF2, 0x07,
	})
	runNSteps(t, cpu, 5)
	assert.Equal(t, byte(1), cpu.DelayTimer())
	assert.Equal(t, byte(3), cpu.SoundTimer())
	assertVxEq(t, "LD Vx DT", cpu, 0x2, 1)

	cpu.TickTimers()
	assert.Equal(t, byte(0), cpu.DelayTimer())
	assert.Equal(t, byte(2), cpu.SoundTimer())

	cpu.TickTimers()
	assert.Equal(t, byte(0), cpu.DelayTimer())
	assert.Equal(t, byte(1), cpu.SoundTimer())

	cpu.TickTimers()
	cpu.TickTimers()
	assert.Equal(t, byte(0), cpu.DelayTimer())
	assert.Equal(t, byte(0), cpu.SoundTimer())
}

func TestWaitForKey(t *testing.T) {
	cpu := newCpu(t, []byte{
		0xF3, 0x0A,
		0x60, 0x01,
	})
	runNSteps(t, cpu, 1)
	assert.True(t, cpu.IsWaitingForKey())
	assert.Equal(t, uint16(0x202), cpu.Pc())

	// stepping while waiting changes nothing
	runNSteps(t, cpu, 3)
	assert.Equal(t, uint16(0x202), cpu.Pc())
	assertVxEq(t, "still waiting", cpu, 0x0, 0)

	// releases do not resolve the wait
	assert.NoError(t, cpu.SetKey(0x5, false))
	assert.True(t, cpu.IsWaitingForKey())

	assert.NoError(t, cpu.SetKey(0xA, true))
	assert.False(t, cpu.IsWaitingForKey())
	assertVxEq(t, "pressed key", cpu, 0x3, 0xA)

	runNSteps(t, cpu, 1)
	assertVxEq(t, "resumed", cpu, 0x0, 1)
	assert.Equal(t, uint16(0x204), cpu.Pc())
}

func TestKeySkips(t *testing.T) {
	program := []byte{
		0x60, 0x0A,
		0xE0, 0x9E,
		0x61, 0x01,
		0xE0, 0xA1,
		0x62, 0x01,
	}

	cpu := newCpu(t, program)
	runNSteps(t, cpu, 5)
	assertVxEq(t, "SKP not pressed", cpu, 0x1, 1)
	assertVxEq(t, "SKNP not pressed", cpu, 0x2, 0)

	cpu = newCpu(t, program)
	assert.NoError(t, cpu.SetKey(0xA, true))
	assert.True(t, cpu.IsKeyPressed(0xA))
	runNSteps(t, cpu, 4)
	assertVxEq(t, "SKP pressed", cpu, 0x1, 0)
	assertVxEq(t, "SKNP pressed", cpu, 0x2, 1)
}

func TestInvalidKeys(t *testing.T) {
	cpu := newCpu(t, []byte{
		0x60, 0x10,
		0xE0, 0x9E,
	})

	err := cpu.SetKey(16, true)
	var keyErr chip8.ErrInvalidKey
	assert.True(t, errors.As(err, &keyErr))
	assert.Equal(t, byte(16), keyErr.Key)

	runNSteps(t, cpu, 1)
	err = cpu.Step()
	assert.True(t, errors.As(err, &keyErr))
	assert.Equal(t, byte(0x10), keyErr.Key)
}

func TestInvalidOpcodeAdvancesPc(t *testing.T) {
	cpu := newCpu(t, []byte{0x5A, 0xB1})

	err := cpu.Step()
	var opErr chip8.ErrInvalidOpcode
	assert.True(t, errors.As(err, &opErr))
	assert.Equal(t, uint16(0x5AB1), opErr.OpCode)
	assert.Equal(t, uint16(0x202), cpu.Pc())
}

func TestSysIsInert(t *testing.T) {
	cpu := newCpu(t, []byte{0x03, 0x00})
	runNSteps(t, cpu, 1)

	assert.Equal(t, uint16(0x202), cpu.Pc())
	assert.Equal(t, 0, cpu.StackDepth())
}
