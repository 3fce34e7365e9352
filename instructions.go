package chip8

func (cpu *Cpu) execute(ins Instruction) error {
	x, y := ins.X, ins.Y

	switch ins.Op {
	case OpSys:
		// SYS addr :: Jump to a machine code routine at nnn.
		// Only meaningful on the COSMAC VIP, ignored here.

	case OpCls:
		// CLS :: Clear the display.
		cpu.screen.clear()

	case OpRet:
		// RET :: Return from a subroutine.
		if len(cpu.stack) == 0 {
			return ErrEmptyStack
		}
		cpu.pc = cpu.stack[len(cpu.stack)-1]
		cpu.stack = cpu.stack[:len(cpu.stack)-1]

	case OpJp:
		// JP addr :: Jump to location nnn.
		cpu.pc = ins.NNN

	case OpCall:
		// CALL addr :: Call subroutine at nnn.
		if len(cpu.stack) >= cpu.stackSize {
			return ErrStackOverflow
		}
		cpu.stack = append(cpu.stack, cpu.pc)
		cpu.pc = ins.NNN

	case OpSeImm:
		// SE Vx, byte :: Skip next instruction if Vx = kk.
		if cpu.v[x] == ins.KK {
			cpu.pc += 2
		}

	case OpSneImm:
		// SNE Vx, byte :: Skip next instruction if Vx != kk.
		if cpu.v[x] != ins.KK {
			cpu.pc += 2
		}

	case OpSeReg:
		// SE Vx, Vy :: Skip next instruction if Vx = Vy.
		if cpu.v[x] == cpu.v[y] {
			cpu.pc += 2
		}

	case OpLdImm:
		// LD Vx, byte :: Set Vx = kk.
		cpu.v[x] = ins.KK

	case OpAddImm:
		// ADD Vx, byte :: Set Vx = Vx + kk.
		cpu.v[x] += ins.KK

	case OpLdReg:
		// LD Vx, Vy :: Set Vx = Vy.
		cpu.v[x] = cpu.v[y]

	case OpOr:
		// OR Vx, Vy :: Set Vx = Vx OR Vy.
		cpu.v[x] |= cpu.v[y]

	case OpAnd:
		// AND Vx, Vy :: Set Vx = Vx AND Vy.
		cpu.v[x] &= cpu.v[y]

	case OpXor:
		// XOR Vx, Vy :: Set Vx = Vx XOR Vy.
		cpu.v[x] ^= cpu.v[y]

	// The flag is always written after the result so that VF holds the flag
	// when it is also the destination.

	case OpAddReg:
		// ADD Vx, Vy :: Set Vx = Vx + Vy, set VF = carry.
		r := uint16(cpu.v[x]) + uint16(cpu.v[y])
		cpu.v[x] = byte(r & 0x00FF)
		cpu.v[0xF] = byte(r >> 8)

	case OpSub:
		// SUB Vx, Vy :: Set Vx = Vx - Vy, set VF = NOT borrow.
		carry := cpu.v[x] >= cpu.v[y]
		cpu.v[x] = cpu.v[x] - cpu.v[y]
		cpu.v[0xF] = bool2byte(carry)

	case OpShr:
		// SHR Vx, Vy :: Set Vx = Vy SHR 1, set VF = the bit shifted out.
		vy := cpu.v[y]
		cpu.v[x] = vy >> 1
		cpu.v[0xF] = vy & 0b00000001

	case OpSubn:
		// SUBN Vx, Vy :: Set Vx = Vy - Vx, set VF = NOT borrow.
		carry := cpu.v[y] >= cpu.v[x]
		cpu.v[x] = cpu.v[y] - cpu.v[x]
		cpu.v[0xF] = bool2byte(carry)

	case OpShl:
		// SHL Vx, Vy :: Set Vx = Vy SHL 1, set VF = the bit shifted out.
		vy := cpu.v[y]
		cpu.v[x] = vy << 1
		cpu.v[0xF] = (vy & 0b10000000) >> 7

	case OpSneReg:
		// SNE Vx, Vy :: Skip next instruction if Vx != Vy.
		if cpu.v[x] != cpu.v[y] {
			cpu.pc += 2
		}

	case OpLdI:
		// LD I, addr :: Set I = nnn.
		cpu.i = ins.NNN

	case OpJpV0:
		// JP V0, addr :: Jump to location nnn + V0.
		cpu.pc = ins.NNN + uint16(cpu.v[0])

	case OpRnd:
		// RND Vx, byte :: Set Vx = random byte AND kk.
		cpu.v[x] = cpu.random.RandomByte() & ins.KK

	case OpDrw:
		// DRW Vx, Vy, nibble :: Display n-byte sprite starting at memory location I at (Vx, Vy), set VF = collision.
		return cpu.draw(x, y, ins.N)

	case OpSkp:
		// SKP Vx :: Skip next instruction if key with the value of Vx is pressed.
		key := cpu.v[x]
		if key >= NumKeys {
			return ErrInvalidKey{Key: key}
		}
		if cpu.keys[key] {
			cpu.pc += 2
		}

	case OpSknp:
		// SKNP Vx :: Skip next instruction if key with the value of Vx is not pressed.
		key := cpu.v[x]
		if key >= NumKeys {
			return ErrInvalidKey{Key: key}
		}
		if !cpu.keys[key] {
			cpu.pc += 2
		}

	case OpLdVxDt:
		// LD Vx, DT :: Set Vx = delay timer value.
		cpu.v[x] = cpu.dt

	case OpLdVxK:
		// LD Vx, K :: Wait for a key press, store the value of the key in Vx.
		cpu.waitingForKey = true
		cpu.keyDstRegister = x

	case OpLdDtVx:
		// LD DT, Vx :: Set delay timer = Vx.
		cpu.dt = cpu.v[x]

	case OpLdStVx:
		// LD ST, Vx :: Set sound timer = Vx.
		cpu.st = cpu.v[x]

	case OpAddI:
		// ADD I, Vx :: Set I = I + Vx.
		cpu.i += uint16(cpu.v[x])

	case OpLdF:
		// LD F, Vx :: Set I = location of sprite for digit Vx.
		cpu.i = uint16(cpu.v[x]&0x0F) * FontGlyphSize

	case OpLdB:
		// LD B, Vx :: Store BCD representation of Vx in memory locations I, I+1, and I+2.
		if err := checkRange(int(cpu.i), 3); err != nil {
			return err
		}
		vx := cpu.v[x]
		cpu.memory[cpu.i+0] = vx / 100
		cpu.memory[cpu.i+1] = (vx / 10) % 10
		cpu.memory[cpu.i+2] = vx % 10

	case OpLdMemVx:
		// LD [I], Vx :: Store registers V0 through Vx in memory starting at location I.
		if err := checkRange(int(cpu.i), int(x)+1); err != nil {
			return err
		}
		for r := byte(0); r <= x; r++ {
			cpu.memory[cpu.i] = cpu.v[r]
			cpu.i++
		}

	case OpLdVxMem:
		// LD Vx, [I] :: Read registers V0 through Vx from memory starting at location I.
		if err := checkRange(int(cpu.i), int(x)+1); err != nil {
			return err
		}
		for r := byte(0); r <= x; r++ {
			cpu.v[r] = cpu.memory[cpu.i]
			cpu.i++
		}
	}

	return nil
}

// draw XORs an n-row sprite read from I onto the screen at (Vx, Vy).
// Coordinates wrap on each axis, VF reports whether a lit cell was erased.
func (cpu *Cpu) draw(x, y, n byte) error {
	if err := checkRange(int(cpu.i), int(n)); err != nil {
		return err
	}

	// VF is cleared before the coordinates are read, DRW VF, .. draws at column 0
	cpu.v[0xF] = 0
	if n == 0 {
		return nil
	}
	sx := int(cpu.v[x])
	sy := int(cpu.v[y])
	sprite := cpu.memory[cpu.i : int(cpu.i)+int(n)]

	for row, line := range sprite {
		for col := 0; col < 8; col++ {
			if line&(0x80>>col) == 0 {
				continue
			}
			if cpu.screen.flip(sx+col, sy+row) {
				cpu.v[0xF] = 1
			}
		}
	}

	return nil
}
