package chip8

import "fmt"

// Op identifies the kind of an instruction
type Op byte

const (
	// OpSys is the legacy "call native routine" 0nnn. It is decoded but inert.
	OpSys Op = iota
	OpCls
	OpRet
	OpJp
	OpCall
	OpSeImm
	OpSneImm
	OpSeReg
	OpLdImm
	OpAddImm
	OpLdReg
	OpOr
	OpAnd
	OpXor
	OpAddReg
	OpSub
	OpShr
	OpSubn
	OpShl
	OpSneReg
	OpLdI
	OpJpV0
	OpRnd
	OpDrw
	OpSkp
	OpSknp
	OpLdVxDt
	OpLdVxK
	OpLdDtVx
	OpLdStVx
	OpAddI
	OpLdF
	OpLdB
	OpLdMemVx
	OpLdVxMem
)

var opNames = [...]string{
	OpSys:     "SYS",
	OpCls:     "CLS",
	OpRet:     "RET",
	OpJp:      "JP",
	OpCall:    "CALL",
	OpSeImm:   "SE",
	OpSneImm:  "SNE",
	OpSeReg:   "SE",
	OpLdImm:   "LD",
	OpAddImm:  "ADD",
	OpLdReg:   "LD",
	OpOr:      "OR",
	OpAnd:     "AND",
	OpXor:     "XOR",
	OpAddReg:  "ADD",
	OpSub:     "SUB",
	OpShr:     "SHR",
	OpSubn:    "SUBN",
	OpShl:     "SHL",
	OpSneReg:  "SNE",
	OpLdI:     "LD",
	OpJpV0:    "JP",
	OpRnd:     "RND",
	OpDrw:     "DRW",
	OpSkp:     "SKP",
	OpSknp:    "SKNP",
	OpLdVxDt:  "LD",
	OpLdVxK:   "LD",
	OpLdDtVx:  "LD",
	OpLdStVx:  "LD",
	OpAddI:    "ADD",
	OpLdF:     "LD",
	OpLdB:     "LD",
	OpLdMemVx: "LD",
	OpLdVxMem: "LD",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", byte(op))
}

// Instruction is a decoded instruction word.
// Only the operands that the Op uses are meaningful, the rest are still
// filled in from the word.
type Instruction struct {
	Op Op
	// Word is the raw instruction word
	Word uint16

	X, Y, N byte
	KK      byte
	NNN     uint16
}

func (ins Instruction) String() string {
	switch ins.Op {
	case OpSys, OpJp, OpCall:
		return fmt.Sprintf("%s 0x%03X", ins.Op, ins.NNN)
	case OpCls, OpRet:
		return ins.Op.String()
	case OpSeImm, OpSneImm, OpLdImm, OpAddImm:
		return fmt.Sprintf("%s V%X, 0x%02X", ins.Op, ins.X, ins.KK)
	case OpSeReg, OpLdReg, OpOr, OpAnd, OpXor, OpAddReg, OpSub, OpShr, OpSubn, OpShl, OpSneReg:
		return fmt.Sprintf("%s V%X, V%X", ins.Op, ins.X, ins.Y)
	case OpLdI:
		return fmt.Sprintf("LD I, 0x%03X", ins.NNN)
	case OpJpV0:
		return fmt.Sprintf("JP V0, 0x%03X", ins.NNN)
	case OpRnd:
		return fmt.Sprintf("RND V%X, 0x%02X", ins.X, ins.KK)
	case OpDrw:
		return fmt.Sprintf("DRW V%X, V%X, %d", ins.X, ins.Y, ins.N)
	case OpSkp, OpSknp:
		return fmt.Sprintf("%s V%X", ins.Op, ins.X)
	case OpLdVxDt:
		return fmt.Sprintf("LD V%X, DT", ins.X)
	case OpLdVxK:
		return fmt.Sprintf("LD V%X, K", ins.X)
	case OpLdDtVx:
		return fmt.Sprintf("LD DT, V%X", ins.X)
	case OpLdStVx:
		return fmt.Sprintf("LD ST, V%X", ins.X)
	case OpAddI:
		return fmt.Sprintf("ADD I, V%X", ins.X)
	case OpLdF:
		return fmt.Sprintf("LD F, V%X", ins.X)
	case OpLdB:
		return fmt.Sprintf("LD B, V%X", ins.X)
	case OpLdMemVx:
		return fmt.Sprintf("LD [I], V%X", ins.X)
	case OpLdVxMem:
		return fmt.Sprintf("LD V%X, [I]", ins.X)
	}

	return fmt.Sprintf("%s 0x%04X", ins.Op, ins.Word)
}

// Decode maps an instruction word to an Instruction.
// Every word either decodes to exactly one Op or fails with ErrInvalidOpcode.
func Decode(word uint16) (Instruction, error) {
	ins := Instruction{
		Word: word,
		X:    byte((word & 0x0F00) >> 8),
		Y:    byte((word & 0x00F0) >> 4),
		N:    byte(word & 0x000F),
		KK:   byte(word & 0x00FF),
		NNN:  word & 0x0FFF,
	}

	op, ok := decodeOp(word, ins.N, ins.KK)
	if !ok {
		return Instruction{}, ErrInvalidOpcode{OpCode: word}
	}
	ins.Op = op

	return ins, nil
}

func decodeOp(word uint16, n, kk byte) (Op, bool) {
	switch word & 0xF000 {
	case 0x0000:
		switch word {
		case 0x00E0:
			return OpCls, true
		case 0x00EE:
			return OpRet, true
		}
		return OpSys, true

	case 0x1000:
		return OpJp, true
	case 0x2000:
		return OpCall, true
	case 0x3000:
		return OpSeImm, true
	case 0x4000:
		return OpSneImm, true
	case 0x5000:
		if n == 0x0 {
			return OpSeReg, true
		}
	case 0x6000:
		return OpLdImm, true
	case 0x7000:
		return OpAddImm, true

	case 0x8000:
		switch n {
		case 0x0:
			return OpLdReg, true
		case 0x1:
			return OpOr, true
		case 0x2:
			return OpAnd, true
		case 0x3:
			return OpXor, true
		case 0x4:
			return OpAddReg, true
		case 0x5:
			return OpSub, true
		case 0x6:
			return OpShr, true
		case 0x7:
			return OpSubn, true
		case 0xE:
			return OpShl, true
		}

	case 0x9000:
		if n == 0x0 {
			return OpSneReg, true
		}
	case 0xA000:
		return OpLdI, true
	case 0xB000:
		return OpJpV0, true
	case 0xC000:
		return OpRnd, true
	case 0xD000:
		return OpDrw, true

	case 0xE000:
		switch kk {
		case 0x9E:
			return OpSkp, true
		case 0xA1:
			return OpSknp, true
		}

	case 0xF000:
		switch kk {
		case 0x07:
			return OpLdVxDt, true
		case 0x0A:
			return OpLdVxK, true
		case 0x15:
			return OpLdDtVx, true
		case 0x18:
			return OpLdStVx, true
		case 0x1E:
			return OpAddI, true
		case 0x29:
			return OpLdF, true
		case 0x33:
			return OpLdB, true
		case 0x55:
			return OpLdMemVx, true
		case 0x65:
			return OpLdVxMem, true
		}
	}

	return 0, false
}
