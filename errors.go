package chip8

import (
	"errors"
	"fmt"
)

var ErrImageTooLarge = errors.New("the program does not fit into memory")

var ErrEmptyStack = errors.New("stack underflow: return with an empty stack")
var ErrStackOverflow = errors.New("stack overflow: call with a full stack")

// ErrInvalidAddress is returned when a fetch or an indexed memory access
// falls outside of the 4096 bytes of memory
type ErrInvalidAddress struct {
	Address int
}

func (err ErrInvalidAddress) Error() string {
	return fmt.Sprintf("invalid address: %#06x", err.Address)
}

// ErrInvalidOpcode is returned when a word does not match any instruction
type ErrInvalidOpcode struct {
	OpCode uint16
}

func (err ErrInvalidOpcode) Error() string {
	return fmt.Sprintf("invalid opcode: %#06x", err.OpCode)
}

type ErrInvalidKey struct {
	Key byte
}

func (err ErrInvalidKey) Error() string {
	return fmt.Sprintf("invalid key: %#04x", err.Key)
}

// IsHalt reports whether err is a decode fault, which hosts treat as the
// end of the program rather than a failure
func IsHalt(err error) bool {
	var opErr ErrInvalidOpcode
	return errors.As(err, &opErr)
}
