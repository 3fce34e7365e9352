package terminal

import (
	"io"
	"log/slog"
	"os"
)

// Buzzer rings the terminal bell when the sound timer starts
type Buzzer struct {
	terminal io.Writer
}

func NewBuzzer() *Buzzer {
	return &Buzzer{terminal: os.Stdout}
}

func NewBuzzerWithOutput(out io.Writer) *Buzzer {
	return &Buzzer{terminal: out}
}

// Boot implements chip8.Buzzer.
func (b *Buzzer) Boot() error {
	return nil
}

// Play implements chip8.Buzzer.
func (b *Buzzer) Play() {
	if _, err := b.terminal.Write([]byte{'\a'}); err != nil {
		slog.Warn("Error ringing the bell", slog.Any("error", err))
	}
}

// Stop implements chip8.Buzzer.
func (b *Buzzer) Stop() {
}
