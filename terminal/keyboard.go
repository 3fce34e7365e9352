package terminal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/guslan/chip8"
	"github.com/pkg/term"
)

const (
	ctrlC = 0x03
	ctrlD = 0x04

	DefaultHoldDuration = 150 * time.Millisecond

	pollInterval = 100 * time.Millisecond
)

// KeySink receives key transitions, *chip8.Console is one
type KeySink interface {
	SetKey(key byte, pressed bool) error
}

// Keyboard reads the tty in raw mode.
// Terminals only report presses, so every key is released HoldDuration after
// its last press.
type Keyboard struct {
	HoldDuration time.Duration
	Device       string

	sink KeySink
	mu   sync.Mutex
	// holds counts presses per key, a release timer only fires for the latest one
	holds   [chip8.NumKeys]uint
	pressed [chip8.NumKeys]bool
}

func NewKeyboard(sink KeySink) *Keyboard {
	return &Keyboard{
		HoldDuration: DefaultHoldDuration,
		Device:       "/dev/tty",
		sink:         sink,
	}
}

// Listen feeds key presses to the sink until ctx is done or the user types
// Ctrl-C or Ctrl-D, in which case quit is called.
func (kb *Keyboard) Listen(ctx context.Context, quit func()) error {
	t, err := term.Open(kb.Device, term.RawMode)
	if err != nil {
		return err
	}
	defer t.Close()
	defer t.Restore()
	defer kb.releaseAll()

	if err := t.SetReadTimeout(pollInterval); err != nil {
		return err
	}

	buf := make([]byte, 16)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := t.Read(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}

		for _, b := range buf[:n] {
			if !kb.HandleByte(b) {
				quit()
				return nil
			}
		}
	}
}

// HandleByte presses the key typed as b. It returns false when b asks to quit.
func (kb *Keyboard) HandleByte(b byte) bool {
	if b == ctrlC || b == ctrlD {
		return false
	}

	key, ok := chip8.KeyByRune(rune(b))
	if !ok {
		return true
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()

	if err := kb.sink.SetKey(key, true); err != nil {
		slog.Warn("Error pressing key", slog.Int("key", int(key)), slog.Any("error", err))
		return true
	}

	kb.pressed[key] = true
	kb.holds[key]++
	hold := kb.holds[key]
	time.AfterFunc(kb.HoldDuration, func() {
		kb.release(key, hold)
	})

	return true
}

func (kb *Keyboard) release(key byte, hold uint) {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	if kb.holds[key] != hold || !kb.pressed[key] {
		return
	}

	kb.pressed[key] = false
	if err := kb.sink.SetKey(key, false); err != nil {
		slog.Warn("Error releasing key", slog.Int("key", int(key)), slog.Any("error", err))
	}
}

func (kb *Keyboard) releaseAll() {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	for key := range kb.pressed {
		kb.holds[key]++
		if kb.pressed[key] {
			kb.pressed[key] = false
			_ = kb.sink.SetKey(byte(key), false)
		}
	}
}
