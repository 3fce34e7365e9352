package terminal

import (
	"io"
	"os"

	"github.com/guslan/chip8"
)

const ESC = 0x1B

// Display draws the screen with ANSI escapes, two characters per cell
type Display struct {
	terminal        io.Writer
	OnChar, OffChar string
}

func NewDisplay() *Display {
	return NewDisplayWithOutput(os.Stdout)
}

func NewDisplayWithOutput(out io.Writer) *Display {
	return &Display{
		terminal: out,
		OnChar:   "##",
		OffChar:  "  ",
	}
}

// Boot implements chip8.Display.
func (disp *Display) Boot() error {
	_, err := disp.terminal.Write([]byte{
		// Move cursor do start
		ESC, '[', '1', 'H',
		// clear the terminal
		ESC, '[', '0', 'J',
	})

	return err
}

// Render implements chip8.Display.
// Rows end with \r\n since the terminal is in raw mode while the keyboard listens.
func (disp *Display) Render(screen chip8.Screen) error {
	buff := make([]byte, 0, chip8.ScreenSize*len(disp.OnChar)+chip8.ScreenHeight*3+4)
	buff = append(buff, ESC, '[', '1', 'H')
	for y := 0; y < chip8.ScreenHeight; y++ {
		for x := 0; x < chip8.ScreenWidth; x++ {
			if screen[y*chip8.ScreenWidth+x] {
				buff = append(buff, disp.OnChar...)
			} else {
				buff = append(buff, disp.OffChar...)
			}
		}
		buff = append(buff, '|', '\r', '\n')
	}

	_, err := disp.terminal.Write(buff)
	return err
}
