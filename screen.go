package chip8

const (
	ScreenWidth  = 64
	ScreenHeight = 32
	ScreenSize   = ScreenWidth * ScreenHeight
)

// Screen is the monochrome display, row-major, true for lit cells
type Screen [ScreenSize]bool

// Pixel reports whether the cell at column x, row y is lit.
// Coordinates wrap around the edges.
func (s Screen) Pixel(x, y int) bool {
	return s[screenIndex(x, y)]
}

func screenIndex(x, y int) int {
	x %= ScreenWidth
	if x < 0 {
		x += ScreenWidth
	}
	y %= ScreenHeight
	if y < 0 {
		y += ScreenHeight
	}

	return y*ScreenWidth + x
}

func (s *Screen) clear() {
	*s = Screen{}
}

// flip XORs the cell and reports whether a lit cell was turned off
func (s *Screen) flip(x, y int) bool {
	t := screenIndex(x, y)
	erased := s[t]
	s[t] = !s[t]

	return erased
}
