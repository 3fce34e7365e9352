package chip8

// Display abstraction for a display
type Display interface {
	// Boot initializes the component
	Boot() error
	// Render is called with the new screen every time it changes
	Render(Screen) error
}

// DummyDisplay is a display that remembers the last screen it was given
type DummyDisplay struct {
	Last    Screen
	Renders int
}

func NewDummyDisplay() *DummyDisplay {
	return &DummyDisplay{}
}

func (d *DummyDisplay) Boot() error {
	return nil
}

func (d *DummyDisplay) Render(screen Screen) error {
	d.Last = screen
	d.Renders++
	return nil
}
