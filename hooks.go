package chip8

import "fmt"

// Hook runs with the console lock held, it must not call back into the console.
// The cpu is nil until a program is loaded.
type Hook func(cpu *Cpu)

// AddBeforeFrameHook adds a hook that will run before every frame
func (c *Console) AddBeforeFrameHook(h Hook) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.beforeFrameHooks = append(c.beforeFrameHooks, h)

	return len(c.beforeFrameHooks)
}

// AddAfterFrameHook adds a hook that will run after every frame
func (c *Console) AddAfterFrameHook(h Hook) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterFrameHooks = append(c.afterFrameHooks, h)

	return len(c.afterFrameHooks)
}

// AddErrorHook adds a hook that will run after the cpu faults
func (c *Console) AddErrorHook(h Hook) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errorHooks = append(c.errorHooks, h)

	return len(c.errorHooks)
}

func (c *Console) runHooks(hooks []Hook) {
	for _, h := range hooks {
		h(c.cpu)
	}
}

func formatAddress(addr uint16) string {
	return fmt.Sprintf("0x%04X", addr)
}
