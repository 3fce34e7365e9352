package chip8

import "math/rand/v2"

// RandomSource supplies the bytes used by RND
type RandomSource interface {
	RandomByte() byte
}

// RandomFunc adapts a plain function to a RandomSource
type RandomFunc func() byte

func (f RandomFunc) RandomByte() byte {
	return f()
}

// DefaultRandom draws from the runtime seeded generator of math/rand/v2
var DefaultRandom RandomSource = RandomFunc(func() byte {
	return byte(rand.Uint32())
})

// SequenceRandom replays a fixed list of bytes, starting over when it runs out.
// An empty sequence always yields 0.
type SequenceRandom struct {
	bytes []byte
	next  int
}

func NewSequenceRandom(bytes ...byte) *SequenceRandom {
	return &SequenceRandom{bytes: bytes}
}

func (r *SequenceRandom) RandomByte() byte {
	if len(r.bytes) == 0 {
		return 0
	}

	b := r.bytes[r.next]
	r.next = (r.next + 1) % len(r.bytes)

	return b
}
