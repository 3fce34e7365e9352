package chip8

// The keypad is laid out on the left of a QWERTY keyboard:
//
//	1 2 3 C        1 2 3 4
//	4 5 6 D   <-   Q W E R
//	7 8 9 E        A S D F
//	A 0 B F        Z X C V
var codeKeys = map[string]byte{
	"Digit1": 0x1,
	"Digit2": 0x2,
	"Digit3": 0x3,
	"Digit4": 0xC,
	"KeyQ":   0x4,
	"KeyW":   0x5,
	"KeyE":   0x6,
	"KeyR":   0xD,
	"KeyA":   0x7,
	"KeyS":   0x8,
	"KeyD":   0x9,
	"KeyF":   0xE,
	"KeyZ":   0xA,
	"KeyX":   0x0,
	"KeyC":   0xB,
	"KeyV":   0xF,
}

var runeKeys = map[rune]byte{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// KeyByCode maps a browser KeyboardEvent.code to a keypad key
func KeyByCode(code string) (byte, bool) {
	k, ok := codeKeys[code]
	return k, ok
}

// KeyByRune maps a typed character to a keypad key, ignoring case
func KeyByRune(r rune) (byte, bool) {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	k, ok := runeKeys[r]
	return k, ok
}
