package cpu

// Register is a SIC/XE register number as encoded in format 2 instructions.
type Register byte

// Register numbers
const (
	// A is the accumulator.
	A Register = 0
	// X is the index register.
	X Register = 1
	// L is the linkage register.
	L Register = 2
	// B is the base register.
	B Register = 3
	// S is a general working register.
	S Register = 4
	// T is a general working register.
	T Register = 5
	// F is the floating-point accumulator.
	F Register = 6
	// PC is the program counter.
	PC Register = 8
	// SW is the status word.
	SW Register = 9
)

var registerNames = map[Register]string{
	A:  "A",
	X:  "X",
	L:  "L",
	B:  "B",
	S:  "S",
	T:  "T",
	F:  "F",
	PC: "PC",
	SW: "SW",
}

// String returns the assembler name of the register.
func (r Register) String() string {
	if name, ok := registerNames[r]; ok {
		return name
	}
	return "?"
}

// Valid reports whether r names a register.
func (r Register) Valid() bool {
	_, ok := registerNames[r]
	return ok
}
