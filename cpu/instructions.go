package cpu

// Format describes the encoding and operand shape of an instruction.
type Format int

const (
	// Format1 is a single opcode byte.
	Format1 Format = iota
	// Format2Num takes one number in the high nibble (SVC).
	Format2Num
	// Format2Reg takes one register (CLEAR, TIXR).
	Format2Reg
	// Format2RegNum takes a register and a number (SHIFTL, SHIFTR).
	Format2RegNum
	// Format2RegReg takes two registers.
	Format2RegReg
	// Format3 has no operand but occupies three bytes (RSUB).
	Format3
	// Format34 addresses memory, three bytes or four when extended.
	Format34
)

// String returns the short name of the format.
func (f Format) String() string {
	switch f {
	case Format1:
		return "F1"
	case Format2Num:
		return "F2n"
	case Format2Reg:
		return "F2r"
	case Format2RegNum:
		return "F2rn"
	case Format2RegReg:
		return "F2rr"
	case Format3:
		return "F3"
	case Format34:
		return "F3/4"
	}
	return "F?"
}

// Size returns the encoded size of the format in bytes.
func (f Format) Size(extended bool) int {
	switch f {
	case Format1:
		return 1
	case Format2Num, Format2Reg, Format2RegNum, Format2RegReg:
		return 2
	case Format34:
		if extended {
			return 4
		}
		return 3
	default:
		return 3
	}
}

// Opcodes. The low two bits are always zero; format 3 and 4 use them for n and i.
const (
	// Load and store
	OPLDA  = 0x00
	OPLDX  = 0x04
	OPLDL  = 0x08
	OPSTA  = 0x0C
	OPSTX  = 0x10
	OPSTL  = 0x14
	OPLDCH = 0x50
	OPSTCH = 0x54
	OPLDB  = 0x68
	OPLDS  = 0x6C
	OPLDF  = 0x70
	OPLDT  = 0x74
	OPSTB  = 0x78
	OPSTS  = 0x7C
	OPSTF  = 0x80
	OPSTT  = 0x84

	// Arithmetic and logic
	OPADD  = 0x18
	OPSUB  = 0x1C
	OPMUL  = 0x20
	OPDIV  = 0x24
	OPCOMP = 0x28
	OPTIX  = 0x2C
	OPAND  = 0x40
	OPOR   = 0x44

	// Flow
	OPJEQ  = 0x30
	OPJGT  = 0x34
	OPJLT  = 0x38
	OPJ    = 0x3C
	OPJSUB = 0x48
	OPRSUB = 0x4C

	// Floating point
	OPADDF  = 0x58
	OPSUBF  = 0x5C
	OPMULF  = 0x60
	OPDIVF  = 0x64
	OPCOMPF = 0x88
	OPFLOAT = 0xC0
	OPFIX   = 0xC4
	OPNORM  = 0xC8

	// Register to register
	OPADDR   = 0x90
	OPSUBR   = 0x94
	OPMULR   = 0x98
	OPDIVR   = 0x9C
	OPCOMPR  = 0xA0
	OPSHIFTL = 0xA4
	OPSHIFTR = 0xA8
	OPRMO    = 0xAC
	OPSVC    = 0xB0
	OPCLEAR  = 0xB4
	OPTIXR   = 0xB8

	// System and I/O
	OPLPS  = 0xD0
	OPSTI  = 0xD4
	OPRD   = 0xD8
	OPWD   = 0xDC
	OPTD   = 0xE0
	OPSTSW = 0xE8
	OPSSK  = 0xEC
	OPSIO  = 0xF0
	OPHIO  = 0xF4
	OPTIO  = 0xF8
)

// InstructionMnemonic describes one machine instruction.
type InstructionMnemonic struct {
	Name   string
	Opcode byte
	Format Format
}

// DirectiveKind identifies an assembler directive.
type DirectiveKind int

const (
	DirStart DirectiveKind = iota
	DirEnd
	DirEqu
	DirOrg
	DirBase
	DirNoBase
	DirLtorg
	DirCsect
	DirUse
	DirExtDef
	DirExtRef
	DirResW
	DirResB
	DirByte
	DirWord
)

// OperandShape is what a directive expects after its mnemonic.
type OperandShape int

const (
	// ShapeNone takes no operand.
	ShapeNone OperandShape = iota
	// ShapeExpr takes an expression.
	ShapeExpr
	// ShapeSymbol takes one symbol name.
	ShapeSymbol
	// ShapeSymbolList takes comma-separated symbol names.
	ShapeSymbolList
	// ShapeReserve takes a count expression.
	ShapeReserve
	// ShapeInitialize takes an expression or a C'..'/X'..' literal.
	ShapeInitialize
)

// DirectiveMnemonic describes one assembler directive.
type DirectiveMnemonic struct {
	Name  string
	Kind  DirectiveKind
	Shape OperandShape
}

var instructions = []InstructionMnemonic{
	{"LDA", OPLDA, Format34},
	{"LDX", OPLDX, Format34},
	{"LDL", OPLDL, Format34},
	{"STA", OPSTA, Format34},
	{"STX", OPSTX, Format34},
	{"STL", OPSTL, Format34},
	{"ADD", OPADD, Format34},
	{"SUB", OPSUB, Format34},
	{"MUL", OPMUL, Format34},
	{"DIV", OPDIV, Format34},
	{"COMP", OPCOMP, Format34},
	{"TIX", OPTIX, Format34},
	{"JEQ", OPJEQ, Format34},
	{"JGT", OPJGT, Format34},
	{"JLT", OPJLT, Format34},
	{"J", OPJ, Format34},
	{"AND", OPAND, Format34},
	{"OR", OPOR, Format34},
	{"JSUB", OPJSUB, Format34},
	{"RSUB", OPRSUB, Format3},
	{"LDCH", OPLDCH, Format34},
	{"STCH", OPSTCH, Format34},
	{"ADDF", OPADDF, Format34},
	{"SUBF", OPSUBF, Format34},
	{"MULF", OPMULF, Format34},
	{"DIVF", OPDIVF, Format34},
	{"COMPF", OPCOMPF, Format34},
	{"LDB", OPLDB, Format34},
	{"LDS", OPLDS, Format34},
	{"LDF", OPLDF, Format34},
	{"LDT", OPLDT, Format34},
	{"STB", OPSTB, Format34},
	{"STS", OPSTS, Format34},
	{"STF", OPSTF, Format34},
	{"STT", OPSTT, Format34},
	{"LPS", OPLPS, Format34},
	{"STI", OPSTI, Format34},
	{"STSW", OPSTSW, Format34},
	{"RD", OPRD, Format34},
	{"WD", OPWD, Format34},
	{"TD", OPTD, Format34},
	{"SSK", OPSSK, Format34},
	{"FLOAT", OPFLOAT, Format1},
	{"FIX", OPFIX, Format1},
	{"NORM", OPNORM, Format1},
	{"SIO", OPSIO, Format1},
	{"HIO", OPHIO, Format1},
	{"TIO", OPTIO, Format1},
	{"ADDR", OPADDR, Format2RegReg},
	{"SUBR", OPSUBR, Format2RegReg},
	{"MULR", OPMULR, Format2RegReg},
	{"DIVR", OPDIVR, Format2RegReg},
	{"COMPR", OPCOMPR, Format2RegReg},
	{"RMO", OPRMO, Format2RegReg},
	{"SHIFTL", OPSHIFTL, Format2RegNum},
	{"SHIFTR", OPSHIFTR, Format2RegNum},
	{"SVC", OPSVC, Format2Num},
	{"CLEAR", OPCLEAR, Format2Reg},
	{"TIXR", OPTIXR, Format2Reg},
}

var directives = []DirectiveMnemonic{
	{"START", DirStart, ShapeExpr},
	{"END", DirEnd, ShapeExpr},
	{"EQU", DirEqu, ShapeExpr},
	{"ORG", DirOrg, ShapeExpr},
	{"BASE", DirBase, ShapeExpr},
	{"NOBASE", DirNoBase, ShapeNone},
	{"LTORG", DirLtorg, ShapeNone},
	{"CSECT", DirCsect, ShapeNone},
	{"USE", DirUse, ShapeSymbol},
	{"EXTDEF", DirExtDef, ShapeSymbolList},
	{"EXTREF", DirExtRef, ShapeSymbolList},
	{"RESW", DirResW, ShapeReserve},
	{"RESB", DirResB, ShapeReserve},
	{"BYTE", DirByte, ShapeInitialize},
	{"WORD", DirWord, ShapeInitialize},
}

// Table is the mnemonic lookup used by the lexer, parser and disassembler.
// Build it once with NewTable and pass it around; it is read-only afterwards.
type Table struct {
	instructions map[string]*InstructionMnemonic
	opcodes      map[byte]*InstructionMnemonic
	directives   map[string]*DirectiveMnemonic
	registers    map[string]Register
}

// NewTable builds the instruction, directive and register lookups.
func NewTable() *Table {
	t := &Table{
		instructions: make(map[string]*InstructionMnemonic, len(instructions)),
		opcodes:      make(map[byte]*InstructionMnemonic, len(instructions)),
		directives:   make(map[string]*DirectiveMnemonic, len(directives)),
		registers:    make(map[string]Register, len(registerNames)),
	}
	for i := range instructions {
		mn := &instructions[i]
		t.instructions[mn.Name] = mn
		t.opcodes[mn.Opcode] = mn
	}
	for i := range directives {
		t.directives[directives[i].Name] = &directives[i]
	}
	for r, name := range registerNames {
		t.registers[name] = r
	}
	return t
}

// Instruction looks up an instruction by its exact upper-case name.
func (t *Table) Instruction(name string) (*InstructionMnemonic, bool) {
	mn, ok := t.instructions[name]
	return mn, ok
}

// Directive looks up a directive by its exact upper-case name.
func (t *Table) Directive(name string) (*DirectiveMnemonic, bool) {
	d, ok := t.directives[name]
	return d, ok
}

// Register looks up a register by name.
func (t *Table) Register(name string) (Register, bool) {
	r, ok := t.registers[name]
	return r, ok
}

// Opcode finds the instruction for the top six bits of an opcode byte.
func (t *Table) Opcode(b byte) (*InstructionMnemonic, bool) {
	mn, ok := t.opcodes[b&0xFC]
	return mn, ok
}
