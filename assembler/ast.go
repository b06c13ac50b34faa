package assembler

import (
	"strconv"
	"strings"

	"github.com/Urethramancer/sicxe/cpu"
)

// Node is anything the walker visits.
type Node interface {
	node()
}

// Program is the root of a parsed source unit.
type Program struct {
	// Name comes from the label on START.
	Name         string
	LoadAddress  Value
	StartAddress Value
	Sections     []*Section
}

func (p *Program) node() {}

// Section looks up a section by name. The first, unnamed section has name "".
func (p *Program) Section(name string) *Section {
	for _, s := range p.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Section is an independently relocatable unit with its own location counter.
type Section struct {
	// Name is empty for the section before the first CSECT.
	Name     string
	Line     int
	Start    int
	Length   int
	Blocks   []*Block
	Internal SymbolTable
	Exported SymbolTable
	Imported SymbolTable

	pending map[string]Expr
	lines   map[string]int
}

func (s *Section) node() {}

// Block returns the named block, creating it at the end if it is new.
func (s *Section) Block(name string) *Block {
	for _, b := range s.Blocks {
		if b.Name == name {
			return b
		}
	}
	b := &Block{Name: name}
	s.Blocks = append(s.Blocks, b)
	return b
}

// Block is a list of commands. Blocks with the same name are merged.
type Block struct {
	Name     string
	Commands []Command
}

func (b *Block) node() {}

// Command is an instruction or a directive.
type Command interface {
	Node
	Base() *CommandBase
	// Size is the number of bytes the command occupies, false while unknown.
	Size() (int, bool)
	Mnemonic() string
}

// CommandBase holds the parts every command has.
type CommandBase struct {
	Label    string
	Comment  string
	Line     int
	Operand  Operand
	Location Value
}

// Base returns the shared command fields.
func (c *CommandBase) Base() *CommandBase { return c }

// Instruction is a machine instruction.
type Instruction struct {
	CommandBase
	Op    *cpu.InstructionMnemonic
	Flags cpu.Flags
}

func (i *Instruction) node() {}

func (i *Instruction) Mnemonic() string {
	if i.Flags.IsExtended() {
		return "+" + i.Op.Name
	}
	return i.Op.Name
}

func (i *Instruction) Size() (int, bool) {
	return i.Op.Format.Size(i.Flags.IsExtended()), true
}

// Directive is an assembler directive.
type Directive struct {
	CommandBase
	Op *cpu.DirectiveMnemonic
}

func (d *Directive) node() {}

func (d *Directive) Mnemonic() string { return d.Op.Name }

func (d *Directive) Size() (int, bool) {
	switch d.Op.Kind {
	case cpu.DirResW, cpu.DirResB:
		op, ok := d.Operand.(*ExprOperand)
		if !ok {
			return 0, false
		}
		n, ok := op.X.Result().Get()
		if !ok || n < 0 {
			return 0, false
		}
		if d.Op.Kind == cpu.DirResW {
			return 3 * n, true
		}
		return n, true
	case cpu.DirByte, cpu.DirWord:
		if b, ok := d.Operand.(*BytesOperand); ok {
			return len(b.Bytes), true
		}
		if d.Op.Kind == cpu.DirWord {
			return 3, true
		}
		return 1, true
	}
	return 0, true
}

// Operand is the part of a command after the mnemonic.
type Operand interface {
	String() string
}

// NoOperand is used by commands that take nothing.
type NoOperand struct{}

func (NoOperand) String() string { return "" }

// RegOperand is a single register.
type RegOperand struct{ R cpu.Register }

func (o *RegOperand) String() string { return o.R.String() }

// NumOperand is a single number.
type NumOperand struct{ N int }

func (o *NumOperand) String() string { return strconv.Itoa(o.N) }

// RegNumOperand is a register and a number.
type RegNumOperand struct {
	R cpu.Register
	N int
}

func (o *RegNumOperand) String() string { return o.R.String() + ", " + strconv.Itoa(o.N) }

// RegRegOperand is two registers.
type RegRegOperand struct{ R1, R2 cpu.Register }

func (o *RegRegOperand) String() string { return o.R1.String() + ", " + o.R2.String() }

// ExprOperand is an expression.
type ExprOperand struct{ X Expr }

func (o *ExprOperand) String() string { return o.X.String() }

// SymbolOperand is a single name.
type SymbolOperand struct{ Name string }

func (o *SymbolOperand) String() string { return o.Name }

// SymbolListOperand is a comma-separated list of names.
type SymbolListOperand struct{ Names []string }

func (o *SymbolListOperand) String() string { return strings.Join(o.Names, ", ") }

// BytesOperand is the decoded contents of a C'..' or X'..' literal.
type BytesOperand struct {
	Bytes []byte
	Text  string
}

func (o *BytesOperand) String() string { return o.Text }
