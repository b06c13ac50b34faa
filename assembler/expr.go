package assembler

import (
	"strconv"
)

// Value is a resolvable integer slot. It starts unresolved and can be set once.
type Value struct {
	v  int
	ok bool
}

// Get returns the value and whether it has been resolved.
func (v Value) Get() (int, bool) {
	return v.v, v.ok
}

// IsSet reports whether the value has been resolved.
func (v Value) IsSet() bool {
	return v.ok
}

// Or returns the value, or def while unresolved.
func (v Value) Or(def int) int {
	if v.ok {
		return v.v
	}
	return def
}

// Set resolves the value. Later calls are ignored; the result reports whether
// this call was the one that set it.
func (v *Value) Set(n int) bool {
	if v.ok {
		return false
	}
	v.v, v.ok = n, true
	return true
}

// Expr is an operand expression. Every kind carries its own resolved value.
type Expr interface {
	Node
	// Result is the resolved value slot.
	Result() *Value
	// Line is the source line the expression came from.
	Line() int
	// Imported reports whether a symbol from an EXTREF list takes part.
	Imported() bool
	// Absolute reports whether the value is independent of the load address.
	Absolute() bool
	String() string
}

type exprBase struct {
	result Value
	line   int
}

func (e *exprBase) Result() *Value { return &e.result }
func (e *exprBase) Line() int      { return e.line }
func (e *exprBase) node()          {}

// NumericExpr is a number literal.
type NumericExpr struct {
	exprBase
	Number int
}

func (e *NumericExpr) Imported() bool { return false }
func (e *NumericExpr) Absolute() bool { return true }
func (e *NumericExpr) String() string { return strconv.Itoa(e.Number) }

// CurrentLocation is the symbol name that stands for the location counter.
const CurrentLocation = "*"

// SymbolExpr refers to a label, an EQU constant, an import or "*".
type SymbolExpr struct {
	exprBase
	Name string

	imported bool
	absolute bool
}

func (e *SymbolExpr) Imported() bool { return e.imported }
func (e *SymbolExpr) Absolute() bool { return e.absolute && !e.imported }
func (e *SymbolExpr) String() string { return e.Name }

// UnaryOp is an addressing-mode prefix.
type UnaryOp int

const (
	// Immediate is '#'.
	Immediate UnaryOp = iota
	// Indirect is '@'.
	Indirect
	// LiteralPool is '='.
	LiteralPool
)

func (op UnaryOp) String() string {
	switch op {
	case Immediate:
		return "#"
	case Indirect:
		return "@"
	default:
		return "="
	}
}

// UnaryExpr applies an addressing mode to the whole operand.
type UnaryExpr struct {
	exprBase
	Op UnaryOp
	X  Expr
}

func (e *UnaryExpr) Imported() bool { return e.X.Imported() }
func (e *UnaryExpr) Absolute() bool { return e.X.Absolute() }
func (e *UnaryExpr) String() string { return e.Op.String() + e.X.String() }

// BinaryOp is an arithmetic operator.
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
)

func (op BinaryOp) String() string {
	return string("+-*/"[op])
}

// BinaryExpr is left op right.
type BinaryExpr struct {
	exprBase
	Op          BinaryOp
	Left, Right Expr
}

func (e *BinaryExpr) Imported() bool { return e.Left.Imported() || e.Right.Imported() }

func (e *BinaryExpr) Absolute() bool {
	if e.Imported() {
		return false
	}
	w, ok := relocation(e)
	return ok && w == 0
}

func (e *BinaryExpr) String() string {
	return "(" + e.Left.String() + " " + e.Op.String() + " " + e.Right.String() + ")"
}

// relocation counts how many times the load address contributes to e.
// Absolute terms count 0 and relative terms 1; subtraction cancels. A
// relative term under * or / cannot be relocated and reports false.
func relocation(e Expr) (int, bool) {
	switch x := e.(type) {
	case *NumericExpr:
		return 0, true
	case *SymbolExpr:
		if x.Absolute() {
			return 0, true
		}
		return 1, true
	case *UnaryExpr:
		return relocation(x.X)
	case *BinaryExpr:
		l, lok := relocation(x.Left)
		r, rok := relocation(x.Right)
		if !lok || !rok {
			return 0, false
		}
		switch x.Op {
		case Add:
			return l + r, true
		case Sub:
			return l - r, true
		default:
			if l != 0 || r != 0 {
				return 0, false
			}
			return 0, true
		}
	}
	return 0, false
}

// evaluate applies op. Division by zero is an error.
func evaluate(e *BinaryExpr, l, r int) (int, error) {
	switch e.Op {
	case Add:
		return l + r, nil
	case Sub:
		return l - r, nil
	case Mul:
		return l * r, nil
	default:
		if r == 0 {
			return 0, semanticErr(e.line, e.String(), "division by zero")
		}
		return l / r, nil
	}
}
