package assembler

import (
	"io"

	"github.com/Urethramancer/sicxe/cpu"
	"github.com/Urethramancer/sicxe/object"
)

// DefaultName heads a section when neither it nor the program is named.
const DefaultName = "NONAME"

// generator writes the object program for a fully resolved tree.
type generator struct {
	prog  *Program
	sec   *Section
	w     *object.Writer
	first bool

	// base is valid while hasBase is set; baseWeight is its relocation weight.
	base       int
	hasBase    bool
	baseWeight int
}

// WriteObject emits the object records of every section of p.
func WriteObject(w io.Writer, p *Program) error {
	return Walk(&generator{w: object.NewWriter(w)}, p)
}

func (g *generator) Enter(n Node) error {
	switch x := n.(type) {
	case *Program:
		g.prog = x
		g.first = true
	case *Section:
		return g.header(x)
	case *Directive:
		return g.directive(x)
	case *Instruction:
		b, err := g.encode(x)
		if err != nil {
			return err
		}
		g.w.Bytes(x.Location.Or(0), b)
	}
	return nil
}

func (g *generator) Leave(n Node) error {
	if _, ok := n.(*Section); !ok {
		return nil
	}
	start := 0
	if g.first {
		start = g.prog.StartAddress.Or(g.prog.LoadAddress.Or(0))
		g.first = false
	}
	return g.w.End(start)
}

func (g *generator) header(s *Section) error {
	g.sec = s
	g.hasBase = false

	name := s.Name
	if name == "" {
		name = g.prog.Name
	}
	if name == "" {
		name = DefaultName
	}
	if len(name) > object.NameWidth {
		return semanticErr(s.Line, name, "section name longer than %d characters", object.NameWidth)
	}

	var defs []object.Definition
	for _, sym := range s.Exported.Symbols() {
		if len(sym.Name) > object.NameWidth {
			return semanticErr(s.Line, sym.Name, "exported name longer than %d characters", object.NameWidth)
		}
		defs = append(defs, object.Definition{Name: sym.Name, Address: sym.Address})
	}
	var refs []string
	for _, sym := range s.Imported.Symbols() {
		if len(sym.Name) > object.NameWidth {
			return semanticErr(s.Line, sym.Name, "imported name longer than %d characters", object.NameWidth)
		}
		refs = append(refs, sym.Name)
	}

	g.w.Header(name, s.Start, s.Length)
	g.w.Define(defs)
	g.w.Refer(refs)
	return g.w.Err()
}

func (g *generator) directive(d *Directive) error {
	loc := d.Location.Or(0)
	switch d.Op.Kind {
	case cpu.DirByte, cpu.DirWord:
		if b, ok := d.Operand.(*BytesOperand); ok {
			g.w.Bytes(loc, b.Bytes)
			return nil
		}
		b, err := g.data(d)
		if err != nil {
			return err
		}
		g.w.Bytes(loc, b)
	case cpu.DirBase:
		x := d.Operand.(*ExprOperand).X
		v, ok := x.Result().Get()
		if !ok {
			return semanticErr(d.Line, x.String(), "unresolved BASE value")
		}
		if x.Imported() {
			return semanticErr(d.Line, x.String(), "BASE cannot use an imported symbol")
		}
		w, ok := relocation(x)
		if !ok || (w != 0 && w != 1) {
			return semanticErr(d.Line, x.String(), "BASE expression cannot be relocated")
		}
		g.base, g.hasBase, g.baseWeight = v, true, w
	case cpu.DirNoBase:
		g.hasBase = false
	}
	return nil
}

// data encodes a BYTE or WORD expression.
func (g *generator) data(d *Directive) ([]byte, error) {
	x := d.Operand.(*ExprOperand).X
	loc := d.Location.Or(0)
	if _, ok := x.(*UnaryExpr); ok {
		return nil, semanticErr(d.Line, x.String(), "addressing prefix in %s", d.Op.Name)
	}
	v, ok := x.Result().Get()
	if !ok {
		return nil, semanticErr(d.Line, x.String(), "unresolved value")
	}

	if d.Op.Kind == cpu.DirByte {
		if !x.Absolute() {
			return nil, semanticErr(d.Line, x.String(), "BYTE needs an absolute value")
		}
		if v < -128 || v > 0xFF {
			return nil, semanticErr(d.Line, x.String(), "value %d does not fit in a byte", v)
		}
		return []byte{byte(v)}, nil
	}

	if v < -(1<<23) || v > cpu.WordMask {
		return nil, semanticErr(d.Line, x.String(), "value %d does not fit in a word", v)
	}
	switch {
	case x.Imported():
		sym, ok := x.(*SymbolExpr)
		if !ok {
			return nil, semanticErr(d.Line, x.String(), "imported symbol in a complex expression")
		}
		g.w.Relocate(object.Modification{Address: loc, Length: 6, Symbol: sym.Name})
	case !x.Absolute():
		if w, ok := relocation(x); !ok || w != 1 {
			return nil, semanticErr(d.Line, x.String(), "expression cannot be relocated")
		}
		g.w.Relocate(object.Modification{Address: loc, Length: 6})
	}
	return cpu.WordToBytes(v), nil
}

func (g *generator) encode(ins *Instruction) ([]byte, error) {
	op := ins.Op.Opcode
	construct := ins.Mnemonic() + " " + ins.Operand.String()
	nibble := func(n int) (byte, error) {
		if n < 0 || n > 15 {
			return 0, semanticErr(ins.Line, construct, "%d does not fit in four bits", n)
		}
		return byte(n), nil
	}

	switch ins.Op.Format {
	case cpu.Format1:
		return []byte{op}, nil
	case cpu.Format3:
		return []byte{op | 3, 0, 0}, nil
	case cpu.Format2Num:
		n, err := nibble(ins.Operand.(*NumOperand).N)
		return []byte{op, n << 4}, err
	case cpu.Format2Reg:
		return []byte{op, byte(ins.Operand.(*RegOperand).R) << 4}, nil
	case cpu.Format2RegNum:
		o := ins.Operand.(*RegNumOperand)
		n, err := nibble(o.N)
		return []byte{op, byte(o.R)<<4 | n}, err
	case cpu.Format2RegReg:
		o := ins.Operand.(*RegRegOperand)
		return []byte{op, byte(o.R1)<<4 | byte(o.R2)}, nil
	}
	return g.memory(ins, construct)
}

// memory encodes a format 3 or 4 instruction. For format 3 the target is
// tried, in order, as an absolute value, pc-relative, base-relative, a
// relocated 12-bit address and finally a SIC 15-bit address.
func (g *generator) memory(ins *Instruction, construct string) ([]byte, error) {
	x := ins.Operand.(*ExprOperand).X
	target, ok := x.Result().Get()
	if !ok {
		return nil, semanticErr(ins.Line, construct, "unresolved operand")
	}
	if x.Imported() && !ins.Flags.IsExtended() {
		return nil, semanticErr(ins.Line, construct, "imported symbols need the extended format")
	}
	op := ins.Op.Opcode

	if ins.Flags.IsExtended() {
		if err := g.relocate20(ins, x, construct); err != nil {
			return nil, err
		}
		low := 0
		if ins.Flags.IsImmediate() {
			low = -(1 << 19)
		}
		if target < low || target >= cpu.MaxAddress {
			return nil, semanticErr(ins.Line, construct, "%d does not fit in 20 bits", target)
		}
		return []byte{
			op | ins.Flags.NI(),
			ins.Flags.XBPE()<<4 | byte(target>>16)&0x0F,
			byte(target >> 8),
			byte(target),
		}, nil
	}

	disp, err := g.displacement(ins, x, target, construct)
	if err != nil {
		return nil, err
	}
	if !ins.Flags.IsValid() {
		return nil, semanticErr(ins.Line, construct, "invalid addressing flags %s", ins.Flags)
	}
	if ins.Flags.IsSIC() {
		var xbit byte
		if ins.Flags.IsIndexed() {
			xbit = 0x80
		}
		return []byte{op, xbit | byte(disp>>8)&0x7F, byte(disp)}, nil
	}
	return []byte{
		op | ins.Flags.NI(),
		ins.Flags.XBPE()<<4 | byte(disp>>8)&0x0F,
		byte(disp),
	}, nil
}

// relocate20 records the M record a format 4 address needs, if any.
func (g *generator) relocate20(ins *Instruction, x Expr, construct string) error {
	at := ins.Location.Or(0) + 1
	if x.Imported() {
		inner := x
		if u, ok := x.(*UnaryExpr); ok {
			inner = u.X
		}
		sym, ok := inner.(*SymbolExpr)
		if !ok {
			return semanticErr(ins.Line, construct, "imported symbol in a complex expression")
		}
		g.w.Relocate(object.Modification{Address: at, Length: 5, Symbol: sym.Name})
		return nil
	}
	if x.Absolute() {
		return nil
	}
	if w, ok := relocation(x); !ok || w != 1 {
		return semanticErr(ins.Line, construct, "expression cannot be relocated")
	}
	g.w.Relocate(object.Modification{Address: at, Length: 5})
	return nil
}

// displacement picks the format 3 addressing mode and sets the b, p and ni
// flags to match.
func (g *generator) displacement(ins *Instruction, x Expr, target int, construct string) (int, error) {
	f := &ins.Flags
	loc := ins.Location.Or(0)
	sic := func() (int, bool) {
		if f.IsSimple() && target >= 0 && target < 1<<15 {
			f.SetNI(0)
			return target, true
		}
		return 0, false
	}

	if x.Absolute() {
		if f.IsImmediate() && target >= -2048 && target < 4096 {
			return target & 0xFFF, nil
		}
		if target >= 0 && target < 4096 {
			return target, nil
		}
		if d, ok := sic(); ok {
			return d, nil
		}
		return 0, semanticErr(ins.Line, construct, "value %d out of range, use the extended format", target)
	}

	if w, ok := relocation(x); !ok || w != 1 {
		return 0, semanticErr(ins.Line, construct, "expression cannot be relocated")
	}

	pc := loc + 3
	if d := target - pc; d >= -2048 && d < 2048 {
		f.Set(cpu.FlagPCRelative, true)
		return d & 0xFFF, nil
	}
	if g.hasBase && g.baseWeight == 1 {
		if d := target - g.base; d >= 0 && d < 4096 {
			f.Set(cpu.FlagBaseRelative, true)
			return d, nil
		}
	}
	if target >= 0 && target < 4096 {
		g.w.Relocate(object.Modification{Address: loc + 1, Length: 3})
		return target, nil
	}
	if d, ok := sic(); ok {
		return d, nil
	}
	return 0, semanticErr(ins.Line, construct, "cannot reach address %06X", target)
}
