package assembler

import (
	"github.com/Urethramancer/sicxe/cpu"
)

// resolver gives every remaining expression its value and fixes the
// execution start address.
type resolver struct {
	prog *Program
	sec  *Section
}

// ResolveSymbols runs the symbol resolution pass.
func ResolveSymbols(p *Program) error {
	return Walk(&resolver{}, p)
}

func (r *resolver) Enter(n Node) error {
	switch x := n.(type) {
	case *Program:
		r.prog = x
	case *Section:
		r.sec = x
	case *Directive:
		if x.Op.Kind == cpu.DirEnd {
			return r.end(x)
		}
	}
	return nil
}

func (r *resolver) Leave(n Node) error {
	x, ok := n.(Expr)
	if !ok || x.Result().IsSet() {
		return nil
	}
	ok, err := r.sec.resolve(x)
	if err != nil {
		return err
	}
	if !ok {
		if s, isSym := x.(*SymbolExpr); isSym {
			return semanticErr(x.Line(), s.Name, "undefined symbol")
		}
		return semanticErr(x.Line(), x.String(), "cannot resolve expression")
	}
	return nil
}

// end resolves the END operand once. A symbol not found in the current
// section is looked up in the first one, where programs usually start.
// Without an operand execution starts at the load address.
func (r *resolver) end(d *Directive) error {
	if r.prog.StartAddress.IsSet() {
		return semanticErr(d.Line, "END", "duplicate END")
	}
	op, ok := d.Operand.(*ExprOperand)
	if !ok {
		r.prog.StartAddress.Set(r.prog.LoadAddress.Or(0))
		return nil
	}

	ok, err := r.sec.resolve(op.X)
	if err == nil && !ok && len(r.prog.Sections) > 0 && r.prog.Sections[0] != r.sec {
		ok, err = r.prog.Sections[0].resolve(op.X)
	}
	if err != nil {
		return err
	}
	if !ok {
		return semanticErr(d.Line, op.String(), "cannot resolve END address")
	}
	if op.X.Imported() {
		return semanticErr(d.Line, op.String(), "END address cannot be imported")
	}
	v, _ := op.X.Result().Get()
	r.prog.StartAddress.Set(v)
	return nil
}
