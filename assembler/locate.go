package assembler

import (
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/Urethramancer/sicxe/cpu"
)

// MaxLocation is the highest address an object record field can hold.
const MaxLocation = 0xFFFFFF

// locator assigns locations, defines symbols and settles EQU constants.
type locator struct {
	log  logrus.FieldLogger
	prog *Program
	sec  *Section

	counter  int
	high     int
	commands int
	// exports holds EXTDEF names not yet defined, with the line that asked.
	exports map[string]int
}

// Locate runs the location and symbol definition pass.
func Locate(p *Program, log logrus.FieldLogger) error {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return Walk(&locator{log: log}, p)
}

func (l *locator) Enter(n Node) error {
	switch x := n.(type) {
	case *Program:
		l.prog = x
	case *Section:
		l.sec = x
		l.counter, l.high = 0, 0
		l.exports = make(map[string]int)
		x.Start = 0
	case *Directive:
		l.here(x)
		err := l.directive(x)
		l.commands++
		return err
	case *Instruction:
		l.here(x)
		err := l.instruction(x)
		l.commands++
		return err
	}
	return nil
}

// here gives every * in the operand of c the current counter value.
func (l *locator) here(c Command) {
	op, ok := c.Base().Operand.(*ExprOperand)
	if !ok {
		return
	}
	_ = Walk(Inspector{OnEnter: func(n Node) error {
		if s, ok := n.(*SymbolExpr); ok && s.Name == CurrentLocation {
			s.result.Set(l.counter)
		}
		return nil
	}}, op.X)
}

// inRange reports an address that does not fit the 24-bit address fields of
// the object program.
func inRange(line int, construct string, v int) error {
	if v < 0 || v > MaxLocation {
		return semanticErr(line, construct, "address %d out of range 0..%X", v, MaxLocation)
	}
	return nil
}

func (l *locator) Leave(n Node) error {
	switch x := n.(type) {
	case *Section:
		return l.closeSection(x)
	case Command:
		b := x.Base()
		if d, ok := x.(*Directive); ok {
			switch d.Op.Kind {
			case cpu.DirEqu:
				return l.tryEqu(d)
			case cpu.DirResW, cpu.DirResB:
				if err := l.count(d); err != nil {
					return err
				}
			}
		}
		size, ok := x.Size()
		if !ok {
			return semanticErr(b.Line, x.Mnemonic()+" "+b.Operand.String(), "cannot determine size")
		}
		l.counter += size
		if err := inRange(b.Line, x.Mnemonic()+" "+b.Operand.String(), l.counter); err != nil {
			return err
		}
		if l.counter > l.high {
			l.high = l.counter
		}
	}
	return nil
}

func (l *locator) directive(d *Directive) error {
	construct := d.Op.Name + " " + d.Operand.String()
	switch d.Op.Kind {
	case cpu.DirStart:
		if l.commands != 0 || l.prog.LoadAddress.IsSet() {
			return semanticErr(d.Line, construct, "START must be the first command of the program")
		}
		v, err := l.absolute(d)
		if err != nil {
			return err
		}
		if err := inRange(d.Line, construct, v); err != nil {
			return err
		}
		l.prog.Name = d.Label
		l.prog.LoadAddress.Set(v)
		l.sec.Start = v
		l.counter, l.high = v, v
	case cpu.DirOrg:
		v, err := l.known(d)
		if err != nil {
			return err
		}
		if err := inRange(d.Line, construct, v); err != nil {
			return err
		}
		if d.Label != "" {
			l.log.WithFields(logrus.Fields{"line": d.Line, "label": d.Label}).Warn("label on ORG is ignored")
		}
		l.counter = v
		d.Location.Set(v)
		return nil
	case cpu.DirExtDef:
		for _, name := range d.Operand.(*SymbolListOperand).Names {
			if sym, ok := l.sec.Internal.Lookup(name); ok {
				l.sec.Exported.Define(sym)
				continue
			}
			if _, ok := l.exports[name]; !ok {
				l.exports[name] = d.Line
			}
		}
	case cpu.DirExtRef:
		for _, name := range d.Operand.(*SymbolListOperand).Names {
			if _, ok := l.sec.Internal.Lookup(name); ok {
				return semanticErr(d.Line, name, "imported symbol is already defined in this section")
			}
			l.sec.Imported.Define(Symbol{Name: name})
		}
	case cpu.DirEqu:
		d.Location.Set(l.counter)
		if _, ok := l.sec.pending[d.Label]; ok {
			return semanticErr(d.Line, d.Label, "duplicate symbol")
		}
		if _, ok := l.sec.Internal.Lookup(d.Label); ok {
			return semanticErr(d.Line, d.Label, "duplicate symbol")
		}
		return nil
	}
	return l.defineCommand(&d.CommandBase)
}

func (l *locator) instruction(ins *Instruction) error {
	ins.Flags.SetNI(3)
	if op, ok := ins.Operand.(*ExprOperand); ok {
		if u, ok := op.X.(*UnaryExpr); ok {
			if ins.Flags.IsIndexed() {
				return semanticErr(ins.Line, op.String(), "indexed addressing cannot be combined with %s", u.Op)
			}
			switch u.Op {
			case Immediate:
				ins.Flags.SetNI(1)
			case Indirect:
				ins.Flags.SetNI(2)
			default:
				return semanticErr(ins.Line, op.String(), "literal pools are not supported")
			}
		}
	}
	return l.defineCommand(&ins.CommandBase)
}

func (l *locator) defineCommand(b *CommandBase) error {
	b.Location.Set(l.counter)
	if b.Label == "" {
		return nil
	}
	return l.define(Symbol{Name: b.Label, Address: l.counter}, b.Line)
}

func (l *locator) define(sym Symbol, line int) error {
	if _, ok := l.sec.Imported.Lookup(sym.Name); ok {
		return semanticErr(line, sym.Name, "symbol is already imported")
	}
	if !l.sec.Internal.Define(sym) {
		return semanticErr(line, sym.Name, "duplicate symbol")
	}
	if _, ok := l.exports[sym.Name]; ok {
		l.sec.Exported.Define(sym)
		delete(l.exports, sym.Name)
	}
	return nil
}

// absolute resolves a directive operand that must be a constant.
func (l *locator) absolute(d *Directive) (int, error) {
	v, err := l.known(d)
	if err != nil {
		return 0, err
	}
	if !d.Operand.(*ExprOperand).X.Absolute() {
		return 0, semanticErr(d.Line, d.Operand.String(), "%s needs an absolute value", d.Op.Name)
	}
	return v, nil
}

// known resolves a directive operand against the symbols defined so far.
func (l *locator) known(d *Directive) (int, error) {
	x := d.Operand.(*ExprOperand).X
	ok, err := l.sec.resolve(x)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, semanticErr(d.Line, x.String(), "%s needs a value known at this point", d.Op.Name)
	}
	v, _ := x.Result().Get()
	return v, nil
}

// count resolves a RESW/RESB count, which must be a non-negative constant.
func (l *locator) count(d *Directive) error {
	x := d.Operand.(*ExprOperand).X
	if ok, err := l.sec.resolve(x); !ok || err != nil {
		return err
	}
	if v, _ := x.Result().Get(); v < 0 || !x.Absolute() {
		return semanticErr(d.Line, x.String(), "%s needs a non-negative absolute count", d.Op.Name)
	}
	return nil
}

// tryEqu defines an EQU symbol right away when its value is already known,
// otherwise parks it until the section closes.
func (l *locator) tryEqu(d *Directive) error {
	x := d.Operand.(*ExprOperand).X
	ok, err := l.sec.resolve(x)
	if err != nil {
		return err
	}
	if !ok {
		l.sec.pending[d.Label] = x
		l.sec.lines[d.Label] = d.Line
		return nil
	}
	v, _ := x.Result().Get()
	return l.define(Symbol{Name: d.Label, Address: v, Absolute: x.Absolute()}, d.Line)
}

// closeSection settles the parked EQU symbols by repeated passes until one
// makes no progress, then checks that every export was defined.
func (l *locator) closeSection(s *Section) error {
	s.Length = l.high - s.Start

	for progress := true; progress && len(s.pending) > 0; {
		progress = false
		for _, name := range sortedKeys(s.pending) {
			x := s.pending[name]
			ok, err := s.resolve(x)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			v, _ := x.Result().Get()
			if err := l.define(Symbol{Name: name, Address: v, Absolute: x.Absolute()}, s.lines[name]); err != nil {
				return err
			}
			delete(s.pending, name)
			progress = true
		}
	}

	var result *multierror.Error
	if len(s.pending) > 0 {
		names := sortedKeys(s.pending)
		result = multierror.Append(result, semanticErr(s.lines[names[0]], strings.Join(names, ", "),
			"cannot resolve EQU symbols (undefined or circular)"))
	}
	for _, name := range sortedKeys(l.exports) {
		result = multierror.Append(result, semanticErr(l.exports[name], name, "exported symbol is never defined"))
	}

	l.log.WithFields(logrus.Fields{
		"section": s.Name,
		"start":   s.Start,
		"length":  s.Length,
		"symbols": s.Internal.Len(),
	}).Debug("section located")
	return result.ErrorOrNil()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
