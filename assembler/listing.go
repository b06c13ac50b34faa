package assembler

import (
	"fmt"
	"io"
	"strings"

	"github.com/Urethramancer/sicxe/object"
)

const defaultName = "<default>"

func orDefault(s string) string {
	if s == "" {
		return defaultName
	}
	return s
}

// lister prints a human-readable listing of a resolved program.
type lister struct {
	w   io.Writer
	err error
}

func (l *lister) printf(format string, args ...any) {
	if l.err != nil {
		return
	}
	_, l.err = fmt.Fprintf(l.w, format, args...)
}

// WriteListing prints the program, section and block structure with the
// symbol tables and one line per command.
func WriteListing(w io.Writer, p *Program) error {
	l := &lister{w: w}
	if err := Walk(l, p); err != nil {
		return err
	}
	return l.err
}

func (l *lister) Enter(n Node) error {
	switch x := n.(type) {
	case *Program:
		l.printf("===== Program %s =====\n", orDefault(x.Name))
		l.printf("start %s  load %s\n\n", object.Hex(x.StartAddress.Or(0), 6), object.Hex(x.LoadAddress.Or(0), 6))
	case *Section:
		l.printf("***** Section %s *****\n", orDefault(x.Name))
		l.printf("start %s  length %s\n", object.Hex(x.Start, 6), object.Hex(x.Length, 6))
		l.printf("    %-8s    %s\n", "name", "address")
		for _, s := range x.Internal.Symbols() {
			mark := ""
			if _, ok := x.Exported.Lookup(s.Name); ok {
				mark = " exported"
			}
			if s.Absolute {
				mark += " absolute"
			}
			l.printf("    %-8s    %s%s\n", s.Name, object.Hex(s.Address, 6), mark)
		}
		for _, s := range x.Imported.Symbols() {
			l.printf("    %-8s    imported\n", s.Name)
		}
	case *Block:
		l.printf("----- Block %s -----\n", orDefault(x.Name))
	case *Instruction:
		operand := x.Operand.String()
		if x.Flags.IsIndexed() {
			operand += ", X"
		}
		l.command(x.Location.Or(0), x.Label, x.Mnemonic(), operand, x.Comment)
	case *Directive:
		l.command(x.Location.Or(0), x.Label, x.Mnemonic(), x.Operand.String(), x.Comment)
	}
	return nil
}

func (l *lister) Leave(n Node) error {
	switch x := n.(type) {
	case *Block:
		l.printf("----/ Block %s /----\n", orDefault(x.Name))
	case *Section:
		l.printf("****/ Section %s /****\n\n", orDefault(x.Name))
	}
	return nil
}

func (l *lister) command(loc int, label, mnemonic, operand, comment string) {
	line := fmt.Sprintf("%s    %-8s%-8s %s %s", object.Hex(loc, 6), label, mnemonic, operand, comment)
	l.printf("%s\n", strings.TrimRight(line, " "))
}
