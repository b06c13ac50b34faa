package assembler

import (
	"fmt"
	"io"
	"strings"
)

// WriteTree prints one line per node, indented two spaces per level.
func WriteTree(w io.Writer, p *Program) error {
	depth := 0
	var err error
	walkErr := Walk(Inspector{
		OnEnter: func(n Node) error {
			if err == nil {
				_, err = fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), Describe(n))
			}
			depth++
			return nil
		},
		OnLeave: func(Node) error {
			depth--
			return nil
		},
	}, p)
	if walkErr != nil {
		return walkErr
	}
	return err
}

func value(v Value) string {
	if n, ok := v.Get(); ok {
		return fmt.Sprintf("%d", n)
	}
	return "?"
}

// Describe renders a single node without its children.
func Describe(n Node) string {
	switch x := n.(type) {
	case *Program:
		return fmt.Sprintf("Program %s load=%s start=%s", orDefault(x.Name), value(x.LoadAddress), value(x.StartAddress))
	case *Section:
		return fmt.Sprintf("Section %s start=%d length=%d", orDefault(x.Name), x.Start, x.Length)
	case *Block:
		return fmt.Sprintf("Block %s commands=%d", orDefault(x.Name), len(x.Commands))
	case *Instruction:
		return fmt.Sprintf("Instruction %s %s [%s] loc=%s%s", x.Mnemonic(), x.Operand, x.Flags, value(x.Location), labelSuffix(x.Label))
	case *Directive:
		return fmt.Sprintf("Directive %s %s loc=%s%s", x.Mnemonic(), x.Operand, value(x.Location), labelSuffix(x.Label))
	case *NumericExpr:
		return fmt.Sprintf("Number %d", x.Number)
	case *SymbolExpr:
		kind := "Symbol"
		if x.Imported() {
			kind = "Imported"
		}
		return fmt.Sprintf("%s %s = %s", kind, x.Name, value(x.result))
	case *UnaryExpr:
		return fmt.Sprintf("Unary %s = %s", x.Op, value(x.result))
	case *BinaryExpr:
		return fmt.Sprintf("Binary %s = %s", x.Op, value(x.result))
	}
	return fmt.Sprintf("%T", n)
}

func labelSuffix(label string) string {
	if label == "" {
		return ""
	}
	return " label=" + label
}
