package assembler

// Visitor receives Enter before a node's children and Leave after them.
// Returning an error from either stops the walk.
type Visitor interface {
	Enter(n Node) error
	Leave(n Node) error
}

// Walk traverses the tree rooted at n in source order: program, sections,
// blocks, commands, then the command's operand expression depth-first.
func Walk(v Visitor, n Node) error {
	if err := v.Enter(n); err != nil {
		return err
	}

	switch x := n.(type) {
	case *Program:
		for _, s := range x.Sections {
			if err := Walk(v, s); err != nil {
				return err
			}
		}
	case *Section:
		for _, b := range x.Blocks {
			if err := Walk(v, b); err != nil {
				return err
			}
		}
	case *Block:
		for _, c := range x.Commands {
			if err := Walk(v, c); err != nil {
				return err
			}
		}
	case Command:
		if op, ok := x.Base().Operand.(*ExprOperand); ok {
			if err := Walk(v, op.X); err != nil {
				return err
			}
		}
	case *UnaryExpr:
		if err := Walk(v, x.X); err != nil {
			return err
		}
	case *BinaryExpr:
		if err := Walk(v, x.Left); err != nil {
			return err
		}
		if err := Walk(v, x.Right); err != nil {
			return err
		}
	}

	return v.Leave(n)
}

// Inspector adapts plain functions to a Visitor. Nil functions are skipped.
type Inspector struct {
	OnEnter func(Node) error
	OnLeave func(Node) error
}

func (in Inspector) Enter(n Node) error {
	if in.OnEnter == nil {
		return nil
	}
	return in.OnEnter(n)
}

func (in Inspector) Leave(n Node) error {
	if in.OnLeave == nil {
		return nil
	}
	return in.OnLeave(n)
}
