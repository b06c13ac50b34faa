package assembler

// folder evaluates constant subexpressions bottom-up.
type folder struct{}

func (folder) Enter(Node) error { return nil }

func (folder) Leave(n Node) error {
	switch x := n.(type) {
	case *NumericExpr:
		x.result.Set(x.Number)
	case *BinaryExpr:
		l, lok := x.Left.Result().Get()
		r, rok := x.Right.Result().Get()
		if !lok || !rok {
			return nil
		}
		v, err := evaluate(x, l, r)
		if err != nil {
			return err
		}
		x.result.Set(v)
	}
	return nil
}

// Fold resolves every expression built only from number literals.
func Fold(p *Program) error {
	return Walk(folder{}, p)
}
