package assembler

// Symbol is a name bound to an address.
type Symbol struct {
	Name    string `yaml:"name" json:"name"`
	Address int    `yaml:"address" json:"address"`
	// Absolute is true for EQU constants whose value does not move with the section.
	Absolute bool `yaml:"absolute,omitempty" json:"absolute,omitempty"`
}

// SymbolTable keeps symbols in definition order. Names are unique.
// Programs are small, so lookups are a linear scan.
type SymbolTable struct {
	symbols []Symbol
}

// Define adds s. It returns false if the name is already taken.
func (t *SymbolTable) Define(s Symbol) bool {
	if _, ok := t.Lookup(s.Name); ok {
		return false
	}
	t.symbols = append(t.symbols, s)
	return true
}

// Lookup finds a symbol by name.
func (t *SymbolTable) Lookup(name string) (Symbol, bool) {
	for _, s := range t.symbols {
		if s.Name == name {
			return s, true
		}
	}
	return Symbol{}, false
}

// Symbols returns the table in definition order.
func (t *SymbolTable) Symbols() []Symbol {
	return t.symbols
}

// Len returns the number of symbols.
func (t *SymbolTable) Len() int {
	return len(t.symbols)
}

// resolve tries to give e a value from the section's symbols. Local
// definitions win over imports. Unknown symbols leave e unresolved.
func (s *Section) resolve(e Expr) (bool, error) {
	if e.Result().IsSet() {
		return true, nil
	}

	switch x := e.(type) {
	case *NumericExpr:
		x.result.Set(x.Number)
	case *SymbolExpr:
		if sym, ok := s.Internal.Lookup(x.Name); ok {
			x.absolute = sym.Absolute
			x.result.Set(sym.Address)
			return true, nil
		}
		if _, ok := s.Imported.Lookup(x.Name); ok {
			x.imported = true
			x.result.Set(0)
			return true, nil
		}
		return false, nil
	case *UnaryExpr:
		ok, err := s.resolve(x.X)
		if !ok || err != nil {
			return false, err
		}
		v, _ := x.X.Result().Get()
		x.result.Set(v)
	case *BinaryExpr:
		lok, err := s.resolve(x.Left)
		if err != nil {
			return false, err
		}
		rok, err := s.resolve(x.Right)
		if err != nil || !lok || !rok {
			return false, err
		}
		l, _ := x.Left.Result().Get()
		r, _ := x.Right.Result().Get()
		v, err := evaluate(x, l, r)
		if err != nil {
			return false, err
		}
		x.result.Set(v)
	}
	return true, nil
}
