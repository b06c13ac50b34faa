package object

import (
	"github.com/pkg/errors"

	"github.com/Urethramancer/sicxe/cpu"
)

// Load places every section of f into mem, one after another starting at
// progAddr, applies the M records and returns the execution start address.
//
// Anonymous M records add the distance the section moved from the address it
// was assembled for. Named M records add the load address of a symbol
// exported by a D record, or of a section, somewhere in f.
func Load(f *File, mem *cpu.Memory, progAddr int) (int, error) {
	if len(f.Sections) == 0 {
		return 0, errors.New("empty object program")
	}

	// Pass 1: section placement and the external symbol table.
	bases := make([]int, len(f.Sections))
	estab := make(map[string]int)
	csaddr := progAddr
	for i, sec := range f.Sections {
		bases[i] = csaddr
		delta := csaddr - sec.Address
		if sec.Name != "" {
			if _, dup := estab[sec.Name]; dup {
				return 0, errors.Errorf("duplicate external symbol %s", sec.Name)
			}
			estab[sec.Name] = csaddr
		}
		for _, d := range sec.Defines {
			if _, dup := estab[d.Name]; dup {
				return 0, errors.Errorf("duplicate external symbol %s", d.Name)
			}
			estab[d.Name] = d.Address + delta
		}
		csaddr += sec.Length
	}

	// Pass 2: text and modifications.
	for i, sec := range f.Sections {
		delta := bases[i] - sec.Address
		for _, t := range sec.Texts {
			if t.Address < sec.Address || t.Address+len(t.Bytes) > sec.Address+sec.Length {
				return 0, errors.Errorf("section %s: T record at %06X outside the section", sec.Name, t.Address)
			}
			if err := mem.Write(t.Address+delta, t.Bytes); err != nil {
				return 0, errors.Wrapf(err, "section %s", sec.Name)
			}
		}
		for _, m := range sec.Mods {
			add := delta
			if m.Symbol != "" {
				addr, ok := estab[m.Symbol]
				if !ok {
					return 0, errors.Errorf("section %s: undefined external symbol %s", sec.Name, m.Symbol)
				}
				add = addr
			}
			if err := patch(mem, m.Address+delta, m.Length, add); err != nil {
				return 0, errors.Wrapf(err, "section %s", sec.Name)
			}
		}
	}

	first := f.Sections[0]
	return first.Start + bases[0] - first.Address, nil
}

// patch adds v to the low half-bytes of the field starting at addr.
func patch(mem *cpu.Memory, addr, halfBytes, v int) error {
	n := (halfBytes + 1) / 2
	raw := mem.Slice(addr, addr+n)
	if addr < 0 || len(raw) != n {
		return errors.Errorf("M record at %06X runs past the end of memory", addr)
	}
	word := cpu.BytesToWord(raw)
	mask := 1<<(4*uint(halfBytes)) - 1
	word = word&^mask | (word+v)&mask
	for i := n - 1; i >= 0; i-- {
		raw[i] = byte(word)
		word >>= 8
	}
	return nil
}
