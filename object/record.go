// Package object reads and writes SIC/XE object programs.
//
// An object program is a sequence of fixed-column text records, one section
// after another:
//
//	H<name:6><address:6><length:6>
//	D(<symbol:6><address:6>)*
//	R(<symbol:6>)*
//	T<address:6><count:2><byte:2>*
//	M<address:6><half-bytes:2>[+<symbol:6>]
//	E<start:6>
//
// All numbers are upper-case, zero-padded hex.
package object

// MaxTextBytes is the payload limit of a single T record.
const MaxTextBytes = 30

// NameWidth is the column width of section and symbol names.
const NameWidth = 6

// Definition is an exported symbol in a D record.
type Definition struct {
	Name    string
	Address int
}

// Text is the payload of one T record.
type Text struct {
	Address int
	Bytes   []byte
}

// Modification asks the loader to patch Length half-bytes at Address.
// An empty Symbol means the field is relative to the section's load address.
type Modification struct {
	Address int
	Length  int
	Symbol  string
}

// Section is one H..E group of records.
type Section struct {
	Name    string
	Address int
	Length  int
	Defines []Definition
	Refers  []string
	Texts   []Text
	Mods    []Modification
	Start   int
}

// File is a parsed object program.
type File struct {
	Sections []*Section
}

// LoadAddress returns the address the first section was assembled for.
func (f *File) LoadAddress() int {
	if len(f.Sections) == 0 {
		return 0
	}
	return f.Sections[0].Address
}
