package assembler

// SectionReport is the symbol map of one section, shaped for YAML and JSON.
type SectionReport struct {
	Name    string   `yaml:"name" json:"name"`
	Start   int      `yaml:"start" json:"start"`
	Length  int      `yaml:"length" json:"length"`
	Symbols []Symbol `yaml:"symbols,omitempty" json:"symbols,omitempty"`
	Exports []string `yaml:"exports,omitempty" json:"exports,omitempty"`
	Imports []string `yaml:"imports,omitempty" json:"imports,omitempty"`
}

// ProgramReport is the symbol map of a whole program.
type ProgramReport struct {
	Name     string          `yaml:"name,omitempty" json:"name,omitempty"`
	Load     int             `yaml:"load" json:"load"`
	Start    int             `yaml:"start" json:"start"`
	Sections []SectionReport `yaml:"sections" json:"sections"`
}

// Report collects the symbol tables of a resolved program.
func Report(p *Program) ProgramReport {
	r := ProgramReport{
		Name:  p.Name,
		Load:  p.LoadAddress.Or(0),
		Start: p.StartAddress.Or(p.LoadAddress.Or(0)),
	}
	for _, s := range p.Sections {
		sr := SectionReport{
			Name:    s.Name,
			Start:   s.Start,
			Length:  s.Length,
			Symbols: s.Internal.Symbols(),
		}
		for _, e := range s.Exported.Symbols() {
			sr.Exports = append(sr.Exports, e.Name)
		}
		for _, i := range s.Imported.Symbols() {
			sr.Imports = append(sr.Imports, i.Name)
		}
		r.Sections = append(r.Sections, sr)
	}
	return r
}
