package assembler

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Urethramancer/sicxe/cpu"
)

// Assembler holds the state for the assembly process.
type Assembler struct {
	table *cpu.Table
	log   logrus.FieldLogger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger routes pass diagnostics to log.
func WithLogger(log logrus.FieldLogger) Option {
	return func(a *Assembler) {
		a.log = log
	}
}

// New creates a new Assembler instance.
func New(opts ...Option) *Assembler {
	a := &Assembler{
		table: cpu.NewTable(),
		log:   logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Tokenize splits src into tokens.
func (a *Assembler) Tokenize(src string) ([]Token, error) {
	return Tokenize(src, a.table)
}

// Parse builds the syntax tree of src without resolving anything.
func (a *Assembler) Parse(src string) (*Program, error) {
	tokens, err := a.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return NewParser(tokens, a.table, a.log).Parse()
}

// Resolve runs constant folding, location assignment and symbol
// resolution on a parsed program.
func (a *Assembler) Resolve(p *Program) error {
	if err := Fold(p); err != nil {
		return errors.Wrap(err, "folding constants")
	}
	if err := Locate(p, a.log); err != nil {
		return errors.Wrap(err, "assigning locations")
	}
	if err := ResolveSymbols(p); err != nil {
		return errors.Wrap(err, "resolving symbols")
	}
	return nil
}

// Build parses and resolves src.
func (a *Assembler) Build(src string) (*Program, error) {
	p, err := a.Parse(src)
	if err != nil {
		return nil, errors.Wrap(err, "parsing")
	}
	if err := a.Resolve(p); err != nil {
		return nil, err
	}
	a.log.WithFields(logrus.Fields{
		"program":  p.Name,
		"sections": len(p.Sections),
	}).Debug("program resolved")
	return p, nil
}

// WriteObject writes the object records of a resolved program.
func (a *Assembler) WriteObject(w io.Writer, p *Program) error {
	return errors.Wrap(WriteObject(w, p), "generating object code")
}

// WriteListing writes the listing of a resolved program.
func (a *Assembler) WriteListing(w io.Writer, p *Program) error {
	return errors.Wrap(WriteListing(w, p), "writing listing")
}

// WriteTree writes the syntax tree of a program.
func (a *Assembler) WriteTree(w io.Writer, p *Program) error {
	return errors.Wrap(WriteTree(w, p), "writing tree")
}

// Assemble takes SIC/XE assembly source and returns the object program text.
func (a *Assembler) Assemble(src string) (string, error) {
	p, err := a.Build(src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := a.WriteObject(&buf, p); err != nil {
		return "", err
	}
	return buf.String(), nil
}
