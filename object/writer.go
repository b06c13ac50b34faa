package object

import (
	"fmt"
	"io"
	"strings"
)

// Writer emits object records for one section at a time.
// T records are packed automatically; M records are held until End.
type Writer struct {
	w   io.Writer
	err error

	pending []byte
	start   int
	next    int
	mods    []Modification
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, next: -1}
}

// Err returns the first write error, if any.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format, args...)
}

// Header writes the H record and resets the text and relocation state.
func (w *Writer) Header(name string, address, length int) {
	w.pending = w.pending[:0]
	w.next = -1
	w.mods = w.mods[:0]
	w.printf("H%s%s%s\n", Name(name), Hex(address, 6), Hex(length, 6))
}

// Define writes a D record. Nothing is written for an empty list.
func (w *Writer) Define(defs []Definition) {
	if len(defs) == 0 {
		return
	}
	var sb strings.Builder
	sb.WriteByte('D')
	for _, d := range defs {
		sb.WriteString(Name(d.Name))
		sb.WriteString(Hex(d.Address, 6))
	}
	w.printf("%s\n", sb.String())
}

// Refer writes an R record. Nothing is written for an empty list.
func (w *Writer) Refer(names []string) {
	if len(names) == 0 {
		return
	}
	var sb strings.Builder
	sb.WriteByte('R')
	for _, n := range names {
		sb.WriteString(Name(n))
	}
	w.printf("%s\n", sb.String())
}

// Bytes queues b for address addr. A gap in addresses or a full record
// flushes the pending T record first.
func (w *Writer) Bytes(addr int, b []byte) {
	if len(b) == 0 {
		return
	}
	if w.next != addr {
		w.flushText()
		w.start = addr
	}
	for i, c := range b {
		if len(w.pending) == MaxTextBytes {
			w.flushText()
			w.start = addr + i
		}
		w.pending = append(w.pending, c)
	}
	w.next = addr + len(b)
}

// Relocate queues an M record.
func (w *Writer) Relocate(m Modification) {
	w.mods = append(w.mods, m)
}

// End flushes pending text, writes the queued M records and the E record.
func (w *Writer) End(start int) error {
	w.flushText()
	for _, m := range w.mods {
		w.printf("%s\n", m.String())
	}
	w.mods = w.mods[:0]
	w.printf("E%s\n", Hex(start, 6))
	return w.err
}

func (w *Writer) flushText() {
	if len(w.pending) == 0 {
		return
	}
	w.printf("T%s%s%X\n", Hex(w.start, 6), Hex(len(w.pending), 2), w.pending)
	w.pending = w.pending[:0]
}

// String renders the record as it appears in an object file.
func (m Modification) String() string {
	s := "M" + Hex(m.Address, 6) + Hex(m.Length, 2)
	if m.Symbol != "" {
		s += "+" + Name(m.Symbol)
	}
	return s
}

// Hex formats v as width upper-case hex digits, keeping only the low bits that fit.
func Hex(v, width int) string {
	mask := uint64(1)<<(4*uint(width)) - 1
	return fmt.Sprintf("%0*X", width, uint64(v)&mask)
}

// Name left-justifies a name in the six-column name field.
func Name(s string) string {
	return fmt.Sprintf("%-*s", NameWidth, s)
}
