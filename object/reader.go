package object

import (
	"bufio"
	"encoding/hex"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Parse reads an object program.
func Parse(r io.Reader) (*File, error) {
	f := &File{}
	var sec *Section
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		rec := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(rec) == "" {
			continue
		}

		kind := rec[0]
		if kind != 'H' && sec == nil {
			return nil, errors.Errorf("line %d: %c record outside a section", line, kind)
		}

		var err error
		switch kind {
		case 'H':
			if sec != nil {
				return nil, errors.Errorf("line %d: H record before E record", line)
			}
			sec, err = parseHeader(rec)
		case 'D':
			sec.Defines, err = parseDefines(rec)
		case 'R':
			sec.Refers = parseRefers(rec)
		case 'T':
			var t Text
			t, err = parseText(rec)
			sec.Texts = append(sec.Texts, t)
		case 'M':
			var m Modification
			m, err = parseModification(rec)
			sec.Mods = append(sec.Mods, m)
		case 'E':
			if len(rec) > 1 {
				sec.Start, err = field(rec, 1, 6)
			}
			f.Sections = append(f.Sections, sec)
			sec = nil
		default:
			err = errors.Errorf("unknown record type %q", kind)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading object program")
	}
	if sec != nil {
		return nil, errors.Errorf("section %q has no E record", sec.Name)
	}
	return f, nil
}

func field(rec string, at, width int) (int, error) {
	if len(rec) < at+width {
		return 0, errors.Errorf("record too short: %q", rec)
	}
	v, err := strconv.ParseUint(rec[at:at+width], 16, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "bad hex field %q", rec[at:at+width])
	}
	return int(v), nil
}

func name(rec string, at int) string {
	end := at + NameWidth
	if end > len(rec) {
		end = len(rec)
	}
	return strings.TrimRight(rec[at:end], " ")
}

func parseHeader(rec string) (*Section, error) {
	sec := &Section{Name: name(rec, 1)}
	var err error
	if sec.Address, err = field(rec, 7, 6); err != nil {
		return nil, err
	}
	if sec.Length, err = field(rec, 13, 6); err != nil {
		return nil, err
	}
	return sec, nil
}

func parseDefines(rec string) ([]Definition, error) {
	var defs []Definition
	for at := 1; at < len(rec); at += NameWidth + 6 {
		addr, err := field(rec, at+NameWidth, 6)
		if err != nil {
			return nil, err
		}
		defs = append(defs, Definition{Name: name(rec, at), Address: addr})
	}
	return defs, nil
}

func parseRefers(rec string) []string {
	var names []string
	for at := 1; at < len(rec); at += NameWidth {
		if n := name(rec, at); n != "" {
			names = append(names, n)
		}
	}
	return names
}

func parseText(rec string) (Text, error) {
	addr, err := field(rec, 1, 6)
	if err != nil {
		return Text{}, err
	}
	n, err := field(rec, 7, 2)
	if err != nil {
		return Text{}, err
	}
	if n > MaxTextBytes {
		return Text{}, errors.Errorf("T record holds %d bytes, limit is %d", n, MaxTextBytes)
	}
	payload := rec[9:]
	if len(payload) != n*2 {
		return Text{}, errors.Errorf("T record announces %d bytes but carries %d hex digits", n, len(payload))
	}
	b, err := hex.DecodeString(payload)
	if err != nil {
		return Text{}, errors.Wrap(err, "bad T record payload")
	}
	return Text{Address: addr, Bytes: b}, nil
}

func parseModification(rec string) (Modification, error) {
	var m Modification
	var err error
	if m.Address, err = field(rec, 1, 6); err != nil {
		return m, err
	}
	if m.Length, err = field(rec, 7, 2); err != nil {
		return m, err
	}
	if m.Length == 0 || m.Length > 6 {
		return m, errors.Errorf("M record length %d out of range", m.Length)
	}
	if len(rec) > 9 {
		if rec[9] != '+' {
			return m, errors.Errorf("bad M record sign %q", rec[9])
		}
		m.Symbol = name(rec, 10)
	}
	return m, nil
}
