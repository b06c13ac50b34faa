package assembler

import (
	"fmt"

	"github.com/Urethramancer/sicxe/cpu"
)

// Lexer splits source text into tokens. Whitespace and newlines are tokens too.
type Lexer struct {
	src   string
	pos   int
	line  int
	table *cpu.Table
}

// NewLexer returns a lexer over src that resolves words against table.
func NewLexer(src string, table *cpu.Table) *Lexer {
	return &Lexer{src: src, line: 1, table: table}
}

// Tokenize lexes all of src.
func Tokenize(src string, table *cpu.Table) ([]Token, error) {
	lx := NewLexer(src, table)
	var tokens []Token
	for {
		t, ok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return tokens, nil
		}
		tokens = append(tokens, t)
	}
}

func (lx *Lexer) peek() byte {
	return lx.peekN(0)
}

func (lx *Lexer) peekN(n int) byte {
	if lx.pos+n >= len(lx.src) {
		return 0
	}
	return lx.src[lx.pos+n]
}

func (lx *Lexer) eof() bool {
	return lx.pos >= len(lx.src)
}

func (lx *Lexer) token(kind TokenKind, start int) Token {
	return Token{Kind: kind, Text: lx.src[start:lx.pos], Line: lx.line}
}

// Next returns the next token. ok is false at the end of the input.
func (lx *Lexer) Next() (Token, bool, error) {
	if lx.eof() {
		return Token{}, false, nil
	}

	start := lx.pos
	c := lx.peek()
	switch {
	case c == '\n':
		lx.pos++
		t := lx.token(TokNewLine, start)
		lx.line++
		return t, true, nil
	case isSpace(c):
		for !lx.eof() && isSpace(lx.peek()) {
			lx.pos++
		}
		return lx.token(TokWhitespace, start), true, nil
	case c == '.':
		for !lx.eof() && lx.peek() != '\n' {
			lx.pos++
		}
		return lx.token(TokComment, start), true, nil
	case isDigit(c):
		return lx.number()
	case (c == 'C' || c == 'X') && lx.peekN(1) == '\'':
		return lx.reservation()
	case isLetter(c):
		return lx.word(), true, nil
	}

	if kind, ok := punctuation[c]; ok {
		lx.pos++
		return lx.token(kind, start), true, nil
	}
	return Token{}, false, lexErr(lx.line, quoteByte(c), "unrecognised character")
}

var punctuation = map[byte]TokenKind{
	',': TokComma,
	'#': TokImmediate,
	'@': TokIndirect,
	'=': TokLiteral,
	'+': TokPlus,
	'-': TokMinus,
	'*': TokAsterisk,
	'/': TokSlash,
	'(': TokOpenParen,
	')': TokCloseParen,
}

// number lexes 0b, 0o, 0x or plain decimal literals. The body runs to the end
// of the alphanumeric run so that a bad digit is reported by the parser
// against the whole literal.
func (lx *Lexer) number() (Token, bool, error) {
	start := lx.pos
	kind := TokNumberDec
	if lx.peek() == '0' {
		switch lx.peekN(1) {
		case 'b', 'B':
			kind = TokNumberBin
		case 'o', 'O':
			kind = TokNumberOct
		case 'x', 'X':
			kind = TokNumberHex
		}
	}
	if kind != TokNumberDec {
		lx.pos += 2
		if !isAlnum(lx.peek()) {
			return Token{}, false, lexErr(lx.line, lx.src[start:lx.pos], "number prefix without digits")
		}
	}
	for !lx.eof() && isAlnum(lx.peek()) {
		lx.pos++
	}
	return lx.token(kind, start), true, nil
}

// reservation lexes C'text' and X'hex'.
func (lx *Lexer) reservation() (Token, bool, error) {
	start := lx.pos
	tag := lx.peek()
	lx.pos += 2
	for {
		if lx.eof() || lx.peek() == '\n' {
			return Token{}, false, lexErr(lx.line, lx.src[start:lx.pos], "unterminated literal")
		}
		c := lx.peek()
		if c == '\'' {
			break
		}
		if tag == 'C' && (c < 0x20 || c > 0x7E) {
			return Token{}, false, lexErr(lx.line, lx.src[start:lx.pos], "unprintable character %s in literal", quoteByte(c))
		}
		if tag == 'X' && !isHexDigit(c) {
			return Token{}, false, lexErr(lx.line, lx.src[start:lx.pos+1], "bad hex digit %s in literal", quoteByte(c))
		}
		lx.pos++
	}
	lx.pos++

	if tag == 'C' {
		return lx.token(TokCharReservation, start), true, nil
	}
	t := lx.token(TokHexReservation, start)
	if (len(t.Text)-3)%2 != 0 {
		return Token{}, false, lexErr(lx.line, t.Text, "hex literal needs whole bytes")
	}
	return t, true, nil
}

func (lx *Lexer) word() Token {
	start := lx.pos
	for !lx.eof() && isAlnum(lx.peek()) {
		lx.pos++
	}
	t := lx.token(TokLabel, start)
	if _, ok := lx.table.Instruction(t.Text); ok {
		t.Kind = TokInstruction
	} else if _, ok := lx.table.Directive(t.Text); ok {
		t.Kind = TokDirective
	} else if _, ok := lx.table.Register(t.Text); ok {
		t.Kind = TokRegister
	}
	return t
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isAlnum(c byte) bool {
	return isLetter(c) || isDigit(c)
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func quoteByte(c byte) string {
	if c < 0x20 || c > 0x7E {
		return fmt.Sprintf("0x%02X", c)
	}
	return fmt.Sprintf("'%c'", c)
}
