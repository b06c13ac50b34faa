package assembler

import "fmt"

// TokenKind classifies a token.
type TokenKind int

const (
	TokNumberBin TokenKind = iota
	TokNumberOct
	TokNumberDec
	TokNumberHex
	TokNewLine
	TokWhitespace
	TokComment
	TokComma
	// TokImmediate is '#'.
	TokImmediate
	// TokIndirect is '@'.
	TokIndirect
	// TokLiteral is '='.
	TokLiteral
	// TokCharReservation is C'...'.
	TokCharReservation
	// TokHexReservation is X'...'.
	TokHexReservation
	// TokLabel is any identifier that is not a mnemonic or register.
	TokLabel
	TokMinus
	TokPlus
	TokAsterisk
	TokSlash
	TokOpenParen
	TokCloseParen
	// TokInstruction is an instruction mnemonic; the text names it.
	TokInstruction
	// TokDirective is a directive mnemonic; the text names it.
	TokDirective
	// TokRegister is a register name; the text names it.
	TokRegister
)

var tokenNames = map[TokenKind]string{
	tokEOF:             "end of input",
	TokNumberBin:       "binary number",
	TokNumberOct:       "octal number",
	TokNumberDec:       "decimal number",
	TokNumberHex:       "hex number",
	TokNewLine:         "newline",
	TokWhitespace:      "whitespace",
	TokComment:         "comment",
	TokComma:           "comma",
	TokImmediate:       "'#'",
	TokIndirect:        "'@'",
	TokLiteral:         "'='",
	TokCharReservation: "character literal",
	TokHexReservation:  "hex literal",
	TokLabel:           "label",
	TokMinus:           "'-'",
	TokPlus:            "'+'",
	TokAsterisk:        "'*'",
	TokSlash:           "'/'",
	TokOpenParen:       "'('",
	TokCloseParen:      "')'",
	TokInstruction:     "instruction",
	TokDirective:       "directive",
	TokRegister:        "register",
}

// String returns a readable name for the kind.
func (k TokenKind) String() string {
	if s, ok := tokenNames[k]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(k))
}

// IsNumber reports whether the kind is one of the four numeric literals.
func (k TokenKind) IsNumber() bool {
	return k >= TokNumberBin && k <= TokNumberHex
}

// Radix returns the base of a numeric kind, or 0.
func (k TokenKind) Radix() int {
	switch k {
	case TokNumberBin:
		return 2
	case TokNumberOct:
		return 8
	case TokNumberDec:
		return 10
	case TokNumberHex:
		return 16
	}
	return 0
}

// Token is a lexeme with its kind and source line.
type Token struct {
	Kind TokenKind
	Text string
	Line int
}

// Digits returns the numeric body of a number token, without its radix prefix.
func (t Token) Digits() string {
	if t.Kind.IsNumber() && t.Kind != TokNumberDec && len(t.Text) > 2 {
		return t.Text[2:]
	}
	return t.Text
}

func (t Token) String() string {
	switch t.Kind {
	case TokNewLine, TokWhitespace, tokEOF:
		return t.Kind.String()
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}
