package assembler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Urethramancer/sicxe/cpu"
)

func kinds(tokens []Token) []TokenKind {
	var out []TokenKind
	for _, t := range tokens {
		out = append(out, t.Kind)
	}
	return out
}

func TestLexerLine(t *testing.T) {
	tokens, err := Tokenize("LOOP    +LDA    #BUF, X . load\n", cpu.NewTable())
	require.NoError(t, err)
	assert.Equal(t, []TokenKind{
		TokLabel, TokWhitespace, TokPlus, TokInstruction, TokWhitespace,
		TokImmediate, TokLabel, TokComma, TokWhitespace, TokRegister,
		TokWhitespace, TokComment, TokNewLine,
	}, kinds(tokens))
	assert.Equal(t, "LOOP", tokens[0].Text)
	assert.Equal(t, ". load", tokens[11].Text)
}

func TestLexerNumbers(t *testing.T) {
	tests := []struct {
		src  string
		kind TokenKind
		want int
	}{
		{"0b101", TokNumberBin, 5},
		{"0o17", TokNumberOct, 15},
		{"10", TokNumberDec, 10},
		{"0xFF", TokNumberHex, 255},
		{"0X1f", TokNumberHex, 31},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			tokens, err := Tokenize(tc.src, cpu.NewTable())
			require.NoError(t, err)
			require.Len(t, tokens, 1)
			assert.Equal(t, tc.kind, tokens[0].Kind)
			n, err := numberValue(tokens[0])
			require.NoError(t, err)
			assert.Equal(t, tc.want, n)
		})
	}
}

func TestLexerBadDigits(t *testing.T) {
	tokens, err := Tokenize("0b102", cpu.NewTable())
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	_, err = numberValue(tokens[0])
	require.Error(t, err)
	assert.Equal(t, SyntaxError, err.(*Error).Kind)
}

func TestLexerReservations(t *testing.T) {
	tokens, err := Tokenize("C'EOF' X'F1'", cpu.NewTable())
	require.NoError(t, err)
	assert.Equal(t, []TokenKind{TokCharReservation, TokWhitespace, TokHexReservation}, kinds(tokens))
	assert.Equal(t, "C'EOF'", tokens[0].Text)
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		name, src string
	}{
		{"prefix without digits", "0x"},
		{"odd hex literal", "X'F'"},
		{"bad hex digit", "X'FG'"},
		{"unterminated", "C'abc\n'"},
		{"unknown character", "LDA $5"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Tokenize(tc.src, cpu.NewTable())
			require.Error(t, err)
			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, LexicalError, e.Kind)
			assert.Equal(t, 1, e.Line)
		})
	}
}

func TestLexerLineNumbers(t *testing.T) {
	tokens, err := Tokenize("A\n\nB", cpu.NewTable())
	require.NoError(t, err)
	require.Len(t, tokens, 4)
	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 3, tokens[3].Line)
}
