package assembler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *Program {
	t.Helper()
	p, err := New().Parse(src)
	require.NoError(t, err)
	return p
}

func firstCommand(t *testing.T, p *Program) Command {
	t.Helper()
	require.NotEmpty(t, p.Sections)
	require.NotEmpty(t, p.Sections[0].Blocks)
	require.NotEmpty(t, p.Sections[0].Blocks[0].Commands)
	return p.Sections[0].Blocks[0].Commands[0]
}

func TestExpressionShapes(t *testing.T) {
	tests := []struct {
		operand, want string
	}{
		{"ALPHA+BETA*2", "(ALPHA + (BETA * 2))"},
		{"(ALPHA+BETA)*2", "((ALPHA + BETA) * 2)"},
		{"ALPHA-BETA-2", "((ALPHA - BETA) - 2)"},
		{"ALPHA*2/4", "((ALPHA * 2) / 4)"},
		{"-5", "-5"},
		{"-ALPHA", "(0 - ALPHA)"},
		{"#ALPHA+1", "#(ALPHA + 1)"},
		{"@PTR", "@PTR"},
		{"*", "*"},
		{"*-3", "(* - 3)"},
		{"* * 2", "(* * 2)"},
		{"0x10 + 0b11", "(16 + 3)"},
	}
	for _, tc := range tests {
		t.Run(tc.operand, func(t *testing.T) {
			p := parse(t, "        LDA     "+tc.operand+"\n")
			assert.Equal(t, tc.want, firstCommand(t, p).Base().Operand.String())
		})
	}
}

func TestParseSectionsAndBlocks(t *testing.T) {
	src := `PROG    START   0
        LDA     DATA
        USE     CDATA
DATA    WORD    1
        USE
        RSUB
OTHER   CSECT
        RSUB
        END
`
	p := parse(t, src)
	require.Len(t, p.Sections, 2)
	main := p.Sections[0]
	assert.Equal(t, "", main.Name)
	require.Len(t, main.Blocks, 2)
	assert.Equal(t, "", main.Blocks[0].Name)
	assert.Len(t, main.Blocks[0].Commands, 3)
	assert.Equal(t, "CDATA", main.Blocks[1].Name)
	assert.Len(t, main.Blocks[1].Commands, 1)
	assert.Equal(t, "OTHER", p.Sections[1].Name)
}

func TestParseOperands(t *testing.T) {
	src := `        CLEAR   X
        COMPR   A, S
        SHIFTL  T, 4
        SVC     2
        +JSUB   READ
        STCH    BUF, X
        BYTE    C'EOF'
        EXTDEF  ONE, TWO
        END
`
	p := parse(t, src)
	cmds := p.Sections[0].Blocks[0].Commands
	want := []string{"X", "A, S", "T, 4", "2", "READ", "BUF", "C'EOF'", "ONE, TWO", ""}
	require.Len(t, cmds, len(want))
	for i, w := range want {
		assert.Equal(t, w, cmds[i].Base().Operand.String(), "command %d", i)
	}
	assert.Equal(t, "+JSUB", cmds[4].Mnemonic())
	assert.True(t, cmds[5].(*Instruction).Flags.IsIndexed())
	assert.Equal(t, []byte("EOF"), cmds[6].Base().Operand.(*BytesOperand).Bytes)
}

func TestParseComments(t *testing.T) {
	src := `. header comment

FIRST   RSUB    . done
`
	cmd := firstCommand(t, parse(t, src))
	assert.Equal(t, "FIRST", cmd.Base().Label)
	assert.Equal(t, ". done", cmd.Base().Comment)
	assert.Equal(t, 3, cmd.Base().Line)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name, src string
	}{
		{"missing operand", "        LDA\n"},
		{"extended format 2", "        +CLEAR  A\n"},
		{"extended directive", "        +WORD   1\n"},
		{"equ without label", "        EQU     5\n"},
		{"label on use", "NAME    USE     DATA\n"},
		{"unbalanced", "        LDA     (ALPHA+1\n"},
		{"prefix inside", "        LDA     1+#ALPHA\n"},
		{"two prefixes", "        LDA     #@ALPHA\n"},
		{"index not X", "        LDA     BUF, A\n"},
		{"empty literal", "        BYTE    C''\n"},
		{"no mnemonic", "LABEL   ALPHA\n"},
		{"trailing junk", "        RSUB    ALPHA\n"},
		{"sign after minus", "        LDA     5--3\n"},
		{"sign after multiply", "        LDA     #3*-2\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New().Parse(tc.src)
			require.Error(t, err)
			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, SyntaxError, e.Kind)
		})
	}
}

func TestParseDuplicateSection(t *testing.T) {
	_, err := New().Parse("ONE     CSECT\n        RSUB\nONE     CSECT\n        RSUB\n")
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, SemanticError, e.Kind)
}
