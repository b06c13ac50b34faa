package assembler_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Urethramancer/sicxe/assembler"
)

// assembleAndMatch assembles src and compares the object text line by line.
func assembleAndMatch(t *testing.T, name, src string, want ...string) {
	t.Helper()

	out, err := assembler.New().Assemble(src)
	require.NoError(t, err, "[%s] failed to assemble:\n%s", name, src)
	got := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Equal(t, want, got, "[%s] object mismatch", name)
}

// assembleError assembles src and returns the error, which must be an *assembler.Error.
func assembleError(t *testing.T, src string) *assembler.Error {
	t.Helper()

	_, err := assembler.New().Assemble(src)
	require.Error(t, err)
	var e *assembler.Error
	require.ErrorAs(t, err, &e)
	return e
}

func TestSimpleProgram(t *testing.T) {
	src := `COPY    START   0
FIRST   LDA     FIVE
        RSUB
FIVE    WORD    5
        END     FIRST
`
	assembleAndMatch(t, "simple", src,
		"HCOPY  000000000009",
		"T00000009032003"+"4F0000"+"000005",
		"E000000",
	)
}

func TestInstructionEncodings(t *testing.T) {
	tests := []struct {
		name, line, text string
	}{
		{"format1", "FIX", "C4"},
		{"clear", "CLEAR   X", "B410"},
		{"compr", "COMPR   A, S", "A004"},
		{"shiftl", "SHIFTL  T, 4", "A454"},
		{"svc", "SVC     2", "B020"},
		{"rsub", "RSUB", "4F0000"},
		{"immediate", "LDA     #5", "010005"},
		{"immediate negative", "LDA     #-1", "010FFF"},
		{"indirect absolute", "J       @0x30", "3E0030"},
		{"sic fallback", "LDA     5000", "001388"},
		{"sic indexed", "LDA     5000, X", "009388"},
		{"extended immediate", "+LDT    #4096", "75101000"},
		{"indexed absolute", "LDCH    0x10, X", "538010"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := "PROG    START   0\n        " + tc.line + "\n        END\n"
			out, err := assembler.New().Assemble(src)
			require.NoError(t, err)
			lines := strings.Split(out, "\n")
			require.GreaterOrEqual(t, len(lines), 2)
			assert.Equal(t, tc.text, lines[1][9:], "text record %q", lines[1])
		})
	}
}

func TestPCRelativeLimit(t *testing.T) {
	reach := `PROG    START   0
        J       TARGET
        RESB    2047
TARGET  RSUB
        END
`
	assembleAndMatch(t, "pc relative", reach,
		"HPROG  000000000805",
		"T000000033F27FF",
		"T000802034F0000",
		"E000000",
	)

	far := strings.Replace(reach, "2047", "2048", 1)
	assembleAndMatch(t, "direct fallback", far,
		"HPROG  000000000806",
		"T000000033F0803",
		"T000803034F0000",
		"M00000103",
		"E000000",
	)
}

func TestBaseRelative(t *testing.T) {
	src := `PROG    START   0
        LDB     #BUFEND
        BASE    BUFEND
        LDA     BUFEND
        RESB    4000
BUFEND  WORD    1
        END
`
	assembleAndMatch(t, "base", src,
		"HPROG  000000000FA9",
		"T00000006690FA6034000",
		"T000FA603000001",
		"M00000103",
		"E000000",
	)
}

func TestTextRecordSplit(t *testing.T) {
	src := "PROG    START   0\n        BYTE    X'" + strings.Repeat("AB", 31) + "'\n        END\n"
	assembleAndMatch(t, "split", src,
		"HPROG  00000000001F",
		"T0000001E"+strings.Repeat("AB", 30),
		"T00001E01AB",
		"E000000",
	)
}

func TestExports(t *testing.T) {
	src := `MAIN    START   0
        EXTDEF  BUF
FIRST   LDA     BUF
BUF     WORD    7
        END     FIRST
`
	assembleAndMatch(t, "exports", src,
		"HMAIN  000000000006",
		"DBUF   000003",
		"T00000006032000000007",
		"E000000",
	)
}

func TestImports(t *testing.T) {
	src := `MAIN    START   0
        EXTREF  RDREC
        +JSUB   RDREC
PTR     WORD    RDREC
        END
`
	assembleAndMatch(t, "imports", src,
		"HMAIN  000000000007",
		"RRDREC ",
		"T000000074B100000000000",
		"M00000105+RDREC ",
		"M00000406+RDREC ",
		"E000000",
	)
}

func TestRelocatableWord(t *testing.T) {
	src := `PROG    START   0x100
HERE    WORD    HERE+3
SIZE    WORD    THERE-HERE
THERE   END     HERE
`
	assembleAndMatch(t, "word", src,
		"HPROG  000100000006",
		"T00010006000103000006",
		"M00010006",
		"E000100",
	)
}

func TestSections(t *testing.T) {
	src := `MAIN    START   0
        EXTREF  LEN
LOOP    +LDA    LEN
        END     LOOP
OTHER   CSECT
        EXTDEF  LEN
LOOP    RSUB
LEN     WORD    3
`
	assembleAndMatch(t, "sections", src,
		"HMAIN  000000000004",
		"RLEN   ",
		"T0000000403100000",
		"M00000105+LEN   ",
		"E000000",
		"HOTHER 000000000006",
		"DLEN   000003",
		"T000000064F0000000003",
		"E000000",
	)
}

func TestAddressingPaths(t *testing.T) {
	tests := []struct {
		name, src string
		want      []string
	}{
		{
			"extended local",
			"PROG    START   0\n        +JSUB   LOCAL\nLOCAL   RSUB\n        END\n",
			[]string{
				"HPROG  000000000007",
				"T000000074B1000044F0000",
				"M00000105",
				"E000000",
			},
		},
		{
			"sic relocatable",
			"PROG    START   0\n        LDA     FAR\n        RESB    5000\nFAR     WORD    1\n        END\n",
			[]string{
				"HPROG  00000000138E",
				"T0000000300138B",
				"T00138B03000001",
				"E000000",
			},
		},
		{
			"indirect pc relative",
			"PROG    START   0\n        J       @PTR\nPTR     WORD    0\n        END\n",
			[]string{
				"HPROG  000000000006",
				"T000000063E2000000000",
				"E000000",
			},
		},
		{
			"absolute base skipped",
			"PROG    START   0\n        BASE    0\n        LDA     BUF\n        RESB    3000\nBUF     WORD    1\n        END\n",
			[]string{
				"HPROG  000000000BBE",
				"T00000003030BBB",
				"T000BBB03000001",
				"M00000103",
				"E000000",
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assembleAndMatch(t, tc.name, tc.src, tc.want...)
		})
	}
}

func TestOrgCurrentLocation(t *testing.T) {
	src := `PROG    START   0
        ORG     *+3
        RSUB
        END
`
	assembleAndMatch(t, "org", src,
		"HPROG  000000000006",
		"T000003034F0000",
		"E000000",
	)
}

func TestEquOrdering(t *testing.T) {
	tests := []struct {
		name, src string
	}{
		{"forward", "PROG    START   0\nALPHA   EQU     BETA+1\nBETA    EQU     5\n        END\n"},
		{"backward", "PROG    START   0\nBETA    EQU     5\nALPHA   EQU     BETA+1\n        END\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := assembler.New().Build(tc.src)
			require.NoError(t, err)
			sec := p.Sections[0]
			alpha, ok := sec.Internal.Lookup("ALPHA")
			require.True(t, ok)
			assert.Equal(t, 6, alpha.Address)
			assert.True(t, alpha.Absolute)
			beta, ok := sec.Internal.Lookup("BETA")
			require.True(t, ok)
			assert.Equal(t, 5, beta.Address)
		})
	}
}

func TestEquLocation(t *testing.T) {
	src := `PROG    START   0x10
        RSUB
HERE    EQU     *
LEN     EQU     HERE-0x10
        END
`
	p, err := assembler.New().Build(src)
	require.NoError(t, err)
	here, _ := p.Sections[0].Internal.Lookup("HERE")
	assert.Equal(t, 0x13, here.Address)
	assert.False(t, here.Absolute)
	length, _ := p.Sections[0].Internal.Lookup("LEN")
	assert.Equal(t, 3, length.Address)
}

func TestSemanticErrors(t *testing.T) {
	tests := []struct {
		name, src string
	}{
		{"equ cycle", "ALPHA   EQU     BETA\nBETA    EQU     ALPHA\n"},
		{"duplicate label", "LOOP    RSUB\nLOOP    RSUB\n"},
		{"undefined symbol", "        LDA     NOWHERE\n"},
		{"division by zero", "ALPHA   EQU     4/0\n"},
		{"missing export", "        EXTDEF  GONE\n        RSUB\n"},
		{"import not extended", "        EXTREF  EXT\n        JSUB    EXT\n"},
		{"defined and imported", "EXT     RSUB\n        EXTREF  EXT\n"},
		{"immediate out of range", "        LDA     #5000\n"},
		{"start not first", "        RSUB\nPROG    START   0\n"},
		{"start forward reference", "PROG    START   HERE\nHERE    RSUB\n"},
		{"indexed immediate", "        LDA     #5, X\n"},
		{"literal pool", "        LDA     =5\n"},
		{"byte range", "        BYTE    300\n"},
		{"not relocatable", "HERE    WORD    HERE*2\n"},
		{"duplicate end", "        END\n        END\n"},
		{"negative reserve", "        RESB    -1\n"},
		{"long section name", "LONGNAME CSECT\n        RSUB\n"},
		{"nibble range", "        SHIFTL  A, 16\n"},
		{"start out of range", "PROG    START   0x1000000\n"},
		{"org out of range", "        ORG     0x1000000\n        BYTE    1\n"},
		{"org negative", "        ORG     -1\n"},
		{"counter overflow", "        ORG     0xFFFFFE\n        WORD    5\n"},
		{"base imported", "        EXTREF  EXT\n        BASE    EXT\n        RSUB\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := assembleError(t, tc.src)
			assert.Equal(t, assembler.SemanticError, e.Kind, e.Error())
			assert.Positive(t, e.Line)
		})
	}
}

func TestSameLabelInTwoSections(t *testing.T) {
	src := `MAIN    START   0
LOOP    RSUB
OTHER   CSECT
LOOP    RSUB
`
	p, err := assembler.New().Build(src)
	require.NoError(t, err)
	require.Len(t, p.Sections, 2)
	for _, s := range p.Sections {
		loop, ok := s.Internal.Lookup("LOOP")
		require.True(t, ok)
		assert.Equal(t, 0, loop.Address)
	}
}

func TestProgramBlocks(t *testing.T) {
	src := `PROG    START   0
        LDA     DATA
        USE     CDATA
DATA    WORD    1
        USE
        RSUB
        END
`
	assembleAndMatch(t, "blocks", src,
		"HPROG  000000000009",
		"T00000009032003"+"4F0000"+"000001",
		"E000000",
	)
}

func TestErrorMessage(t *testing.T) {
	e := assembleError(t, "        LDA     NOWHERE\n")
	assert.Equal(t, "line 1: semantic error at NOWHERE: undefined symbol", e.Error())
}
