package assembler_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Urethramancer/sicxe/assembler"
)

const listingSource = `MAIN    START   0x1000
        EXTDEF  BUF
        EXTREF  RDREC
FIRST   STCH    BUF, X  . store
        +JSUB   RDREC
BUF     RESB    3
        END     FIRST
`

func build(t *testing.T, src string) (*assembler.Assembler, *assembler.Program) {
	t.Helper()
	a := assembler.New()
	p, err := a.Build(src)
	require.NoError(t, err)
	return a, p
}

func TestListing(t *testing.T) {
	a, p := build(t, listingSource)
	var buf bytes.Buffer
	require.NoError(t, a.WriteListing(&buf, p))
	out := buf.String()

	assert.Contains(t, out, "===== Program MAIN =====")
	assert.Contains(t, out, "***** Section <default> *****")
	assert.Contains(t, out, "----- Block <default> -----")
	assert.Contains(t, out, "    BUF         001007 exported")
	assert.Contains(t, out, "    RDREC       imported")
	assert.Contains(t, out, "001000    FIRST   STCH     BUF, X . store")
	assert.Contains(t, out, "001003            +JSUB    RDREC")
	assert.True(t, strings.HasSuffix(out, "****/ Section <default> /****\n\n"))
}

func TestTree(t *testing.T) {
	a, p := build(t, listingSource)
	var buf bytes.Buffer
	require.NoError(t, a.WriteTree(&buf, p))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")

	require.NotEmpty(t, lines)
	assert.Equal(t, "Program MAIN load=4096 start=4096", lines[0])
	assert.Equal(t, "  Section <default> start=4096 length=10", lines[1])
	assert.Equal(t, "    Block <default> commands=7", lines[2])
	assert.Contains(t, lines, "      Instruction STCH BUF [nix---] loc=4096 label=FIRST")
	assert.Contains(t, lines, "        Symbol BUF = 4103")
	assert.Contains(t, lines, "        Imported RDREC = 0")
}

func TestReport(t *testing.T) {
	_, p := build(t, listingSource)
	r := assembler.Report(p)
	assert.Equal(t, "MAIN", r.Name)
	assert.Equal(t, 0x1000, r.Load)
	assert.Equal(t, 0x1000, r.Start)
	require.Len(t, r.Sections, 1)

	s := r.Sections[0]
	assert.Equal(t, 10, s.Length)
	assert.Equal(t, []string{"BUF"}, s.Exports)
	assert.Equal(t, []string{"RDREC"}, s.Imports)
	assert.Equal(t, []assembler.Symbol{
		{Name: "MAIN", Address: 0x1000},
		{Name: "FIRST", Address: 0x1000},
		{Name: "BUF", Address: 0x1007},
	}, s.Symbols)

	out, err := yaml.Marshal(r)
	require.NoError(t, err)
	var back assembler.ProgramReport
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, r, back)
}
