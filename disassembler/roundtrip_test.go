package disassembler_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Urethramancer/sicxe/assembler"
	"github.com/Urethramancer/sicxe/cpu"
	"github.com/Urethramancer/sicxe/disassembler"
	"github.com/Urethramancer/sicxe/object"
)

// Assembles two linked sections, loads them at 0x1000 and checks that the
// disassembly follows the relocated call into the second section.
func TestAssembleLoadDisassemble(t *testing.T) {
	src := `MAIN    START   0
        EXTREF  WORK
FIRST   +JSUB   WORK
        J       FIRST
        END     FIRST
OTHER   CSECT
        EXTDEF  WORK
WORK    RSUB
`
	text, err := assembler.New().Assemble(src)
	require.NoError(t, err)

	f, err := object.Parse(strings.NewReader(text))
	require.NoError(t, err)
	require.Len(t, f.Sections, 2)

	mem := cpu.NewMemory(0x2000)
	entry, err := object.Load(f, mem, 0x1000)
	require.NoError(t, err)
	assert.Equal(t, 0x1000, entry)

	out, err := disassembler.Disassemble(mem, 0x1000, 0x100A, entry)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"001000  loc_001000 +JSUB    sub_001007",
		"001004             J        loc_001000",
		"001007  sub_001007 RSUB",
	}, "\n")+"\n", out)
}
