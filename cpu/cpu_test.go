package cpu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Urethramancer/sicxe/cpu"
)

func TestTableLookups(t *testing.T) {
	tab := cpu.NewTable()

	tests := []struct {
		name   string
		opcode byte
		format cpu.Format
	}{
		{"LDA", 0x00, cpu.Format34},
		{"RSUB", 0x4C, cpu.Format3},
		{"COMPF", 0x88, cpu.Format34},
		{"FIX", 0xC4, cpu.Format1},
		{"SVC", 0xB0, cpu.Format2Num},
		{"CLEAR", 0xB4, cpu.Format2Reg},
		{"SHIFTL", 0xA4, cpu.Format2RegNum},
		{"RMO", 0xAC, cpu.Format2RegReg},
		{"TIO", 0xF8, cpu.Format1},
	}
	for _, tc := range tests {
		mn, ok := tab.Instruction(tc.name)
		require.True(t, ok, tc.name)
		assert.Equal(t, tc.opcode, mn.Opcode, tc.name)
		assert.Equal(t, tc.format, mn.Format, tc.name)

		back, ok := tab.Opcode(tc.opcode | 3)
		require.True(t, ok, tc.name)
		assert.Equal(t, tc.name, back.Name)
	}

	_, ok := tab.Instruction("lda")
	assert.False(t, ok, "mnemonics are case-sensitive")

	d, ok := tab.Directive("EXTDEF")
	require.True(t, ok)
	assert.Equal(t, cpu.DirExtDef, d.Kind)
	assert.Equal(t, cpu.ShapeSymbolList, d.Shape)

	r, ok := tab.Register("SW")
	require.True(t, ok)
	assert.Equal(t, cpu.SW, r)
	assert.Equal(t, "T", cpu.T.String())
	assert.False(t, cpu.Register(7).Valid())
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, 1, cpu.Format1.Size(false))
	assert.Equal(t, 2, cpu.Format2RegReg.Size(false))
	assert.Equal(t, 3, cpu.Format3.Size(false))
	assert.Equal(t, 3, cpu.Format34.Size(false))
	assert.Equal(t, 4, cpu.Format34.Size(true))
}

func TestFlags(t *testing.T) {
	var f cpu.Flags
	assert.True(t, f.IsSIC())
	assert.True(t, f.IsSimple())

	f.SetNI(3)
	assert.Equal(t, cpu.Simple, f)
	assert.False(t, f.IsSIC())
	assert.True(t, f.IsSimple())

	f.SetNI(1)
	assert.True(t, f.IsImmediate())
	assert.False(t, f.IsSimple())

	f.Set(cpu.FlagIndexed, true)
	assert.False(t, f.IsValid(), "indexed immediate")

	f.SetNI(3)
	assert.True(t, f.IsValid())
	f.Set(cpu.FlagPCRelative|cpu.FlagBaseRelative, true)
	assert.False(t, f.IsValid())
	f.Set(cpu.FlagBaseRelative, false)
	assert.True(t, f.IsValid())

	assert.Equal(t, byte(3), f.NI())
	assert.Equal(t, byte(0xA), f.XBPE())
	assert.Equal(t, "nix-p-", f.String())
	assert.Equal(t, f, cpu.FlagsFromBytes(0x03, 0xA0))
}

func TestMemoryWords(t *testing.T) {
	mem := cpu.NewMemory(16)
	require.NoError(t, mem.SetWord(3, 0x123456))
	w, err := mem.Word(3)
	require.NoError(t, err)
	assert.Equal(t, 0x123456, w)

	b, err := mem.Byte(4)
	require.NoError(t, err)
	assert.Equal(t, byte(0x34), b)

	assert.Error(t, mem.SetWord(14, 1))
	_, err = mem.Byte(-1)
	assert.Error(t, err)

	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF}, cpu.WordToBytes(-1))
	assert.Equal(t, -1, cpu.SignExtend(0xFFF, 12))
	assert.Equal(t, 2047, cpu.SignExtend(0x7FF, 12))
}
