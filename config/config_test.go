package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sicasm.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	lvl, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, lvl)
}

func TestLoadOverrides(t *testing.T) {
	path := writeFile(t, `listing = true
log_level = "debug"
object_suffix = ".o"
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.True(t, c.Listing)
	assert.False(t, c.Tree)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, ".o", c.ObjectSuffix)
	assert.Equal(t, ".lst", c.ListingSuffix)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name, contents string
	}{
		{"syntax", "listing = \n"},
		{"unknown key", "colour = true\n"},
		{"bad level", "log_level = \"loud\"\n"},
		{"wrong type", "tree = \"yes\"\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.contents))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestWriteRoundTrip(t *testing.T) {
	c := Default()
	c.Tree = true
	var buf bytes.Buffer
	require.NoError(t, c.Write(&buf))
	back, err := Load(writeFile(t, buf.String()))
	require.NoError(t, err)
	assert.Equal(t, c, back)
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "prog.obj", OutputPath("prog.asm", ".obj"))
	assert.Equal(t, "dir/prog.lst", OutputPath("dir/prog", ".lst"))
}
