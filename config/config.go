// Package config holds the assembler settings that can live in a TOML file.
// Command-line flags override whatever is loaded here.
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Config is the decoded settings file.
type Config struct {
	// Listing writes a listing next to the object file.
	Listing bool `toml:"listing"`
	// Tree prints the syntax tree to standard output.
	Tree          bool   `toml:"tree"`
	LogLevel      string `toml:"log_level"`
	ObjectSuffix  string `toml:"object_suffix"`
	ListingSuffix string `toml:"listing_suffix"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel:      "warning",
		ObjectSuffix:  ".obj",
		ListingSuffix: ".lst",
	}
}

// Load reads a TOML file on top of the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading configuration file %s", path)
	}
	md, err := toml.Decode(string(contents), c)
	if err != nil {
		return nil, errors.Wrapf(err, "error decoding configuration file %s", path)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, errors.Errorf("unknown key %q in configuration file %s", keys[0].String(), path)
	}
	if _, err := c.Level(); err != nil {
		return nil, errors.Wrapf(err, "configuration file %s", path)
	}
	return c, nil
}

// Write encodes c as TOML.
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Level parses LogLevel.
func (c *Config) Level() (logrus.Level, error) {
	return logrus.ParseLevel(c.LogLevel)
}

// OutputPath swaps the extension of src for suffix.
func OutputPath(src, suffix string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + suffix
}
