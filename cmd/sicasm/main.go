package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/Urethramancer/sicxe/assembler"
	"github.com/Urethramancer/sicxe/config"
)

var (
	configPath string
	logLevel   string
	outputFile string
	listing    bool
	tree       bool

	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:           "sicasm [flags] SOURCE",
	Short:         "Assemble SIC/XE source into an object program",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return before(cmd.Flags())
	},
	RunE: assemble,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "TOML settings file")
	pf.StringVar(&logLevel, "log-level", "", "log messages above specified level (trace, debug, info, warning, error)")

	f := rootCmd.Flags()
	f.StringVarP(&outputFile, "output", "o", "", "object file path, \"-\" for standard output")
	f.BoolVarP(&listing, "listing", "l", false, "also write a listing file")
	f.BoolVar(&tree, "tree", false, "print the syntax tree to standard output")

	rootCmd.AddCommand(symbolsCmd)
}

// before loads the settings file, applies flag overrides and sets up logging.
func before(flags *pflag.FlagSet) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = c
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("listing") {
		cfg.Listing = listing
	}
	if flags.Changed("tree") {
		cfg.Tree = tree
	}

	lvl, err := cfg.Level()
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableColors:    !term.IsTerminal(int(os.Stderr.Fd())),
		DisableTimestamp: true,
	})
	return nil
}

func readSource(path string) (*assembler.Assembler, *assembler.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "error reading source file %s", path)
	}
	asm := assembler.New(assembler.WithLogger(logrus.WithField("file", path)))
	p, err := asm.Build(string(data))
	if err != nil {
		return nil, nil, errors.Wrap(err, path)
	}
	return asm, p, nil
}

func assemble(cmd *cobra.Command, args []string) error {
	src := args[0]
	asm, p, err := readSource(src)
	if err != nil {
		return err
	}

	if cfg.Tree {
		if err := asm.WriteTree(os.Stdout, p); err != nil {
			return err
		}
	}

	out := outputFile
	if out == "" {
		out = config.OutputPath(src, cfg.ObjectSuffix)
	}
	if err := writeFile(out, func(f *os.File) error { return asm.WriteObject(f, p) }); err != nil {
		return err
	}
	logrus.WithField("file", out).Info("object program written")

	if cfg.Listing {
		lst := config.OutputPath(src, cfg.ListingSuffix)
		if err := writeFile(lst, func(f *os.File) error { return asm.WriteListing(f, p) }); err != nil {
			return err
		}
		logrus.WithField("file", lst).Info("listing written")
	}
	return nil
}

// writeFile creates path, or uses standard output for "-", and hands it to fn.
// A failed write removes the partial file.
func writeFile(path string, fn func(*os.File) error) error {
	if path == "-" {
		return fn(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create %s", path)
	}
	err = fn(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			logrus.Debugf("unable to remove %s: %q", path, rmErr)
		}
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
