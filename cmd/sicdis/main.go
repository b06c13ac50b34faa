package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Urethramancer/sicxe/cpu"
	"github.com/Urethramancer/sicxe/disassembler"
	"github.com/Urethramancer/sicxe/object"
)

var (
	loadAddress int
	memorySize  int
	outputFile  string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:           "sicdis [flags] OBJECT",
	Short:         "Load a SIC/XE object program and disassemble it",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		lvl, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return errors.Wrap(err, "invalid log level")
		}
		logrus.SetLevel(lvl)
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableColors:    !term.IsTerminal(int(os.Stderr.Fd())),
			DisableTimestamp: true,
		})
		return nil
	},
	RunE: disassemble,
}

func init() {
	f := rootCmd.Flags()
	f.IntVarP(&loadAddress, "address", "a", -1, "load address (default: the address in the first H record)")
	f.IntVar(&memorySize, "memory", cpu.MaxAddress, "memory size in bytes")
	f.StringVarP(&outputFile, "output", "o", "", "write the disassembly to a file instead of standard output")
	f.StringVar(&logLevel, "log-level", "warning", "log messages above specified level")
}

func disassemble(cmd *cobra.Command, args []string) error {
	in, err := os.Open(args[0])
	if err != nil {
		return errors.Wrapf(err, "error reading object file %s", args[0])
	}
	defer in.Close()

	f, err := object.Parse(in)
	if err != nil {
		return errors.Wrap(err, args[0])
	}

	addr := loadAddress
	if addr < 0 {
		addr = f.LoadAddress()
	}
	mem := cpu.NewMemory(memorySize)
	entry, err := object.Load(f, mem, addr)
	if err != nil {
		return err
	}
	end := addr
	for _, s := range f.Sections {
		end += s.Length
	}
	logrus.WithFields(logrus.Fields{
		"sections": len(f.Sections),
		"start":    fmt.Sprintf("%06X", addr),
		"end":      fmt.Sprintf("%06X", end),
		"entry":    fmt.Sprintf("%06X", entry),
	}).Debug("object loaded")

	text, err := disassembler.Disassemble(mem, addr, end, entry)
	if err != nil {
		return err
	}

	if outputFile == "" {
		fmt.Print(text)
		return nil
	}
	if err := os.WriteFile(outputFile, []byte(text), 0644); err != nil {
		return errors.Wrapf(err, "cannot write %s", outputFile)
	}
	logrus.WithField("file", outputFile).Info("disassembly written")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
