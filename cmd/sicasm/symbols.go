package main

import (
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Urethramancer/sicxe/assembler"
)

var symbolsFormat string

var symbolsCmd = &cobra.Command{
	Use:   "symbols [flags] SOURCE",
	Short: "Print the symbol table of every section",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, p, err := readSource(args[0])
		if err != nil {
			return err
		}
		return writeReport(os.Stdout, assembler.Report(p), symbolsFormat)
	},
}

func init() {
	symbolsCmd.Flags().StringVar(&symbolsFormat, "format", "yaml", "output format (yaml or json)")
}

func writeReport(w io.Writer, r assembler.ProgramReport, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
		enc.SetIndent("", "    ")
		return enc.Encode(r)
	}
	return errors.Errorf("unknown format %q", format)
}
