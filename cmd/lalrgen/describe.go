package main

import (
	"fmt"
	"os"

	"github.com/nihei9/lalrgen/report"
	spec "github.com/nihei9/lalrgen/spec/grammar"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "describe",
		Short:   "Print a report file in the y.output format",
		Example: `  lalrgen describe report.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runDescribe,
	}
	rootCmd.AddCommand(cmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	rep, err := readReport(args[0])
	if err != nil {
		return err
	}

	return report.Write(cmd.OutOrStdout(), rep)
}

func readReport(path string) (*spec.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the report file %s: %w", path, err)
	}
	defer f.Close()

	return spec.ReadReport(f)
}
