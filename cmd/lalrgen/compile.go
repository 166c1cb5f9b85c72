package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	verr "github.com/nihei9/lalrgen/error"
	"github.com/nihei9/lalrgen/grammar"
	"github.com/nihei9/lalrgen/report"
	spec "github.com/nihei9/lalrgen/spec/grammar"
	"github.com/spf13/cobra"
)

var compileFlags = struct {
	output   *string
	report   *string
	verbose  *string
	expectSR *int
	expectRR *int
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile",
		Short:   "Compile a grammar model into a parsing table",
		Example: `  lalrgen compile grammar.json -o table.json --verbose y.output`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runCompile,
	}
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	compileFlags.report = cmd.Flags().String("report", "", "write the report in JSON to this file")
	compileFlags.verbose = cmd.Flags().String("verbose", "", "write the report in the y.output format to this file")
	compileFlags.expectSR = cmd.Flags().Int("expect-sr", -1, "fail unless the grammar has exactly this many shift/reduce conflicts")
	compileFlags.expectRR = cmd.Flags().Int("expect-rr", -1, "fail unless the grammar has exactly this many reduce/reduce conflicts")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) (retErr error) {
	var grmPath string
	if len(args) > 0 {
		grmPath = args[0]
	}
	defer func() {
		if retErr != nil {
			specErrs, ok := retErr.(verr.SpecErrors)
			if ok {
				for _, err := range specErrs {
					if grmPath != "" {
						err.SourceName = grmPath
					} else {
						err.SourceName = "stdin"
					}
				}
			}
		}
	}()

	var src io.Reader
	if grmPath == "" {
		src = cmd.InOrStdin()
	} else {
		f, err := os.Open(grmPath)
		if err != nil {
			return fmt.Errorf("Cannot open the grammar file %s: %w", grmPath, err)
		}
		defer f.Close()
		src = f
	}

	gram, err := readGrammar(src)
	if err != nil {
		return err
	}

	cgram, rep, err := grammar.Compile(gram, grammar.EnableReporting())
	if err != nil {
		return err
	}

	err = writeOutput(*compileFlags.output, cmd.OutOrStdout(), func(w io.Writer) error {
		return writeJSON(w, cgram)
	})
	if err != nil {
		return fmt.Errorf("Cannot write the parsing table: %w", err)
	}
	log.Infof("grammar %v: %v states, fingerprint %v", cgram.Name, cgram.ParsingTable.StateCount, cgram.Fingerprint)
	if *compileFlags.report != "" {
		err := writeOutput(*compileFlags.report, nil, func(w io.Writer) error {
			return writeJSON(w, rep)
		})
		if err != nil {
			return fmt.Errorf("Cannot write the report: %w", err)
		}
	}
	if *compileFlags.verbose != "" {
		err := writeOutput(*compileFlags.verbose, nil, func(w io.Writer) error {
			return report.Write(w, rep)
		})
		if err != nil {
			return fmt.Errorf("Cannot write the description: %w", err)
		}
	}

	printSummary(cmd.ErrOrStderr(), gram.Name(), rep)

	return checkConflictCounts(rep, *compileFlags.expectSR, *compileFlags.expectRR)
}

func readGrammar(r io.Reader) (*grammar.Grammar, error) {
	m, err := spec.ReadGrammarModel(r)
	if err != nil {
		return nil, err
	}

	b := grammar.GrammarBuilder{
		Model: m,
	}
	return b.Build()
}

// writeOutput opens path and passes it to write. When path is empty, write receives def.
func writeOutput(path string, def io.Writer, write func(w io.Writer) error) error {
	if path == "" {
		return write(def)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	return write(f)
}

func writeJSON(w io.Writer, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%v\n", string(b))
	return err
}

// printSummary prints the numbers of rules never reduced and of counted conflicts like yacc does.
// Nothing is printed for a grammar free of both.
func printSummary(w io.Writer, name string, rep *spec.Report) {
	warn := color.New(color.FgYellow, color.Bold)

	if rep.UnusedRuleCount > 0 {
		warn.Fprintf(w, "%v: ", name)
		fmt.Fprintf(w, "%v never reduced\n", pluralize(rep.UnusedRuleCount, "rule"))
	}

	if rep.SRConflictCount == 0 && rep.RRConflictCount == 0 {
		return
	}
	warn.Fprintf(w, "%v: ", name)
	if rep.SRConflictCount > 0 {
		fmt.Fprintf(w, "%v", pluralize(rep.SRConflictCount, "shift/reduce conflict"))
	}
	if rep.SRConflictCount > 0 && rep.RRConflictCount > 0 {
		fmt.Fprintf(w, ", ")
	}
	if rep.RRConflictCount > 0 {
		fmt.Fprintf(w, "%v", pluralize(rep.RRConflictCount, "reduce/reduce conflict"))
	}
	fmt.Fprintf(w, ".\n")
}

// checkConflictCounts fails when a count differs from its expectation. A negative expectation
// accepts any count.
func checkConflictCounts(rep *spec.Report, expectSR, expectRR int) error {
	if expectSR >= 0 && rep.SRConflictCount != expectSR {
		return fmt.Errorf("expected %v, but found %v", pluralize(expectSR, "shift/reduce conflict"), rep.SRConflictCount)
	}
	if expectRR >= 0 && rep.RRConflictCount != expectRR {
		return fmt.Errorf("expected %v, but found %v", pluralize(expectRR, "reduce/reduce conflict"), rep.RRConflictCount)
	}
	return nil
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %v", noun)
	}
	return fmt.Sprintf("%v %vs", n, noun)
}
