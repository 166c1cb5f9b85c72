package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

const (
	envLogVerbosity = "LALRGEN_LOG_VERBOSITY"
	envLogFile      = "LALRGEN_LOG_FILE"
)

var log = commonlog.GetLogger("lalrgen")

var rootFlags = struct {
	logVerbosity *int
	logFile      *string
}{}

var rootCmd = &cobra.Command{
	Use:   "lalrgen",
	Short: "Generate an LALR(1) parsing table from a grammar",
	Long: `lalrgen provides two features:
- Compiles a grammar model (JSON) into an LALR(1) parsing table and reports its conflicts.
- Prints a report in the format of yacc's y.output.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: configureLogging,
}

func init() {
	rootFlags.logVerbosity = rootCmd.PersistentFlags().Int("log-verbosity", 0, "log verbosity; a higher value prints more (env "+envLogVerbosity+")")
	rootFlags.logFile = rootCmd.PersistentFlags().String("log-file", "", "log file path (default stderr) (env "+envLogFile+")")
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}

// configureLogging sets up commonlog. A flag takes priority over the environment, and a .env file
// in the working directory can supply the environment.
func configureLogging(cmd *cobra.Command, args []string) error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("Cannot load the .env file: %w", err)
	}

	verbosity := *rootFlags.logVerbosity
	if !cmd.Flags().Changed("log-verbosity") {
		if v, ok := os.LookupEnv(envLogVerbosity); ok {
			verbosity, err = strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%v must be an integer: %w", envLogVerbosity, err)
			}
		}
	}

	var path *string
	logFile := *rootFlags.logFile
	if !cmd.Flags().Changed("log-file") {
		if v, ok := os.LookupEnv(envLogFile); ok {
			logFile = v
		}
	}
	if logFile != "" {
		path = &logFile
	}

	commonlog.Configure(verbosity, path)
	log.Debugf("log verbosity: %v", verbosity)

	return nil
}
