package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vectorflow/vector/pkg/log"
	"github.com/vectorflow/vector/pkg/verrors"

	_ "github.com/vectorflow/vector/pkg/adapters"
)

// Version information (set via ldflags during build).
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "vector: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

var rootCmd = &cobra.Command{
	Use:     "vector",
	Short:   "Vector is an observability data router",
	Long:    "Vector connects sources, transforms, and sinks into a hot-reloadable dataflow topology.",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("vector version %s (%s)\n", Version, Commit))

	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "output logs as JSON instead of console format")
	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(runCmd, validateCmd, testCmd, graphCmd)
}

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonOutput, _ := rootCmd.PersistentFlags().GetBool("log-json")
	log.Init(log.Config{Level: log.Level(level), JSONOutput: jsonOutput})
}

// exitCodeFor maps an error to the process exit code spec §6 names: 0 success
// (never reached here, only non-nil errors are), 78 config error, 1 anything else.
func exitCodeFor(err error) int {
	var multi *verrors.MultiError
	if errors.As(err, &multi) {
		return multi.ExitCode()
	}
	if kind, ok := verrors.KindOf(err); ok {
		return kind.ExitCode()
	}
	return 1
}
