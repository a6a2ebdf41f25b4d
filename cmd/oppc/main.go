package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"opp/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "oppc",
	Short:         "Semantic checker for opp programs",
	Long:          `oppc checks parsed opp programs (JSON or YAML AST documents) and reports semantic errors`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		runTraceCleanup()
	},
}

// errDiagnostics signals that the check produced error diagnostics; they
// were already printed.
var errDiagnostics = errors.New("semantic errors found")

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)

	addGlobalFlags(rootCmd.PersistentFlags())
}

// addGlobalFlags declares the flags shared by every subcommand.
func addGlobalFlags(pf *pflag.FlagSet) {
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics per file")
	pf.String("format", "pretty", "diagnostics format (pretty|plain|short|json)")
	pf.Int("context", 0, "source lines of context around pretty diagnostics")
	pf.Bool("notes", true, "show diagnostic notes")
	pf.Bool("sort-diagnostics", false, "order diagnostics by position and drop duplicates")
	pf.Int("jobs", 0, "max parallel workers for directory checks (0=auto)")
	pf.Bool("cache", false, "reuse results from the disk cache")
	pf.Bool("no-cache", false, "disable the disk cache even when opp.toml enables it")
	pf.String("cache-dir", "", "disk cache directory (default: user cache dir)")
	pf.String("ui", "auto", "progress UI for directory checks (auto|on|off)")
	pf.Bool("require-entry", false, "report programs without a main class constructor call")
	pf.Bool("validate", false, "verify symbol table invariants after scope building")

	pf.String("trace", "", "write execution trace to file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "ring", "trace storage mode (stream|ring|both)")
	pf.String("trace-format", "auto", "trace output format (auto|text|ndjson)")
	pf.Int("trace-ring-size", 4096, "trace ring buffer capacity")
	pf.Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0=off)")
}

func main() {
	defer dumpTraceOnPanic()
	err := rootCmd.Execute()
	runTraceCleanup()
	if err == nil {
		return
	}
	if !errors.Is(err, errDiagnostics) {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(1)
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
