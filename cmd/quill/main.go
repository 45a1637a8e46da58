package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"quill/internal/version"
)

// errDiagnostics signals that the run reported errors that were already
// printed.
var errDiagnostics = errors.New("compilation reported errors")

var rootCmd = &cobra.Command{
	Use:           "quill",
	Short:         "Quill template compiler",
	Long:          `Quill compiles .quill views and .qcomp components into C# sources`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupColor(cmd); err != nil {
			return err
		}
		stopTrace, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		stopProf, err := setupProfiling(cmd)
		if err != nil {
			stopTrace()
			return err
		}
		cleanup = func() {
			stopProf()
			stopTrace()
		}
		return nil
	},
}

// cleanup is installed by PersistentPreRunE and run once main is done.
var cleanup = func() {}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(diagCmd)
	rootCmd.AddCommand(tagHelpersCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show phase timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics per document (0=unlimited)")
	flags.String("config", "", "path to quill.toml (default: search upwards from the first path)")

	flags.String("lang-version", "", "override [project].language_version")
	flags.String("root-namespace", "", "override [project].root_namespace")
	flags.Bool("design-time", false, "generate design-time code")
	flags.String("file-kind", "", "treat every input as legacy|component|component-import")
	flags.Int("jobs", 0, "max parallel documents (0=auto)")
	flags.Bool("cache", false, "reuse outputs from the disk cache")

	flags.String("trace", "", "write trace events to file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|document|phase|debug)")
	flags.String("trace-mode", "ring", "trace storage (stream|ring|both)")
	flags.String("trace-format", "auto", "trace format (auto|text|ndjson|chrome)")
	flags.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	flags.Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0=off)")

	flags.String("cpu-profile", "", "write a CPU profile to file")
	flags.String("mem-profile", "", "write a heap profile to file on exit")
	flags.String("runtime-trace", "", "write a Go runtime execution trace to file")
}

func main() {
	err := rootCmd.Execute()
	cleanup()
	if err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintf(os.Stderr, "quill: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// setupColor applies --color to the fatih/color switch every printer reads.
func setupColor(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.ToLower(mode) {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto", "":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}
