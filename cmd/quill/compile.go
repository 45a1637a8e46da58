package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"quill/internal/config"
	"quill/internal/driver"
	"quill/internal/ir"
	"quill/internal/observ"
	"quill/internal/ui"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] [file.quill|file.qcomp|directory]...",
	Short: "Compile templates into C# sources",
	Long: `Compile views and components into C# sources. Directories contribute
every .quill and .qcomp file below them; no arguments compiles the project
the current directory belongs to.`,
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().StringP("out", "o", "", "write <path>.g.cs files below this directory instead of stdout")
	compileCmd.Flags().Bool("emit-ir", false, "print the intermediate representation of every document")
	compileCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	addReportFlags(compileCmd)
}

// compilation is one finished driver run.
type compilation struct {
	cfg     config.Config
	session *driver.Session
	results []*driver.Result
}

// runCompilation loads the project of args and compiles it, with the
// progress view when uiValue allows one.
func runCompilation(cmd *cobra.Command, args []string, uiValue string) (*compilation, error) {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return nil, err
	}
	opts, err := driverOptions(cmd, cfg, args)
	if err != nil {
		return nil, err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return nil, err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}

	useUI := !quiet && shouldUseTUI(mode)
	var events chan ui.Event
	if useUI {
		events = attachProgress(&opts)
	}
	s, err := driver.NewSession(opts)
	if err != nil {
		return nil, err
	}

	c := &compilation{cfg: cfg, session: s}
	if !useUI {
		c.results, err = s.CompileAll(cmd.Context())
		return c, err
	}
	files, err := s.Expand(opts.Paths)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("compiling %d documents", len(files))
	c.results, err = compileWithUI(cmd.Context(), title, files, s, events)
	return c, err
}

func runCompile(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	outDir, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}
	emitIR, err := cmd.Flags().GetBool("emit-ir")
	if err != nil {
		return fmt.Errorf("failed to get emit-ir flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	report, err := readReportOptions(cmd)
	if err != nil {
		return err
	}

	c, err := runCompilation(cmd, args, uiValue)
	if err != nil {
		dumpTrace("error")
		return err
	}

	out := cmd.OutOrStdout()
	for _, r := range c.results {
		if emitIR {
			if err := emitDocumentIR(out, r); err != nil {
				return err
			}
		}
		if r.Output == "" {
			continue
		}
		if outDir != "" {
			if err := writeOutput(outDir, r); err != nil {
				return err
			}
			continue
		}
		if len(c.results) > 1 {
			fmt.Fprintf(out, "// ---- %s ----\n", r.Path)
		}
		if _, err := io.WriteString(out, r.Output); err != nil {
			return err
		}
	}

	return finishReport(cmd, cmd.ErrOrStderr(), c, report)
}

// finishReport prints diagnostics and timings and turns errors into the
// exit status.
func finishReport(cmd *cobra.Command, w io.Writer, c *compilation, report reportOptions) error {
	bag := collectDiagnostics(c.results, report)
	if err := writeDiagnostics(w, bag, c.session.Files, c.cfg.Root, report); err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	if showTimings && !report.quiet {
		printTimings(cmd.ErrOrStderr(), c.results)
	}
	if bag.HasErrors() {
		return errDiagnostics
	}
	return nil
}

// outputName maps a document onto its generated file below dir.
func outputName(dir, docPath string) string {
	return filepath.Join(dir, filepath.FromSlash(docPath)+".g.cs")
}

func writeOutput(dir string, r *driver.Result) error {
	name := outputName(dir, r.Path)
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}
	return os.WriteFile(name, []byte(r.Output), 0o644)
}

func emitDocumentIR(w io.Writer, r *driver.Result) error {
	fmt.Fprintf(w, "== IR %s ==\n", r.Path)
	switch {
	case r.Cached:
		_, err := fmt.Fprintln(w, "(from disk cache)")
		return err
	case r.Document == nil || r.Document.IR() == nil:
		_, err := fmt.Fprintln(w, "(none)")
		return err
	}
	return ir.Dump(w, r.Document.IR())
}

// printTimings sums the phase reports of every compiled document.
func printTimings(w io.Writer, results []*driver.Result) {
	var totals observ.Totals
	for _, r := range results {
		if r != nil && r.Timing != nil {
			totals.Add(*r.Timing)
		}
	}
	if totals.Documents == 0 {
		return
	}
	fmt.Fprintf(w, "%d documents, %s", totals.Documents, totals.Report().Summary())
}
