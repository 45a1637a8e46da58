package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"quill/internal/diag"
	"quill/internal/diagfmt"
	"quill/internal/driver"
	"quill/internal/source"
	"quill/internal/version"
)

type reportOptions struct {
	format           string
	withNotes        bool
	fullPath         bool
	context          int
	noWarnings       bool
	warningsAsErrors bool
	quiet            bool
}

// addReportFlags registers the diagnostic output flags shared by compile
// and diag.
func addReportFlags(c *cobra.Command) {
	c.Flags().String("format", "pretty", "diagnostic format (pretty|short|json|sarif)")
	c.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	c.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	c.Flags().Int("context", 0, "source lines shown around each pretty diagnostic")
	c.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	c.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
}

func readReportOptions(cmd *cobra.Command) (reportOptions, error) {
	var (
		opts reportOptions
		err  error
	)
	if opts.format, err = cmd.Flags().GetString("format"); err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	opts.format = strings.ToLower(opts.format)
	switch opts.format {
	case "pretty", "short", "json", "sarif":
	default:
		return opts, fmt.Errorf("unknown format: %s", opts.format)
	}
	if opts.withNotes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return opts, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if opts.fullPath, err = cmd.Flags().GetBool("fullpath"); err != nil {
		return opts, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if opts.context, err = cmd.Flags().GetInt("context"); err != nil {
		return opts, fmt.Errorf("failed to get context flag: %w", err)
	}
	if opts.noWarnings, err = cmd.Flags().GetBool("no-warnings"); err != nil {
		return opts, fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	if opts.warningsAsErrors, err = cmd.Flags().GetBool("warnings-as-errors"); err != nil {
		return opts, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if opts.noWarnings && opts.warningsAsErrors {
		return opts, fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	if opts.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return opts, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	return opts, nil
}

// collectDiagnostics merges the bags of results in order, applying the
// warning flags. Timing records only reach the machine formats; the others
// print a summary instead.
func collectDiagnostics(results []*driver.Result, opts reportOptions) *diag.Bag {
	keepTimings := opts.format == "json" || opts.format == "sarif"
	out := diag.NewBag(0)
	for _, r := range results {
		if r == nil || r.Bag == nil {
			continue
		}
		for _, d := range r.Bag.Items() {
			if d.Code == diag.ObsTimings && !keepTimings {
				continue
			}
			if d.Severity == diag.SevWarning {
				if opts.noWarnings {
					continue
				}
				if opts.warningsAsErrors {
					d.Severity = diag.SevError
				}
			}
			out.Add(d)
		}
	}
	return out
}

// writeDiagnostics renders bag in the chosen format.
func writeDiagnostics(w io.Writer, bag *diag.Bag, files *source.FileSet, root string, opts reportOptions) error {
	mode := diagfmt.PathModeAuto
	if opts.fullPath {
		mode = diagfmt.PathModeAbsolute
	}
	switch opts.format {
	case "short":
		return diagfmt.Short(w, bag, files, mode, root)
	case "json":
		return diagfmt.JSON(w, bag, files, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         mode,
			BaseDir:          root,
			IncludeNotes:     opts.withNotes,
		})
	case "sarif":
		return diagfmt.Sarif(w, bag, files, diagfmt.SarifRunMeta{
			ToolName:       "quill",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
			PathMode:       mode,
			BaseDir:        root,
		})
	}

	width := 0
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil {
			width = cols
		}
	}
	if err := diagfmt.Pretty(w, bag, files, diagfmt.PrettyOpts{
		Color:     !color.NoColor,
		Context:   opts.context,
		PathMode:  mode,
		BaseDir:   root,
		Width:     width,
		ShowNotes: opts.withNotes,
	}); err != nil {
		return err
	}
	if opts.quiet {
		return nil
	}
	return diagfmt.Summary(w, bag)
}
