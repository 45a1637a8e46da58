package diagfmt

import (
	"fmt"
	"io"

	"quill/internal/diag"
	"quill/internal/source"
)

// Short writes one "path:line:col: severity CODE: message" line per
// diagnostic, the form editors parse.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, mode PathMode, baseDir string) error {
	ew := &errWriter{w: w}
	for _, d := range bag.Items() {
		if f := fileOf(fs, d); f != nil {
			start, _ := fs.Resolve(d.Primary)
			ew.printf("%s:%d:%d: ", displayPath(f, mode, baseDir), start.Line, start.Col)
		}
		ew.printf("%s %s: %s\n", d.Severity, d.Code.ID(), d.Message)
	}
	return ew.err
}

// Summary writes "N errors, M warnings" for bag, or nothing when it holds
// neither.
func Summary(w io.Writer, bag *diag.Bag) error {
	var errs, warns int
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	if errs == 0 && warns == 0 {
		return nil
	}
	_, err := fmt.Fprintf(w, "%s, %s\n", plural(errs, "error"), plural(warns, "warning"))
	return err
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
