package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"quill/internal/diag"
	"quill/internal/source"
)

type palette struct {
	sev    map[diag.Severity]*color.Color
	code   *color.Color
	path   *color.Color
	gutter *color.Color
	caret  *color.Color
	note   *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   mk(color.FgRed, color.Bold),
			diag.SevWarning: mk(color.FgYellow, color.Bold),
			diag.SevInfo:    mk(color.FgCyan, color.Bold),
		},
		code:   mk(color.Bold),
		path:   mk(color.FgWhite, color.Bold),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgRed, color.Bold),
		note:   mk(color.FgGreen),
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	ew := &errWriter{w: w}
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			ew.printf("\n")
		}
		prettyOne(ew, d, fs, opts, p)
	}
	return ew.err
}

func prettyOne(w *errWriter, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	sev := p.sev[d.Severity]
	if sev == nil {
		sev = p.sev[diag.SevError]
	}
	f := fileOf(fs, d)
	if f != nil {
		start, _ := fs.Resolve(d.Primary)
		w.printf("%s: ", p.path.Sprintf("%s:%d:%d", displayPath(f, opts.PathMode, opts.BaseDir), start.Line, start.Col))
	}
	w.printf("%s %s: %s\n", sev.Sprint(strings.ToUpper(d.Severity.String())), p.code.Sprint(d.Code.ID()), d.Message)
	if f != nil {
		excerpt(w, f, fs, d.Primary, opts, p)
	}
	if !opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		if f != nil && validSpan(fs, n.Span) {
			nf := fs.Get(n.Span.File)
			start, _ := fs.Resolve(n.Span)
			w.printf("  %s %s: %s\n", p.note.Sprint("= note:"), displayPath(nf, opts.PathMode, opts.BaseDir)+fmt.Sprintf(":%d:%d", start.Line, start.Col), n.Msg)
			continue
		}
		w.printf("  %s %s\n", p.note.Sprint("= note:"), n.Msg)
	}
}

// excerpt prints the primary line with opts.Context lines around it and a
// caret line under the span.
func excerpt(w *errWriter, f *source.File, fs *source.FileSet, sp source.Span, opts PrettyOpts, p palette) {
	start, end := fs.Resolve(sp)
	last, err := safecast.Conv[uint32](len(f.LineIdx) + 1)
	if err != nil {
		return
	}
	ctx, err := safecast.Conv[uint32](max(opts.Context, 0))
	if err != nil {
		ctx = 0
	}
	from := max(start.Line, 1+ctx) - ctx
	to := min(start.Line+ctx, last)
	gw := len(fmt.Sprint(to))

	for n := from; n <= to; n++ {
		text := expandTabs(f.Line(n))
		if opts.Width > 0 {
			text = runewidth.Truncate(text, opts.Width, "…")
		}
		w.printf("%s %s\n", p.gutter.Sprintf("%*d |", gw, n), text)
		if n != start.Line {
			continue
		}
		line := f.Line(n)
		col := int(start.Col) - 1
		if col > len(line) {
			col = len(line)
		}
		stop := len(line)
		if end.Line == start.Line {
			stop = min(int(end.Col)-1, len(line))
		}
		pad := runewidth.StringWidth(expandTabs(line[:col]))
		width := 1
		if stop > col {
			width = max(runewidth.StringWidth(expandTabs(line[col:stop])), 1)
		}
		w.printf("%s %s%s\n", p.gutter.Sprintf("%*s |", gw, ""), strings.Repeat(" ", pad), p.caret.Sprint("^"+strings.Repeat("~", width-1)))
	}
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

func fileOf(fs *source.FileSet, d diag.Diagnostic) *source.File {
	if d.Unlocated || fs == nil || !validSpan(fs, d.Primary) {
		return nil
	}
	return fs.Get(d.Primary.File)
}

func validSpan(fs *source.FileSet, sp source.Span) bool {
	return fs != nil && int(sp.File) < fs.Len()
}

// errWriter keeps the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
