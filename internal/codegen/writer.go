package codegen

import (
	"strings"

	"quill/internal/lang"
	"quill/internal/source"
)

// CodeWriter accumulates text with indentation and newline settings taken
// from lang.CodeGenOptions.
type CodeWriter struct {
	opts        lang.CodeGenOptions
	sb          strings.Builder
	level       int
	atLineStart bool
	mappings    []SourceMapping
}

// NewCodeWriter creates an empty writer.
func NewCodeWriter(opts lang.CodeGenOptions) *CodeWriter {
	return &CodeWriter{opts: opts, atLineStart: true}
}

// Options returns the generation options.
func (w *CodeWriter) Options() lang.CodeGenOptions { return w.opts }

// Len is the number of bytes written so far.
func (w *CodeWriter) Len() int { return w.sb.Len() }

// Indent increases the indentation level for subsequent lines.
func (w *CodeWriter) Indent() { w.level++ }

// Dedent decreases the indentation level.
func (w *CodeWriter) Dedent() {
	if w.level > 0 {
		w.level--
	}
}

func (w *CodeWriter) indentation() string {
	if w.opts.IndentWithTabs {
		return strings.Repeat("\t", w.level)
	}
	return strings.Repeat(" ", w.level*w.opts.IndentSize)
}

// Write appends s, indenting at the start of a line.
func (w *CodeWriter) Write(s string) *CodeWriter {
	if s == "" {
		return w
	}
	if w.atLineStart {
		w.sb.WriteString(w.indentation())
		w.atLineStart = false
	}
	w.sb.WriteString(s)
	return w
}

// WriteLine appends s and a newline.
func (w *CodeWriter) WriteLine(s string) *CodeWriter {
	w.Write(s)
	w.sb.WriteString(w.opts.NewLine.String())
	w.atLineStart = true
	return w
}

// WriteMapped appends s and records that it came from sp.
func (w *CodeWriter) WriteMapped(s string, sp *source.Span) *CodeWriter {
	if w.atLineStart {
		w.sb.WriteString(w.indentation())
		w.atLineStart = false
	}
	if sp != nil {
		w.mappings = append(w.mappings, SourceMapping{Original: *sp, GeneratedOffset: w.sb.Len(), GeneratedLength: len(s)})
	}
	w.sb.WriteString(s)
	return w
}

// OpenBlock writes "{" on its own line and indents.
func (w *CodeWriter) OpenBlock() {
	w.WriteLine("{")
	w.Indent()
}

// CloseBlock dedents and writes "}".
func (w *CodeWriter) CloseBlock() {
	w.Dedent()
	w.WriteLine("}")
}

// String returns everything written.
func (w *CodeWriter) String() string { return w.sb.String() }

// Mappings returns the recorded source mappings in write order.
func (w *CodeWriter) Mappings() []SourceMapping { return w.mappings }
