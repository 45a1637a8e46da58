// Package codegen is the boundary between the pipeline and target code
// writers. The pipeline hands a finished IR tree and the generation options
// to a Target; the bundled DefaultTarget renders a readable outline.
package codegen

import (
	"quill/internal/diag"
	"quill/internal/ir"
	"quill/internal/lang"
	"quill/internal/source"
)

// Target produces writers for one output language.
type Target interface {
	Name() string
	Extensions() []TargetExtension
	CreateWriter(opts lang.CodeGenOptions) Writer
}

// TargetExtension renders node kinds the base writer does not know how to
// render, or overrides how a known one is rendered. WriteNode reports
// whether it handled n.
type TargetExtension interface {
	Name() string
	WriteNode(w *CodeWriter, n ir.Node) bool
}

// Writer turns one IR document into output.
type Writer interface {
	Write(doc *ir.Document) (*Output, error)
}

// SourceMapping links generated text back to the template.
type SourceMapping struct {
	Original        source.Span
	GeneratedOffset int
	GeneratedLength int
}

// Output is the result of the target lowering phase.
type Output struct {
	Text           string
	Options        lang.CodeGenOptions
	Diagnostics    []diag.Diagnostic
	SourceMappings []SourceMapping
}
