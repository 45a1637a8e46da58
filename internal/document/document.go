// Package document holds the per-compilation state that phases read and
// publish. Every artifact has its own slot; reading a slot that no phase
// has filled yet returns a *MissingArtifactError instead of a nil value.
package document

import (
	"errors"
	"fmt"

	"quill/internal/binding"
	"quill/internal/checksum"
	"quill/internal/codegen"
	"quill/internal/ir"
	"quill/internal/lang"
	"quill/internal/source"
	"quill/internal/syntax"
	"quill/internal/taghelper"
)

// ErrArtifactMissing is matched by every *MissingArtifactError.
var ErrArtifactMissing = errors.New("artifact missing")

// MissingArtifactError reports a phase reading a slot no earlier phase
// produced. Phase is empty when the read happened outside the pipeline.
type MissingArtifactError struct {
	Phase    string
	Artifact string
}

func (e *MissingArtifactError) Error() string {
	if e.Phase == "" {
		return fmt.Sprintf("%s has not been produced", e.Artifact)
	}
	return fmt.Sprintf("phase %s requires %s, which has not been produced", e.Phase, e.Artifact)
}

func (e *MissingArtifactError) Unwrap() error { return ErrArtifactMissing }

// Artifact names used in errors.
const (
	ArtifactParserOptions    = "parser options"
	ArtifactCodeGenOptions   = "codegen options"
	ArtifactSyntaxTree       = "syntax tree"
	ArtifactImportTrees      = "import syntax trees"
	ArtifactTagHelpers       = "tag helper descriptors"
	ArtifactTagHelperContext = "tag helper context"
	ArtifactIR               = "IR document"
	ArtifactOutput           = "generated output"
)

// TagHelperContext is what discovery resolved for one document: the
// descriptors in scope, their prefix and the binder built from both.
type TagHelperContext struct {
	Prefix      string
	Descriptors []*taghelper.Descriptor
	Binder      *binding.Binder
}

// CodeDocument is created once per compilation and discarded after the
// pipeline completes. It is not safe for concurrent use.
type CodeDocument struct {
	Source   *source.File
	Imports  []*source.File
	FileKind lang.FileKind

	parserOptions    *lang.ParserOptions
	codeGenOptions   *lang.CodeGenOptions
	syntaxTree       *syntax.Tree
	importTrees      []*syntax.Tree
	importTreesSet   bool
	tagHelpers       []*taghelper.Descriptor
	tagHelpersSet    bool
	tagHelperContext *TagHelperContext
	ir               *ir.Document
	output           *codegen.Output
}

// New creates a document for src with its imports, outermost first.
// The file kind is inferred from the source path.
func New(src *source.File, imports ...*source.File) *CodeDocument {
	doc := &CodeDocument{Source: src, Imports: imports}
	if src != nil {
		doc.FileKind = lang.FileKindFromPath(src.Path)
	}
	return doc
}

// Checksum identifies the inputs: the source text and every import, in order.
func (d *CodeDocument) Checksum() checksum.Digest {
	deps := make([]checksum.Digest, 0, len(d.Imports))
	for _, imp := range d.Imports {
		deps = append(deps, imp.Checksum())
	}
	var content checksum.Digest
	if d.Source != nil {
		content = d.Source.Checksum()
	}
	return checksum.Combine(content, deps...)
}

func missing(artifact string) error {
	return &MissingArtifactError{Artifact: artifact}
}

func (d *CodeDocument) SetParserOptions(o lang.ParserOptions) { d.parserOptions = &o }

func (d *CodeDocument) ParserOptions() (lang.ParserOptions, bool) {
	if d.parserOptions == nil {
		return lang.ParserOptions{}, false
	}
	return *d.parserOptions, true
}

func (d *CodeDocument) RequireParserOptions() (lang.ParserOptions, error) {
	if d.parserOptions == nil {
		return lang.ParserOptions{}, missing(ArtifactParserOptions)
	}
	return *d.parserOptions, nil
}

func (d *CodeDocument) SetCodeGenOptions(o lang.CodeGenOptions) { d.codeGenOptions = &o }

func (d *CodeDocument) CodeGenOptions() (lang.CodeGenOptions, bool) {
	if d.codeGenOptions == nil {
		return lang.CodeGenOptions{}, false
	}
	return *d.codeGenOptions, true
}

func (d *CodeDocument) RequireCodeGenOptions() (lang.CodeGenOptions, error) {
	if d.codeGenOptions == nil {
		return lang.CodeGenOptions{}, missing(ArtifactCodeGenOptions)
	}
	return *d.codeGenOptions, nil
}

// SetSyntaxTree publishes or replaces the syntax tree.
func (d *CodeDocument) SetSyntaxTree(t *syntax.Tree) { d.syntaxTree = t }

func (d *CodeDocument) SyntaxTree() *syntax.Tree { return d.syntaxTree }

func (d *CodeDocument) RequireSyntaxTree() (*syntax.Tree, error) {
	if d.syntaxTree == nil {
		return nil, missing(ArtifactSyntaxTree)
	}
	return d.syntaxTree, nil
}

// SetImportSyntaxTrees publishes the parsed imports; an empty list is a
// valid artifact.
func (d *CodeDocument) SetImportSyntaxTrees(trees []*syntax.Tree) {
	d.importTrees = trees
	d.importTreesSet = true
}

func (d *CodeDocument) ImportSyntaxTrees() []*syntax.Tree { return d.importTrees }

func (d *CodeDocument) RequireImportSyntaxTrees() ([]*syntax.Tree, error) {
	if !d.importTreesSet {
		return nil, missing(ArtifactImportTrees)
	}
	return d.importTrees, nil
}

// SetTagHelpers provides the descriptor set for this document, overriding
// the engine provider. An empty set is valid.
func (d *CodeDocument) SetTagHelpers(descriptors []*taghelper.Descriptor) {
	d.tagHelpers = descriptors
	d.tagHelpersSet = true
}

func (d *CodeDocument) TagHelpers() ([]*taghelper.Descriptor, bool) {
	return d.tagHelpers, d.tagHelpersSet
}

func (d *CodeDocument) SetTagHelperContext(c *TagHelperContext) { d.tagHelperContext = c }

func (d *CodeDocument) TagHelperContext() *TagHelperContext { return d.tagHelperContext }

func (d *CodeDocument) RequireTagHelperContext() (*TagHelperContext, error) {
	if d.tagHelperContext == nil {
		return nil, missing(ArtifactTagHelperContext)
	}
	return d.tagHelperContext, nil
}

func (d *CodeDocument) SetIR(doc *ir.Document) { d.ir = doc }

func (d *CodeDocument) IR() *ir.Document { return d.ir }

func (d *CodeDocument) RequireIR() (*ir.Document, error) {
	if d.ir == nil {
		return nil, missing(ArtifactIR)
	}
	return d.ir, nil
}

func (d *CodeDocument) SetOutput(o *codegen.Output) { d.output = o }

func (d *CodeDocument) Output() *codegen.Output { return d.output }

func (d *CodeDocument) RequireOutput() (*codegen.Output, error) {
	if d.output == nil {
		return nil, missing(ArtifactOutput)
	}
	return d.output, nil
}
