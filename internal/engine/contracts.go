// Package engine runs a CodeDocument through the phase pipeline.
//
// An Engine is assembled once by a Builder and is read-only afterwards, so
// one engine may compile many documents concurrently. Passes and features
// live in typed registries; passes within a phase run in ascending Order
// with ties broken by registration order.
package engine

import (
	"cmp"
	"slices"

	"quill/internal/codegen"
	"quill/internal/diag"
	"quill/internal/document"
	"quill/internal/ir"
	"quill/internal/lang"
	"quill/internal/source"
	"quill/internal/syntax"
	"quill/internal/taghelper"
)

// DefaultFeatureOrder is the order of passes that have no reason to run
// earlier or later than the rest.
const DefaultFeatureOrder = 1000

// Pass is the part shared by every pass contract.
type Pass interface {
	Name() string
	Order() int
}

// Initializer is implemented by passes and features that resolve
// engine-scoped configuration once, during Build.
type Initializer interface {
	Initialize(e *Engine) error
}

// SyntaxTreePass rewrites the syntax tree before tag helper discovery. It
// returns the tree to publish, which may be the input.
type SyntaxTreePass interface {
	Pass
	Execute(doc *document.CodeDocument, tree *syntax.Tree) (*syntax.Tree, error)
}

// IRPass transforms the IR in place.
type IRPass interface {
	Pass
	Execute(doc *document.CodeDocument, irDoc *ir.Document) error
}

// DocumentClassifierPass shapes the IR when IsMatch accepts the document.
type DocumentClassifierPass interface {
	IRPass
	IsMatch(doc *document.CodeDocument, irDoc *ir.Document) bool
}

// DirectiveClassifierPass applies directives to the classified IR.
type DirectiveClassifierPass interface {
	IRPass
}

// OptimizationPass runs after classification; it must tolerate trees it
// has already processed.
type OptimizationPass interface {
	IRPass
}

// TagHelperProvider supplies the descriptor set of the project.
type TagHelperProvider interface {
	TagHelpers() []*taghelper.Descriptor
}

// StaticTagHelpers is a fixed descriptor set.
type StaticTagHelpers []*taghelper.Descriptor

func (s StaticTagHelpers) TagHelpers() []*taghelper.Descriptor { return s }

// TagHelperDiscovery resolves which descriptors are in scope for one
// document. Diagnostics are user-content errors in the directives.
type TagHelperDiscovery interface {
	Discover(doc *document.CodeDocument, tree *syntax.Tree, imports []*syntax.Tree) (*document.TagHelperContext, []diag.Diagnostic)
}

// ParserOptionsFeature chooses parser options for a document.
type ParserOptionsFeature interface {
	ParserOptions(doc *document.CodeDocument) lang.ParserOptions
}

// CodeGenOptionsFeature chooses generation options for a document.
type CodeGenOptionsFeature interface {
	CodeGenOptions(doc *document.CodeDocument) lang.CodeGenOptions
}

// CodeTargetFeature creates the target used by the last phase.
type CodeTargetFeature interface {
	Target(extensions []codegen.TargetExtension) codegen.Target
}

// ImportProjectFeature contributes imports every document of a kind sees,
// in front of the imports read from disk.
type ImportProjectFeature interface {
	DefaultImports(kind lang.FileKind) []*source.File
}

// Registry keeps passes of one contract in registration order.
type Registry[T Pass] struct {
	items []T
}

// Add appends items.
func (r *Registry[T]) Add(items ...T) {
	r.items = append(r.items, items...)
}

// Replace swaps the pass named name for item, keeping its registration slot.
func (r *Registry[T]) Replace(name string, item T) bool {
	for i, it := range r.items {
		if it.Name() == name {
			r.items[i] = item
			return true
		}
	}
	return false
}

// Remove drops the first pass named name.
func (r *Registry[T]) Remove(name string) bool {
	for i, it := range r.items {
		if it.Name() == name {
			r.items = slices.Delete(r.items, i, i+1)
			return true
		}
	}
	return false
}

// Lookup finds a pass by name.
func (r *Registry[T]) Lookup(name string) (T, bool) {
	for _, it := range r.items {
		if it.Name() == name {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Len is the number of registered passes.
func (r *Registry[T]) Len() int { return len(r.items) }

// Ordered returns the passes sorted by Order; equal orders keep
// registration order.
func (r *Registry[T]) Ordered() []T {
	out := slices.Clone(r.items)
	slices.SortStableFunc(out, func(a, b T) int {
		return cmp.Compare(a.Order(), b.Order())
	})
	return out
}

func (r *Registry[T]) clone() Registry[T] {
	return Registry[T]{items: slices.Clone(r.items)}
}
