// Package syntax parses template documents into a syntax tree.
//
// The parser never fails: malformed input becomes diagnostics, either on
// the tree or on the directive node that owns them. Tag helper binding is a
// separate rewrite over a parsed tree.
package syntax

import (
	"quill/internal/diag"
	"quill/internal/lang"
	"quill/internal/source"
)

// Tree is a parsed document.
type Tree struct {
	Source      *source.File
	Root        *Document
	Options     lang.ParserOptions
	Diagnostics []diag.Diagnostic
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the current node.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, fn)
	}
}

// Directives returns every directive in document order.
func (t *Tree) Directives() []*Directive {
	var out []*Directive
	Walk(t.Root, func(n Node) bool {
		if d, ok := n.(*Directive); ok {
			out = append(out, d)
		}
		return true
	})
	return out
}

// AllDiagnostics returns tree diagnostics followed by directive diagnostics.
func (t *Tree) AllDiagnostics() []diag.Diagnostic {
	out := append([]diag.Diagnostic(nil), t.Diagnostics...)
	for _, d := range t.Directives() {
		out = append(out, d.Diagnostics...)
	}
	return out
}

// Clone returns a shallow copy of the tree with a copied top-level body,
// so passes may replace nodes without touching the original.
func (t *Tree) Clone() *Tree {
	c := *t
	root := *t.Root
	root.Body = append([]Node(nil), t.Root.Body...)
	c.Root = &root
	c.Diagnostics = append([]diag.Diagnostic(nil), t.Diagnostics...)
	return &c
}
