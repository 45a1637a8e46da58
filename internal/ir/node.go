package ir

import (
	"slices"

	"quill/internal/diag"
	"quill/internal/source"
)

// Node is implemented by every IR node type of this package.
type Node interface {
	Kind() Kind
	Base() *NodeBase
}

// NodeBase carries what every node has: ordered children, an optional
// source span and diagnostics.
type NodeBase struct {
	Children    []Node
	Source      *source.Span
	Diagnostics []diag.Diagnostic
}

func (b *NodeBase) Base() *NodeBase { return b }

// Add appends children.
func (b *NodeBase) Add(nodes ...Node) {
	b.Children = append(b.Children, nodes...)
}

// Insert places n at index i, clamped to the valid range.
func (b *NodeBase) Insert(i int, nodes ...Node) {
	i = max(0, min(i, len(b.Children)))
	b.Children = slices.Insert(b.Children, i, nodes...)
}

// IndexOf returns the position of n among the children, or -1.
func (b *NodeBase) IndexOf(n Node) int {
	for i, c := range b.Children {
		if c == n {
			return i
		}
	}
	return -1
}

// Remove drops n from the children; false if n is not a child.
func (b *NodeBase) Remove(n Node) bool {
	i := b.IndexOf(n)
	if i < 0 {
		return false
	}
	b.Children = slices.Delete(b.Children, i, i+1)
	return true
}

// Replace swaps old for nodes in place; false if old is not a child.
func (b *NodeBase) Replace(old Node, nodes ...Node) bool {
	i := b.IndexOf(old)
	if i < 0 {
		return false
	}
	b.Children = slices.Replace(b.Children, i, i+1, nodes...)
	return true
}

// ReplaceChildren drops every child and installs nodes.
func (b *NodeBase) ReplaceChildren(nodes ...Node) {
	clear(b.Children)
	b.Children = append(b.Children[:0], nodes...)
}

// AddDiagnostic attaches d to the node.
func (b *NodeBase) AddDiagnostic(d diag.Diagnostic) {
	b.Diagnostics = append(b.Diagnostics, d)
}

// HasErrors reports an error diagnostic on this node only.
func (b *NodeBase) HasErrors() bool {
	return diag.HasErrors(b.Diagnostics)
}

// SetSource records the span the node was lowered from.
func (b *NodeBase) SetSource(sp source.Span) {
	b.Source = sp.Ptr()
}
