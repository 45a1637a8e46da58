package ir

import (
	"quill/internal/diag"
	"quill/internal/directive"
)

// Visitor is called by Walk for every node. If the returned visitor w is
// not nil, Walk visits each child with w, then calls w.Visit(nil).
type Visitor interface {
	Visit(n Node) (w Visitor)
}

// Walk traverses the tree rooted at n in depth-first order.
func Walk(v Visitor, n Node) {
	if v = v.Visit(n); v == nil {
		return
	}
	for _, c := range n.Base().Children {
		Walk(v, c)
	}
	v.Visit(nil)
}

type inspector func(Node) bool

func (f inspector) Visit(n Node) Visitor {
	if f(n) {
		return f
	}
	return nil
}

// Inspect calls f for n and every descendant in pre-order; returning false
// skips the children. f(nil) follows each visited subtree.
func Inspect(n Node, f func(Node) bool) {
	Walk(inspector(f), n)
}

// Reference locates a node through its parent, so the node can be removed
// or replaced without parent pointers.
type Reference struct {
	Parent Node
	Node   Node
}

// Remove detaches the node. A second call reports false.
func (r Reference) Remove() bool {
	return r.Parent.Base().Remove(r.Node)
}

// Replace swaps the node for nodes.
func (r Reference) Replace(nodes ...Node) bool {
	return r.Parent.Base().Replace(r.Node, nodes...)
}

// InsertAfter places nodes right after the node.
func (r Reference) InsertAfter(nodes ...Node) bool {
	b := r.Parent.Base()
	i := b.IndexOf(r.Node)
	if i < 0 {
		return false
	}
	b.Insert(i+1, nodes...)
	return true
}

// Collect returns every node under root, root included, for which keep
// reports true, paired with its parent. root has no parent.
func Collect(root Node, keep func(Node) bool) []Reference {
	var out []Reference
	var visit func(parent, n Node)
	visit = func(parent, n Node) {
		if keep(n) {
			out = append(out, Reference{Parent: parent, Node: n})
		}
		for _, c := range n.Base().Children {
			visit(n, c)
		}
	}
	visit(nil, root)
	return out
}

// FindDescendants returns every node of type T below root in pre-order.
func FindDescendants[T Node](root Node) []T {
	var out []T
	Inspect(root, func(n Node) bool {
		if n == nil || n == root {
			return true
		}
		if t, ok := n.(T); ok {
			out = append(out, t)
		}
		return true
	})
	return out
}

// FindDirectiveReferences returns the well-formed directives described by d.
// Descriptors are compared by checksum.
func FindDirectiveReferences(root Node, d *directive.Descriptor) []Reference {
	return Collect(root, func(n Node) bool {
		dn, ok := n.(*Directive)
		return ok && sameDirective(dn.Descriptor, d)
	})
}

// FindMalformedDirectiveReferences is FindDirectiveReferences for
// directives that failed to parse.
func FindMalformedDirectiveReferences(root Node, d *directive.Descriptor) []Reference {
	return Collect(root, func(n Node) bool {
		dn, ok := n.(*MalformedDirective)
		return ok && sameDirective(dn.Descriptor, d)
	})
}

func sameDirective(a, b *directive.Descriptor) bool {
	if a == nil || b == nil {
		return false
	}
	return a == b || a.Checksum() == b.Checksum()
}

// FindPrimaryNamespace returns the first namespace marked primary.
func FindPrimaryNamespace(root Node) *Namespace {
	for _, n := range FindDescendants[*Namespace](root) {
		if n.IsPrimary {
			return n
		}
	}
	return nil
}

// FindPrimaryClass returns the first class marked primary.
func FindPrimaryClass(root Node) *Class {
	for _, c := range FindDescendants[*Class](root) {
		if c.IsPrimary {
			return c
		}
	}
	return nil
}

// FindPrimaryMethod returns the first method marked primary.
func FindPrimaryMethod(root Node) *Method {
	for _, m := range FindDescendants[*Method](root) {
		if m.IsPrimary {
			return m
		}
	}
	return nil
}

// GetAllDiagnostics gathers diagnostics of the whole tree in pre-order.
func GetAllDiagnostics(root Node) []diag.Diagnostic {
	var out []diag.Diagnostic
	Inspect(root, func(n Node) bool {
		if n != nil {
			out = append(out, n.Base().Diagnostics...)
		}
		return true
	})
	return out
}
