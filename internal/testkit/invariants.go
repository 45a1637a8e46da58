// Package testkit holds checks shared by the tests of several packages.
package testkit

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"quill/internal/document"
	"quill/internal/ir"
	"quill/internal/source"
)

// CheckIRInvariants verifies the lowered tree of doc:
// 1) no child is nil
// 2) every source span is ordered, names a file of files and ends inside it
// 3) at most one namespace, class and method are primary
func CheckIRInvariants(doc *document.CodeDocument, files *source.FileSet) error {
	if doc == nil || files == nil {
		return fmt.Errorf("nil document or file set")
	}
	root := doc.IR()
	if root == nil {
		return fmt.Errorf("document has no IR")
	}
	total, err := safecast.Conv[uint32](files.Len())
	if err != nil {
		return fmt.Errorf("file count overflow: %w", err)
	}

	var errs []error
	var visit func(n ir.Node)
	visit = func(n ir.Node) {
		if sp := n.Base().Source; sp != nil {
			if err := checkSpan(n, *sp, files, total); err != nil {
				errs = append(errs, err)
			}
		}
		for i, c := range n.Base().Children {
			if c == nil {
				errs = append(errs, fmt.Errorf("%s: child %d is nil", n.Kind(), i))
				continue
			}
			visit(c)
		}
	}
	visit(root)
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	// 3) primaries
	count := func(kind string, n int) error {
		if n > 1 {
			return fmt.Errorf("%d primary %s nodes", n, kind)
		}
		return nil
	}
	var ns, cls, m int
	for _, n := range ir.FindDescendants[*ir.Namespace](root) {
		if n.IsPrimary {
			ns++
		}
	}
	for _, c := range ir.FindDescendants[*ir.Class](root) {
		if c.IsPrimary {
			cls++
		}
	}
	for _, x := range ir.FindDescendants[*ir.Method](root) {
		if x.IsPrimary {
			m++
		}
	}
	if err := count("namespace", ns); err != nil {
		return err
	}
	if err := count("class", cls); err != nil {
		return err
	}
	return count("method", m)
}

func checkSpan(n ir.Node, sp source.Span, files *source.FileSet, total uint32) error {
	if sp.End < sp.Start {
		return fmt.Errorf("%s: span %v ends before it starts", n.Kind(), sp)
	}
	if uint32(sp.File) >= total {
		return fmt.Errorf("%s: span %v names an unknown file", n.Kind(), sp)
	}
	size, err := safecast.Conv[uint32](len(files.Get(sp.File).Content))
	if err != nil {
		return fmt.Errorf("content length overflow: %w", err)
	}
	if sp.End > size {
		return fmt.Errorf("%s: span %v ends beyond content (%d)", n.Kind(), sp, size)
	}
	return nil
}
