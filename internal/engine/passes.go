package engine

import (
	"strings"

	"quill/internal/checksum"
	"quill/internal/document"
	"quill/internal/ir"
	"quill/internal/syntax"
)

// MarkupTextMergePass joins adjacent literal markup in the syntax tree so
// lowering produces one HTML node per run of text.
type MarkupTextMergePass struct{}

func (*MarkupTextMergePass) Name() string { return "markup-text-merge" }
func (*MarkupTextMergePass) Order() int   { return DefaultFeatureOrder }

func (*MarkupTextMergePass) Execute(_ *document.CodeDocument, tree *syntax.Tree) (*syntax.Tree, error) {
	out := tree.Clone()
	syntax.MergeAdjacentText(out)
	return out, nil
}

// DirectiveTokenTrimPass strips whitespace around directive tokens before
// the directive passes read them.
type DirectiveTokenTrimPass struct{}

func (*DirectiveTokenTrimPass) Name() string { return "directive-token-trim" }
func (*DirectiveTokenTrimPass) Order() int   { return DefaultFeatureOrder + 10 }

func (*DirectiveTokenTrimPass) Execute(_ *document.CodeDocument, tree *syntax.Tree) (*syntax.Tree, error) {
	out := tree.Clone()
	syntax.TrimDirectiveTokens(out)
	return out, nil
}

// DirectiveRemovalPass drops directive nodes once the directive passes have
// consumed them. Their diagnostics move to the document.
type DirectiveRemovalPass struct{}

func (*DirectiveRemovalPass) Name() string { return "directive-removal" }
func (*DirectiveRemovalPass) Order() int   { return DefaultFeatureOrder + 50 }

func (*DirectiveRemovalPass) Execute(_ *document.CodeDocument, irDoc *ir.Document) error {
	refs := ir.Collect(irDoc, func(n ir.Node) bool {
		_, ok := n.(*ir.Directive)
		return ok
	})
	for _, ref := range refs {
		for _, d := range ref.Node.Base().Diagnostics {
			irDoc.AddDiagnostic(d)
		}
		ref.Remove()
	}
	return nil
}

// CompletedTaskStatement is the body left in a primary method whose
// content was eliminated.
const CompletedTaskStatement = "return global::System.Threading.Tasks.Task.CompletedTask;"

// EliminateMethodBodyPass empties the primary method for declaration-only
// compilation when CodeGenOptions.SuppressPrimaryMethodBody is set. Methods
// returning a task keep a completed-task return.
type EliminateMethodBodyPass struct{}

func (*EliminateMethodBodyPass) Name() string { return "eliminate-method-body" }
func (*EliminateMethodBodyPass) Order() int   { return DefaultFeatureOrder + 100 }

func (*EliminateMethodBodyPass) Execute(_ *document.CodeDocument, irDoc *ir.Document) error {
	if !irDoc.Options.SuppressPrimaryMethodBody {
		return nil
	}
	m := ir.FindPrimaryMethod(irDoc)
	if m == nil {
		return nil
	}
	void := m.ReturnType == "void"
	switch {
	case void && len(m.Children) == 0:
		return nil
	case !void && len(m.Children) == 1:
		if stmt, ok := m.Children[0].(*ir.CodeStatement); ok && codeText(stmt) == CompletedTaskStatement {
			return nil
		}
	}
	for _, d := range ir.GetAllDiagnostics(m) {
		irDoc.AddDiagnostic(d)
	}
	m.Diagnostics = nil
	mods := m.Modifiers[:0]
	for _, mod := range m.Modifiers {
		if mod != "async" {
			mods = append(mods, mod)
		}
	}
	m.Modifiers = mods

	if void {
		m.ReplaceChildren()
		return nil
	}
	stmt := &ir.CodeStatement{}
	stmt.Add(ir.NewCodeToken(CompletedTaskStatement))
	m.ReplaceChildren(stmt)
	return nil
}

func codeText(n ir.Node) string {
	var sb strings.Builder
	for _, c := range n.Base().Children {
		if t, ok := c.(*ir.Token); ok {
			sb.WriteString(t.Content)
		}
	}
	return sb.String()
}

// TagHelperFieldsPass declares one private field per distinct tag helper
// used by the document. Component-family tag helpers are instantiated by
// the runtime and get no field.
type TagHelperFieldsPass struct{}

func (*TagHelperFieldsPass) Name() string { return "tag-helper-fields" }
func (*TagHelperFieldsPass) Order() int   { return DefaultFeatureOrder }

func (*TagHelperFieldsPass) Execute(_ *document.CodeDocument, irDoc *ir.Document) error {
	cls := ir.FindPrimaryClass(irDoc)
	if cls == nil {
		return nil
	}
	declared := make(map[string]bool)
	for _, f := range ir.FindDescendants[*ir.FieldDeclaration](cls) {
		declared[f.FieldName] = true
	}
	seen := make(map[checksum.Digest]bool)
	var fields []ir.Node
	for _, th := range ir.FindDescendants[*ir.TagHelper](irDoc) {
		for _, d := range th.TagHelpers {
			if d.Kind().IsComponentFamily() || seen[d.Checksum()] {
				continue
			}
			seen[d.Checksum()] = true
			typeName := d.TypeName()
			if typeName == "" {
				typeName = d.Name()
			}
			name := TagHelperFieldName(typeName)
			if declared[name] {
				continue
			}
			declared[name] = true
			fields = append(fields, &ir.FieldDeclaration{
				Modifiers: []string{"private"},
				FieldType: "global::" + typeName,
				FieldName: name,
			})
		}
	}
	cls.Insert(0, fields...)
	return nil
}

// TagHelperFieldName derives the backing field name for a tag helper type.
func TagHelperFieldName(typeName string) string {
	return "__" + strings.NewReplacer(".", "_", "<", "_", ">", "_", ",", "_", " ", "").Replace(typeName)
}

// HTMLContentMergePass joins sibling HTML content nodes.
type HTMLContentMergePass struct{}

func (*HTMLContentMergePass) Name() string { return "html-content-merge" }
func (*HTMLContentMergePass) Order() int   { return DefaultFeatureOrder + 60 }

func (*HTMLContentMergePass) Execute(_ *document.CodeDocument, irDoc *ir.Document) error {
	ir.Inspect(irDoc, func(n ir.Node) bool {
		if n == nil {
			return false
		}
		mergeHTML(n.Base())
		return true
	})
	return nil
}

func mergeHTML(b *ir.NodeBase) {
	if len(b.Children) < 2 {
		return
	}
	out := b.Children[:1]
	for _, c := range b.Children[1:] {
		cur, ok := c.(*ir.HTMLContent)
		prev, prevOK := out[len(out)-1].(*ir.HTMLContent)
		if !ok || !prevOK {
			out = append(out, c)
			continue
		}
		prev.Add(cur.Children...)
		prev.Diagnostics = append(prev.Diagnostics, cur.Diagnostics...)
		switch {
		case prev.Source != nil && cur.Source != nil && prev.Source.File == cur.Source.File:
			prev.SetSource(prev.Source.Cover(*cur.Source))
		case prev.Source == nil:
			prev.Source = cur.Source
		}
	}
	clear(b.Children[len(out):])
	b.Children = out
}
