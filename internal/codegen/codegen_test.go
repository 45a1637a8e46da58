package codegen

import (
	"errors"
	"strings"
	"testing"

	"quill/internal/checksum"
	"quill/internal/ir"
	"quill/internal/lang"
	"quill/internal/source"
)

func outlineDoc() *ir.Document {
	doc := &ir.Document{DocumentKind: "mvc.view", SourcePath: "Views/Index.quill"}
	ns := &ir.Namespace{Content: "App", IsPrimary: true}
	cls := &ir.Class{
		ClassName:      "Index",
		Modifiers:      []string{"public"},
		BaseType:       "Page",
		TypeParameters: []ir.TypeParameter{{Name: "T", Constraint: "where T : new()"}},
		IsPrimary:      true,
	}
	m := &ir.Method{MethodName: "ExecuteAsync", ReturnType: "Task", Modifiers: []string{"public", "async"}, IsPrimary: true}
	lit := &ir.HTMLContent{}
	lit.Add(ir.NewHTMLToken("<p>\"hi\"</p>"))
	expr := &ir.CodeExpression{}
	expr.SetSource(source.Span{File: 1, Start: 10, End: 15})
	expr.Add(ir.NewCodeToken("Model"))
	m.Add(lit, expr)
	cls.Add(&ir.FieldDeclaration{Modifiers: []string{"private"}, FieldType: "int", FieldName: "count"}, m)
	ns.Add(&ir.Using{Content: "System"}, cls)
	doc.Add(ns)
	return doc
}

func render(t *testing.T, opts lang.CodeGenOptions, doc *ir.Document, exts ...TargetExtension) *Output {
	t.Helper()
	out, err := NewDefaultTarget(exts...).CreateWriter(opts).Write(doc)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	return out
}

func TestOutline(t *testing.T) {
	opts := lang.CodeGenOptions{IndentSize: 4}
	out := render(t, opts, outlineDoc())
	want := strings.Join([]string{
		"namespace App",
		"{",
		"    using System;",
		"    [QuillDocument(\"mvc.view\", \"Views/Index.quill\")]",
		"    public class Index<T> : Page",
		"        where T : new()",
		"    {",
		"        private int count;",
		"        public async Task ExecuteAsync()",
		"        {",
		"            WriteLiteral(\"<p>\\\"hi\\\"</p>\");",
		"            Write(Model);",
		"        }",
		"    }",
		"}",
		"",
	}, "\n")
	if out.Text != want {
		t.Fatalf("outline mismatch:\n%s\nwant:\n%s", out.Text, want)
	}
	if len(out.SourceMappings) != 1 {
		t.Fatalf("mappings = %+v", out.SourceMappings)
	}
	m := out.SourceMappings[0]
	if got := out.Text[m.GeneratedOffset : m.GeneratedOffset+m.GeneratedLength]; got != "Model" {
		t.Fatalf("mapping points at %q", got)
	}
	if m.Original.Start != 10 {
		t.Fatalf("mapping origin = %+v", m.Original)
	}
}

func TestOutlineOptions(t *testing.T) {
	doc := outlineDoc()
	doc.SourceChecksum = checksum.OfBytes([]byte("body"))

	out := render(t, lang.CodeGenOptions{IndentWithTabs: true, NewLine: lang.NewLineCRLF}, doc)
	if !strings.HasPrefix(out.Text, "// checksum sha256 ") {
		t.Fatalf("missing checksum line:\n%s", out.Text)
	}
	if !strings.Contains(out.Text, "\r\n\t{") {
		t.Fatalf("expected CRLF and tab indentation:\n%q", out.Text)
	}

	out = render(t, lang.CodeGenOptions{SuppressChecksum: true, SuppressMetadataAttributes: true}, doc)
	if strings.Contains(out.Text, "checksum") || strings.Contains(out.Text, "QuillDocument") {
		t.Fatalf("suppressed lines present:\n%s", out.Text)
	}
}

type sectionExt struct{}

func (sectionExt) Name() string { return "test" }

func (sectionExt) WriteNode(w *CodeWriter, n ir.Node) bool {
	if n.Kind() != ir.KindHTMLContent {
		return false
	}
	w.WriteLine("// literal")
	return true
}

func TestExtensionsRenderFirst(t *testing.T) {
	out := render(t, lang.CodeGenOptions{}, outlineDoc(), sectionExt{})
	if strings.Contains(out.Text, "WriteLiteral") || !strings.Contains(out.Text, "// literal") {
		t.Fatalf("extension not consulted:\n%s", out.Text)
	}
}

func TestNilDocument(t *testing.T) {
	_, err := NewDefaultTarget().CreateWriter(lang.CodeGenOptions{}).Write(nil)
	if !errors.Is(err, ErrNilDocument) {
		t.Fatalf("err = %v", err)
	}
}

func TestTextConcatenatesTokens(t *testing.T) {
	n := &ir.CodeStatement{}
	n.Add(ir.NewCodeToken("var x = 1;"), ir.NewCodeToken(" x++;"))
	if got := Text(n); got != "var x = 1; x++;" {
		t.Fatalf("Text = %q", got)
	}
}
