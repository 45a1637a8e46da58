package engine

import (
	"slices"
	"testing"

	"quill/internal/codegen"
	"quill/internal/diag"
	"quill/internal/ir"
	"quill/internal/source"
	"quill/internal/syntax"
	"quill/internal/taghelper"
)

func classified() (*ir.Document, *ir.Class, *ir.Method) {
	irDoc := &ir.Document{}
	ns := &ir.Namespace{Content: DefaultNamespace, IsPrimary: true}
	cls := &ir.Class{ClassName: DefaultClassName, IsPrimary: true}
	m := &ir.Method{MethodName: DefaultMethodName, Modifiers: []string{"public", "async", "override"}, IsPrimary: true}
	cls.Add(m)
	ns.Add(cls)
	irDoc.Add(ns)
	return irDoc, cls, m
}

func html(text string, start, end uint32) *ir.HTMLContent {
	n := &ir.HTMLContent{}
	n.SetSource(source.Span{File: 1, Start: start, End: end})
	n.Add(ir.NewHTMLToken(text))
	return n
}

func TestDirectiveRemovalIsIdempotent(t *testing.T) {
	irDoc, _, m := classified()
	d := &ir.Directive{Name: "inherits"}
	d.AddDiagnostic(diag.Errorf(diag.SynDirectiveMissingToken, source.Span{}, "missing"))
	m.Add(html("a", 0, 1), d)

	p := &DirectiveRemovalPass{}
	for range 2 {
		if err := p.Execute(nil, irDoc); err != nil {
			t.Fatal(err)
		}
	}
	if n := len(ir.FindDescendants[*ir.Directive](irDoc)); n != 0 {
		t.Fatalf("%d directives left", n)
	}
	if len(m.Children) != 1 {
		t.Fatalf("method children = %d, want 1", len(m.Children))
	}
	if len(irDoc.Diagnostics) != 1 {
		t.Fatalf("document diagnostics = %d, want 1 after two runs", len(irDoc.Diagnostics))
	}
}

func TestHTMLContentMerge(t *testing.T) {
	irDoc, _, m := classified()
	expr := &ir.CodeExpression{}
	expr.Add(ir.NewCodeToken("x"))
	m.Add(html("<p>", 0, 3), html("Hi ", 3, 6), expr, html("</p>", 8, 12), html("\n", 12, 13))

	if err := (&HTMLContentMergePass{}).Execute(nil, irDoc); err != nil {
		t.Fatal(err)
	}
	if len(m.Children) != 3 {
		t.Fatalf("children = %d, want 3", len(m.Children))
	}
	first := m.Children[0].(*ir.HTMLContent)
	if got := codegen.Text(first); got != "<p>Hi " {
		t.Fatalf("merged text = %q", got)
	}
	if first.Source.Start != 0 || first.Source.End != 6 {
		t.Fatalf("merged span = %v", *first.Source)
	}
	if got := codegen.Text(m.Children[2]); got != "</p>\n" {
		t.Fatalf("tail = %q", got)
	}
}

func TestEliminateMethodBody(t *testing.T) {
	irDoc, _, m := classified()
	bad := html("x", 0, 1)
	bad.AddDiagnostic(diag.Errorf(diag.SynUnterminatedStartTag, source.Span{}, "unterminated"))
	m.Add(bad)

	p := &EliminateMethodBodyPass{}
	if err := p.Execute(nil, irDoc); err != nil {
		t.Fatal(err)
	}
	if len(m.Children) != 1 {
		t.Fatal("body kept without SuppressPrimaryMethodBody")
	}

	irDoc.Options.SuppressPrimaryMethodBody = true
	for range 2 {
		if err := p.Execute(nil, irDoc); err != nil {
			t.Fatal(err)
		}
	}
	stmt, ok := m.Children[0].(*ir.CodeStatement)
	if len(m.Children) != 1 || !ok || codeText(stmt) != CompletedTaskStatement {
		t.Fatalf("body = %#v", m.Children)
	}
	if slices.Contains(m.Modifiers, "async") {
		t.Fatalf("modifiers = %v", m.Modifiers)
	}
	if len(irDoc.Diagnostics) != 1 {
		t.Fatalf("hoisted diagnostics = %d, want 1", len(irDoc.Diagnostics))
	}
}

func TestTagHelperFields(t *testing.T) {
	input := taghelper.NewBuilder(taghelper.KindTagHelper, "InputTagHelper", "App").
		SetTypeName("App.InputTagHelper").
		TagMatchingRule(func(r *taghelper.TagMatchingRuleBuilder) { r.TagName = "input" }).
		Build()
	counter := taghelper.NewBuilder(taghelper.KindComponent, "Counter", "App").
		SetTypeName("App.Counter").
		TagMatchingRule(func(r *taghelper.TagMatchingRuleBuilder) { r.TagName = "Counter" }).
		Build()

	irDoc, cls, m := classified()
	m.Add(
		&ir.TagHelper{TagName: "input", TagHelpers: []*taghelper.Descriptor{input}},
		&ir.TagHelper{TagName: "input", TagHelpers: []*taghelper.Descriptor{input}},
		&ir.TagHelper{TagName: "Counter", TagHelpers: []*taghelper.Descriptor{counter}},
	)

	p := &TagHelperFieldsPass{}
	for range 2 {
		if err := p.Execute(nil, irDoc); err != nil {
			t.Fatal(err)
		}
	}
	fields := ir.FindDescendants[*ir.FieldDeclaration](cls)
	if len(fields) != 1 {
		t.Fatalf("fields = %d, want 1", len(fields))
	}
	f := fields[0]
	if f.FieldName != "__App_InputTagHelper" || f.FieldType != "global::App.InputTagHelper" {
		t.Fatalf("field = %+v", f)
	}
	if cls.Children[0] != ir.Node(f) {
		t.Fatal("field must come first in the class")
	}
}

func TestTagHelperFieldName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"App.Input", "__App_Input"},
		{"App.List<App.Item>", "__App_List_App_Item_"},
		{"Map<string, int>", "__Map_string_int_"},
	}
	for _, tt := range tests {
		if got := TagHelperFieldName(tt.in); got != tt.want {
			t.Errorf("TagHelperFieldName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDirectiveTokenTrimPass(t *testing.T) {
	d := &syntax.Directive{Tokens: []syntax.DirectiveToken{{Content: " A.B ", Span: source.Span{File: 1, Start: 10, End: 15}}}}
	tree := &syntax.Tree{Root: &syntax.Document{Body: []syntax.Node{d}}}

	out, err := (&DirectiveTokenTrimPass{}).Execute(nil, tree)
	if err != nil {
		t.Fatal(err)
	}
	got := out.Root.Body[0].(*syntax.Directive).Tokens[0]
	if got.Content != "A.B" || got.Span.Start != 11 || got.Span.End != 14 {
		t.Fatalf("token = %q %v", got.Content, got.Span)
	}
	if d.Tokens[0].Content != " A.B " {
		t.Fatal("input tree changed")
	}
}
