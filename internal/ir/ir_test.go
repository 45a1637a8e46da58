package ir

import (
	"strings"
	"testing"

	"quill/internal/diag"
	"quill/internal/directive"
	"quill/internal/source"
)

var inheritsDirective = directive.MustNew("inherits", directive.SingleLine, func(b *directive.Builder) {
	b.AddTypeToken("TypeName")
})

func sampleTree() (*Document, *Class, *Directive) {
	doc := &Document{DocumentKind: "test"}
	ns := &Namespace{Content: "App", IsPrimary: true}
	cls := &Class{ClassName: "Index", Modifiers: []string{"public"}, IsPrimary: true}
	m := &Method{MethodName: "ExecuteAsync", ReturnType: "Task", IsPrimary: true}
	dir := &Directive{Name: "inherits", Descriptor: inheritsDirective}
	dir.Add(&DirectiveToken{Content: "Base<TModel>"})
	html := &HTMLContent{}
	html.Add(NewHTMLToken("<p>"))
	m.Add(dir, html)
	cls.Add(m)
	ns.Add(cls)
	doc.Add(ns)
	return doc, cls, dir
}

func TestBaseEdits(t *testing.T) {
	var b NodeBase
	a, c, d := &Token{Content: "a"}, &Token{Content: "c"}, &Token{Content: "d"}
	b.Add(a, d)
	b.Insert(1, c)
	if b.IndexOf(c) != 1 || b.IndexOf(d) != 2 {
		t.Fatalf("insert order wrong: %v", b.Children)
	}
	if !b.Remove(c) || b.Remove(c) {
		t.Fatal("remove must succeed once")
	}
	x := &Token{Content: "x"}
	if !b.Replace(a, x) || b.Children[0] != x {
		t.Fatal("replace failed")
	}
	b.Insert(99, a)
	if b.Children[len(b.Children)-1] != a {
		t.Fatal("insert must clamp to the end")
	}
	b.ReplaceChildren(d)
	if len(b.Children) != 1 || b.Children[0] != d {
		t.Fatalf("ReplaceChildren = %v", b.Children)
	}
}

func TestFindPrimary(t *testing.T) {
	doc, cls, _ := sampleTree()
	if FindPrimaryNamespace(doc).Content != "App" {
		t.Fatal("namespace not found")
	}
	if FindPrimaryClass(doc) != cls {
		t.Fatal("class not found")
	}
	if FindPrimaryMethod(doc).MethodName != "ExecuteAsync" {
		t.Fatal("method not found")
	}
	if FindPrimaryClass(&Document{}) != nil {
		t.Fatal("empty document has no class")
	}
}

func TestFindDirectiveReferences_RemoveIsIdempotent(t *testing.T) {
	doc, _, dir := sampleTree()
	refs := FindDirectiveReferences(doc, inheritsDirective)
	if len(refs) != 1 || refs[0].Node != dir {
		t.Fatalf("refs = %+v", refs)
	}
	if got := dir.Tokens(); len(got) != 1 || got[0].Content != "Base<TModel>" {
		t.Fatalf("tokens = %+v", got)
	}
	if !refs[0].Remove() {
		t.Fatal("first remove must succeed")
	}
	if refs[0].Remove() {
		t.Fatal("second remove must report false")
	}
	if len(FindDirectiveReferences(doc, inheritsDirective)) != 0 {
		t.Fatal("directive still present")
	}
}

func TestFindDirectiveReferences_MatchesByChecksum(t *testing.T) {
	doc, _, _ := sampleTree()
	twin := directive.MustNew("inherits", directive.SingleLine, func(b *directive.Builder) {
		b.AddTypeToken("TypeName")
	})
	if len(FindDirectiveReferences(doc, twin)) != 1 {
		t.Fatal("equal descriptors must be interchangeable")
	}
}

func TestGetAllDiagnostics_PreOrder(t *testing.T) {
	doc, cls, dir := sampleTree()
	sp := source.Span{File: 1, Start: 0, End: 1}
	cls.AddDiagnostic(diag.Errorf(diag.IRLMalformedDirective, sp, "first"))
	dir.AddDiagnostic(diag.Errorf(diag.IRLNestedSection, sp, "second"))
	got := GetAllDiagnostics(doc)
	if len(got) != 2 || got[0].Message != "first" || got[1].Message != "second" {
		t.Fatalf("diagnostics = %+v", got)
	}
}

func TestInspectSkipsChildren(t *testing.T) {
	doc, _, _ := sampleTree()
	var kinds []Kind
	Inspect(doc, func(n Node) bool {
		if n == nil {
			return false
		}
		kinds = append(kinds, n.Kind())
		return n.Kind() != KindMethod
	})
	want := []Kind{KindDocument, KindNamespace, KindClass, KindMethod}
	if len(kinds) != len(want) {
		t.Fatalf("visited %v, want %v", kinds, want)
	}
}

func TestDumpIsDeterministic(t *testing.T) {
	a, _, _ := sampleTree()
	b, _, _ := sampleTree()
	if String(a) != String(b) {
		t.Fatal("dump differs for equal trees")
	}
	out := String(a)
	for _, want := range []string{"Namespace \"App\"", "Class public \"Index\"", "Directive @inherits", "Token html \"<p>\""} {
		if !strings.Contains(out, want) {
			t.Fatalf("dump missing %q:\n%s", want, out)
		}
	}
}
