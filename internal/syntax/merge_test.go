package syntax

import (
	"testing"

	"quill/internal/source"
)

func text(s string, start uint32) *MarkupText {
	n := &MarkupText{Text: s}
	n.loc = source.Span{File: 1, Start: start, End: start + uint32(len(s))}
	return n
}

func TestMergeAdjacentText(t *testing.T) {
	el := &MarkupElement{Name: "p", Body: []Node{text("a", 3), text("b", 4)}}
	tree := &Tree{Root: &Document{Body: []Node{text("x", 0), text("yz", 1), el, text("gap", 20)}}}

	if got := MergeAdjacentText(tree); got != 2 {
		t.Fatalf("removed = %d, want 2", got)
	}
	body := tree.Root.Body
	if len(body) != 3 {
		t.Fatalf("body = %d nodes, want 3", len(body))
	}
	if m := body[0].(*MarkupText); m.Text != "xyz" || m.Span() != (source.Span{File: 1, Start: 0, End: 3}) {
		t.Fatalf("merged = %q %v", m.Text, m.Span())
	}
	if inner := el.Body; len(inner) != 1 || inner[0].(*MarkupText).Text != "ab" {
		t.Fatalf("element body = %+v", inner)
	}
	if got := MergeAdjacentText(tree); got != 0 {
		t.Fatalf("second run removed %d", got)
	}
}

func TestMergeAdjacentTextKeepsGaps(t *testing.T) {
	tree := &Tree{Root: &Document{Body: []Node{text("a", 0), text("b", 5)}}}
	if got := MergeAdjacentText(tree); got != 0 || len(tree.Root.Body) != 2 {
		t.Fatalf("removed = %d, body = %d", got, len(tree.Root.Body))
	}
}

func TestTrimDirectiveTokens(t *testing.T) {
	orig := &Directive{
		Descriptor: modelDirective,
		Tokens: []DirectiveToken{{
			Content: "  Foo.Bar\t",
			Span:    source.Span{File: 1, Start: 7, End: 17},
		}},
	}
	tree := &Tree{Root: &Document{Body: []Node{orig}}}
	clone := tree.Clone()

	if got := TrimDirectiveTokens(clone); got != 1 {
		t.Fatalf("trimmed = %d, want 1", got)
	}
	d := clone.Root.Body[0].(*Directive)
	tok := d.Tokens[0]
	if tok.Content != "Foo.Bar" || tok.Span != (source.Span{File: 1, Start: 9, End: 16}) {
		t.Fatalf("token = %q %v", tok.Content, tok.Span)
	}
	if orig.Tokens[0].Content != "  Foo.Bar\t" {
		t.Fatal("the original directive changed")
	}
	if got := TrimDirectiveTokens(clone); got != 0 {
		t.Fatalf("second run trimmed %d", got)
	}
}

func TestTrimDirectiveTokensParsed(t *testing.T) {
	tree := parse(t, "@model Foo\n<p>x</p>\n")
	if got := TrimDirectiveTokens(tree); got != 0 {
		t.Fatalf("parsed tokens are already trimmed, got %d", got)
	}
}
