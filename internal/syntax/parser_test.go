package syntax

import (
	"testing"

	"quill/internal/diag"
	"quill/internal/directive"
	"quill/internal/lang"
	"quill/internal/source"
)

var (
	sectionDirective = directive.MustNew("section", directive.RazorBlock, func(b *directive.Builder) {
		b.AddMemberToken("SectionName")
	})
	functionsDirective = directive.MustNew("functions", directive.CodeBlock, nil)
	modelDirective     = directive.MustNew("model", directive.SingleLine, func(b *directive.Builder) {
		b.AddTypeToken("TypeName").SetUsage(directive.FileScopedSinglyOccurring)
	})
)

func testOptions() lang.ParserOptions {
	opts := lang.NewParserOptions(lang.Latest, lang.FileKindLegacy)
	opts.Directives = append(directive.Builtins(), sectionDirective, functionsDirective, modelDirective)
	return opts
}

func parseWith(t *testing.T, src string, opts lang.ParserOptions) *Tree {
	t.Helper()
	set := source.NewFileSet()
	id := set.AddVirtual("test.quill", []byte(src))
	return Parse(set.Get(id), opts)
}

func parse(t *testing.T, src string) *Tree {
	t.Helper()
	return parseWith(t, src, testOptions())
}

func codes(items []diag.Diagnostic) []diag.Code {
	out := make([]diag.Code, 0, len(items))
	for _, d := range items {
		out = append(out, d.Code)
	}
	return out
}

func wantCodes(t *testing.T, got []diag.Diagnostic, want ...diag.Code) {
	t.Helper()
	gc := codes(got)
	if len(gc) != len(want) {
		t.Fatalf("diagnostics = %v, want %v", gc, want)
	}
	for i := range want {
		if gc[i] != want[i] {
			t.Fatalf("diagnostics = %v, want %v", gc, want)
		}
	}
}

func TestParse_Directives(t *testing.T) {
	tree := parse(t, "@using System.Text\n@addTagHelper \"*, App\"\n<p>Hi @Model.Name</p>\n")
	wantCodes(t, tree.AllDiagnostics())

	body := tree.Root.Body
	if len(body) != 4 {
		t.Fatalf("body has %d nodes, want 4", len(body))
	}
	using, ok := body[0].(*Directive)
	if !ok || using.Keyword() != "using" {
		t.Fatalf("body[0] = %#v, want @using", body[0])
	}
	if got := using.Tokens[0].Content; got != "System.Text" {
		t.Fatalf("namespace token = %q", got)
	}
	add := body[1].(*Directive)
	if got := add.Tokens[0].Value(); got != "*, App" {
		t.Fatalf("lookup text = %q", got)
	}
	p := body[2].(*MarkupElement)
	if p.Name != "p" || !p.HasEndTag {
		t.Fatalf("element = %+v", p)
	}
	expr, ok := p.Body[1].(*CodeExpression)
	if !ok || expr.Code != "Model.Name" || expr.Explicit {
		t.Fatalf("p body[1] = %#v, want implicit Model.Name", p.Body[1])
	}
	if text := body[3].(*MarkupText).Text; text != "\n" {
		t.Fatalf("trailing text = %q", text)
	}
	if dirs := tree.Directives(); len(dirs) != 2 {
		t.Fatalf("Directives() = %d, want 2", len(dirs))
	}
}

func TestParse_DirectiveErrors(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		malformed bool
		want      diag.Code
	}{
		{"missing token", "@addTagHelper\n<p></p>", true, diag.SynDirectiveMissingToken},
		{"trailing content", "@using System junk\n", true, diag.SynDirectiveTrailing},
		{"unterminated string", "@addTagHelper \"*, App\n", true, diag.SynUnterminatedStringToken},
		{"invalid member", "@section 42 { }", true, diag.SynDirectiveInvalidToken},
		{"missing block", "@section Scripts\n<p></p>", true, diag.SynDirectiveMissingBlock},
		{"unterminated block", "@section Scripts { <p>", true, diag.SynUnterminatedBlock},
		{"nested file scoped", "@section S { @tagHelperPrefix x\n }", false, diag.SynDirectiveNotTopLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := parse(t, tt.src)
			dirs := tree.Directives()
			if len(dirs) == 0 {
				t.Fatal("no directive parsed")
			}
			if got := dirs[0].Malformed(); got != tt.malformed {
				t.Fatalf("Malformed() = %v, want %v", got, tt.malformed)
			}
			found := false
			for _, d := range tree.AllDiagnostics() {
				found = found || d.Code == tt.want
			}
			if !found {
				t.Fatalf("diagnostics = %v, want %s", codes(tree.AllDiagnostics()), tt.want.ID())
			}
		})
	}
}

func TestParse_DuplicateSinglyOccurring(t *testing.T) {
	tree := parse(t, "@tagHelperPrefix th:\n@tagHelperPrefix x:\n")
	wantCodes(t, tree.Diagnostics, diag.SynDuplicateDirective)
	dirs := tree.Directives()
	if len(dirs) != 2 {
		t.Fatalf("directives = %d, want 2", len(dirs))
	}
	for _, d := range dirs {
		if d.Malformed() {
			t.Fatalf("@%s must stay well-formed", d.Keyword())
		}
	}
	if got := dirs[0].Tokens[0].Content; got != "th:" {
		t.Fatalf("prefix = %q", got)
	}
	if len(tree.Diagnostics[0].Notes) != 1 {
		t.Fatal("duplicate should point at the first occurrence")
	}
}

func TestParse_Section(t *testing.T) {
	tree := parse(t, "@section Scripts {\n<script>x</script>\n}\n<p></p>")
	wantCodes(t, tree.AllDiagnostics())
	sec := tree.Root.Body[0].(*Directive)
	if sec.Tokens[0].Content != "Scripts" {
		t.Fatalf("section name = %q", sec.Tokens[0].Content)
	}
	if len(sec.Body) != 3 {
		t.Fatalf("section body = %d nodes, want 3", len(sec.Body))
	}
	if el := sec.Body[1].(*MarkupElement); el.Name != "script" {
		t.Fatalf("section body[1] = %q", el.Name)
	}
	last := tree.Root.Body[len(tree.Root.Body)-1].(*MarkupElement)
	if last.Name != "p" {
		t.Fatalf("last = %q", last.Name)
	}
}

func TestParse_SectionKeepsTextBraces(t *testing.T) {
	tree := parse(t, "@section S { a { b } c }")
	wantCodes(t, tree.AllDiagnostics())
	sec := tree.Root.Body[0].(*Directive)
	if got := sec.Body[0].(*MarkupText).Text; got != " a { b } c " {
		t.Fatalf("body text = %q", got)
	}
}

func TestParse_CodeBlocks(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		code      string
		statement bool
	}{
		{"block", "@{ var x = \"}\"; }", " var x = \"}\"; ", false},
		{"if else", "@if (a) { <p>x</p> } else { y }\n", "if (a) { <p>x</p> } else { y }", true},
		{"else if", "@if (a) { } else if (b) { } else { }", "if (a) { } else if (b) { } else { }", true},
		{"try catch", "@try { } catch (E e) { } finally { }", "try { } catch (E e) { } finally { }", true},
		{"do while", "@do { i++; } while (i < 3);", "do { i++; } while (i < 3);", true},
		{"foreach", "@foreach (var i in items) { <li>@i</li> }", "foreach (var i in items) { <li>@i</li> }", true},
		{"using statement", "@using (var s = Open()) { }", "using (var s = Open()) { }", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := parse(t, tt.src)
			wantCodes(t, tree.AllDiagnostics())
			cb, ok := tree.Root.Body[0].(*CodeBlock)
			if !ok {
				t.Fatalf("body[0] = %#v, want code block", tree.Root.Body[0])
			}
			if cb.Code != tt.code || cb.Statement != tt.statement {
				t.Fatalf("code = %q statement=%v, want %q %v", cb.Code, cb.Statement, tt.code, tt.statement)
			}
		})
	}
}

func TestParse_FunctionsDirective(t *testing.T) {
	tree := parse(t, "@functions { int X() { return 1; } }")
	wantCodes(t, tree.AllDiagnostics())
	fn := tree.Root.Body[0].(*Directive)
	if fn.Code != " int X() { return 1; } " {
		t.Fatalf("code = %q", fn.Code)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want diag.Code
	}{
		{"unterminated block", "@{ var x = 1;", diag.SynUnterminatedBlock},
		{"unterminated expression", "@(a + b", diag.SynUnterminatedExpression},
		{"unterminated comment", "@* never closed", diag.SynUnterminatedComment},
		{"unmatched end tag", "<p></div></p>", diag.SynUnmatchedEndTag},
		{"bad transition", "x @! y", diag.SynUnexpectedAfterAt},
		{"unterminated start tag", "<p class=\"x\"", diag.SynUnterminatedStartTag},
		{"statement without block", "@if (a) b", diag.SynUnterminatedBlock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := parse(t, tt.src)
			wantCodes(t, tree.Diagnostics, tt.want)
		})
	}
}

func TestParse_UnmatchedEndTagStaysText(t *testing.T) {
	tree := parse(t, "<p></div></p>")
	p := tree.Root.Body[0].(*MarkupElement)
	if !p.HasEndTag {
		t.Fatal("p should be closed")
	}
	if got := p.Body[0].(*MarkupText).Text; got != "</div>" {
		t.Fatalf("stray end tag text = %q", got)
	}
}

func TestParse_ImplicitlyClosedElements(t *testing.T) {
	tree := parse(t, "<div><p>a</div>")
	div := tree.Root.Body[0].(*MarkupElement)
	if !div.HasEndTag {
		t.Fatal("div should be closed")
	}
	p := div.Body[0].(*MarkupElement)
	if p.HasEndTag {
		t.Fatal("p has no end tag")
	}
}

func TestParse_TransitionsAndEmail(t *testing.T) {
	tree := parse(t, "mail a@b.com @@home @* note *@")
	wantCodes(t, tree.AllDiagnostics())
	body := tree.Root.Body
	if text := body[0].(*MarkupText).Text; text != "mail a@b.com " {
		t.Fatalf("text = %q", text)
	}
	if _, ok := body[1].(*Transition); !ok {
		t.Fatalf("body[1] = %#v, want transition", body[1])
	}
	if text := body[2].(*MarkupText).Text; text != "home " {
		t.Fatalf("text = %q", text)
	}
	if c := body[3].(*Comment); c.Text != " note " {
		t.Fatalf("comment = %q", c.Text)
	}
}

func TestParse_Attributes(t *testing.T) {
	tree := parse(t, `<a href="/x/@(id)?q=@Model.Q" title='@Call("a")' disabled data-n=3>`)
	wantCodes(t, tree.AllDiagnostics())
	a := tree.Root.Body[0].(*MarkupElement)
	if len(a.Attributes) != 4 {
		t.Fatalf("attributes = %d, want 4", len(a.Attributes))
	}

	href := a.Attributes[0]
	if len(href.Value) != 4 || href.Quote != '"' {
		t.Fatalf("href parts = %d quote=%q", len(href.Value), href.Quote)
	}
	if e := href.Value[1].(*CodeExpression); e.Code != "id" || !e.Explicit {
		t.Fatalf("href[1] = %+v", e)
	}
	if e := href.Value[3].(*CodeExpression); e.Code != "Model.Q" {
		t.Fatalf("href[3] = %+v", e)
	}
	if _, literal := href.LiteralValue(); literal {
		t.Fatal("href is dynamic")
	}

	if e := a.Attributes[1].Value[0].(*CodeExpression); e.Code != `Call("a")` {
		t.Fatalf("title = %+v", e)
	}
	if !a.Attributes[2].Minimized {
		t.Fatal("disabled is minimized")
	}
	if v, ok := a.Attributes[3].LiteralValue(); !ok || v != "3" {
		t.Fatalf("data-n = %q %v", v, ok)
	}
}

func TestParse_CodeInAttributeArea(t *testing.T) {
	tree := parse(t, `<input @(extra) type="text">`)
	wantCodes(t, tree.AllDiagnostics())
	el := tree.Root.Body[0].(*MarkupElement)
	if len(el.Attributes) != 2 || !el.Attributes[0].IsCode() {
		t.Fatalf("attributes = %+v", el.Attributes)
	}
	if e := el.Attributes[0].Value[0].(*CodeExpression); e.Code != "extra" || !e.Explicit {
		t.Fatalf("code = %+v", e)
	}

	opts := testOptions()
	opts.Features = lang.FeaturesFor(lang.Version3_0)
	old := parseWith(t, `<input @(extra) type="text">`, opts)
	for _, a := range old.Root.Body[0].(*MarkupElement).Attributes {
		if a.IsCode() {
			t.Fatal("before 5.0 the attribute area holds no code")
		}
	}
}

func TestParse_VoidAndSelfClosing(t *testing.T) {
	tree := parse(t, "<br><img src=x /><p>t</p>")
	body := tree.Root.Body
	if len(body) != 3 {
		t.Fatalf("body = %d nodes, want 3", len(body))
	}
	if !body[0].(*MarkupElement).Void {
		t.Fatal("br is void")
	}
	if !body[1].(*MarkupElement).SelfClosing {
		t.Fatal("img is self-closing")
	}
}

func TestParse_OptOut(t *testing.T) {
	tree := parse(t, "<!p>x</!p>")
	wantCodes(t, tree.AllDiagnostics())
	p := tree.Root.Body[0].(*MarkupElement)
	if !p.OptOut || !p.HasEndTag || p.Name != "p" {
		t.Fatalf("element = %+v", p)
	}
}

func TestParse_LeadingDirectivesOnly(t *testing.T) {
	opts := testOptions()
	opts.ParseLeadingDirectives = true
	tree := parseWith(t, "@using A\n\n@* c *@\n<p>@using B</p>", opts)
	dirs := tree.Directives()
	if len(dirs) != 1 || dirs[0].Tokens[0].Content != "A" {
		t.Fatalf("directives = %+v", dirs)
	}
	for _, n := range tree.Root.Body {
		if n.Kind() == KindMarkupElement {
			t.Fatal("parsing must stop before the first element")
		}
	}
}

func TestParse_UsingStatementIsNotDirective(t *testing.T) {
	tree := parse(t, "@using (x) { }")
	if len(tree.Directives()) != 0 {
		t.Fatal("@using ( is a statement")
	}
}

func TestParse_ModelTypeToken(t *testing.T) {
	tree := parse(t, "@model Dictionary<string, List<int>>\n")
	wantCodes(t, tree.AllDiagnostics())
	if got := tree.Directives()[0].Tokens[0].Content; got != "Dictionary<string, List<int>>" {
		t.Fatalf("type = %q", got)
	}
}

func TestParse_Spans(t *testing.T) {
	src := "ab<p>cd</p>"
	tree := parse(t, src)
	p := tree.Root.Body[1].(*MarkupElement)
	if got := p.Span(); got.Start != 2 || int(got.End) != len(src) {
		t.Fatalf("span = %v", got)
	}
	if got := p.StartTag.Slice(tree.Source); got != "<p>" {
		t.Fatalf("start tag = %q", got)
	}
	if got := p.EndTag.Slice(tree.Source); got != "</p>" {
		t.Fatalf("end tag = %q", got)
	}
}
