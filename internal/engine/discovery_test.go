package engine

import (
	"slices"
	"testing"

	"quill/internal/diag"
	"quill/internal/document"
	"quill/internal/taghelper"
)

func legacyHelper(name, tag string) *taghelper.Descriptor {
	return taghelper.NewBuilder(taghelper.KindTagHelper, name, "App").
		SetTypeName("App." + name).
		TagMatchingRule(func(r *taghelper.TagMatchingRuleBuilder) { r.TagName = tag }).
		BindAttribute(func(a *taghelper.BoundAttributeBuilder) {
			a.Name = "value"
			a.TypeName = "System.String"
		}).
		Build()
}

func componentHelper(name string) *taghelper.Descriptor {
	return taghelper.NewBuilder(taghelper.KindComponent, name, "App").
		SetTypeName("App." + name).
		TagMatchingRule(func(r *taghelper.TagMatchingRuleBuilder) { r.TagName = name }).
		Build()
}

func helperNames(ctx *document.TagHelperContext) []string {
	out := make([]string, 0, len(ctx.Descriptors))
	for _, d := range ctx.Descriptors {
		out = append(out, d.Name())
	}
	slices.Sort(out)
	return out
}

func treeCodes(doc *document.CodeDocument) []diag.Code {
	var out []diag.Code
	for _, d := range doc.SyntaxTree().Diagnostics {
		out = append(out, d.Code)
	}
	return out
}

func TestLegacyDiscovery(t *testing.T) {
	input := legacyHelper("InputTagHelper", "input")
	form := legacyHelper("FormTagHelper", "form")
	counter := componentHelper("Counter")

	tests := []struct {
		name    string
		src     string
		imports []string
		want    []string
		prefix  string
		codes   []diag.Code
	}{
		{name: "no directives", src: "<input>"},
		{name: "wildcard", src: "@addTagHelper \"*, App\"\n", want: []string{"FormTagHelper", "InputTagHelper"}},
		{name: "assembly is case-insensitive", src: "@addTagHelper \"*, app\"\n", want: []string{"FormTagHelper", "InputTagHelper"}},
		{name: "type prefix", src: "@addTagHelper \"App.Input*, App\"\n", want: []string{"InputTagHelper"}},
		{name: "exact type", src: "@addTagHelper \"App.FormTagHelper, App\"\n", want: []string{"FormTagHelper"}},
		{name: "other assembly", src: "@addTagHelper \"*, Other\"\n"},
		{
			name: "remove after add",
			src:  "@addTagHelper \"*, App\"\n@removeTagHelper \"App.FormTagHelper, App\"\n",
			want: []string{"InputTagHelper"},
		},
		{
			name:    "source refines imports",
			src:     "@removeTagHelper \"App.InputTagHelper, App\"\n",
			imports: []string{"_ViewImports.quill", "@addTagHelper \"*, App\"\n"},
			want:    []string{"FormTagHelper"},
		},
		{name: "prefix", src: "@tagHelperPrefix \"th:\"\n@addTagHelper \"*, App\"\n", want: []string{"FormTagHelper", "InputTagHelper"}, prefix: "th:"},
		{name: "invalid lookup", src: "@addTagHelper \"App\"\n", codes: []diag.Code{diag.SynTagHelperLookupMissing}},
		{name: "invalid prefix", src: "@tagHelperPrefix \"t h\"\n", codes: []diag.Code{diag.SynTagHelperPrefixInvalid}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := build(t, DefaultConfiguration(), func(b *Builder) { b.SetTagHelpers(input, form, counter) })
			doc := newDoc(t, "Index.quill", tt.src, tt.imports...)
			run(t, e, doc)

			ctx := doc.TagHelperContext()
			if got := helperNames(ctx); !slices.Equal(got, tt.want) {
				t.Fatalf("descriptors = %v, want %v", got, tt.want)
			}
			if ctx.Prefix != tt.prefix {
				t.Fatalf("prefix = %q, want %q", ctx.Prefix, tt.prefix)
			}
			if got := treeCodes(doc); !slices.Equal(got, tt.codes) {
				t.Fatalf("codes = %v, want %v", got, tt.codes)
			}
		})
	}
}

func TestComponentDiscovery(t *testing.T) {
	e := build(t, DefaultConfiguration(), func(b *Builder) {
		b.SetTagHelpers(legacyHelper("InputTagHelper", "input"), componentHelper("Counter"))
	})
	doc := newDoc(t, "Pages/Home.qcomp", "<Counter />")
	run(t, e, doc)
	if got := helperNames(doc.TagHelperContext()); !slices.Equal(got, []string{"Counter"}) {
		t.Fatalf("descriptors = %v", got)
	}
}

func TestDocumentTagHelpersOverrideProvider(t *testing.T) {
	e := build(t, DefaultConfiguration(), func(b *Builder) {
		b.SetTagHelpers(legacyHelper("InputTagHelper", "input"))
	})
	doc := newDoc(t, "Index.quill", "@addTagHelper \"*, App\"\n")
	doc.SetTagHelpers([]*taghelper.Descriptor{legacyHelper("FormTagHelper", "form")})
	run(t, e, doc)
	if got := helperNames(doc.TagHelperContext()); !slices.Equal(got, []string{"FormTagHelper"}) {
		t.Fatalf("descriptors = %v", got)
	}
}

func TestBinderIsShared(t *testing.T) {
	e := build(t, DefaultConfiguration(), func(b *Builder) {
		b.SetTagHelpers(legacyHelper("InputTagHelper", "input"))
	})
	first := newDoc(t, "A.quill", "@addTagHelper \"*, App\"\n")
	second := newDoc(t, "B.quill", "@addTagHelper \"*, App\"\n<p>other</p>")
	run(t, e, first)
	run(t, e, second)
	if first.TagHelperContext().Binder != second.TagHelperContext().Binder {
		t.Fatal("equal descriptor sets must share one binder")
	}
}

func TestTagHelperEndToEnd(t *testing.T) {
	e := build(t, DefaultConfiguration(), func(b *Builder) {
		b.SetTagHelpers(legacyHelper("InputTagHelper", "input"))
	})
	text := run(t, e, newDoc(t, "Index.quill", "@addTagHelper \"*, App\"\n<input value=\"@Name\" class=\"c\">"))
	wantContains(t, text,
		"private global::App.InputTagHelper __App_InputTagHelper;",
		"CreateTagHelper<App.InputTagHelper>();",
		`AddHTMLAttribute("class", "c");`,
	)
}
