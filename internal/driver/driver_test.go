package driver

import (
	"context"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"quill/internal/cache"
	"quill/internal/config"
	"quill/internal/diag"
	"quill/internal/engine"
	"quill/internal/lang"
	"quill/internal/testkit"
)

const manifest = `{
  "version": 1,
  "tagHelpers": [
    {
      "kind": "ITagHelper",
      "name": "EmailTagHelper",
      "assembly": "Shop",
      "metadata": {"Common.TypeName": "Shop.EmailTagHelper"},
      "rules": [{"tagName": "email"}],
      "attributes": [{"name": "to", "typeName": "System.String"}]
    }
  ]
}`

func project() fstest.MapFS {
	return fstest.MapFS{
		"taghelpers.json":          {Data: []byte(manifest)},
		"_ViewImports.quill":       {Data: []byte("@using Shop\n")},
		"Views/_ViewImports.quill": {Data: []byte("@addTagHelper *, Shop\n")},
		"Views/Home/Index.quill":   {Data: []byte("<h1>@Model.Title</h1>\n<email to=\"a@b.c\"></email>\n")},
		"Views/Home/About.quill":   {Data: []byte("@page \"/about\"\n<p>about</p>\n")},
		"Shared/Nav.qcomp":         {Data: []byte("<nav>@Title</nav>\n@code { string Title = \"\"; }\n")},
		"Shared/_Imports.qcomp":    {Data: []byte("@using Shop.Components\n")},
		"Views/Home/notes.txt":     {Data: []byte("not a template")},
		// a directory where an import is expected cannot be read
		"Views/Broken/_ViewImports.quill/keep": {Data: []byte("x")},
		"Views/Broken/Index.quill":             {Data: []byte("<p></p>")},
	}
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Root = "/project"
	cfg.TagHelpers.Manifests = []string{"taghelpers.json"}
	return cfg
}

func newSession(t *testing.T, cfg config.Config, configure func(*Options)) *Session {
	t.Helper()
	opts := Options{Config: cfg, FS: project(), Jobs: 2}
	if configure != nil {
		configure(&opts)
	}
	s, err := NewSession(opts)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func TestImportPaths(t *testing.T) {
	tests := []struct {
		name string
		kind lang.FileKind
		want []string
	}{
		{"Index.quill", lang.FileKindLegacy, []string{"_ViewImports.quill"}},
		{"Views/Home/Index.quill", lang.FileKindLegacy, []string{"_ViewImports.quill", "Views/_ViewImports.quill", "Views/Home/_ViewImports.quill"}},
		{"Shared/Nav.qcomp", lang.FileKindComponent, []string{"_Imports.qcomp", "Shared/_Imports.qcomp"}},
		{"Shared/_Imports.qcomp", lang.FileKindComponentImport, []string{"_Imports.qcomp"}},
	}
	for _, tt := range tests {
		if got := ImportPaths(tt.name, tt.kind); !slices.Equal(got, tt.want) {
			t.Errorf("ImportPaths(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestExpand(t *testing.T) {
	s := newSession(t, testConfig(t), nil)
	got, err := s.Expand([]string{"Views/Home", "Shared", "Views/Home/Index.quill", "/project/Missing.quill"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Views/Home/About.quill", "Views/Home/Index.quill", "Shared/Nav.qcomp", "Shared/_Imports.qcomp", "Missing.quill"}
	if !slices.Equal(got, want) {
		t.Fatalf("Expand = %v, want %v", got, want)
	}
	if _, err := s.Expand([]string{"/elsewhere/x.quill"}); err == nil {
		t.Fatal("path outside the root must be rejected")
	}
}

func TestCompileAll(t *testing.T) {
	var events, done atomic.Int64
	s := newSession(t, testConfig(t), func(o *Options) {
		o.Paths = []string{"Views/Home", "Shared/Nav.qcomp"}
		o.Observer = func(string, engine.PhaseEvent) { events.Add(1) }
		o.OnResult = func(*Result) { done.Add(1) }
	})
	results, err := s.CompileAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	var paths []string
	for _, r := range results {
		paths = append(paths, r.Path)
		if r.Bag.HasErrors() {
			t.Errorf("%s: %v", r.Path, r.Bag.Items())
		}
		if err := testkit.CheckIRInvariants(r.Document, s.Files); err != nil {
			t.Errorf("%s: %v", r.Path, err)
		}
	}
	if want := []string{"Views/Home/About.quill", "Views/Home/Index.quill", "Shared/Nav.qcomp"}; !slices.Equal(paths, want) {
		t.Fatalf("paths = %v", paths)
	}
	if events.Load() == 0 {
		t.Fatal("observer saw no phase events")
	}
	if done.Load() != 3 {
		t.Fatalf("OnResult called %d times", done.Load())
	}

	about, index, nav := results[0].Output, results[1].Output, results[2].Output
	for _, tc := range []struct {
		text  string
		parts []string
	}{
		{about, []string{`[global::Quill.Mvc.PageRoute("/about")]`, "class Views_Home_About : global::Quill.Mvc.Page<Views_Home_About>"}},
		{index, []string{"using Shop;", "using System.Linq;", "class Views_Home_Index", "CreateTagHelper<Shop.EmailTagHelper>();", "private global::Shop.EmailTagHelper __Shop_EmailTagHelper;"}},
		{nav, []string{"namespace Quill.Shared", "using Shop.Components;", "public partial class Nav", "string Title = \"\";"}},
	} {
		for _, p := range tc.parts {
			if !strings.Contains(tc.text, p) {
				t.Errorf("output lacks %q:\n%s", p, tc.text)
			}
		}
	}
	if results[1].Timing == nil || len(results[1].Timing.Phases) < 2 {
		t.Fatalf("timing = %+v", results[1].Timing)
	}
}

func TestMissingSource(t *testing.T) {
	s := newSession(t, testConfig(t), nil)
	res, err := s.CompileFile(context.Background(), "Views/Nope.quill")
	if err != nil {
		t.Fatal(err)
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.IOLoadFailed {
		t.Fatalf("diagnostics = %v", items)
	}
}

func TestUnreadableImport(t *testing.T) {
	s := newSession(t, testConfig(t), nil)
	if _, err := s.CompileFile(context.Background(), "Views/Broken/Index.quill"); err == nil {
		t.Fatal("unreadable import must fail the document")
	}

	cfg := testConfig(t)
	cfg.Imports.SuppressErrors = true
	s = newSession(t, cfg, nil)
	res, err := s.CompileFile(context.Background(), "Views/Broken/Index.quill")
	if err != nil {
		t.Fatal(err)
	}
	if items := res.Bag.Items(); len(items) != 1 || items[0].Code != diag.IOImportUnavailable || items[0].IsError() {
		t.Fatalf("diagnostics = %v", items)
	}
}

func TestFileKindOverride(t *testing.T) {
	kind := lang.FileKindComponent
	s := newSession(t, testConfig(t), func(o *Options) { o.FileKind = &kind })
	res, err := s.CompileFile(context.Background(), "Views/Home/Index.quill")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Output, "BuildRenderTree") {
		t.Fatalf("component output expected:\n%s", res.Output)
	}
}

func TestDiskCache(t *testing.T) {
	dc, err := cache.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	compile := func() *Result {
		s := newSession(t, testConfig(t), func(o *Options) { o.DiskCache = dc })
		res, err := s.CompileFile(context.Background(), "Views/Home/About.quill")
		if err != nil {
			t.Fatal(err)
		}
		return res
	}
	first, second := compile(), compile()
	if first.Cached || !second.Cached {
		t.Fatalf("cached = %v, %v", first.Cached, second.Cached)
	}
	if first.Output != second.Output {
		t.Fatal("cached output differs")
	}

	cfg := testConfig(t)
	cfg.CodeGen.IndentSize = 2
	s := newSession(t, cfg, func(o *Options) { o.DiskCache = dc })
	res, err := s.CompileFile(context.Background(), "Views/Home/About.quill")
	if err != nil {
		t.Fatal(err)
	}
	if res.Cached {
		t.Fatal("configuration change must miss the cache")
	}
}

func TestTimingsDiagnostic(t *testing.T) {
	s := newSession(t, testConfig(t), func(o *Options) {
		o.Timings = true
		o.MaxDiagnostics = 1
	})
	res, err := s.CompileFile(context.Background(), "Views/Home/About.quill")
	if err != nil {
		t.Fatal(err)
	}
	items := res.Bag.Items()
	last := items[len(items)-1]
	if last.Code != diag.ObsTimings || len(last.Notes) != 1 || !strings.Contains(last.Notes[0].Msg, `"phases"`) {
		t.Fatalf("timings diagnostic = %+v", last)
	}
}

func TestLoadTagHelpersErrors(t *testing.T) {
	fsys := fstest.MapFS{"bad.json": {Data: []byte(`{"version": 7, "tagHelpers": []}`)}}
	if _, err := LoadTagHelpers(fsys, []string{"bad.json"}); err == nil || !strings.Contains(err.Error(), "unsupported version") {
		t.Fatalf("err = %v", err)
	}
	if _, err := LoadTagHelpers(fsys, []string{"missing.json"}); err == nil {
		t.Fatal("missing manifest must fail")
	}
	set, err := LoadTagHelpers(project(), []string{"taghelpers.json", "taghelpers.json"})
	if err != nil {
		t.Fatal(err)
	}
	if set.Len() != 1 {
		t.Fatalf("union kept %d descriptors", set.Len())
	}
}
