package engine

import (
	"errors"
	"strings"
	"testing"

	"quill/internal/document"
	"quill/internal/ir"
	"quill/internal/lang"
	"quill/internal/source"
)

type recordingPass struct {
	name  string
	order int
	log   *[]string
}

func (p *recordingPass) Name() string { return p.name }
func (p *recordingPass) Order() int   { return p.order }

func (p *recordingPass) Execute(*document.CodeDocument, *ir.Document) error {
	if p.log != nil {
		*p.log = append(*p.log, p.name)
	}
	return nil
}

func names[T Pass](items []T) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name())
	}
	return out
}

func newDoc(t *testing.T, path, src string, imports ...string) *document.CodeDocument {
	t.Helper()
	set := source.NewFileSet()
	main := set.Get(set.AddVirtual(path, []byte(src)))
	var files []*source.File
	for i := 0; i+1 < len(imports); i += 2 {
		files = append(files, set.Get(set.AddVirtual(imports[i], []byte(imports[i+1]))))
	}
	return document.New(main, files...)
}

func build(t *testing.T, cfg Configuration, customize ...func(*Builder)) *Engine {
	t.Helper()
	e, err := NewBuilder(cfg).Build(customize...)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return e
}

func run(t *testing.T, e *Engine, doc *document.CodeDocument) string {
	t.Helper()
	if err := e.RunPhases(doc); err != nil {
		t.Fatalf("RunPhases: %v", err)
	}
	out, err := doc.RequireOutput()
	if err != nil {
		t.Fatalf("output: %v", err)
	}
	return out.Text
}

func wantContains(t *testing.T, text string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(text, p) {
			t.Errorf("output lacks %q:\n%s", p, text)
		}
	}
}

func TestRegistryOrdering(t *testing.T) {
	var r Registry[OptimizationPass]
	r.Add(
		&recordingPass{name: "late", order: 2000},
		&recordingPass{name: "a", order: 1000},
		&recordingPass{name: "b", order: 1000},
		&recordingPass{name: "early", order: -5},
	)
	if got := strings.Join(names(r.Ordered()), ","); got != "early,a,b,late" {
		t.Fatalf("Ordered = %s", got)
	}

	if !r.Replace("a", &recordingPass{name: "a2", order: 1000}) {
		t.Fatal("Replace(a) = false")
	}
	if got := strings.Join(names(r.Ordered()), ","); got != "early,a2,b,late" {
		t.Fatalf("after Replace = %s", got)
	}
	if !r.Remove("early") || r.Remove("early") {
		t.Fatal("Remove must succeed exactly once")
	}
	if _, ok := r.Lookup("b"); !ok || r.Len() != 3 {
		t.Fatalf("Lookup(b) = %v, Len = %d", ok, r.Len())
	}
}

func TestPassesRunInOrder(t *testing.T) {
	var log []string
	e := build(t, DefaultConfiguration(), func(b *Builder) {
		b.AddOptimization(
			&recordingPass{name: "second", order: DefaultFeatureOrder + 500, log: &log},
			&recordingPass{name: "first", order: 1, log: &log},
			&recordingPass{name: "third", order: DefaultFeatureOrder + 500, log: &log},
		)
	})
	run(t, e, newDoc(t, "Index.quill", "<p>x</p>"))
	if got := strings.Join(log, ","); got != "first,second,third" {
		t.Fatalf("log = %s", got)
	}
}

func TestDefaultPipeline(t *testing.T) {
	e := build(t, DefaultConfiguration())
	doc := newDoc(t, "Pages/Index.quill", "@using System.Text\n<p>Hi @Name</p>\n")
	text := run(t, e, doc)
	wantContains(t, text,
		"// checksum sha256 ",
		"namespace Quill",
		"using System.Text;",
		`[QuillDocument("default", "Pages/Index.quill")]`,
		"public class Template",
		"ExecuteAsync()",
		`WriteLiteral("<p>Hi ");`,
		"Write(Name);",
		`WriteLiteral("</p>\n");`,
	)

	irDoc := doc.IR()
	if irDoc.DocumentKind != DefaultDocumentKind {
		t.Fatalf("DocumentKind = %q", irDoc.DocumentKind)
	}
	if n := len(ir.FindDescendants[*ir.Directive](irDoc)); n != 0 {
		t.Fatalf("%d directives survived optimization", n)
	}
	if irDoc.SourceChecksum != doc.Checksum() {
		t.Fatal("IR checksum differs from the document checksum")
	}
}

func TestPipelineIsDeterministic(t *testing.T) {
	e := build(t, DefaultConfiguration())
	src := "@using A\n<div class=\"c @cls\">@x<!-- c --></div>@{ var y = 1; }"
	first := run(t, e, newDoc(t, "Index.quill", src))
	for range 3 {
		if got := run(t, e, newDoc(t, "Index.quill", src)); got != first {
			t.Fatalf("output changed between runs:\n%s\n---\n%s", first, got)
		}
	}
}

func TestObserverSeesEveryPhase(t *testing.T) {
	e := build(t, DefaultConfiguration())
	var started, ended []string
	err := e.Run(newDoc(t, "Index.quill", "x"), func(ev PhaseEvent) {
		if ev.Status == PhaseStart {
			started = append(started, ev.Name)
			return
		}
		ended = append(ended, ev.Name)
	})
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		PhaseParsing, PhaseSyntaxTree, PhaseTagHelperDiscovery, PhaseTagHelperRewrite, PhaseLowering,
		PhaseDocumentClassifier, PhaseDirectiveClassifier, PhaseOptimization, PhaseTargetLowering,
	}, ",")
	if got := strings.Join(started, ","); got != want {
		t.Fatalf("started = %s", got)
	}
	if got := strings.Join(ended, ","); got != want {
		t.Fatalf("ended = %s", got)
	}
}

func TestEngineErrors(t *testing.T) {
	doc := newDoc(t, "Index.quill", "x")
	if err := (&Engine{}).RunPhases(doc); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("unbuilt engine: %v", err)
	}
	if err := (&LoweringPhase{}).Execute(doc); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("uninitialized phase: %v", err)
	}
	e := build(t, DefaultConfiguration())
	if err := e.RunPhases(nil); !errors.Is(err, ErrNilDocument) {
		t.Fatalf("nil document: %v", err)
	}
}

func TestMissingArtifact(t *testing.T) {
	b := NewEmptyBuilder(DefaultConfiguration())
	b.AddDefaultFeatures()
	b.AddPhase(&LoweringPhase{})
	e, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	err = e.RunPhases(newDoc(t, "Index.quill", "x"))
	var missing *MissingArtifactError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want MissingArtifactError", err)
	}
	if missing.Phase != PhaseLowering || missing.Artifact != document.ArtifactSyntaxTree {
		t.Fatalf("missing = %+v", missing)
	}
	if !errors.Is(err, document.ErrArtifactMissing) {
		t.Fatal("not ErrArtifactMissing")
	}
}

func TestMissingFeature(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*Builder)
		requester string
	}{
		{"no target", func(*Builder) {}, "engine"},
		{"parsing without options", func(b *Builder) {
			b.SetCodeTarget(defaultTarget{})
			b.AddPhase(&ParsingPhase{})
		}, PhaseParsing},
		{"classifier phase without classifiers", func(b *Builder) {
			b.SetCodeTarget(defaultTarget{})
			b.AddPhase(&DocumentClassifierPhase{})
		}, PhaseDocumentClassifier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewEmptyBuilder(DefaultConfiguration())
			tt.setup(b)
			_, err := b.Build()
			var mf *MissingFeatureError
			if !errors.As(err, &mf) || mf.Requester != tt.requester {
				t.Fatalf("err = %v, want MissingFeatureError from %s", err, tt.requester)
			}
		})
	}
}

func TestBuildOnce(t *testing.T) {
	b := NewBuilder(DefaultConfiguration())
	if _, err := b.Build(); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Build(); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("second Build: %v", err)
	}
}

func TestConflictingOptions(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.DesignTime = true
	cfg.ParseLeadingDirectives = true
	_, err := NewBuilder(cfg).Build()
	var conflict *ConflictingOptionsError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictingOptionsError", err)
	}
}

func TestVersionExtensions(t *testing.T) {
	tests := []struct {
		name      string
		version   lang.Version
		customize bool
		want      bool
	}{
		{"below minimum", lang.Version2_1, false, false},
		{"at minimum", lang.Version3_0, false, true},
		{"latest", lang.Latest, false, true},
		{"customization runs last", lang.Latest, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfiguration()
			cfg.Version = tt.version
			b := NewBuilder(cfg)
			b.RegisterVersionExtension(lang.Version3_0, func(b *Builder) {
				b.AddOptimization(&recordingPass{name: "v3", order: 1})
			})
			var customize []func(*Builder)
			if tt.customize {
				customize = append(customize, func(b *Builder) { b.Features().Optimizations.Remove("v3") })
			}
			e, err := b.Build(customize...)
			if err != nil {
				t.Fatal(err)
			}
			if _, ok := e.Features().Optimizations.Lookup("v3"); ok != tt.want {
				t.Fatalf("v3 registered = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestEngineIsIsolatedFromBuilder(t *testing.T) {
	b := NewBuilder(DefaultConfiguration())
	e, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	before := e.Features().Optimizations.Len()
	b.Features().Optimizations.Add(&recordingPass{name: "late"})
	if e.Features().Optimizations.Len() != before {
		t.Fatal("builder changes leaked into the built engine")
	}
}

type kindHooks struct {
	kind  string
	match bool
}

func (h kindHooks) DocumentKind() string                              { return h.kind }
func (h kindHooks) IsMatch(*document.CodeDocument, *ir.Document) bool { return h.match }
func (kindHooks) OnDocumentStructureCreated(_ *document.CodeDocument, _ *ir.Namespace, cls *ir.Class, _ *ir.Method) {
	cls.BaseType = "Base"
}

func TestFirstMatchingClassifierWins(t *testing.T) {
	e := build(t, DefaultConfiguration(), func(b *Builder) {
		b.AddDocumentClassifier(
			NewDocumentClassifier("never", 10, kindHooks{kind: "never"}),
			NewDocumentClassifier("first", 500, kindHooks{kind: "first", match: true}),
			NewDocumentClassifier("second", 500, kindHooks{kind: "second", match: true}),
		)
		b.ConfigureClass(func(_ *document.CodeDocument, _ *ir.Document, cls *ir.Class) {
			cls.ClassName = "Configured"
		})
	})
	doc := newDoc(t, "Index.quill", "<p>x</p>")
	text := run(t, e, doc)
	if kind := doc.IR().DocumentKind; kind != "first" {
		t.Fatalf("DocumentKind = %q", kind)
	}
	if n := len(ir.FindDescendants[*ir.Class](doc.IR())); n != 1 {
		t.Fatalf("%d classes, want 1", n)
	}
	wantContains(t, text, "public class Configured : Base")
}

func TestRootNamespaceAndSuppressedBody(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.RootNamespace = "App.Views"
	cfg.CodeGen.SuppressPrimaryMethodBody = true
	e := build(t, cfg)
	text := run(t, e, newDoc(t, "Index.quill", "<p>@x</p>"))
	wantContains(t, text, "namespace App.Views", CompletedTaskStatement)
	if strings.Contains(text, "Write(x);") || strings.Contains(text, " async ") {
		t.Fatalf("method body not eliminated:\n%s", text)
	}
}
