package document

import (
	"errors"
	"testing"

	"quill/internal/lang"
	"quill/internal/source"
)

func TestRequireUnsetSlots(t *testing.T) {
	set := source.NewFileSet()
	doc := New(set.Get(set.AddVirtual("Pages/Index.quill", []byte("<p/>"))))

	checks := []struct {
		artifact string
		err      error
	}{
		{ArtifactSyntaxTree, second(doc.RequireSyntaxTree())},
		{ArtifactImportTrees, second(doc.RequireImportSyntaxTrees())},
		{ArtifactTagHelperContext, second(doc.RequireTagHelperContext())},
		{ArtifactIR, second(doc.RequireIR())},
		{ArtifactOutput, second(doc.RequireOutput())},
		{ArtifactParserOptions, second(doc.RequireParserOptions())},
		{ArtifactCodeGenOptions, second(doc.RequireCodeGenOptions())},
	}
	for _, c := range checks {
		var missingErr *MissingArtifactError
		if !errors.As(c.err, &missingErr) || missingErr.Artifact != c.artifact {
			t.Errorf("%s: err = %v", c.artifact, c.err)
		}
		if !errors.Is(c.err, ErrArtifactMissing) {
			t.Errorf("%s: not ErrArtifactMissing", c.artifact)
		}
	}
}

func second[T any](_ T, err error) error { return err }

func TestEmptyImportListIsAnArtifact(t *testing.T) {
	doc := New(nil)
	doc.SetImportSyntaxTrees(nil)
	if _, err := doc.RequireImportSyntaxTrees(); err != nil {
		t.Fatalf("empty import list rejected: %v", err)
	}
	if _, ok := doc.TagHelpers(); ok {
		t.Fatal("tag helpers must start unset")
	}
	doc.SetTagHelpers(nil)
	if _, ok := doc.TagHelpers(); !ok {
		t.Fatal("empty tag helper set must count as provided")
	}
}

func TestOptionsAreCopied(t *testing.T) {
	doc := New(nil)
	opts := lang.DefaultCodeGenOptions()
	doc.SetCodeGenOptions(opts)
	opts.IndentSize = 8
	got, err := doc.RequireCodeGenOptions()
	if err != nil || got.IndentSize != 4 {
		t.Fatalf("options = %+v, %v", got, err)
	}
}

func TestFileKindAndChecksum(t *testing.T) {
	set := source.NewFileSet()
	comp := set.Get(set.AddVirtual("Shared/Button.qcomp", []byte("<button/>")))
	imp := set.Get(set.AddVirtual("_Imports.qcomp", []byte("@using App")))

	a := New(comp)
	if a.FileKind != lang.FileKindComponent {
		t.Fatalf("kind = %v", a.FileKind)
	}
	b := New(comp, imp)
	if a.Checksum() == b.Checksum() {
		t.Fatal("imports must change the document checksum")
	}
	if b.Checksum() != New(comp, imp).Checksum() {
		t.Fatal("checksum must be deterministic")
	}
}
