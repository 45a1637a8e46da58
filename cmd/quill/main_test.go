package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quill/internal/diag"
	"quill/internal/driver"
)

const testManifest = `{
  "version": 1,
  "tagHelpers": [
    {
      "kind": "ITagHelper",
      "name": "EmailTagHelper",
      "assembly": "Shop",
      "metadata": {"Common.TypeName": "Shop.EmailTagHelper"},
      "rules": [{"tagName": "email", "attributes": [{"name": "to"}]}]
    }
  ]
}`

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, text := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// execute runs the root command. Flags keep their values between runs, so
// every call spells out the ones it depends on.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append(args, "--color", "off"))
	err := rootCmd.Execute()
	cleanup()
	return stdout.String(), stderr.String(), err
}

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in      string
		want    uiMode
		wantErr bool
	}{
		{"", uiModeAuto, false},
		{" ON ", uiModeOn, false},
		{"off", uiModeOff, false},
		{"sometimes", "", true},
	}
	for _, tt := range tests {
		got, err := readUIMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("readUIMode(%q) = %q, %v", tt.in, got, err)
		}
	}
	if !shouldUseTUI(uiModeOn) || shouldUseTUI(uiModeOff) {
		t.Fatal("explicit modes must win")
	}
}

func TestOutputName(t *testing.T) {
	got := outputName("out", "Views/Home/Index.quill")
	if want := filepath.Join("out", "Views", "Home", "Index.quill.g.cs"); got != want {
		t.Fatalf("outputName = %q, want %q", got, want)
	}
}

func TestCollectDiagnostics(t *testing.T) {
	bag := diag.NewBag(0)
	bag.Add(diag.Unlocatedf(diag.IOImportUnavailable, "import skipped"))
	bag.Add(diag.Diagnostic{Severity: diag.SevWarning, Code: diag.IOImportUnavailable, Message: "w", Unlocated: true})
	bag.Add(diag.Diagnostic{Severity: diag.SevInfo, Code: diag.ObsTimings, Message: "timings", Unlocated: true})
	results := []*driver.Result{{Path: "a.quill", Bag: bag}, nil}

	tests := []struct {
		name       string
		opts       reportOptions
		wantLen    int
		wantErrors bool
	}{
		{"pretty drops timings", reportOptions{format: "pretty"}, 2, true},
		{"json keeps timings", reportOptions{format: "json"}, 3, true},
		{"no warnings", reportOptions{format: "short", noWarnings: true}, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collectDiagnostics(results, tt.opts)
			if got.Len() != tt.wantLen || got.HasErrors() != tt.wantErrors {
				t.Fatalf("got %d diagnostics: %v", got.Len(), got.Items())
			}
		})
	}

	promoted := collectDiagnostics(results, reportOptions{format: "short", warningsAsErrors: true})
	for _, d := range promoted.Items() {
		if d.Severity == diag.SevWarning {
			t.Fatalf("warning survived promotion: %v", d)
		}
	}
}

func TestCompileCommand(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"quill.toml":               "[project]\nroot_namespace = \"Shop\"\n\n[taghelpers]\nmanifests = [\"taghelpers.json\"]\n",
		"taghelpers.json":          testManifest,
		"Views/_ViewImports.quill": "@addTagHelper *, Shop\n",
		"Views/Home/Index.quill":   "<h1>@Model.Title</h1>\n<email to=\"a@b.c\"></email>\n",
		"Views/Home/About.quill":   "@page \"/about\"\n<p>about</p>\n",
	})
	out := filepath.Join(t.TempDir(), "gen")

	_, stderr, err := execute(t, "compile", "--ui", "off", "--format", "pretty", "-o", out, dir)
	if err != nil {
		t.Fatalf("compile: %v\n%s", err, stderr)
	}
	data, err := os.ReadFile(filepath.Join(out, "Views", "Home", "Index.quill.g.cs"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "CreateTagHelper<Shop.EmailTagHelper>();") {
		t.Fatalf("generated code lacks the tag helper:\n%s", data)
	}
	if _, err := os.Stat(filepath.Join(out, "Views", "_ViewImports.quill.g.cs")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("imports must not be compiled on their own: %v", err)
	}
}

func TestCompileToStdout(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"Pages/About.quill": "@page \"/about\"\n<p>about</p>\n",
	})
	stdout, stderr, err := execute(t, "compile", "--ui", "off", "--format", "pretty", "-o", "", "--emit-ir", filepath.Join(dir, "Pages", "About.quill"))
	if err != nil {
		t.Fatalf("compile: %v\n%s", err, stderr)
	}
	// без quill.toml корнем проекта становится каталог файла
	for _, want := range []string{"== IR About.quill ==", `PageRoute("/about")`} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout lacks %q:\n%s", want, stdout)
		}
	}
	if strings.Contains(stdout, "// ----") {
		t.Error("a single document needs no separator")
	}
}

func TestDiagCommandReportsErrors(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"Views/Broken.quill": "<p>ok</p>\n@{ var x = 1;\n",
		"Views/Fine.quill":   "<p>@DateTime.Now</p>\n",
	})
	stdout, _, err := execute(t, "diag", "--format", "short", dir)
	if !errors.Is(err, errDiagnostics) {
		t.Fatalf("err = %v, want errDiagnostics", err)
	}
	if !strings.Contains(stdout, "Views/Broken.quill:2:1: error SYN2104") {
		t.Fatalf("short output:\n%s", stdout)
	}
	if strings.Contains(stdout, "Fine.quill") {
		t.Fatalf("clean document reported:\n%s", stdout)
	}

	stdout, _, err = execute(t, "diag", "--format", "json", dir)
	if !errors.Is(err, errDiagnostics) {
		t.Fatalf("err = %v", err)
	}
	var payload struct {
		Count  int `json:"count"`
		Errors int `json:"errors"`
	}
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("json output: %v\n%s", err, stdout)
	}
	if payload.Errors == 0 || payload.Count < payload.Errors {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestTagHelpersCommand(t *testing.T) {
	dir := writeProject(t, map[string]string{"taghelpers.json": testManifest})
	manifest := filepath.Join(dir, "taghelpers.json")

	stdout, _, err := execute(t, "taghelpers", "--format", "table", "-o", "", manifest)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"KIND", "ITagHelper", "EmailTagHelper", "Shop.EmailTagHelper", "email[to]", "1 descriptors"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("table lacks %q:\n%s", want, stdout)
		}
	}

	packed := filepath.Join(dir, "taghelpers.msgpack")
	if _, _, err := execute(t, "taghelpers", "--format", "msgpack", "-o", packed, manifest); err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(packed); err != nil || info.Size() == 0 {
		t.Fatalf("msgpack output: %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version", "--format", "json", "--hash")
	if err != nil {
		t.Fatal(err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Tool != "quill" || payload.Version == "" || payload.GitCommit == "" {
		t.Fatalf("payload = %+v", payload)
	}
}
