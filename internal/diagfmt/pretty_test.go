package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"quill/internal/diag"
	"quill/internal/source"
)

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("<p>@(Model.Name</p>\n")
	fileID := fs.AddVirtual("/home/user/project/Views/Index.quill", content)

	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevError, diag.SynUnterminatedExpression, source.Span{File: fileID, Start: 3, End: 15}, "Unterminated explicit expression"))

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/Views/Index.quill:1:4"},
		{"Relative path", PathModeRelative, "Views/Index.quill:1:4"},
		{"Basename only", PathModeBasename, "Index.quill:1:4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: tt.mode, BaseDir: "/home/user/project"}); err != nil {
				t.Fatal(err)
			}
			output := buf.String()
			for _, want := range []string{tt.contains, "ERROR", "SYN2105", "Unterminated explicit"} {
				if !strings.Contains(output, want) {
					t.Errorf("Expected output to contain %q, got:\n%s", want, output)
				}
			}
		})
	}
}

// TestPathModeAuto проверяет авто-режим выбора пути
func TestPathModeAuto(t *testing.T) {
	fs := source.NewFileSet()
	short := fs.AddVirtual("Index.quill", []byte("x"))
	long := fs.AddVirtual("/very/long/absolute/path/to/Views/Home/Index.quill", []byte("x"))
	rel := fs.AddRelative("/srv/app/Views/About.quill", "/Views/About.quill", []byte("x"), 0)

	tests := []struct {
		id   source.FileID
		want string
	}{
		{short, "Index.quill"},
		{long, "Index.quill"},
		{rel, "Views/About.quill"},
	}
	for _, tt := range tests {
		if got := displayPath(fs.Get(tt.id), PathModeAuto, ""); got != tt.want {
			t.Errorf("displayPath(%d) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestPrettyExcerpt(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("@page\n<h1>\t@Title</h1>\n<p>ok</p>\n")
	fileID := fs.AddVirtual("Index.quill", content)

	bag := diag.NewBag(4)
	d := diag.New(diag.SevWarning, diag.SynUnexpectedAfterAt, source.Span{File: fileID, Start: 11, End: 17}, "odd expression")
	d = d.WithNote(source.Span{File: fileID, Start: 0, End: 5}, "page declared here")
	bag.Add(d)

	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: PathModeBasename, ShowNotes: true}); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"Index.quill:2:6: WARNING SYN2108: odd expression",
		"1 | @page",
		"2 | <h1>    @Title</h1>",
		"  |         ^~~~~~",
		"3 | <p>ok</p>",
		"  = note: Index.quill:1:1: page declared here",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyUnlocated(t *testing.T) {
	bag := diag.NewBag(4)
	bag.Add(diag.Unlocatedf(diag.IOLoadFailed, "failed to load %s", "Missing.quill"))
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, source.NewFileSet(), PrettyOpts{}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "ERROR IO5001: failed to load Missing.quill\n" {
		t.Fatalf("got %q", got)
	}
}

func TestShortAndSummary(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("Index.quill", []byte("<p>\n@{\n"))
	bag := diag.NewBag(4)
	bag.Add(diag.New(diag.SevError, diag.SynUnterminatedBlock, source.Span{File: fileID, Start: 4, End: 6}, "missing }"))
	bag.Add(diag.Diagnostic{Severity: diag.SevWarning, Code: diag.IOImportUnavailable, Message: "import skipped", Unlocated: true})

	var buf bytes.Buffer
	if err := Short(&buf, bag, fs, PathModeAuto, ""); err != nil {
		t.Fatal(err)
	}
	want := "Index.quill:2:1: error SYN2104: missing }\nwarning IO5002: import skipped\n"
	if buf.String() != want {
		t.Fatalf("Short = %q", buf.String())
	}

	buf.Reset()
	if err := Summary(&buf, bag); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "1 error, 1 warning\n" {
		t.Fatalf("Summary = %q", buf.String())
	}
	buf.Reset()
	_ = Summary(&buf, diag.NewBag(1))
	if buf.Len() != 0 {
		t.Fatal("empty bag must print nothing")
	}
}
