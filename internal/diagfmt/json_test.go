package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"quill/internal/diag"
	"quill/internal/source"
)

func TestJSON(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("<div>\n  @(Model.Name\n</div>")
	fileID := fs.AddVirtual("Views/Index.quill", content)

	bag := diag.NewBag(10)
	d := diag.New(diag.SevError, diag.SynUnterminatedExpression, source.Span{File: fileID, Start: 8, End: 20}, "Unterminated explicit expression")
	d = d.WithNote(source.Span{File: fileID, Start: 0, End: 5}, "inside this element")
	bag.Add(d)
	bag.Add(diag.Diagnostic{Severity: diag.SevInfo, Code: diag.ObsTimings, Message: "timings", Unlocated: true, Notes: []diag.Note{{Msg: `{"total_ms":1}`}}})

	tests := []struct {
		name      string
		opts      JSONOpts
		count     int
		notes     int
		startLine uint32
	}{
		{"positions and notes", JSONOpts{IncludePositions: true, IncludeNotes: true, PathMode: PathModeBasename}, 2, 1, 2},
		{"bytes only", JSONOpts{PathMode: PathModeBasename}, 2, 0, 0},
		{"limited", JSONOpts{Max: 1, PathMode: PathModeBasename}, 1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := JSON(&buf, bag, fs, tt.opts); err != nil {
				t.Fatal(err)
			}
			var out DiagnosticsOutput
			if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
				t.Fatalf("Invalid JSON output: %v\n%s", err, buf.String())
			}
			if out.Count != tt.count || out.Errors != 1 {
				t.Fatalf("count=%d errors=%d", out.Count, out.Errors)
			}
			first := out.Diagnostics[0]
			if first.Code != "SYN2105" || first.Severity != "error" || first.Title == "" {
				t.Errorf("first = %+v", first)
			}
			loc := first.Location
			if loc == nil || loc.File != "Index.quill" || loc.StartByte != 8 || loc.EndByte != 20 || loc.StartLine != tt.startLine {
				t.Errorf("location = %+v", loc)
			}
			if len(first.Notes) != tt.notes {
				t.Errorf("notes = %+v", first.Notes)
			}
			if tt.count == 2 {
				timing := out.Diagnostics[1]
				if timing.Location != nil || len(timing.Notes) != 1 || timing.Notes[0].Location != nil {
					t.Errorf("timings diagnostic = %+v", timing)
				}
			}
		})
	}
}

func TestJSONStartColumn(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("a.quill", []byte("ab\ncd@"))
	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevError, diag.SynUnexpectedAfterAt, source.Span{File: fileID, Start: 5, End: 6}, "dangling @"))
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{IncludePositions: true})
	loc := out.Diagnostics[0].Location
	if loc.StartLine != 2 || loc.StartCol != 3 || loc.EndCol != 4 {
		t.Fatalf("location = %+v", loc)
	}
}
