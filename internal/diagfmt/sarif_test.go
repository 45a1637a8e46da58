package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"quill/internal/diag"
	"quill/internal/source"
)

func TestSarif(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("Views/Index.quill", []byte("@section A { @section B { } }"))
	bag := diag.NewBag(10)
	nested := diag.New(diag.SevError, diag.IRLNestedSection, source.Span{File: fileID, Start: 13, End: 23}, "Sections cannot be nested")
	bag.Add(nested.WithNote(source.Span{File: fileID, Start: 0, End: 10}, "outer section"))
	bag.Add(diag.New(diag.SevError, diag.IRLNestedSection, source.Span{File: fileID, Start: 13, End: 14}, "again"))
	bag.Add(diag.Diagnostic{Severity: diag.SevWarning, Code: diag.IOImportUnavailable, Message: "skipped", Unlocated: true})

	var buf bytes.Buffer
	meta := SarifRunMeta{ToolName: "quill", ToolVersion: "1.0.0", InvocationArgs: []string{"diag"}, PathMode: PathModeAuto}
	if err := Sarif(&buf, bag, fs, meta); err != nil {
		t.Fatal(err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("invalid SARIF: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("log = %+v", log)
	}
	run := log.Runs[0]
	if len(run.Tool.Driver.Rules) != 2 {
		t.Errorf("rules = %+v", run.Tool.Driver.Rules)
	}
	if len(run.Results) != 3 {
		t.Fatalf("results = %d", len(run.Results))
	}
	first := run.Results[0]
	if first.RuleID != "IRL4002" || first.Level != "error" || len(first.Locations) != 1 || len(first.Related) != 1 {
		t.Errorf("first = %+v", first)
	}
	region := first.Locations[0].Physical.Region
	if region.StartColumn != 14 || region.ByteLength != 10 || first.Locations[0].Physical.Artifact.URI != "Views/Index.quill" {
		t.Errorf("region = %+v", first.Locations[0].Physical)
	}
	if last := run.Results[2]; last.Level != "warning" || last.Locations != nil {
		t.Errorf("unlocated = %+v", last)
	}
	if run.Invocations[0].ExecutionSuccessful {
		t.Error("a run with errors is not successful")
	}
}
