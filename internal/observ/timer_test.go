package observ

import (
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	load := tm.Begin("load")
	tm.End(load, "2 imports")
	parse := tm.Begin("parse")
	tm.End(parse, "")
	tm.End(99, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 || r.Phases[0].Name != "load" || r.Phases[0].Note != "2 imports" {
		t.Fatalf("report = %+v", r)
	}
	if r.TotalMS < r.Phases[0].DurationMS {
		t.Fatal("total below a phase")
	}
	s := tm.Summary()
	if !strings.Contains(s, "// 2 imports") || !strings.Contains(s, "total") {
		t.Fatalf("summary = %q", s)
	}
	if got := NewTimer().Report(); got.Phases != nil || got.TotalMS != 0 {
		t.Fatalf("empty report = %+v", got)
	}
}

func TestTotals(t *testing.T) {
	var tot Totals
	tot.Add(Report{TotalMS: 3, Phases: []PhaseReport{{Name: "load", DurationMS: 1}, {Name: "parse", DurationMS: 2}}})
	tot.Add(Report{TotalMS: 4, Phases: []PhaseReport{{Name: "parse", DurationMS: 1}, {Name: "codegen", DurationMS: 3}}})
	r := tot.Report()
	if tot.Documents != 2 || r.TotalMS != 7 {
		t.Fatalf("totals = %+v", r)
	}
	want := []PhaseReport{{Name: "load", DurationMS: 1}, {Name: "parse", DurationMS: 3}, {Name: "codegen", DurationMS: 3}}
	for i, p := range r.Phases {
		if p != want[i] {
			t.Fatalf("phase %d = %+v, want %+v", i, p, want[i])
		}
	}
}
