package diag

import (
	"testing"

	"quill/internal/source"
)

func TestCode_ID(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{SynDuplicateDirective, "SYN2101"},
		{THLEmptyAttributeName, "THL3001"},
		{THLMinimizedNonBoolean, "THL3101"},
		{IRLMalformedDirective, "IRL4001"},
		{IOImportUnavailable, "IO5002"},
		{ObsTimings, "OBS6001"},
		{UnknownCode, "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.want {
			t.Errorf("%d.ID() = %q, want %q", tt.code, got, tt.want)
		}
	}
	if Code(2999).Title() != "Unknown error" {
		t.Error("unknown codes must fall back to the generic title")
	}
}

func TestBag_LimitAndErrors(t *testing.T) {
	b := NewBag(2)
	sp := source.Span{File: 0, Start: 1, End: 2}
	if !b.Add(Warningf(SynDirectiveTrailing, sp, "w")) {
		t.Fatal("first add must succeed")
	}
	if b.HasErrors() || !b.HasWarnings() {
		t.Fatal("only a warning so far")
	}
	b.Add(Errorf(SynDuplicateDirective, sp, "e"))
	if b.Add(Errorf(SynDuplicateDirective, sp, "dropped")) {
		t.Fatal("limit must reject the third item")
	}
	if !b.HasErrors() || b.Len() != 2 {
		t.Fatalf("len=%d errors=%v", b.Len(), b.HasErrors())
	}

	other := NewBag(0)
	other.Add(Unlocatedf(THLEmptyTagHelperName, "x"))
	b.Merge(other)
	if b.Len() != 3 {
		t.Fatalf("merge must grow the limit, len=%d", b.Len())
	}
}

func TestBag_SortAndDedup(t *testing.T) {
	b := NewBag(0)
	b.Add(Warningf(SynDirectiveTrailing, source.Span{File: 1, Start: 5, End: 6}, "late"))
	b.Add(Errorf(SynDuplicateDirective, source.Span{File: 1, Start: 0, End: 3}, "dup"))
	b.Add(Errorf(SynDuplicateDirective, source.Span{File: 1, Start: 0, End: 3}, "dup"))
	b.Add(Warningf(SynDirectiveTrailing, source.Span{File: 1, Start: 0, End: 3}, "same span warning"))
	b.Add(Unlocatedf(THLEmptyAttributeName, "descriptor"))
	b.Dedup()
	b.Sort()

	items := b.Items()
	if len(items) != 4 {
		t.Fatalf("want 4 items after dedup, got %d", len(items))
	}
	wantOrder := []string{"descriptor", "dup", "same span warning", "late"}
	for i, msg := range wantOrder {
		if items[i].Message != msg {
			t.Errorf("items[%d] = %q, want %q", i, items[i].Message, msg)
		}
	}
}

func TestReportBuilder_EmitsOnce(t *testing.T) {
	var sink SliceReporter
	r := NewDedupReporter(&sink)
	sp := source.Span{Start: 1, End: 4}
	rb := ReportError(r, SynUnterminatedBlock, sp, "missing }").WithNote(sp, "opened here")
	rb.Emit()
	rb.Emit()
	ReportError(r, SynUnterminatedBlock, sp, "missing }").Emit()
	if len(sink.Items) != 1 {
		t.Fatalf("want 1 diagnostic, got %d", len(sink.Items))
	}
	if len(sink.Items[0].Notes) != 1 {
		t.Fatalf("note lost: %+v", sink.Items[0])
	}
}

func TestWithNote_DoesNotAlias(t *testing.T) {
	base := Errorf(SynUnterminatedBlock, source.Span{}, "x")
	base.Notes = make([]Note, 0, 4)
	a := base.WithNote(source.Span{Start: 1}, "a")
	b := base.WithNote(source.Span{Start: 2}, "b")
	if a.Notes[0].Msg != "a" || b.Notes[0].Msg != "b" {
		t.Fatal("notes must not share backing storage")
	}
}
