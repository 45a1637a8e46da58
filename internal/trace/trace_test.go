package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLevelScopes(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopePhase, true},
		{LevelError, ScopePass, false},
		{LevelDocument, ScopeDocument, true},
		{LevelDocument, ScopePhase, false},
		{LevelPhase, ScopePhase, true},
		{LevelPhase, ScopePass, false},
		{LevelDebug, ScopePass, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
	for _, s := range []string{"off", "ERROR", "document", "Phase", "debug"} {
		if _, err := ParseLevel(s); err != nil {
			t.Errorf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel("detail"); err == nil {
		t.Error("unknown level accepted")
	}
}

func TestSpansNest(t *testing.T) {
	ring := NewRingTracer(16, LevelDebug)
	root := Begin(ring, ScopeDriver, "compile", 0)
	ctx := WithSpanContext(context.Background(), SpanContext{SpanID: root.ID()})
	doc := Begin(ring, ScopeDocument, "Views/Index.quill", CurrentSpan(ctx).SpanID)
	doc.WithExtra("imports", "2").End("")
	root.End("done")

	events := ring.Snapshot()
	if len(events) != 4 {
		t.Fatalf("got %d events", len(events))
	}
	if events[1].ParentID != root.ID() || events[2].Extra["imports"] != "2" || events[3].Detail != "done" {
		t.Fatalf("events = %+v", events)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Seq <= events[i-1].Seq {
			t.Fatal("sequence numbers must increase")
		}
	}
}

func TestFilteredSpanRecordsNothing(t *testing.T) {
	ring := NewRingTracer(4, LevelDocument)
	s := Begin(ring, ScopePass, "markup-merge", 0)
	if s.ID() != 0 {
		t.Fatal("filtered span got an ID")
	}
	s.WithExtra("k", "v").End("")
	if n := len(ring.Snapshot()); n != 0 {
		t.Fatalf("ring holds %d events", n)
	}
	if s := Begin(nil, ScopeDriver, "x", 0); s.End("") != 0 {
		t.Fatal("nil tracer span has a duration")
	}
}

func TestRingWraps(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(ring, ScopeDocument, name, "", 0)
	}
	var names []string
	for _, ev := range ring.Snapshot() {
		names = append(names, ev.Name)
	}
	if got := strings.Join(names, ""); got != "cde" {
		t.Fatalf("ring = %q", got)
	}
}

func TestStreamFormats(t *testing.T) {
	var text bytes.Buffer
	st := NewStreamTracer(&text, LevelPhase, FormatText)
	Begin(st, ScopePhase, "lowering", 0).WithExtra("b", "2").WithExtra("a", "1").End("ok")
	if got := text.String(); !strings.Contains(got, "    ← lowering (ok) {a=1, b=2}") {
		t.Fatalf("text = %q", got)
	}

	var nd bytes.Buffer
	st = NewStreamTracer(&nd, LevelPhase, FormatNDJSON)
	Begin(st, ScopeDocument, "Index.quill", 0).End("")
	lines := strings.Split(strings.TrimSpace(nd.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("ndjson lines = %d", len(lines))
	}
	var ev map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &ev); err != nil || ev["kind"] != "end" || ev["scope"] != "document" {
		t.Fatalf("ndjson = %s (%v)", lines[1], err)
	}

	var ch bytes.Buffer
	st = NewStreamTracer(&ch, LevelPhase, FormatChrome)
	Begin(st, ScopeDriver, "compile", 0).End("")
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}
	var doc struct {
		TraceEvents []struct {
			Name string `json:"name"`
			Ph   string `json:"ph"`
		} `json:"traceEvents"`
	}
	if err := json.Unmarshal(ch.Bytes(), &doc); err != nil {
		t.Fatalf("chrome output is not JSON: %v\n%s", err, ch.String())
	}
	if len(doc.TraceEvents) != 2 || doc.TraceEvents[0].Ph != "B" || doc.TraceEvents[1].Ph != "E" {
		t.Fatalf("chrome = %+v", doc.TraceEvents)
	}
}

func TestErrorLevelFeedsOnlyTheRing(t *testing.T) {
	var out bytes.Buffer
	tr, err := New(Config{Level: LevelError, Mode: ModeBoth, Output: &out, Format: FormatText})
	if err != nil {
		t.Fatal(err)
	}
	Begin(tr, ScopeDocument, "Index.quill", 0).End("failed")
	if out.Len() != 0 {
		t.Fatalf("stream wrote %q", out.String())
	}
	var dump bytes.Buffer
	found, err := DumpRing(tr, &dump, FormatText)
	if err != nil || !found {
		t.Fatalf("DumpRing = %v, %v", found, err)
	}
	if !strings.Contains(dump.String(), "Index.quill (failed)") {
		t.Fatalf("dump = %q", dump.String())
	}
}

func TestNewOff(t *testing.T) {
	tr, err := New(Config{Level: LevelOff, Mode: ModeStream})
	if err != nil || tr != Nop {
		t.Fatalf("New(off) = %v, %v", tr, err)
	}
	if _, err := New(Config{Level: LevelPhase}); err == nil {
		t.Fatal("missing mode accepted")
	}
}

func TestHeartbeat(t *testing.T) {
	ring := NewRingTracer(8, LevelDocument)
	h := StartHeartbeat(ring, time.Millisecond)
	deadline := time.Now().Add(time.Second)
	for len(ring.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	h.Stop()
	h.Stop()
	if len(ring.Snapshot()) == 0 {
		t.Fatal("no heartbeat recorded")
	}
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatal("heartbeat started on a disabled tracer")
	}
}
