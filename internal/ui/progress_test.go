package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestProgressModel(t *testing.T) {
	events := make(chan Event)
	files := []string{"Views/Home/Index.quill", "Shared/Nav.qcomp"}
	m := NewProgressModel("compile", files, 4, events).(*progressModel)

	m.Update(eventMsg{Path: files[0], Phase: "parse", Status: StatusWorking})
	m.Update(eventMsg{Path: files[0], Phase: "lowering", Status: StatusWorking})
	m.Update(eventMsg{Path: "unknown.quill", Status: StatusDone})
	if got := m.items[0].label(); got != "lowering" {
		t.Fatalf("label = %q", got)
	}
	if p := m.percent(); p <= 0 || p >= 0.5 {
		t.Fatalf("percent = %v", p)
	}

	m.Update(eventMsg{Path: files[0], Status: StatusDone})
	m.Update(eventMsg{Path: files[1], Status: StatusError})
	if p := m.percent(); p != 1 {
		t.Fatalf("percent = %v", p)
	}

	_, cmd := m.Update(doneMsg{})
	if cmd == nil || !m.done {
		t.Fatal("done must quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected quit")
	}
	view := m.View()
	for _, want := range []string{"done: compile", "Views/Home/Index.quill", "error"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q:\n%s", want, view)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"Views/Home/Index.quill", 10, "Views/H..."},
		{"abcdef", 2, "ab"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
