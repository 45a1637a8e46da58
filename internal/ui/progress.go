// Package ui renders a live view of a compilation run in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Status is the state of one document.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusWorking:
		return "working"
	case StatusDone:
		return "done"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Event moves a document forward. Phase names the phase that just began
// while the document is working.
type Event struct {
	Path   string
	Phase  string
	Status Status
}

type progressModel struct {
	title   string
	events  <-chan Event
	phases  int
	spinner spinner.Model
	prog    progress.Model
	items   []docItem
	index   map[string]int
	width   int
	done    bool
}

type docItem struct {
	path   string
	status Status
	phase  string
	steps  int // phases begun
}

type eventMsg Event
type doneMsg struct{}

// NewProgressModel shows files as they move through phases pipeline phases.
// The model quits once events is closed.
func NewProgressModel(title string, files []string, phases int, events <-chan Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		phases:  max(phases, 1),
		spinner: sp,
		prog:    prog,
		items:   make([]docItem, 0, len(files)),
		index:   make(map[string]int, len(files)),
		width:   80,
	}
	for i, f := range files {
		m.items = append(m.items, docItem{path: f})
		m.index[f] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listen())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(Event(msg)), m.listen())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = max(msg.Width-4, 10)
		}
		return m, nil
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	header := m.title
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")).Render(header))
	b.WriteString("\n\n")
	const statusWidth = 14
	nameWidth := max(m.width-statusWidth-4, 20)
	for _, it := range m.items {
		label := it.label()
		fmt.Fprintf(&b, "  %s %s\n", styleStatus(it.status).Render(fmt.Sprintf("%*s", statusWidth, truncate(label, statusWidth))), truncate(it.path, nameWidth))
	}
	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (it docItem) label() string {
	if it.status == StatusWorking && it.phase != "" {
		return it.phase
	}
	return it.status.String()
}

func (m *progressModel) listen() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) apply(ev Event) tea.Cmd {
	i, ok := m.index[ev.Path]
	if !ok {
		return nil
	}
	it := &m.items[i]
	it.status = ev.Status
	if ev.Status == StatusWorking && ev.Phase != "" {
		it.phase = ev.Phase
		it.steps++
	}
	return m.prog.SetPercent(m.percent())
}

// percent counts finished documents as whole and working ones by the share
// of phases begun.
func (m *progressModel) percent() float64 {
	if len(m.items) == 0 {
		return 0
	}
	var total float64
	for _, it := range m.items {
		switch it.status {
		case StatusDone, StatusError:
			total++
		case StatusWorking:
			total += min(float64(it.steps)/float64(m.phases+1), 1)
		}
	}
	return total / float64(len(m.items))
}

func styleStatus(s Status) lipgloss.Style {
	switch s {
	case StatusDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case StatusError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case StatusWorking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
