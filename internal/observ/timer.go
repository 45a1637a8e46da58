// Package observ measures how long the phases of a document take and sums
// them over a run.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase is one measured interval.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer collects phases of one document in the order they began. It is not
// safe for concurrent use.
type Timer struct {
	phases []Phase
}

func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 8)} }

// Begin opens a phase and returns the handle End takes.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End closes the phase idx; unknown handles are ignored.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// PhaseReport is the serialized form of a phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is the serialized form of a timer.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report сворачивает фазы в миллисекунды; total равен сумме фаз.
func (t *Timer) Report() Report {
	if len(t.phases) == 0 {
		return Report{}
	}
	r := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, p := range t.phases {
		total += p.Dur
		r.Phases[i] = PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note}
	}
	r.TotalMS = millis(total)
	return r
}

// Summary renders the report as an aligned table.
func (r Report) Summary() string {
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range r.Phases {
		fmt.Fprintf(&sb, "  %-24s %9.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			sb.WriteString("  // " + p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-24s %9.2f ms\n", "total", r.TotalMS)
	return sb.String()
}

// Summary is Report().Summary().
func (t *Timer) Summary() string { return t.Report().Summary() }

// Totals sums phase durations over many documents. Phases keep the order in
// which they were first seen.
type Totals struct {
	Documents int
	order     []string
	sums      map[string]float64
	total     float64
}

// Add folds one document report in. Notes are dropped.
func (s *Totals) Add(r Report) {
	if s.sums == nil {
		s.sums = make(map[string]float64)
	}
	s.Documents++
	s.total += r.TotalMS
	for _, p := range r.Phases {
		if _, ok := s.sums[p.Name]; !ok {
			s.order = append(s.order, p.Name)
		}
		s.sums[p.Name] += p.DurationMS
	}
}

// Report returns the sums in report form, noting the document count.
func (s *Totals) Report() Report {
	r := Report{TotalMS: s.total, Phases: make([]PhaseReport, 0, len(s.order))}
	for _, name := range s.order {
		r.Phases = append(r.Phases, PhaseReport{Name: name, DurationMS: s.sums[name]})
	}
	return r
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
