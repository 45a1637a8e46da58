package diag

import (
	"fmt"

	"quill/internal/source"
)

// Note adds secondary context to a diagnostic.
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is an immutable finding produced by any phase or by
// tag helper descriptor validation. Descriptor diagnostics carry no
// location: Unlocated is set and Primary is zero.
type Diagnostic struct {
	Severity  Severity
	Code      Code
	Message   string
	Primary   source.Span
	Unlocated bool
	Notes     []Note
}

// New builds a located diagnostic.
func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Primary: primary, Message: msg}
}

// Errorf builds a located error.
func Errorf(code Code, primary source.Span, format string, args ...any) Diagnostic {
	return New(SevError, code, primary, fmt.Sprintf(format, args...))
}

// Warningf builds a located warning.
func Warningf(code Code, primary source.Span, format string, args ...any) Diagnostic {
	return New(SevWarning, code, primary, fmt.Sprintf(format, args...))
}

// Unlocatedf builds an error without a source position.
func Unlocatedf(code Code, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SevError, Code: code, Message: fmt.Sprintf(format, args...), Unlocated: true}
}

// WithNote returns a copy with an extra note.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	notes := make([]Note, len(d.Notes), len(d.Notes)+1)
	copy(notes, d.Notes)
	d.Notes = append(notes, Note{Span: sp, Msg: msg})
	return d
}

// IsError reports SevError.
func (d Diagnostic) IsError() bool {
	return d.Severity >= SevError
}

func (d Diagnostic) String() string {
	if d.Unlocated {
		return fmt.Sprintf("%s %s: %s", d.Severity, d.Code.ID(), d.Message)
	}
	return fmt.Sprintf("%s %s %s: %s", d.Severity, d.Code.ID(), d.Primary, d.Message)
}

// HasErrors reports whether any item is an error.
func HasErrors(items []Diagnostic) bool {
	for i := range items {
		if items[i].IsError() {
			return true
		}
	}
	return false
}
