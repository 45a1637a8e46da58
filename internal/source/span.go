package source

import "fmt"

// Span is a half-open byte range [Start, End) inside one file.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

// Empty reports whether the span covers no bytes.
func (s Span) Empty() bool {
	return s.Start == s.End
}

// Len returns End - Start.
func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Contains reports whether off is inside the span.
func (s Span) Contains(off uint32) bool {
	return off >= s.Start && off < s.End
}

// Cover grows s to include other. Spans from different files are not merged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	s.Start = min(s.Start, other.Start)
	s.End = max(s.End, other.End)
	return s
}

// Slice returns the covered text of f, clamped to the content length.
func (s Span) Slice(f *File) string {
	n := uint32(len(f.Content)) //nolint:gosec // content length is checked on Add
	start, end := min(s.Start, n), min(s.End, n)
	if start >= end {
		return ""
	}
	return string(f.Content[start:end])
}

// Ptr returns a pointer to a copy, for optional span fields.
func (s Span) Ptr() *Span {
	return &s
}
