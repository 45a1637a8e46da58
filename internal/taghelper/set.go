package taghelper

import (
	"quill/internal/checksum"
	"quill/internal/diag"
)

// Set is an ordered, immutable collection of descriptors.
type Set struct {
	items []*Descriptor
	sum   checksum.Digest
}

// NewSet copies ds; nil entries are skipped.
func NewSet(ds ...*Descriptor) *Set {
	s := &Set{items: make([]*Descriptor, 0, len(ds))}
	for _, d := range ds {
		if d != nil {
			s.items = append(s.items, d)
		}
	}
	s.sum = checksum.Of(func(b *checksum.Builder) {
		b.AppendKind('S').AppendLen(len(s.items))
		for _, d := range s.items {
			b.AppendDigest(d.sum)
		}
	})
	return s
}

// Items returns the descriptors; callers must not modify the slice.
func (s *Set) Items() []*Descriptor {
	if s == nil {
		return nil
	}
	return s.items
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Checksum combines member checksums in order.
func (s *Set) Checksum() checksum.Digest {
	if s == nil {
		return NewSet().sum
	}
	return s.sum
}

// Filter returns the members for which keep is true.
func (s *Set) Filter(keep func(*Descriptor) bool) *Set {
	out := make([]*Descriptor, 0, s.Len())
	for _, d := range s.Items() {
		if keep(d) {
			out = append(out, d)
		}
	}
	return NewSet(out...)
}

// Union appends members of other that are not already present by checksum.
func (s *Set) Union(other *Set) *Set {
	seen := make(map[checksum.Digest]struct{}, s.Len()+other.Len())
	out := make([]*Descriptor, 0, s.Len()+other.Len())
	for _, src := range []*Set{s, other} {
		for _, d := range src.Items() {
			if _, ok := seen[d.sum]; ok {
				continue
			}
			seen[d.sum] = struct{}{}
			out = append(out, d)
		}
	}
	return NewSet(out...)
}

// Diagnostics flattens every descriptor's diagnostics.
func (s *Set) Diagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range s.Items() {
		out = append(out, d.GetAllDiagnostics()...)
	}
	return out
}
