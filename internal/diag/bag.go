package diag

import (
	"slices"
	"strings"
)

// Bag collects diagnostics up to a limit. Zero limit means unbounded.
type Bag struct {
	items []Diagnostic
	limit int
}

// NewBag returns a bag holding at most limit items.
func NewBag(limit int) *Bag {
	return &Bag{limit: max(limit, 0)}
}

// Add stores d. It returns false once the limit is reached.
func (b *Bag) Add(d Diagnostic) bool {
	if b.limit > 0 && len(b.items) >= b.limit {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// AddAll adds every item until the limit.
func (b *Bag) AddAll(items []Diagnostic) {
	for _, d := range items {
		if !b.Add(d) {
			return
		}
	}
}

// HasErrors reports whether any error was collected.
func (b *Bag) HasErrors() bool {
	return HasErrors(b.items)
}

// HasWarnings reports whether any warning or error was collected.
func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the backing slice; callers must not modify it.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge appends everything from other, growing the limit if needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if b.limit > 0 && len(b.items)+len(other.items) > b.limit {
		b.limit = len(b.items) + len(other.items)
	}
	b.items = append(b.items, other.items...)
}

// Sort orders by file, start, end, severity (desc), code.
// Unlocated diagnostics go first, in insertion order.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, Compare)
}

// Compare is the ordering used by Bag.Sort.
func Compare(a, c Diagnostic) int {
	switch {
	case a.Unlocated != c.Unlocated:
		if a.Unlocated {
			return -1
		}
		return 1
	case a.Unlocated:
		return 0
	case a.Primary.File != c.Primary.File:
		return cmpInt(int(a.Primary.File), int(c.Primary.File))
	case a.Primary.Start != c.Primary.Start:
		return cmpInt(int(a.Primary.Start), int(c.Primary.Start))
	case a.Primary.End != c.Primary.End:
		return cmpInt(int(a.Primary.End), int(c.Primary.End))
	case a.Severity != c.Severity:
		return cmpInt(int(c.Severity), int(a.Severity))
	}
	return strings.Compare(a.Code.ID(), c.Code.ID())
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

type dedupKey struct {
	code      Code
	primary   string
	unlocated bool
	msg       string
}

// Dedup drops repeated (code, span, message) entries, keeping the first.
func (b *Bag) Dedup() {
	b.items = Dedup(b.items)
}

// Dedup returns items without repeated (code, span, message) entries.
func Dedup(items []Diagnostic) []Diagnostic {
	seen := make(map[dedupKey]struct{}, len(items))
	out := items[:0:0]
	for _, d := range items {
		key := dedupKey{code: d.Code, primary: d.Primary.String(), unlocated: d.Unlocated, msg: d.Message}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	return out
}
