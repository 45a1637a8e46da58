package directive

import (
	"slices"
	"sync"
)

// Registry holds directive descriptors in registration order, keyed by
// keyword. Reads are safe from many goroutines once building is done.
type Registry struct {
	mu        sync.RWMutex
	items     []*Descriptor
	byKeyword map[string]int
}

// NewRegistry returns a registry pre-filled with ds.
func NewRegistry(ds ...*Descriptor) *Registry {
	r := &Registry{byKeyword: make(map[string]int)}
	for _, d := range ds {
		r.Add(d)
	}
	return r
}

// Add registers d; a descriptor with the same keyword is replaced in place.
func (r *Registry) Add(d *Descriptor) {
	if d == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx, ok := r.byKeyword[d.keyword]; ok {
		r.items[idx] = d
		return
	}
	r.byKeyword[d.keyword] = len(r.items)
	r.items = append(r.items, d)
}

// Remove drops the keyword and reports whether it existed.
func (r *Registry) Remove(keyword string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.byKeyword[keyword]
	if !ok {
		return false
	}
	r.items = slices.Delete(r.items, idx, idx+1)
	delete(r.byKeyword, keyword)
	for i := idx; i < len(r.items); i++ {
		r.byKeyword[r.items[i].keyword] = i
	}
	return true
}

// Lookup finds a descriptor by keyword (case-sensitive).
func (r *Registry) Lookup(keyword string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.byKeyword[keyword]
	if !ok {
		return nil, false
	}
	return r.items[idx], true
}

// All returns a snapshot in registration order.
func (r *Registry) All() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Descriptor(nil), r.items...)
}

// FilterByKind returns descriptors of the given kinds; no kinds means all.
func (r *Registry) FilterByKind(kinds ...Kind) []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(kinds) == 0 {
		return append([]*Descriptor(nil), r.items...)
	}
	var out []*Descriptor
	for _, d := range r.items {
		if slices.Contains(kinds, d.kind) {
			out = append(out, d)
		}
	}
	return out
}

// Len returns the number of descriptors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
