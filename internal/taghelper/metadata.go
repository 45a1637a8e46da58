package taghelper

import (
	"slices"
	"strings"

	"quill/internal/checksum"
)

// MetadataEntry is one key/value pair.
type MetadataEntry struct {
	Key   string
	Value string
}

// Metadata is an immutable key-sorted list of string pairs.
type Metadata struct {
	entries []MetadataEntry
}

// NewMetadata copies m into sorted form.
func NewMetadata(m map[string]string) Metadata {
	if len(m) == 0 {
		return Metadata{}
	}
	entries := make([]MetadataEntry, 0, len(m))
	for k, v := range m {
		entries = append(entries, MetadataEntry{Key: k, Value: v})
	}
	slices.SortFunc(entries, func(a, b MetadataEntry) int { return strings.Compare(a.Key, b.Key) })
	return Metadata{entries: entries}
}

// Get looks a key up by binary search.
func (m Metadata) Get(key string) (string, bool) {
	i, ok := slices.BinarySearchFunc(m.entries, key, func(e MetadataEntry, k string) int {
		return strings.Compare(e.Key, k)
	})
	if !ok {
		return "", false
	}
	return m.entries[i].Value, true
}

// Value returns the value or "".
func (m Metadata) Value(key string) string {
	v, _ := m.Get(key)
	return v
}

func (m Metadata) Len() int { return len(m.entries) }

// All returns a copy of the entries in key order.
func (m Metadata) All() []MetadataEntry {
	return append([]MetadataEntry(nil), m.entries...)
}

// Map returns a fresh map copy.
func (m Metadata) Map() map[string]string {
	if len(m.entries) == 0 {
		return nil
	}
	out := make(map[string]string, len(m.entries))
	for _, e := range m.entries {
		out[e.Key] = e.Value
	}
	return out
}

func (m Metadata) appendTo(b *checksum.Builder) {
	b.AppendLen(len(m.entries))
	for _, e := range m.entries {
		b.AppendString(e.Key).AppendString(e.Value)
	}
}
