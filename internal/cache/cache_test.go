package cache

import (
	"sync"
	"testing"

	"quill/internal/checksum"
)

func TestStoreGetOrAdd(t *testing.T) {
	s := NewStore[int]()
	key := checksum.OfBytes([]byte("a"))
	calls := 0
	create := func() int { calls++; return 7 }
	if got := s.GetOrAdd(key, create); got != 7 {
		t.Fatalf("GetOrAdd = %d", got)
	}
	if got := s.GetOrAdd(key, create); got != 7 || calls != 1 {
		t.Fatalf("second GetOrAdd = %d after %d calls", got, calls)
	}
	if _, ok := s.Get(checksum.OfBytes([]byte("b"))); ok {
		t.Fatal("unexpected hit")
	}
}

func TestStoreConcurrentReaders(t *testing.T) {
	s := NewStore[string]()
	key := checksum.OfBytes([]byte("shared"))
	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.GetOrAdd(key, func() string { return "v" })
		}(i)
	}
	wg.Wait()
	for i, r := range results {
		if r != "v" {
			t.Fatalf("reader %d got %q", i, r)
		}
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d", s.Len())
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	rec := &Record{
		Path:              "Views/Index.quill",
		SourceChecksum:    checksum.OfBytes([]byte("src")),
		TagHelperChecksum: checksum.OfBytes([]byte("th")),
		Output:            "namespace App",
		DiagnosticCount:   2,
		HasErrors:         true,
	}
	key := rec.Key()

	var got Record
	if ok, err := c.Get(key, &got); ok || err != nil {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}
	if err := c.Put(key, rec); err != nil {
		t.Fatal(err)
	}
	ok, err := c.Get(key, &got)
	if !ok || err != nil {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.Output != rec.Output || got.Schema != RecordSchema || !got.HasErrors || got.SourceChecksum != rec.SourceChecksum {
		t.Fatalf("record = %+v", got)
	}

	if err := c.DropAll(); err != nil {
		t.Fatal(err)
	}
	if ok, _ := c.Get(key, &got); ok {
		t.Fatal("record survived DropAll")
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("DropAll on empty cache: %v", err)
	}
}

func TestNilDiskCacheIsDisabled(t *testing.T) {
	var c *DiskCache
	if err := c.Put(checksum.Digest{}, &Record{}); err != nil {
		t.Fatal(err)
	}
	if ok, err := c.Get(checksum.Digest{}, &Record{}); ok || err != nil {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}
