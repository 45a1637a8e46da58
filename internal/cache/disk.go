package cache

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"quill/internal/checksum"
)

// RecordSchema is bumped whenever Record changes shape.
const RecordSchema uint16 = 1

// Record is what a compilation leaves behind for the next run with the
// same inputs.
type Record struct {
	Schema            uint16
	Path              string
	SourceChecksum    checksum.Digest
	TagHelperChecksum checksum.Digest
	Output            string
	DiagnosticCount   int
	HasErrors         bool
}

// Key identifies a record: the document inputs and the descriptors in scope.
func (r *Record) Key() checksum.Digest {
	return checksum.Combine(r.SourceChecksum, r.TagHelperChecksum)
}

// DiskCache persists records as msgpack files. Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// Open uses dir, creating it when needed.
func Open(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// OpenDefault opens <XDG_CACHE_HOME or ~/.cache>/app.
func OpenDefault(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return Open(filepath.Join(base, app))
}

// Dir is the cache directory.
func (c *DiskCache) Dir() string { return c.dir }

func (c *DiskCache) pathFor(key checksum.Digest) string {
	// подкаталог "docs", чтобы DropAll не трогал чужие файлы
	return filepath.Join(c.dir, "docs", key.String()+".mp")
}

// Put writes rec under key, replacing the previous record atomically.
func (c *DiskCache) Put(key checksum.Digest, rec *Record) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	stored := *rec
	stored.Schema = RecordSchema
	if err = msgpack.NewEncoder(f).Encode(&stored); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads the record under key into out. A missing record or one written
// with another schema reports false.
func (c *DiskCache) Get(key checksum.Digest, out *Record) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return false, err
	}
	if rec.Schema != RecordSchema {
		return false, nil
	}
	*out = rec
	return true, nil
}

// DropAll removes every record.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	docs := filepath.Join(c.dir, "docs")
	old := docs + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(docs, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}
