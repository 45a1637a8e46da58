package source

import (
	"fmt"
	"io/fs"
	"os"
	"sync"

	"fortio.org/safecast"

	"quill/internal/checksum"
)

// FileSet owns every file of a compilation and resolves spans to positions.
// It is safe for concurrent use: driver workers load files in parallel.
type FileSet struct {
	mu    sync.RWMutex
	files []*File
	index map[string]FileID
}

// NewFileSet creates an empty set.
func NewFileSet() *FileSet {
	return &FileSet{index: make(map[string]FileID)}
}

// Add normalizes content and registers a new file. A later Add with the
// same path shadows the earlier one in lookups but keeps its ID valid.
func (set *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	content, nflags := Normalize(content)
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		panic(fmt.Errorf("source %s too large: %w", path, err))
	}
	f := &File{
		Path:    normalizePath(path),
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    checksum.OfBytes(content),
		Flags:   flags | nflags,
	}

	set.mu.Lock()
	defer set.mu.Unlock()
	id, err := safecast.Conv[uint32](len(set.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	f.ID = FileID(id)
	set.files = append(set.files, f)
	set.index[f.Path] = f.ID
	return f.ID
}

// AddVirtual registers in-memory content with the given logical path.
func (set *FileSet) AddVirtual(path string, content []byte) FileID {
	return set.Add(path, content, FileVirtual)
}

// AddRelative registers content and records its project-relative path.
func (set *FileSet) AddRelative(path, rel string, content []byte, flags FileFlags) FileID {
	id := set.Add(path, content, flags)
	set.mu.Lock()
	set.files[id].RelPath = RootedPath(rel)
	set.mu.Unlock()
	return id
}

// Load reads a file from the OS file system.
func (set *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return set.Add(path, content, 0), nil
}

// LoadFS reads name from fsys; the name doubles as the project-relative path.
func (set *FileSet) LoadFS(fsys fs.FS, name string) (FileID, error) {
	content, err := readFS(fsys, name)
	if err != nil {
		return 0, err
	}
	return set.AddRelative(name, name, content, 0), nil
}

func readFS(fsys fs.FS, name string) ([]byte, error) {
	return fs.ReadFile(fsys, name)
}

// Get returns the file for id. It panics on an unknown id.
func (set *FileSet) Get(id FileID) *File {
	set.mu.RLock()
	defer set.mu.RUnlock()
	return set.files[id]
}

// Lookup returns the most recent file registered under path.
func (set *FileSet) Lookup(path string) (*File, bool) {
	set.mu.RLock()
	defer set.mu.RUnlock()
	id, ok := set.index[normalizePath(path)]
	if !ok {
		return nil, false
	}
	return set.files[id], true
}

// Len returns the number of registered files.
func (set *FileSet) Len() int {
	set.mu.RLock()
	defer set.mu.RUnlock()
	return len(set.files)
}

// Resolve converts a span into start and end positions.
func (set *FileSet) Resolve(span Span) (start, end LineCol) {
	f := set.Get(span.File)
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// Line returns the 1-based line n of f without its newline.
func (f *File) Line(n uint32) string {
	if n == 0 || int(n) > len(f.LineIdx)+1 {
		return ""
	}
	var start uint32
	if n > 1 {
		start = f.LineIdx[n-2] + 1
	}
	end := uint32(len(f.Content)) //nolint:gosec // checked on Add
	if int(n) <= len(f.LineIdx) {
		end = f.LineIdx[n-1]
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}
