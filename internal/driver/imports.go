package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"quill/internal/diag"
	"quill/internal/lang"
	"quill/internal/source"
)

// ImportPaths lists the import documents that apply to name, from the
// project root down to the directory of name. name itself is skipped.
func ImportPaths(name string, kind lang.FileKind) []string {
	file := lang.ImportFileName(kind)
	var dirs []string
	for dir := path.Dir(name); ; dir = path.Dir(dir) {
		dirs = append(dirs, dir)
		if dir == "." || dir == "/" {
			break
		}
	}
	slices.Reverse(dirs)
	out := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		if p := path.Join(dir, file); p != name {
			out = append(out, p)
		}
	}
	return out
}

// importCache loads every import document once per session, however many
// documents share it.
type importCache struct {
	group singleflight.Group
	mu    sync.RWMutex
	files map[string]importEntry
}

type importEntry struct {
	file *source.File // nil when the import does not exist
	err  error
}

func newImportCache() *importCache {
	return &importCache{files: make(map[string]importEntry)}
}

func (c *importCache) load(set *source.FileSet, fsys fs.FS, name string) (*source.File, error) {
	c.mu.RLock()
	e, ok := c.files[name]
	c.mu.RUnlock()
	if ok {
		return e.file, e.err
	}
	v, _, _ := c.group.Do(name, func() (any, error) {
		var e importEntry
		id, err := set.LoadFS(fsys, name)
		switch {
		case err == nil:
			e.file = set.Get(id)
		case !errors.Is(err, fs.ErrNotExist):
			e.err = err
		}
		c.mu.Lock()
		c.files[name] = e
		c.mu.Unlock()
		return e, nil
	})
	e = v.(importEntry)
	return e.file, e.err
}

// loadImports reads the imports of name before any phase runs. Read errors
// fail the document unless imports.suppress_errors is set; then the import
// counts as absent and an IO5002 warning is recorded.
func (s *Session) loadImports(name string, kind lang.FileKind, bag *diag.Bag) ([]*source.File, error) {
	var out []*source.File
	for _, p := range ImportPaths(name, kind) {
		f, err := s.imports.load(s.Files, s.fsys, p)
		if err != nil {
			if !s.opts.Config.Imports.SuppressErrors {
				return nil, fmt.Errorf("%s: import %s: %w", name, p, err)
			}
			bag.Add(diag.Diagnostic{
				Severity:  diag.SevWarning,
				Code:      diag.IOImportUnavailable,
				Message:   fmt.Sprintf("import %s could not be read and is ignored: %v", p, err),
				Unlocated: true,
			})
			continue
		}
		if f != nil {
			out = append(out, f)
		}
	}
	return out, nil
}
