package driver

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"

	"quill/internal/taghelper"
)

// LoadTagHelpers reads the JSON descriptor manifests from fsys and unions
// them in order. Descriptors equal by checksum are kept once; one pool
// backs the whole set.
func LoadTagHelpers(fsys fs.FS, manifests []string) (*taghelper.Set, error) {
	pool := taghelper.NewPool()
	out := taghelper.NewSet()
	for _, m := range manifests {
		name := path.Clean(filepath.ToSlash(m))
		f, err := fsys.Open(name)
		if err != nil {
			return nil, fmt.Errorf("tag helper manifest %s: %w", m, err)
		}
		set, err := taghelper.ReadJSON(f, pool)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m, err)
		}
		out = out.Union(set)
	}
	return out, nil
}
