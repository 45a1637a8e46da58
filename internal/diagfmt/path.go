package diagfmt

import (
	"path"
	"path/filepath"
	"strings"

	"quill/internal/source"
)

// autoSegments is how many segments an absolute path may have before auto
// mode shortens it to the base name.
const autoSegments = 4

func displayPath(f *source.File, mode PathMode, baseDir string) string {
	switch mode {
	case PathModeAbsolute:
		if f.Has(source.FileVirtual) {
			return f.Path
		}
		p := filepath.FromSlash(f.Path)
		if !filepath.IsAbs(p) && baseDir != "" {
			p = filepath.Join(baseDir, p)
		}
		if abs, err := filepath.Abs(p); err == nil {
			return filepath.ToSlash(abs)
		}
		return f.Path
	case PathModeRelative:
		if baseDir != "" {
			if rel, err := filepath.Rel(filepath.FromSlash(baseDir), filepath.FromSlash(f.Path)); err == nil && !strings.HasPrefix(rel, "..") {
				return filepath.ToSlash(rel)
			}
		}
		if f.RelPath != "" {
			return strings.TrimPrefix(f.RelPath, "/")
		}
		return f.Path
	case PathModeBasename:
		return path.Base(f.Path)
	default:
		if f.RelPath != "" {
			return strings.TrimPrefix(f.RelPath, "/")
		}
		if strings.HasPrefix(f.Path, "/") && strings.Count(f.Path, "/") > autoSegments {
			return path.Base(f.Path)
		}
		return f.Path
	}
}
