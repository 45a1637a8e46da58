package mvc

import (
	"strings"
	"sync"

	"quill/internal/lang"
	"quill/internal/source"
)

// DefaultUsings are imported into every view and page.
var DefaultUsings = []string{
	"System",
	"System.Collections.Generic",
	"System.Linq",
	"Quill.Mvc",
}

// DefaultImportsPath is the logical path of the generated import document.
const DefaultImportsPath = "/_DefaultImports/" + lang.ViewImports

// DefaultImports contributes a virtual import document with DefaultUsings
// to legacy documents. The document is added to the file set of the
// compilation on first use so its spans resolve like any other file.
type DefaultImports struct {
	set  *source.FileSet
	once sync.Once
	file *source.File
}

// NewDefaultImports registers the default import document in set lazily.
func NewDefaultImports(set *source.FileSet) *DefaultImports {
	return &DefaultImports{set: set}
}

func (d *DefaultImports) DefaultImports(kind lang.FileKind) []*source.File {
	if kind != lang.FileKindLegacy || d.set == nil {
		return nil
	}
	d.once.Do(func() {
		d.file = d.set.Get(d.set.AddVirtual(DefaultImportsPath, []byte(ImportsContent())))
	})
	return []*source.File{d.file}
}

// ImportsContent renders DefaultUsings as template source.
func ImportsContent() string {
	var sb strings.Builder
	for _, u := range DefaultUsings {
		sb.WriteString("@using ")
		sb.WriteString(u)
		sb.WriteByte('\n')
	}
	return sb.String()
}
