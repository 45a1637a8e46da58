package lang

import (
	"path"
	"strings"
)

// FileKind discriminates the shape of the generated document.
type FileKind uint8

const (
	FileKindLegacy FileKind = iota // ordinary page or view
	FileKindComponent
	FileKindComponentImport
)

const (
	LegacyExtension    = ".quill"
	ComponentExtension = ".qcomp"
	ComponentImports   = "_Imports.qcomp"
	ViewImports        = "_ViewImports.quill"
)

func (k FileKind) String() string {
	switch k {
	case FileKindLegacy:
		return "legacy"
	case FileKindComponent:
		return "component"
	case FileKindComponentImport:
		return "component-import"
	}
	return "unknown"
}

// IsComponent reports component and component-import kinds.
func (k FileKind) IsComponent() bool {
	return k == FileKindComponent || k == FileKindComponentImport
}

// ParseFileKind is the inverse of String.
func ParseFileKind(s string) (FileKind, bool) {
	switch strings.ToLower(s) {
	case "legacy":
		return FileKindLegacy, true
	case "component":
		return FileKindComponent, true
	case "component-import":
		return FileKindComponentImport, true
	}
	return FileKindLegacy, false
}

// FileKindFromPath infers the kind from the file name.
func FileKindFromPath(p string) FileKind {
	name := path.Base(strings.ReplaceAll(p, "\\", "/"))
	switch {
	case strings.EqualFold(name, ComponentImports):
		return FileKindComponentImport
	case strings.EqualFold(path.Ext(name), ComponentExtension):
		return FileKindComponent
	}
	return FileKindLegacy
}

// ImportFileName returns the import document name for kind.
func ImportFileName(k FileKind) string {
	if k.IsComponent() {
		return ComponentImports
	}
	return ViewImports
}
