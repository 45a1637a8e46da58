package source

import "quill/internal/checksum"

type (
	// FileID identifies a template or import inside a FileSet.
	FileID uint32
	// FileFlags records what normalization did to the raw bytes.
	FileFlags uint8
)

const (
	// FileVirtual marks content that never came from a file system (tests, stdin, generated imports).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
	FileNormalizedNFC
)

// File is one source document: a template body or an import.
// Content is always normalized (no BOM, LF line endings, NFC).
type File struct {
	ID      FileID
	Path    string // normalized, forward slashes
	RelPath string // project-relative, "/" rooted; empty when unknown
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    checksum.Digest
	Flags   FileFlags
}

// Checksum is the content identity used by caches and document checksums.
func (f *File) Checksum() checksum.Digest {
	return f.Hash
}

// Text returns the content as a string.
func (f *File) Text() string {
	return string(f.Content)
}

// Has reports whether all bits of flag are set.
func (f *File) Has(flag FileFlags) bool {
	return f.Flags&flag == flag
}

// LineCol is a 1-based human position.
type LineCol struct {
	Line uint32
	Col  uint32
}
