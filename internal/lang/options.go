package lang

import (
	"fmt"

	"quill/internal/directive"
)

// ConflictingOptionsError reports two mutually exclusive options enabled together.
type ConflictingOptionsError struct {
	First  string
	Second string
}

func (e *ConflictingOptionsError) Error() string {
	return fmt.Sprintf("conflicting options: %s and %s cannot both be enabled", e.First, e.Second)
}

// ParserOptions is read by the parsing phase and the syntax tree passes.
type ParserOptions struct {
	Version                Version
	FileKind               FileKind
	Directives             []*directive.Descriptor
	DesignTime             bool
	ParseLeadingDirectives bool
	Features               Features
}

// NewParserOptions fills features from the version.
func NewParserOptions(v Version, kind FileKind) ParserOptions {
	return ParserOptions{Version: v, FileKind: kind, Features: FeaturesFor(v)}
}

// Validate rejects combinations the parser cannot honor.
func (o ParserOptions) Validate() error {
	if !o.Version.Valid() {
		return fmt.Errorf("parser options: invalid language version %d", uint8(o.Version))
	}
	if o.ParseLeadingDirectives && o.DesignTime {
		return &ConflictingOptionsError{First: "ParseLeadingDirectives", Second: "DesignTime"}
	}
	if o.FileKind.IsComponent() && !o.Features.AllowComponentFileKind {
		return fmt.Errorf("parser options: file kind %s requires language version %s or later", o.FileKind, Version3_0)
	}
	return nil
}

// NewLine is the line terminator used by the code writer.
type NewLine uint8

const (
	NewLineLF NewLine = iota
	NewLineCRLF
)

func (n NewLine) String() string {
	if n == NewLineCRLF {
		return "\r\n"
	}
	return "\n"
}

// CodeGenOptions travel unchanged from configuration to the target writer.
type CodeGenOptions struct {
	IndentSize                 int
	IndentWithTabs             bool
	NewLine                    NewLine
	DesignTime                 bool
	RootNamespace              string
	SuppressChecksum           bool
	SuppressMetadataAttributes bool
	SuppressPrimaryMethodBody  bool
}

// DefaultCodeGenOptions returns 4-space indentation with LF newlines.
func DefaultCodeGenOptions() CodeGenOptions {
	return CodeGenOptions{IndentSize: 4}
}

// Validate rejects impossible writer settings.
func (o CodeGenOptions) Validate() error {
	if o.IndentSize < 0 {
		return fmt.Errorf("codegen options: negative indent size %d", o.IndentSize)
	}
	if o.NewLine > NewLineCRLF {
		return fmt.Errorf("codegen options: unknown newline mode %d", o.NewLine)
	}
	return nil
}
