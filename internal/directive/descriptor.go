// Package directive describes directive keywords and their token grammar.
package directive

import (
	"errors"
	"fmt"
	"unicode"

	"quill/internal/checksum"
)

// Kind is the body shape of a directive.
type Kind uint8

const (
	SingleLine Kind = iota // tokens only, ends at the line break
	RazorBlock             // tokens followed by a markup block
	CodeBlock              // tokens followed by a code block
)

func (k Kind) String() string {
	switch k {
	case SingleLine:
		return "single-line"
	case RazorBlock:
		return "razor-block"
	case CodeBlock:
		return "code-block"
	}
	return "unknown"
}

// Usage is the occurrence cardinality of a directive in one file.
type Usage uint8

const (
	Unrestricted Usage = iota
	FileScopedSinglyOccurring
	FileScopedMultipleOccurring
)

// FileScoped reports whether the directive must be at the top level.
func (u Usage) FileScoped() bool {
	return u != Unrestricted
}

func (u Usage) String() string {
	switch u {
	case Unrestricted:
		return "unrestricted"
	case FileScopedSinglyOccurring:
		return "file-scoped-single"
	case FileScopedMultipleOccurring:
		return "file-scoped-multiple"
	}
	return "unknown"
}

// TokenKind is the lexical shape of a directive token.
type TokenKind uint8

const (
	TokenType TokenKind = iota
	TokenNamespace
	TokenMember
	TokenString
	TokenAttribute
	TokenBoolean
	TokenGenericTypeConstraint
	TokenIdentifierOrExpression
)

func (k TokenKind) String() string {
	switch k {
	case TokenType:
		return "type"
	case TokenNamespace:
		return "namespace"
	case TokenMember:
		return "member"
	case TokenString:
		return "string"
	case TokenAttribute:
		return "attribute"
	case TokenBoolean:
		return "boolean"
	case TokenGenericTypeConstraint:
		return "generic-constraint"
	case TokenIdentifierOrExpression:
		return "identifier-or-expression"
	}
	return "unknown"
}

// Token is one slot of a directive grammar.
type Token struct {
	Kind        TokenKind
	Name        string
	Description string
	Optional    bool
}

// Descriptor is an immutable directive definition.
type Descriptor struct {
	keyword     string
	kind        Kind
	usage       Usage
	displayName string
	description string
	tokens      []Token
	sum         checksum.Digest
}

func (d *Descriptor) Keyword() string             { return d.keyword }
func (d *Descriptor) Kind() Kind                  { return d.kind }
func (d *Descriptor) Usage() Usage                { return d.usage }
func (d *Descriptor) Description() string         { return d.description }
func (d *Descriptor) Checksum() checksum.Digest   { return d.sum }
func (d *Descriptor) Tokens() []Token             { return append([]Token(nil), d.tokens...) }
func (d *Descriptor) TokenCount() int             { return len(d.tokens) }
func (d *Descriptor) TokenAt(i int) (Token, bool) { return tokenAt(d.tokens, i) }

func tokenAt(tokens []Token, i int) (Token, bool) {
	if i < 0 || i >= len(tokens) {
		return Token{}, false
	}
	return tokens[i], true
}

// DisplayName falls back to the keyword.
func (d *Descriptor) DisplayName() string {
	if d.displayName != "" {
		return d.displayName
	}
	return d.keyword
}

// RequiredTokens counts the leading non-optional tokens.
func (d *Descriptor) RequiredTokens() int {
	n := 0
	for _, t := range d.tokens {
		if t.Optional {
			break
		}
		n++
	}
	return n
}

func (d *Descriptor) String() string {
	return "@" + d.keyword
}

// Errors returned by New.
var (
	ErrEmptyKeyword     = errors.New("directive keyword is empty")
	ErrInvalidKeyword   = errors.New("directive keyword must contain letters only")
	ErrRequiredAfterOpt = errors.New("required directive token follows an optional token")
)

// Builder collects the grammar of a directive under construction.
type Builder struct {
	usage       Usage
	displayName string
	description string
	tokens      []Token
}

func (b *Builder) SetUsage(u Usage) *Builder           { b.usage = u; return b }
func (b *Builder) SetDisplayName(s string) *Builder    { b.displayName = s; return b }
func (b *Builder) SetDescription(s string) *Builder    { b.description = s; return b }
func (b *Builder) AddToken(t Token) *Builder           { b.tokens = append(b.tokens, t); return b }
func (b *Builder) AddTypeToken(name string) *Builder   { return b.add(TokenType, name, false) }
func (b *Builder) AddMemberToken(name string) *Builder { return b.add(TokenMember, name, false) }
func (b *Builder) AddStringToken(name string) *Builder { return b.add(TokenString, name, false) }
func (b *Builder) AddNamespaceToken(name string) *Builder {
	return b.add(TokenNamespace, name, false)
}
func (b *Builder) AddAttributeToken(name string) *Builder {
	return b.add(TokenAttribute, name, false)
}
func (b *Builder) AddBooleanToken(name string) *Builder { return b.add(TokenBoolean, name, false) }
func (b *Builder) AddOptionalTypeToken(name string) *Builder {
	return b.add(TokenType, name, true)
}
func (b *Builder) AddOptionalMemberToken(name string) *Builder {
	return b.add(TokenMember, name, true)
}
func (b *Builder) AddOptionalStringToken(name string) *Builder {
	return b.add(TokenString, name, true)
}
func (b *Builder) AddOptionalGenericTypeConstraintToken(name string) *Builder {
	return b.add(TokenGenericTypeConstraint, name, true)
}

func (b *Builder) add(kind TokenKind, name string, optional bool) *Builder {
	return b.AddToken(Token{Kind: kind, Name: name, Optional: optional})
}

// New validates and freezes a directive. configure may be nil.
func New(keyword string, kind Kind, configure func(*Builder)) (*Descriptor, error) {
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}
	for _, r := range keyword {
		if !unicode.IsLetter(r) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidKeyword, keyword)
		}
	}
	b := &Builder{}
	if configure != nil {
		configure(b)
	}
	seenOptional := false
	for i, t := range b.tokens {
		if t.Optional {
			seenOptional = true
			continue
		}
		if seenOptional {
			return nil, fmt.Errorf("@%s token %d (%s): %w", keyword, i, t.Kind, ErrRequiredAfterOpt)
		}
	}
	d := &Descriptor{
		keyword:     keyword,
		kind:        kind,
		usage:       b.usage,
		displayName: b.displayName,
		description: b.description,
		tokens:      append([]Token(nil), b.tokens...),
	}
	d.sum = checksum.Of(func(cb *checksum.Builder) {
		cb.AppendKind('D').AppendString(d.keyword)
		checksum.AppendEnum(cb, d.kind)
		checksum.AppendEnum(cb, d.usage)
		cb.AppendLen(len(d.tokens))
		for _, t := range d.tokens {
			checksum.AppendEnum(cb, t.Kind)
			cb.AppendOptionalString(t.Name).AppendBool(t.Optional)
		}
	})
	return d, nil
}

// MustNew is New for package-level built-ins; it panics on error.
func MustNew(keyword string, kind Kind, configure func(*Builder)) *Descriptor {
	d, err := New(keyword, kind, configure)
	if err != nil {
		panic(err)
	}
	return d
}
