package syntax

import (
	"quill/internal/binding"
	"quill/internal/diag"
	"quill/internal/directive"
	"quill/internal/source"
	"quill/internal/taghelper"
)

// Kind is the closed set of syntax node kinds.
type Kind uint8

const (
	KindDocument Kind = iota
	KindMarkupText
	KindMarkupElement
	KindMarkupAttribute
	KindMarkupComment
	KindTransition
	KindCodeExpression
	KindCodeBlock
	KindDirective
	KindComment
	KindTagHelperElement
	KindTagHelperAttribute
)

var kindNames = [...]string{
	KindDocument:           "Document",
	KindMarkupText:         "MarkupText",
	KindMarkupElement:      "MarkupElement",
	KindMarkupAttribute:    "MarkupAttribute",
	KindMarkupComment:      "MarkupComment",
	KindTransition:         "Transition",
	KindCodeExpression:     "CodeExpression",
	KindCodeBlock:          "CodeBlock",
	KindDirective:          "Directive",
	KindComment:            "Comment",
	KindTagHelperElement:   "TagHelperElement",
	KindTagHelperAttribute: "TagHelperAttribute",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Node is implemented only by the types of this package.
type Node interface {
	Kind() Kind
	Span() source.Span
	Children() []Node
	isNode()
}

type nodeBase struct {
	loc source.Span
}

func (n *nodeBase) Span() source.Span { return n.loc }
func (*nodeBase) isNode()             {}

// Document is the root of a tree.
type Document struct {
	nodeBase
	Body []Node
}

func (*Document) Kind() Kind         { return KindDocument }
func (d *Document) Children() []Node { return d.Body }

// MarkupText is literal markup.
type MarkupText struct {
	nodeBase
	Text string
}

func (*MarkupText) Kind() Kind       { return KindMarkupText }
func (*MarkupText) Children() []Node { return nil }

// MarkupElement is a start tag with optional body and end tag.
type MarkupElement struct {
	nodeBase
	Name        string
	OptOut      bool // written as <!name>, never bound to tag helpers
	Attributes  []*MarkupAttribute
	Body        []Node
	SelfClosing bool
	Void        bool
	HasEndTag   bool
	StartTag    source.Span
	EndTag      source.Span
}

func (*MarkupElement) Kind() Kind { return KindMarkupElement }
func (e *MarkupElement) Children() []Node {
	out := make([]Node, 0, len(e.Attributes)+len(e.Body))
	for _, a := range e.Attributes {
		out = append(out, a)
	}
	return append(out, e.Body...)
}

// MarkupAttribute is name[=value]. Value parts are MarkupText,
// Transition and CodeExpression nodes.
type MarkupAttribute struct {
	nodeBase
	Name      string
	Value     []Node
	Minimized bool
	Quote     byte
	NameSpan  source.Span
}

func (*MarkupAttribute) Kind() Kind         { return KindMarkupAttribute }
func (a *MarkupAttribute) Children() []Node { return a.Value }

// IsCode reports whether the attribute is code written in the attribute
// area, such as <input @(attrs)>. It has no name.
func (a *MarkupAttribute) IsCode() bool {
	return a.Name == "" && len(a.Value) == 1 && a.Value[0].Kind() == KindCodeExpression
}

// LiteralValue returns the value when it contains no code.
func (a *MarkupAttribute) LiteralValue() (string, bool) {
	return literalValue(a.Value)
}

func literalValue(parts []Node) (string, bool) {
	var text string
	for _, p := range parts {
		switch p := p.(type) {
		case *MarkupText:
			text += p.Text
		case *Transition:
			text += "@"
		default:
			return "", false
		}
	}
	return text, true
}

// MarkupComment is <!-- ... -->.
type MarkupComment struct {
	nodeBase
	Text string
}

func (*MarkupComment) Kind() Kind       { return KindMarkupComment }
func (*MarkupComment) Children() []Node { return nil }

// Transition is an escaped "@@", rendered as a single "@".
type Transition struct {
	nodeBase
}

func (*Transition) Kind() Kind       { return KindTransition }
func (*Transition) Children() []Node { return nil }

// CodeExpression is @expr or @(expr).
type CodeExpression struct {
	nodeBase
	Code     string
	Explicit bool
}

func (*CodeExpression) Kind() Kind       { return KindCodeExpression }
func (*CodeExpression) Children() []Node { return nil }

// CodeBlock is @{ ... } or a statement such as @if (...) { ... }.
type CodeBlock struct {
	nodeBase
	Code      string
	Statement bool
}

func (*CodeBlock) Kind() Kind       { return KindCodeBlock }
func (*CodeBlock) Children() []Node { return nil }

// Comment is a template comment @* ... *@.
type Comment struct {
	nodeBase
	Text string
}

func (*Comment) Kind() Kind       { return KindComment }
func (*Comment) Children() []Node { return nil }

// DirectiveToken is one parsed token of a directive.
type DirectiveToken struct {
	Descriptor directive.Token
	Content    string
	Span       source.Span
}

// Value returns Content without surrounding double quotes.
func (t DirectiveToken) Value() string {
	c := t.Content
	if len(c) >= 2 && c[0] == '"' && c[len(c)-1] == '"' {
		return c[1 : len(c)-1]
	}
	return c
}

// Directive is @keyword tokens [block].
type Directive struct {
	nodeBase
	Descriptor  *directive.Descriptor
	Tokens      []DirectiveToken
	Body        []Node // markup body of RazorBlock directives
	Code        string // body of CodeBlock directives
	Diagnostics []diag.Diagnostic
	Nested      bool
}

func (*Directive) Kind() Kind         { return KindDirective }
func (d *Directive) Children() []Node { return d.Body }

// Malformed reports whether any error was attached while parsing.
func (d *Directive) Malformed() bool {
	return diag.HasErrors(d.Diagnostics)
}

// Keyword is the descriptor keyword.
func (d *Directive) Keyword() string {
	return d.Descriptor.Keyword()
}

// TagMode tells how a tag helper element was written.
type TagMode uint8

const (
	StartTagAndEndTag TagMode = iota
	SelfClosing
	StartTagOnly
)

func (m TagMode) String() string {
	switch m {
	case SelfClosing:
		return "self-closing"
	case StartTagOnly:
		return "start-tag-only"
	}
	return "start-and-end"
}

// TagHelperElement replaces a MarkupElement bound to tag helpers.
type TagHelperElement struct {
	nodeBase
	TagName    string
	TagMode    TagMode
	Binding    *binding.Binding
	Attributes []*TagHelperAttribute
	Body       []Node
	StartTag   source.Span
}

func (*TagHelperElement) Kind() Kind { return KindTagHelperElement }
func (e *TagHelperElement) Children() []Node {
	out := make([]Node, 0, len(e.Attributes)+len(e.Body))
	for _, a := range e.Attributes {
		out = append(out, a)
	}
	return append(out, e.Body...)
}

// Descriptors returns the bound tag helpers.
func (e *TagHelperElement) Descriptors() []*taghelper.Descriptor {
	return e.Binding.Descriptors()
}

// BoundMatch pairs a tag helper with the bound attribute it resolved to.
type BoundMatch struct {
	Descriptor *taghelper.Descriptor
	Match      binding.AttributeMatch
}

// TagHelperAttribute is an attribute of a TagHelperElement. Bound is empty
// for attributes no tag helper claims.
type TagHelperAttribute struct {
	nodeBase
	Name      string
	Value     []Node
	Minimized bool
	Quote     byte
	Bound     []BoundMatch
}

func (*TagHelperAttribute) Kind() Kind         { return KindTagHelperAttribute }
func (a *TagHelperAttribute) Children() []Node { return a.Value }

// LiteralValue returns the value when it contains no code.
func (a *TagHelperAttribute) LiteralValue() (string, bool) {
	return literalValue(a.Value)
}

// IsDirectiveAttribute reports a bound "@name" attribute.
func (a *TagHelperAttribute) IsDirectiveAttribute() bool {
	return len(a.Bound) > 0 && a.Bound[0].Match.Attribute.IsDirectiveAttribute()
}
