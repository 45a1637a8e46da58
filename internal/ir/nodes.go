package ir

import (
	"quill/internal/checksum"
	"quill/internal/directive"
	"quill/internal/lang"
	"quill/internal/source"
	"quill/internal/taghelper"
)

// Document is the single root of an IR tree.
type Document struct {
	NodeBase
	DocumentKind   string // set by the document classifier
	ModelType      string // resolved by the model pass, empty otherwise
	Options        lang.CodeGenOptions
	SourcePath     string
	SourceChecksum checksum.Digest
}

func (*Document) Kind() Kind { return KindDocument }

// Namespace declares the namespace of the generated type.
type Namespace struct {
	NodeBase
	Content   string
	IsPrimary bool
}

func (*Namespace) Kind() Kind { return KindNamespace }

// TypeParameter is a generic parameter of the generated class.
type TypeParameter struct {
	Name       string
	Constraint string
}

// Class is the generated type.
type Class struct {
	NodeBase
	Attributes     []string // rendered verbatim above the declaration
	Modifiers      []string
	ClassName      string
	BaseType       string
	BaseTypeSource *source.Span // maps the base type back to a template token
	Interfaces     []string
	TypeParameters []TypeParameter
	IsPrimary      bool
}

func (*Class) Kind() Kind { return KindClass }

// MethodParameter is one parameter of a generated method.
type MethodParameter struct {
	Modifiers     []string
	TypeName      string
	ParameterName string
}

// Method is a generated method; the primary one renders the document.
type Method struct {
	NodeBase
	Modifiers  []string
	MethodName string
	ReturnType string
	Parameters []MethodParameter
	IsPrimary  bool
}

func (*Method) Kind() Kind { return KindMethod }

// Using imports a namespace.
type Using struct {
	NodeBase
	Content string
}

func (*Using) Kind() Kind { return KindUsing }

// Directive is a well-formed directive. Its children are DirectiveTokens,
// then the lowered block body if any.
type Directive struct {
	NodeBase
	Name       string
	Descriptor *directive.Descriptor
}

func (*Directive) Kind() Kind { return KindDirective }

// Tokens returns the token children in order.
func (d *Directive) Tokens() []*DirectiveToken {
	return tokensOf(d.Children)
}

// DirectiveToken is one token of a directive.
type DirectiveToken struct {
	NodeBase
	Content    string
	Descriptor directive.Token
}

func (*DirectiveToken) Kind() Kind { return KindDirectiveToken }

// MalformedDirective keeps a directive that failed to parse, with the
// tokens that were read and the parse diagnostics.
type MalformedDirective struct {
	NodeBase
	Name       string
	Descriptor *directive.Descriptor
}

func (*MalformedDirective) Kind() Kind { return KindMalformedDirective }

// Tokens returns the token children in order.
func (d *MalformedDirective) Tokens() []*DirectiveToken {
	return tokensOf(d.Children)
}

func tokensOf(children []Node) []*DirectiveToken {
	var out []*DirectiveToken
	for _, c := range children {
		if t, ok := c.(*DirectiveToken); ok {
			out = append(out, t)
		}
	}
	return out
}

// HTMLContent is literal markup; children are HTML Tokens.
type HTMLContent struct {
	NodeBase
}

func (*HTMLContent) Kind() Kind { return KindHTMLContent }

// HTMLAttribute is a markup attribute with at least one dynamic part.
// Children are HTMLAttributeValue and CodeExpression nodes.
type HTMLAttribute struct {
	NodeBase
	AttributeName string
	Prefix        string // ` name="`
	Suffix        string // `"`
}

func (*HTMLAttribute) Kind() Kind { return KindHTMLAttribute }

// HTMLAttributeValue is a literal part of an attribute value.
type HTMLAttributeValue struct {
	NodeBase
	Prefix string
}

func (*HTMLAttributeValue) Kind() Kind { return KindHTMLAttributeValue }

// CodeExpression is an expression whose value is written to the output.
type CodeExpression struct {
	NodeBase
}

func (*CodeExpression) Kind() Kind { return KindCodeExpression }

// CodeStatement is code emitted as-is.
type CodeStatement struct {
	NodeBase
}

func (*CodeStatement) Kind() Kind { return KindCodeStatement }

// Token is a leaf of literal HTML or code.
type Token struct {
	NodeBase
	Content   string
	TokenKind TokenKind
}

func (*Token) Kind() Kind { return KindToken }

// NewHTMLToken returns an HTML token leaf.
func NewHTMLToken(content string) *Token {
	return &Token{Content: content, TokenKind: TokenHTML}
}

// NewCodeToken returns a code token leaf.
func NewCodeToken(content string) *Token {
	return &Token{Content: content, TokenKind: TokenCode}
}

// TagHelper is an element bound to one or more tag helpers.
type TagHelper struct {
	NodeBase
	TagName    string
	TagMode    TagMode
	TagHelpers []*taghelper.Descriptor
}

func (*TagHelper) Kind() Kind { return KindTagHelper }

// Body returns the body child, if any.
func (t *TagHelper) Body() *TagHelperBody {
	for _, c := range t.Children {
		if b, ok := c.(*TagHelperBody); ok {
			return b
		}
	}
	return nil
}

// TagHelperBody holds the content between the tags.
type TagHelperBody struct {
	NodeBase
}

func (*TagHelperBody) Kind() Kind { return KindTagHelperBody }

// TagHelperProperty sets a bound attribute of one tag helper.
type TagHelperProperty struct {
	NodeBase
	AttributeName      string
	Structure          AttributeStructure
	TagHelper          *taghelper.Descriptor
	BoundAttribute     *taghelper.BoundAttribute
	IsIndexerNameMatch bool
}

func (*TagHelperProperty) Kind() Kind { return KindTagHelperProperty }

// TagHelperHTMLAttribute is an unbound attribute of a tag helper element.
type TagHelperHTMLAttribute struct {
	NodeBase
	AttributeName string
	Structure     AttributeStructure
}

func (*TagHelperHTMLAttribute) Kind() Kind { return KindTagHelperHTMLAttribute }

// TagHelperDirectiveAttribute is a bound "@name" attribute.
type TagHelperDirectiveAttribute struct {
	NodeBase
	AttributeName  string // without the sigil
	OriginalName   string
	Structure      AttributeStructure
	TagHelper      *taghelper.Descriptor
	BoundAttribute *taghelper.BoundAttribute
}

func (*TagHelperDirectiveAttribute) Kind() Kind { return KindTagHelperDirectiveAttribute }

// TagHelperDirectiveAttributeParameter is a bound "@name:param" attribute.
type TagHelperDirectiveAttributeParameter struct {
	NodeBase
	AttributeName  string // without the sigil
	OriginalName   string
	Structure      AttributeStructure
	TagHelper      *taghelper.Descriptor
	BoundAttribute *taghelper.BoundAttribute
	BoundParameter *taghelper.BoundAttributeParameter
}

func (*TagHelperDirectiveAttributeParameter) Kind() Kind {
	return KindTagHelperDirectiveAttributeParameter
}

// FieldDeclaration declares a member field on the class.
type FieldDeclaration struct {
	NodeBase
	Modifiers []string
	FieldType string
	FieldName string
}

func (*FieldDeclaration) Kind() Kind { return KindFieldDeclaration }

// Section is a named block of content rendered by a layout.
type Section struct {
	NodeBase
	SectionName string
}

func (*Section) Kind() Kind { return KindSection }

// TypeAlias declares a name for tooling, such as TModel in design time.
type TypeAlias struct {
	NodeBase
	Name   string
	Target string
}

func (*TypeAlias) Kind() Kind { return KindTypeAlias }
