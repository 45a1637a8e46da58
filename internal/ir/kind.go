// Package ir holds the intermediate representation produced by lowering a
// syntax tree. Node kinds form a closed set; passes dispatch on Kind or
// with a type switch and edit the tree in place.
package ir

// Kind enumerates IR node kinds.
type Kind uint8

const (
	KindDocument Kind = iota
	KindNamespace
	KindClass
	KindMethod
	KindUsing
	KindDirective
	KindDirectiveToken
	KindMalformedDirective
	KindHTMLContent
	KindHTMLAttribute
	KindHTMLAttributeValue
	KindCodeExpression
	KindCodeStatement
	KindToken
	KindTagHelper
	KindTagHelperBody
	KindTagHelperProperty
	KindTagHelperHTMLAttribute
	KindTagHelperDirectiveAttribute
	KindTagHelperDirectiveAttributeParameter
	KindFieldDeclaration
	KindSection
	KindTypeAlias
)

var kindNames = [...]string{
	KindDocument:                             "Document",
	KindNamespace:                            "Namespace",
	KindClass:                                "Class",
	KindMethod:                               "Method",
	KindUsing:                                "Using",
	KindDirective:                            "Directive",
	KindDirectiveToken:                       "DirectiveToken",
	KindMalformedDirective:                   "MalformedDirective",
	KindHTMLContent:                          "HTMLContent",
	KindHTMLAttribute:                        "HTMLAttribute",
	KindHTMLAttributeValue:                   "HTMLAttributeValue",
	KindCodeExpression:                       "CodeExpression",
	KindCodeStatement:                        "CodeStatement",
	KindToken:                                "Token",
	KindTagHelper:                            "TagHelper",
	KindTagHelperBody:                        "TagHelperBody",
	KindTagHelperProperty:                    "TagHelperProperty",
	KindTagHelperHTMLAttribute:               "TagHelperHTMLAttribute",
	KindTagHelperDirectiveAttribute:          "TagHelperDirectiveAttribute",
	KindTagHelperDirectiveAttributeParameter: "TagHelperDirectiveAttributeParameter",
	KindFieldDeclaration:                     "FieldDeclaration",
	KindSection:                              "Section",
	KindTypeAlias:                            "TypeAlias",
}

// String returns a human-readable name for the node kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// TokenKind tells what language a Token holds.
type TokenKind uint8

const (
	TokenHTML TokenKind = iota
	TokenCode
)

func (k TokenKind) String() string {
	if k == TokenCode {
		return "code"
	}
	return "html"
}

// AttributeStructure records how an attribute was written.
type AttributeStructure uint8

const (
	AttrDoubleQuotes AttributeStructure = iota
	AttrSingleQuotes
	AttrNoQuotes
	AttrMinimized
)

func (s AttributeStructure) String() string {
	switch s {
	case AttrSingleQuotes:
		return "single"
	case AttrNoQuotes:
		return "none"
	case AttrMinimized:
		return "minimized"
	}
	return "double"
}

// TagMode mirrors how a tag helper element was written.
type TagMode uint8

const (
	TagStartAndEnd TagMode = iota
	TagSelfClosing
	TagStartOnly
)

func (m TagMode) String() string {
	switch m {
	case TagSelfClosing:
		return "self-closing"
	case TagStartOnly:
		return "start-tag-only"
	}
	return "start-and-end"
}
