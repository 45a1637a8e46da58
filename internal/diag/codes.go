package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// Синтаксис шаблона
	SynInfo                    Code = 2100
	SynDuplicateDirective      Code = 2101
	SynDirectiveMissingToken   Code = 2102
	SynDirectiveTrailing       Code = 2103
	SynUnterminatedBlock       Code = 2104
	SynUnterminatedExpression  Code = 2105
	SynUnmatchedEndTag         Code = 2106
	SynUnterminatedComment     Code = 2107
	SynUnexpectedAfterAt       Code = 2108
	SynDirectiveMissingBlock   Code = 2109
	SynDirectiveNotTopLevel    Code = 2110
	SynTagHelperLookupMissing  Code = 2111
	SynTagHelperPrefixInvalid  Code = 2112
	SynDirectiveInvalidToken   Code = 2113
	SynUnterminatedStringToken Code = 2114
	SynUnterminatedStartTag    Code = 2115

	// Tag helper descriptors and binding
	THLInfo                           Code = 3000
	THLEmptyAttributeName             Code = 3001
	THLInvalidAttributeName           Code = 3002
	THLDataPrefixedAttribute          Code = 3003
	THLInvalidIndexerPrefix           Code = 3004
	THLDataPrefixedIndexer            Code = 3005
	THLDirectiveAttributeMissingSigil Code = 3006
	THLEmptyParameterName             Code = 3007
	THLInvalidParameterName           Code = 3008
	THLEmptyTagName                   Code = 3009
	THLInvalidTagName                 Code = 3010
	THLInvalidParentTag               Code = 3011
	THLEmptyRequiredAttribute         Code = 3012
	THLInvalidRequiredAttribute       Code = 3013
	THLEmptyChildTag                  Code = 3014
	THLInvalidChildTag                Code = 3015
	THLEmptyTagHelperName             Code = 3016
	THLMinimizedNonBoolean            Code = 3101
	THLEmptyBoundValue                Code = 3102
	THLInvalidNestedTag               Code = 3103
	THLInconsistentTagStructure       Code = 3104
	THLMissingEndTag                  Code = 3105
	THLIndexerMissingKey              Code = 3106
	THLUnknownDirectiveParameter      Code = 3107
	THLCommentInTagHelper             Code = 3108
	THLCodeInAttributeArea            Code = 3109

	// IR construction and passes
	IRLInfo               Code = 4000
	IRLMalformedDirective Code = 4001
	IRLNestedSection      Code = 4002
	IRLPageMisplaced      Code = 4003
	IRLDuplicateSection   Code = 4004

	// Ввод-вывод
	IOInfo              Code = 5000
	IOLoadFailed        Code = 5001
	IOImportUnavailable Code = 5002
	IOManifestInvalid   Code = 5003

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown error",

	SynInfo:                    "Template syntax information",
	SynDuplicateDirective:      "Directive may only occur once per document",
	SynDirectiveMissingToken:   "Directive is missing a required token",
	SynDirectiveTrailing:       "Unexpected content after directive",
	SynUnterminatedBlock:       "Unterminated code block",
	SynUnterminatedExpression:  "Unterminated explicit expression",
	SynUnmatchedEndTag:         "End tag has no matching start tag",
	SynUnterminatedComment:     "Unterminated template comment",
	SynUnexpectedAfterAt:       "Unexpected character after transition",
	SynDirectiveMissingBlock:   "Directive expects a block",
	SynDirectiveNotTopLevel:    "Directive must appear at the top level",
	SynTagHelperLookupMissing:  "Tag helper directive requires a lookup text",
	SynTagHelperPrefixInvalid:  "Invalid tag helper prefix",
	SynDirectiveInvalidToken:   "Directive token has the wrong shape",
	SynUnterminatedStringToken: "Unterminated string directive token",
	SynUnterminatedStartTag:    "Unterminated start tag",

	THLInfo:                           "Tag helper information",
	THLEmptyAttributeName:             "Bound attribute name is empty",
	THLInvalidAttributeName:           "Bound attribute name contains an invalid character",
	THLDataPrefixedAttribute:          "Bound attribute name starts with data-",
	THLInvalidIndexerPrefix:           "Bound attribute indexer prefix contains an invalid character",
	THLDataPrefixedIndexer:            "Bound attribute indexer prefix starts with data-",
	THLDirectiveAttributeMissingSigil: "Directive attribute name must start with @",
	THLEmptyParameterName:             "Bound attribute parameter name is empty",
	THLInvalidParameterName:           "Bound attribute parameter name contains an invalid character",
	THLEmptyTagName:                   "Tag matching rule has an empty tag name",
	THLInvalidTagName:                 "Tag matching rule tag name contains an invalid character",
	THLInvalidParentTag:               "Tag matching rule parent tag contains an invalid character",
	THLEmptyRequiredAttribute:         "Required attribute name is empty",
	THLInvalidRequiredAttribute:       "Required attribute name contains an invalid character",
	THLEmptyChildTag:                  "Allowed child tag name is empty",
	THLInvalidChildTag:                "Allowed child tag name contains an invalid character",
	THLEmptyTagHelperName:             "Tag helper name is empty",
	THLMinimizedNonBoolean:            "Minimized attribute is bound to a non-boolean property",
	THLEmptyBoundValue:                "Bound attribute value is empty",
	THLInvalidNestedTag:               "Tag is not allowed as a child of the tag helper",
	THLInconsistentTagStructure:       "Tag helpers disagree on tag structure",
	THLMissingEndTag:                  "Tag helper element is missing an end tag",
	THLIndexerMissingKey:              "Indexer attribute is missing a key",
	THLUnknownDirectiveParameter:      "Unknown directive attribute parameter",
	THLCommentInTagHelper:             "Comments are not allowed inside tag helpers that restrict children",
	THLCodeInAttributeArea:            "Tag helper start tag contains code in the attribute area",

	IRLInfo:               "Intermediate representation information",
	IRLMalformedDirective: "Malformed directive",
	IRLNestedSection:      "Sections cannot be nested",
	IRLPageMisplaced:      "@page must precede all other content",
	IRLDuplicateSection:   "Section is already defined",

	IOInfo:              "I/O information",
	IOLoadFailed:        "Failed to load source",
	IOImportUnavailable: "Import document could not be read",
	IOManifestInvalid:   "Tag helper manifest is invalid",

	ObsInfo:    "Observability information",
	ObsTimings: "Pipeline timings",
}

// ID returns the stable textual identifier, e.g. SYN2101.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("THL%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IRL%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	if desc, ok := codeDescription[c]; ok {
		return desc
	}
	return codeDescription[UnknownCode]
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
