package taghelper

import "strings"

// Kind names the family a descriptor belongs to.
type Kind string

const (
	KindTagHelper    Kind = "ITagHelper"
	KindComponent    Kind = "Components.Component"
	KindChildContent Kind = "Components.ChildContent"
	KindBind         Kind = "Components.Bind"
	KindEventHandler Kind = "Components.EventHandler"
	KindRef          Kind = "Components.Ref"
	KindKey          Kind = "Components.Key"
	KindSplat        Kind = "Components.Splat"
)

// IsComponentFamily reports kinds produced for component files.
func (k Kind) IsComponentFamily() bool {
	return strings.HasPrefix(string(k), "Components.")
}

// Well-known metadata keys.
const (
	MetaTypeName             = "Common.TypeName"
	MetaTypeNamespace        = "Common.TypeNamespace"
	MetaPropertyName         = "Common.PropertyName"
	MetaRuntimeName          = "Common.RuntimeName"
	MetaGenericTyped         = "Components.GenericTyped"
	MetaFullyQualifiedMatch  = "Components.NameMatch"
	MetaChildContentName     = "Components.ChildContentParameterName"
	MetaBindFormat           = "Components.Bind.Format"
	MetaEventArgsType        = "Components.EventHandler.EventArgs"
	ValueFullyQualifiedMatch = "Components.FullyQualifiedNameMatch"
)

// TagStructure constrains how a matched element may be written.
type TagStructure uint8

const (
	TagStructureUnspecified TagStructure = iota
	TagStructureNormalOrSelfClosing
	TagStructureWithoutEndTag
)

func (s TagStructure) String() string {
	switch s {
	case TagStructureNormalOrSelfClosing:
		return "normal-or-self-closing"
	case TagStructureWithoutEndTag:
		return "without-end-tag"
	}
	return "unspecified"
}

// NameComparison selects how a required attribute name is compared.
type NameComparison uint8

const (
	NameFullMatch NameComparison = iota
	NamePrefixMatch
)

func (c NameComparison) String() string {
	if c == NamePrefixMatch {
		return "prefix"
	}
	return "full"
}

// ValueComparison selects how a required attribute value is compared.
type ValueComparison uint8

const (
	ValueNone ValueComparison = iota
	ValueFullMatch
	ValuePrefixMatch
	ValueSuffixMatch
)

func (c ValueComparison) String() string {
	switch c {
	case ValueFullMatch:
		return "full"
	case ValuePrefixMatch:
		return "prefix"
	case ValueSuffixMatch:
		return "suffix"
	}
	return "none"
}

func parseTagStructure(s string) TagStructure {
	switch s {
	case "normal-or-self-closing":
		return TagStructureNormalOrSelfClosing
	case "without-end-tag":
		return TagStructureWithoutEndTag
	}
	return TagStructureUnspecified
}

func parseNameComparison(s string) NameComparison {
	if s == "prefix" {
		return NamePrefixMatch
	}
	return NameFullMatch
}

func parseValueComparison(s string) ValueComparison {
	switch s {
	case "full":
		return ValueFullMatch
	case "prefix":
		return ValuePrefixMatch
	case "suffix":
		return ValueSuffixMatch
	}
	return ValueNone
}

// DescriptorFlags are tag helper level bits.
type DescriptorFlags uint8

const (
	FlagCaseSensitive DescriptorFlags = 1 << iota
	FlagFullyQualifiedNameMatch
)

// AttributeFlags are bound attribute and parameter bits.
type AttributeFlags uint16

const (
	AttrCaseSensitive AttributeFlags = 1 << iota
	AttrIsEnum
	AttrIsStringProperty
	AttrIsBooleanProperty
	AttrHasIndexer
	AttrIsIndexerStringProperty
	AttrIsIndexerBooleanProperty
	AttrIsDirectiveAttribute
	AttrIsEditorRequired
)

// Has reports whether every bit of f2 is set.
func (f AttributeFlags) Has(f2 AttributeFlags) bool { return f&f2 == f2 }

// Has reports whether every bit of f2 is set.
func (f DescriptorFlags) Has(f2 DescriptorFlags) bool { return f&f2 == f2 }

// type names treated as text or boolean by the binder
var (
	stringTypeNames  = []string{"string", "System.String", "global::System.String"}
	booleanTypeNames = []string{"bool", "System.Boolean", "global::System.Boolean"}
)

func isStringType(t string) bool {
	for _, n := range stringTypeNames {
		if t == n {
			return true
		}
	}
	return false
}

func isBooleanType(t string) bool {
	for _, n := range booleanTypeNames {
		if t == n {
			return true
		}
	}
	return false
}
