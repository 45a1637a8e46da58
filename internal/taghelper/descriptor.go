// Package taghelper holds the immutable tag helper descriptor model and the
// poolable builders that validate and freeze it.
//
// Descriptors are produced by an external provider (a manifest, a component
// scanner), validated by the builders and then never mutated. Each carries a
// structural checksum over its semantically significant fields, including
// the checksums of nested descriptors; that checksum is the only identity
// caches may rely on.
package taghelper

import (
	"quill/internal/checksum"
	"quill/internal/diag"
)

// Descriptor describes one tag helper or component.
type Descriptor struct {
	kind          Kind
	name          string
	assemblyName  string
	displayName   string
	documentation string
	tagOutputHint string
	flags         DescriptorFlags
	rules         []*TagMatchingRule
	attributes    []*BoundAttribute
	childTags     []*AllowedChildTag
	metadata      Metadata
	diagnostics   []diag.Diagnostic
	sum           checksum.Digest
}

func (d *Descriptor) Kind() Kind                     { return d.kind }
func (d *Descriptor) Name() string                   { return d.name }
func (d *Descriptor) AssemblyName() string           { return d.assemblyName }
func (d *Descriptor) DisplayName() string            { return d.displayName }
func (d *Descriptor) Documentation() string          { return d.documentation }
func (d *Descriptor) TagOutputHint() string          { return d.tagOutputHint }
func (d *Descriptor) Flags() DescriptorFlags         { return d.flags }
func (d *Descriptor) CaseSensitive() bool            { return d.flags.Has(FlagCaseSensitive) }
func (d *Descriptor) Metadata() Metadata             { return d.metadata }
func (d *Descriptor) Checksum() checksum.Digest      { return d.sum }
func (d *Descriptor) Diagnostics() []diag.Diagnostic { return d.diagnostics }

// TagMatchingRules returns the rules in declaration order. Callers must not modify the slice.
func (d *Descriptor) TagMatchingRules() []*TagMatchingRule { return d.rules }

// BoundAttributes returns the attributes in declaration order. Callers must not modify the slice.
func (d *Descriptor) BoundAttributes() []*BoundAttribute { return d.attributes }

// AllowedChildTags returns the allowed children. Empty means any child is allowed.
func (d *Descriptor) AllowedChildTags() []*AllowedChildTag { return d.childTags }

// TypeName is the implementing type from metadata.
func (d *Descriptor) TypeName() string { return d.metadata.Value(MetaTypeName) }

func (d *Descriptor) IsComponent() bool    { return d.kind == KindComponent }
func (d *Descriptor) IsChildContent() bool { return d.kind == KindChildContent }

// IsFullyQualifiedNameMatch is set for the duplicate descriptor components
// get for their namespace-qualified tag name.
func (d *Descriptor) IsFullyQualifiedNameMatch() bool {
	return d.flags.Has(FlagFullyQualifiedNameMatch)
}

// HasErrors reports errors anywhere in the descriptor tree.
func (d *Descriptor) HasErrors() bool {
	return diag.HasErrors(d.GetAllDiagnostics())
}

// GetAllDiagnostics flattens diagnostics of the descriptor and its children,
// parents before children, in declaration order.
func (d *Descriptor) GetAllDiagnostics() []diag.Diagnostic {
	out := append([]diag.Diagnostic(nil), d.diagnostics...)
	for _, c := range d.childTags {
		out = append(out, c.diagnostics...)
	}
	for _, a := range d.attributes {
		out = append(out, a.diagnostics...)
		for _, p := range a.parameters {
			out = append(out, p.diagnostics...)
		}
	}
	for _, r := range d.rules {
		out = append(out, r.diagnostics...)
		for _, ra := range r.attributes {
			out = append(out, ra.diagnostics...)
		}
	}
	return out
}

func (d *Descriptor) String() string {
	return d.displayName
}

// BoundAttribute is a property of a tag helper settable from markup.
type BoundAttribute struct {
	kind              Kind
	name              string
	typeName          string
	indexerNamePrefix string
	indexerTypeName   string
	displayName       string
	documentation     string
	flags             AttributeFlags
	parameters        []*BoundAttributeParameter
	metadata          Metadata
	diagnostics       []diag.Diagnostic
	sum               checksum.Digest
}

func (a *BoundAttribute) Kind() Kind                     { return a.kind }
func (a *BoundAttribute) Name() string                   { return a.name }
func (a *BoundAttribute) TypeName() string               { return a.typeName }
func (a *BoundAttribute) IndexerNamePrefix() string      { return a.indexerNamePrefix }
func (a *BoundAttribute) IndexerTypeName() string        { return a.indexerTypeName }
func (a *BoundAttribute) DisplayName() string            { return a.displayName }
func (a *BoundAttribute) Documentation() string          { return a.documentation }
func (a *BoundAttribute) Flags() AttributeFlags          { return a.flags }
func (a *BoundAttribute) Metadata() Metadata             { return a.metadata }
func (a *BoundAttribute) Diagnostics() []diag.Diagnostic { return a.diagnostics }
func (a *BoundAttribute) Checksum() checksum.Digest      { return a.sum }
func (a *BoundAttribute) PropertyName() string           { return a.metadata.Value(MetaPropertyName) }

// Parameters returns the directive attribute parameters. Callers must not modify the slice.
func (a *BoundAttribute) Parameters() []*BoundAttributeParameter { return a.parameters }

func (a *BoundAttribute) CaseSensitive() bool        { return a.flags.Has(AttrCaseSensitive) }
func (a *BoundAttribute) IsEnum() bool               { return a.flags.Has(AttrIsEnum) }
func (a *BoundAttribute) IsStringProperty() bool     { return a.flags.Has(AttrIsStringProperty) }
func (a *BoundAttribute) IsBooleanProperty() bool    { return a.flags.Has(AttrIsBooleanProperty) }
func (a *BoundAttribute) HasIndexer() bool           { return a.flags.Has(AttrHasIndexer) }
func (a *BoundAttribute) IsDirectiveAttribute() bool { return a.flags.Has(AttrIsDirectiveAttribute) }
func (a *BoundAttribute) IsEditorRequired() bool     { return a.flags.Has(AttrIsEditorRequired) }
func (a *BoundAttribute) IsIndexerStringProperty() bool {
	return a.flags.Has(AttrIsIndexerStringProperty)
}
func (a *BoundAttribute) IsIndexerBooleanProperty() bool {
	return a.flags.Has(AttrIsIndexerBooleanProperty)
}

// BoundAttributeParameter is a ":name" suffix of a directive attribute.
type BoundAttributeParameter struct {
	kind          Kind
	name          string
	typeName      string
	displayName   string
	documentation string
	flags         AttributeFlags
	metadata      Metadata
	diagnostics   []diag.Diagnostic
	sum           checksum.Digest
}

func (p *BoundAttributeParameter) Kind() Kind                     { return p.kind }
func (p *BoundAttributeParameter) Name() string                   { return p.name }
func (p *BoundAttributeParameter) TypeName() string               { return p.typeName }
func (p *BoundAttributeParameter) DisplayName() string            { return p.displayName }
func (p *BoundAttributeParameter) Documentation() string          { return p.documentation }
func (p *BoundAttributeParameter) Flags() AttributeFlags          { return p.flags }
func (p *BoundAttributeParameter) Metadata() Metadata             { return p.metadata }
func (p *BoundAttributeParameter) Diagnostics() []diag.Diagnostic { return p.diagnostics }
func (p *BoundAttributeParameter) Checksum() checksum.Digest      { return p.sum }
func (p *BoundAttributeParameter) CaseSensitive() bool            { return p.flags.Has(AttrCaseSensitive) }
func (p *BoundAttributeParameter) IsEnum() bool                   { return p.flags.Has(AttrIsEnum) }
func (p *BoundAttributeParameter) IsStringProperty() bool {
	return p.flags.Has(AttrIsStringProperty)
}
func (p *BoundAttributeParameter) IsBooleanProperty() bool {
	return p.flags.Has(AttrIsBooleanProperty)
}

// TagMatchingRule selects elements a tag helper applies to.
type TagMatchingRule struct {
	tagName       string
	parentTag     string
	tagStructure  TagStructure
	caseSensitive bool
	attributes    []*RequiredAttribute
	diagnostics   []diag.Diagnostic
	sum           checksum.Digest
}

func (r *TagMatchingRule) TagName() string                  { return r.tagName }
func (r *TagMatchingRule) ParentTag() string                { return r.parentTag }
func (r *TagMatchingRule) TagStructure() TagStructure       { return r.tagStructure }
func (r *TagMatchingRule) CaseSensitive() bool              { return r.caseSensitive }
func (r *TagMatchingRule) Diagnostics() []diag.Diagnostic   { return r.diagnostics }
func (r *TagMatchingRule) Checksum() checksum.Digest        { return r.sum }
func (r *TagMatchingRule) Attributes() []*RequiredAttribute { return r.attributes }

// IsCatchAll reports a "*" tag name.
func (r *TagMatchingRule) IsCatchAll() bool { return r.tagName == ElementCatchAll }

// ElementCatchAll is the wildcard tag name.
const ElementCatchAll = "*"

// RequiredAttribute is one attribute constraint of a rule.
type RequiredAttribute struct {
	name                 string
	nameComparison       NameComparison
	value                string
	valueComparison      ValueComparison
	displayName          string
	caseSensitive        bool
	isDirectiveAttribute bool
	metadata             Metadata
	diagnostics          []diag.Diagnostic
	sum                  checksum.Digest
}

func (r *RequiredAttribute) Name() string                     { return r.name }
func (r *RequiredAttribute) NameComparison() NameComparison   { return r.nameComparison }
func (r *RequiredAttribute) Value() string                    { return r.value }
func (r *RequiredAttribute) ValueComparison() ValueComparison { return r.valueComparison }
func (r *RequiredAttribute) DisplayName() string              { return r.displayName }
func (r *RequiredAttribute) CaseSensitive() bool              { return r.caseSensitive }
func (r *RequiredAttribute) IsDirectiveAttribute() bool       { return r.isDirectiveAttribute }
func (r *RequiredAttribute) Metadata() Metadata               { return r.metadata }
func (r *RequiredAttribute) Diagnostics() []diag.Diagnostic   { return r.diagnostics }
func (r *RequiredAttribute) Checksum() checksum.Digest        { return r.sum }

// AllowedChildTag restricts the direct children of a tag helper element.
type AllowedChildTag struct {
	name        string
	displayName string
	diagnostics []diag.Diagnostic
	sum         checksum.Digest
}

func (c *AllowedChildTag) Name() string                   { return c.name }
func (c *AllowedChildTag) DisplayName() string            { return c.displayName }
func (c *AllowedChildTag) Diagnostics() []diag.Diagnostic { return c.diagnostics }
func (c *AllowedChildTag) Checksum() checksum.Digest      { return c.sum }
