package taghelper

import (
	"quill/internal/diag"
)

// Builder accumulates the fields of one tag helper. It is not safe for
// concurrent use; pooled instances are confined to one compilation.
type Builder struct {
	Kind                    Kind
	Name                    string
	AssemblyName            string
	DisplayName             string
	Documentation           string
	TagOutputHint           string
	CaseSensitive           bool
	FullyQualifiedNameMatch bool
	Metadata                map[string]string

	attributes []*BoundAttributeBuilder
	rules      []*TagMatchingRuleBuilder
	childTags  []*AllowedChildTagBuilder
}

// NewBuilder starts a descriptor of the given kind.
func NewBuilder(kind Kind, name, assemblyName string) *Builder {
	return &Builder{Kind: kind, Name: name, AssemblyName: assemblyName}
}

// SetMetadata stores one metadata pair.
func (b *Builder) SetMetadata(key, value string) *Builder {
	b.Metadata = setMeta(b.Metadata, key, value)
	return b
}

// SetTypeName records the implementing type.
func (b *Builder) SetTypeName(typeName string) *Builder {
	return b.SetMetadata(MetaTypeName, typeName)
}

// BindAttribute adds a bound attribute configured by fn.
func (b *Builder) BindAttribute(fn func(*BoundAttributeBuilder)) *Builder {
	a := &BoundAttributeBuilder{}
	fn(a)
	b.attributes = append(b.attributes, a)
	return b
}

// TagMatchingRule adds a rule configured by fn.
func (b *Builder) TagMatchingRule(fn func(*TagMatchingRuleBuilder)) *Builder {
	r := &TagMatchingRuleBuilder{}
	fn(r)
	b.rules = append(b.rules, r)
	return b
}

// AllowChildTag adds an allowed child configured by fn.
func (b *Builder) AllowChildTag(fn func(*AllowedChildTagBuilder)) *Builder {
	c := &AllowedChildTagBuilder{}
	fn(c)
	b.childTags = append(b.childTags, c)
	return b
}

// Reset returns b to the zero state. Only slice capacity survives, and it
// is not observable: every field not listed below is zeroed by the
// composite literal, so new fields are covered automatically.
func (b *Builder) Reset() {
	*b = Builder{
		attributes: clearSlice(b.attributes),
		rules:      clearSlice(b.rules),
		childTags:  clearSlice(b.childTags),
	}
}

// Build validates, derives display name and flags, and freezes a descriptor.
// Validation problems become diagnostics on the result; Build never fails.
func (b *Builder) Build() *Descriptor {
	d := &Descriptor{
		kind:          b.Kind,
		name:          b.Name,
		assemblyName:  b.AssemblyName,
		documentation: b.Documentation,
		tagOutputHint: b.TagOutputHint,
		metadata:      NewMetadata(b.Metadata),
	}
	if b.CaseSensitive {
		d.flags |= FlagCaseSensitive
	}
	if b.FullyQualifiedNameMatch {
		d.flags |= FlagFullyQualifiedNameMatch
	}
	d.displayName = firstNonEmpty(b.DisplayName, d.metadata.Value(MetaTypeName), b.Name)

	if len(b.rules) > 0 {
		d.rules = make([]*TagMatchingRule, 0, len(b.rules))
		for _, r := range b.rules {
			d.rules = append(d.rules, r.build(b.CaseSensitive))
		}
	}
	if len(b.attributes) > 0 {
		d.attributes = make([]*BoundAttribute, 0, len(b.attributes))
		for _, a := range b.attributes {
			d.attributes = append(d.attributes, a.build(b))
		}
	}
	if len(b.childTags) > 0 {
		d.childTags = make([]*AllowedChildTag, 0, len(b.childTags))
		for _, c := range b.childTags {
			d.childTags = append(d.childTags, c.build(b))
		}
	}

	d.diagnostics = validateTagHelper(b)
	d.sum = tagHelperChecksum(d)
	return d
}

// BoundAttributeBuilder accumulates one bound attribute.
type BoundAttributeBuilder struct {
	Kind                 Kind // defaults to the parent kind
	Name                 string
	TypeName             string
	IndexerNamePrefix    string
	IndexerTypeName      string
	DisplayName          string
	Documentation        string
	IsEnum               bool
	IsDirectiveAttribute bool
	IsEditorRequired     bool
	Metadata             map[string]string

	parameters []*BoundAttributeParameterBuilder
}

// AsDictionary marks the attribute as an indexer: markup attributes starting
// with prefix bind into a dictionary with valueTypeName values.
func (a *BoundAttributeBuilder) AsDictionary(prefix, valueTypeName string) *BoundAttributeBuilder {
	a.IndexerNamePrefix = prefix
	a.IndexerTypeName = valueTypeName
	return a
}

// SetPropertyName records the backing property.
func (a *BoundAttributeBuilder) SetPropertyName(name string) *BoundAttributeBuilder {
	a.Metadata = setMeta(a.Metadata, MetaPropertyName, name)
	return a
}

// SetMetadata stores one metadata pair.
func (a *BoundAttributeBuilder) SetMetadata(key, value string) *BoundAttributeBuilder {
	a.Metadata = setMeta(a.Metadata, key, value)
	return a
}

// BindAttributeParameter adds a directive attribute parameter.
func (a *BoundAttributeBuilder) BindAttributeParameter(fn func(*BoundAttributeParameterBuilder)) *BoundAttributeBuilder {
	p := &BoundAttributeParameterBuilder{}
	fn(p)
	a.parameters = append(a.parameters, p)
	return a
}

func (a *BoundAttributeBuilder) build(parent *Builder) *BoundAttribute {
	out := &BoundAttribute{
		kind:              firstKind(a.Kind, parent.Kind),
		name:              a.Name,
		typeName:          a.TypeName,
		indexerNamePrefix: a.IndexerNamePrefix,
		indexerTypeName:   a.IndexerTypeName,
		documentation:     a.Documentation,
		metadata:          NewMetadata(a.Metadata),
	}
	out.flags = a.flags(parent.CaseSensitive)

	derived := ""
	if prop, containing := out.metadata.Value(MetaPropertyName), parentTypeName(parent); prop != "" && containing != "" {
		derived = a.TypeName + " " + containing + "." + prop
	}
	out.displayName = firstNonEmpty(a.DisplayName, derived, a.Name)

	if len(a.parameters) > 0 {
		out.parameters = make([]*BoundAttributeParameter, 0, len(a.parameters))
		for _, p := range a.parameters {
			out.parameters = append(out.parameters, p.build(out))
		}
	}
	out.diagnostics = validateBoundAttribute(a, parent)
	out.sum = boundAttributeChecksum(out)
	return out
}

func (a *BoundAttributeBuilder) flags(caseSensitive bool) AttributeFlags {
	var f AttributeFlags
	if caseSensitive {
		f |= AttrCaseSensitive
	}
	if a.IsEnum {
		f |= AttrIsEnum
	}
	if isStringType(a.TypeName) {
		f |= AttrIsStringProperty
	}
	if isBooleanType(a.TypeName) {
		f |= AttrIsBooleanProperty
	}
	if a.IndexerNamePrefix != "" || a.IndexerTypeName != "" {
		f |= AttrHasIndexer
		if isStringType(a.IndexerTypeName) {
			f |= AttrIsIndexerStringProperty
		}
		if isBooleanType(a.IndexerTypeName) {
			f |= AttrIsIndexerBooleanProperty
		}
	}
	if a.IsDirectiveAttribute {
		f |= AttrIsDirectiveAttribute
	}
	if a.IsEditorRequired {
		f |= AttrIsEditorRequired
	}
	return f
}

// BoundAttributeParameterBuilder accumulates one parameter.
type BoundAttributeParameterBuilder struct {
	Kind          Kind
	Name          string
	TypeName      string
	DisplayName   string
	Documentation string
	IsEnum        bool
	Metadata      map[string]string
}

// SetPropertyName records the backing property.
func (p *BoundAttributeParameterBuilder) SetPropertyName(name string) *BoundAttributeParameterBuilder {
	p.Metadata = setMeta(p.Metadata, MetaPropertyName, name)
	return p
}

func (p *BoundAttributeParameterBuilder) build(parent *BoundAttribute) *BoundAttributeParameter {
	out := &BoundAttributeParameter{
		kind:          firstKind(p.Kind, parent.kind),
		name:          p.Name,
		typeName:      p.TypeName,
		documentation: p.Documentation,
		metadata:      NewMetadata(p.Metadata),
	}
	out.displayName = firstNonEmpty(p.DisplayName, ":"+p.Name)
	if parent.CaseSensitive() {
		out.flags |= AttrCaseSensitive
	}
	if p.IsEnum {
		out.flags |= AttrIsEnum
	}
	if isStringType(p.TypeName) {
		out.flags |= AttrIsStringProperty
	}
	if isBooleanType(p.TypeName) {
		out.flags |= AttrIsBooleanProperty
	}
	out.diagnostics = validateParameter(p, parent)
	out.sum = parameterChecksum(out)
	return out
}

// TagMatchingRuleBuilder accumulates one rule.
type TagMatchingRuleBuilder struct {
	TagName      string
	ParentTag    string
	TagStructure TagStructure

	attributes []*RequiredAttributeBuilder
}

// RequireAttribute adds a required attribute configured by fn.
func (r *TagMatchingRuleBuilder) RequireAttribute(fn func(*RequiredAttributeBuilder)) *TagMatchingRuleBuilder {
	ra := &RequiredAttributeBuilder{}
	fn(ra)
	r.attributes = append(r.attributes, ra)
	return r
}

func (r *TagMatchingRuleBuilder) build(caseSensitive bool) *TagMatchingRule {
	out := &TagMatchingRule{
		tagName:       r.TagName,
		parentTag:     r.ParentTag,
		tagStructure:  r.TagStructure,
		caseSensitive: caseSensitive,
	}
	if len(r.attributes) > 0 {
		out.attributes = make([]*RequiredAttribute, 0, len(r.attributes))
		for _, ra := range r.attributes {
			out.attributes = append(out.attributes, ra.build(caseSensitive))
		}
	}
	out.diagnostics = validateRule(r)
	out.sum = ruleChecksum(out)
	return out
}

// RequiredAttributeBuilder accumulates one attribute constraint.
type RequiredAttributeBuilder struct {
	Name                 string
	NameComparison       NameComparison
	Value                string
	ValueComparison      ValueComparison
	DisplayName          string
	IsDirectiveAttribute bool
	Metadata             map[string]string
}

func (ra *RequiredAttributeBuilder) build(caseSensitive bool) *RequiredAttribute {
	out := &RequiredAttribute{
		name:                 ra.Name,
		nameComparison:       ra.NameComparison,
		value:                ra.Value,
		valueComparison:      ra.ValueComparison,
		caseSensitive:        caseSensitive,
		isDirectiveAttribute: ra.IsDirectiveAttribute,
		metadata:             NewMetadata(ra.Metadata),
	}
	derived := ra.Name
	if ra.NameComparison == NamePrefixMatch {
		derived += "..."
	}
	out.displayName = firstNonEmpty(ra.DisplayName, derived)
	out.diagnostics = validateRequiredAttribute(ra)
	out.sum = requiredAttributeChecksum(out)
	return out
}

// AllowedChildTagBuilder accumulates one allowed child.
type AllowedChildTagBuilder struct {
	Name        string
	DisplayName string
}

func (c *AllowedChildTagBuilder) build(parent *Builder) *AllowedChildTag {
	out := &AllowedChildTag{
		name:        c.Name,
		displayName: firstNonEmpty(c.DisplayName, c.Name),
	}
	out.diagnostics = validateChildTag(c, parent)
	out.sum = childTagChecksum(out)
	return out
}

func setMeta(m map[string]string, key, value string) map[string]string {
	if m == nil {
		m = make(map[string]string)
	}
	m[key] = value
	return m
}

func clearSlice[T any](s []*T) []*T {
	clear(s)
	return s[:0]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstKind(own, parent Kind) Kind {
	if own != "" {
		return own
	}
	return parent
}

func parentTypeName(b *Builder) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[MetaTypeName]
}

func noDiagnostics(items []diag.Diagnostic) []diag.Diagnostic {
	if len(items) == 0 {
		return nil
	}
	return items
}
