// Package binding decides which tag helpers apply to a markup element and
// which bound attribute governs each markup attribute.
//
// Everything here is a pure function of its inputs; a Binder is immutable
// after construction and may be shared between goroutines.
package binding

import (
	"strings"

	"quill/internal/taghelper"
)

// Attribute is a markup attribute as seen by the binder.
type Attribute struct {
	Name      string
	Value     string
	Dynamic   bool // value is not a compile-time literal
	Minimized bool // written without a value
}

func equalName(a, b string, caseSensitive bool) bool {
	if caseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}

func hasNamePrefix(s, prefix string, caseSensitive bool) bool {
	if len(s) < len(prefix) {
		return false
	}
	return equalName(s[:len(prefix)], prefix, caseSensitive)
}

// SatisfiesRule reports whether an element with the given (unprefixed) tag
// name, parent tag name and attributes is selected by rule.
func SatisfiesRule(tagName, parentTag string, attrs []Attribute, rule *taghelper.TagMatchingRule) bool {
	return SatisfiesTagName(tagName, rule) &&
		SatisfiesParentTag(parentTag, rule) &&
		SatisfiesAttributes(attrs, rule)
}

// SatisfiesTagName compares the tag name, honoring the "*" wildcard.
func SatisfiesTagName(tagName string, rule *taghelper.TagMatchingRule) bool {
	if strings.TrimSpace(rule.TagName()) == "" {
		return false
	}
	if rule.IsCatchAll() {
		return true
	}
	return equalName(tagName, rule.TagName(), rule.CaseSensitive())
}

// SatisfiesParentTag passes when the rule has no parent constraint.
func SatisfiesParentTag(parentTag string, rule *taghelper.TagMatchingRule) bool {
	if rule.ParentTag() == "" {
		return true
	}
	return equalName(parentTag, rule.ParentTag(), rule.CaseSensitive())
}

// SatisfiesAttributes requires every required attribute to be met by at
// least one attribute of the element.
func SatisfiesAttributes(attrs []Attribute, rule *taghelper.TagMatchingRule) bool {
	for _, required := range rule.Attributes() {
		found := false
		for i := range attrs {
			if SatisfiesRequiredAttribute(attrs[i], required) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// SatisfiesRequiredAttribute applies name then value comparison.
// Values are compared case-sensitively; non-literal values satisfy only
// ValueNone.
func SatisfiesRequiredAttribute(attr Attribute, required *taghelper.RequiredAttribute) bool {
	name := attr.Name
	if required.IsDirectiveAttribute() && required.NameComparison() == taghelper.NameFullMatch {
		name, _, _ = SplitDirectiveAttributeName(name)
	}
	cs := required.CaseSensitive()
	switch required.NameComparison() {
	case taghelper.NameFullMatch:
		if !equalName(name, required.Name(), cs) {
			return false
		}
	case taghelper.NamePrefixMatch:
		// the prefix alone is not a match: an indexer needs a key
		if len(name) <= len(required.Name()) || !hasNamePrefix(name, required.Name(), cs) {
			return false
		}
	}

	if required.ValueComparison() == taghelper.ValueNone {
		return true
	}
	if attr.Dynamic {
		return false
	}
	switch required.ValueComparison() {
	case taghelper.ValueFullMatch:
		return attr.Value == required.Value()
	case taghelper.ValuePrefixMatch:
		return strings.HasPrefix(attr.Value, required.Value())
	case taghelper.ValueSuffixMatch:
		return strings.HasSuffix(attr.Value, required.Value())
	}
	return false
}

// SplitDirectiveAttributeName splits "@bind:format" into "@bind" and "format".
func SplitDirectiveAttributeName(name string) (base, parameter string, ok bool) {
	return strings.Cut(name, ":")
}

// MatchesName reports an exact bound attribute name match. Directive
// attributes compare only the part before the parameter separator.
func MatchesName(attrName string, bound *taghelper.BoundAttribute) bool {
	if bound.Name() == "" {
		return false
	}
	if bound.IsDirectiveAttribute() {
		attrName, _, _ = SplitDirectiveAttributeName(attrName)
	}
	return equalName(attrName, bound.Name(), bound.CaseSensitive())
}

// IsIndexerNameMatch reports whether attrName starts with the indexer prefix.
func IsIndexerNameMatch(attrName string, bound *taghelper.BoundAttribute) bool {
	prefix := bound.IndexerNamePrefix()
	if !bound.HasIndexer() || prefix == "" {
		return false
	}
	if bound.IsDirectiveAttribute() {
		attrName, _, _ = SplitDirectiveAttributeName(attrName)
	}
	return hasNamePrefix(attrName, prefix, bound.CaseSensitive())
}

// MatchesIndexer reports an indexer match that is not also a name match.
func MatchesIndexer(attrName string, bound *taghelper.BoundAttribute) bool {
	return !MatchesName(attrName, bound) && IsIndexerNameMatch(attrName, bound)
}

// IsIndexerMissingKey reports an attribute that is exactly the indexer prefix.
func IsIndexerMissingKey(attrName string, bound *taghelper.BoundAttribute) bool {
	return MatchesIndexer(attrName, bound) && len(attrName) == len(bound.IndexerNamePrefix())
}

// MatchesParameterName compares the ":parameter" suffix using the parent
// attribute's case sensitivity.
func MatchesParameterName(attrName string, bound *taghelper.BoundAttribute, param *taghelper.BoundAttributeParameter) bool {
	_, p, ok := SplitDirectiveAttributeName(attrName)
	if !ok {
		return false
	}
	return equalName(p, param.Name(), bound.CaseSensitive())
}

// ExpectsStringValue consults the indexer path for indexer names and the
// property type otherwise.
func ExpectsStringValue(bound *taghelper.BoundAttribute, attrName string) bool {
	if MatchesIndexer(attrName, bound) {
		return bound.IsIndexerStringProperty()
	}
	return bound.IsStringProperty()
}

// ExpectsBooleanValue is the boolean counterpart of ExpectsStringValue.
// Minimized attributes are legal only when it returns true.
func ExpectsBooleanValue(bound *taghelper.BoundAttribute, attrName string) bool {
	if MatchesIndexer(attrName, bound) {
		return bound.IsIndexerBooleanProperty()
	}
	return bound.IsBooleanProperty()
}

// AttributeMatch is one bound attribute (and optional parameter) governing
// a markup attribute.
type AttributeMatch struct {
	Attribute *taghelper.BoundAttribute
	Parameter *taghelper.BoundAttributeParameter
	Indexer   bool
}

// ExpectsStringValue resolves against the parameter, indexer or property type.
func (m AttributeMatch) ExpectsStringValue() bool {
	switch {
	case m.Parameter != nil:
		return m.Parameter.IsStringProperty()
	case m.Indexer:
		return m.Attribute.IsIndexerStringProperty()
	}
	return m.Attribute.IsStringProperty()
}

// ExpectsBooleanValue resolves against the parameter, indexer or property type.
func (m AttributeMatch) ExpectsBooleanValue() bool {
	switch {
	case m.Parameter != nil:
		return m.Parameter.IsBooleanProperty()
	case m.Indexer:
		return m.Attribute.IsIndexerBooleanProperty()
	}
	return m.Attribute.IsBooleanProperty()
}

// TypeName is the expected value type.
func (m AttributeMatch) TypeName() string {
	switch {
	case m.Parameter != nil:
		return m.Parameter.TypeName()
	case m.Indexer:
		return m.Attribute.IndexerTypeName()
	}
	return m.Attribute.TypeName()
}

// GetBoundAttributes returns the bound attributes of d governing attrName:
// exact name matches first; indexer matches only when no exact match exists.
// A directive attribute with a parameter suffix resolves to the parameter.
func GetBoundAttributes(d *taghelper.Descriptor, attrName string) []AttributeMatch {
	var out []AttributeMatch
	for _, bound := range d.BoundAttributes() {
		if !MatchesName(attrName, bound) {
			continue
		}
		m := AttributeMatch{Attribute: bound}
		if _, _, hasParam := SplitDirectiveAttributeName(attrName); hasParam && bound.IsDirectiveAttribute() {
			param := findParameter(attrName, bound)
			if param == nil {
				continue
			}
			m.Parameter = param
		}
		out = append(out, m)
	}
	if len(out) > 0 {
		return out
	}
	for _, bound := range d.BoundAttributes() {
		if MatchesIndexer(attrName, bound) {
			out = append(out, AttributeMatch{Attribute: bound, Indexer: true})
		}
	}
	return out
}

func findParameter(attrName string, bound *taghelper.BoundAttribute) *taghelper.BoundAttributeParameter {
	for _, p := range bound.Parameters() {
		if MatchesParameterName(attrName, bound, p) {
			return p
		}
	}
	return nil
}

// ResolveBoundAttribute returns the first match across descriptors.
func ResolveBoundAttribute(descriptors []*taghelper.Descriptor, attrName string) (AttributeMatch, bool) {
	for _, d := range descriptors {
		if ms := GetBoundAttributes(d, attrName); len(ms) > 0 {
			return ms[0], true
		}
	}
	return AttributeMatch{}, false
}
