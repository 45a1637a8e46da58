package binding

import (
	"slices"
	"strings"

	"quill/internal/checksum"
	"quill/internal/taghelper"
)

// Binder indexes descriptors by rule tag name for fast element lookup.
type Binder struct {
	prefix      string
	descriptors []*taghelper.Descriptor
	byTag       map[string][]int // lower-cased tag name -> descriptor indexes
	catchAll    []int
	sum         checksum.Digest
}

// NewBinder builds the index. prefix may be empty.
func NewBinder(prefix string, descriptors []*taghelper.Descriptor) *Binder {
	b := &Binder{
		prefix:      prefix,
		descriptors: append([]*taghelper.Descriptor(nil), descriptors...),
		byTag:       make(map[string][]int),
	}
	for i, d := range b.descriptors {
		for _, rule := range d.TagMatchingRules() {
			if rule.IsCatchAll() {
				b.catchAll = appendOnce(b.catchAll, i)
				continue
			}
			key := strings.ToLower(rule.TagName())
			b.byTag[key] = appendOnce(b.byTag[key], i)
		}
	}
	b.sum = Checksum(prefix, b.descriptors)
	return b
}

// Checksum is the identity of a binder built from prefix and descriptors.
func Checksum(prefix string, descriptors []*taghelper.Descriptor) checksum.Digest {
	return checksum.Of(func(cb *checksum.Builder) {
		cb.AppendKind('B').AppendString(prefix).AppendLen(len(descriptors))
		for _, d := range descriptors {
			cb.AppendDigest(d.Checksum())
		}
	})
}

func appendOnce(s []int, v int) []int {
	if n := len(s); n > 0 && s[n-1] == v {
		return s
	}
	return append(s, v)
}

func (b *Binder) Prefix() string                       { return b.prefix }
func (b *Binder) Descriptors() []*taghelper.Descriptor { return b.descriptors }
func (b *Binder) Checksum() checksum.Digest            { return b.sum }

// StripPrefix removes the tag helper prefix; ok is false when tagName does
// not carry it.
func (b *Binder) StripPrefix(tagName string) (string, bool) {
	if b.prefix == "" {
		return tagName, true
	}
	if len(tagName) <= len(b.prefix) || !strings.EqualFold(tagName[:len(b.prefix)], b.prefix) {
		return tagName, false
	}
	return tagName[len(b.prefix):], true
}

// GetBinding returns the tag helpers applying to an element, or nil.
// parentIsTagHelper tells whether the parent name carries the prefix.
func (b *Binder) GetBinding(tagName string, attrs []Attribute, parentTag string, parentIsTagHelper bool) *Binding {
	name, ok := b.StripPrefix(tagName)
	if !ok {
		return nil
	}
	parent := parentTag
	if parentIsTagHelper {
		parent, _ = b.StripPrefix(parentTag)
	}

	candidates := slices.Clone(b.byTag[strings.ToLower(name)])
	for _, i := range b.catchAll {
		if !slices.Contains(candidates, i) {
			candidates = append(candidates, i)
		}
	}
	slices.Sort(candidates)

	var binding *Binding
	for _, i := range candidates {
		d := b.descriptors[i]
		var rules []*taghelper.TagMatchingRule
		for _, rule := range d.TagMatchingRules() {
			if SatisfiesRule(name, parent, attrs, rule) {
				rules = append(rules, rule)
			}
		}
		if len(rules) == 0 {
			continue
		}
		if binding == nil {
			binding = &Binding{
				TagName:         tagName,
				ParentTagName:   parentTag,
				Attributes:      attrs,
				TagHelperPrefix: b.prefix,
				rules:           make(map[*taghelper.Descriptor][]*taghelper.TagMatchingRule),
			}
		}
		binding.descriptors = append(binding.descriptors, d)
		binding.rules[d] = rules
	}
	return binding
}

// Binding is the result of binding one element.
type Binding struct {
	TagName         string
	ParentTagName   string
	Attributes      []Attribute
	TagHelperPrefix string

	descriptors []*taghelper.Descriptor
	rules       map[*taghelper.Descriptor][]*taghelper.TagMatchingRule
}

// Descriptors returns the applicable tag helpers in registration order.
func (b *Binding) Descriptors() []*taghelper.Descriptor { return b.descriptors }

// Rules returns the rules of d that matched.
func (b *Binding) Rules(d *taghelper.Descriptor) []*taghelper.TagMatchingRule { return b.rules[d] }

// IsAttributeMatch reports a binding made only by catch-all rules: the
// element itself is not a tag helper, only some of its attributes are.
func (b *Binding) IsAttributeMatch() bool {
	for _, rules := range b.rules {
		for _, r := range rules {
			if !r.IsCatchAll() {
				return false
			}
		}
	}
	return true
}

// TagStructure returns the first explicit structure among matched rules.
func (b *Binding) TagStructure() taghelper.TagStructure {
	for _, d := range b.descriptors {
		for _, r := range b.rules[d] {
			if r.TagStructure() != taghelper.TagStructureUnspecified {
				return r.TagStructure()
			}
		}
	}
	return taghelper.TagStructureUnspecified
}
