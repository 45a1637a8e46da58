package engine

import (
	"strings"

	"quill/internal/checksum"
	"quill/internal/diag"
	"quill/internal/directive"
	"quill/internal/document"
	"quill/internal/syntax"
	"quill/internal/taghelper"
)

// DefaultTagHelperDiscovery scopes descriptors per document. Component
// documents see every component-family descriptor. Other documents see what
// their @addTagHelper, @removeTagHelper and @tagHelperPrefix directives
// select, imports first.
type DefaultTagHelperDiscovery struct {
	engine *Engine
}

func (d *DefaultTagHelperDiscovery) Initialize(e *Engine) error {
	d.engine = e
	return nil
}

func (d *DefaultTagHelperDiscovery) Discover(doc *document.CodeDocument, tree *syntax.Tree, imports []*syntax.Tree) (*document.TagHelperContext, []diag.Diagnostic) {
	all, ok := doc.TagHelpers()
	if !ok && d.engine != nil && d.engine.features.TagHelperProvider != nil {
		all = d.engine.features.TagHelperProvider.TagHelpers()
	}

	if doc.FileKind.IsComponent() {
		var scoped []*taghelper.Descriptor
		for _, td := range all {
			if td.Kind().IsComponentFamily() {
				scoped = append(scoped, td)
			}
		}
		return d.context("", scoped), nil
	}

	var legacy []*taghelper.Descriptor
	for _, td := range all {
		if !td.Kind().IsComponentFamily() {
			legacy = append(legacy, td)
		}
	}
	v := &lookupVisitor{available: legacy}
	for _, imp := range imports {
		v.visit(imp)
	}
	v.visit(tree)
	return d.context(v.prefix, v.selected), v.diags
}

func (d *DefaultTagHelperDiscovery) context(prefix string, ds []*taghelper.Descriptor) *document.TagHelperContext {
	ctx := &document.TagHelperContext{Prefix: prefix, Descriptors: ds}
	if d.engine != nil {
		ctx.Binder = d.engine.Binder(prefix, ds)
	}
	return ctx
}

type lookupVisitor struct {
	available []*taghelper.Descriptor
	selected  []*taghelper.Descriptor
	prefix    string
	diags     []diag.Diagnostic
}

func (v *lookupVisitor) visit(tree *syntax.Tree) {
	for _, d := range tree.Directives() {
		if d.Malformed() || len(d.Tokens) == 0 {
			continue
		}
		tok := d.Tokens[0]
		switch d.Keyword() {
		case directive.AddTagHelper.Keyword():
			if lookup, ok := v.parseLookup(tok); ok {
				v.add(lookup)
			}
		case directive.RemoveTagHelper.Keyword():
			if lookup, ok := v.parseLookup(tok); ok {
				v.remove(lookup)
			}
		case directive.TagHelperPrefix.Keyword():
			prefix := strings.TrimSpace(tok.Value())
			if i := strings.IndexFunc(prefix, invalidPrefixRune); i >= 0 {
				v.diags = append(v.diags, diag.Errorf(diag.SynTagHelperPrefixInvalid, tok.Span,
					"invalid tag helper prefix %q: character %q is not allowed", prefix, prefix[i]))
				continue
			}
			v.prefix = prefix
		}
	}
}

func invalidPrefixRune(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '!', '@', '<', '>', '/', '?', '[', ']', '=', '"', '\'', '*':
		return true
	}
	return false
}

// lookup is "TypePattern, Assembly". TypePattern is "*", an exact type name,
// or a type name prefix ending in "*".
type lookup struct {
	typePattern string
	assembly    string
}

func (l lookup) matches(d *taghelper.Descriptor) bool {
	if !strings.EqualFold(d.AssemblyName(), l.assembly) {
		return false
	}
	name := d.TypeName()
	if name == "" {
		name = d.Name()
	}
	switch {
	case l.typePattern == "*":
		return true
	case strings.HasSuffix(l.typePattern, "*"):
		return strings.HasPrefix(name, strings.TrimSuffix(l.typePattern, "*"))
	}
	return name == l.typePattern
}

func (v *lookupVisitor) parseLookup(tok syntax.DirectiveToken) (lookup, bool) {
	text := strings.TrimSpace(tok.Value())
	typePattern, assembly, ok := strings.Cut(text, ",")
	typePattern, assembly = strings.TrimSpace(typePattern), strings.TrimSpace(assembly)
	if !ok || typePattern == "" || assembly == "" {
		v.diags = append(v.diags, diag.Errorf(diag.SynTagHelperLookupMissing, tok.Span,
			"invalid tag helper lookup text %q: expected \"<type pattern>, <assembly>\"", text))
		return lookup{}, false
	}
	return lookup{typePattern: typePattern, assembly: assembly}, true
}

func (v *lookupVisitor) add(l lookup) {
	seen := make(map[checksum.Digest]bool, len(v.selected))
	for _, d := range v.selected {
		seen[d.Checksum()] = true
	}
	for _, d := range v.available {
		if l.matches(d) && !seen[d.Checksum()] {
			seen[d.Checksum()] = true
			v.selected = append(v.selected, d)
		}
	}
}

func (v *lookupVisitor) remove(l lookup) {
	kept := v.selected[:0]
	for _, d := range v.selected {
		if !l.matches(d) {
			kept = append(kept, d)
		}
	}
	v.selected = kept
}
