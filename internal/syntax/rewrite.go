package syntax

import (
	"strings"

	"quill/internal/binding"
	"quill/internal/diag"
	"quill/internal/lang"
	"quill/internal/source"
	"quill/internal/taghelper"
)

// RewriteTagHelpers replaces every markup element bound by b with a
// TagHelperElement and appends binding diagnostics to the tree.
// Opt-out elements (<!name>) are never bound.
func RewriteTagHelpers(t *Tree, b *binding.Binder) {
	if t == nil || b == nil || len(b.Descriptors()) == 0 {
		return
	}
	r := &rewriter{binder: b, features: t.Options.Features}
	t.Root.Body = r.rewriteNodes(t.Root.Body, scope{})
	t.Diagnostics = append(t.Diagnostics, r.diags...)
}

type rewriter struct {
	binder   *binding.Binder
	features lang.Features
	diags    []diag.Diagnostic
}

// scope describes the element enclosing the nodes being rewritten.
type scope struct {
	tagName     string
	isTagHelper bool
	allowed     []string // nil: any child
	owner       string
}

func (r *rewriter) errorf(code diag.Code, sp source.Span, format string, args ...any) {
	r.diags = append(r.diags, diag.Errorf(code, sp, format, args...))
}

func (r *rewriter) rewriteNodes(nodes []Node, sc scope) []Node {
	for i, n := range nodes {
		switch n := n.(type) {
		case *MarkupElement:
			r.checkChild(n, sc)
			nodes[i] = r.rewriteElement(n, sc)
		case *MarkupText:
			if sc.allowed != nil && strings.TrimSpace(n.Text) != "" {
				r.errorf(diag.THLInvalidNestedTag, n.Span(),
					"the parent <%s> tag helper does not allow non-tag content, only child tags named %s",
					sc.tagName, strings.Join(sc.allowed, ", "))
			}
		case *MarkupComment:
			if sc.allowed != nil && !r.features.AllowHTMLCommentsInTagHelpers {
				r.errorf(diag.THLCommentInTagHelper, n.Span(),
					"the parent <%s> tag helper does not allow comments", sc.tagName)
			}
		case *Directive:
			n.Body = r.rewriteNodes(n.Body, scope{})
		}
	}
	return nodes
}

func (r *rewriter) checkChild(el *MarkupElement, sc scope) {
	if sc.allowed == nil {
		return
	}
	name, _ := r.binder.StripPrefix(el.Name)
	for _, a := range sc.allowed {
		if a == taghelper.ElementCatchAll || strings.EqualFold(a, name) {
			return
		}
	}
	r.errorf(diag.THLInvalidNestedTag, el.StartTag,
		"the <%s> tag is not allowed by parent <%s> tag helper %s, only child tags named %s",
		el.Name, sc.tagName, sc.owner, strings.Join(sc.allowed, ", "))
}

func bindingAttributes(attrs []*MarkupAttribute) []binding.Attribute {
	out := make([]binding.Attribute, 0, len(attrs))
	for _, a := range attrs {
		if a.IsCode() {
			continue
		}
		v, literal := a.LiteralValue()
		out = append(out, binding.Attribute{
			Name:      a.Name,
			Value:     v,
			Dynamic:   !literal,
			Minimized: a.Minimized,
		})
	}
	return out
}

func (r *rewriter) rewriteElement(el *MarkupElement, sc scope) Node {
	var bd *binding.Binding
	if !el.OptOut {
		bd = r.binder.GetBinding(el.Name, bindingAttributes(el.Attributes), sc.tagName, sc.isTagHelper)
	}
	if bd == nil {
		el.Body = r.rewriteNodes(el.Body, scope{tagName: el.Name})
		return el
	}

	th := &TagHelperElement{
		TagName:  el.Name,
		Binding:  bd,
		StartTag: el.StartTag,
	}
	th.loc = el.loc
	th.TagMode = r.tagMode(el, bd)
	for _, a := range el.Attributes {
		if a.IsCode() {
			r.errorf(diag.THLCodeInAttributeArea, a.loc,
				"the <%s> tag helper must not have code in the attribute area of its start tag", el.Name)
			continue
		}
		th.Attributes = append(th.Attributes, r.bindAttribute(el, a, bd))
	}

	inner := scope{tagName: el.Name, isTagHelper: !bd.IsAttributeMatch()}
	for _, d := range bd.Descriptors() {
		for _, c := range d.AllowedChildTags() {
			inner.allowed = append(inner.allowed, c.Name())
			inner.owner = d.DisplayName()
		}
	}
	th.Body = r.rewriteNodes(el.Body, inner)
	return th
}

// tagMode validates the written structure against the matched rules.
func (r *rewriter) tagMode(el *MarkupElement, bd *binding.Binding) TagMode {
	var structure taghelper.TagStructure
	var first *taghelper.Descriptor
	for _, d := range bd.Descriptors() {
		for _, rule := range bd.Rules(d) {
			s := rule.TagStructure()
			if s == taghelper.TagStructureUnspecified {
				continue
			}
			if structure == taghelper.TagStructureUnspecified {
				structure, first = s, d
				continue
			}
			if s != structure {
				r.errorf(diag.THLInconsistentTagStructure, el.StartTag,
					"tag helpers %s and %s targeting <%s> must not expect different tag structures",
					first.DisplayName(), d.DisplayName(), el.Name)
			}
		}
	}

	switch {
	case el.SelfClosing:
		return SelfClosing
	case structure == taghelper.TagStructureWithoutEndTag:
		if el.HasEndTag {
			r.errorf(diag.THLInconsistentTagStructure, el.EndTag,
				"the <%s> tag helper must not have an end tag", el.Name)
		}
		return StartTagOnly
	case el.Void:
		return StartTagOnly
	case !el.HasEndTag:
		r.errorf(diag.THLMissingEndTag, el.StartTag,
			"found a malformed <%s> tag helper, tag helpers must have a start and end tag or be self closing", el.Name)
		return StartTagOnly
	}
	return StartTagAndEndTag
}

func (r *rewriter) bindAttribute(el *MarkupElement, a *MarkupAttribute, bd *binding.Binding) *TagHelperAttribute {
	out := &TagHelperAttribute{
		Name:      a.Name,
		Value:     a.Value,
		Minimized: a.Minimized,
		Quote:     a.Quote,
	}
	out.loc = a.loc

	for _, d := range bd.Descriptors() {
		for _, m := range binding.GetBoundAttributes(d, a.Name) {
			out.Bound = append(out.Bound, BoundMatch{Descriptor: d, Match: m})
		}
		for _, bound := range d.BoundAttributes() {
			if binding.IsIndexerMissingKey(a.Name, bound) {
				r.errorf(diag.THLIndexerMissingKey, a.NameSpan,
					"the tag helper attribute %q in element <%s> is missing a key, the syntax is <%s %s{ key }=\"value\">",
					a.Name, el.Name, el.Name, bound.IndexerNamePrefix())
			}
		}
	}

	if len(out.Bound) == 0 {
		r.checkDirectiveParameter(el, a, bd)
		return out
	}
	m := out.Bound[0].Match
	switch {
	case a.Minimized && !m.ExpectsBooleanValue():
		r.errorf(diag.THLMinimizedNonBoolean, a.NameSpan,
			"attribute %q on tag helper element <%s> requires a value, tag helper bound attributes of type %q cannot be minimized",
			a.Name, el.Name, m.TypeName())
	case a.Minimized && !r.features.AllowMinimizedBooleanTagHelperAttributes:
		r.errorf(diag.THLMinimizedNonBoolean, a.NameSpan,
			"attribute %q on tag helper element <%s> requires a value", a.Name, el.Name)
	case !a.Minimized && !m.ExpectsStringValue():
		if v, literal := a.LiteralValue(); literal && strings.TrimSpace(v) == "" {
			r.errorf(diag.THLEmptyBoundValue, a.NameSpan,
				"attribute %q on tag helper element <%s> requires a value, tag helper bound attributes of type %q cannot be empty or contain only whitespace",
				a.Name, el.Name, m.TypeName())
		}
	}
	return out
}

// checkDirectiveParameter reports "@attr:param" where @attr is bound but
// has no such parameter.
func (r *rewriter) checkDirectiveParameter(el *MarkupElement, a *MarkupAttribute, bd *binding.Binding) {
	base, param, ok := binding.SplitDirectiveAttributeName(a.Name)
	if !ok || !strings.HasPrefix(base, "@") {
		return
	}
	for _, d := range bd.Descriptors() {
		for _, bound := range d.BoundAttributes() {
			if bound.IsDirectiveAttribute() && binding.MatchesName(base, bound) {
				r.errorf(diag.THLUnknownDirectiveParameter, a.NameSpan,
					"the directive attribute %q on <%s> has no parameter named %q", base, el.Name, param)
				return
			}
		}
	}
}
