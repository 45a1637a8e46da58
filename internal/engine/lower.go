package engine

import (
	"strings"

	"quill/internal/directive"
	"quill/internal/ir"
	"quill/internal/lang"
	"quill/internal/syntax"
)

// Lower builds the unclassified IR document: usings and directives of the
// imports first, then the content of tree in document order. Markup in
// imports is ignored. A singly-occurring directive present in tree hides
// the same directive in the imports.
func Lower(tree *syntax.Tree, imports []*syntax.Tree) *ir.Document {
	irDoc := &ir.Document{}
	if tree.Source != nil {
		irDoc.SourcePath = tree.Source.Path
	}
	l := &lowerer{usings: make(map[string]bool), features: tree.Options.Features}

	inSource := make(map[string]bool)
	for _, d := range tree.Directives() {
		if d.Descriptor.Usage() == directive.FileScopedSinglyOccurring {
			inSource[d.Keyword()] = true
		}
	}
	for _, imp := range imports {
		for _, d := range imp.Diagnostics {
			irDoc.AddDiagnostic(d)
		}
		for _, n := range imp.Root.Body {
			d, ok := n.(*syntax.Directive)
			if !ok || inSource[d.Keyword()] {
				continue
			}
			l.directive(irDoc, d)
		}
	}
	for _, d := range tree.Diagnostics {
		irDoc.AddDiagnostic(d)
	}
	l.nodes(irDoc, tree.Root.Body)
	return irDoc
}

type lowerer struct {
	usings   map[string]bool
	features lang.Features
}

func (l *lowerer) nodes(parent ir.Node, nodes []syntax.Node) {
	for _, n := range nodes {
		l.node(parent, n)
	}
}

func (l *lowerer) node(parent ir.Node, n syntax.Node) {
	switch n := n.(type) {
	case *syntax.MarkupText:
		addHTML(parent, n.Text)
	case *syntax.Transition:
		addHTML(parent, "@")
	case *syntax.MarkupComment:
		addHTML(parent, "<!--"+n.Text+"-->")
	case *syntax.Comment:
		// template comments produce no output
	case *syntax.CodeExpression:
		expr := &ir.CodeExpression{}
		expr.SetSource(n.Span())
		expr.Add(ir.NewCodeToken(n.Code))
		parent.Base().Add(expr)
	case *syntax.CodeBlock:
		stmt := &ir.CodeStatement{}
		stmt.SetSource(n.Span())
		stmt.Add(ir.NewCodeToken(n.Code))
		parent.Base().Add(stmt)
	case *syntax.Directive:
		l.directive(parent, n)
	case *syntax.MarkupElement:
		l.element(parent, n)
	case *syntax.TagHelperElement:
		l.tagHelper(parent, n)
	}
}

func addHTML(parent ir.Node, text string) {
	if text == "" {
		return
	}
	c := &ir.HTMLContent{}
	c.Add(ir.NewHTMLToken(text))
	parent.Base().Add(c)
}

func directiveTokens(d *syntax.Directive) []ir.Node {
	out := make([]ir.Node, 0, len(d.Tokens))
	for _, tok := range d.Tokens {
		t := &ir.DirectiveToken{Content: tok.Content, Descriptor: tok.Descriptor}
		t.SetSource(tok.Span)
		out = append(out, t)
	}
	return out
}

func (l *lowerer) directive(parent ir.Node, d *syntax.Directive) {
	if d.Malformed() {
		m := &ir.MalformedDirective{Name: d.Keyword(), Descriptor: d.Descriptor}
		m.SetSource(d.Span())
		m.Add(directiveTokens(d)...)
		for _, dg := range d.Diagnostics {
			m.AddDiagnostic(dg)
		}
		parent.Base().Add(m)
		return
	}
	if d.Keyword() == directive.Using.Keyword() {
		if len(d.Tokens) == 0 {
			return
		}
		content := d.Tokens[0].Content
		if l.usings[content] {
			return
		}
		l.usings[content] = true
		u := &ir.Using{Content: content}
		u.SetSource(d.Tokens[0].Span)
		parent.Base().Add(u)
		return
	}
	n := &ir.Directive{Name: d.Keyword(), Descriptor: d.Descriptor}
	n.SetSource(d.Span())
	n.Add(directiveTokens(d)...)
	for _, dg := range d.Diagnostics {
		n.AddDiagnostic(dg)
	}
	switch d.Descriptor.Kind() {
	case directive.RazorBlock:
		l.nodes(n, d.Body)
	case directive.CodeBlock:
		stmt := &ir.CodeStatement{}
		stmt.SetSource(d.Span())
		stmt.Add(ir.NewCodeToken(d.Code))
		n.Add(stmt)
	}
	parent.Base().Add(n)
}

func (l *lowerer) element(parent ir.Node, el *syntax.MarkupElement) {
	var sb strings.Builder
	sb.WriteString("<" + el.Name)
	flush := func() {
		addHTML(parent, sb.String())
		sb.Reset()
	}
	for _, a := range el.Attributes {
		if a.IsCode() {
			sb.WriteString(" ")
			flush()
			l.node(parent, a.Value[0])
			continue
		}
		if a.Minimized {
			sb.WriteString(" " + a.Name)
			continue
		}
		quote := quoteOf(a.Quote)
		if v, ok := a.LiteralValue(); ok {
			sb.WriteString(" " + a.Name + "=" + quote + v + quote)
			continue
		}
		if !l.features.AllowConditionalDataDashAttributes && isDataDash(a.Name) {
			// до 3.0 data- атрибуты пишутся как есть, без условной записи
			sb.WriteString(" " + a.Name + "=" + quote)
			for _, part := range a.Value {
				switch part := part.(type) {
				case *syntax.MarkupText:
					sb.WriteString(part.Text)
				case *syntax.Transition:
					sb.WriteString("@")
				default:
					flush()
					l.node(parent, part)
				}
			}
			sb.WriteString(quote)
			continue
		}
		flush()
		attr := &ir.HTMLAttribute{AttributeName: a.Name, Prefix: " " + a.Name + "=" + quote, Suffix: quote}
		attr.SetSource(a.Span())
		for _, part := range a.Value {
			switch part := part.(type) {
			case *syntax.MarkupText:
				v := &ir.HTMLAttributeValue{}
				v.SetSource(part.Span())
				v.Add(ir.NewHTMLToken(part.Text))
				attr.Add(v)
			case *syntax.Transition:
				v := &ir.HTMLAttributeValue{}
				v.Add(ir.NewHTMLToken("@"))
				attr.Add(v)
			default:
				l.node(attr, part)
			}
		}
		parent.Base().Add(attr)
	}
	if el.SelfClosing {
		sb.WriteString(" />")
	} else {
		sb.WriteString(">")
	}
	flush()
	l.nodes(parent, el.Body)
	if el.HasEndTag {
		addHTML(parent, "</"+el.Name+">")
	}
}

func isDataDash(name string) bool {
	return len(name) >= len("data-") && strings.EqualFold(name[:len("data-")], "data-")
}

func quoteOf(q byte) string {
	if q == 0 {
		return ""
	}
	return string(q)
}

func structureOf(minimized bool, quote byte) ir.AttributeStructure {
	switch {
	case minimized:
		return ir.AttrMinimized
	case quote == '\'':
		return ir.AttrSingleQuotes
	case quote == 0:
		return ir.AttrNoQuotes
	}
	return ir.AttrDoubleQuotes
}

func tagModeOf(m syntax.TagMode) ir.TagMode {
	switch m {
	case syntax.SelfClosing:
		return ir.TagSelfClosing
	case syntax.StartTagOnly:
		return ir.TagStartOnly
	}
	return ir.TagStartAndEnd
}

func (l *lowerer) tagHelper(parent ir.Node, el *syntax.TagHelperElement) {
	th := &ir.TagHelper{TagName: el.TagName, TagMode: tagModeOf(el.TagMode), TagHelpers: el.Descriptors()}
	th.SetSource(el.Span())
	for _, a := range el.Attributes {
		l.tagHelperAttribute(th, a)
	}
	if el.TagMode == syntax.StartTagAndEndTag || len(el.Body) > 0 {
		body := &ir.TagHelperBody{}
		l.nodes(body, el.Body)
		th.Add(body)
	}
	parent.Base().Add(th)
}

func (l *lowerer) tagHelperAttribute(th *ir.TagHelper, a *syntax.TagHelperAttribute) {
	structure := structureOf(a.Minimized, a.Quote)
	if len(a.Bound) == 0 {
		n := &ir.TagHelperHTMLAttribute{AttributeName: a.Name, Structure: structure}
		n.SetSource(a.Span())
		l.attributeValue(n, a.Value, true)
		th.Add(n)
		return
	}
	for _, bm := range a.Bound {
		attr := bm.Match.Attribute
		var n ir.Node
		switch {
		case attr.IsDirectiveAttribute() && bm.Match.Parameter != nil:
			n = &ir.TagHelperDirectiveAttributeParameter{
				AttributeName:  strings.TrimPrefix(a.Name, "@"),
				OriginalName:   a.Name,
				Structure:      structure,
				TagHelper:      bm.Descriptor,
				BoundAttribute: attr,
				BoundParameter: bm.Match.Parameter,
			}
		case attr.IsDirectiveAttribute():
			n = &ir.TagHelperDirectiveAttribute{
				AttributeName:  strings.TrimPrefix(a.Name, "@"),
				OriginalName:   a.Name,
				Structure:      structure,
				TagHelper:      bm.Descriptor,
				BoundAttribute: attr,
			}
		default:
			n = &ir.TagHelperProperty{
				AttributeName:      a.Name,
				Structure:          structure,
				TagHelper:          bm.Descriptor,
				BoundAttribute:     attr,
				IsIndexerNameMatch: bm.Match.Indexer,
			}
		}
		n.Base().SetSource(a.Span())
		l.attributeValue(n, a.Value, bm.Match.ExpectsStringValue())
		th.Add(n)
	}
}

// attributeValue lowers a tag helper attribute value. Literal text is HTML
// for string-typed targets and code otherwise.
func (l *lowerer) attributeValue(parent ir.Node, parts []syntax.Node, literalIsHTML bool) {
	if literalIsHTML {
		for _, p := range parts {
			l.node(parent, p)
		}
		return
	}
	if len(parts) == 0 {
		return
	}
	expr := &ir.CodeExpression{}
	span := parts[0].Span()
	for _, p := range parts {
		span = span.Cover(p.Span())
		switch p := p.(type) {
		case *syntax.MarkupText:
			expr.Add(ir.NewCodeToken(p.Text))
		case *syntax.Transition:
			expr.Add(ir.NewCodeToken("@"))
		case *syntax.CodeExpression:
			expr.Add(ir.NewCodeToken(p.Code))
		}
	}
	expr.SetSource(span)
	parent.Base().Add(expr)
}
