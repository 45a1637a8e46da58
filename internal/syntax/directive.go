package syntax

import (
	"strings"

	"quill/internal/diag"
	"quill/internal/directive"
)

// parseDirective parses "@keyword" at start. Token and block errors go to
// the directive node, which makes it malformed. A repeated singly
// occurring directive is reported on the tree and stays well-formed.
func (p *parser) parseDirective(d *directive.Descriptor, start int, nested bool) *Directive {
	n := &Directive{Descriptor: d, Nested: nested}
	kwEnd := start + 1 + len(d.Keyword())
	kwSpan := p.span(start, kwEnd)
	p.pos = kwEnd

	if nested && d.Usage().FileScoped() {
		n.Diagnostics = append(n.Diagnostics, diag.Errorf(diag.SynDirectiveNotTopLevel, kwSpan,
			"the %q directive must appear at the top level of the document", d.Keyword()))
	}
	if d.Usage() == directive.FileScopedSinglyOccurring {
		if first, dup := p.seen[d.Keyword()]; dup {
			p.diags = append(p.diags, diag.Errorf(diag.SynDuplicateDirective, kwSpan,
				"the %q directive may only occur once per document", d.Keyword()).
				WithNote(first, "first occurrence"))
		} else {
			p.seen[d.Keyword()] = kwSpan
		}
	}

	if p.parseDirectiveTokens(n) {
		if d.Kind() == directive.SingleLine {
			p.finishLine(n)
		} else {
			p.parseDirectiveBlock(n)
		}
	}
	n.loc = p.span(start, p.pos)
	return n
}

func (p *parser) directiveError(n *Directive, code diag.Code, start, end int, format string, args ...any) {
	n.Diagnostics = append(n.Diagnostics, diag.Errorf(code, p.span(start, end), format, args...))
}

func (p *parser) atTokenEnd(kind directive.Kind) bool {
	if p.pos >= len(p.src) {
		return true
	}
	c := p.src[p.pos]
	return c == '\n' || (kind != directive.SingleLine && c == '{')
}

func (p *parser) parseDirectiveTokens(n *Directive) bool {
	d := n.Descriptor
	for i := range d.TokenCount() {
		tok, _ := d.TokenAt(i)
		p.skipHorizontalSpace()
		if p.atTokenEnd(d.Kind()) {
			if tok.Optional {
				return true
			}
			p.directiveError(n, diag.SynDirectiveMissingToken, p.pos, p.pos,
				"the %q directive expects %s", d.Keyword(), describeToken(tok))
			return false
		}
		start := p.pos
		end, code := p.scanToken(tok.Kind, d.Kind())
		if code != diag.UnknownCode {
			p.directiveError(n, code, start, max(end, start+1),
				"the %q directive expects %s", d.Keyword(), describeToken(tok))
			p.pos = lineEnd(p.src, p.pos)
			return false
		}
		n.Tokens = append(n.Tokens, DirectiveToken{
			Descriptor: tok,
			Content:    p.src[start:end],
			Span:       p.span(start, end),
		})
		p.pos = end
	}
	return true
}

func describeToken(t directive.Token) string {
	var what string
	switch t.Kind {
	case directive.TokenType:
		what = "a type name"
	case directive.TokenNamespace:
		what = "a namespace"
	case directive.TokenMember:
		what = "an identifier"
	case directive.TokenString:
		what = "a string"
	case directive.TokenAttribute:
		what = "an attribute"
	case directive.TokenBoolean:
		what = "true or false"
	case directive.TokenGenericTypeConstraint:
		what = "a where clause"
	default:
		what = "an identifier or expression"
	}
	if t.Name != "" {
		return what + " (" + t.Name + ")"
	}
	return what
}

// scanToken returns the end of a token of the given kind at p.pos, or a
// code describing why no such token is there.
func (p *parser) scanToken(kind directive.TokenKind, dkind directive.Kind) (int, diag.Code) {
	s, i := p.src, p.pos
	switch kind {
	case directive.TokenType:
		end := scanTypeName(s, i)
		if end == i {
			return i, diag.SynDirectiveInvalidToken
		}
		return end, diag.UnknownCode
	case directive.TokenNamespace:
		end := scanQualifiedName(s, i)
		if end == i {
			return i, diag.SynDirectiveInvalidToken
		}
		// alias form: Name = Qualified.Name
		j := end
		for j < len(s) && isHorizontalSpace(s[j]) {
			j++
		}
		if j < len(s) && s[j] == '=' {
			j++
			for j < len(s) && isHorizontalSpace(s[j]) {
				j++
			}
			if k := scanTypeName(s, j); k > j {
				end = k
			}
		}
		return end, diag.UnknownCode
	case directive.TokenMember:
		end := readIdent(s, i)
		if end == i {
			return i, diag.SynDirectiveInvalidToken
		}
		return end, diag.UnknownCode
	case directive.TokenString:
		if s[i] == '"' {
			end := skipString(s, i)
			if end > lineEnd(s, i) || s[end-1] != '"' || end == i+1 {
				return lineEnd(s, i), diag.SynUnterminatedStringToken
			}
			return end, diag.UnknownCode
		}
		stop := lineEnd(s, i)
		if dkind != directive.SingleLine {
			if b := strings.IndexByte(s[i:stop], '{'); b >= 0 {
				stop = i + b
			}
		}
		end := i + len(strings.TrimRight(s[i:stop], " \t;"))
		if end == i {
			return i, diag.SynDirectiveInvalidToken
		}
		return end, diag.UnknownCode
	case directive.TokenAttribute:
		if s[i] != '[' {
			return i, diag.SynDirectiveInvalidToken
		}
		k := scanBalanced(s, i, '[', ']')
		if k < 0 {
			return lineEnd(s, i), diag.SynDirectiveInvalidToken
		}
		return k + 1, diag.UnknownCode
	case directive.TokenBoolean:
		end := readIdent(s, i)
		if w := s[i:end]; w != "true" && w != "false" {
			return end, diag.SynDirectiveInvalidToken
		}
		return end, diag.UnknownCode
	case directive.TokenGenericTypeConstraint:
		if end := readIdent(s, i); s[i:end] != "where" {
			return end, diag.SynDirectiveInvalidToken
		}
		stop := lineEnd(s, i)
		if dkind != directive.SingleLine {
			if b := strings.IndexByte(s[i:stop], '{'); b >= 0 {
				stop = i + b
			}
		}
		return i + len(strings.TrimRight(s[i:stop], " \t;")), diag.UnknownCode
	default:
		if s[i] == '(' {
			k := scanBalanced(s, i, '(', ')')
			if k < 0 {
				return lineEnd(s, i), diag.SynDirectiveInvalidToken
			}
			return k + 1, diag.UnknownCode
		}
		end := scanQualifiedName(s, i)
		if end == i {
			return i, diag.SynDirectiveInvalidToken
		}
		return end, diag.UnknownCode
	}
}

// scanQualifiedName reads Ident(.Ident)*.
func scanQualifiedName(s string, i int) int {
	end := readIdent(s, i)
	if end == i {
		return i
	}
	for end+1 < len(s) && s[end] == '.' && isIdentStart(s[end+1]) {
		end = readIdent(s, end+1)
	}
	return end
}

// scanTypeName reads a type such as global::A.B<C, D[]>? or a tuple.
// Whitespace ends the name only outside brackets.
func scanTypeName(s string, i int) int {
	if i >= len(s) || (!isIdentStart(s[i]) && s[i] != '(') {
		return i
	}
	depth := 0
	j := i
	for ; j < len(s); j++ {
		c := s[j]
		if c == '\n' || c == '\r' {
			break
		}
		switch c {
		case '<', '(', '[':
			depth++
			continue
		case '>', ')', ']':
			depth--
			if depth < 0 {
				return j
			}
			continue
		}
		if depth == 0 && (isHorizontalSpace(c) || c == ';' || c == '{' || c == '"') {
			break
		}
	}
	if depth > 0 {
		return i
	}
	return j
}

// finishLine consumes an optional ";" and the line break after a single
// line directive. Anything else left on the line is an error.
func (p *parser) finishLine(n *Directive) {
	p.skipHorizontalSpace()
	if p.pos < len(p.src) && p.src[p.pos] == ';' {
		p.pos++
		p.skipHorizontalSpace()
	}
	if p.pos < len(p.src) && p.src[p.pos] != '\n' && p.src[p.pos] != '\r' {
		end := lineEnd(p.src, p.pos)
		p.directiveError(n, diag.SynDirectiveTrailing, p.pos, end,
			"unexpected %q after the %q directive, expected a line break",
			strings.TrimSpace(p.src[p.pos:end]), n.Keyword())
		p.pos = end
	}
	if p.pos < len(p.src) && p.src[p.pos] == '\n' {
		p.pos++
	}
}

func (p *parser) parseDirectiveBlock(n *Directive) {
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '{' {
		p.directiveError(n, diag.SynDirectiveMissingBlock, p.pos, p.pos,
			"the %q directive expects a block starting with \"{\"", n.Keyword())
		return
	}
	open := p.pos
	if n.Descriptor.Kind() == directive.CodeBlock {
		end := scanBalanced(p.src, open, '{', '}')
		if end < 0 {
			p.directiveError(n, diag.SynUnterminatedBlock, open, open+1,
				"the %q block is missing a closing \"}\"", n.Keyword())
			n.Code = p.src[open+1:]
			p.pos = len(p.src)
			return
		}
		n.Code = p.src[open+1 : end]
		p.pos = end + 1
		return
	}

	p.pos++
	p.blockDepth++
	body, closed := p.parseMarkup(true)
	p.blockDepth--
	n.Body = body
	if !closed {
		p.directiveError(n, diag.SynUnterminatedBlock, open, open+1,
			"the %q block is missing a closing \"}\"", n.Keyword())
	}
}
