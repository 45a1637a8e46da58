package syntax

import (
	"strings"

	"golang.org/x/net/html/atom"

	"quill/internal/diag"
	"quill/internal/directive"
	"quill/internal/lang"
	"quill/internal/source"
)

// Parse builds the syntax tree of file. Directives are recognized from
// opts.Directives only.
func Parse(file *source.File, opts lang.ParserOptions) *Tree {
	p := newParser(file, opts)
	body, _ := p.parseMarkup(false)
	root := &Document{Body: body}
	root.loc = p.span(0, len(p.src))
	return &Tree{Source: file, Root: root, Options: opts, Diagnostics: p.diags}
}

type parser struct {
	file       *source.File
	src        string
	pos        int
	opts       lang.ParserOptions
	directives map[string]*directive.Descriptor
	seen       map[string]source.Span // singly occurring keywords
	blockDepth int
	stopped    bool
	diags      []diag.Diagnostic
}

func newParser(file *source.File, opts lang.ParserOptions) *parser {
	p := &parser{
		file:       file,
		src:        string(file.Content),
		opts:       opts,
		directives: make(map[string]*directive.Descriptor, len(opts.Directives)),
		seen:       make(map[string]source.Span),
	}
	for _, d := range opts.Directives {
		if d != nil {
			p.directives[d.Keyword()] = d
		}
	}
	return p
}

func (p *parser) off(i int) uint32 {
	return uint32(i) //nolint:gosec // file size is bounded when added to the set
}

func (p *parser) span(start, end int) source.Span {
	return source.Span{File: p.file.ID, Start: p.off(start), End: p.off(end)}
}

func (p *parser) errorf(code diag.Code, sp source.Span, format string, args ...any) {
	p.diags = append(p.diags, diag.Errorf(code, sp, format, args...))
}

func (p *parser) peekAt(n int) byte {
	if i := p.pos + n; i < len(p.src) {
		return p.src[i]
	}
	return 0
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) skipHorizontalSpace() {
	for p.pos < len(p.src) && isHorizontalSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) nextNonSpace(i int) byte {
	for i < len(p.src) && isSpace(p.src[i]) {
		i++
	}
	if i < len(p.src) {
		return p.src[i]
	}
	return 0
}

// parseMarkup reads markup until EOF, or until the "}" closing the current
// directive block when inBlock is set. closed reports that the "}" was found.
func (p *parser) parseMarkup(inBlock bool) (nodes []Node, closed bool) {
	var stack []*MarkupElement
	textStart := -1
	braces := 0

	emit := func(n Node) {
		if k := len(stack); k > 0 {
			stack[k-1].Body = append(stack[k-1].Body, n)
			return
		}
		nodes = append(nodes, n)
	}
	flush := func() {
		if textStart >= 0 && textStart < p.pos {
			t := &MarkupText{Text: p.src[textStart:p.pos]}
			t.loc = p.span(textStart, p.pos)
			emit(t)
		}
		textStart = -1
	}

	leading := p.opts.ParseLeadingDirectives && !inBlock
	for p.pos < len(p.src) && !p.stopped {
		if leading && len(stack) == 0 && !p.atLeadingContent() {
			p.stopped = true
			break
		}
		c := p.src[p.pos]
		switch {
		case inBlock && len(stack) == 0 && c == '}' && braces == 0:
			flush()
			p.pos++
			return nodes, true
		case c == '@' && !p.isEmailAt():
			flush()
			emit(p.parseTransition(len(stack) > 0 || p.blockDepth > 0))
		case c == '<' && strings.HasPrefix(p.src[p.pos:], "<!--"):
			flush()
			emit(p.parseMarkupComment())
		case c == '<' && p.startsEndTag():
			flush()
			stack = p.parseEndTag(stack, emit)
		case c == '<' && p.startsStartTag():
			flush()
			el, ok := p.parseStartTag()
			emit(el)
			if ok && !el.SelfClosing && !el.Void {
				stack = append(stack, el)
			}
		default:
			if inBlock && len(stack) == 0 {
				switch c {
				case '{':
					braces++
				case '}':
					braces--
				}
			}
			if textStart < 0 {
				textStart = p.pos
			}
			p.pos++
		}
	}
	flush()
	for _, open := range stack {
		open.loc.End = p.off(p.pos)
	}
	return nodes, !inBlock
}

// atLeadingContent reports whether the leading-directives scan may go on:
// whitespace, template comments and directives.
func (p *parser) atLeadingContent() bool {
	c := p.src[p.pos]
	if isSpace(c) {
		return true
	}
	if c != '@' {
		return false
	}
	if p.peekAt(1) == '*' {
		return true
	}
	end := readIdent(p.src, p.pos+1)
	kw := p.src[p.pos+1 : end]
	_, ok := p.directives[kw]
	return ok && (kw != "using" || p.nextNonSpace(end) != '(')
}

// isEmailAt treats "name@host" as literal text.
func (p *parser) isEmailAt() bool {
	return p.pos > 0 && isAlnum(p.src[p.pos-1]) && isAlnum(p.peekAt(1))
}

func (p *parser) parseTransition(nested bool) Node {
	start := p.pos
	next := p.peekAt(1)
	switch {
	case next == '@':
		p.pos += 2
		t := &Transition{}
		t.loc = p.span(start, p.pos)
		return t
	case next == '*':
		return p.parseComment()
	case next == '{':
		n := &CodeBlock{}
		end := scanBalanced(p.src, start+1, '{', '}')
		if end < 0 {
			p.errorf(diag.SynUnterminatedBlock, p.span(start, start+2), "the code block is missing a closing \"}\"")
			n.Code = p.src[start+2:]
			p.pos = len(p.src)
		} else {
			n.Code = p.src[start+2 : end]
			p.pos = end + 1
		}
		n.loc = p.span(start, p.pos)
		return n
	case next == '(':
		n := &CodeExpression{Explicit: true}
		end := scanBalanced(p.src, start+1, '(', ')')
		if end < 0 {
			p.errorf(diag.SynUnterminatedExpression, p.span(start, start+2), "the explicit expression is missing a closing \")\"")
			n.Code = p.src[start+2:]
			p.pos = len(p.src)
		} else {
			n.Code = p.src[start+2 : end]
			p.pos = end + 1
		}
		n.loc = p.span(start, p.pos)
		return n
	case isIdentStart(next):
		kwEnd := readIdent(p.src, start+1)
		kw := p.src[start+1 : kwEnd]
		if d, ok := p.directives[kw]; ok && (kw != "using" || p.nextNonSpace(kwEnd) != '(') {
			return p.parseDirective(d, start, nested)
		}
		if statementKeywords[kw] {
			return p.parseStatement(start, kwEnd, kw)
		}
		end := p.implicitEnd(start+1, len(p.src))
		n := &CodeExpression{Code: p.src[start+1 : end]}
		p.pos = end
		n.loc = p.span(start, end)
		return n
	}
	p.pos++
	p.errorf(diag.SynUnexpectedAfterAt, p.span(start, p.pos), "unexpected %q after \"@\"", printable(next))
	t := &MarkupText{Text: "@"}
	t.loc = p.span(start, p.pos)
	return t
}

func printable(c byte) string {
	switch c {
	case 0:
		return "end of file"
	case '\n':
		return "line break"
	}
	return string(c)
}

func (p *parser) parseComment() Node {
	start := p.pos
	body := start + 2
	n := &Comment{}
	if k := strings.Index(p.src[body:], "*@"); k >= 0 {
		n.Text = p.src[body : body+k]
		p.pos = body + k + 2
	} else {
		n.Text = p.src[body:]
		p.pos = len(p.src)
		p.errorf(diag.SynUnterminatedComment, p.span(start, body), "the comment is missing a closing \"*@\"")
	}
	n.loc = p.span(start, p.pos)
	return n
}

// implicitEnd returns the end of an implicit expression starting at i:
// an identifier followed by member accesses, calls and indexers.
func (p *parser) implicitEnd(i, limit int) int {
	s := p.src[:limit]
	j := readIdent(s, i)
	if s[i:j] == "await" && j+1 < len(s) && s[j] == ' ' && isIdentStart(s[j+1]) {
		j = readIdent(s, j+1)
	}
	for j < len(s) {
		switch c := s[j]; {
		case c == '(' || c == '[':
			closer := byte(')')
			if c == '[' {
				closer = ']'
			}
			k := scanBalanced(s, j, c, closer)
			if k < 0 {
				return j
			}
			j = k + 1
		case c == '.' && j+1 < len(s) && isIdentStart(s[j+1]):
			j = readIdent(s, j+1)
		case c == '?' && j+2 < len(s) && s[j+1] == '.' && isIdentStart(s[j+2]):
			j = readIdent(s, j+2)
		case c == '!' && p.opts.Features.AllowNullableForgivenessOperator &&
			j+2 < len(s) && s[j+1] == '.' && isIdentStart(s[j+2]):
			j = readIdent(s, j+2)
		default:
			return j
		}
	}
	return j
}

func (p *parser) parseStatement(start, kwEnd int, kw string) Node {
	end, ok := p.statementEnd(kwEnd, kw)
	if !ok {
		p.errorf(diag.SynUnterminatedBlock, p.span(start, kwEnd), "the %q block is missing a closing \"}\"", kw)
	}
	n := &CodeBlock{Code: p.src[start+1 : end], Statement: true}
	p.pos = end
	n.loc = p.span(start, end)
	return n
}

func skipSpaceFrom(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

// statementEnd returns the end of a keyword statement, including any
// else/catch/finally chain. ok is false when a block never closes.
func (p *parser) statementEnd(i int, kw string) (end int, ok bool) {
	s := p.src
	for {
		j := skipSpaceFrom(s, i)
		if j < len(s) && s[j] == '(' {
			k := scanBalanced(s, j, '(', ')')
			if k < 0 {
				return len(s), false
			}
			j = skipSpaceFrom(s, k+1)
		}
		if j >= len(s) || s[j] != '{' {
			return lineEnd(s, i), false
		}
		k := scanBalanced(s, j, '{', '}')
		if k < 0 {
			return len(s), false
		}
		i = k + 1

		j = skipSpaceFrom(s, i)
		wordEnd := readIdent(s, j)
		word := s[j:wordEnd]
		if !containsWord(continuations[kw], word) {
			return i, true
		}
		if kw == "do" {
			j = skipSpaceFrom(s, wordEnd)
			if j >= len(s) || s[j] != '(' {
				return i, true
			}
			k = scanBalanced(s, j, '(', ')')
			if k < 0 {
				return len(s), false
			}
			i = k + 1
			if i < len(s) && s[i] == ';' {
				i++
			}
			return i, true
		}
		i = wordEnd
		if word == "else" {
			j = skipSpaceFrom(s, i)
			if e := readIdent(s, j); s[j:e] == "if" {
				i = e
			}
		}
	}
}

func containsWord(words []string, w string) bool {
	for _, x := range words {
		if x == w {
			return true
		}
	}
	return false
}

func (p *parser) parseMarkupComment() Node {
	start := p.pos
	body := start + len("<!--")
	n := &MarkupComment{}
	if k := strings.Index(p.src[body:], "-->"); k >= 0 {
		n.Text = p.src[body : body+k]
		p.pos = body + k + len("-->")
	} else {
		n.Text = p.src[body:]
		p.pos = len(p.src)
		p.errorf(diag.SynUnterminatedComment, p.span(start, body), "the markup comment is missing a closing \"-->\"")
	}
	n.loc = p.span(start, p.pos)
	return n
}

func isTagNameChar(c byte) bool {
	return isAlnum(c) || c == '-' || c == ':' || c == '.' || c == '_'
}

func readTagName(s string, i int) int {
	for i < len(s) && isTagNameChar(s[i]) {
		i++
	}
	return i
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func (p *parser) startsStartTag() bool {
	c := p.peekAt(1)
	return isLetter(c) || (c == '!' && isLetter(p.peekAt(2)))
}

func (p *parser) startsEndTag() bool {
	if p.peekAt(1) != '/' {
		return false
	}
	c := p.peekAt(2)
	return isLetter(c) || (c == '!' && isLetter(p.peekAt(3)))
}

// isVoidElement reports HTML elements that never have content.
func isVoidElement(name string) bool {
	switch atom.Lookup([]byte(strings.ToLower(name))) {
	case atom.Area, atom.Base, atom.Br, atom.Col, atom.Embed, atom.Hr, atom.Img, atom.Input,
		atom.Keygen, atom.Link, atom.Meta, atom.Param, atom.Source, atom.Track, atom.Wbr:
		return true
	}
	return false
}

// parseStartTag reads <name attrs> or <name attrs/>. ok is false when the
// tag never closes; such an element gets no body.
func (p *parser) parseStartTag() (el *MarkupElement, ok bool) {
	start := p.pos
	el = &MarkupElement{}
	p.pos++
	if p.src[p.pos] == '!' {
		el.OptOut = true
		p.pos++
	}
	nameEnd := readTagName(p.src, p.pos)
	el.Name = p.src[p.pos:nameEnd]
	el.Void = isVoidElement(el.Name)
	p.pos = nameEnd

	ok = true
loop:
	for {
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] == '<' {
			p.errorf(diag.SynUnterminatedStartTag, p.span(start, nameEnd), "start tag <%s> is missing a closing \">\"", el.Name)
			ok = false
			break
		}
		switch {
		case p.src[p.pos] == '>':
			p.pos++
			break loop
		case p.src[p.pos] == '/' && p.peekAt(1) == '>':
			el.SelfClosing = true
			p.pos += 2
			break loop
		}
		if a := p.parseAttributeCode(); a != nil {
			el.Attributes = append(el.Attributes, a)
			continue
		}
		if a := p.parseAttribute(); a != nil {
			el.Attributes = append(el.Attributes, a)
		}
	}
	el.StartTag = p.span(start, p.pos)
	el.loc = el.StartTag
	return el, ok
}

// parseAttributeCode reads an explicit @(...) written in place of an
// attribute. Older language versions read it as an attribute name.
func (p *parser) parseAttributeCode() *MarkupAttribute {
	if !p.opts.Features.AllowCSharpInMarkupAttributeArea || p.src[p.pos] != '@' || p.peekAt(1) != '(' {
		return nil
	}
	start := p.pos
	k := scanBalanced(p.src, start+1, '(', ')')
	if k < 0 {
		p.errorf(diag.SynUnterminatedExpression, p.span(start, start+2), "the explicit expression is missing a closing \")\"")
		return nil
	}
	e := &CodeExpression{Code: p.src[start+2 : k], Explicit: true}
	e.loc = p.span(start, k+1)
	a := &MarkupAttribute{Value: []Node{e}}
	a.loc = e.loc
	a.NameSpan = e.loc
	p.pos = k + 1
	return a
}

func (p *parser) parseAttribute() *MarkupAttribute {
	start := p.pos
	end := p.pos
	for end < len(p.src) {
		c := p.src[end]
		if isSpace(c) || c == '=' || c == '>' || c == '<' || c == '"' || c == '\'' ||
			(c == '/' && end+1 < len(p.src) && p.src[end+1] == '>') {
			break
		}
		end++
	}
	if end == start {
		// stray quote or "=": skip it
		p.pos++
		return nil
	}
	a := &MarkupAttribute{Name: p.src[start:end], NameSpan: p.span(start, end)}
	p.pos = end
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '=' {
		p.pos = end
		a.Minimized = true
		a.loc = a.NameSpan
		return a
	}
	p.pos++
	p.skipSpace()
	if p.pos < len(p.src) && (p.src[p.pos] == '"' || p.src[p.pos] == '\'') {
		a.Quote = p.src[p.pos]
		valueStart := p.pos + 1
		valueEnd := p.quotedValueEnd(valueStart, a.Quote)
		a.Value = p.parseAttributeValue(valueStart, valueEnd)
		p.pos = min(valueEnd+1, len(p.src))
	} else {
		valueStart := p.pos
		for p.pos < len(p.src) {
			c := p.src[p.pos]
			if isSpace(c) || c == '>' || (c == '/' && p.peekAt(1) == '>') {
				break
			}
			p.pos++
		}
		a.Value = p.parseAttributeValue(valueStart, p.pos)
	}
	a.loc = p.span(start, p.pos)
	return a
}

// quotedValueEnd finds the closing quote, stepping over code so that
// quotes inside @(...) or @Call("x") do not end the value.
func (p *parser) quotedValueEnd(i int, quote byte) int {
	s := p.src
	for i < len(s) {
		switch {
		case s[i] == quote:
			return i
		case s[i] == '@' && i+1 < len(s) && s[i+1] == '(':
			if k := scanBalanced(s, i+1, '(', ')'); k > 0 {
				i = k + 1
				continue
			}
		case s[i] == '@' && i+1 < len(s) && isIdentStart(s[i+1]):
			i = p.implicitEnd(i+1, len(s))
			continue
		}
		i++
	}
	return len(s)
}

// parseAttributeValue splits [start, end) into literal and code parts.
func (p *parser) parseAttributeValue(start, end int) []Node {
	var parts []Node
	textStart := start
	flush := func(at int) {
		if at > textStart {
			t := &MarkupText{Text: p.src[textStart:at]}
			t.loc = p.span(textStart, at)
			parts = append(parts, t)
		}
	}
	for i := start; i < end; {
		c := p.src[i]
		email := i > start && isAlnum(p.src[i-1]) && i+1 < end && isAlnum(p.src[i+1])
		if c != '@' || email || i+1 >= end {
			i++
			continue
		}
		var n Node
		next := i
		switch {
		case p.src[i+1] == '@':
			t := &Transition{}
			next = i + 2
			t.loc = p.span(i, next)
			n = t
		case p.src[i+1] == '(':
			k := scanBalanced(p.src[:end], i+1, '(', ')')
			if k < 0 {
				p.errorf(diag.SynUnterminatedExpression, p.span(i, i+2), "the explicit expression is missing a closing \")\"")
				i++
				continue
			}
			e := &CodeExpression{Code: p.src[i+2 : k], Explicit: true}
			next = k + 1
			e.loc = p.span(i, next)
			n = e
		case isIdentStart(p.src[i+1]):
			k := p.implicitEnd(i+1, end)
			e := &CodeExpression{Code: p.src[i+1 : k]}
			next = k
			e.loc = p.span(i, next)
			n = e
		default:
			i++
			continue
		}
		flush(i)
		parts = append(parts, n)
		i = next
		textStart = next
	}
	flush(end)
	return parts
}

// parseEndTag closes the nearest matching open element. Elements above it
// are closed implicitly, without an end tag. An end tag with no match is
// reported and kept as text.
func (p *parser) parseEndTag(stack []*MarkupElement, emit func(Node)) []*MarkupElement {
	start := p.pos
	i := start + 2
	optOut := false
	if p.src[i] == '!' {
		optOut = true
		i++
	}
	nameEnd := readTagName(p.src, i)
	name := p.src[i:nameEnd]
	end := len(p.src)
	if gt := strings.IndexByte(p.src[nameEnd:], '>'); gt >= 0 {
		end = nameEnd + gt + 1
	}
	p.pos = end

	for k := len(stack) - 1; k >= 0; k-- {
		el := stack[k]
		if el.OptOut != optOut || !strings.EqualFold(el.Name, name) {
			continue
		}
		for _, open := range stack[k+1:] {
			open.loc.End = p.off(start)
		}
		el.HasEndTag = true
		el.EndTag = p.span(start, end)
		el.loc.End = p.off(end)
		return stack[:k]
	}
	p.errorf(diag.SynUnmatchedEndTag, p.span(start, end), "encountered end tag </%s> with no matching start tag", name)
	t := &MarkupText{Text: p.src[start:end]}
	t.loc = p.span(start, end)
	emit(t)
	return stack
}
