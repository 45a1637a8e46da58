package syntax

import (
	"slices"
	"strings"
)

// MergeAdjacentText joins consecutive MarkupText nodes whose spans touch,
// in the document body and in every nested body. It returns the number of
// nodes removed. Running it twice removes nothing the second time.
func MergeAdjacentText(t *Tree) int {
	if t == nil || t.Root == nil {
		return 0
	}
	var removed int
	t.Root.Body = mergeText(t.Root.Body, &removed)
	return removed
}

func mergeText(nodes []Node, removed *int) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		switch n := n.(type) {
		case *MarkupElement:
			n.Body = mergeText(n.Body, removed)
		case *TagHelperElement:
			n.Body = mergeText(n.Body, removed)
		case *Directive:
			n.Body = mergeText(n.Body, removed)
		case *MarkupText:
			if len(out) > 0 {
				if prev, ok := out[len(out)-1].(*MarkupText); ok && prev.loc.End == n.loc.Start && prev.loc.File == n.loc.File {
					// новый узел, чтобы не трогать исходное дерево
					merged := &MarkupText{Text: prev.Text + n.Text}
					merged.loc = prev.loc.Cover(n.loc)
					out[len(out)-1] = merged
					*removed++
					continue
				}
			}
		}
		out = append(out, n)
	}
	return out
}

// TrimDirectiveTokens strips surrounding whitespace from every directive
// token and narrows its span to match. A directive whose tokens change is
// replaced by a copy. It returns the number of tokens trimmed.
func TrimDirectiveTokens(t *Tree) int {
	if t == nil || t.Root == nil {
		return 0
	}
	var trimmed int
	t.Root.Body = trimTokens(t.Root.Body, &trimmed)
	return trimmed
}

func trimTokens(nodes []Node, trimmed *int) []Node {
	for i, n := range nodes {
		switch n := n.(type) {
		case *MarkupElement:
			n.Body = trimTokens(n.Body, trimmed)
		case *TagHelperElement:
			n.Body = trimTokens(n.Body, trimmed)
		case *Directive:
			body := trimTokens(n.Body, trimmed)
			var tokens []DirectiveToken
			for j, tok := range n.Tokens {
				content := strings.TrimLeft(tok.Content, " \t\r\n")
				lead := len(tok.Content) - len(content)
				content = strings.TrimRight(content, " \t\r\n")
				if len(content) == len(tok.Content) {
					continue
				}
				if tokens == nil {
					tokens = slices.Clone(n.Tokens)
				}
				tok.Content = content
				tok.Span.Start += uint32(lead)
				tok.Span.End = tok.Span.Start + uint32(len(content))
				tokens[j] = tok
				*trimmed++
			}
			if tokens != nil {
				c := *n
				c.Tokens = tokens
				c.Body = body
				nodes[i] = &c
			} else {
				n.Body = body
			}
		}
	}
	return nodes
}
