package syntax

import "strings"

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isHorizontalSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

// readIdent returns the end of the identifier starting at i, or i.
func readIdent(s string, i int) int {
	if i >= len(s) || !isIdentStart(s[i]) {
		return i
	}
	i++
	for i < len(s) && isIdentPart(s[i]) {
		i++
	}
	return i
}

// skipString returns the offset just past the string literal opening at i,
// or len(s) when it is unterminated.
func skipString(s string, i int) int {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		case '\n':
			if quote == '\'' {
				return j
			}
		}
	}
	return len(s)
}

// isCharLiteral reports 'x' or '\x' at i. Apostrophes in prose are not.
func isCharLiteral(s string, i int) bool {
	if i+2 < len(s) && s[i+1] != '\\' && s[i+2] == '\'' {
		return true
	}
	return i+3 < len(s) && s[i+1] == '\\' && s[i+3] == '\''
}

// scanBalanced returns the offset of the delimiter closing the one at i,
// skipping string and char literals. -1 means unterminated.
func scanBalanced(s string, i int, open, closer byte) int {
	depth := 0
	for j := i; j < len(s); j++ {
		c := s[j]
		switch {
		case c == '"':
			j = skipString(s, j) - 1
		case c == '\'' && isCharLiteral(s, j):
			j = skipString(s, j) - 1
		case c == '/' && j+1 < len(s) && s[j+1] == '/':
			if nl := strings.IndexByte(s[j:], '\n'); nl >= 0 {
				j += nl
			} else {
				j = len(s)
			}
		case c == open:
			depth++
		case c == closer:
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

// lineEnd returns the offset of the next '\n' at or after i, or len(s).
func lineEnd(s string, i int) int {
	if nl := strings.IndexByte(s[i:], '\n'); nl >= 0 {
		return i + nl
	}
	return len(s)
}

var statementKeywords = map[string]bool{
	"if":      true,
	"for":     true,
	"foreach": true,
	"while":   true,
	"switch":  true,
	"lock":    true,
	"using":   true,
	"do":      true,
	"try":     true,
}

// continuations lists the keywords that may follow a statement block.
var continuations = map[string][]string{
	"if":  {"else"},
	"try": {"catch", "finally"},
	"do":  {"while"},
}
