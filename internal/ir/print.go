package ir

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Printer dumps an IR tree as indented text, one node per line.
type Printer struct {
	w      io.Writer
	indent int
	err    error
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Dump writes the tree rooted at n to w.
func Dump(w io.Writer, n Node) error {
	p := NewPrinter(w)
	p.Print(n)
	return p.err
}

// String renders the tree rooted at n.
func String(n Node) string {
	var sb strings.Builder
	_ = Dump(&sb, n)
	return sb.String()
}

// Print writes n and its subtree.
func (p *Printer) Print(n Node) {
	if p.err != nil {
		return
	}
	p.printf("%s%s%s\n", strings.Repeat("  ", p.indent), n.Kind(), describe(n))
	for _, d := range n.Base().Diagnostics {
		p.printf("%s! %s %s\n", strings.Repeat("  ", p.indent+1), d.Code.ID(), d.Message)
	}
	p.indent++
	for _, c := range n.Base().Children {
		p.Print(c)
	}
	p.indent--
}

func (p *Printer) printf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}

func q(s string) string { return strconv.Quote(s) }

// describe renders the node fields in a fixed order.
func describe(n Node) string {
	switch n := n.(type) {
	case *Document:
		return " kind=" + q(n.DocumentKind)
	case *Namespace:
		return fmt.Sprintf(" %s primary=%t", q(n.Content), n.IsPrimary)
	case *Class:
		var sb strings.Builder
		fmt.Fprintf(&sb, " %s %s", strings.Join(n.Modifiers, " "), q(n.ClassName))
		if n.BaseType != "" {
			fmt.Fprintf(&sb, " : %s", q(n.BaseType))
		}
		for _, i := range n.Interfaces {
			fmt.Fprintf(&sb, " +%s", q(i))
		}
		for _, tp := range n.TypeParameters {
			fmt.Fprintf(&sb, " <%s", tp.Name)
			if tp.Constraint != "" {
				fmt.Fprintf(&sb, " %s", q(tp.Constraint))
			}
			sb.WriteString(">")
		}
		fmt.Fprintf(&sb, " primary=%t", n.IsPrimary)
		return sb.String()
	case *Method:
		params := make([]string, 0, len(n.Parameters))
		for _, prm := range n.Parameters {
			params = append(params, strings.TrimSpace(strings.Join(prm.Modifiers, " ")+" "+prm.TypeName+" "+prm.ParameterName))
		}
		return fmt.Sprintf(" %s %s %s(%s) primary=%t",
			strings.Join(n.Modifiers, " "), n.ReturnType, n.MethodName, strings.Join(params, ", "), n.IsPrimary)
	case *Using:
		return " " + q(n.Content)
	case *Directive:
		return " @" + n.Name
	case *MalformedDirective:
		return " @" + n.Name
	case *DirectiveToken:
		return fmt.Sprintf(" %s %s", n.Descriptor.Kind, q(n.Content))
	case *HTMLAttribute:
		return fmt.Sprintf(" %s prefix=%s suffix=%s", n.AttributeName, q(n.Prefix), q(n.Suffix))
	case *HTMLAttributeValue:
		return " prefix=" + q(n.Prefix)
	case *Token:
		return fmt.Sprintf(" %s %s", n.TokenKind, q(n.Content))
	case *TagHelper:
		names := make([]string, 0, len(n.TagHelpers))
		for _, d := range n.TagHelpers {
			names = append(names, d.DisplayName())
		}
		return fmt.Sprintf(" <%s> %s [%s]", n.TagName, n.TagMode, strings.Join(names, ", "))
	case *TagHelperProperty:
		return fmt.Sprintf(" %s -> %s.%s %s indexer=%t", n.AttributeName, n.TagHelper.DisplayName(),
			n.BoundAttribute.Name(), n.Structure, n.IsIndexerNameMatch)
	case *TagHelperHTMLAttribute:
		return fmt.Sprintf(" %s %s", n.AttributeName, n.Structure)
	case *TagHelperDirectiveAttribute:
		return fmt.Sprintf(" %s -> %s %s", n.OriginalName, n.TagHelper.DisplayName(), n.Structure)
	case *TagHelperDirectiveAttributeParameter:
		return fmt.Sprintf(" %s -> %s:%s %s", n.OriginalName, n.TagHelper.DisplayName(),
			n.BoundParameter.Name(), n.Structure)
	case *FieldDeclaration:
		return fmt.Sprintf(" %s %s %s", strings.Join(n.Modifiers, " "), n.FieldType, n.FieldName)
	case *Section:
		return " " + q(n.SectionName)
	case *TypeAlias:
		return fmt.Sprintf(" %s = %s", n.Name, q(n.Target))
	}
	return ""
}
