package codegen

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"quill/internal/ir"
	"quill/internal/lang"
)

// ErrNilDocument is returned by writers given no IR.
var ErrNilDocument = errors.New("codegen: nil IR document")

// DefaultTarget renders an outline of the generated type: namespace, class,
// members and one call per content node. The text is stable for equal
// input but is not a compilable program.
type DefaultTarget struct {
	extensions []TargetExtension
}

// NewDefaultTarget creates the outline target. Extensions are consulted in
// order before the built-in rendering of each node.
func NewDefaultTarget(extensions ...TargetExtension) *DefaultTarget {
	return &DefaultTarget{extensions: slices.Clone(extensions)}
}

func (*DefaultTarget) Name() string { return "outline" }

func (t *DefaultTarget) Extensions() []TargetExtension { return slices.Clone(t.extensions) }

func (t *DefaultTarget) CreateWriter(opts lang.CodeGenOptions) Writer {
	return &outlineWriter{opts: opts, extensions: t.extensions}
}

type outlineWriter struct {
	opts       lang.CodeGenOptions
	extensions []TargetExtension
}

func (ow *outlineWriter) Write(doc *ir.Document) (*Output, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	r := &renderer{w: NewCodeWriter(ow.opts), doc: doc, extensions: ow.extensions}
	if !ow.opts.SuppressChecksum && !doc.SourceChecksum.IsZero() {
		r.w.WriteLine(fmt.Sprintf("// checksum sha256 %s %s", doc.SourceChecksum, strconv.Quote(doc.SourcePath)))
	}
	r.children(doc)
	return &Output{
		Text:           r.w.String(),
		Options:        ow.opts,
		Diagnostics:    ir.GetAllDiagnostics(doc),
		SourceMappings: r.w.Mappings(),
	}, nil
}

type renderer struct {
	w          *CodeWriter
	doc        *ir.Document
	extensions []TargetExtension
}

func (r *renderer) children(n ir.Node) {
	for _, c := range n.Base().Children {
		r.node(c)
	}
}

func (r *renderer) node(n ir.Node) {
	for _, ext := range r.extensions {
		if ext.WriteNode(r.w, n) {
			return
		}
	}
	w := r.w
	switch n := n.(type) {
	case *ir.Namespace:
		w.WriteLine("namespace " + n.Content)
		w.OpenBlock()
		r.children(n)
		w.CloseBlock()
	case *ir.Using:
		w.WriteMapped("using "+n.Content+";", n.Source).WriteLine("")
	case *ir.TypeAlias:
		w.WriteLine("using " + n.Name + " = " + n.Target + ";")
	case *ir.Class:
		r.class(n)
	case *ir.Method:
		r.method(n)
	case *ir.FieldDeclaration:
		w.WriteLine(joinNonEmpty(strings.Join(n.Modifiers, " "), n.FieldType, n.FieldName) + ";")
	case *ir.HTMLContent:
		w.WriteLine("WriteLiteral(" + strconv.Quote(Text(n)) + ");")
	case *ir.CodeExpression:
		w.Write("Write(").WriteMapped(Text(n), n.Source).WriteLine(");")
	case *ir.CodeStatement:
		for _, line := range strings.Split(strings.TrimSpace(Text(n)), "\n") {
			w.WriteLine(strings.TrimSpace(line))
		}
	case *ir.HTMLAttribute:
		w.WriteLine(fmt.Sprintf("BeginWriteAttribute(%q, %q, %q);", n.AttributeName, n.Prefix, n.Suffix))
		for _, c := range n.Children {
			switch v := c.(type) {
			case *ir.HTMLAttributeValue:
				w.WriteLine(fmt.Sprintf("WriteAttributeValue(%q, %q);", v.Prefix, Text(v)))
			case *ir.CodeExpression:
				w.Write("WriteAttributeValue(").WriteMapped(Text(v), v.Source).WriteLine(");")
			}
		}
		w.WriteLine("EndWriteAttribute();")
	case *ir.Section:
		w.WriteLine(fmt.Sprintf("DefineSection(%q, () =>", n.SectionName))
		w.OpenBlock()
		r.children(n)
		w.Dedent()
		w.WriteLine("});")
	case *ir.TagHelper:
		r.tagHelper(n)
	case *ir.Directive:
		w.WriteLine("// @" + n.Name + " " + tokenList(n.Tokens()))
		r.nonTokenChildren(n)
	case *ir.MalformedDirective:
		w.WriteLine("// malformed @" + n.Name + " " + tokenList(n.Tokens()))
	default:
		r.children(n)
	}
}

func (r *renderer) class(n *ir.Class) {
	w := r.w
	if !w.Options().SuppressMetadataAttributes && r.doc.DocumentKind != "" {
		w.WriteLine(fmt.Sprintf("[QuillDocument(%q, %q)]", r.doc.DocumentKind, r.doc.SourcePath))
	}
	for _, attr := range n.Attributes {
		w.WriteLine(attr)
	}
	head := joinNonEmpty(strings.Join(n.Modifiers, " "), "class", n.ClassName)
	if len(n.TypeParameters) > 0 {
		names := make([]string, 0, len(n.TypeParameters))
		for _, tp := range n.TypeParameters {
			names = append(names, tp.Name)
		}
		head += "<" + strings.Join(names, ", ") + ">"
	}
	switch {
	case n.BaseType != "":
		w.Write(head+" : ").WriteMapped(n.BaseType, n.BaseTypeSource)
		if len(n.Interfaces) > 0 {
			w.Write(", " + strings.Join(n.Interfaces, ", "))
		}
		w.WriteLine("")
	case len(n.Interfaces) > 0:
		w.WriteLine(head + " : " + strings.Join(n.Interfaces, ", "))
	default:
		w.WriteLine(head)
	}
	for _, tp := range n.TypeParameters {
		if tp.Constraint != "" {
			w.Indent()
			w.WriteLine(tp.Constraint)
			w.Dedent()
		}
	}
	w.OpenBlock()
	r.children(n)
	w.CloseBlock()
}

func (r *renderer) method(n *ir.Method) {
	params := make([]string, 0, len(n.Parameters))
	for _, p := range n.Parameters {
		params = append(params, joinNonEmpty(strings.Join(p.Modifiers, " "), p.TypeName, p.ParameterName))
	}
	r.w.WriteLine(joinNonEmpty(strings.Join(n.Modifiers, " "), n.ReturnType, n.MethodName) + "(" + strings.Join(params, ", ") + ")")
	r.w.OpenBlock()
	r.children(n)
	r.w.CloseBlock()
}

func (r *renderer) tagHelper(n *ir.TagHelper) {
	w := r.w
	w.WriteLine(fmt.Sprintf("// <%s> %s", n.TagName, n.TagMode))
	w.OpenBlock()
	for _, d := range n.TagHelpers {
		w.WriteLine("CreateTagHelper<" + firstNonEmpty(d.TypeName(), d.Name()) + ">();")
	}
	for _, c := range n.Children {
		switch c := c.(type) {
		case *ir.TagHelperBody:
			w.WriteLine("BeginTagHelperBody();")
			r.children(c)
			w.WriteLine("EndTagHelperBody();")
		case *ir.TagHelperProperty:
			w.Write(fmt.Sprintf("SetProperty(%q, %q, ", c.TagHelper.DisplayName(), c.BoundAttribute.Name())).
				WriteMapped(valueText(c), c.Source).WriteLine(");")
		case *ir.TagHelperHTMLAttribute:
			if c.Structure == ir.AttrMinimized {
				w.WriteLine(fmt.Sprintf("AddHTMLAttribute(%q);", c.AttributeName))
				continue
			}
			w.WriteLine(fmt.Sprintf("AddHTMLAttribute(%q, %q);", c.AttributeName, html.EscapeString(Text(c))))
		case *ir.TagHelperDirectiveAttribute:
			w.Write(fmt.Sprintf("SetDirectiveAttribute(%q, ", c.OriginalName)).
				WriteMapped(valueText(c), c.Source).WriteLine(");")
		case *ir.TagHelperDirectiveAttributeParameter:
			w.Write(fmt.Sprintf("SetDirectiveAttributeParameter(%q, ", c.OriginalName)).
				WriteMapped(valueText(c), c.Source).WriteLine(");")
		default:
			r.node(c)
		}
	}
	w.CloseBlock()
}

func (r *renderer) nonTokenChildren(n ir.Node) {
	for _, c := range n.Base().Children {
		if c.Kind() != ir.KindDirectiveToken {
			r.node(c)
		}
	}
}

// Text concatenates every token below n.
func Text(n ir.Node) string {
	var sb strings.Builder
	ir.Inspect(n, func(c ir.Node) bool {
		if t, ok := c.(*ir.Token); ok {
			sb.WriteString(t.Content)
		}
		return c != nil
	})
	return sb.String()
}

// valueText renders an attribute value: code verbatim, literals quoted.
func valueText(n ir.Node) string {
	var parts []string
	for _, c := range n.Base().Children {
		switch c.Kind() {
		case ir.KindCodeExpression, ir.KindCodeStatement:
			parts = append(parts, Text(c))
		default:
			parts = append(parts, strconv.Quote(Text(c)))
		}
	}
	if len(parts) == 0 {
		return "true"
	}
	return strings.Join(parts, " + ")
}

func tokenList(tokens []*ir.DirectiveToken) string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.Content)
	}
	return strings.Join(out, " ")
}

func joinNonEmpty(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
