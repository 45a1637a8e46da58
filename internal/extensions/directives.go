// Package extensions holds the directives every template dialect shares:
// @inherits, @functions, @section and @implements, with the passes that
// apply them to the classified IR.
package extensions

import (
	"slices"
	"strings"
	"unicode"

	"quill/internal/diag"
	"quill/internal/directive"
	"quill/internal/document"
	"quill/internal/engine"
	"quill/internal/ir"
	"quill/internal/source"
)

var (
	Inherits = directive.MustNew("inherits", directive.SingleLine, func(b *directive.Builder) {
		b.AddTypeToken("TypeName").
			SetUsage(directive.FileScopedSinglyOccurring).
			SetDescription("Sets the base type of the generated class.")
	})
	Functions = directive.MustNew("functions", directive.CodeBlock, func(b *directive.Builder) {
		b.SetDescription("Adds members to the generated class.")
	})
	Section = directive.MustNew("section", directive.RazorBlock, func(b *directive.Builder) {
		b.AddMemberToken("SectionName").SetDescription("Defines a named section rendered by the layout.")
	})
	Implements = directive.MustNew("implements", directive.SingleLine, func(b *directive.Builder) {
		b.AddTypeToken("TypeName").
			SetUsage(directive.FileScopedMultipleOccurring).
			SetDescription("Adds an interface to the generated class.")
	})
)

// Register adds the shared directives and their passes.
func Register(b *engine.Builder) {
	b.AddDirective(Inherits, Functions, Section, Implements)
	b.AddDirectiveClassifier(
		&InheritsDirectivePass{},
		NewFunctionsDirectivePass(Functions),
		&SectionDirectivePass{},
		&ImplementsDirectivePass{},
	)
}

// FirstToken returns the content and span of the first token of d.
func FirstToken(d *ir.Directive) (string, *source.Span, bool) {
	toks := d.Tokens()
	if len(toks) == 0 {
		return "", nil, false
	}
	return toks[0].Content, toks[0].Source, true
}

// Directives returns the well-formed directives of kind d in document order.
func Directives(root ir.Node, d *directive.Descriptor) []*ir.Directive {
	refs := ir.FindDirectiveReferences(root, d)
	out := make([]*ir.Directive, 0, len(refs))
	for _, ref := range refs {
		out = append(out, ref.Node.(*ir.Directive))
	}
	return out
}

// SpanOf is the source span of n, or the zero span when n was synthesized.
func SpanOf(n ir.Node) source.Span {
	if sp := n.Base().Source; sp != nil {
		return *sp
	}
	return source.Span{}
}

// Identifier replaces every rune that cannot appear in an identifier with
// '_' and prefixes a leading digit.
func Identifier(s string) string {
	var sb strings.Builder
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
			sb.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

// InheritsDirectivePass sets the class base type from the first @inherits.
type InheritsDirectivePass struct{}

func (*InheritsDirectivePass) Name() string { return "inherits-directive" }
func (*InheritsDirectivePass) Order() int   { return engine.DefaultFeatureOrder }

func (*InheritsDirectivePass) Execute(_ *document.CodeDocument, irDoc *ir.Document) error {
	cls := ir.FindPrimaryClass(irDoc)
	if cls == nil {
		return nil
	}
	for _, d := range Directives(irDoc, Inherits) {
		if content, sp, ok := FirstToken(d); ok {
			cls.BaseType = content
			cls.BaseTypeSource = sp
			break
		}
	}
	return nil
}

// FunctionsDirectivePass moves the bodies of code-block directives such as
// @functions into the class as members.
type FunctionsDirectivePass struct {
	directives []*directive.Descriptor
}

// NewFunctionsDirectivePass handles every directive in ds the same way.
func NewFunctionsDirectivePass(ds ...*directive.Descriptor) *FunctionsDirectivePass {
	return &FunctionsDirectivePass{directives: ds}
}

func (*FunctionsDirectivePass) Name() string { return "functions-directive" }
func (*FunctionsDirectivePass) Order() int   { return engine.DefaultFeatureOrder }

func (p *FunctionsDirectivePass) Execute(_ *document.CodeDocument, irDoc *ir.Document) error {
	cls := ir.FindPrimaryClass(irDoc)
	if cls == nil {
		return nil
	}
	// один обход, чтобы сохранить порядок документа
	refs := ir.Collect(irDoc, func(n ir.Node) bool {
		d, ok := n.(*ir.Directive)
		return ok && slices.ContainsFunc(p.directives, func(desc *directive.Descriptor) bool {
			return d.Descriptor != nil && d.Descriptor.Checksum() == desc.Checksum()
		})
	})
	for _, ref := range refs {
		d := ref.Node.(*ir.Directive)
		var tokens []ir.Node
		for _, c := range d.Children {
			if c.Kind() == ir.KindDirectiveToken {
				tokens = append(tokens, c)
				continue
			}
			cls.Add(c)
		}
		d.ReplaceChildren(tokens...)
	}
	return nil
}

// SectionDirectivePass turns @section directives into Section nodes.
// Sections nested in sections and repeated section names are reported and
// dropped.
type SectionDirectivePass struct{}

func (*SectionDirectivePass) Name() string { return "section-directive" }
func (*SectionDirectivePass) Order() int   { return engine.DefaultFeatureOrder }

func (*SectionDirectivePass) Execute(_ *document.CodeDocument, irDoc *ir.Document) error {
	refs := ir.FindDirectiveReferences(irDoc, Section)
	nested := make(map[ir.Node]bool)
	for _, ref := range refs {
		if nested[ref.Node] {
			continue
		}
		for _, inner := range ir.FindDirectiveReferences(ref.Node, Section) {
			if inner.Node == ref.Node || nested[inner.Node] {
				continue
			}
			nested[inner.Node] = true
			irDoc.AddDiagnostic(diag.Errorf(diag.IRLNestedSection, SpanOf(inner.Node),
				"section blocks cannot be nested; @section %s is inside @section %s",
				sectionName(inner.Node), sectionName(ref.Node)))
			inner.Remove()
		}
	}

	defined := make(map[string]bool)
	for _, ref := range refs {
		if nested[ref.Node] {
			continue
		}
		d := ref.Node.(*ir.Directive)
		name := sectionName(d)
		if defined[name] {
			irDoc.AddDiagnostic(diag.Errorf(diag.IRLDuplicateSection, SpanOf(d),
				"section %q is already defined", name))
			ref.Remove()
			continue
		}
		defined[name] = true

		sec := &ir.Section{SectionName: name}
		sec.Source = d.Source
		sec.Diagnostics = d.Diagnostics
		for _, c := range d.Children {
			if c.Kind() != ir.KindDirectiveToken {
				sec.Add(c)
			}
		}
		ref.Replace(sec)
	}
	return nil
}

func sectionName(n ir.Node) string {
	if d, ok := n.(*ir.Directive); ok {
		if name, _, ok := FirstToken(d); ok {
			return name
		}
	}
	return ""
}

// ImplementsDirectivePass appends every @implements type to the class
// interfaces, skipping repeats.
type ImplementsDirectivePass struct{}

func (*ImplementsDirectivePass) Name() string { return "implements-directive" }
func (*ImplementsDirectivePass) Order() int   { return engine.DefaultFeatureOrder }

func (*ImplementsDirectivePass) Execute(_ *document.CodeDocument, irDoc *ir.Document) error {
	cls := ir.FindPrimaryClass(irDoc)
	if cls == nil {
		return nil
	}
	for _, d := range Directives(irDoc, Implements) {
		if content, _, ok := FirstToken(d); ok && !slices.Contains(cls.Interfaces, content) {
			cls.Interfaces = append(cls.Interfaces, content)
		}
	}
	return nil
}
