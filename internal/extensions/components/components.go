// Package components compiles component files (.qcomp): @code, @typeparam,
// @layout and @attribute, and the classifier that shapes a component into
// a render-tree class. It needs language version 3.0.
package components

import (
	"path"
	"slices"
	"strings"

	"quill/internal/directive"
	"quill/internal/document"
	"quill/internal/engine"
	"quill/internal/extensions"
	"quill/internal/ir"
	"quill/internal/lang"
)

var (
	Code = directive.MustNew("code", directive.CodeBlock, func(b *directive.Builder) {
		b.SetDescription("Adds members to the component class.")
	})
	TypeParam = directive.MustNew("typeparam", directive.SingleLine, func(b *directive.Builder) {
		b.AddMemberToken("Name").
			AddOptionalGenericTypeConstraintToken("Constraint").
			SetUsage(directive.FileScopedMultipleOccurring).
			SetDescription("Declares a generic type parameter of the component.")
	})
	Layout = directive.MustNew("layout", directive.SingleLine, func(b *directive.Builder) {
		b.AddTypeToken("TypeName").
			SetUsage(directive.FileScopedSinglyOccurring).
			SetDescription("Sets the layout the component renders in.")
	})
	Attribute = directive.MustNew("attribute", directive.SingleLine, func(b *directive.Builder) {
		b.AddAttributeToken("Attribute").
			SetUsage(directive.FileScopedMultipleOccurring).
			SetDescription("Adds an attribute to the component class.")
	})
)

// Generated shape of a component.
const (
	ComponentDocumentKind = "component"
	BaseType              = "global::Quill.Components.ComponentBase"
	RenderMethodName      = "BuildRenderTree"
	RenderTreeBuilderType = "global::Quill.Components.Rendering.RenderTreeBuilder"
	RenderTreeBuilderName = "__builder"
	LayoutAttribute       = "global::Quill.Components.Layout"
)

// DefaultUsings are added to every component namespace.
var DefaultUsings = []string{
	"System",
	"System.Collections.Generic",
	"System.Linq",
	"System.Threading.Tasks",
	"Quill.Components",
}

// Register adds the component dialect. Use it as a version extension:
//
//	b.RegisterVersionExtension(lang.Version3_0, components.Register)
func Register(b *engine.Builder) {
	b.AddDirective(Code, TypeParam, Layout, Attribute)
	b.AddDocumentClassifier(NewComponentDocumentClassifier())
	b.AddDirectiveClassifier(
		extensions.NewFunctionsDirectivePass(Code),
		&TypeParamDirectivePass{},
		&LayoutDirectivePass{},
		&AttributeDirectivePass{},
	)
}

// ClassName is the file name without its extension, sanitized.
func ClassName(p string) string {
	name := path.Base(strings.ReplaceAll(p, "\\", "/"))
	name = strings.TrimSuffix(name, path.Ext(name))
	if name == "" || name == "." || name == "/" {
		return engine.DefaultClassName
	}
	return extensions.Identifier(name)
}

// NamespaceFor appends the directories of the project-relative path to
// root: "Pages/Admin/Users.qcomp" under "App" is "App.Pages.Admin".
func NamespaceFor(root, p string) string {
	dir := path.Dir(strings.TrimPrefix(strings.ReplaceAll(p, "\\", "/"), "/"))
	if dir == "." || dir == "/" {
		return root
	}
	parts := []string{root}
	for _, seg := range strings.Split(dir, "/") {
		if seg != "" {
			parts = append(parts, extensions.Identifier(seg))
		}
	}
	return strings.Join(parts, ".")
}

type componentHooks struct{}

func (componentHooks) DocumentKind() string { return ComponentDocumentKind }

func (componentHooks) IsMatch(doc *document.CodeDocument, _ *ir.Document) bool {
	return doc.FileKind.IsComponent()
}

func (componentHooks) OnDocumentStructureCreated(doc *document.CodeDocument, ns *ir.Namespace, cls *ir.Class, m *ir.Method) {
	p := ""
	if doc.Source != nil {
		p = doc.Source.RelPath
		if p == "" {
			p = doc.Source.Path
		}
	}
	ns.Content = NamespaceFor(ns.Content, p)
	addDefaultUsings(ns)

	cls.ClassName = ClassName(p)
	cls.BaseType = BaseType
	cls.Modifiers = []string{"public", "partial"}

	m.MethodName = RenderMethodName
	m.ReturnType = "void"
	m.Modifiers = []string{"protected", "override"}
	m.Parameters = []ir.MethodParameter{{TypeName: RenderTreeBuilderType, ParameterName: RenderTreeBuilderName}}

	if doc.FileKind == lang.FileKindComponentImport {
		// в файле импортов остаются только директивы
		kept := slices.DeleteFunc(slices.Clone(m.Children), func(n ir.Node) bool {
			switch n.(type) {
			case *ir.Directive, *ir.MalformedDirective:
				return false
			}
			return true
		})
		m.ReplaceChildren(kept...)
	}
}

func addDefaultUsings(ns *ir.Namespace) {
	present := make(map[string]bool)
	at := 0
	for i, c := range ns.Children {
		if u, ok := c.(*ir.Using); ok {
			present[u.Content] = true
			at = i + 1
		}
	}
	var add []ir.Node
	for _, u := range DefaultUsings {
		if !present[u] {
			add = append(add, &ir.Using{Content: u})
		}
	}
	ns.Insert(at, add...)
}

// NewComponentDocumentClassifier matches component and component import
// files. Its order puts it ahead of the view classifiers.
func NewComponentDocumentClassifier() *engine.DocumentClassifierBase {
	return engine.NewDocumentClassifier("component-document-classifier", engine.DefaultFeatureOrder-100, componentHooks{})
}

// TypeParamDirectivePass declares a class type parameter per @typeparam.
type TypeParamDirectivePass struct{}

func (*TypeParamDirectivePass) Name() string { return "typeparam-directive" }
func (*TypeParamDirectivePass) Order() int   { return engine.DefaultFeatureOrder }

func (*TypeParamDirectivePass) Execute(_ *document.CodeDocument, irDoc *ir.Document) error {
	cls := ir.FindPrimaryClass(irDoc)
	if cls == nil {
		return nil
	}
	for _, d := range extensions.Directives(irDoc, TypeParam) {
		toks := d.Tokens()
		if len(toks) == 0 {
			continue
		}
		name := toks[0].Content
		if slices.ContainsFunc(cls.TypeParameters, func(tp ir.TypeParameter) bool { return tp.Name == name }) {
			continue
		}
		tp := ir.TypeParameter{Name: name}
		if len(toks) > 1 {
			tp.Constraint = toks[1].Content
		}
		cls.TypeParameters = append(cls.TypeParameters, tp)
	}
	return nil
}

// LayoutDirectivePass records the @layout type as a class attribute.
type LayoutDirectivePass struct{}

func (*LayoutDirectivePass) Name() string { return "layout-directive" }
func (*LayoutDirectivePass) Order() int   { return engine.DefaultFeatureOrder }

func (*LayoutDirectivePass) Execute(_ *document.CodeDocument, irDoc *ir.Document) error {
	cls := ir.FindPrimaryClass(irDoc)
	if cls == nil {
		return nil
	}
	for _, d := range extensions.Directives(irDoc, Layout) {
		if content, _, ok := extensions.FirstToken(d); ok {
			addAttribute(cls, "["+LayoutAttribute+"(typeof("+content+"))]")
			break
		}
	}
	return nil
}

// AttributeDirectivePass copies every @attribute onto the class.
type AttributeDirectivePass struct{}

func (*AttributeDirectivePass) Name() string { return "attribute-directive" }
func (*AttributeDirectivePass) Order() int   { return engine.DefaultFeatureOrder }

func (*AttributeDirectivePass) Execute(_ *document.CodeDocument, irDoc *ir.Document) error {
	cls := ir.FindPrimaryClass(irDoc)
	if cls == nil {
		return nil
	}
	for _, d := range extensions.Directives(irDoc, Attribute) {
		if content, _, ok := extensions.FirstToken(d); ok {
			addAttribute(cls, content)
		}
	}
	return nil
}

func addAttribute(cls *ir.Class, attr string) {
	if !slices.Contains(cls.Attributes, attr) {
		cls.Attributes = append(cls.Attributes, attr)
	}
}
