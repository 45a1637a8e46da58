package mvc

import (
	"strings"

	"quill/internal/codegen"
	"quill/internal/diag"
	"quill/internal/directive"
	"quill/internal/document"
	"quill/internal/engine"
	"quill/internal/extensions"
	"quill/internal/ir"
	"quill/internal/source"
)

var (
	Model = directive.MustNew("model", directive.SingleLine, func(b *directive.Builder) {
		b.AddTypeToken("TypeName").
			SetUsage(directive.FileScopedSinglyOccurring).
			SetDescription("Sets the model type of the view.")
	})
	Namespace = directive.MustNew("namespace", directive.SingleLine, func(b *directive.Builder) {
		b.AddNamespaceToken("Namespace").
			SetUsage(directive.FileScopedSinglyOccurring).
			SetDescription("Sets the namespace of the generated class.")
	})
	Page = directive.MustNew("page", directive.SingleLine, func(b *directive.Builder) {
		b.AddOptionalStringToken("RouteTemplate").
			SetUsage(directive.FileScopedSinglyOccurring).
			SetDescription("Marks the document as a page, optionally with a route template.")
	})
)

// ModelPlaceholder is replaced in the base type by the model type.
const ModelPlaceholder = "<TModel>"

// DefaultModelType is the model of views without @model.
const DefaultModelType = "dynamic"

// ModelType resolves the model type of the document: the first well-formed
// @model, else the page class name for pages, else dynamic. Once the model
// pass has run the recorded type is returned, since directive removal drops
// the @model nodes later.
func ModelType(irDoc *ir.Document) string {
	if irDoc.ModelType != "" {
		return irDoc.ModelType
	}
	for _, d := range extensions.Directives(irDoc, Model) {
		if content, _, ok := extensions.FirstToken(d); ok {
			return content
		}
	}
	if irDoc.DocumentKind == PageDocumentKind {
		if cls := ir.FindPrimaryClass(irDoc); cls != nil {
			return cls.ClassName
		}
	}
	return DefaultModelType
}

// ModelDirectivePass substitutes the model type into the base type. It
// runs after @inherits so an inherited <TModel> base is filled in too.
type ModelDirectivePass struct{}

func (*ModelDirectivePass) Name() string { return "model-directive" }
func (*ModelDirectivePass) Order() int   { return engine.DefaultFeatureOrder + 10 }

func (*ModelDirectivePass) Execute(_ *document.CodeDocument, irDoc *ir.Document) error {
	cls := ir.FindPrimaryClass(irDoc)
	if cls == nil {
		return nil
	}
	irDoc.ModelType = ModelType(irDoc)
	if irDoc.Options.DesignTime {
		addModelAlias(irDoc)
	}
	if !strings.Contains(cls.BaseType, ModelPlaceholder) {
		return nil
	}
	cls.BaseType = strings.Replace(cls.BaseType, ModelPlaceholder, "<"+irDoc.ModelType+">", 1)
	cls.BaseTypeSource = modelMapping(irDoc)
	return nil
}

// modelMapping is the span of the last well-formed @model token that comes
// after @inherits in the same file. Without @inherits the last @model maps.
func modelMapping(irDoc *ir.Document) *source.Span {
	var inherits *source.Span
	if ds := extensions.Directives(irDoc, extensions.Inherits); len(ds) > 0 {
		inherits = ds[0].Source
	}
	var last *source.Span
	for _, d := range extensions.Directives(irDoc, Model) {
		_, sp, ok := extensions.FirstToken(d)
		if !ok || sp == nil {
			continue
		}
		if inherits != nil && (sp.File != inherits.File || sp.Start < inherits.End) {
			continue
		}
		last = sp
	}
	return last
}

// ModelAliasTarget is what TModel names in design-time documents.
const ModelAliasTarget = "global::System.Object"

func addModelAlias(irDoc *ir.Document) {
	ns := ir.FindPrimaryNamespace(irDoc)
	if ns == nil {
		return
	}
	for _, c := range ns.Children {
		if a, ok := c.(*ir.TypeAlias); ok && a.Name == "TModel" {
			return
		}
	}
	ns.Insert(0, &ir.TypeAlias{Name: "TModel", Target: ModelAliasTarget})
}

// NamespaceDirectivePass sets the namespace from the last well-formed
// @namespace. Imports are lowered first, so the document's own directive
// wins over imported ones.
type NamespaceDirectivePass struct{}

func (*NamespaceDirectivePass) Name() string { return "namespace-directive" }
func (*NamespaceDirectivePass) Order() int   { return engine.DefaultFeatureOrder }

func (*NamespaceDirectivePass) Execute(_ *document.CodeDocument, irDoc *ir.Document) error {
	ns := ir.FindPrimaryNamespace(irDoc)
	if ns == nil {
		return nil
	}
	for _, d := range extensions.Directives(irDoc, Namespace) {
		if content, _, ok := extensions.FirstToken(d); ok {
			ns.Content = content
		}
	}
	return nil
}

// PageRouteAttribute renders the route of a page.
const PageRouteAttribute = "global::Quill.Mvc.PageRoute"

// PageDirectivePass checks that @page comes before any content and records
// its route template on the class.
type PageDirectivePass struct{}

func (*PageDirectivePass) Name() string { return "page-directive" }
func (*PageDirectivePass) Order() int   { return engine.DefaultFeatureOrder }

func (*PageDirectivePass) Execute(doc *document.CodeDocument, irDoc *ir.Document) error {
	if irDoc.DocumentKind != PageDocumentKind {
		return nil
	}
	page := sourcePageDirective(doc, irDoc)
	if page == nil {
		return nil
	}
	if m := ir.FindPrimaryMethod(irDoc); m != nil && contentBefore(m, page) {
		irDoc.AddDiagnostic(diag.Errorf(diag.IRLPageMisplaced, extensions.SpanOf(page),
			"the @page directive must precede all other elements defined in a template"))
	}
	route, _, ok := extensions.FirstToken(page)
	if !ok {
		return nil
	}
	cls := ir.FindPrimaryClass(irDoc)
	if cls == nil {
		return nil
	}
	attr := "[" + PageRouteAttribute + "(" + route + ")]"
	for _, a := range cls.Attributes {
		if a == attr {
			return nil
		}
	}
	cls.Attributes = append(cls.Attributes, attr)
	return nil
}

// sourcePageDirective finds the @page written in the document itself.
// Imports cannot make a document a page.
func sourcePageDirective(doc *document.CodeDocument, root ir.Node) *ir.Directive {
	for _, d := range extensions.Directives(root, Page) {
		if doc == nil || doc.Source == nil || d.Source == nil || d.Source.File == doc.Source.ID {
			return d
		}
	}
	return nil
}

// contentBefore reports markup or code ahead of d among the children of m.
// Whitespace, comments and other directives may precede it.
func contentBefore(m *ir.Method, d *ir.Directive) bool {
	for _, c := range m.Children {
		if c == ir.Node(d) {
			return false
		}
		switch c := c.(type) {
		case *ir.Directive, *ir.MalformedDirective:
			continue
		case *ir.HTMLContent:
			if strings.TrimSpace(codegen.Text(c)) == "" {
				continue
			}
		}
		return true
	}
	return false
}
