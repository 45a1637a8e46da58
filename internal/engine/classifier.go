package engine

import (
	"quill/internal/document"
	"quill/internal/ir"
)

// Defaults of the generated structure before any configuration applies.
const (
	DefaultNamespace  = "Quill"
	DefaultClassName  = "Template"
	DefaultMethodName = "ExecuteAsync"
	DefaultReturnType = "global::System.Threading.Tasks.Task"
)

// ClassifierHooks is what a concrete document classifier decides.
type ClassifierHooks interface {
	DocumentKind() string
	IsMatch(doc *document.CodeDocument, irDoc *ir.Document) bool
	// OnDocumentStructureCreated adjusts the namespace, class and method
	// created for the document.
	OnDocumentStructureCreated(doc *document.CodeDocument, ns *ir.Namespace, cls *ir.Class, m *ir.Method)
}

// DocumentClassifierBase creates the namespace, class and method of a
// classified document and moves the lowered content into them. Usings go
// to the namespace; everything else goes to the primary method.
type DocumentClassifierBase struct {
	name   string
	order  int
	hooks  ClassifierHooks
	config *DocumentClassifierConfig
}

// NewDocumentClassifier wraps hooks into a DocumentClassifierPass.
func NewDocumentClassifier(name string, order int, hooks ClassifierHooks) *DocumentClassifierBase {
	return &DocumentClassifierBase{name: name, order: order, hooks: hooks}
}

func (c *DocumentClassifierBase) Name() string { return c.name }
func (c *DocumentClassifierBase) Order() int   { return c.order }

// DocumentKind is the kind stamped on matched documents.
func (c *DocumentClassifierBase) DocumentKind() string { return c.hooks.DocumentKind() }

func (c *DocumentClassifierBase) Initialize(e *Engine) error {
	c.config = &e.features.ClassifierConfig
	return nil
}

func (c *DocumentClassifierBase) IsMatch(doc *document.CodeDocument, irDoc *ir.Document) bool {
	if irDoc.DocumentKind != "" {
		return false
	}
	return c.hooks.IsMatch(doc, irDoc)
}

func (c *DocumentClassifierBase) Execute(doc *document.CodeDocument, irDoc *ir.Document) error {
	irDoc.DocumentKind = c.hooks.DocumentKind()

	ns := &ir.Namespace{Content: DefaultNamespace, IsPrimary: true}
	if irDoc.Options.RootNamespace != "" {
		ns.Content = irDoc.Options.RootNamespace
	}
	cls := &ir.Class{ClassName: DefaultClassName, Modifiers: []string{"public"}, IsPrimary: true}
	m := &ir.Method{
		MethodName: DefaultMethodName,
		ReturnType: DefaultReturnType,
		Modifiers:  []string{"public", "async", "override"},
		IsPrimary:  true,
	}

	for _, n := range irDoc.Children {
		if u, ok := n.(*ir.Using); ok {
			ns.Add(u)
			continue
		}
		m.Add(n)
	}
	cls.Add(m)
	ns.Add(cls)
	irDoc.ReplaceChildren(ns)

	c.hooks.OnDocumentStructureCreated(doc, ns, cls, m)
	if c.config != nil {
		c.config.apply(doc, irDoc, ns, cls, m)
	}
	return nil
}

// DefaultDocumentKind is stamped by the catch-all classifier.
const DefaultDocumentKind = "default"

type defaultClassifierHooks struct{}

func (defaultClassifierHooks) DocumentKind() string                              { return DefaultDocumentKind }
func (defaultClassifierHooks) IsMatch(*document.CodeDocument, *ir.Document) bool { return true }
func (defaultClassifierHooks) OnDocumentStructureCreated(*document.CodeDocument, *ir.Namespace, *ir.Class, *ir.Method) {
}

// NewDefaultDocumentClassifier returns the catch-all classifier. Its order
// puts it after every classifier registered with DefaultFeatureOrder.
func NewDefaultDocumentClassifier() *DocumentClassifierBase {
	return NewDocumentClassifier("default-document-classifier", 2*DefaultFeatureOrder, defaultClassifierHooks{})
}
