package mvc

import (
	"path"
	"strings"

	"quill/internal/document"
	"quill/internal/engine"
	"quill/internal/extensions"
	"quill/internal/ir"
	"quill/internal/lang"
)

// Document kinds stamped by the classifiers of this package.
const (
	ViewDocumentKind = "mvc.view"
	PageDocumentKind = "mvc.page"
)

// Base types of generated views and pages.
const (
	ViewBaseType = "global::Quill.Mvc.RazorPage<TModel>"
	PageBaseType = "global::Quill.Mvc.Page<TModel>"
)

// ClassName derives the generated class name from the project-relative
// path: "Views/Home/Index.quill" becomes "Views_Home_Index".
func ClassName(p string) string {
	p = strings.TrimPrefix(strings.ReplaceAll(p, "\\", "/"), "/")
	p = strings.TrimSuffix(p, path.Ext(p))
	if p == "" {
		return engine.DefaultClassName
	}
	return extensions.Identifier(p)
}

func documentPath(doc *document.CodeDocument) string {
	if doc.Source == nil {
		return ""
	}
	if doc.Source.RelPath != "" {
		return doc.Source.RelPath
	}
	return doc.Source.Path
}

type viewHooks struct{}

func (viewHooks) DocumentKind() string { return ViewDocumentKind }

func (viewHooks) IsMatch(doc *document.CodeDocument, _ *ir.Document) bool {
	return doc.FileKind == lang.FileKindLegacy
}

func (viewHooks) OnDocumentStructureCreated(doc *document.CodeDocument, _ *ir.Namespace, cls *ir.Class, _ *ir.Method) {
	structure(doc, cls, ViewBaseType)
}

type pageHooks struct{}

func (pageHooks) DocumentKind() string { return PageDocumentKind }

func (pageHooks) IsMatch(doc *document.CodeDocument, irDoc *ir.Document) bool {
	if doc.FileKind != lang.FileKindLegacy {
		return false
	}
	// до классификации директивы лежат в корне документа
	for _, c := range irDoc.Children {
		if d, ok := c.(*ir.Directive); ok && sourcePageDirective(doc, d) != nil {
			return true
		}
	}
	return false
}

func (pageHooks) OnDocumentStructureCreated(doc *document.CodeDocument, _ *ir.Namespace, cls *ir.Class, _ *ir.Method) {
	structure(doc, cls, PageBaseType)
}

func structure(doc *document.CodeDocument, cls *ir.Class, base string) {
	cls.ClassName = ClassName(documentPath(doc))
	cls.BaseType = base
	cls.Modifiers = []string{"public"}
}

// NewViewDocumentClassifier matches every legacy document that is not a
// page.
func NewViewDocumentClassifier() *engine.DocumentClassifierBase {
	return engine.NewDocumentClassifier("mvc-view-classifier", engine.DefaultFeatureOrder+100, viewHooks{})
}

// NewPageDocumentClassifier matches legacy documents with a top-level
// @page of their own.
func NewPageDocumentClassifier() *engine.DocumentClassifierBase {
	return engine.NewDocumentClassifier("mvc-page-classifier", engine.DefaultFeatureOrder, pageHooks{})
}
