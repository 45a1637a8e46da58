// Package mvc configures the engine for views and pages: @model,
// @namespace and @page, the view and page classifiers and the default
// imports every view sees.
package mvc

import (
	"quill/internal/engine"
	"quill/internal/source"
)

// Register adds the view and page dialect. The shared directives from
// package extensions are registered separately. set receives the default
// import document; nil disables it.
func Register(b *engine.Builder, set *source.FileSet) {
	b.AddDirective(Model, Namespace, Page)
	b.AddDirectiveClassifier(
		&ModelDirectivePass{},
		&NamespaceDirectivePass{},
		&PageDirectivePass{},
	)
	b.AddDocumentClassifier(NewPageDocumentClassifier(), NewViewDocumentClassifier())
	if set != nil {
		b.SetImportProject(NewDefaultImports(set))
	}
}
