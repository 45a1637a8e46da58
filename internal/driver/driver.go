// Package driver compiles template documents from a project directory: it
// reads sources and their imports, runs them through one shared engine and
// collects diagnostics, timings and outputs.
package driver

import (
	"io/fs"

	"quill/internal/cache"
	"quill/internal/checksum"
	"quill/internal/config"
	"quill/internal/diag"
	"quill/internal/document"
	"quill/internal/engine"
	"quill/internal/extensions"
	"quill/internal/extensions/components"
	"quill/internal/extensions/mvc"
	"quill/internal/lang"
	"quill/internal/observ"
	"quill/internal/source"
	"quill/internal/taghelper"
	"quill/internal/trace"
)

// Options control a compilation run.
type Options struct {
	Config config.Config
	// Paths are files or directories, relative to Config.Root or absolute
	// below it.
	Paths          []string
	Jobs           int
	MaxDiagnostics int
	// FS replaces the OS file system rooted at Config.Root.
	FS       fs.FS
	Tracer   trace.Tracer
	Observer PhaseObserver
	// OnResult is called from the compiling goroutine once a document is
	// done.
	OnResult func(*Result)
	// DiskCache reuses outputs of documents that compiled cleanly before.
	DiskCache *cache.DiskCache
	// FileKind overrides the kind inferred from each path.
	FileKind *lang.FileKind
	// Timings appends an OBS6001 diagnostic with phase durations.
	Timings bool
}

// PhaseObserver receives the phase events of every compiled document.
type PhaseObserver func(path string, ev engine.PhaseEvent)

// Result is the outcome of one document.
type Result struct {
	Path     string
	FileID   source.FileID
	Document *document.CodeDocument // nil when the source could not be read or came from the cache
	Output   string
	Bag      *diag.Bag
	Timing   *observ.Report
	Cached   bool
}

// Session is what documents of one run share: files, engine and the tag
// helpers in scope.
type Session struct {
	Files      *source.FileSet
	Engine     *engine.Engine
	TagHelpers *taghelper.Set
	opts       Options
	fsys       fs.FS
	imports    *importCache
	configSum  checksum.Digest
}

// NewEngine assembles the engine for cfg: the shared directives, views and
// pages, and components from language version 3.0.
func NewEngine(cfg config.Config, set *source.FileSet, helpers *taghelper.Set, tracer trace.Tracer) (*engine.Engine, error) {
	ec, err := cfg.Engine()
	if err != nil {
		return nil, err
	}
	b := engine.NewBuilder(ec)
	extensions.Register(b)
	mvc.Register(b, set)
	b.RegisterVersionExtension(lang.Version3_0, components.Register)
	if helpers != nil {
		b.SetTagHelperProvider(engine.StaticTagHelpers(helpers.Items()))
	}
	if tracer != nil {
		b.SetTracer(tracer)
	}
	return b.Build()
}
