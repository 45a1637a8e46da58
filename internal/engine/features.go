package engine

import (
	"fmt"
	"slices"

	"quill/internal/codegen"
	"quill/internal/directive"
	"quill/internal/document"
	"quill/internal/ir"
	"quill/internal/lang"
)

// Configuration is what the engine is built for.
type Configuration struct {
	Version       lang.Version
	DesignTime    bool
	RootNamespace string
	CodeGen       lang.CodeGenOptions
	// ParseLeadingDirectives parses only the directives at the top of a
	// document; tooling uses it for fast import scanning.
	ParseLeadingDirectives bool
}

// DefaultConfiguration targets the latest language version.
func DefaultConfiguration() Configuration {
	return Configuration{Version: lang.Latest, CodeGen: lang.DefaultCodeGenOptions()}
}

// Validate reports invalid or conflicting settings.
func (c Configuration) Validate() error {
	if c.ParseLeadingDirectives && c.DesignTime {
		return &ConflictingOptionsError{First: "ParseLeadingDirectives", Second: "DesignTime"}
	}
	if !c.Version.Valid() {
		return fmt.Errorf("engine configuration: invalid language version %d", uint8(c.Version))
	}
	return c.CodeGen.Validate()
}

// Features is the engine-scoped feature set. Builders mutate it; engines
// only read it.
type Features struct {
	SyntaxTreePasses     Registry[SyntaxTreePass]
	DocumentClassifiers  Registry[DocumentClassifierPass]
	DirectiveClassifiers Registry[DirectiveClassifierPass]
	Optimizations        Registry[OptimizationPass]
	Directives           *directive.Registry
	TargetExtensions     []codegen.TargetExtension

	TagHelperProvider  TagHelperProvider
	TagHelperDiscovery TagHelperDiscovery
	ParserOptions      ParserOptionsFeature
	CodeGenOptions     CodeGenOptionsFeature
	Target             CodeTargetFeature
	Imports            ImportProjectFeature
	ClassifierConfig   DocumentClassifierConfig
}

func newFeatures() *Features {
	return &Features{Directives: directive.NewRegistry()}
}

func (f *Features) clone() *Features {
	c := *f
	c.SyntaxTreePasses = f.SyntaxTreePasses.clone()
	c.DocumentClassifiers = f.DocumentClassifiers.clone()
	c.DirectiveClassifiers = f.DirectiveClassifiers.clone()
	c.Optimizations = f.Optimizations.clone()
	c.Directives = directive.NewRegistry(f.Directives.All()...)
	c.TargetExtensions = slices.Clone(f.TargetExtensions)
	c.ClassifierConfig = f.ClassifierConfig.clone()
	return &c
}

// initializers returns every registered component that wants the engine.
func (f *Features) initializers() []Initializer {
	var out []Initializer
	add := func(v any) {
		if in, ok := v.(Initializer); ok {
			out = append(out, in)
		}
	}
	add(f.TagHelperProvider)
	add(f.TagHelperDiscovery)
	add(f.ParserOptions)
	add(f.CodeGenOptions)
	add(f.Target)
	add(f.Imports)
	for _, p := range f.SyntaxTreePasses.items {
		add(p)
	}
	for _, p := range f.DocumentClassifiers.items {
		add(p)
	}
	for _, p := range f.DirectiveClassifiers.items {
		add(p)
	}
	for _, p := range f.Optimizations.items {
		add(p)
	}
	return out
}

// DocumentClassifierConfig holds callbacks that adjust the structure a
// classifier creates. Callbacks run in registration order after the
// classifier's own configuration.
type DocumentClassifierConfig struct {
	namespace []func(*document.CodeDocument, *ir.Document, *ir.Namespace)
	class     []func(*document.CodeDocument, *ir.Document, *ir.Class)
	method    []func(*document.CodeDocument, *ir.Document, *ir.Method)
}

func (c *DocumentClassifierConfig) ConfigureNamespace(fn func(*document.CodeDocument, *ir.Document, *ir.Namespace)) {
	c.namespace = append(c.namespace, fn)
}

func (c *DocumentClassifierConfig) ConfigureClass(fn func(*document.CodeDocument, *ir.Document, *ir.Class)) {
	c.class = append(c.class, fn)
}

func (c *DocumentClassifierConfig) ConfigureMethod(fn func(*document.CodeDocument, *ir.Document, *ir.Method)) {
	c.method = append(c.method, fn)
}

func (c *DocumentClassifierConfig) apply(doc *document.CodeDocument, irDoc *ir.Document, ns *ir.Namespace, cls *ir.Class, m *ir.Method) {
	for _, fn := range c.namespace {
		fn(doc, irDoc, ns)
	}
	for _, fn := range c.class {
		fn(doc, irDoc, cls)
	}
	for _, fn := range c.method {
		fn(doc, irDoc, m)
	}
}

func (c DocumentClassifierConfig) clone() DocumentClassifierConfig {
	return DocumentClassifierConfig{
		namespace: slices.Clone(c.namespace),
		class:     slices.Clone(c.class),
		method:    slices.Clone(c.method),
	}
}

// defaultParserOptions derives parser options from the configuration and
// the registered directives.
type defaultParserOptions struct {
	cfg        Configuration
	directives []*directive.Descriptor
}

func (p *defaultParserOptions) Initialize(e *Engine) error {
	p.cfg = e.config
	p.directives = e.features.Directives.All()
	return nil
}

func (p *defaultParserOptions) ParserOptions(doc *document.CodeDocument) lang.ParserOptions {
	opts := lang.NewParserOptions(p.cfg.Version, doc.FileKind)
	opts.Directives = p.directives
	opts.DesignTime = p.cfg.DesignTime
	opts.ParseLeadingDirectives = p.cfg.ParseLeadingDirectives
	return opts
}

// defaultCodeGenOptions threads the configured options through unchanged,
// apart from the design-time flag and root namespace.
type defaultCodeGenOptions struct {
	cfg Configuration
}

func (c *defaultCodeGenOptions) Initialize(e *Engine) error {
	c.cfg = e.config
	return nil
}

func (c *defaultCodeGenOptions) CodeGenOptions(*document.CodeDocument) lang.CodeGenOptions {
	opts := c.cfg.CodeGen
	opts.DesignTime = opts.DesignTime || c.cfg.DesignTime
	if opts.RootNamespace == "" {
		opts.RootNamespace = c.cfg.RootNamespace
	}
	return opts
}

type defaultTarget struct{}

func (defaultTarget) Target(extensions []codegen.TargetExtension) codegen.Target {
	return codegen.NewDefaultTarget(extensions...)
}
