package engine

import (
	"fmt"
	"slices"

	"quill/internal/binding"
	"quill/internal/cache"
	"quill/internal/codegen"
	"quill/internal/directive"
	"quill/internal/document"
	"quill/internal/ir"
	"quill/internal/lang"
	"quill/internal/taghelper"
	"quill/internal/trace"
)

type versionExtension struct {
	min       lang.Version
	configure func(*Builder)
}

// Builder assembles an engine in three tiers: defaults, version extensions
// and caller customizations, applied in that order.
type Builder struct {
	config     Configuration
	features   *Features
	phases     []Phase
	extensions []versionExtension
	tracer     trace.Tracer
	built      bool
}

// NewBuilder returns a builder with the default phases and features.
func NewBuilder(cfg Configuration) *Builder {
	b := NewEmptyBuilder(cfg)
	b.AddDefaultPhases()
	b.AddDefaultFeatures()
	return b
}

// NewEmptyBuilder returns a builder with nothing registered.
func NewEmptyBuilder(cfg Configuration) *Builder {
	return &Builder{config: cfg, features: newFeatures()}
}

// Configuration returns the configuration the engine will be built for.
func (b *Builder) Configuration() Configuration { return b.config }

// Features exposes the registries for replacement and removal.
func (b *Builder) Features() *Features { return b.features }

// AddDefaultPhases appends the nine pipeline phases.
func (b *Builder) AddDefaultPhases() {
	b.phases = append(b.phases,
		&ParsingPhase{},
		&SyntaxTreePhase{},
		&TagHelperDiscoveryPhase{},
		&TagHelperRewritePhase{},
		&LoweringPhase{},
		&DocumentClassifierPhase{},
		&DirectiveClassifierPhase{},
		&OptimizationPhase{},
		&TargetLoweringPhase{},
	)
}

// AddDefaultFeatures registers the built-in directives, option features,
// the default target, tag helper discovery and the core passes.
func (b *Builder) AddDefaultFeatures() {
	f := b.features
	for _, d := range directive.Builtins() {
		f.Directives.Add(d)
	}
	f.ParserOptions = &defaultParserOptions{}
	f.CodeGenOptions = &defaultCodeGenOptions{}
	f.Target = defaultTarget{}
	f.TagHelperDiscovery = &DefaultTagHelperDiscovery{}
	f.SyntaxTreePasses.Add(&MarkupTextMergePass{}, &DirectiveTokenTrimPass{})
	f.DocumentClassifiers.Add(NewDefaultDocumentClassifier())
	f.Optimizations.Add(
		&HTMLContentMergePass{},
		&TagHelperFieldsPass{},
		&EliminateMethodBodyPass{},
		&DirectiveRemovalPass{},
	)
}

// Phases returns the registered phases.
func (b *Builder) Phases() []Phase { return slices.Clone(b.phases) }

// AddPhase appends p to the pipeline.
func (b *Builder) AddPhase(p Phase) { b.phases = append(b.phases, p) }

// ReplacePhase swaps the phase named name for p.
func (b *Builder) ReplacePhase(name string, p Phase) bool {
	for i, ph := range b.phases {
		if ph.Name() == name {
			b.phases[i] = p
			return true
		}
	}
	return false
}

func (b *Builder) AddDirective(ds ...*directive.Descriptor) {
	for _, d := range ds {
		b.features.Directives.Add(d)
	}
}

func (b *Builder) AddSyntaxTreePass(p ...SyntaxTreePass) { b.features.SyntaxTreePasses.Add(p...) }

func (b *Builder) AddDocumentClassifier(p ...DocumentClassifierPass) {
	b.features.DocumentClassifiers.Add(p...)
}

func (b *Builder) AddDirectiveClassifier(p ...DirectiveClassifierPass) {
	b.features.DirectiveClassifiers.Add(p...)
}

func (b *Builder) AddOptimization(p ...OptimizationPass) { b.features.Optimizations.Add(p...) }

func (b *Builder) AddTargetExtension(ext ...codegen.TargetExtension) {
	b.features.TargetExtensions = append(b.features.TargetExtensions, ext...)
}

func (b *Builder) SetTagHelperProvider(p TagHelperProvider) { b.features.TagHelperProvider = p }

// SetTagHelpers installs a fixed descriptor set as the provider.
func (b *Builder) SetTagHelpers(ds ...*taghelper.Descriptor) {
	b.features.TagHelperProvider = StaticTagHelpers(ds)
}

func (b *Builder) SetTagHelperDiscovery(d TagHelperDiscovery)     { b.features.TagHelperDiscovery = d }
func (b *Builder) SetParserOptionsFeature(f ParserOptionsFeature) { b.features.ParserOptions = f }
func (b *Builder) SetCodeGenOptionsFeature(f CodeGenOptionsFeature) {
	b.features.CodeGenOptions = f
}
func (b *Builder) SetCodeTarget(f CodeTargetFeature)       { b.features.Target = f }
func (b *Builder) SetImportProject(f ImportProjectFeature) { b.features.Imports = f }

func (b *Builder) ConfigureNamespace(fn func(*document.CodeDocument, *ir.Document, *ir.Namespace)) {
	b.features.ClassifierConfig.ConfigureNamespace(fn)
}

func (b *Builder) ConfigureClass(fn func(*document.CodeDocument, *ir.Document, *ir.Class)) {
	b.features.ClassifierConfig.ConfigureClass(fn)
}

func (b *Builder) ConfigureMethod(fn func(*document.CodeDocument, *ir.Document, *ir.Method)) {
	b.features.ClassifierConfig.ConfigureMethod(fn)
}

// SetTracer sets the engine-scoped tracer.
func (b *Builder) SetTracer(t trace.Tracer) { b.tracer = t }

// RegisterVersionExtension runs configure during Build when the configured
// language version is at least min. Extensions run in registration order.
func (b *Builder) RegisterVersionExtension(min lang.Version, configure func(*Builder)) {
	b.extensions = append(b.extensions, versionExtension{min: min, configure: configure})
}

// Build validates the configuration, applies version extensions and then
// customize, and initializes every feature and phase once. A builder
// builds one engine.
func (b *Builder) Build(customize ...func(*Builder)) (*Engine, error) {
	if b.built {
		return nil, ErrAlreadyInitialized
	}
	b.built = true
	if err := b.config.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	// extensions may register further extensions
	for i := 0; i < len(b.extensions); i++ {
		if ext := b.extensions[i]; b.config.Version.AtLeast(ext.min) {
			ext.configure(b)
		}
	}
	for _, fn := range customize {
		fn(b)
	}

	e := &Engine{
		config:   b.config,
		features: b.features.clone(),
		phases:   slices.Clone(b.phases),
		tracer:   b.tracer,
		binders:  cache.NewStore[*binding.Binder](),
	}
	if e.tracer == nil {
		e.tracer = trace.Nop
	}
	if e.features.Target == nil {
		return nil, &MissingFeatureError{Requester: "engine", Feature: "CodeTargetFeature"}
	}
	e.target = e.features.Target.Target(e.features.TargetExtensions)

	for _, in := range e.features.initializers() {
		if err := in.Initialize(e); err != nil {
			return nil, err
		}
	}
	for _, p := range e.phases {
		if err := p.Initialize(e); err != nil {
			return nil, err
		}
	}
	e.initialized = true
	return e, nil
}
