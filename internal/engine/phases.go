package engine

import (
	"fmt"
	"slices"

	"quill/internal/document"
	"quill/internal/lang"
	"quill/internal/syntax"
)

// Phase names in execution order.
const (
	PhaseParsing             = "parsing"
	PhaseSyntaxTree          = "syntax-tree"
	PhaseTagHelperDiscovery  = "tag-helper-discovery"
	PhaseTagHelperRewrite    = "tag-helper-rewrite"
	PhaseLowering            = "ir-lowering"
	PhaseDocumentClassifier  = "document-classifier"
	PhaseDirectiveClassifier = "directive-classifier"
	PhaseOptimization        = "optimization"
	PhaseTargetLowering      = "target-lowering"
)

// Phase is one step of the pipeline. Phases keep no per-document state, so
// one instance serves every document of its engine.
type Phase interface {
	Name() string
	Initialize(e *Engine) error
	Execute(doc *document.CodeDocument) error
}

// phaseBase tracks the owning engine.
type phaseBase struct {
	engine *Engine
}

func (p *phaseBase) initialize(e *Engine) error {
	if p.engine != nil {
		return ErrAlreadyInitialized
	}
	p.engine = e
	return nil
}

func (p *phaseBase) ready(name string) (*Engine, error) {
	if p.engine == nil {
		return nil, fmt.Errorf("phase %s: %w", name, ErrNotInitialized)
	}
	return p.engine, nil
}

// ParsingPhase parses the source and every import.
type ParsingPhase struct{ phaseBase }

func (*ParsingPhase) Name() string { return PhaseParsing }

func (p *ParsingPhase) Initialize(e *Engine) error {
	if e.features.ParserOptions == nil {
		return &MissingFeatureError{Requester: PhaseParsing, Feature: "ParserOptionsFeature"}
	}
	return p.initialize(e)
}

func (p *ParsingPhase) Execute(doc *document.CodeDocument) error {
	e, err := p.ready(PhaseParsing)
	if err != nil {
		return err
	}
	if doc.Source == nil {
		return &MissingArtifactError{Phase: PhaseParsing, Artifact: "source document"}
	}
	opts, ok := doc.ParserOptions()
	if !ok {
		opts = e.features.ParserOptions.ParserOptions(doc)
		doc.SetParserOptions(opts)
	}
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("phase %s: %w", PhaseParsing, err)
	}

	imports := doc.Imports
	if e.features.Imports != nil {
		imports = slices.Concat(e.features.Imports.DefaultImports(doc.FileKind), imports)
	}
	importTrees := make([]*syntax.Tree, 0, len(imports))
	for _, imp := range imports {
		importOpts := opts
		importOpts.FileKind = lang.FileKindFromPath(imp.Path)
		importTrees = append(importTrees, syntax.Parse(imp, importOpts))
	}
	doc.SetSyntaxTree(syntax.Parse(doc.Source, opts))
	doc.SetImportSyntaxTrees(importTrees)
	return nil
}

// SyntaxTreePhase runs the syntax tree passes.
type SyntaxTreePhase struct{ phaseBase }

func (*SyntaxTreePhase) Name() string { return PhaseSyntaxTree }

func (p *SyntaxTreePhase) Initialize(e *Engine) error { return p.initialize(e) }

func (p *SyntaxTreePhase) Execute(doc *document.CodeDocument) error {
	e, err := p.ready(PhaseSyntaxTree)
	if err != nil {
		return err
	}
	tree, err := doc.RequireSyntaxTree()
	if err != nil {
		return inPhase(PhaseSyntaxTree, err)
	}
	for _, pass := range e.features.SyntaxTreePasses.Ordered() {
		err := e.runPass(pass.Name(), func() error {
			next, err := pass.Execute(doc, tree)
			if next != nil {
				tree = next
			}
			return err
		})
		if err != nil {
			return err
		}
	}
	doc.SetSyntaxTree(tree)
	return nil
}

// TagHelperDiscoveryPhase resolves the tag helpers in scope.
type TagHelperDiscoveryPhase struct{ phaseBase }

func (*TagHelperDiscoveryPhase) Name() string { return PhaseTagHelperDiscovery }

func (p *TagHelperDiscoveryPhase) Initialize(e *Engine) error {
	if e.features.TagHelperDiscovery == nil {
		return &MissingFeatureError{Requester: PhaseTagHelperDiscovery, Feature: "TagHelperDiscovery"}
	}
	return p.initialize(e)
}

func (p *TagHelperDiscoveryPhase) Execute(doc *document.CodeDocument) error {
	e, err := p.ready(PhaseTagHelperDiscovery)
	if err != nil {
		return err
	}
	tree, err := doc.RequireSyntaxTree()
	if err != nil {
		return inPhase(PhaseTagHelperDiscovery, err)
	}
	imports, err := doc.RequireImportSyntaxTrees()
	if err != nil {
		return inPhase(PhaseTagHelperDiscovery, err)
	}
	ctx, diags := e.features.TagHelperDiscovery.Discover(doc, tree, imports)
	if ctx == nil {
		ctx = &document.TagHelperContext{Binder: e.Binder("", nil)}
	}
	if len(diags) > 0 {
		tree = tree.Clone()
		tree.Diagnostics = append(tree.Diagnostics, diags...)
		doc.SetSyntaxTree(tree)
	}
	doc.SetTagHelperContext(ctx)
	return nil
}

// TagHelperRewritePhase binds elements to the discovered tag helpers.
type TagHelperRewritePhase struct{ phaseBase }

func (*TagHelperRewritePhase) Name() string { return PhaseTagHelperRewrite }

func (p *TagHelperRewritePhase) Initialize(e *Engine) error { return p.initialize(e) }

func (p *TagHelperRewritePhase) Execute(doc *document.CodeDocument) error {
	if _, err := p.ready(PhaseTagHelperRewrite); err != nil {
		return err
	}
	tree, err := doc.RequireSyntaxTree()
	if err != nil {
		return inPhase(PhaseTagHelperRewrite, err)
	}
	ctx, err := doc.RequireTagHelperContext()
	if err != nil {
		return inPhase(PhaseTagHelperRewrite, err)
	}
	if ctx.Binder == nil || len(ctx.Binder.Descriptors()) == 0 {
		return nil
	}
	rewritten := tree.Clone()
	syntax.RewriteTagHelpers(rewritten, ctx.Binder)
	doc.SetSyntaxTree(rewritten)
	return nil
}

// LoweringPhase turns the syntax trees into an IR document.
type LoweringPhase struct{ phaseBase }

func (*LoweringPhase) Name() string { return PhaseLowering }

func (p *LoweringPhase) Initialize(e *Engine) error {
	if e.features.CodeGenOptions == nil {
		return &MissingFeatureError{Requester: PhaseLowering, Feature: "CodeGenOptionsFeature"}
	}
	return p.initialize(e)
}

func (p *LoweringPhase) Execute(doc *document.CodeDocument) error {
	e, err := p.ready(PhaseLowering)
	if err != nil {
		return err
	}
	tree, err := doc.RequireSyntaxTree()
	if err != nil {
		return inPhase(PhaseLowering, err)
	}
	imports, err := doc.RequireImportSyntaxTrees()
	if err != nil {
		return inPhase(PhaseLowering, err)
	}
	opts, ok := doc.CodeGenOptions()
	if !ok {
		opts = e.features.CodeGenOptions.CodeGenOptions(doc)
		doc.SetCodeGenOptions(opts)
	}
	irDoc := Lower(tree, imports)
	irDoc.Options = opts
	irDoc.SourceChecksum = doc.Checksum()
	doc.SetIR(irDoc)
	return nil
}

// DocumentClassifierPhase runs the first classifier that accepts the
// document.
type DocumentClassifierPhase struct{ phaseBase }

func (*DocumentClassifierPhase) Name() string { return PhaseDocumentClassifier }

func (p *DocumentClassifierPhase) Initialize(e *Engine) error {
	if e.features.DocumentClassifiers.Len() == 0 {
		return &MissingFeatureError{Requester: PhaseDocumentClassifier, Feature: "DocumentClassifierPass"}
	}
	return p.initialize(e)
}

func (p *DocumentClassifierPhase) Execute(doc *document.CodeDocument) error {
	e, err := p.ready(PhaseDocumentClassifier)
	if err != nil {
		return err
	}
	irDoc, err := doc.RequireIR()
	if err != nil {
		return inPhase(PhaseDocumentClassifier, err)
	}
	for _, c := range e.features.DocumentClassifiers.Ordered() {
		if !c.IsMatch(doc, irDoc) {
			continue
		}
		return e.runPass(c.Name(), func() error { return c.Execute(doc, irDoc) })
	}
	return nil
}

// DirectiveClassifierPhase applies directive passes.
type DirectiveClassifierPhase struct{ phaseBase }

func (*DirectiveClassifierPhase) Name() string { return PhaseDirectiveClassifier }

func (p *DirectiveClassifierPhase) Initialize(e *Engine) error { return p.initialize(e) }

func (p *DirectiveClassifierPhase) Execute(doc *document.CodeDocument) error {
	e, err := p.ready(PhaseDirectiveClassifier)
	if err != nil {
		return err
	}
	irDoc, err := doc.RequireIR()
	if err != nil {
		return inPhase(PhaseDirectiveClassifier, err)
	}
	for _, pass := range e.features.DirectiveClassifiers.Ordered() {
		if err := e.runPass(pass.Name(), func() error { return pass.Execute(doc, irDoc) }); err != nil {
			return err
		}
	}
	return nil
}

// OptimizationPhase applies optimization passes.
type OptimizationPhase struct{ phaseBase }

func (*OptimizationPhase) Name() string { return PhaseOptimization }

func (p *OptimizationPhase) Initialize(e *Engine) error { return p.initialize(e) }

func (p *OptimizationPhase) Execute(doc *document.CodeDocument) error {
	e, err := p.ready(PhaseOptimization)
	if err != nil {
		return err
	}
	irDoc, err := doc.RequireIR()
	if err != nil {
		return inPhase(PhaseOptimization, err)
	}
	for _, pass := range e.features.Optimizations.Ordered() {
		if err := e.runPass(pass.Name(), func() error { return pass.Execute(doc, irDoc) }); err != nil {
			return err
		}
	}
	return nil
}

// TargetLoweringPhase hands the IR to the code target.
type TargetLoweringPhase struct{ phaseBase }

func (*TargetLoweringPhase) Name() string { return PhaseTargetLowering }

func (p *TargetLoweringPhase) Initialize(e *Engine) error { return p.initialize(e) }

func (p *TargetLoweringPhase) Execute(doc *document.CodeDocument) error {
	e, err := p.ready(PhaseTargetLowering)
	if err != nil {
		return err
	}
	irDoc, err := doc.RequireIR()
	if err != nil {
		return inPhase(PhaseTargetLowering, err)
	}
	opts, err := doc.RequireCodeGenOptions()
	if err != nil {
		return inPhase(PhaseTargetLowering, err)
	}
	out, err := e.target.CreateWriter(opts).Write(irDoc)
	if err != nil {
		return fmt.Errorf("phase %s: %w", PhaseTargetLowering, err)
	}
	doc.SetOutput(out)
	return nil
}
