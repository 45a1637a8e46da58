package engine

import (
	"context"
	"fmt"
	"slices"
	"time"

	"quill/internal/binding"
	"quill/internal/cache"
	"quill/internal/codegen"
	"quill/internal/document"
	"quill/internal/taghelper"
	"quill/internal/trace"
)

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a pipeline phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a phase boundary of one document.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
	Err     error
}

// PhaseObserver receives phase events emitted by Run.
type PhaseObserver func(PhaseEvent)

// Engine is an assembled, immutable pipeline.
type Engine struct {
	config      Configuration
	features    *Features
	phases      []Phase
	target      codegen.Target
	tracer      trace.Tracer
	binders     *cache.Store[*binding.Binder]
	initialized bool
}

// Configuration returns what the engine was built with.
func (e *Engine) Configuration() Configuration { return e.config }

// Features returns the feature set. Callers must not modify it.
func (e *Engine) Features() *Features { return e.features }

// Phases returns the phases in execution order.
func (e *Engine) Phases() []Phase { return slices.Clone(e.phases) }

// Target is the code target created at initialization.
func (e *Engine) Target() codegen.Target { return e.target }

// Tracer is the engine-scoped tracer; never nil.
func (e *Engine) Tracer() trace.Tracer { return e.tracer }

// Binder returns the binder for prefix and descriptors, shared by every
// document that resolves the same set.
func (e *Engine) Binder(prefix string, descriptors []*taghelper.Descriptor) *binding.Binder {
	key := binding.Checksum(prefix, descriptors)
	return e.binders.GetOrAdd(key, func() *binding.Binder {
		return binding.NewBinder(prefix, descriptors)
	})
}

// RunPhases executes every phase on doc in order.
func (e *Engine) RunPhases(doc *document.CodeDocument) error {
	return e.Run(doc, nil)
}

// Process is RunPhases.
func (e *Engine) Process(doc *document.CodeDocument) error {
	return e.Run(doc, nil)
}

// Run executes every phase on doc, reporting boundaries to observe when it
// is not nil. The first phase error stops the pipeline.
func (e *Engine) Run(doc *document.CodeDocument, observe PhaseObserver) error {
	return e.RunContext(context.Background(), doc, observe)
}

// RunContext is Run with phase spans parented to the span carried by ctx.
// Cancellation is checked between phases.
func (e *Engine) RunContext(ctx context.Context, doc *document.CodeDocument, observe PhaseObserver) error {
	if e == nil || !e.initialized {
		return ErrNotInitialized
	}
	if doc == nil {
		return ErrNilDocument
	}
	name := "document"
	if doc.Source != nil {
		name = doc.Source.Path
	}
	docSpan := trace.Begin(e.tracer, trace.ScopeDocument, name, trace.CurrentSpan(ctx).SpanID)
	for _, p := range e.phases {
		if err := ctx.Err(); err != nil {
			docSpan.End("canceled")
			return err
		}
		if observe != nil {
			observe(PhaseEvent{Name: p.Name(), Status: PhaseStart})
		}
		span := trace.Begin(e.tracer, trace.ScopePhase, p.Name(), docSpan.ID())
		start := time.Now()
		err := p.Execute(doc)
		elapsed := time.Since(start)
		if err != nil {
			span.WithExtra("error", err.Error())
		}
		span.End("")
		if observe != nil {
			observe(PhaseEvent{Name: p.Name(), Status: PhaseEnd, Elapsed: elapsed, Err: err})
		}
		if err != nil {
			docSpan.End("failed")
			return err
		}
	}
	docSpan.End("")
	return nil
}

// runPass wraps one pass execution in a pass-scoped span.
func (e *Engine) runPass(name string, fn func() error) error {
	span := trace.Begin(e.tracer, trace.ScopePass, name, 0)
	err := fn()
	if err != nil {
		span.WithExtra("error", err.Error())
		err = fmt.Errorf("pass %s: %w", name, err)
	}
	span.End("")
	return err
}
