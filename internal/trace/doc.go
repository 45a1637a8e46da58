// Package trace records spans of a compilation run: the driver, each
// document, the phases of the engine pipeline and the passes inside them.
//
// Tracing is off unless enabled from the command line:
//
//	quill compile --trace=- --trace-level=phase Views
//
// Events go to a stream (text, NDJSON or Chrome trace format), to an
// in-memory ring that can be dumped after a failure, or to both.
//
// Spans are opened with Begin and closed with End; the parent of a span is
// passed explicitly or carried through a context:
//
//	span := trace.Begin(t, trace.ScopeDocument, path, trace.CurrentSpan(ctx).SpanID)
//	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})
//	defer span.End("")
package trace
