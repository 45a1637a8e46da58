// Package diag defines the diagnostic model shared by every compilation phase.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for findings produced by the
//     template parser, the tag helper rewriter, descriptor validation and the
//     IR passes.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error.
//   - Code – compact numeric identifier with a stable string ID (SYN2101,
//     THL3001, IRL4001, IO5002, OBS6001).
//   - Message – short human oriented text.
//   - Primary – the source.Span of the issue; descriptor diagnostics have no
//     span and set Unlocated instead.
//   - Notes – optional secondary spans for extra context.
//
// Diagnostics are values. Once attached to a descriptor, a syntax tree or an
// IR node they are never mutated, so they can be shared across documents and
// goroutines.
//
// # Emitting diagnostics
//
// Phases that produce many findings take a Reporter; a ReportBuilder lets them
// chain WithNote before Emit. Bag aggregates diagnostics with an optional limit
// and supports Sort and Dedup for stable output.
//
// # Consumers
//
//   - internal/diagfmt renders diagnostics as pretty text, JSON or short lines.
//   - internal/driver collects diagnostics per document and feeds the CLI.
package diag
