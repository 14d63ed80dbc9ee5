// Package diag defines the diagnostic model shared by all compiler phases.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with a stable string form;
//     ranges: LEX 1000, SYN 2000, SEM 3000, IO 4000, ITR 5000 (iterator lowering).
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the source.Span pointing to the offending construct.
//   - Notes – optional secondary spans/messages for additional context.
//
// # Emitting diagnostics
//
// Phases report through a Reporter so that emission is decoupled from storage.
// ReportError/ReportWarning return a ReportBuilder that can attach notes before
// Emit. BagReporter collects into a Bag, which supports limits, sorting,
// deduplication and filtering. LockedReporter lets concurrent workers share one
// sink.
//
// Package diag does no formatting beyond the golden one-line form used by tests
// and the short CLI output; rich rendering lives in internal/diagfmt.
package diag
