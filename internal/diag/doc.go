// Package diag defines the diagnostic model shared by all analysis passes.
//
// Diagnostic is the central record: Severity, a compact numeric Code with a
// stable string form (SEM3002 ...), a short Message, the Primary span, the
// Fatal flag and optional Notes pointing at related declarations.
//
// Passes never return language errors as Go errors. They emit through a
// Reporter (usually BagReporter over a shared Bag) and keep going; Go errors
// are reserved for infrastructure failures such as I/O or cache corruption.
//
// A fatal diagnostic tells the orchestrator to skip the passes that have not
// run yet. Rendering lives in internal/diagfmt.
package diag
