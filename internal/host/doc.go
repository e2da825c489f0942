// Package host defines the boundary to the host editor: read access to
// document text and selection, and the single command the suggestion
// engine issues back (replace a span with an inline token).
//
// MemoryDocument is a linear-text implementation with atomic token
// spans, used by the demo binary and by tests. Real hosts implement
// Document and Editor over their own storage.
package host
