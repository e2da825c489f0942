// Package demo is a minimal terminal host for the suggestion engine: a
// tcell line editor over MemoryDocument with a drawn dropdown widget.
// It exists so the engine can be exercised end to end without a real
// editor; it is also what the mentions binary runs.
package demo
