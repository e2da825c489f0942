package host

import (
	"errors"

	"github.com/dshills/mentions/internal/token"
)

// Sentinel replaces bytes covered by atomic tokens in text handed to
// the trigger matcher, so a trigger can never match across or inside a
// token. It is guaranteed absent from real content.
const Sentinel = '\x00'

// Package-level errors.
var (
	// ErrInvalidRange is returned for out-of-bounds or inverted ranges.
	ErrInvalidRange = errors.New("host: invalid range")
	// ErrAtomicSpan is returned when an edit would split an atomic
	// token span.
	ErrAtomicSpan = errors.New("host: edit splits atomic span")
)

// Selection is the host's cursor state. Anchor equals Head for a caret.
type Selection struct {
	Anchor int
	Head   int
}

// Caret returns a zero-width selection at the given offset.
func Caret(at int) Selection {
	return Selection{Anchor: at, Head: at}
}

// IsCaret reports whether the selection is zero-width.
func (s Selection) IsCaret() bool {
	return s.Anchor == s.Head
}

// Document is the read-only view of the host document the engine needs.
// Offsets are byte offsets into the rendered text.
type Document interface {
	// Len returns the document length in bytes.
	Len() int
	// TextRange returns the text in [from, to). Bytes covered by atomic
	// tokens are replaced with Sentinel so lengths and offsets stay
	// aligned while the content is unmatchable.
	TextRange(from, to int) string
	// LineStartOffset returns the offset of the first byte of the line
	// containing at.
	LineStartOffset(at int) int
}

// Editor is the command surface the engine drives. A selection issues
// exactly one ReplaceWithToken; everything else is read-only.
type Editor interface {
	// ReplaceWithToken replaces the text in [from, to) with an atomic
	// inline token.
	ReplaceWithToken(from, to int, tok token.Token) error
}
