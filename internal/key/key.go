// Package key defines the closed set of logical keys the suggestion
// workflow reacts to, and the translation from terminal key events.
//
// The interaction state machine never sees raw key codes; hosts resolve
// their input encoding to one of these logical keys once, at the input
// boundary.
package key

import (
	"github.com/gdamore/tcell/v2"
)

// Key is a logical suggestion-workflow key.
type Key int

const (
	// KeyNone is any key the workflow does not react to.
	KeyNone Key = iota
	// KeyNext moves the highlight to the next suggestion.
	KeyNext
	// KeyPrev moves the highlight to the previous suggestion.
	KeyPrev
	// KeyConfirm selects the highlighted suggestion.
	KeyConfirm
	// KeyCancel dismisses the suggestion overlay.
	KeyCancel
)

// String returns the logical key name.
func (k Key) String() string {
	switch k {
	case KeyNext:
		return "next"
	case KeyPrev:
		return "prev"
	case KeyConfirm:
		return "confirm"
	case KeyCancel:
		return "cancel"
	default:
		return "none"
	}
}

// FromTcell maps a tcell key event to a logical key. Arrow keys drive
// navigation; Ctrl+N/Ctrl+P are accepted as aliases. Enter confirms,
// Escape cancels. Everything else is KeyNone.
func FromTcell(ev *tcell.EventKey) Key {
	if ev == nil {
		return KeyNone
	}
	switch ev.Key() {
	case tcell.KeyDown, tcell.KeyCtrlN:
		return KeyNext
	case tcell.KeyUp, tcell.KeyCtrlP:
		return KeyPrev
	case tcell.KeyEnter:
		return KeyConfirm
	case tcell.KeyEscape:
		return KeyCancel
	default:
		return KeyNone
	}
}
