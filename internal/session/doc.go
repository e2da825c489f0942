// Package session implements the interaction state machine that ties
// trigger detection, debounced suggestion fetching, and keyboard input
// together.
//
// A Session recomputes its State wholesale on every document change,
// schedules fetches through a debouncer, guards against stale fetch
// results, and drives the overlay controller. Keyboard events arrive as
// logical keys; the Session reports whether it consumed them.
//
// Overlay hooks and suggestion sources are invoked with the session
// lock held or from the fetch goroutine; they must not call back into
// the Session. Host change notifications triggered by the selection
// replace command are safe: the replace is issued outside the lock.
package session
