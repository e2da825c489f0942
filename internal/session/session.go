package session

import (
	"context"
	"errors"
	"sync"

	"github.com/dshills/mentions/internal/config"
	"github.com/dshills/mentions/internal/debounce"
	"github.com/dshills/mentions/internal/host"
	"github.com/dshills/mentions/internal/key"
	"github.com/dshills/mentions/internal/logger"
	"github.com/dshills/mentions/internal/overlay"
	"github.com/dshills/mentions/internal/suggest"
	"github.com/dshills/mentions/internal/token"
	"github.com/dshills/mentions/internal/trigger"
)

// ErrMissingCollaborator is returned when a required collaborator is nil.
var ErrMissingCollaborator = errors.New("session: missing collaborator")

// State is the suggestion state, recomputed on every document change.
// From and To are valid only while Active.
type State struct {
	Active bool
	From   int
	To     int
	Type   trigger.Type
	Text   string
}

// Session owns the suggestion workflow for one document.
type Session struct {
	mu      sync.Mutex
	opts    config.Options
	matcher *trigger.Matcher
	deb     *debounce.Debouncer
	overlay *overlay.Controller
	source  suggest.Source
	editor  host.Editor
	log     *logger.Logger
	state   State
	closed  bool
}

// New builds a session. All collaborators are required; opts are
// validated. A nil log discards output.
func New(opts config.Options, src suggest.Source, ed host.Editor, ov *overlay.Controller, log *logger.Logger) (*Session, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if src == nil || ed == nil || ov == nil {
		return nil, ErrMissingCollaborator
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Session{
		opts:    opts,
		matcher: trigger.NewMatcher(opts.TriggerConfig()),
		deb:     debounce.New(opts.Delay),
		overlay: ov,
		source:  src,
		editor:  ed,
		log:     log.WithComponent("session"),
	}, nil
}

// State returns a snapshot of the current suggestion state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// DecorationRange returns the active span hosts should mark visually.
// The marking is presentational only.
func (s *Session) DecorationRange() (from, to int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Active {
		return 0, 0, false
	}
	return s.state.From, s.state.To, true
}

// DocumentChanged recomputes the state from the document and selection.
// A non-caret selection always deactivates. On activation or query
// change a debounced fetch is scheduled; on deactivation the pending
// fetch is cancelled and the overlay hidden.
func (s *Session) DocumentChanged(doc host.Document, sel host.Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	var next State
	if sel.IsCaret() {
		lineStart := doc.LineStartOffset(sel.Head)
		line := doc.TextRange(lineStart, sel.Head)
		if m := s.matcher.Match(line, lineStart); m != nil {
			next = State{Active: true, From: m.From, To: m.To, Type: m.Type, Text: m.Query}
		}
	}

	prev := s.state
	s.state = next

	switch {
	case next.Active && (!prev.Active || prev.Type != next.Type || prev.Text != next.Text):
		s.log.Debugf("active %s query %q span [%d,%d)", next.Type, next.Text, next.From, next.To)
		s.scheduleFetchLocked(next.Type, next.Text)
	case !next.Active && prev.Active:
		s.log.Debugf("deactivated")
		s.deb.Cancel()
		s.overlay.Hide()
	}
}

// scheduleFetchLocked schedules a debounced fetch for the query.
func (s *Session) scheduleFetchLocked(typ trigger.Type, text string) {
	limit := s.opts.MaxSuggestions
	s.deb.Call(func() {
		s.fetch(typ, text, limit)
	})
}

// fetch runs on the debouncer goroutine. Results are applied only if
// the state still matches the originating query; anything else is
// stale and silently dropped.
func (s *Session) fetch(typ trigger.Type, text string, limit int) {
	items, err := s.source.Suggest(context.Background(), typ, text, limit)
	if err != nil {
		// The overlay simply never shows; the next keystroke retries.
		s.log.WithError(err).Debugf("fetch %s %q failed", typ, text)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.state.Active || s.state.Type != typ || s.state.Text != text {
		s.log.Debugf("drop stale result for %s %q", typ, text)
		return
	}

	s.overlay.Show(items, overlay.Anchor{
		From:        s.state.From,
		To:          s.state.To,
		Type:        typ,
		ActiveClass: s.opts.ActiveClass,
	})
}

// HandleKey processes a logical key. The return value tells the host
// whether the event was consumed; an inactive session never consumes.
func (s *Session) HandleKey(k key.Key) bool {
	s.mu.Lock()

	if s.closed || !s.state.Active {
		s.mu.Unlock()
		return false
	}

	switch k {
	case key.KeyNext:
		s.overlay.Next()
		s.mu.Unlock()
		return true
	case key.KeyPrev:
		s.overlay.Prev()
		s.mu.Unlock()
		return true
	case key.KeyCancel:
		s.deactivateLocked()
		s.mu.Unlock()
		return true
	case key.KeyConfirm:
		attrs := s.overlay.SelectedAttrs()
		st := s.state
		s.mu.Unlock()
		// Outside the lock: the replace command triggers the host's
		// change notification, which re-enters DocumentChanged.
		s.confirm(st, attrs)
		return true
	default:
		s.mu.Unlock()
		return false
	}
}

// deactivateLocked cancels pending work, hides the overlay, and forces
// the state to inactive.
func (s *Session) deactivateLocked() {
	s.deb.Cancel()
	s.overlay.Hide()
	s.state = State{}
}

// confirm replaces the matched span with a token built from the
// highlighted item's attributes. No highlighted item means no document
// mutation and no state change. Deactivation is driven by the host's
// change notification, since the inserted token is atomic and cannot
// re-match.
func (s *Session) confirm(st State, attrs map[string]string) {
	if attrs == nil {
		return
	}

	var kind token.Kind
	switch st.Type {
	case trigger.TypeMention:
		kind = token.KindMention
	case trigger.TypeTag:
		kind = token.KindHashtag
	default:
		return
	}

	tok, err := token.FromAttrs(kind, attrs)
	if err != nil {
		s.log.WithError(err).Errorf("bad selection attrs")
		return
	}

	if err := s.editor.ReplaceWithToken(st.From, st.To, tok); err != nil {
		s.log.WithError(err).Errorf("replace [%d,%d) failed", st.From, st.To)
	}
}

// Close cancels pending work and destroys the overlay. The session is
// unusable afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.state = State{}
	s.deb.Cancel()
	s.mu.Unlock()

	s.overlay.Destroy()
}
