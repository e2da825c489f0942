package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mentions/internal/config"
	"github.com/dshills/mentions/internal/host"
	"github.com/dshills/mentions/internal/key"
	"github.com/dshills/mentions/internal/overlay"
	"github.com/dshills/mentions/internal/suggest"
	"github.com/dshills/mentions/internal/token"
	"github.com/dshills/mentions/internal/trigger"
)

// listWidget is a minimal dropdown standing in for a host widget.
type listWidget struct {
	mu        sync.Mutex
	items     []suggest.Suggestion
	selected  int
	shown     bool
	destroyed bool
}

func (w *listWidget) snapshot() ([]suggest.Suggestion, int, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.items, w.selected, w.shown
}

func listHooks(w *listWidget) overlay.Hooks {
	return overlay.Hooks{
		Show: func(_ overlay.Widget, items []suggest.Suggestion, _ overlay.Anchor) {
			w.mu.Lock()
			defer w.mu.Unlock()
			w.items = items
			w.selected = 0
			w.shown = true
		},
		Hide: func(_ overlay.Widget) {
			w.mu.Lock()
			defer w.mu.Unlock()
			w.shown = false
		},
		Next: func(_ overlay.Widget) {
			w.mu.Lock()
			defer w.mu.Unlock()
			if w.selected < len(w.items)-1 {
				w.selected++
			}
		},
		Prev: func(_ overlay.Widget) {
			w.mu.Lock()
			defer w.mu.Unlock()
			if w.selected > 0 {
				w.selected--
			}
		},
		Selected: func(_ overlay.Widget) map[string]string {
			w.mu.Lock()
			defer w.mu.Unlock()
			if !w.shown || len(w.items) == 0 {
				return nil
			}
			return w.items[w.selected].Attrs
		},
		Destroy: func(_ overlay.Widget) {
			w.mu.Lock()
			defer w.mu.Unlock()
			w.destroyed = true
		},
	}
}

// blockingSource serves canned results per query and can hold a query's
// response until released.
type blockingSource struct {
	mu      sync.Mutex
	results map[string][]suggest.Suggestion
	gates   map[string]chan struct{}
	calls   []string
}

func newBlockingSource() *blockingSource {
	return &blockingSource{
		results: make(map[string][]suggest.Suggestion),
		gates:   make(map[string]chan struct{}),
	}
}

func (f *blockingSource) serve(query string, handles ...string) {
	items := make([]suggest.Suggestion, len(handles))
	for i, h := range handles {
		items[i] = suggest.Suggestion{Label: h, Attrs: map[string]string{"did": "did:" + h, "handle": h}}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[query] = items
}

func (f *blockingSource) hold(query string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gates[query] = make(chan struct{})
}

func (f *blockingSource) release(query string) {
	f.mu.Lock()
	gate := f.gates[query]
	delete(f.gates, query)
	f.mu.Unlock()
	if gate != nil {
		close(gate)
	}
}

func (f *blockingSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *blockingSource) Suggest(_ context.Context, _ trigger.Type, query string, _ int) ([]suggest.Suggestion, error) {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	gate := f.gates[query]
	items := f.results[query]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return items, nil
}

type fixture struct {
	doc     *host.MemoryDocument
	widget  *listWidget
	source  *blockingSource
	session *Session
}

func newFixture(t *testing.T, text string, mutate func(*config.Options)) *fixture {
	t.Helper()

	opts := config.DefaultOptions()
	opts.Delay = 5 * time.Millisecond
	if mutate != nil {
		mutate(&opts)
	}

	doc := host.NewMemoryDocument(text)
	w := &listWidget{}
	ov, err := overlay.NewController(listHooks(w), nil)
	require.NoError(t, err)

	src := newBlockingSource()
	s, err := New(opts, src, doc, ov, nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	return &fixture{doc: doc, widget: w, source: src, session: s}
}

func waitShown(t *testing.T, w *listWidget) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, _, shown := w.snapshot()
		return shown
	}, time.Second, time.Millisecond)
}

func TestActivationShowsSuggestions(t *testing.T) {
	f := newFixture(t, "hello @ali", nil)
	f.source.serve("ali", "ali", "alice")

	f.session.DocumentChanged(f.doc, host.Caret(10))

	st := f.session.State()
	assert.Equal(t, State{Active: true, From: 6, To: 10, Type: trigger.TypeMention, Text: "ali"}, st)

	waitShown(t, f.widget)
	items, _, _ := f.widget.snapshot()
	require.Len(t, items, 2)
	assert.Equal(t, "ali", items[0].Attrs["handle"])
}

func TestHashtagActivation(t *testing.T) {
	f := newFixture(t, "#work in progress", nil)
	f.source.serve("work", "work")

	f.session.DocumentChanged(f.doc, host.Caret(5))

	st := f.session.State()
	assert.Equal(t, State{Active: true, From: 0, To: 5, Type: trigger.TypeTag, Text: "work"}, st)
}

func TestNoActivationWithoutBoundary(t *testing.T) {
	f := newFixture(t, "a@b", nil)

	f.session.DocumentChanged(f.doc, host.Caret(3))
	assert.False(t, f.session.State().Active)
}

func TestNonCaretSelectionDeactivates(t *testing.T) {
	f := newFixture(t, "hello @ali", nil)
	f.source.serve("ali", "ali")

	f.session.DocumentChanged(f.doc, host.Caret(10))
	require.True(t, f.session.State().Active)
	waitShown(t, f.widget)

	f.session.DocumentChanged(f.doc, host.Selection{Anchor: 3, Head: 7})
	assert.False(t, f.session.State().Active)
	_, _, shown := f.widget.snapshot()
	assert.False(t, shown)
}

func TestDebounceCollapsesKeystrokes(t *testing.T) {
	f := newFixture(t, "", nil)
	f.source.serve("ali", "ali")

	// Simulate typing "@a", "@al", "@ali" faster than the delay.
	for _, text := range []string{"@a", "@al", "@ali"} {
		f.doc = host.NewMemoryDocument(text)
		f.session.DocumentChanged(f.doc, host.Caret(len(text)))
	}

	waitShown(t, f.widget)
	assert.Equal(t, 1, f.source.callCount(), "burst collapses to one fetch")
}

func TestStaleResultGuard(t *testing.T) {
	f := newFixture(t, "@al", nil)
	f.source.serve("al", "albert")
	f.source.serve("ali", "ali")
	f.source.hold("al")

	// Fetch A for "al" fires and blocks inside the source.
	f.session.DocumentChanged(f.doc, host.Caret(3))
	require.Eventually(t, func() bool { return f.source.callCount() == 1 }, time.Second, time.Millisecond)

	// Query advances to "ali"; fetch B fires and resolves first.
	f.doc = host.NewMemoryDocument("@ali")
	f.session.DocumentChanged(f.doc, host.Caret(4))
	waitShown(t, f.widget)

	// A resolves late; its result must not clobber B's.
	f.source.release("al")
	time.Sleep(20 * time.Millisecond)

	items, _, shown := f.widget.snapshot()
	require.True(t, shown)
	require.Len(t, items, 1)
	assert.Equal(t, "ali", items[0].Attrs["handle"])
}

func TestKeyWhileInactiveNeverConsumed(t *testing.T) {
	f := newFixture(t, "plain", nil)
	f.session.DocumentChanged(f.doc, host.Caret(5))

	assert.False(t, f.session.HandleKey(key.KeyNext))
	assert.False(t, f.session.HandleKey(key.KeyConfirm))
	assert.False(t, f.session.HandleKey(key.KeyCancel))
}

func TestNavigationConsumed(t *testing.T) {
	f := newFixture(t, "hi @a", nil)
	f.source.serve("a", "ali", "alice", "alan")

	f.session.DocumentChanged(f.doc, host.Caret(5))
	waitShown(t, f.widget)

	assert.True(t, f.session.HandleKey(key.KeyNext))
	assert.True(t, f.session.HandleKey(key.KeyNext))
	assert.True(t, f.session.HandleKey(key.KeyPrev))

	_, selected, _ := f.widget.snapshot()
	assert.Equal(t, 1, selected)

	// Keys outside the logical set pass through.
	assert.False(t, f.session.HandleKey(key.KeyNone))
}

func TestEscapeAlwaysDeactivates(t *testing.T) {
	f := newFixture(t, "hi @ali", nil)
	f.source.serve("ali", "ali")

	f.session.DocumentChanged(f.doc, host.Caret(7))
	waitShown(t, f.widget)

	assert.True(t, f.session.HandleKey(key.KeyCancel))
	assert.False(t, f.session.State().Active)
	_, _, shown := f.widget.snapshot()
	assert.False(t, shown)
}

func TestEscapeCancelsPendingFetch(t *testing.T) {
	f := newFixture(t, "hi @ali", func(o *config.Options) { o.Delay = 50 * time.Millisecond })
	f.source.serve("ali", "ali")

	f.session.DocumentChanged(f.doc, host.Caret(7))
	assert.True(t, f.session.HandleKey(key.KeyCancel))

	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, f.source.callCount(), "cancelled fetch must not run")
}

func TestConfirmReplacesSpanWithToken(t *testing.T) {
	f := newFixture(t, "hello @ali", nil)
	f.source.serve("ali", "ali")

	// Host wiring: every document change re-runs the state machine.
	f.doc.OnChange(func() {
		f.session.DocumentChanged(f.doc, host.Caret(f.doc.Len()))
	})

	f.session.DocumentChanged(f.doc, host.Caret(10))
	waitShown(t, f.widget)

	assert.True(t, f.session.HandleKey(key.KeyConfirm))

	assert.Equal(t, "hello @ali", f.doc.Text())
	span, ok := f.doc.TokenAt(6)
	require.True(t, ok)
	assert.Equal(t, token.Mention{DID: "did:ali", Handle: "ali"}, span.Tok)

	// The change notification deactivated the session: the caret now
	// sits after an atomic token, which cannot re-match.
	assert.False(t, f.session.State().Active)
}

func TestConfirmWithNoHighlightIsNoOp(t *testing.T) {
	f := newFixture(t, "hello @zzz", nil)
	f.source.serve("zzz") // no results: overlay never shows

	mutations := 0
	f.doc.OnChange(func() { mutations++ })

	f.session.DocumentChanged(f.doc, host.Caret(10))
	time.Sleep(20 * time.Millisecond)

	assert.True(t, f.session.HandleKey(key.KeyConfirm), "Enter is consumed while active")
	assert.Zero(t, mutations, "no highlighted item means no document mutation")
	assert.True(t, f.session.State().Active, "no state change either")
}

func TestHashtagConfirmInsertsHashtagToken(t *testing.T) {
	f := newFixture(t, "status #wo", nil)
	f.source.mu.Lock()
	f.source.results["wo"] = []suggest.Suggestion{{Label: "#work", Attrs: map[string]string{"tag": "work"}}}
	f.source.mu.Unlock()

	f.session.DocumentChanged(f.doc, host.Caret(10))
	waitShown(t, f.widget)

	assert.True(t, f.session.HandleKey(key.KeyConfirm))
	assert.Equal(t, "status #work", f.doc.Text())

	span, ok := f.doc.TokenAt(7)
	require.True(t, ok)
	assert.Equal(t, token.Hashtag{Tag: "work"}, span.Tok)
}

func TestDecorationRange(t *testing.T) {
	f := newFixture(t, "hello @ali", nil)

	_, _, ok := f.session.DecorationRange()
	assert.False(t, ok)

	f.session.DocumentChanged(f.doc, host.Caret(10))
	from, to, ok := f.session.DecorationRange()
	require.True(t, ok)
	assert.Equal(t, 6, from)
	assert.Equal(t, 10, to)
}

func TestRequireTextSuppressesBareTrigger(t *testing.T) {
	f := newFixture(t, "hello @", func(o *config.Options) { o.RequireText = true })

	f.session.DocumentChanged(f.doc, host.Caret(7))
	assert.False(t, f.session.State().Active)
}

func TestEmptyResultNeverShowsOverlay(t *testing.T) {
	f := newFixture(t, "hi @ali", nil)
	// No canned result for the query: the source returns nil, which
	// behaves as hide. A failing source has the same observable effect.
	f.session.DocumentChanged(f.doc, host.Caret(7))
	time.Sleep(20 * time.Millisecond)

	_, _, shown := f.widget.snapshot()
	assert.False(t, shown)
}

func TestCloseDestroysOverlay(t *testing.T) {
	f := newFixture(t, "hi @ali", nil)
	f.source.serve("ali", "ali")

	f.session.DocumentChanged(f.doc, host.Caret(7))
	waitShown(t, f.widget)

	f.session.Close()
	f.widget.mu.Lock()
	destroyed := f.widget.destroyed
	f.widget.mu.Unlock()
	assert.True(t, destroyed)

	// Everything after Close is inert.
	f.session.DocumentChanged(f.doc, host.Caret(7))
	assert.False(t, f.session.State().Active)
	assert.False(t, f.session.HandleKey(key.KeyNext))
}

func TestNewValidation(t *testing.T) {
	opts := config.DefaultOptions()
	doc := host.NewMemoryDocument("")
	w := &listWidget{}
	ov, err := overlay.NewController(listHooks(w), nil)
	require.NoError(t, err)

	_, err = New(opts, nil, doc, ov, nil)
	assert.ErrorIs(t, err, ErrMissingCollaborator)

	bad := opts
	bad.HashtagTrigger = '@'
	_, err = New(bad, newBlockingSource(), doc, ov, nil)
	assert.ErrorIs(t, err, config.ErrSameTrigger)
}
