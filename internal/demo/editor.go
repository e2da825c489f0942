package demo

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/mentions/internal/config"
	"github.com/dshills/mentions/internal/host"
	"github.com/dshills/mentions/internal/key"
	"github.com/dshills/mentions/internal/logger"
	"github.com/dshills/mentions/internal/overlay"
	"github.com/dshills/mentions/internal/session"
	"github.com/dshills/mentions/internal/suggest"
)

// Editor is the demo host: one document, one caret, one session.
type Editor struct {
	opts     config.Options
	doc      *host.MemoryDocument
	caret    int
	sess     *session.Session
	dropdown *Dropdown
	screen   tcell.Screen
	log      *logger.Logger
	savePath string
}

// NewEditor wires a session over a fresh or loaded document.
func NewEditor(opts config.Options, src suggest.Source, initial *host.MemoryDocument, savePath string, log *logger.Logger) (*Editor, error) {
	if log == nil {
		log = logger.Nop()
	}
	doc := initial
	if doc == nil {
		doc = host.NewMemoryDocument("")
	}

	dd := &Dropdown{}
	ov, err := overlay.NewController(dd.Hooks(), log)
	if err != nil {
		return nil, err
	}

	sess, err := session.New(opts, src, doc, ov, log)
	if err != nil {
		return nil, err
	}

	return &Editor{
		opts:     opts,
		doc:      doc,
		caret:    doc.Len(),
		sess:     sess,
		dropdown: dd,
		log:      log.WithComponent("demo"),
		savePath: savePath,
	}, nil
}

// Run enters the terminal event loop until Ctrl+C.
func (e *Editor) Run() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("demo: create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("demo: init screen: %w", err)
	}
	e.screen = screen
	defer func() {
		screen.Fini()
		e.sess.Close()
		e.printDocument(os.Stdout)
	}()

	e.notifyChanged()

	for {
		e.render()
		switch ev := screen.PollEvent().(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			if done := e.handleKey(ev); done {
				return nil
			}
		}
	}
}

// handleKey routes one key event. Returns true when the editor should
// exit.
func (e *Editor) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return true
	case tcell.KeyCtrlS:
		e.save()
		return false
	}

	// The session gets first refusal on the logical keys.
	if lk := key.FromTcell(ev); lk != key.KeyNone {
		from, _, active := e.sess.DecorationRange()
		if e.sess.HandleKey(lk) {
			if lk == key.KeyConfirm && active {
				// The replace already ran; land the caret after the
				// inserted token.
				if span, ok := e.doc.TokenAt(from); ok {
					e.caret = span.To
				}
				e.notifyChanged()
			}
			return false
		}
	}

	switch ev.Key() {
	case tcell.KeyRune:
		if err := e.doc.InsertText(e.caret, string(ev.Rune())); err != nil {
			e.log.WithError(err).Warnf("insert rejected")
			return false
		}
		e.caret += len(string(ev.Rune()))
		e.notifyChanged()
	case tcell.KeyEnter:
		if err := e.doc.InsertText(e.caret, "\n"); err == nil {
			e.caret++
			e.notifyChanged()
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		e.backspace()
	case tcell.KeyLeft:
		e.moveLeft()
	case tcell.KeyRight:
		e.moveRight()
	}
	return false
}

// backspace deletes the byte before the caret, or the whole token the
// caret sits after.
func (e *Editor) backspace() {
	if e.caret == 0 {
		return
	}
	from := e.caret - 1
	if span, ok := e.doc.TokenAt(e.caret - 1); ok {
		from = span.From
	}
	if err := e.doc.DeleteRange(from, e.caret); err != nil {
		e.log.WithError(err).Warnf("delete rejected")
		return
	}
	e.caret = from
	e.notifyChanged()
}

// moveLeft moves the caret one position left, jumping whole tokens.
func (e *Editor) moveLeft() {
	if e.caret == 0 {
		return
	}
	e.caret--
	if span, ok := e.doc.TokenAt(e.caret); ok {
		e.caret = span.From
	}
	e.notifyChanged()
}

// moveRight moves the caret one position right, jumping whole tokens.
func (e *Editor) moveRight() {
	if e.caret >= e.doc.Len() {
		return
	}
	if span, ok := e.doc.TokenAt(e.caret); ok {
		e.caret = span.To
	} else {
		e.caret++
	}
	e.notifyChanged()
}

// notifyChanged re-runs the state machine after any document or caret
// change.
func (e *Editor) notifyChanged() {
	e.sess.DocumentChanged(e.doc, host.Caret(e.caret))
}

// save writes the serialized document to the configured path.
func (e *Editor) save() {
	if e.savePath == "" {
		return
	}
	data, err := e.doc.Marshal()
	if err != nil {
		e.log.WithError(err).Errorf("marshal document")
		return
	}
	if err := os.WriteFile(e.savePath, data, 0o644); err != nil {
		e.log.WithError(err).Errorf("save document")
		return
	}
	e.log.Infof("saved %s", e.savePath)
}
