// Package overlay owns the suggestion dropdown's lifecycle. Rendering
// and positioning are delegated to caller-supplied hooks; the
// controller guarantees a single reusable widget and a consistent
// visible/hidden state.
package overlay

import (
	"errors"
	"sync"

	"github.com/dshills/mentions/internal/logger"
	"github.com/dshills/mentions/internal/suggest"
	"github.com/dshills/mentions/internal/trigger"
)

// ErrMissingHook is returned when a required hook is absent.
var ErrMissingHook = errors.New("overlay: missing required hook")

// Widget is the caller's dropdown handle. The controller never looks
// inside it.
type Widget any

// Anchor tells the host where the dropdown belongs: the decorated
// trigger span and the class the host uses to find its rendered rect.
// Positioning from the rendered rect keeps the dropdown correct under
// scrolling and reflow.
type Anchor struct {
	From        int
	To          int
	Type        trigger.Type
	ActiveClass string
}

// Hooks are the caller-supplied widget operations. Create and Destroy
// are optional; everything else is required.
type Hooks struct {
	// Create builds the widget on first use. When nil, hooks receive a
	// nil Widget and manage their own instance.
	Create func() Widget
	// Show renders items into the widget near the anchor.
	Show func(w Widget, items []suggest.Suggestion, a Anchor)
	// Hide conceals the widget.
	Hide func(w Widget)
	// Next moves the highlight down one item.
	Next func(w Widget)
	// Prev moves the highlight up one item.
	Prev func(w Widget)
	// Selected returns the highlighted item's attributes, or nil.
	Selected func(w Widget) map[string]string
	// Destroy releases the widget.
	Destroy func(w Widget)
}

func (h Hooks) validate() error {
	if h.Show == nil || h.Hide == nil || h.Next == nil || h.Prev == nil || h.Selected == nil {
		return ErrMissingHook
	}
	return nil
}

// Controller drives one dropdown widget for one session. The widget is
// created lazily on the first Show and reused across activations.
type Controller struct {
	mu        sync.Mutex
	hooks     Hooks
	widget    Widget
	created   bool
	visible   bool
	destroyed bool
	log       *logger.Logger
}

// NewController validates the hooks and builds a controller. A nil log
// discards output.
func NewController(hooks Hooks, log *logger.Logger) (*Controller, error) {
	if err := hooks.validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Controller{hooks: hooks, log: log.WithComponent("overlay")}, nil
}

// Show renders the items near the anchor. An empty item list hides the
// widget instead. No-op after Destroy.
func (c *Controller) Show(items []suggest.Suggestion, a Anchor) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return
	}
	if len(items) == 0 {
		c.hideLocked()
		return
	}

	if !c.created {
		if c.hooks.Create != nil {
			c.widget = c.hooks.Create()
		}
		c.created = true
	}

	c.log.Debugf("show %d items for %s span [%d,%d)", len(items), a.Type, a.From, a.To)
	c.hooks.Show(c.widget, items, a)
	c.visible = true
}

// Hide conceals the widget. No-op when already hidden or destroyed.
func (c *Controller) Hide() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hideLocked()
}

func (c *Controller) hideLocked() {
	if c.destroyed || !c.visible {
		return
	}
	c.log.Debugf("hide")
	c.hooks.Hide(c.widget)
	c.visible = false
}

// Visible reports whether the dropdown is currently shown.
func (c *Controller) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// Next moves the highlight down. No-op while hidden.
func (c *Controller) Next() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed || !c.visible {
		return
	}
	c.hooks.Next(c.widget)
}

// Prev moves the highlight up. No-op while hidden.
func (c *Controller) Prev() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed || !c.visible {
		return
	}
	c.hooks.Prev(c.widget)
}

// SelectedAttrs returns the highlighted item's attributes, or nil when
// the dropdown is hidden or nothing is highlighted.
func (c *Controller) SelectedAttrs() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed || !c.visible {
		return nil
	}
	return c.hooks.Selected(c.widget)
}

// Destroy hides and releases the widget. Idempotent; the controller is
// unusable afterwards.
func (c *Controller) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return
	}
	c.hideLocked()
	if c.created && c.hooks.Destroy != nil {
		c.hooks.Destroy(c.widget)
	}
	c.widget = nil
	c.destroyed = true
}
