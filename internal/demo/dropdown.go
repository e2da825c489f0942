package demo

import (
	"sync"

	"github.com/dshills/mentions/internal/overlay"
	"github.com/dshills/mentions/internal/suggest"
)

// Dropdown is the demo's suggestion widget. The overlay controller
// drives it through the hooks below; the editor reads it when drawing.
type Dropdown struct {
	mu       sync.Mutex
	items    []suggest.Suggestion
	selected int
	visible  bool
	anchor   overlay.Anchor
}

// snapshot returns the state the renderer needs.
func (d *Dropdown) snapshot() (items []suggest.Suggestion, selected int, visible bool, anchor overlay.Anchor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.items, d.selected, d.visible, d.anchor
}

// Hooks returns overlay hooks operating on this dropdown.
func (d *Dropdown) Hooks() overlay.Hooks {
	return overlay.Hooks{
		Show: func(_ overlay.Widget, items []suggest.Suggestion, a overlay.Anchor) {
			d.mu.Lock()
			defer d.mu.Unlock()
			d.items = items
			d.selected = 0
			d.visible = true
			d.anchor = a
		},
		Hide: func(_ overlay.Widget) {
			d.mu.Lock()
			defer d.mu.Unlock()
			d.visible = false
			d.items = nil
		},
		Next: func(_ overlay.Widget) {
			d.mu.Lock()
			defer d.mu.Unlock()
			if len(d.items) > 0 {
				d.selected = (d.selected + 1) % len(d.items)
			}
		},
		Prev: func(_ overlay.Widget) {
			d.mu.Lock()
			defer d.mu.Unlock()
			if len(d.items) > 0 {
				d.selected = (d.selected - 1 + len(d.items)) % len(d.items)
			}
		},
		Selected: func(_ overlay.Widget) map[string]string {
			d.mu.Lock()
			defer d.mu.Unlock()
			if !d.visible || len(d.items) == 0 {
				return nil
			}
			return d.items[d.selected].Attrs
		},
		Destroy: func(_ overlay.Widget) {
			d.mu.Lock()
			defer d.mu.Unlock()
			d.visible = false
			d.items = nil
		},
	}
}
