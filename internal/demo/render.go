package demo

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/mentions/internal/token"
)

var (
	styleText      = tcell.StyleDefault
	styleToken     = tcell.StyleDefault.Foreground(tcell.ColorBlue).Bold(true)
	styleActive    = tcell.StyleDefault.Underline(true).Foreground(tcell.ColorTeal)
	styleItem      = tcell.StyleDefault.Background(tcell.ColorDarkSlateGray)
	styleItemSel   = tcell.StyleDefault.Background(tcell.ColorDarkSlateGray).Reverse(true)
	styleStatusBar = tcell.StyleDefault.Reverse(true)
)

// render draws the document, the active-span decoration, the caret,
// and the dropdown anchored under the decorated span.
func (e *Editor) render() {
	e.screen.Clear()

	decoFrom, decoTo, decorated := e.sess.DecorationRange()

	// Anchor screen position, resolved while drawing the decorated
	// span. This is the "rendered rect" the dropdown hangs off.
	anchorX, anchorY := -1, -1

	text := e.doc.Text()
	x, y := 0, 0
	for i, r := range text {
		if r == '\n' {
			x = 0
			y++
			continue
		}

		style := styleText
		if _, ok := e.doc.TokenAt(i); ok {
			style = styleToken
		}
		if decorated && i >= decoFrom && i < decoTo {
			style = styleActive
			if i == decoFrom {
				anchorX, anchorY = x, y
			}
		}
		e.screen.SetContent(x, y, r, nil, style)
		x++
	}

	e.drawDropdown(anchorX, anchorY)
	e.drawStatus()
	e.screen.ShowCursor(e.caretScreenPos())
	e.screen.Show()
}

// caretScreenPos maps the caret offset to screen coordinates.
func (e *Editor) caretScreenPos() (int, int) {
	text := e.doc.Text()[:e.caret]
	y := strings.Count(text, "\n")
	line := text
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		line = text[i+1:]
	}
	return utf8.RuneCountInString(line), y
}

// drawDropdown paints the widget one row below the anchor.
func (e *Editor) drawDropdown(anchorX, anchorY int) {
	items, selected, visible, _ := e.dropdown.snapshot()
	if !visible || anchorX < 0 {
		return
	}

	width := 0
	for _, it := range items {
		if len(it.Label) > width {
			width = len(it.Label)
		}
	}

	for row, it := range items {
		style := styleItem
		if row == selected {
			style = styleItemSel
		}
		label := it.Label + strings.Repeat(" ", width-len(it.Label))
		for col, r := range label {
			e.screen.SetContent(anchorX+col, anchorY+1+row, r, nil, style)
		}
	}
}

// drawStatus paints the help line at the bottom of the screen.
func (e *Editor) drawStatus() {
	w, h := e.screen.Size()
	msg := fmt.Sprintf(" %c mention  %c tag | arrows navigate, enter select, esc dismiss | ctrl+s save, ctrl+c quit ",
		e.opts.MentionTrigger, e.opts.HashtagTrigger)
	for col := 0; col < w; col++ {
		r := ' '
		if col < len(msg) {
			r = rune(msg[col])
		}
		e.screen.SetContent(col, h-1, r, nil, styleStatusBar)
	}
}

var (
	printMention = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	printHashtag = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	printHeading = lipgloss.NewStyle().Faint(true)
)

// printDocument writes the final document to w with tokens styled, plus
// a token summary. Runs after the screen is torn down.
func (e *Editor) printDocument(w io.Writer) {
	text := e.doc.Text()
	if text == "" {
		return
	}

	var b strings.Builder
	last := 0
	for _, span := range e.doc.Tokens() {
		b.WriteString(text[last:span.From])
		styled := printHashtag
		if span.Tok.Kind() == token.KindMention {
			styled = printMention
		}
		b.WriteString(styled.Render(text[span.From:span.To]))
		last = span.To
	}
	b.WriteString(text[last:])

	fmt.Fprintln(w, printHeading.Render("document:"))
	fmt.Fprintln(w, b.String())

	if spans := e.doc.Tokens(); len(spans) > 0 {
		fmt.Fprintln(w, printHeading.Render("tokens:"))
		for _, span := range spans {
			fmt.Fprintf(w, "  %-8s %s %v\n", span.Tok.Kind(), span.Tok.Render(), span.Tok.Attrs())
		}
	}
}
