package host

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/mentions/internal/token"
)

// TokenSpan records an atomic token occupying [From, To) of the text.
type TokenSpan struct {
	From int
	To   int
	Tok  token.Token
}

// MemoryDocument is a linear text document with atomic token spans.
// Spans never overlap and edits may not split them. Not safe for
// concurrent use; hosts serialize access the way editors do.
type MemoryDocument struct {
	text     string
	spans    []TokenSpan
	onChange []func()
}

// NewMemoryDocument creates a document with the given initial text and
// no tokens.
func NewMemoryDocument(text string) *MemoryDocument {
	return &MemoryDocument{text: text}
}

// Len returns the document length in bytes.
func (d *MemoryDocument) Len() int {
	return len(d.text)
}

// Text returns the raw rendered text, tokens included.
func (d *MemoryDocument) Text() string {
	return d.text
}

// Tokens returns a copy of the token spans in document order.
func (d *MemoryDocument) Tokens() []TokenSpan {
	out := make([]TokenSpan, len(d.spans))
	copy(out, d.spans)
	return out
}

// TokenAt returns the token span covering the offset, if any.
func (d *MemoryDocument) TokenAt(at int) (TokenSpan, bool) {
	for _, s := range d.spans {
		if at >= s.From && at < s.To {
			return s, true
		}
	}
	return TokenSpan{}, false
}

// OnChange registers a hook invoked after every mutation.
func (d *MemoryDocument) OnChange(fn func()) {
	d.onChange = append(d.onChange, fn)
}

func (d *MemoryDocument) notify() {
	for _, fn := range d.onChange {
		fn()
	}
}

// TextRange returns the text in [from, to) with token bytes replaced by
// Sentinel. Out-of-bounds offsets are clamped; an inverted range yields
// an empty string.
func (d *MemoryDocument) TextRange(from, to int) string {
	from = clamp(from, 0, len(d.text))
	to = clamp(to, 0, len(d.text))
	if from >= to {
		return ""
	}

	buf := []byte(d.text[from:to])
	for _, s := range d.spans {
		lo := clamp(s.From, from, to)
		hi := clamp(s.To, from, to)
		for i := lo; i < hi; i++ {
			buf[i-from] = Sentinel
		}
	}
	return string(buf)
}

// LineStartOffset returns the offset of the first byte of the line
// containing at.
func (d *MemoryDocument) LineStartOffset(at int) int {
	at = clamp(at, 0, len(d.text))
	if i := strings.LastIndexByte(d.text[:at], '\n'); i >= 0 {
		return i + 1
	}
	return 0
}

// splitsSpan reports whether the offset falls strictly inside a span.
func (d *MemoryDocument) splitsSpan(at int) bool {
	for _, s := range d.spans {
		if at > s.From && at < s.To {
			return true
		}
	}
	return false
}

// InsertText inserts plain text at the offset, shifting later spans.
func (d *MemoryDocument) InsertText(at int, s string) error {
	if at < 0 || at > len(d.text) {
		return fmt.Errorf("%w: insert at %d, len %d", ErrInvalidRange, at, len(d.text))
	}
	if d.splitsSpan(at) {
		return fmt.Errorf("%w: insert at %d", ErrAtomicSpan, at)
	}

	d.text = d.text[:at] + s + d.text[at:]
	d.shiftSpans(at, len(s))
	d.notify()
	return nil
}

// DeleteRange removes [from, to). A range touching any part of an
// atomic span removes that span as a unit, widening the deletion.
func (d *MemoryDocument) DeleteRange(from, to int) error {
	if from < 0 || to > len(d.text) || from > to {
		return fmt.Errorf("%w: delete [%d,%d)", ErrInvalidRange, from, to)
	}

	// Widen to whole spans: tokens are atomic.
	for _, s := range d.spans {
		if s.From < to && s.To > from {
			if s.From < from {
				from = s.From
			}
			if s.To > to {
				to = s.To
			}
		}
	}
	if from == to {
		return nil
	}

	kept := d.spans[:0]
	for _, s := range d.spans {
		if s.From >= from && s.To <= to {
			continue
		}
		kept = append(kept, s)
	}
	d.spans = kept

	d.text = d.text[:from] + d.text[to:]
	d.shiftSpans(from, from-to)
	d.notify()
	return nil
}

// ReplaceWithToken replaces the plain text in [from, to) with an atomic
// token. The range may not touch an existing span.
func (d *MemoryDocument) ReplaceWithToken(from, to int, tok token.Token) error {
	if from < 0 || to > len(d.text) || from > to {
		return fmt.Errorf("%w: replace [%d,%d)", ErrInvalidRange, from, to)
	}
	for _, s := range d.spans {
		if s.From < to && s.To > from {
			return fmt.Errorf("%w: replace [%d,%d)", ErrAtomicSpan, from, to)
		}
	}

	rendered := tok.Render()
	d.text = d.text[:from] + rendered + d.text[to:]
	d.shiftSpans(from, len(rendered)-(to-from))

	d.spans = append(d.spans, TokenSpan{From: from, To: from + len(rendered), Tok: tok})
	sort.Slice(d.spans, func(i, j int) bool { return d.spans[i].From < d.spans[j].From })

	d.notify()
	return nil
}

// shiftSpans moves spans at or after the edit point by delta.
func (d *MemoryDocument) shiftSpans(at, delta int) {
	for i := range d.spans {
		if d.spans[i].From >= at {
			d.spans[i].From += delta
			d.spans[i].To += delta
		}
	}
}

// Marshal serializes the document to JSON: the rendered text plus each
// token span's start offset and wire form. Span ends are implied by the
// token's rendered length.
func (d *MemoryDocument) Marshal() ([]byte, error) {
	out, err := sjson.SetBytes([]byte(`{}`), "text", d.text)
	if err != nil {
		return nil, err
	}
	out, err = sjson.SetRawBytes(out, "tokens", []byte(`[]`))
	if err != nil {
		return nil, err
	}
	for _, s := range d.spans {
		enc, err := token.Encode(s.Tok)
		if err != nil {
			return nil, err
		}
		entry, err := sjson.SetBytes([]byte(`{}`), "from", s.From)
		if err != nil {
			return nil, err
		}
		entry, err = sjson.SetRawBytes(entry, "token", enc)
		if err != nil {
			return nil, err
		}
		out, err = sjson.SetRawBytes(out, "tokens.-1", entry)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Unmarshal parses a document serialized by Marshal. Each token span is
// checked against the text it claims to cover.
func Unmarshal(data []byte) (*MemoryDocument, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed document JSON", ErrInvalidRange)
	}
	d := NewMemoryDocument(gjson.GetBytes(data, "text").String())

	var loopErr error
	gjson.GetBytes(data, "tokens").ForEach(func(_, entry gjson.Result) bool {
		tok, err := token.Decode([]byte(entry.Get("token").Raw))
		if err != nil {
			loopErr = err
			return false
		}
		from := int(entry.Get("from").Int())
		to := from + len(tok.Render())
		if from < 0 || to > len(d.text) || d.text[from:to] != tok.Render() {
			loopErr = fmt.Errorf("%w: token span [%d,%d) does not match text", ErrInvalidRange, from, to)
			return false
		}
		d.spans = append(d.spans, TokenSpan{From: from, To: to, Tok: tok})
		return true
	})
	if loopErr != nil {
		return nil, loopErr
	}

	sort.Slice(d.spans, func(i, j int) bool { return d.spans[i].From < d.spans[j].From })
	return d, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
