// Package token defines the atomic inline tokens inserted in place of a
// matched trigger span, and their JSON wire form.
package token

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Kind identifies the token variant.
type Kind int

const (
	// KindMention is a user mention token.
	KindMention Kind = iota
	// KindHashtag is a hashtag token.
	KindHashtag
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindMention:
		return "mention"
	case KindHashtag:
		return "hashtag"
	default:
		return "unknown"
	}
}

// ErrUnknownKind is returned when decoding a token with an
// unrecognized kind field.
var ErrUnknownKind = errors.New("token: unknown kind")

// Token is an atomic inline document element. Tokens are not editable
// inside and are replaced or removed as a unit.
type Token interface {
	// Kind returns the token variant.
	Kind() Kind
	// Render returns the visible text of the token.
	Render() string
	// Attrs returns the token's attributes as a flat string map.
	Attrs() map[string]string
}

// Mention carries a stable identifier and the handle it renders as.
type Mention struct {
	DID    string
	Handle string
}

// Kind returns KindMention.
func (m Mention) Kind() Kind { return KindMention }

// Render returns "@handle".
func (m Mention) Render() string { return "@" + m.Handle }

// Attrs returns the did and handle attributes.
func (m Mention) Attrs() map[string]string {
	return map[string]string{"did": m.DID, "handle": m.Handle}
}

// Hashtag carries a bare tag name.
type Hashtag struct {
	Tag string
}

// Kind returns KindHashtag.
func (h Hashtag) Kind() Kind { return KindHashtag }

// Render returns "#tag".
func (h Hashtag) Render() string { return "#" + h.Tag }

// Attrs returns the tag attribute.
func (h Hashtag) Attrs() map[string]string {
	return map[string]string{"tag": h.Tag}
}

// FromAttrs builds a token of the given kind from selection attributes.
func FromAttrs(kind Kind, attrs map[string]string) (Token, error) {
	switch kind {
	case KindMention:
		return Mention{DID: attrs["did"], Handle: attrs["handle"]}, nil
	case KindHashtag:
		return Hashtag{Tag: attrs["tag"]}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
}

// Encode serializes a token to its JSON wire form, for example
// {"kind":"mention","attrs":{"did":"...","handle":"ali"}}.
func Encode(t Token) ([]byte, error) {
	out, err := sjson.SetBytes([]byte(`{}`), "kind", t.Kind().String())
	if err != nil {
		return nil, err
	}
	for k, v := range t.Attrs() {
		out, err = sjson.SetBytes(out, "attrs."+k, v)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Decode parses a token from its JSON wire form. Unknown attribute
// fields are ignored; a missing or unknown kind is an error.
func Decode(data []byte) (Token, error) {
	kind := gjson.GetBytes(data, "kind").String()
	attrs := gjson.GetBytes(data, "attrs")
	switch kind {
	case "mention":
		return Mention{
			DID:    attrs.Get("did").String(),
			Handle: attrs.Get("handle").String(),
		}, nil
	case "hashtag":
		return Hashtag{Tag: attrs.Get("tag").String()}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
