// Package suggest defines the suggestion-source boundary and a static
// in-memory directory source for hosts without a backend.
package suggest

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/dshills/mentions/internal/trigger"
)

// Suggestion is one candidate in the overlay list. Attrs carries the
// fields the selected token is built from (did/handle for mentions,
// tag for hashtags).
type Suggestion struct {
	Label string
	Attrs map[string]string
}

// Source produces suggestions for a query. Implementations may be
// network-backed; the session runs Suggest off the keystroke path and
// discards stale results, so a slow or failing source only means the
// overlay never shows.
type Source interface {
	Suggest(ctx context.Context, typ trigger.Type, query string, limit int) ([]Suggestion, error)
}

// Person is a directory entry for mention suggestions.
type Person struct {
	DID         string
	Handle      string
	DisplayName string
}

// Directory is a static Source matching by case-insensitive prefix on
// handle or display name for mentions, and on tag name for hashtags.
type Directory struct {
	people []Person
	tags   []string
}

// NewDirectory builds a directory source. Entries without a DID get a
// generated one.
func NewDirectory(people []Person, tags []string) *Directory {
	out := make([]Person, len(people))
	copy(out, people)
	for i := range out {
		if out[i].DID == "" {
			out[i].DID = "did:mem:" + uuid.NewString()
		}
	}

	sorted := make([]string, len(tags))
	copy(sorted, tags)
	sort.Strings(sorted)

	return &Directory{people: out, tags: sorted}
}

// Suggest implements Source.
func (d *Directory) Suggest(_ context.Context, typ trigger.Type, query string, limit int) ([]Suggestion, error) {
	if limit <= 0 {
		return nil, nil
	}
	q := strings.ToLower(query)

	var out []Suggestion
	switch typ {
	case trigger.TypeMention:
		for _, p := range d.people {
			if !matchesPerson(p, q) {
				continue
			}
			out = append(out, Suggestion{
				Label: p.DisplayName + " (@" + p.Handle + ")",
				Attrs: map[string]string{"did": p.DID, "handle": p.Handle},
			})
			if len(out) == limit {
				break
			}
		}
	case trigger.TypeTag:
		for _, tag := range d.tags {
			if !strings.HasPrefix(strings.ToLower(tag), q) {
				continue
			}
			out = append(out, Suggestion{
				Label: "#" + tag,
				Attrs: map[string]string{"tag": tag},
			})
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func matchesPerson(p Person, q string) bool {
	if q == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(p.Handle), q) ||
		strings.HasPrefix(strings.ToLower(p.DisplayName), q)
}
