package trigger

import (
	"regexp"
)

// Type identifies the kind of trigger that matched.
type Type int

const (
	// TypeNone means no trigger is active.
	TypeNone Type = iota
	// TypeMention is an @-style mention trigger.
	TypeMention
	// TypeTag is a #-style hashtag trigger.
	TypeTag
)

// String returns the string representation of the trigger type.
func (t Type) String() string {
	switch t {
	case TypeMention:
		return "mention"
	case TypeTag:
		return "tag"
	default:
		return "none"
	}
}

// Config controls how triggers are detected. It is immutable once a
// Matcher has been built from it.
type Config struct {
	// MentionRune is the character that starts a mention query.
	MentionRune rune
	// HashtagRune is the character that starts a hashtag query.
	HashtagRune rune
	// AllowSpace permits a single embedded space in mention queries.
	AllowSpace bool
	// RequireText requires at least one query character before a
	// mention activates.
	RequireText bool
}

// DefaultConfig returns the standard trigger configuration.
func DefaultConfig() Config {
	return Config{
		MentionRune: '@',
		HashtagRune: '#',
		AllowSpace:  true,
		RequireText: false,
	}
}

// Match describes an active trigger span. From and To are absolute
// document offsets with From <= To; To is always the caret offset.
type Match struct {
	From  int
	To    int
	Query string
	Type  Type
}

// Matcher evaluates trigger patterns against line text. Safe for
// concurrent use; it is immutable after construction.
type Matcher struct {
	cfg     Config
	mention *regexp.Regexp
	tag     *regexp.Regexp
}

// Word characters permitted inside a query: letters, digits, underscore,
// hyphen and plus.
const wordClass = `[\w+-]`

// NewMatcher compiles the mention and hashtag patterns for cfg.
// Trigger runes are regexp-quoted, so metacharacter triggers are safe
// even though choosing sensible ones is the caller's job.
func NewMatcher(cfg Config) *Matcher {
	mentionCore := wordClass + `*`
	if cfg.RequireText {
		mentionCore = wordClass + `+`
	}
	if cfg.AllowSpace {
		mentionCore += `(?: ` + wordClass + `*)?`
	}

	mentionPat := `(?:^|\s)(` + regexp.QuoteMeta(string(cfg.MentionRune)) + `(` + mentionCore + `))$`
	tagPat := `(?:^|\s)(` + regexp.QuoteMeta(string(cfg.HashtagRune)) + `(` + wordClass + `+))$`

	return &Matcher{
		cfg:     cfg,
		mention: regexp.MustCompile(mentionPat),
		tag:     regexp.MustCompile(tagPat),
	}
}

// Config returns the configuration the matcher was built from.
func (m *Matcher) Config() Config {
	return m.cfg
}

// Match evaluates both patterns against the text of the current line up
// to the caret. lineStart is the absolute offset of the first byte of
// that text. Mention takes priority over tag when both could match.
// Returns nil when no trigger is active at the caret.
func (m *Matcher) Match(lineBeforeCaret string, lineStart int) *Match {
	if lineBeforeCaret == "" {
		return nil
	}
	if r := m.matchOne(m.mention, lineBeforeCaret, lineStart, TypeMention); r != nil {
		return r
	}
	return m.matchOne(m.tag, lineBeforeCaret, lineStart, TypeTag)
}

// matchOne runs a single anchored pattern. Submatch 1 is the trigger
// span without the whitespace anchor, submatch 2 the query text.
func (m *Matcher) matchOne(re *regexp.Regexp, text string, lineStart int, typ Type) *Match {
	loc := re.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil
	}
	spanStart, spanEnd := loc[2], loc[3]
	queryStart, queryEnd := loc[4], loc[5]
	return &Match{
		From:  lineStart + spanStart,
		To:    lineStart + spanEnd,
		Query: text[queryStart:queryEnd],
		Type:  typ,
	}
}
