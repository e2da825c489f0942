// Package trigger detects mention and hashtag trigger spans in line text.
//
// The matcher is pure: given the text of the current line up to the caret
// and the absolute offset of the line start, it reports the active trigger
// span, its kind, and the query text typed after the trigger character.
// It holds no state beyond the regexps compiled from its Config.
package trigger
