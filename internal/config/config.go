// Package config holds the suggestion engine's options: trigger
// characters, debounce delay, suggestion cap, and the presentational
// class names hosts use for decoration and widget positioning.
package config

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/dshills/mentions/internal/trigger"
)

// Package-level errors.
var (
	// ErrSameTrigger means mention and hashtag triggers are identical.
	ErrSameTrigger = errors.New("config: mention and hashtag triggers must differ")
	// ErrBadTrigger means a trigger is not exactly one character.
	ErrBadTrigger = errors.New("config: trigger must be a single character")
	// ErrBadLimit means the suggestion cap is not positive.
	ErrBadLimit = errors.New("config: max suggestions must be positive")
	// ErrBadDelay means the debounce delay is negative.
	ErrBadDelay = errors.New("config: delay must not be negative")
)

// Options configures a suggestion session. Validate before use.
type Options struct {
	// MentionTrigger starts a mention query. Default '@'.
	MentionTrigger rune
	// HashtagTrigger starts a hashtag query. Default '#'.
	HashtagTrigger rune
	// AllowSpace permits one embedded space in mention queries.
	AllowSpace bool
	// RequireText requires at least one query character before a
	// mention activates.
	RequireText bool
	// MaxSuggestions is the advisory cap passed to the source.
	MaxSuggestions int
	// Delay is the debounce quiet period for suggestion fetches.
	Delay time.Duration
	// ActiveClass is the presentational class for the decorated
	// trigger span.
	ActiveClass string
	// SuggestionTextClass is the presentational class for suggestion
	// item text.
	SuggestionTextClass string
}

// DefaultOptions returns the standard options.
func DefaultOptions() Options {
	return Options{
		MentionTrigger:      '@',
		HashtagTrigger:      '#',
		AllowSpace:          true,
		RequireText:         false,
		MaxSuggestions:      10,
		Delay:               500 * time.Millisecond,
		ActiveClass:         "suggestion-item-active",
		SuggestionTextClass: "suggestion-text",
	}
}

// Validate checks the options for internal consistency.
func (o Options) Validate() error {
	if o.MentionTrigger == o.HashtagTrigger {
		return ErrSameTrigger
	}
	if o.MaxSuggestions <= 0 {
		return ErrBadLimit
	}
	if o.Delay < 0 {
		return ErrBadDelay
	}
	return nil
}

// TriggerConfig derives the matcher configuration.
func (o Options) TriggerConfig() trigger.Config {
	return trigger.Config{
		MentionRune: o.MentionTrigger,
		HashtagRune: o.HashtagTrigger,
		AllowSpace:  o.AllowSpace,
		RequireText: o.RequireText,
	}
}

// fileOptions is the on-disk YAML shape. Pointer fields distinguish
// "absent" from zero so file values overlay defaults.
type fileOptions struct {
	MentionTrigger      string `koanf:"mention_trigger"`
	HashtagTrigger      string `koanf:"hashtag_trigger"`
	AllowSpace          *bool  `koanf:"allow_space"`
	RequireText         *bool  `koanf:"require_text"`
	MaxSuggestions      *int   `koanf:"max_suggestions"`
	DelayMS             *int   `koanf:"delay_ms"`
	ActiveClass         string `koanf:"active_class"`
	SuggestionTextClass string `koanf:"suggestion_text_class"`
}

// Load reads a YAML options file over the defaults and validates the
// result.
func Load(path string) (Options, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Options{}, fmt.Errorf("config: load %s: %w", path, err)
	}

	var fo fileOptions
	if err := k.Unmarshal("", &fo); err != nil {
		return Options{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	opts := DefaultOptions()
	if fo.MentionTrigger != "" {
		r, err := singleRune(fo.MentionTrigger)
		if err != nil {
			return Options{}, err
		}
		opts.MentionTrigger = r
	}
	if fo.HashtagTrigger != "" {
		r, err := singleRune(fo.HashtagTrigger)
		if err != nil {
			return Options{}, err
		}
		opts.HashtagTrigger = r
	}
	if fo.AllowSpace != nil {
		opts.AllowSpace = *fo.AllowSpace
	}
	if fo.RequireText != nil {
		opts.RequireText = *fo.RequireText
	}
	if fo.MaxSuggestions != nil {
		opts.MaxSuggestions = *fo.MaxSuggestions
	}
	if fo.DelayMS != nil {
		opts.Delay = time.Duration(*fo.DelayMS) * time.Millisecond
	}
	if fo.ActiveClass != "" {
		opts.ActiveClass = fo.ActiveClass
	}
	if fo.SuggestionTextClass != "" {
		opts.SuggestionTextClass = fo.SuggestionTextClass
	}

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func singleRune(s string) (rune, error) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, fmt.Errorf("%w: %q", ErrBadTrigger, s)
	}
	return r, nil
}
