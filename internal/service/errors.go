package service

import "errors"

var (
	// ErrEmptyText is returned for blank reminder text
	ErrEmptyText = errors.New("reminder text is empty")
	// ErrUnsupportedLanguage is returned for a language outside the supported set
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrUnknownTimezone is returned for a timezone outside the catalog
	ErrUnknownTimezone = errors.New("unknown timezone")
)
