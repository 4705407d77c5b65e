package corpus

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by collection lookups for unknown names.
	ErrNotFound = errors.New("not found")

	// ErrTypeMismatch is returned when an entity is compared against a value
	// that is neither an entity nor a name string.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrMissingPath is returned when a file is created with neither an
	// audio path nor a transcript path.
	ErrMissingPath = errors.New("file needs an audio path or a transcript path")
)

// TextParseError reports an unreadable or undecodable plain transcript.
type TextParseError struct {
	Path string
	Err  error
}

func (e *TextParseError) Error() string {
	return fmt.Sprintf("transcript %s: %v", e.Path, e.Err)
}

func (e *TextParseError) Unwrap() error { return e.Err }

// TextGridParseError reports a malformed tiered annotation file.
type TextGridParseError struct {
	Path string
	Err  error
}

func (e *TextGridParseError) Error() string {
	return fmt.Sprintf("textgrid %s: %v", e.Path, e.Err)
}

func (e *TextGridParseError) Unwrap() error { return e.Err }
