package engine

import (
	"errors"
	"fmt"
)

// Kind classifies why processing a path failed.
type Kind int

// Error kinds.
const (
	KindUnknown Kind = iota
	// KindFilesystemAccess means the scanned directory could not be listed.
	KindFilesystemAccess
	// KindFileRead means an input file could not be opened or read.
	KindFileRead
	// KindParse means an input file is not well-formed delimited text.
	KindParse
	// KindFileWrite means an output file could not be created or written.
	KindFileWrite
)

func (k Kind) String() string {
	switch k {
	case KindFilesystemAccess:
		return "FilesystemAccessError"
	case KindFileRead:
		return "FileReadError"
	case KindParse:
		return "ParseError"
	case KindFileWrite:
		return "FileWriteError"
	default:
		return "UnknownError"
	}
}

// Sentinels for errors.Is checks against a kind, e.g.
// errors.Is(err, engine.ErrParse).
var (
	ErrFilesystemAccess = &Error{Kind: KindFilesystemAccess}
	ErrFileRead         = &Error{Kind: KindFileRead}
	ErrParse            = &Error{Kind: KindParse}
	ErrFileWrite        = &Error{Kind: KindFileWrite}
)

// Error is a failure tied to one filesystem path.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind whose path and cause are unset,
// which is what the package sentinels look like.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Path == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
