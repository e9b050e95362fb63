// Package simerr holds the error taxonomy shared by the simulation engines.
//
// Malformed input fails fast with one of the sentinel errors below (wrapped
// with context, match with errors.Is). Everything a host should show to a
// user travels as a Warning on the result instead.
package simerr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRegion: requested genome window is out of bounds or has a
	// non-positive length.
	ErrInvalidRegion = errors.New("invalid genome region")
	// ErrUnsupportedPamPattern: PAM pattern is empty, too short/long, or uses
	// a non-IUPAC symbol.
	ErrUnsupportedPamPattern = errors.New("unsupported PAM pattern")
	// ErrInvalidSequence: a sequence contains characters outside the allowed alphabet.
	ErrInvalidSequence = errors.New("invalid sequence")
	// ErrInvalidInput: programmer error (negative length, empty primer, ...).
	ErrInvalidInput = errors.New("invalid input")
)

// Region wraps ErrInvalidRegion with the offending window.
func Region(start, length, total int) error {
	return fmt.Errorf("%w: start=%d length=%d genome=%d", ErrInvalidRegion, start, length, total)
}

// Input wraps ErrInvalidInput with a formatted reason.
func Input(format string, a ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, a...)...)
}
