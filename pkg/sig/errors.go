package sig

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Use errors.Is to test for them.
var (
	ErrPatternNotFound = errors.New("pattern not found")
	ErrInvalidMask     = errors.New("mask must be as long as the signature")
	ErrEmptySignature  = errors.New("empty signature")
	ErrAmbiguousMatch  = errors.New("pattern matches more than once")
)

// ScanError describes a failed scan.
type ScanError struct {
	Signature Signature
	Start     int // First candidate offset examined
	End       int // Last candidate offset examined, -1 when nothing was examined
	Err       error
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	if e.End < e.Start {
		return fmt.Sprintf("sig: %s [%s]: empty scan range from offset 0x%X", e.Err, e.Signature, e.Start)
	}
	return fmt.Sprintf("sig: %s [%s] in range 0x%X-0x%X", e.Err, e.Signature, e.Start, e.End)
}

// Unwrap returns the underlying sentinel.
func (e *ScanError) Unwrap() error {
	return e.Err
}

// MaskError reports a mask whose length differs from its signature.
type MaskError struct {
	SignatureLen int
	MaskLen      int
}

// Error implements the error interface.
func (e *MaskError) Error() string {
	return fmt.Sprintf("sig: %s (signature %d bytes, mask %d bytes)", ErrInvalidMask, e.SignatureLen, e.MaskLen)
}

// Unwrap returns ErrInvalidMask.
func (e *MaskError) Unwrap() error {
	return ErrInvalidMask
}

// AmbiguousMatchError is returned by FindUnique when a signature matches at
// more than one offset.
type AmbiguousMatchError struct {
	Signature Signature
	Offsets   []int
}

// Error implements the error interface.
func (e *AmbiguousMatchError) Error() string {
	offs := make([]string, 0, len(e.Offsets))
	for _, o := range e.Offsets {
		offs = append(offs, fmt.Sprintf("0x%X", o))
	}
	return fmt.Sprintf("sig: %s [%s]: %d matches at %s", ErrAmbiguousMatch, e.Signature, len(e.Offsets), strings.Join(offs, ", "))
}

// Unwrap returns ErrAmbiguousMatch.
func (e *AmbiguousMatchError) Unwrap() error {
	return ErrAmbiguousMatch
}

// ParseError reports malformed signature or mask text.
type ParseError struct {
	Input string
	Pos   int    // Index of the offending token
	Token string // Offending token text
	Err   error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sig: parse %q: token %d %q: %v", e.Input, e.Pos, e.Token, e.Err)
	}
	return fmt.Sprintf("sig: parse %q: token %d %q", e.Input, e.Pos, e.Token)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
