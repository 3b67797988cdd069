package sig

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Token is one position of a Signature.
type Token struct {
	Value    byte
	Wildcard bool // Matches any byte when set; Value is ignored
}

// Any is the wildcard token.
var Any = Token{Wildcard: true}

// Byte returns a concrete token.
func Byte(b byte) Token {
	return Token{Value: b}
}

// Signature is an ordered byte pattern. Signatures are never modified by
// the scanner.
type Signature []Token

// Mask is a per-position bitmask applied to both the signature byte and the
// data byte before comparison.
type Mask []byte

// Exact builds a signature with no wildcards.
func Exact(b ...byte) Signature {
	s := make(Signature, len(b))
	for i, v := range b {
		s[i] = Token{Value: v}
	}
	return s
}

// String renders s as space-separated hex with ?? for wildcards.
func (s Signature) String() string {
	var sb strings.Builder
	for i, t := range s {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if t.Wildcard {
			sb.WriteString("??")
			continue
		}
		fmt.Fprintf(&sb, "%02X", t.Value)
	}
	return sb.String()
}

// String renders m as space-separated hex.
func (m Mask) String() string {
	return fmt.Sprintf("% X", []byte(m))
}

var errBadToken = errors.New("expected two hex digits")

// Parse reads a signature such as "C2 08 ?? 6A 08". Tokens are separated by
// whitespace; "?" and "??" denote wildcards.
func Parse(text string) (Signature, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, &ParseError{Input: text, Err: ErrEmptySignature}
	}
	s := make(Signature, 0, len(fields))
	for i, f := range fields {
		if f == "?" || f == "??" {
			s = append(s, Any)
			continue
		}
		b, err := parseHexByte(f)
		if err != nil {
			return nil, &ParseError{Input: text, Pos: i, Token: f, Err: err}
		}
		s = append(s, Token{Value: b})
	}
	return s, nil
}

// MustParse is like Parse but panics on error. Intended for built-in tables.
func MustParse(text string) Signature {
	s, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseMask reads a mask such as "FF F0 FF". An empty string yields a nil
// mask, meaning exact comparison.
func ParseMask(text string) (Mask, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, nil
	}
	m := make(Mask, 0, len(fields))
	for i, f := range fields {
		b, err := parseHexByte(f)
		if err != nil {
			return nil, &ParseError{Input: text, Pos: i, Token: f, Err: err}
		}
		m = append(m, b)
	}
	return m, nil
}

// ParseBytes reads space-separated hex bytes, such as replacement data.
func ParseBytes(text string) ([]byte, error) {
	m, err := ParseMask(text)
	return []byte(m), err
}

func parseHexByte(f string) (byte, error) {
	f = strings.TrimPrefix(strings.TrimPrefix(f, "0x"), "0X")
	if len(f) != 2 {
		return 0, errBadToken
	}
	v, err := strconv.ParseUint(f, 16, 8)
	if err != nil {
		return 0, errBadToken
	}
	return byte(v), nil
}
