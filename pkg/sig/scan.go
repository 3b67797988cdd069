package sig

import (
	"errors"

	"github.com/joshuapare/tzpatch/internal/buf"
)

// Options bounds a scan.
type Options struct {
	// Mask, when non-nil, must have the same length as the signature.
	Mask Mask

	// Start is the first candidate offset.
	Start int

	// MaxScan limits how many candidate offsets are examined. Zero or
	// negative scans to the last offset where the whole signature fits.
	MaxScan int
}

// CheckMask reports a *MaskError when m is non-nil and its length differs
// from s. It performs no scanning and is safe to call before any I/O.
func CheckMask(s Signature, m Mask) error {
	if m != nil && len(m) != len(s) {
		return &MaskError{SignatureLen: len(s), MaskLen: len(m)}
	}
	return nil
}

// Find returns the offset of the first match of s in data.
//
// It fails with ErrInvalidMask before scanning when the mask length is wrong,
// and with ErrPatternNotFound when no candidate in range matches.
func Find(data []byte, s Signature, opts Options) (int, error) {
	first, last, err := scanRange(data, s, opts)
	if err != nil {
		return -1, err
	}
	for i := first; i <= last; i++ {
		if matchAt(data, i, s, opts.Mask) {
			return i, nil
		}
	}
	return -1, &ScanError{Signature: s, Start: first, End: last, Err: ErrPatternNotFound}
}

// FindAll returns every match offset of s in the scanned range, in
// ascending order. Matches may overlap. An empty result is not an error.
func FindAll(data []byte, s Signature, opts Options) ([]int, error) {
	first, last, err := scanRange(data, s, opts)
	if err != nil {
		var se *ScanError
		if errors.As(err, &se) {
			return nil, nil
		}
		return nil, err
	}
	var out []int
	for i := first; i <= last; i++ {
		if matchAt(data, i, s, opts.Mask) {
			out = append(out, i)
		}
	}
	return out, nil
}

// FindUnique is the strict form of Find: it scans the whole range and fails
// with an *AmbiguousMatchError when s matches more than once.
func FindUnique(data []byte, s Signature, opts Options) (int, error) {
	first, last, err := scanRange(data, s, opts)
	if err != nil {
		return -1, err
	}
	offs, _ := FindAll(data, s, opts)
	switch len(offs) {
	case 0:
		return -1, &ScanError{Signature: s, Start: first, End: last, Err: ErrPatternNotFound}
	case 1:
		return offs[0], nil
	default:
		return -1, &AmbiguousMatchError{Signature: s, Offsets: offs}
	}
}

// scanRange validates inputs and returns the inclusive candidate range.
func scanRange(data []byte, s Signature, opts Options) (int, int, error) {
	if len(s) == 0 {
		return 0, -1, ErrEmptySignature
	}
	if err := CheckMask(s, opts.Mask); err != nil {
		return 0, -1, err
	}
	first := opts.Start
	last := len(data) - len(s)
	if opts.MaxScan > 0 {
		if end, ok := buf.AddOverflowSafe(first, opts.MaxScan-1); ok && end < last {
			last = end
		}
	}
	if first < 0 || first >= len(data) || last < first {
		return first, -1, &ScanError{Signature: s, Start: first, End: -1, Err: ErrPatternNotFound}
	}
	return first, last, nil
}

func matchAt(data []byte, i int, s Signature, m Mask) bool {
	for j, t := range s {
		if t.Wildcard {
			continue
		}
		mask := byte(0xFF)
		if m != nil {
			mask = m[j]
		}
		if data[i+j]&mask != t.Value&mask {
			return false
		}
	}
	return true
}
