// Package sig locates byte signatures inside binary images.
//
// # Overview
//
// A Signature is an ordered sequence of tokens, each either a concrete byte or
// a wildcard that matches any byte at that position. An optional Mask narrows
// which bits of each concrete byte take part in the comparison:
//
//	(data[i+j] & mask[j]) == (sig[j] & mask[j])
//
// Without a mask every bit is compared.
//
// # Usage
//
//	s := sig.MustParse("C2 08 ?? 6A 08")
//	off, err := sig.Find(data, s, sig.Options{})
//	if errors.Is(err, sig.ErrPatternNotFound) {
//	    // signature absent from the scanned range
//	}
//
// # Match Policy
//
// Find returns the first match and stops. It does not check that the
// signature is unique in the buffer; a signature that occurs several times
// binds to its earliest occurrence. FindUnique is the strict variant and fails
// with an *AmbiguousMatchError when a second match exists in the range.
//
// # Scan Range
//
// Candidates are start offsets in [Start, len(data)-len(sig)]. MaxScan, when
// positive, limits the number of candidate offsets examined.
package sig
