package tlv

import (
	"bytes"
	"errors"
	"math"

	"codello.dev/x690"
	"codello.dev/x690/internal/base128"
)

var (
	errTagTooLarge       = errors.New("tag number too large")
	errLengthTooLarge    = errors.New("length too large")
	errLengthReserved    = errors.New("reserved length octet 0xFF")
	errUnexpectedEOC     = errors.New("unexpected end of contents")
	errHighTagNotMinimal = errors.New("tag number is not minimally encoded")
)

// eocMarker is the end-of-contents marker terminating indefinite-length
// encodings.
var eocMarker = []byte{0x00, 0x00}

// ParseIdentifier decodes the identifier octets at the beginning of b. It
// returns the decoded identifier and the number of bytes consumed.
//
// Tag numbers 31 and above use the high-tag (base-128) form. An encoded tag
// number that does not fit into a uint64 results in an error, it is never
// truncated.
func ParseIdentifier(b []byte) (x690.Identifier, int, error) {
	if len(b) == 0 {
		return x690.Identifier{}, 0, ErrTruncated
	}
	id := x690.Identifier{
		Class:       x690.Class(b[0] >> 6),
		Constructed: b[0]&0x20 == 0x20,
		Number:      uint64(b[0] & 0x1f),
	}
	if id.Number < 0x1f {
		return id, 1, nil
	}
	// low-tag bits all set: the tag number follows in base-128 form
	n, size, err := base128.ParseMinimal(b[1:])
	switch {
	case err == base128.ErrTruncated:
		return id, 1, ErrTruncated
	case err == base128.ErrOverflow:
		return id, 1, errTagTooLarge
	case err == base128.ErrNotMinimal:
		return id, 1, errHighTagNotMinimal
	case err != nil:
		return id, 1, err
	}
	id.Number = n
	return id, 1 + size, nil
}

// ParseLength decodes the length octets at the beginning of b. It returns the
// decoded length and the number of bytes consumed. For the indefinite length
// form the returned length is [LengthIndefinite]; the caller is responsible
// for locating the end-of-contents marker.
func ParseLength(b []byte) (int, int, error) {
	if len(b) == 0 {
		return 0, 0, ErrTruncated
	}
	switch first := b[0]; {
	case first < 0x80:
		// definite short form
		return int(first), 1, nil
	case first == 0x80:
		return LengthIndefinite, 1, nil
	case first == 0xff:
		// reserved for future extension (X.690, 8.1.3.5 c)
		return 0, 0, errLengthReserved
	default:
		numBytes := int(first & 0x7f)
		if len(b) < 1+numBytes {
			return 0, 0, ErrTruncated
		}
		length := 0
		for _, octet := range b[1 : 1+numBytes] {
			if length > math.MaxInt>>8 {
				return 0, 0, errLengthTooLarge
			}
			length = length<<8 | int(octet)
		}
		return length, 1 + numBytes, nil
	}
}

// Parse decodes one complete data value encoding from the beginning of b. It
// returns the framed [Value] and the remaining bytes following the encoding.
//
// The declared length of a definite-length encoding is validated against the
// remaining input before the contents are sliced, so a forged length field
// cannot cause reads beyond the input or oversized allocations. For the
// indefinite length form the contents extend up to the matching
// end-of-contents marker; nested indefinite-length encodings are terminated
// by their own markers. The Contents of the returned Value share memory with
// b.
//
// Errors are reported as a [*SyntaxError] locating the malformed encoding
// within b. Truncated input is additionally identifiable via
// [errors.Is](err, [ErrTruncated]).
func Parse(b []byte) (Value, []byte, error) {
	v, n, err := parseValue(b, 0, 0)
	if err != nil {
		return Value{}, b, err
	}
	return v, b[n:], nil
}

// parseValue decodes one data value encoding from the beginning of b and
// returns the number of bytes it occupies. offset is the position of b
// relative to the original input and is only used for error reporting.
func parseValue(b []byte, offset, depth int) (Value, int, error) {
	if depth >= MaxNestingDepth {
		return Value{}, 0, &SyntaxError{offset, ErrDepth}
	}

	id, n, err := ParseIdentifier(b)
	if err != nil {
		return Value{}, 0, &SyntaxError{offset, err}
	}
	length, ln, err := ParseLength(b[n:])
	if err != nil {
		return Value{}, 0, &SyntaxError{offset, err}
	}
	n += ln

	if id == (x690.Identifier{}) {
		// the tag [UNIVERSAL 0] is reserved for the end-of-contents marker
		return Value{}, 0, &SyntaxError{offset, errUnexpectedEOC}
	}

	if length != LengthIndefinite {
		if length > len(b)-n {
			return Value{}, 0, &SyntaxError{offset, ErrTruncated}
		}
		return Value{id, b[n : n+length]}, n + length, nil
	}

	// Indefinite form: the contents end at the end-of-contents marker of this
	// level. For constructed encodings the markers of nested
	// indefinite-length encodings are consumed by the recursive calls and
	// cannot terminate this level early. A primitive encoding has no nested
	// values, so its contents simply extend to the first marker.
	if !id.Constructed {
		if i := bytes.Index(b[n:], eocMarker); i >= 0 {
			return Value{id, b[n : n+i]}, n + i + 2, nil
		}
		return Value{}, 0, &SyntaxError{offset, ErrTruncated}
	}
	start := n
	for {
		if len(b)-n < 2 {
			return Value{}, 0, &SyntaxError{offset, ErrTruncated}
		}
		if b[n] == 0x00 && b[n+1] == 0x00 {
			return Value{id, b[start:n]}, n + 2, nil
		}
		_, size, err := parseValue(b[n:], offset+n, depth+1)
		if err != nil {
			return Value{}, 0, err
		}
		n += size
	}
}
