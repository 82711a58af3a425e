// Package tlv implements encoding and decoding of the tag-length-value (TLV)
// format used by the Basic Encoding Rules (BER) and related encoding rules as
// specified in [Rec. ITU-T X.690].
// See also “[A Layman's Guide to a Subset of ASN.1, BER, and DER]”.
//
// This package deals with the syntactic layer of TLV-encoding while other
// packages such as [codello.dev/x690/der] deal with the semantic layer. A
// single data value encoding is represented by the [Value] type which couples
// the identifier octets with the contents octets. The [Parse] function frames
// one Value from a byte slice, the [Append] function does the reverse.
//
// Decoding understands all three length forms defined by BER: the definite
// short form, the definite long form, and the indefinite form terminated by
// an end-of-contents marker. Encoding always produces the minimal definite
// form as required by DER.
//
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
// [A Layman's Guide to a Subset of ASN.1, BER, and DER]: http://luca.ntop.org/Teaching/Appunti/asn1.html
package tlv

import (
	"errors"
	"fmt"
	"strconv"

	"codello.dev/x690"
)

// LengthIndefinite is returned by [ParseLength] for the indefinite length
// form. A data value using the indefinite form is terminated by an
// end-of-contents marker (two zero octets).
const LengthIndefinite = -1

// MaxNestingDepth is the maximum depth of nested constructed data values
// accepted by [Parse]. Nesting depth is driven by untrusted input, so it must
// be bounded to protect against stack exhaustion.
const MaxNestingDepth = 128

// A Value is a single data value encoding: the identifier octets together
// with the contents octets. For primitive encodings Contents holds the raw
// contents, for constructed encodings it holds the concatenation of the
// nested data value encodings.
//
// A Value produced by [Parse] borrows its Contents from the input slice and
// is only valid as long as the backing buffer. Use [Value.Clone] to obtain an
// owned copy.
type Value struct {
	Identifier x690.Identifier
	Contents   []byte
}

// Clone returns a copy of v that does not share memory with the input buffer.
func (v Value) Clone() Value {
	v.Contents = append([]byte(nil), v.Contents...)
	return v
}

// String returns a short representation of v for diagnostics.
func (v Value) String() string {
	return v.Identifier.String() + ":" + strconv.Itoa(len(v.Contents))
}

// ErrTruncated indicates that the input ended in the middle of a data value
// encoding: fewer contents octets than the declared length, an identifier
// whose continuation octets run off the end of the input, or a missing
// end-of-contents marker.
var ErrTruncated = errors.New("truncated data value")

// ErrDepth indicates that a data value encoding exceeds [MaxNestingDepth].
var ErrDepth = errors.New("nesting depth exceeds limit")

// A SyntaxError reports an error in the TLV encoding. The error value
// contains the location of the error within the parsed input.
type SyntaxError struct {
	// ByteOffset is the offset into the input passed to [Parse] at which the
	// malformed data value encoding begins.
	ByteOffset int
	Err        error
}

func (e *SyntaxError) Unwrap() error { return e.Err }
func (e *SyntaxError) Error() string {
	if e.ByteOffset > 0 {
		return fmt.Sprintf("tlv: syntax error at offset %d: %v", e.ByteOffset, e.Err)
	}
	return "tlv: syntax error: " + e.Err.Error()
}
