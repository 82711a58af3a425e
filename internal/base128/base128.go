// Package base128 implements the base-128 integer encoding used by the BER
// identifier octets and the OBJECT IDENTIFIER contents octets. A base-128
// integer is a big-endian sequence of 7-bit groups where the eighth bit marks
// continuation. The encoding is identical to a [Variable-length quantity].
//
// [Variable-length quantity]: https://en.wikipedia.org/wiki/Variable-length_quantity
package base128

import "errors"

var (
	// ErrTruncated indicates that the input ended before the final octet of a
	// base-128 integer (an octet with the continuation bit clear).
	ErrTruncated = errors.New("truncated base 128 integer")
	// ErrNotMinimal indicates that an encoded integer began with a padding
	// 0x80 octet.
	ErrNotMinimal = errors.New("base 128 integer is not minimally encoded")
	// ErrOverflow indicates that an encoded integer exceeds the uint64 range.
	ErrOverflow = errors.New("base 128 integer too large")
)

// Parse parses a base-128 integer from the beginning of b. It returns the
// value and the number of bytes consumed. Parse ignores an arbitrary number
// of leading zeros (encoded as 0x80 octets). Use [ParseMinimal] to reject
// such encodings.
func Parse(b []byte) (uint64, int, error) {
	return parse(b, false)
}

// ParseMinimal works like [Parse] but returns an error if the integer is not
// minimally encoded (i.e. if it starts with a 0x80 octet).
func ParseMinimal(b []byte) (uint64, int, error) {
	return parse(b, true)
}

// parse implements [Parse] and [ParseMinimal].
func parse(b []byte, minimal bool) (ret uint64, n int, err error) {
	if len(b) == 0 {
		return 0, 0, ErrTruncated
	}
	if b[0] == 0x80 && minimal {
		return 0, 0, ErrNotMinimal
	}
	for ; n < len(b); n++ {
		if ret > 1<<57-1 {
			// another 7 bits would overflow uint64
			return 0, n, ErrOverflow
		}
		ret = ret<<7 | uint64(b[n]&0x7f)
		if b[n]&0x80 == 0 {
			return ret, n + 1, nil
		}
	}
	return 0, n, ErrTruncated
}

// Len returns the number of bytes needed to encode n as a base-128 integer.
func Len(n uint64) int {
	l := 1
	for n >>= 7; n > 0; n >>= 7 {
		l++
	}
	return l
}

// Append appends the base-128 encoding of n to dst and returns the extended
// slice.
func Append(dst []byte, n uint64) []byte {
	l := Len(n)
	for j := l - 1; j >= 0; j-- {
		b := byte(n>>(j*7)) & 0x7f
		if j > 0 {
			b |= 0x80
		}
		dst = append(dst, b)
	}
	return dst
}
